package controllers

import (
	"net/http"

	"cakeshop/middleware"
	"cakeshop/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	admin services.AdminService
}

func NewAdminController(admin services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

// Dashboard handles GET /admin/dashboard.
func (ac *AdminController) Dashboard(ctx *gin.Context) {
	dash, err := ac.admin.Dashboard(ctx.Request.Context(), middleware.GetIdentity(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dash)
}

// PresignUpload handles POST /admin/uploads/presign.
func (ac *AdminController) PresignUpload(ctx *gin.Context) {
	var req services.PresignRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := ac.admin.PresignImageUpload(ctx.Request.Context(), middleware.GetIdentity(ctx), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
