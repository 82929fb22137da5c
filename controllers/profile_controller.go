package controllers

import (
	"net/http"

	"cakeshop/middleware"
	"cakeshop/services"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	authService services.AuthService
}

func NewProfileController(authService services.AuthService) *ProfileController {
	return &ProfileController{authService: authService}
}

// GetProfile handles GET /profile.
func (pc *ProfileController) GetProfile(ctx *gin.Context) {
	user, err := pc.authService.GetProfile(ctx.Request.Context(), middleware.GetIdentity(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// UpdateProfile handles PUT /profile.
func (pc *ProfileController) UpdateProfile(ctx *gin.Context) {
	var req services.ProfileUpdateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := pc.authService.UpdateProfile(ctx.Request.Context(), middleware.GetIdentity(ctx), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
