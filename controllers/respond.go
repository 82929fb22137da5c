package controllers

import (
	"encoding/json"

	"cakeshop/common/validation"

	"github.com/gin-gonic/gin"
)

// bindJSON binds and validates the request body. On failure the validation
// error is attached for ErrorMiddleware and false is returned.
func bindJSON(ctx *gin.Context, obj any) bool {
	validation.Register()
	if err := ctx.ShouldBindJSON(obj); err != nil {
		_ = ctx.Error(validation.Error(err))
		return false
	}
	return true
}

// decodeJSON decodes the body without validating it, for handlers whose
// service must check other preconditions first.
func decodeJSON(ctx *gin.Context, obj any) bool {
	if err := json.NewDecoder(ctx.Request.Body).Decode(obj); err != nil {
		_ = ctx.Error(validation.Error(err))
		return false
	}
	return true
}

func fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
}
