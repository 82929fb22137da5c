package controllers

import (
	"net/http"

	"cakeshop/common/auth"
	"cakeshop/middleware"
	"cakeshop/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService  services.AuthService
	secureCookie bool
}

// NewAuthController creates an AuthController. secureCookie marks the session
// cookie Secure and should be set in production.
func NewAuthController(authService services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{authService: authService, secureCookie: secureCookie}
}

// Register handles POST /register.
func (ac *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, token, err := ac.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ac.setSession(ctx, token, int(auth.SessionTTL.Seconds()))
	ctx.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": user.Public()})
}

// Login handles POST /login.
func (ac *AuthController) Login(ctx *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, token, err := ac.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}

	ac.setSession(ctx, token, int(auth.SessionTTL.Seconds()))
	ctx.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user.Public()})
}

// Logout handles POST /logout.
func (ac *AuthController) Logout(ctx *gin.Context) {
	ac.setSession(ctx, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /me. Anonymous callers get {"user": null}.
func (ac *AuthController) Me(ctx *gin.Context) {
	user, err := ac.authService.Me(ctx.Request.Context(), middleware.GetIdentity(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	if user == nil {
		ctx.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// RequestPasswordReset handles POST /reset-password.
func (ac *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req services.ResetPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := ac.authService.RequestPasswordReset(ctx.Request.Context(), &req); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": services.ResetRequestedMessage})
}

// ConfirmPasswordReset handles POST /reset-password/confirm.
func (ac *AuthController) ConfirmPasswordReset(ctx *gin.Context) {
	var req services.ConfirmResetRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := ac.authService.ConfirmPasswordReset(ctx.Request.Context(), &req); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

func (ac *AuthController) setSession(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.CookieName, token, maxAge, "/", "", ac.secureCookie, true)
}
