package controllers

import (
	"net/http"

	"cakeshop/middleware"
	"cakeshop/services"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkout services.CheckoutService
}

func NewCheckoutController(checkout services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// Checkout handles POST /checkout and returns the payment intent the
// storefront confirms.
func (cc *CheckoutController) Checkout(ctx *gin.Context) {
	var req services.CheckoutRequest
	if !bindJSON(ctx, &req) {
		return
	}

	result, err := cc.checkout.CreatePaymentIntent(ctx.Request.Context(), middleware.GetIdentity(ctx), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
