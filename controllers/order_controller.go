package controllers

import (
	"net/http"

	"cakeshop/middleware"
	"cakeshop/services"

	"github.com/gin-gonic/gin"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderController struct {
	orders services.OrderService
}

func NewOrderController(orders services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// ListOrders handles GET /orders. Admins see every order.
func (oc *OrderController) ListOrders(ctx *gin.Context) {
	orders, err := oc.orders.List(ctx.Request.Context(), middleware.GetIdentity(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders})
}

// CreateOrder handles POST /orders.
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(ctx, &req) {
		return
	}

	order, err := oc.orders.Create(ctx.Request.Context(), middleware.GetIdentity(ctx), &req, ctx.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrder handles GET /orders/:id.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	order, err := oc.orders.Get(ctx.Request.Context(), middleware.GetIdentity(ctx), ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatus handles PUT /orders/:id (admin only).
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	var req services.UpdateOrderStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	order, err := oc.orders.UpdateStatus(ctx.Request.Context(), middleware.GetIdentity(ctx), ctx.Param("id"), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}
