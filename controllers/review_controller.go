package controllers

import (
	"net/http"

	"cakeshop/middleware"
	"cakeshop/services"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviews services.ReviewService
}

func NewReviewController(reviews services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// ListReviews handles GET /products/:id/reviews.
func (rc *ReviewController) ListReviews(ctx *gin.Context) {
	reviews, err := rc.reviews.List(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// CreateReview handles POST /products/:id/reviews. The body is validated by
// the service after the product lookup, so a missing product is a 404 even
// for a bad payload.
func (rc *ReviewController) CreateReview(ctx *gin.Context) {
	var req services.ReviewRequest
	if !decodeJSON(ctx, &req) {
		return
	}

	review, err := rc.reviews.Create(ctx.Request.Context(), middleware.GetIdentity(ctx), ctx.Param("id"), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"review": review})
}
