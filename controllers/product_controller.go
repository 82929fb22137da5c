package controllers

import (
	"net/http"
	"strconv"

	"cakeshop/services"

	"github.com/gin-gonic/gin"
)

// ProductController handles catalog browsing and admin product management.
type ProductController struct {
	catalog services.CatalogService
}

func NewProductController(catalog services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// ListProducts handles GET /products?page&limit&category&search.
// Unparseable page or limit values fall back to their defaults.
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.Query("page"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	result, err := pc.catalog.List(ctx.Request.Context(), services.ListProductsParams{
		Page:     page,
		Limit:    limit,
		Category: ctx.Query("category"),
		Search:   ctx.Query("search"),
	})
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(ctx *gin.Context) {
	detail, err := pc.catalog.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// CreateProduct handles POST /products (admin only).
func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req services.ProductRequest
	if !bindJSON(ctx, &req) {
		return
	}

	product, err := pc.catalog.Create(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct handles PUT /products/:id (admin only).
func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	var req services.ProductRequest
	if !bindJSON(ctx, &req) {
		return
	}

	product, err := pc.catalog.Update(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct handles DELETE /products/:id (admin only).
func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	if err := pc.catalog.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
