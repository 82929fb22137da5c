package services

import (
	"math"

	"cakeshop/models"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 8
	MaxLimit     = 100
)

// newID builds a prefixed identifier such as "order-<uuid>".
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,min=2"`
	LastName  string `json:"lastName" binding:"required,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmResetRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type ProfileUpdateRequest struct {
	FirstName string `json:"firstName" binding:"required,min=2"`
	LastName  string `json:"lastName" binding:"required,min=2"`
	Email     string `json:"email" binding:"required,email"`
}

// ProductRequest is the admin payload for creating or replacing a product.
type ProductRequest struct {
	Name        string   `json:"name" binding:"required,min=3"`
	Description string   `json:"description" binding:"required,min=10"`
	Price       float64  `json:"price" binding:"required,gte=0.01"`
	Category    string   `json:"category" binding:"required"`
	Image       string   `json:"image" binding:"required,url"`
	Images      []string `json:"images" binding:"omitempty,dive,url"`
	Stock       *int     `json:"stock" binding:"required,gte=0"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,min=10,max=500"`
}

type OrderItemRequest struct {
	ProductID    string  `json:"productId" binding:"required"`
	ProductName  string  `json:"productName" binding:"required"`
	ProductImage string  `json:"productImage"`
	Quantity     int     `json:"quantity" binding:"required,min=1"`
	Price        float64 `json:"price" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentIntentID string                 `json:"paymentIntentId" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

type CheckoutRequest struct {
	Items []models.CartItem `json:"items" binding:"required,min=1,dive"`
}

// CheckoutResult is what the storefront needs to confirm a payment.
// Mock is set when the processor was unavailable and the demo fallback
// produced the token.
type CheckoutResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Mock            bool   `json:"mock"`
}

// ListProductsParams contains parameters for listing products with filters
type ListProductsParams struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// Normalize clamps page and limit into their accepted ranges.
func (p ListProductsParams) Normalize() ListProductsParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

type ProductPage struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

type ProductDetail struct {
	Product models.Product  `json:"product"`
	Reviews []models.Review `json:"reviews"`
}

type DashboardStats struct {
	TotalProducts    int64                      `json:"totalProducts"`
	TotalOrders      int                        `json:"totalOrders"`
	OrdersByStatus   map[models.OrderStatus]int `json:"ordersByStatus"`
	Revenue          float64                    `json:"revenue"`
	LowStockProducts []models.Product           `json:"lowStockProducts"`
}

type Dashboard struct {
	Products []models.Product `json:"products"`
	Orders   []models.Order   `json:"orders"`
	Stats    DashboardStats   `json:"stats"`
}

type PresignRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

type PresignResult struct {
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	PublicURL string            `json:"publicUrl"`
	ExpiresIn int               `json:"expiresIn"`
	Headers   map[string]string `json:"headers,omitempty"`
}
