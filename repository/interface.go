package repository

import (
	"context"
	"errors"
	"time"

	"cakeshop/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines data-access operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// ProductFilter selects a page of products. Category matches exactly and
// Search matches name or description, both case-insensitively. A zero Limit
// means no limit.
type ProductFilter struct {
	Category string
	Search   string
	Offset   int
	Limit    int
}

// ProductRepository defines data-access operations for products. List keeps
// insertion order.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines data-access operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	// FindByProductID returns reviews newest first.
	FindByProductID(ctx context.Context, productID string) ([]models.Review, error)
}

// OrderRepository defines data-access operations for orders.
type OrderRepository interface {
	// Place stores order and decrements the stock of every ordered product,
	// never below zero, as one atomic step. It returns the ids of ordered
	// products that no longer exist.
	Place(ctx context.Context, order *models.Order) (missing []string, err error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// List returns orders newest first; an empty userID lists every order.
	List(ctx context.Context, userID string) ([]models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, at time.Time) (*models.Order, error)
}
