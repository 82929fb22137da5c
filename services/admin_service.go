package services

import (
	"context"
	"path"
	"strings"
	"time"

	apperrors "cakeshop/common/errors"
	"cakeshop/models"
	aws_pkg "cakeshop/pkg/aws"
	"cakeshop/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DashboardProductLimit = 100
	LowStockThreshold     = 5
	UploadURLTTL          = 15 * time.Minute
)

// ImagePresigner issues direct-to-storage upload URLs.
type ImagePresigner interface {
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (*aws_pkg.PresignedUpload, error)
}

type AdminService interface {
	Dashboard(ctx context.Context, caller *models.Identity) (*Dashboard, error)
	PresignImageUpload(ctx context.Context, caller *models.Identity, req *PresignRequest) (*PresignResult, error)
}

type adminServiceImpl struct {
	products  repository.ProductRepository
	orders    repository.OrderRepository
	presigner ImagePresigner
	logger    *zap.Logger
}

// NewAdminService creates an AdminService. presigner may be nil, which
// disables image uploads.
func NewAdminService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	presigner ImagePresigner,
	logger *zap.Logger,
) AdminService {
	return &adminServiceImpl{
		products:  products,
		orders:    orders,
		presigner: presigner,
		logger:    logger,
	}
}

func (s *adminServiceImpl) Dashboard(ctx context.Context, caller *models.Identity) (*Dashboard, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Unauthorized("")
	}

	products, total, err := s.products.List(ctx, repository.ProductFilter{Limit: DashboardProductLimit})
	if err != nil {
		s.logger.Error("Failed to load dashboard products", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	orders, err := s.orders.List(ctx, "")
	if err != nil {
		s.logger.Error("Failed to load dashboard orders", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	return &Dashboard{
		Products: products,
		Orders:   orders,
		Stats:    buildStats(products, total, orders),
	}, nil
}

func buildStats(products []models.Product, totalProducts int64, orders []models.Order) DashboardStats {
	stats := DashboardStats{
		TotalProducts:    totalProducts,
		TotalOrders:      len(orders),
		OrdersByStatus:   make(map[models.OrderStatus]int, len(models.OrderStatuses)),
		LowStockProducts: make([]models.Product, 0),
	}
	for _, st := range models.OrderStatuses {
		stats.OrdersByStatus[st] = 0
	}
	for _, o := range orders {
		stats.OrdersByStatus[o.Status]++
		if o.Status != models.OrderStatusCancelled {
			stats.Revenue += o.Total
		}
	}
	for _, p := range products {
		if p.Stock < LowStockThreshold {
			stats.LowStockProducts = append(stats.LowStockProducts, p)
		}
	}
	return stats
}

func (s *adminServiceImpl) PresignImageUpload(ctx context.Context, caller *models.Identity, req *PresignRequest) (*PresignResult, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Unauthorized("")
	}
	if s.presigner == nil {
		return nil, apperrors.Unavailable("Image uploads are not configured", nil)
	}

	key := "products/" + uuid.NewString() + strings.ToLower(path.Ext(path.Base(req.FileName)))
	upload, err := s.presigner.PresignPut(ctx, key, req.ContentType, UploadURLTTL)
	if err != nil {
		s.logger.Error("Failed to presign upload", zap.String("key", key), zap.Error(err))
		return nil, apperrors.Unavailable("Image uploads are unavailable", err)
	}

	return &PresignResult{
		UploadURL: upload.URL,
		Method:    "PUT",
		Key:       upload.Key,
		PublicURL: upload.PublicURL,
		ExpiresIn: int(UploadURLTTL.Seconds()),
		Headers:   upload.Headers,
	}, nil
}
