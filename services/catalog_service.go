package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "cakeshop/common/errors"
	"cakeshop/models"
	aws_pkg "cakeshop/pkg/aws"
	"cakeshop/repository"

	"go.uber.org/zap"
)

// CatalogService serves product browsing and admin product management.
type CatalogService interface {
	List(ctx context.Context, params ListProductsParams) (*ProductPage, error)
	Get(ctx context.Context, id string) (*ProductDetail, error)
	Create(ctx context.Context, req *ProductRequest) (*models.Product, error)
	Update(ctx context.Context, id string, req *ProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type catalogServiceImpl struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	cache    CatalogCache
	metrics  aws_pkg.MetricsRecorder
	logger   *zap.Logger
}

// NewCatalogService creates a CatalogService. cache may be nil.
func NewCatalogService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	cache CatalogCache,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		products: products,
		reviews:  reviews,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *catalogServiceImpl) List(ctx context.Context, params ListProductsParams) (*ProductPage, error) {
	params = params.Normalize()
	params.Category = strings.TrimSpace(params.Category)
	params.Search = strings.TrimSpace(params.Search)

	var version int64
	if s.cache != nil {
		page, v, ok := s.cache.GetList(ctx, params)
		if ok {
			recordCount(ctx, s.metrics, s.logger, aws_pkg.MetricCatalogCacheHits, nil)
			return page, nil
		}
		version = v
		recordCount(ctx, s.metrics, s.logger, aws_pkg.MetricCatalogCacheMisses, nil)
	}

	products, total, err := s.products.List(ctx, repository.ProductFilter{
		Category: params.Category,
		Search:   params.Search,
		Offset:   (params.Page - 1) * params.Limit,
		Limit:    params.Limit,
	})
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	page := &ProductPage{
		Products:   products,
		Pagination: NewPagination(params.Page, params.Limit, total),
	}
	if s.cache != nil {
		s.cache.SetList(version, params, page)
	}
	return page, nil
}

func (s *catalogServiceImpl) Get(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByProductID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &ProductDetail{Product: *product, Reviews: reviews}, nil
}

func (s *catalogServiceImpl) Create(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	now := time.Now()
	product := &models.Product{ID: newID("prod"), CreatedAt: now}
	applyProductRequest(product, req, now)

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	s.invalidate(ctx)
	s.logger.Info("Product created", zap.String("product_id", product.ID))
	return product, nil
}

func (s *catalogServiceImpl) Update(ctx context.Context, id string, req *ProductRequest) (*models.Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductRequest(product, req, time.Now())

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		s.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	s.invalidate(ctx)
	return product, nil
}

func (s *catalogServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Product not found")
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return apperrors.Internal(err)
	}

	s.invalidate(ctx)
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

func (s *catalogServiceImpl) find(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return product, nil
}

func (s *catalogServiceImpl) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// applyProductRequest copies the admin payload onto p. A product without a
// gallery shows its main image.
func applyProductRequest(p *models.Product, req *ProductRequest, now time.Time) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.Category = req.Category
	p.Image = req.Image
	p.Images = append([]string(nil), req.Images...)
	if len(p.Images) == 0 {
		p.Images = []string{req.Image}
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	p.UpdatedAt = now
}
