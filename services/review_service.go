package services

import (
	"context"
	"errors"
	"time"

	apperrors "cakeshop/common/errors"
	"cakeshop/common/validation"
	"cakeshop/models"
	aws_pkg "cakeshop/pkg/aws"
	"cakeshop/repository"

	"go.uber.org/zap"
)

type ReviewService interface {
	Create(ctx context.Context, caller *models.Identity, productID string, req *ReviewRequest) (*models.Review, error)
	List(ctx context.Context, productID string) ([]models.Review, error)
}

type reviewServiceImpl struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	users    repository.UserRepository
	metrics  aws_pkg.MetricsRecorder
	logger   *zap.Logger
}

func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
) ReviewService {
	return &reviewServiceImpl{
		reviews:  reviews,
		products: products,
		users:    users,
		metrics:  metrics,
		logger:   logger,
	}
}

// Create checks the caller, then the product, then the payload. The
// reviewer's name is copied onto the review.
func (s *reviewServiceImpl) Create(ctx context.Context, caller *models.Identity, productID string, req *ReviewRequest) (*models.Review, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("")
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, caller.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	review := &models.Review{
		ID:        newID("review"),
		ProductID: productID,
		UserID:    user.ID,
		UserName:  user.DisplayName(),
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		s.logger.Error("Failed to create review", zap.String("product_id", productID), zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	recordCount(ctx, s.metrics, s.logger, aws_pkg.MetricReviewsCreated, map[string]string{"ProductId": productID})
	return review, nil
}

func (s *reviewServiceImpl) List(ctx context.Context, productID string) ([]models.Review, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByProductID(ctx, productID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return reviews, nil
}

func (s *reviewServiceImpl) ensureProduct(ctx context.Context, productID string) error {
	_, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Product not found")
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
