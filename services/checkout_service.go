package services

import (
	"context"
	"fmt"
	"time"

	apperrors "cakeshop/common/errors"
	"cakeshop/models"
	aws_pkg "cakeshop/pkg/aws"

	"go.uber.org/zap"
)

const MockClientSecret = "mock_client_secret_for_demo"

// CheckoutPolicy decides what checkout does when the processor is down.
// With MockFallback set the shopper receives a demo token instead of an
// error.
type CheckoutPolicy struct {
	Currency     string
	MockFallback bool
}

type CheckoutService interface {
	CreatePaymentIntent(ctx context.Context, caller *models.Identity, req *CheckoutRequest) (*CheckoutResult, error)
}

type checkoutServiceImpl struct {
	processor PaymentProcessor
	policy    CheckoutPolicy
	metrics   aws_pkg.MetricsRecorder
	logger    *zap.Logger
}

func NewCheckoutService(processor PaymentProcessor, policy CheckoutPolicy, metrics aws_pkg.MetricsRecorder, logger *zap.Logger) CheckoutService {
	if policy.Currency == "" {
		policy.Currency = "usd"
	}
	return &checkoutServiceImpl{
		processor: processor,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *checkoutServiceImpl) CreatePaymentIntent(ctx context.Context, caller *models.Identity, req *CheckoutRequest) (*CheckoutResult, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("")
	}

	cart := models.NewCartFromLines(req.Items)
	amount := cart.AmountInCents()

	auth := s.processor.Authorize(ctx, PaymentIntentRequest{
		Amount:   amount,
		Currency: s.policy.Currency,
		UserID:   caller.UserID,
		Items:    cart.Items,
	})
	if auth.Authorized() {
		recordCount(ctx, s.metrics, s.logger, aws_pkg.MetricPaymentAuthorized, nil)
		return &CheckoutResult{
			ClientSecret:    auth.ClientSecret,
			PaymentIntentID: auth.PaymentIntentID,
			Amount:          amount,
		}, nil
	}

	recordCount(ctx, s.metrics, s.logger, aws_pkg.MetricPaymentUnavailable, nil)
	if !s.policy.MockFallback {
		s.logger.Error("Payment processor unavailable", zap.Error(auth.Cause))
		return nil, apperrors.Unavailable("Payment processor unavailable", auth.Cause)
	}

	s.logger.Warn("Payment processor unavailable, returning mock payment intent",
		zap.String("user_id", caller.UserID),
		zap.Int64("amount", amount),
		zap.Error(auth.Cause),
	)
	return &CheckoutResult{
		ClientSecret:    MockClientSecret,
		PaymentIntentID: fmt.Sprintf("pi_mock_%d", time.Now().UnixMilli()),
		Amount:          amount,
		Mock:            true,
	}, nil
}
