package services_test

import (
	"context"
	"errors"
	"testing"

	apperrors "cakeshop/common/errors"
	"cakeshop/models"
	"cakeshop/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

func checkoutItems() []models.CartItem {
	return []models.CartItem{
		{ProductID: "8", Name: "Funfetti Celebration", Price: 38.99, Quantity: 3},
		{ProductID: "9", Name: "Black Forest Cake", Price: 52.99, Quantity: 1},
	}
}

func TestCheckout_AmountIsRoundedCents(t *testing.T) {
	processor := &mockProcessor{}
	processor.On("Authorize", mock.Anything, mock.MatchedBy(func(req services.PaymentIntentRequest) bool {
		return req.Amount == 16996 && req.Currency == "usd" && req.UserID == customer.UserID
	})).Return(services.PaymentAuthorization{
		Status:          services.PaymentAuthorized,
		ClientSecret:    "pi_123_secret_abc",
		PaymentIntentID: "pi_123",
	})

	metrics := &mockMetrics{}
	svc := services.NewCheckoutService(processor, services.CheckoutPolicy{MockFallback: true}, metrics, zap.NewNop())

	res, err := svc.CreatePaymentIntent(context.Background(), customer, &services.CheckoutRequest{Items: checkoutItems()})
	require.NoError(t, err)
	assert.Equal(t, int64(16996), res.Amount)
	assert.Equal(t, "pi_123", res.PaymentIntentID)
	assert.Equal(t, "pi_123_secret_abc", res.ClientSecret)
	assert.False(t, res.Mock)
	assert.Contains(t, metrics.recorded(), "PaymentAuthorized")
	processor.AssertExpectations(t)
}

func TestCheckout_ProcessorUnavailableWithFallback(t *testing.T) {
	processor := &mockProcessor{}
	processor.On("Authorize", mock.Anything, mock.Anything).Return(services.PaymentAuthorization{
		Status: services.PaymentProcessorUnavailable,
		Cause:  errors.New("connection refused"),
	})
	svc := services.NewCheckoutService(processor, services.CheckoutPolicy{MockFallback: true}, nil, zap.NewNop())

	res, err := svc.CreatePaymentIntent(context.Background(), customer, &services.CheckoutRequest{Items: checkoutItems()})
	require.NoError(t, err)
	assert.Equal(t, services.MockClientSecret, res.ClientSecret)
	assert.Regexp(t, `^pi_mock_\d+$`, res.PaymentIntentID)
	assert.Equal(t, int64(16996), res.Amount)
	assert.True(t, res.Mock)
}

func TestCheckout_ProcessorUnavailableWithoutFallback(t *testing.T) {
	processor := &mockProcessor{}
	processor.On("Authorize", mock.Anything, mock.Anything).Return(services.PaymentAuthorization{
		Status: services.PaymentProcessorUnavailable,
		Cause:  services.ErrProcessorNotConfigured,
	})
	svc := services.NewCheckoutService(processor, services.CheckoutPolicy{}, nil, zap.NewNop())

	res, err := svc.CreatePaymentIntent(context.Background(), customer, &services.CheckoutRequest{Items: checkoutItems()})
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Equal(t, 503, apperrors.From(err).Code)
	assert.ErrorIs(t, err, services.ErrProcessorNotConfigured)
}

func TestCheckout_Anonymous(t *testing.T) {
	processor := &mockProcessor{}
	svc := services.NewCheckoutService(processor, services.CheckoutPolicy{MockFallback: true}, nil, zap.NewNop())

	_, err := svc.CreatePaymentIntent(context.Background(), nil, &services.CheckoutRequest{Items: checkoutItems()})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	processor.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
}

func TestStripeService_WithoutKeyIsUnavailable(t *testing.T) {
	svc := services.NewStripeService("", "")

	auth := svc.Authorize(context.Background(), services.PaymentIntentRequest{Amount: 100, Currency: "usd"})
	assert.False(t, auth.Authorized())
	assert.Equal(t, services.PaymentProcessorUnavailable, auth.Status)
	assert.ErrorIs(t, auth.Cause, services.ErrProcessorNotConfigured)
}

func TestStripeService_ParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	svc := services.NewStripeService("", secret)
	payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","object":"payment_intent"}}}`)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})

	event, err := svc.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "payment_intent.succeeded", event.Type)
	assert.Equal(t, "pi_123", event.PaymentIntentID)

	_, err = svc.ParseWebhook(payload, "t=1,v1=bad")
	assert.Error(t, err)
}
