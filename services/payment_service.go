package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cakeshop/models"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

// ErrProcessorNotConfigured is the cause reported when no API key is set.
var ErrProcessorNotConfigured = errors.New("payment processor not configured")

type AuthorizationStatus string

const (
	PaymentAuthorized           AuthorizationStatus = "authorized"
	PaymentProcessorUnavailable AuthorizationStatus = "processor_unavailable"
)

// PaymentAuthorization is the outcome of asking the processor for a payment
// intent. Callers decide what an unavailable processor means for them.
type PaymentAuthorization struct {
	Status          AuthorizationStatus
	ClientSecret    string
	PaymentIntentID string
	Cause           error
}

func (a PaymentAuthorization) Authorized() bool {
	return a.Status == PaymentAuthorized
}

// PaymentIntentRequest describes the amount to authorize in the smallest
// currency unit.
type PaymentIntentRequest struct {
	Amount   int64
	Currency string
	UserID   string
	Items    []models.CartItem
}

type PaymentProcessor interface {
	Authorize(ctx context.Context, req PaymentIntentRequest) PaymentAuthorization
}

// WebhookEvent is the part of a processor notification the shop acts on.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
}

type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// StripeService creates payment intents and verifies webhooks with Stripe.
type StripeService struct {
	intents    *paymentintent.Client
	secretKey  string
	webhookKey string
}

func NewStripeService(secretKey, webhookKey string) *StripeService {
	return &StripeService{
		intents:    &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		secretKey:  secretKey,
		webhookKey: webhookKey,
	}
}

func (s *StripeService) Authorize(ctx context.Context, req PaymentIntentRequest) PaymentAuthorization {
	if s.secretKey == "" {
		return PaymentAuthorization{Status: PaymentProcessorUnavailable, Cause: ErrProcessorNotConfigured}
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
	}
	params.Context = ctx
	params.AddMetadata("userId", req.UserID)
	params.AddMetadata("items", itemsMetadata(req.Items))

	pi, err := s.intents.New(params)
	if err != nil {
		return PaymentAuthorization{Status: PaymentProcessorUnavailable, Cause: err}
	}
	return PaymentAuthorization{
		Status:          PaymentAuthorized,
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
	}
}

func (s *StripeService) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if s.webhookKey == "" {
		return nil, errors.New("webhook secret not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "payment_intent.") && event.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.PaymentIntentID = pi.ID
	}
	return out, nil
}

// itemsMetadata encodes "productId:quantity" pairs within Stripe's 500
// character metadata limit.
func itemsMetadata(items []models.CartItem) string {
	var b strings.Builder
	for i, item := range items {
		part := fmt.Sprintf("%s:%d", item.ProductID, item.Quantity)
		if i > 0 {
			part = "," + part
		}
		if b.Len()+len(part) > 500 {
			break
		}
		b.WriteString(part)
	}
	return b.String()
}
