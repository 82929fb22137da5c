package controllers

import (
	"io"
	"net/http"

	"cakeshop/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBody        = 65536
)

// WebhookController receives payment processor notifications.
type WebhookController struct {
	parser services.WebhookParser
	orders services.OrderService
	logger *zap.Logger
}

func NewWebhookController(parser services.WebhookParser, orders services.OrderService, logger *zap.Logger) *WebhookController {
	return &WebhookController{parser: parser, orders: orders, logger: logger}
}

// StripeWebhook handles POST /webhooks/stripe.
func (wc *WebhookController) StripeWebhook(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	event, err := wc.parser.ParseWebhook(payload, ctx.GetHeader(stripeSignatureHeader))
	if err != nil {
		wc.logger.Warn("Rejected webhook", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		if _, err := wc.orders.MarkPaid(ctx.Request.Context(), event.PaymentIntentID); err != nil {
			fail(ctx, err)
			return
		}
	case "payment_intent.payment_failed":
		wc.logger.Warn("Payment failed",
			zap.String("event_id", event.ID),
			zap.String("payment_intent_id", event.PaymentIntentID),
		)
	default:
		wc.logger.Debug("Ignoring webhook event", zap.String("type", event.Type))
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "received"})
}
