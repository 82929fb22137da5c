package services

import (
	"context"
	"encoding/json"
	"time"

	aws_pkg "cakeshop/pkg/aws"

	"go.uber.org/zap"
)

const (
	EventOrderCreated           = "order.created"
	EventOrderStatusUpdated     = "order.status_updated"
	EventPasswordResetRequested = "auth.password_reset_requested"
	EventUserRegistered         = "auth.user_registered"
)

// OrderEvent is published whenever an order is created or changes status.
type OrderEvent struct {
	EventType string    `json:"event_type"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"item_count"`
	Timestamp time.Time `json:"timestamp"`
}

// AuthEvent carries identity lifecycle notifications. ResetToken is only set
// for password reset requests; the notification sender builds the link.
type AuthEvent struct {
	EventType  string     `json:"event_type"`
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	ResetToken string     `json:"reset_token,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// eventPublisher sends best-effort domain events. Failures are logged and
// never fail the calling request.
type eventPublisher struct {
	sns      aws_pkg.SNSPublisher
	topicArn string
	logger   *zap.Logger
}

func (p eventPublisher) publish(ctx context.Context, eventType string, event any) {
	if p.sns == nil || p.topicArn == "" {
		p.logger.Debug("SNS not configured, skipping event", zap.String("event_type", eventType))
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	if err := p.sns.Publish(ctx, p.topicArn, body); err != nil {
		p.logger.Error("Failed to publish event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	p.logger.Info("Published event", zap.String("event_type", eventType))
}

// recordCount and recordValue push business metrics. A CloudWatch failure is
// logged and otherwise ignored.
func recordCount(ctx context.Context, m aws_pkg.MetricsRecorder, log *zap.Logger, name string, dims map[string]string) {
	if m == nil {
		return
	}
	if err := m.RecordCount(ctx, name, dims); err != nil {
		log.Warn("Failed to record metric", zap.String("metric", name), zap.Error(err))
	}
}

func recordValue(ctx context.Context, m aws_pkg.MetricsRecorder, log *zap.Logger, name string, value float64, dims map[string]string) {
	if m == nil {
		return
	}
	if err := m.RecordValue(ctx, name, value, dims); err != nil {
		log.Warn("Failed to record metric", zap.String("metric", name), zap.Error(err))
	}
}
