package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	apperrors "cakeshop/common/errors"
	"cakeshop/models"
	aws_pkg "cakeshop/pkg/aws"
	"cakeshop/repository"

	"go.uber.org/zap"
)

const (
	IdempotencyTTL = 24 * time.Hour

	// IdempotencyPendingTTL bounds how long a crashed request can hold a key.
	IdempotencyPendingTTL = time.Minute
)

type OrderService interface {
	Create(ctx context.Context, caller *models.Identity, req *CreateOrderRequest, idempotencyKey string) (*models.Order, error)
	List(ctx context.Context, caller *models.Identity) ([]models.Order, error)
	Get(ctx context.Context, caller *models.Identity, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, caller *models.Identity, id string, req *UpdateOrderStatusRequest) (*models.Order, error)
	MarkPaid(ctx context.Context, paymentIntentID string) (int, error)
}

type orderServiceImpl struct {
	orders  repository.OrderRepository
	idem    repository.IdempotencyStore
	catalog CatalogCache
	events  eventPublisher
	metrics aws_pkg.MetricsRecorder
	logger  *zap.Logger
}

// NewOrderService creates an OrderService. idem and catalog may be nil.
func NewOrderService(
	orders repository.OrderRepository,
	idem repository.IdempotencyStore,
	catalog CatalogCache,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:  orders,
		idem:    idem,
		catalog: catalog,
		events:  eventPublisher{sns: snsClient, topicArn: snsTopicArn, logger: logger},
		metrics: metrics,
		logger:  logger,
	}
}

// Create places an order and decrements stock in one step. Lines whose
// product has been removed are kept on the order and logged.
func (s *orderServiceImpl) Create(ctx context.Context, caller *models.Identity, req *CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("")
	}

	reserved, existing, err := s.reserve(ctx, caller, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	order := &models.Order{
		ID:              newID("order"),
		UserID:          caller.UserID,
		Items:           make([]models.OrderItem, 0, len(req.Items)),
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentIntentID: req.PaymentIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:      order.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
		})
	}
	order.Total = order.CalculateTotal()

	missing, err := s.orders.Place(ctx, order)
	if err != nil {
		s.logger.Error("Failed to place order", zap.String("user_id", caller.UserID), zap.Error(err))
		if reserved {
			s.release(ctx, caller, idempotencyKey)
		}
		return nil, apperrors.Internal(err)
	}
	for _, productID := range missing {
		s.logger.Warn("Ordered product no longer exists, stock not decremented",
			zap.String("order_id", order.ID),
			zap.String("product_id", productID),
		)
	}

	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	if reserved {
		s.remember(ctx, caller, idempotencyKey, order.ID)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Float64("total", order.Total),
	)
	recordCount(ctx, s.metrics, s.logger, aws_pkg.MetricOrdersCreated, nil)
	recordValue(ctx, s.metrics, s.logger, aws_pkg.MetricOrderRevenue, order.Total, nil)
	s.publish(ctx, EventOrderCreated, order)
	return order, nil
}

func (s *orderServiceImpl) List(ctx context.Context, caller *models.Identity) ([]models.Order, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("")
	}

	userID := caller.UserID
	if caller.IsAdmin() {
		userID = ""
	}
	orders, err := s.orders.List(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return orders, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, caller *models.Identity, id string) (*models.Order, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("")
	}

	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !caller.IsAdmin() && !caller.Owns(order.UserID) {
		return nil, apperrors.Unauthorized("")
	}
	return order, nil
}

// UpdateStatus lets an admin set any status; there is no transition graph.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, caller *models.Identity, id string, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Unauthorized("")
	}
	if !req.Status.Valid() {
		return nil, apperrors.Validation([]apperrors.FieldError{{
			Field:   "status",
			Message: "must be one of: pending, processing, shipped, delivered, cancelled",
		}})
	}

	order, err := s.orders.UpdateStatus(ctx, id, req.Status, time.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		s.logger.Error("Failed to update order status", zap.String("order_id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("Order status updated", zap.String("order_id", id), zap.String("status", string(req.Status)))
	s.publish(ctx, EventOrderStatusUpdated, order)
	return order, nil
}

// MarkPaid moves the pending orders paid by paymentIntentID to processing and
// returns how many moved.
func (s *orderServiceImpl) MarkPaid(ctx context.Context, paymentIntentID string) (int, error) {
	if paymentIntentID == "" {
		return 0, nil
	}

	orders, err := s.orders.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}

	moved := 0
	for _, o := range orders {
		if o.Status != models.OrderStatusPending {
			continue
		}
		updated, err := s.orders.UpdateStatus(ctx, o.ID, models.OrderStatusProcessing, time.Now())
		if err != nil {
			return moved, apperrors.Internal(err)
		}
		moved++
		s.publish(ctx, EventOrderStatusUpdated, updated)
	}

	s.logger.Info("Payment confirmed",
		zap.String("payment_intent_id", paymentIntentID),
		zap.Int("orders_updated", moved),
	)
	return moved, nil
}

// reserve claims the caller's idempotency key before an order is placed.
// It returns the earlier order when the key already produced one, and a
// conflict while the first request holding the key is still running.
// Store failures fall through to an unguarded create.
func (s *orderServiceImpl) reserve(ctx context.Context, caller *models.Identity, key string) (bool, *models.Order, error) {
	if s.idem == nil || key == "" {
		return false, nil, nil
	}
	storeKey := caller.UserID + ":" + key

	ok, err := s.idem.Reserve(ctx, storeKey, IdempotencyPendingTTL)
	if err != nil {
		s.logger.Warn("Idempotency reservation failed", zap.Error(err))
		return false, nil, nil
	}
	if ok {
		return true, nil, nil
	}

	orderID, err := s.idem.Get(ctx, storeKey)
	if err != nil {
		s.logger.Warn("Idempotency lookup failed", zap.Error(err))
		return false, nil, nil
	}
	if orderID == "" || orderID == repository.IdempotencyPending {
		return false, nil, apperrors.New(http.StatusConflict, apperrors.KindConflict,
			"A request with this Idempotency-Key is still in progress", nil)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil || !caller.Owns(order.UserID) {
		return false, nil, nil
	}
	s.logger.Info("Replaying idempotent order", zap.String("order_id", order.ID))
	return false, order, nil
}

func (s *orderServiceImpl) remember(ctx context.Context, caller *models.Identity, key, orderID string) {
	if err := s.idem.Set(ctx, caller.UserID+":"+key, orderID, IdempotencyTTL); err != nil {
		s.logger.Warn("Failed to store idempotency key", zap.Error(err))
	}
}

func (s *orderServiceImpl) release(ctx context.Context, caller *models.Identity, key string) {
	if err := s.idem.Release(ctx, caller.UserID+":"+key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.Error(err))
	}
}

func (s *orderServiceImpl) publish(ctx context.Context, eventType string, order *models.Order) {
	s.events.publish(ctx, eventType, OrderEvent{
		EventType: eventType,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    string(order.Status),
		Total:     order.Total,
		ItemCount: len(order.Items),
		Timestamp: time.Now(),
	})
}
