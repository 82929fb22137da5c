package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	apperrors "cakeshop/common/errors"
	"cakeshop/models"
	"cakeshop/repository"
	"cakeshop/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type orderFixture struct {
	st      *store
	svc     services.OrderService
	sns     *mockSNSPublisher
	cache   *fakeCache
	idem    *fakeIdempotency
	metrics *mockMetrics
	logs    *observer.ObservedLogs
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	f := &orderFixture{
		st:      newStore(t),
		sns:     &mockSNSPublisher{},
		cache:   newFakeCache(),
		idem:    &fakeIdempotency{},
		metrics: &mockMetrics{},
		logs:    logs,
	}
	f.svc = services.NewOrderService(f.st.orders, f.idem, f.cache, f.sns, "arn:aws:sns:us-east-1:000000000000:orders", f.metrics, zap.New(core))
	return f
}

func orderRequest(items ...services.OrderItemRequest) *services.CreateOrderRequest {
	return &services.CreateOrderRequest{
		Items: items,
		ShippingAddress: models.ShippingAddress{
			FullName: "Jane Baker",
			Address:  "1 Frosting Lane",
			City:     "Portland",
			State:    "OR",
			ZipCode:  "97201",
			Country:  "US",
			Phone:    "+1 (503) 555-0100",
		},
		PaymentIntentID: "pi_123",
	}
}

func line(productID string, qty int, price float64) services.OrderItemRequest {
	return services.OrderItemRequest{
		ProductID:   productID,
		ProductName: "Cake " + productID,
		Quantity:    qty,
		Price:       price,
	}
}

func TestOrderCreate(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, customer, orderRequest(line("1", 2, 45.99), line("2", 1, 42.99)), "")
	require.NoError(t, err)
	assert.Contains(t, order.ID, "order-")
	assert.Equal(t, customer.UserID, order.UserID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.InDelta(t, 134.97, order.Total, 0.0001)
	assert.Equal(t, "pi_123", order.PaymentIntentID)
	assert.Equal(t, 1, f.cache.invalidated)
	assert.Equal(t, 1, f.sns.count())
	assert.Contains(t, f.metrics.recorded(), "OrdersCreated")

	var event services.OrderEvent
	require.NoError(t, json.Unmarshal(f.sns.published[0], &event))
	assert.Equal(t, services.EventOrderCreated, event.EventType)
	assert.Equal(t, order.ID, event.OrderID)

	p, err := f.st.products.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 13, p.Stock)
}

func TestOrderCreate_KeepsPriceSnapshot(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, customer, orderRequest(line("3", 2, 48.99)), "")
	require.NoError(t, err)

	p, _ := f.st.products.FindByID(ctx, "3")
	p.Price = 99.99
	require.NoError(t, f.st.products.Update(ctx, p))

	got, err := f.svc.Get(ctx, customer, order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 97.98, got.Total, 0.0001)
	assert.Equal(t, 48.99, got.Items[0].Price)
}

func TestOrderCreate_ClampsStockAtZero(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	p, _ := f.st.products.FindByID(ctx, "5")
	p.Stock = 3
	require.NoError(t, f.st.products.Update(ctx, p))

	_, err := f.svc.Create(ctx, customer, orderRequest(line("5", 5, 49.99)), "")
	require.NoError(t, err)

	p, _ = f.st.products.FindByID(ctx, "5")
	assert.Equal(t, 0, p.Stock)
}

func TestOrderCreate_MissingProductIsLogged(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), customer, orderRequest(line("gone", 1, 10), line("1", 1, 45.99)), "")
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)

	warnings := f.logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "gone", warnings[0].ContextMap()["product_id"])
}

func TestOrderCreate_Anonymous(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), nil, orderRequest(line("1", 1, 45.99)), "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	all, _ := f.st.orders.List(context.Background(), "")
	assert.Empty(t, all)
}

func TestOrderCreate_Idempotent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "key-1")
	require.NoError(t, err)
	again, err := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := f.svc.Create(ctx, stranger, orderRequest(line("1", 1, 45.99)), "key-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	all, _ := f.st.orders.List(ctx, "")
	assert.Len(t, all, 2)
	p, _ := f.st.products.FindByID(ctx, "1")
	assert.Equal(t, 13, p.Stock)
}

func TestOrderCreate_ConcurrentSameKeyPlacesOneOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	const workers = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  = map[string]int{}
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "double-click")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids[order.ID]++
		}()
	}
	wg.Wait()

	all, _ := f.st.orders.List(ctx, "")
	assert.Len(t, all, 1)
	assert.Len(t, ids, 1)
	for _, err := range errs {
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	}

	p, _ := f.st.products.FindByID(ctx, "1")
	assert.Equal(t, 14, p.Stock)
	assert.Equal(t, all[0].ID, f.idem.keys[customer.UserID+":double-click"])
}

func TestOrderCreate_PendingKeyIsConflict(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.idem.keys = map[string]string{customer.UserID + ":in-flight": repository.IdempotencyPending}

	_, err := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "in-flight")
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, http.StatusConflict, apperrors.From(err).Code)

	all, _ := f.st.orders.List(ctx, "")
	assert.Empty(t, all)
}

func TestOrderGet_Authorization(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, nil, order.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.svc.Get(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	got, err := f.svc.Get(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.Get(ctx, customer, "order-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderList_ScopedByRole(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	mine, _ := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "")
	_, _ = f.svc.Create(ctx, stranger, orderRequest(line("2", 1, 42.99)), "")
	latest, _ := f.svc.Create(ctx, customer, orderRequest(line("3", 1, 48.99)), "")

	orders, err := f.svc.List(ctx, customer)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, latest.ID, orders[0].ID)
	assert.Equal(t, mine.ID, orders[1].ID)

	all, err := f.svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.List(ctx, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestOrderUpdateStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order, _ := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "")

	_, err := f.svc.UpdateStatus(ctx, customer, order.ID, &services.UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = f.svc.UpdateStatus(ctx, admin, order.ID, &services.UpdateOrderStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.UpdateStatus(ctx, admin, "order-missing", &services.UpdateOrderStatusRequest{Status: models.OrderStatusShipped})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Any status may follow any other.
	for _, status := range []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusPending, models.OrderStatusCancelled} {
		updated, err := f.svc.UpdateStatus(ctx, admin, order.ID, &services.UpdateOrderStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.False(t, updated.UpdatedAt.Before(order.UpdatedAt))
	}
	assert.Equal(t, 4, f.sns.count())
}

func TestOrderMarkPaid(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	pending, _ := f.svc.Create(ctx, customer, orderRequest(line("1", 1, 45.99)), "")
	cancelled, _ := f.svc.Create(ctx, customer, orderRequest(line("2", 1, 42.99)), "")
	_, err := f.svc.UpdateStatus(ctx, admin, cancelled.ID, &services.UpdateOrderStatusRequest{Status: models.OrderStatusCancelled})
	require.NoError(t, err)

	moved, err := f.svc.MarkPaid(ctx, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	got, _ := f.svc.Get(ctx, admin, pending.ID)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)
	got, _ = f.svc.Get(ctx, admin, cancelled.ID)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	moved, err = f.svc.MarkPaid(ctx, "pi_unknown")
	require.NoError(t, err)
	assert.Zero(t, moved)
}
