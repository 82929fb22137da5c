package controllers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "cakeshop/common/errors"
	"cakeshop/controllers"
	"cakeshop/database"
	"cakeshop/models"
	"cakeshop/repository"
	"cakeshop/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockParser struct {
	mock.Mock
}

func (m *mockParser) ParseWebhook(payload []byte, signature string) (*services.WebhookEvent, error) {
	args := m.Called(string(payload), signature)
	if ev := args.Get(0); ev != nil {
		return ev.(*services.WebhookEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func setupWebhook(t *testing.T, parser services.WebhookParser) (*gin.Engine, repository.OrderRepository) {
	t.Helper()
	db, err := database.NewSeededMemoryDB()
	require.NoError(t, err)
	orders := repository.NewMemoryOrderRepository(db)
	orderSvc := services.NewOrderService(orders, nil, nil, nil, "", nil, zap.NewNop())

	wc := controllers.NewWebhookController(parser, orderSvc, zap.NewNop())
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware(zap.NewNop()))
	r.POST("/webhooks/stripe", wc.StripeWebhook)
	return r, orders
}

func placeOrder(t *testing.T, orders repository.OrderRepository, id, paymentIntentID string) {
	t.Helper()
	now := time.Now()
	_, err := orders.Place(context.Background(), &models.Order{
		ID:              id,
		UserID:          "user-1",
		Items:           []models.OrderItem{{ProductID: "1", ProductName: "Chocolate Fudge Delight", Quantity: 1, Price: 45.99}},
		Total:           45.99,
		Status:          models.OrderStatusPending,
		PaymentIntentID: paymentIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
}

func postWebhook(r *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBufferString(body))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhook_PaymentSucceededMovesOrder(t *testing.T) {
	parser := new(mockParser)
	r, orders := setupWebhook(t, parser)
	placeOrder(t, orders, "order-a", "pi_123")

	parser.On("ParseWebhook", `{"id":"evt_1"}`, "t=1,v1=abc").Return(&services.WebhookEvent{
		ID:              "evt_1",
		Type:            "payment_intent.succeeded",
		PaymentIntentID: "pi_123",
	}, nil)

	w := postWebhook(r, `{"id":"evt_1"}`, "t=1,v1=abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"received"}`, w.Body.String())

	order, err := orders.FindByID(context.Background(), "order-a")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	parser.AssertExpectations(t)
}

func TestStripeWebhook_PaymentFailedLeavesOrder(t *testing.T) {
	parser := new(mockParser)
	r, orders := setupWebhook(t, parser)
	placeOrder(t, orders, "order-b", "pi_456")

	parser.On("ParseWebhook", mock.Anything, mock.Anything).Return(&services.WebhookEvent{
		ID:              "evt_2",
		Type:            "payment_intent.payment_failed",
		PaymentIntentID: "pi_456",
	}, nil)

	w := postWebhook(r, `{}`, "sig")
	assert.Equal(t, http.StatusOK, w.Code)

	order, err := orders.FindByID(context.Background(), "order-b")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestStripeWebhook_InvalidSignature(t *testing.T) {
	parser := new(mockParser)
	r, _ := setupWebhook(t, parser)
	parser.On("ParseWebhook", mock.Anything, "bad").Return(nil, errors.New("signature mismatch"))

	w := postWebhook(r, `{}`, "bad")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid signature"}`, w.Body.String())
}

func TestStripeWebhook_IgnoresOtherEvents(t *testing.T) {
	parser := new(mockParser)
	r, _ := setupWebhook(t, parser)
	parser.On("ParseWebhook", mock.Anything, mock.Anything).Return(&services.WebhookEvent{ID: "evt_3", Type: "charge.refunded"}, nil)

	w := postWebhook(r, `{}`, "sig")
	assert.Equal(t, http.StatusOK, w.Code)
}
