package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cakeshop/database"
	"cakeshop/models"
	"cakeshop/repository"
	"cakeshop/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type store struct {
	db       *database.MemoryDB
	users    repository.UserRepository
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	orders   repository.OrderRepository
}

func newStore(t *testing.T) *store {
	t.Helper()
	db, err := database.NewSeededMemoryDB()
	require.NoError(t, err)
	return &store{
		db:       db,
		users:    repository.NewMemoryUserRepository(db),
		products: repository.NewMemoryProductRepository(db),
		reviews:  repository.NewMemoryReviewRepository(db),
		orders:   repository.NewMemoryOrderRepository(db),
	}
}

var (
	admin    = &models.Identity{UserID: database.AdminID, Email: database.AdminEmail, Role: models.RoleAdmin}
	customer = &models.Identity{UserID: "user-1", Email: "jane@example.com", Role: models.RoleCustomer}
	stranger = &models.Identity{UserID: "user-2", Email: "joe@example.com", Role: models.RoleCustomer}
)

// --- Mock SNS Publisher ---

type mockSNSPublisher struct {
	mu        sync.Mutex
	published [][]byte
}

func (m *mockSNSPublisher) Publish(_ context.Context, _ string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, message)
	return nil
}

func (m *mockSNSPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

// --- Mock Metrics ---

type mockMetrics struct {
	mu    sync.Mutex
	names []string
}

func (m *mockMetrics) RecordCount(_ context.Context, name string, _ map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	return nil
}

func (m *mockMetrics) RecordValue(_ context.Context, name string, _ float64, _ map[string]string) error {
	return m.RecordCount(context.Background(), name, nil)
}

func (m *mockMetrics) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.names...)
}

// --- Mock Payment Processor ---

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Authorize(ctx context.Context, req services.PaymentIntentRequest) services.PaymentAuthorization {
	args := m.Called(ctx, req)
	return args.Get(0).(services.PaymentAuthorization)
}

// --- Fake catalog cache ---

type fakeCache struct {
	mu          sync.Mutex
	version     int64
	pages       map[services.ListProductsParams]*services.ProductPage
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{version: 1, pages: make(map[services.ListProductsParams]*services.ProductPage)}
}

func (c *fakeCache) GetList(_ context.Context, p services.ListProductsParams) (*services.ProductPage, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[p]
	return page, c.version, ok
}

// SetList drops pages read under an older version, like keys orphaned in redis.
func (c *fakeCache) SetList(version int64, p services.ListProductsParams, page *services.ProductPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != c.version {
		return
	}
	c.pages[p] = page
}

func (c *fakeCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.pages = make(map[services.ListProductsParams]*services.ProductPage)
	c.invalidated++
}

func (c *fakeCache) cached(p services.ListProductsParams) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pages[p]
	return ok
}

// --- Fake idempotency store ---

type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func (f *fakeIdempotency) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.keys[key]; held {
		return false, nil
	}
	if f.keys == nil {
		f.keys = make(map[string]string)
	}
	f.keys[key] = repository.IdempotencyPending
	return true, nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	return nil
}

func (f *fakeIdempotency) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

func (f *fakeIdempotency) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = make(map[string]string)
	}
	f.keys[key] = value
	return nil
}

func intPtr(v int) *int { return &v }
