package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"cakeshop/database"
	"cakeshop/models"
)

// MemoryUserRepository implements UserRepository on a MemoryDB.
type MemoryUserRepository struct {
	db *database.MemoryDB
}

func NewMemoryUserRepository(db *database.MemoryDB) UserRepository {
	return &MemoryUserRepository{db: db}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.db.RLock()
	defer r.db.RUnlock()
	for i := range r.db.Users {
		if r.db.Users[i].ID == id {
			u := r.db.Users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.RLock()
	defer r.db.RUnlock()
	for i := range r.db.Users {
		if r.db.Users[i].Email == email {
			u := r.db.Users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	r.db.RLock()
	defer r.db.RUnlock()
	for i := range r.db.Users {
		if t := r.db.Users[i].ResetToken; t != nil && *t == token {
			u := r.db.Users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.db.Lock()
	defer r.db.Unlock()
	for i := range r.db.Users {
		if r.db.Users[i].Email == user.Email || r.db.Users[i].ID == user.ID {
			return ErrDuplicate
		}
	}
	r.db.Users = append(r.db.Users, *user)
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.db.Lock()
	defer r.db.Unlock()
	idx := -1
	for i := range r.db.Users {
		if r.db.Users[i].ID == user.ID {
			idx = i
		} else if r.db.Users[i].Email == user.Email {
			return ErrDuplicate
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	r.db.Users[idx] = *user
	return nil
}

// MemoryProductRepository implements ProductRepository on a MemoryDB.
type MemoryProductRepository struct {
	db *database.MemoryDB
}

func NewMemoryProductRepository(db *database.MemoryDB) ProductRepository {
	return &MemoryProductRepository{db: db}
}

func (r *MemoryProductRepository) List(_ context.Context, f ProductFilter) ([]models.Product, int64, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	category := strings.ToLower(f.Category)
	search := strings.ToLower(f.Search)

	matched := make([]models.Product, 0, len(r.db.Products))
	for _, p := range r.db.Products {
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		matched = append(matched, p)
	}

	total := int64(len(matched))
	start := min(max(f.Offset, 0), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}

	page := make([]models.Product, 0, end-start)
	for _, p := range matched[start:end] {
		page = append(page, p.Clone())
	}
	return page, total, nil
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.db.RLock()
	defer r.db.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		p := r.db.Products[i].Clone()
		return &p, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.db.Lock()
	defer r.db.Unlock()
	if r.indexOf(product.ID) >= 0 {
		return ErrDuplicate
	}
	r.db.Products = append(r.db.Products, product.Clone())
	return nil
}

func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.db.Lock()
	defer r.db.Unlock()
	i := r.indexOf(product.ID)
	if i < 0 {
		return ErrNotFound
	}
	r.db.Products[i] = product.Clone()
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.db.Lock()
	defer r.db.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.db.Products = append(r.db.Products[:i], r.db.Products[i+1:]...)
	return nil
}

// indexOf must be called with the lock held.
func (r *MemoryProductRepository) indexOf(id string) int {
	for i := range r.db.Products {
		if r.db.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// MemoryReviewRepository implements ReviewRepository on a MemoryDB.
type MemoryReviewRepository struct {
	db *database.MemoryDB
}

func NewMemoryReviewRepository(db *database.MemoryDB) ReviewRepository {
	return &MemoryReviewRepository{db: db}
}

func (r *MemoryReviewRepository) Create(_ context.Context, review *models.Review) error {
	r.db.Lock()
	defer r.db.Unlock()
	r.db.Reviews = append(r.db.Reviews, *review)
	return nil
}

func (r *MemoryReviewRepository) FindByProductID(_ context.Context, productID string) ([]models.Review, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	reviews := make([]models.Review, 0)
	for i := len(r.db.Reviews) - 1; i >= 0; i-- {
		if r.db.Reviews[i].ProductID == productID {
			reviews = append(reviews, r.db.Reviews[i])
		}
	}
	sort.SliceStable(reviews, func(a, b int) bool {
		return reviews[a].CreatedAt.After(reviews[b].CreatedAt)
	})
	return reviews, nil
}

// MemoryOrderRepository implements OrderRepository on a MemoryDB.
type MemoryOrderRepository struct {
	db *database.MemoryDB
}

func NewMemoryOrderRepository(db *database.MemoryDB) OrderRepository {
	return &MemoryOrderRepository{db: db}
}

func (r *MemoryOrderRepository) Place(_ context.Context, order *models.Order) ([]string, error) {
	r.db.Lock()
	defer r.db.Unlock()

	for i := range r.db.Orders {
		if r.db.Orders[i].ID == order.ID {
			return nil, ErrDuplicate
		}
	}
	r.db.Orders = append(r.db.Orders, order.Clone())

	var missing []string
	for _, item := range order.Items {
		found := false
		for i := range r.db.Products {
			p := &r.db.Products[i]
			if p.ID != item.ProductID {
				continue
			}
			p.Stock = max(p.Stock-item.Quantity, 0)
			p.UpdatedAt = order.CreatedAt
			found = true
			break
		}
		if !found {
			missing = append(missing, item.ProductID)
		}
	}
	return missing, nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.db.RLock()
	defer r.db.RUnlock()
	for i := range r.db.Orders {
		if r.db.Orders[i].ID == id {
			o := r.db.Orders[i].Clone()
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryOrderRepository) List(_ context.Context, userID string) ([]models.Order, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	orders := make([]models.Order, 0)
	for i := len(r.db.Orders) - 1; i >= 0; i-- {
		if userID == "" || r.db.Orders[i].UserID == userID {
			orders = append(orders, r.db.Orders[i].Clone())
		}
	}
	sort.SliceStable(orders, func(a, b int) bool {
		return orders[a].CreatedAt.After(orders[b].CreatedAt)
	})
	return orders, nil
}

func (r *MemoryOrderRepository) FindByPaymentIntentID(_ context.Context, paymentIntentID string) ([]models.Order, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var orders []models.Order
	for i := range r.db.Orders {
		if r.db.Orders[i].PaymentIntentID == paymentIntentID {
			orders = append(orders, r.db.Orders[i].Clone())
		}
	}
	return orders, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus, at time.Time) (*models.Order, error) {
	r.db.Lock()
	defer r.db.Unlock()
	for i := range r.db.Orders {
		if r.db.Orders[i].ID == id {
			r.db.Orders[i].Status = status
			r.db.Orders[i].UpdatedAt = at
			o := r.db.Orders[i].Clone()
			return &o, nil
		}
	}
	return nil, ErrNotFound
}
