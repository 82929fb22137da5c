package database

import (
	"sync"
	"time"

	"cakeshop/models"
)

// MemoryDB is the in-process record store. Collections keep insertion order.
// Repositories must hold the embedded lock while touching any collection.
type MemoryDB struct {
	sync.RWMutex

	Users    []models.User
	Products []models.Product
	Reviews  []models.Review
	Orders   []models.Order
}

// NewMemoryDB returns an empty store.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{}
}

// NewSeededMemoryDB returns a store loaded with the sample catalog.
func NewSeededMemoryDB() (*MemoryDB, error) {
	data, err := NewSeedData(time.Now())
	if err != nil {
		return nil, err
	}
	db := NewMemoryDB()
	db.Load(data)
	return db, nil
}

// Load replaces the store contents with data.
func (db *MemoryDB) Load(data *SeedData) {
	db.Lock()
	defer db.Unlock()

	db.Users = append([]models.User(nil), data.Users...)
	db.Products = make([]models.Product, 0, len(data.Products))
	for _, p := range data.Products {
		db.Products = append(db.Products, p.Clone())
	}
	db.Reviews = append([]models.Review(nil), data.Reviews...)
	db.Orders = nil
}
