package database

import (
	"fmt"
	"time"

	"cakeshop/models"

	"golang.org/x/crypto/bcrypt"
)

const (
	AdminID       = "admin-1"
	AdminEmail    = "admin@cakeshop.com"
	AdminPassword = "admin123"
)

type seedProduct struct {
	name, description, category, image string
	extraImages                         []string
	price                               float64
	stock                               int
}

var seedProducts = []seedProduct{
	{
		name:        "Chocolate Dream Cake",
		description: "Rich, moist chocolate cake with layers of dark chocolate ganache and chocolate buttercream. Perfect for chocolate lovers!",
		category:    "Chocolate",
		image:       "https://images.unsplash.com/photo-1578985545062-69928b1d9587?w=800&q=80",
		extraImages: []string{"https://images.unsplash.com/photo-1606890737304-57a1ca8a5b62?w=800&q=80"},
		price:       45.99,
		stock:       15,
	},
	{
		name:        "Vanilla Berry Delight",
		description: "Light and fluffy vanilla sponge cake layered with fresh berries and cream cheese frosting.",
		category:    "Fruit",
		image:       "https://images.unsplash.com/photo-1565958011703-44f9829ba187?w=800&q=80",
		price:       42.99,
		stock:       12,
	},
	{
		name:        "Red Velvet Romance",
		description: "Classic red velvet cake with tangy cream cheese frosting. A timeless favorite!",
		category:    "Classic",
		image:       "https://images.unsplash.com/photo-1586985289688-ca3cf47d3e6e?w=800&q=80",
		price:       48.99,
		stock:       10,
	},
	{
		name:        "Lemon Sunshine Cake",
		description: "Zesty lemon cake with lemon curd filling and light lemon buttercream. Refreshing and delicious!",
		category:    "Fruit",
		image:       "https://images.unsplash.com/photo-1519915212116-7cfef71f1d3e?w=800&q=80",
		price:       41.99,
		stock:       18,
	},
	{
		name:        "Caramel Heaven",
		description: "Decadent caramel cake with salted caramel drizzle and caramel buttercream frosting.",
		category:    "Caramel",
		image:       "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=800&q=80",
		price:       49.99,
		stock:       8,
	},
	{
		name:        "Strawberry Shortcake",
		description: "Classic strawberry shortcake with fresh strawberries and whipped cream.",
		category:    "Fruit",
		image:       "https://images.unsplash.com/photo-1565299624946-b28f40a0ae38?w=800&q=80",
		price:       39.99,
		stock:       20,
	},
	{
		name:        "Coffee Tiramisu Cake",
		description: "Italian-inspired tiramisu cake with espresso-soaked layers and mascarpone frosting.",
		category:    "Coffee",
		image:       "https://images.unsplash.com/photo-1571115177098-24ec42ed204d?w=800&q=80",
		price:       52.99,
		stock:       9,
	},
	{
		name:        "Funfetti Celebration",
		description: "Colorful vanilla cake with rainbow sprinkles and vanilla buttercream. Perfect for celebrations!",
		category:    "Classic",
		image:       "https://images.unsplash.com/photo-1535141192574-5d4897c12636?w=800&q=80",
		price:       38.99,
		stock:       25,
	},
	{
		name:        "Black Forest Cake",
		description: "Traditional German chocolate cake with cherry filling and whipped cream.",
		category:    "Chocolate",
		image:       "https://images.unsplash.com/photo-1606313564200-e75d5e30476c?w=800&q=80",
		price:       46.99,
		stock:       11,
	},
	{
		name:        "Coconut Paradise",
		description: "Tropical coconut cake with coconut cream filling and toasted coconut flakes.",
		category:    "Tropical",
		image:       "https://images.unsplash.com/photo-1621303837174-89787a7d4729?w=800&q=80",
		price:       44.99,
		stock:       14,
	},
}

// SeedData is the fixed sample catalog the shop starts with.
type SeedData struct {
	Users    []models.User
	Products []models.Product
	Reviews  []models.Review
}

// NewSeedData builds the sample catalog, reviews and admin account. Product
// ids are "1".."10" and creation times are spaced a second apart so insertion
// order survives a created_at sort.
func NewSeedData(now time.Time) (*SeedData, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	data := &SeedData{
		Users: []models.User{{
			ID:        AdminID,
			Email:     AdminEmail,
			Password:  string(hash),
			FirstName: "Admin",
			LastName:  "User",
			Role:      models.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}},
	}

	base := now.Add(-time.Duration(len(seedProducts)) * time.Second)
	for i, sp := range seedProducts {
		created := base.Add(time.Duration(i) * time.Second)
		data.Products = append(data.Products, models.Product{
			ID:          fmt.Sprintf("%d", i+1),
			Name:        sp.name,
			Description: sp.description,
			Price:       sp.price,
			Category:    sp.category,
			Image:       sp.image,
			Images:      append([]string{sp.image}, sp.extraImages...),
			Stock:       sp.stock,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}

	data.Reviews = []models.Review{
		{
			ID:        "1",
			ProductID: "1",
			UserID:    "sample",
			UserName:  "Sarah Johnson",
			Rating:    5,
			Comment:   "Absolutely delicious! The chocolate is rich and not too sweet.",
			CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "2",
			ProductID: "1",
			UserID:    "sample2",
			UserName:  "Mike Chen",
			Rating:    4,
			Comment:   "Great cake, but a bit pricey. Worth it for special occasions!",
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "3",
			ProductID: "2",
			UserID:    "sample3",
			UserName:  "Emily Davis",
			Rating:    5,
			Comment:   "The berries were so fresh and the frosting was perfect!",
			CreatedAt: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	return data, nil
}
