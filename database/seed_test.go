package database_test

import (
	"testing"
	"time"

	"cakeshop/database"
	"cakeshop/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewSeedData(t *testing.T) {
	data, err := database.NewSeedData(time.Now())
	require.NoError(t, err)

	require.Len(t, data.Products, 10)
	assert.Equal(t, "1", data.Products[0].ID)
	assert.Equal(t, "Chocolate Dream Cake", data.Products[0].Name)
	assert.Len(t, data.Products[0].Images, 2)
	assert.Equal(t, "10", data.Products[9].ID)
	for i := 1; i < len(data.Products); i++ {
		assert.True(t, data.Products[i].CreatedAt.After(data.Products[i-1].CreatedAt))
	}

	assert.Len(t, data.Reviews, 3)

	require.Len(t, data.Users, 1)
	admin := data.Users[0]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, database.AdminEmail, admin.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(database.AdminPassword)))
}

func TestMemoryDB_LoadCopiesSeed(t *testing.T) {
	data, err := database.NewSeedData(time.Now())
	require.NoError(t, err)

	db := database.NewMemoryDB()
	db.Load(data)
	data.Products[0].Images[0] = "mutated"

	assert.NotEqual(t, "mutated", db.Products[0].Images[0])
	assert.Len(t, db.Products, 10)
	assert.Empty(t, db.Orders)
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := database.PostgresConfig{
		User: "shop", Password: "pw", DBName: "cakes", Host: "db", Port: "5432", SSLMode: "disable", TimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=shop password=pw dbname=cakes port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
