//go:build integration

package store

import (
	"context"
	"testing"

	"acai-store/config"
	"acai-store/database"
	"acai-store/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

func setupMySQLStore(t *testing.T) (*Store, func()) {
	ctx := context.Background()

	container, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase("acai_store"),
		mysql.WithUsername("acai"),
		mysql.WithPassword("acai"),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:   database.DriverMySQL,
		DBUser:     "acai",
		DBPassword: "acai",
		DBHost:     host,
		DBPort:     port.Port(),
		DBName:     "acai_store",
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, database.DriverMySQL))

	s := New(db)
	cleanup := func() {
		s.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return s, cleanup
}

func TestMySQL_CatalogAndOrder(t *testing.T) {
	s, cleanup := setupMySQLStore(t)
	defer cleanup()
	ctx := context.Background()

	f := seedCatalog(t, s)

	product, err := s.GetProduct(ctx, f.product.ID, true)
	require.NoError(t, err)
	require.Len(t, product.Variations, 2)
	assert.Len(t, product.Complements, 2)

	customer := &models.Customer{Name: "Maria", Phone: "98999990000", Address: "Rua A"}
	order := newOrder(f)
	require.NoError(t, s.CreateOrder(ctx, customer, order))

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, money("21.90").Equal(got.Total))
	require.Len(t, got.Items, 1)
	require.Len(t, got.Items[0].Complements, 2)
	assert.True(t, money("3").Equal(got.Items[0].Complements[1].Price))

	updated, err := s.UpdateOrderStatus(ctx, order.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	assert.ErrorIs(t, s.CreateCategory(ctx, &models.Category{Name: "AÇAÍ"}), ErrDuplicateCategory)
}
