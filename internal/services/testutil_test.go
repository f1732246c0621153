// internal/services/testutil_test.go
package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dropwatch/dropwatch/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: gets its own database; pin the
	// pool to one connection so concurrent callers share the same data.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.PriceObservation{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, url string, price float64) *models.Product {
	t.Helper()

	product := &models.Product{
		URL:      url,
		Name:     "Test Product",
		Price:    price,
		Currency: "USD",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
