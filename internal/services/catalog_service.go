// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dropwatch/dropwatch/internal/metrics"
	"github.com/dropwatch/dropwatch/internal/models"
)

// CatalogService owns the set of tracked products, keyed by canonical URL.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// CanonicalURL validates a candidate URL and normalizes it so differently
// formatted links to the same item collapse to one catalog entry. A URL
// without both scheme and host fails with ErrInvalidURL before any
// persistence or network call.
func CanonicalURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", models.ErrInvalidURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if asin, ok := amazonASIN(parsed.Path); ok {
		return "https://www.amazon.com/dp/" + asin, nil
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	return parsed.String(), nil
}

// amazonASIN extracts the product id from the various Amazon link formats.
func amazonASIN(path string) (string, bool) {
	for _, marker := range []string{"/dp/", "/gp/product/", "/gp/aw/d/"} {
		if idx := strings.Index(path, marker); idx >= 0 {
			rest := path[idx+len(marker):]
			if end := strings.IndexByte(rest, '/'); end >= 0 {
				rest = rest[:end]
			}
			if rest != "" {
				return rest, true
			}
		}
	}
	return "", false
}

// Add persists a new product. The URL must already be canonical; an existing
// entry for the same URL is rejected.
func (s *CatalogService) Add(product *models.Product) (*models.Product, error) {
	if _, err := s.addTx(s.db, product); err != nil {
		return nil, err
	}
	metrics.ProductsTracked.Inc()
	return product, nil
}

// addTx never touches the tracked-products gauge; callers move it only after
// the enclosing transaction commits.
func (s *CatalogService) addTx(tx *gorm.DB, product *models.Product) (*models.Product, error) {
	var count int64
	if err := tx.Model(&models.Product{}).Where("url = ?", product.URL).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}
	if count > 0 {
		return nil, models.ErrDuplicateProduct
	}

	if err := tx.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Get looks up a product by exact canonical URL.
func (s *CatalogService) Get(url string) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "url = ?", url).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// GetAll returns every tracked product.
func (s *CatalogService) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// Remove deletes a product together with its full price history in one
// transaction. Removing an unknown URL is a no-op.
func (s *CatalogService) Remove(url string) error {
	removed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "url = ?", url).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Where("product_url = ?", url).Delete(&models.PriceObservation{}).Error; err != nil {
			return fmt.Errorf("failed to delete price history: %w", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		removed = true
		return nil
	})
	if err == nil && removed {
		metrics.ProductsTracked.Dec()
	}
	return err
}

// Update replaces the mutable fields of an existing product. Updating an
// unknown URL fails with ErrNotFound; that is a caller bug, not a no-op.
func (s *CatalogService) Update(product *models.Product) (*models.Product, error) {
	if err := s.updateTx(s.db, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) updateTx(tx *gorm.DB, product *models.Product) error {
	result := tx.Model(&models.Product{}).Where("url = ?", product.URL).Updates(map[string]interface{}{
		"name":           product.Name,
		"price":          product.Price,
		"currency":       product.Currency,
		"main_image_url": product.MainImageURL,
		"check_date":     time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count reports the number of tracked products.
func (s *CatalogService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
