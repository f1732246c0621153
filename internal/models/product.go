// internal/models/product.go
package models

import (
	"time"
)

// Product is a tracked product, keyed by its canonical URL. Price always
// mirrors the newest PriceObservation for the same URL; the two are written
// inside one transaction.
type Product struct {
	URL            string    `json:"url" gorm:"primaryKey;size:2048"`
	Name           string    `json:"name" gorm:"size:512"`
	Price          float64   `json:"price" gorm:"type:decimal(12,2)"`
	Currency       string    `json:"currency" gorm:"size:3"`
	CheckDate      time.Time `json:"check_date"`
	MainImageURL   string    `json:"main_image_url" gorm:"size:2048"`
	ExtractionHint string    `json:"extraction_hint,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	History []PriceObservation `json:"history,omitempty" gorm:"foreignKey:ProductURL;references:URL;constraint:OnDelete:CASCADE"`
}
