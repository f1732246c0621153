// internal/models/observation.go
package models

import (
	"time"
)

// PriceObservation is one append-only ledger entry. Rows are immutable once
// written; IsLowest is computed at insert time and never rewritten.
type PriceObservation struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductURL  string    `json:"product_url" gorm:"size:2048;not null;index"`
	Price       float64   `json:"price" gorm:"type:decimal(12,2);not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"index"`
	ProductName string    `json:"product_name" gorm:"size:512"`
	VariantTag  string    `json:"variant_tag,omitempty" gorm:"size:100"`
	IsLowest    bool      `json:"is_lowest" gorm:"default:false"`
}

// TableName keeps the historical table name used by earlier deployments.
func (PriceObservation) TableName() string {
	return "price_history"
}
