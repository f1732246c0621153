// internal/services/ledger_service.go
package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/dropwatch/dropwatch/internal/models"
)

// LedgerService owns the append-only per-product price history. Entries are
// never updated or retroactively rewritten; IsLowest is fixed at insert time.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Append records one observation. The referenced product must exist.
func (s *LedgerService) Append(obs *models.PriceObservation) (*models.PriceObservation, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.appendTx(tx, obs)
	})
	if err != nil {
		return nil, err
	}
	return obs, nil
}

// appendTx computes the running-minimum flag and clamps the timestamp so it
// never regresses below the previous entry for the same product, then
// inserts the row. Runs inside the caller's transaction so an orchestrator
// can pair it with the catalog update atomically.
func (s *LedgerService) appendTx(tx *gorm.DB, obs *models.PriceObservation) error {
	var count int64
	if err := tx.Model(&models.Product{}).Where("url = ?", obs.ProductURL).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if count == 0 {
		return models.ErrNotFound
	}

	if obs.Timestamp.IsZero() {
		obs.Timestamp = time.Now().UTC()
	}

	var last models.PriceObservation
	err := tx.Where("product_url = ?", obs.ProductURL).
		Order("timestamp DESC, id DESC").
		First(&last).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First entry is trivially its own minimum.
		obs.IsLowest = true
	case err != nil:
		return fmt.Errorf("failed to read last observation: %w", err)
	default:
		if obs.Timestamp.Before(last.Timestamp) {
			obs.Timestamp = last.Timestamp
		}

		var min float64
		if err := tx.Model(&models.PriceObservation{}).
			Where("product_url = ?", obs.ProductURL).
			Select("MIN(price)").Scan(&min).Error; err != nil {
			return fmt.Errorf("failed to read running minimum: %w", err)
		}
		// First occurrence wins: a later equal price is not a new minimum.
		obs.IsLowest = obs.Price < min
	}

	if err := tx.Create(obs).Error; err != nil {
		return fmt.Errorf("failed to append observation: %w", err)
	}
	return nil
}

// HistoryFor returns a product's observations, oldest first.
func (s *LedgerService) HistoryFor(url string) ([]models.PriceObservation, error) {
	var history []models.PriceObservation
	if err := s.db.Where("product_url = ?", url).
		Order("timestamp ASC, id ASC").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	return history, nil
}

// MinimumFor returns the lowest price ever recorded for the product, or the
// candidate price itself when no history exists yet.
func (s *LedgerService) MinimumFor(url string, candidate float64) (float64, error) {
	var count int64
	if err := s.db.Model(&models.PriceObservation{}).Where("product_url = ?", url).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	if count == 0 {
		return candidate, nil
	}

	var min float64
	if err := s.db.Model(&models.PriceObservation{}).
		Where("product_url = ?", url).
		Select("MIN(price)").Scan(&min).Error; err != nil {
		return 0, fmt.Errorf("failed to read minimum: %w", err)
	}
	return min, nil
}

var exportHeader = []string{"timestamp", "price", "variant_tag", "is_lowest"}

// ExportCSV streams a product's history as CSV rows, oldest first.
func (s *LedgerService) ExportCSV(w io.Writer, url string) error {
	history, err := s.HistoryFor(url)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, obs := range history {
		record := []string{
			obs.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(obs.Price, 'f', 2, 64),
			obs.VariantTag,
			strconv.FormatBool(obs.IsLowest),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportXLSX writes the same rows as ExportCSV into a single-sheet workbook.
func (s *LedgerService) ExportXLSX(w io.Writer, url string) error {
	history, err := s.HistoryFor(url)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write xlsx header: %w", err)
		}
	}
	for row, obs := range history {
		values := []interface{}{
			obs.Timestamp.UTC().Format(time.RFC3339),
			obs.Price,
			obs.VariantTag,
			obs.IsLowest,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write xlsx cell: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
