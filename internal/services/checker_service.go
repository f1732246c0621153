// internal/services/checker_service.go
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/internal/metrics"
	"github.com/dropwatch/dropwatch/internal/models"
	"github.com/dropwatch/dropwatch/internal/scraper"
)

// CheckerService drives the batch loop: for every catalog entry it scrapes
// the current price, evaluates the drop decision, records the observation
// and the catalog update in one transaction, and dispatches an alert when
// warranted. A failing product is skipped, never the whole batch.
type CheckerService struct {
	db        *gorm.DB
	catalog   *CatalogService
	ledger    *LedgerService
	evaluator *Evaluator
	adapter   scraper.Adapter
	notifier  Notifier

	// pacer spaces consecutive scrape calls to respect the extraction
	// API's rate limits.
	pacer         *rate.Limiter
	scrapeTimeout time.Duration

	// locks serializes {scrape, evaluate, append, update} per product so a
	// manual check overlapping a scheduled run cannot lose or duplicate a
	// ledger append.
	locks keyedMutex
}

func NewCheckerService(
	db *gorm.DB,
	catalog *CatalogService,
	ledger *LedgerService,
	evaluator *Evaluator,
	adapter scraper.Adapter,
	notifier Notifier,
	cfg config.ScraperConfig,
) *CheckerService {
	delay := time.Duration(cfg.DelayMS) * time.Millisecond
	if delay <= 0 {
		delay = time.Millisecond
	}

	return &CheckerService{
		db:            db,
		catalog:       catalog,
		ledger:        ledger,
		evaluator:     evaluator,
		adapter:       adapter,
		notifier:      notifier,
		pacer:         rate.NewLimiter(rate.Every(delay), 1),
		scrapeTimeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// CheckAll runs one batch over every tracked product and returns the
// products that were successfully updated. Per-product failures are logged
// and skipped; they never surface as a batch-level error.
func (s *CheckerService) CheckAll(ctx context.Context) ([]models.Product, error) {
	runID := uuid.NewString()
	log := logrus.WithField("run_id", runID)

	products, err := s.catalog.GetAll()
	if err != nil {
		return nil, err
	}

	metrics.CheckRunsTotal.Inc()
	log.WithField("products", len(products)).Info("Starting price check run")

	var updated []models.Product
	for i := range products {
		// Cancellation between products needs no rollback; already
		// processed products keep their recorded history.
		if ctx.Err() != nil {
			log.Info("Price check run cancelled")
			break
		}

		if err := s.pacer.Wait(ctx); err != nil {
			break
		}

		product, err := s.checkOne(ctx, &products[i])
		if err != nil {
			kind := scraper.KindOf(err)
			if kind == "" {
				kind = "internal"
			}
			metrics.ScrapeFailuresTotal.WithLabelValues(string(kind)).Inc()
			log.WithError(err).WithField("url", products[i].URL).Warn("Skipping product")
			continue
		}

		metrics.ProductsCheckedTotal.Inc()
		updated = append(updated, *product)
	}

	log.WithField("updated", len(updated)).Info("Price check run finished")
	return updated, nil
}

// checkOne performs scrape → evaluate → record → notify for one product.
// The append and the catalog update commit together; the alert goes out
// after the commit and only once.
func (s *CheckerService) checkOne(ctx context.Context, product *models.Product) (*models.Product, error) {
	unlock := s.locks.lock(product.URL)
	defer unlock()

	scrapeCtx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
	defer cancel()

	obs, err := s.adapter.Scrape(scrapeCtx, product.URL, product.ExtractionHint)
	if err != nil {
		return nil, err
	}

	history, err := s.ledger.HistoryFor(product.URL)
	if err != nil {
		return nil, err
	}

	decision, err := s.evaluator.Evaluate(history, obs.Price)
	if err != nil {
		return nil, err
	}

	product.Price = obs.Price
	if obs.Name != "" {
		product.Name = obs.Name
	}
	if obs.Currency != "" {
		product.Currency = obs.Currency
	}
	if obs.MainImageURL != "" {
		product.MainImageURL = obs.MainImageURL
	}
	product.CheckDate = time.Now().UTC()

	entry := &models.PriceObservation{
		ProductURL:  product.URL,
		Price:       obs.Price,
		ProductName: product.Name,
		VariantTag:  obs.VariantTag,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := s.ledger.appendTx(tx, entry); err != nil {
			return err
		}
		return s.catalog.updateTx(tx, product)
	})
	if err != nil {
		return nil, err
	}

	if decision.Notify {
		s.dispatchAlert(ctx, product, decision)
	}

	return product, nil
}

// dispatchAlert is best-effort: a delivery failure is logged and counted but
// never aborts or rolls back the recorded observation.
func (s *CheckerService) dispatchAlert(ctx context.Context, product *models.Product, decision *Decision) {
	alert := PriceAlert{
		ProductName: product.Name,
		OldPrice:    decision.Baseline,
		NewPrice:    product.Price,
		URL:         product.URL,
	}

	err := s.notifier.SendPriceAlert(ctx, alert)
	switch {
	case errors.Is(err, ErrNoChannelConfigured):
		logrus.WithField("url", product.URL).Warn("Price drop detected but no alert channel is configured")
		return
	case err != nil:
		metrics.AlertFailuresTotal.Inc()
		logrus.WithError(err).WithField("url", product.URL).Error("Failed to deliver price alert")
		return
	}

	metrics.AlertsSentTotal.Inc()
	logrus.WithFields(logrus.Fields{
		"url":       product.URL,
		"old_price": decision.Baseline,
		"new_price": product.Price,
		"drop_pct":  decision.DropFraction * 100,
	}).Info("Price alert sent")
}

// AddProduct starts tracking a new URL: validate and canonicalize, reject
// duplicates, scrape the initial observation, then create the product and
// its first ledger entry atomically. The first observation never alerts.
func (s *CheckerService) AddProduct(ctx context.Context, rawURL, hint string) (*models.Product, error) {
	canonical, err := CanonicalURL(rawURL)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(canonical)
	defer unlock()

	if _, err := s.catalog.Get(canonical); err == nil {
		return nil, models.ErrDuplicateProduct
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	scrapeCtx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
	defer cancel()

	obs, err := s.adapter.Scrape(scrapeCtx, rawURL, hint)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		URL:            canonical,
		Name:           obs.Name,
		Price:          obs.Price,
		Currency:       obs.Currency,
		CheckDate:      time.Now().UTC(),
		MainImageURL:   obs.MainImageURL,
		ExtractionHint: hint,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if _, err := s.catalog.addTx(tx, product); err != nil {
			return err
		}
		return s.ledger.appendTx(tx, &models.PriceObservation{
			ProductURL:  canonical,
			Price:       obs.Price,
			ProductName: obs.Name,
			VariantTag:  obs.VariantTag,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ProductsTracked.Inc()
	logrus.WithFields(logrus.Fields{
		"url":   canonical,
		"name":  product.Name,
		"price": product.Price,
	}).Info("Added product to tracking")

	return product, nil
}

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
