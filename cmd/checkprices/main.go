// cmd/checkprices/main.go
//
// One-shot batch entry point, suitable for cron: checks every tracked
// product once and prints the number successfully updated.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/internal/scraper"
	"github.com/dropwatch/dropwatch/internal/services"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	catalog := services.NewCatalogService(db)
	ledger := services.NewLedgerService(db)
	evaluator := services.NewEvaluator(cfg.Notify.DropThreshold)
	adapter := scraper.NewClient(cfg.Scraper)

	notifier, err := services.NewNotificationService(cfg.Notify)
	if err != nil {
		logrus.Fatal("Failed to initialize notifier: ", err)
	}

	checker := services.NewCheckerService(db, catalog, ledger, evaluator, adapter, notifier, cfg.Scraper)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updated, err := checker.CheckAll(ctx)
	if err != nil {
		logrus.Fatal("Error checking prices: ", err)
	}

	fmt.Printf("Successfully checked prices for %d products\n", len(updated))
}
