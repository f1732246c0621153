// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/database"
	"github.com/dropwatch/dropwatch/internal/router"
	"github.com/dropwatch/dropwatch/internal/scheduler"
	"github.com/dropwatch/dropwatch/internal/scraper"
	"github.com/dropwatch/dropwatch/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Initialize services
	catalog := services.NewCatalogService(db)
	ledger := services.NewLedgerService(db)
	evaluator := services.NewEvaluator(cfg.Notify.DropThreshold)
	adapter := scraper.NewClient(cfg.Scraper)

	notifier, err := services.NewNotificationService(cfg.Notify)
	if err != nil {
		logrus.Fatal("Failed to initialize notifier: ", err)
	}

	checker := services.NewCheckerService(db, catalog, ledger, evaluator, adapter, notifier, cfg.Scraper)

	// Graceful shutdown coordination
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start scheduler
	var sched *scheduler.Scheduler
	wg := &sync.WaitGroup{}
	if cfg.Schedule.Enabled {
		sched = scheduler.New(checker, time.Duration(cfg.Schedule.IntervalMinutes)*time.Minute)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sched.Run(ctx)
		}()
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Initialize(catalog, ledger, checker, sched)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	// Wait for scheduler to finish the product it is on
	wg.Wait()

	logrus.Info("Server exited")
}
