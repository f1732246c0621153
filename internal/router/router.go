// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropwatch/dropwatch/internal/handlers"
	"github.com/dropwatch/dropwatch/internal/middleware"
	"github.com/dropwatch/dropwatch/internal/scheduler"
	"github.com/dropwatch/dropwatch/internal/services"
)

func Initialize(
	catalog *services.CatalogService,
	ledger *services.LedgerService,
	checker *services.CheckerService,
	sched *scheduler.Scheduler,
) *gin.Engine {
	productHandler := handlers.NewProductHandler(catalog, ledger, checker)
	checkHandler := handlers.NewCheckHandler(checker, sched)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("", productHandler.AddProduct)
			products.GET("", productHandler.GetProducts)
			products.GET("/detail", productHandler.GetProduct)
			products.DELETE("", productHandler.RemoveProduct)
			products.GET("/history", productHandler.GetHistory)
			products.GET("/export", productHandler.ExportHistory)
		}

		v1.POST("/check", middleware.CheckRateLimit(), checkHandler.CheckNow)
		v1.GET("/schedule", checkHandler.GetSchedule)
	}

	return r
}
