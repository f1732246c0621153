// internal/handlers/product_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/handlers"
	"github.com/dropwatch/dropwatch/internal/models"
	"github.com/dropwatch/dropwatch/internal/scraper"
	"github.com/dropwatch/dropwatch/internal/services"
)

type stubAdapter struct {
	price float64
}

func (s *stubAdapter) Scrape(ctx context.Context, url, hint string) (*scraper.Observation, error) {
	return &scraper.Observation{
		URL:      url,
		Name:     "Stub Product",
		Price:    s.price,
		Currency: "USD",
	}, nil
}

type stubNotifier struct{}

func (stubNotifier) SendPriceAlert(ctx context.Context, alert services.PriceAlert) error {
	return nil
}

type ProductHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	router  *gin.Engine
	adapter *stubAdapter
	ledger  *services.LedgerService
}

func (suite *ProductHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(&models.Product{}, &models.PriceObservation{}))
	suite.db = db

	catalog := services.NewCatalogService(db)
	suite.ledger = services.NewLedgerService(db)
	suite.adapter = &stubAdapter{price: 49.99}

	checker := services.NewCheckerService(
		db,
		catalog,
		suite.ledger,
		services.NewEvaluator(0.05),
		suite.adapter,
		stubNotifier{},
		config.ScraperConfig{TimeoutSeconds: 5, DelayMS: 1},
	)

	handler := handlers.NewProductHandler(catalog, suite.ledger, checker)

	suite.router = gin.New()
	products := suite.router.Group("/v1/products")
	{
		products.POST("", handler.AddProduct)
		products.GET("", handler.GetProducts)
		products.GET("/detail", handler.GetProduct)
		products.DELETE("", handler.RemoveProduct)
		products.GET("/history", handler.GetHistory)
		products.GET("/export", handler.ExportHistory)
	}
}

func (suite *ProductHandlerTestSuite) postProduct(body map[string]interface{}) *httptest.ResponseRecorder {
	jsonData, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/v1/products", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ProductHandlerTestSuite) get(path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ProductHandlerTestSuite) TestAddProduct() {
	w := suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response["success"].(bool))
}

func (suite *ProductHandlerTestSuite) TestAddProductMissingURL() {
	w := suite.postProduct(map[string]interface{}{})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ProductHandlerTestSuite) TestAddProductInvalidURL() {
	w := suite.postProduct(map[string]interface{}{"url": "not-a-url"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ProductHandlerTestSuite) TestAddProductDuplicateConflicts() {
	first := suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})
	assert.Equal(suite.T(), http.StatusCreated, first.Code)

	second := suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})
	assert.Equal(suite.T(), http.StatusConflict, second.Code)
}

func (suite *ProductHandlerTestSuite) TestGetProducts() {
	suite.postProduct(map[string]interface{}{"url": "https://example.com/a"})
	suite.postProduct(map[string]interface{}{"url": "https://example.com/b"})

	w := suite.get("/v1/products")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), 2, response.Data.Count)
}

func (suite *ProductHandlerTestSuite) TestGetProductDetail() {
	suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})

	w := suite.get("/v1/products/detail?url=" + url.QueryEscape("https://example.com/item"))
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.get("/v1/products/detail?url=" + url.QueryEscape("https://example.com/missing"))
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.get("/v1/products/detail")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ProductHandlerTestSuite) TestRemoveProduct() {
	suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})

	req, _ := http.NewRequest("DELETE", "/v1/products?url="+url.QueryEscape("https://example.com/item"), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	detail := suite.get("/v1/products/detail?url=" + url.QueryEscape("https://example.com/item"))
	assert.Equal(suite.T(), http.StatusNotFound, detail.Code)
}

func (suite *ProductHandlerTestSuite) TestGetHistory() {
	suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})

	w := suite.get("/v1/products/history?url=" + url.QueryEscape("https://example.com/item"))
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Count   int                       `json:"count"`
			History []models.PriceObservation `json:"history"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Equal(1, response.Data.Count)
	assert.Equal(suite.T(), 49.99, response.Data.History[0].Price)
	assert.True(suite.T(), response.Data.History[0].IsLowest)
}

func (suite *ProductHandlerTestSuite) TestGetHistoryUnknownProduct() {
	w := suite.get("/v1/products/history?url=" + url.QueryEscape("https://example.com/missing"))
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ProductHandlerTestSuite) TestExportCSV() {
	suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})

	w := suite.get("/v1/products/export?url=" + url.QueryEscape("https://example.com/item"))
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Header().Get("Content-Disposition"), "price_history.csv")
	assert.Contains(suite.T(), w.Body.String(), "timestamp,price,variant_tag,is_lowest")
}

func (suite *ProductHandlerTestSuite) TestExportFailureReturnsErrorStatus() {
	suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})

	// Break the history table after the product lookup target exists; the
	// export must fail with an error status, never a 200 with a partial body.
	suite.Require().NoError(suite.db.Exec("DROP TABLE price_history").Error)

	w := suite.get("/v1/products/export?url=" + url.QueryEscape("https://example.com/item"))
	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(suite.T(), response["success"].(bool))
}

func (suite *ProductHandlerTestSuite) TestExportUnsupportedFormat() {
	suite.postProduct(map[string]interface{}{"url": "https://example.com/item"})

	w := suite.get("/v1/products/export?format=pdf&url=" + url.QueryEscape("https://example.com/item"))
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func TestProductHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProductHandlerTestSuite))
}
