// internal/handlers/product.go
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dropwatch/dropwatch/internal/models"
	"github.com/dropwatch/dropwatch/internal/services"
	"github.com/dropwatch/dropwatch/internal/utils"
)

type ProductHandler struct {
	catalog *services.CatalogService
	ledger  *services.LedgerService
	checker *services.CheckerService
}

func NewProductHandler(catalog *services.CatalogService, ledger *services.LedgerService, checker *services.CheckerService) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		ledger:  ledger,
		checker: checker,
	}
}

type AddProductRequest struct {
	URL            string `json:"url" validate:"required"`
	ExtractionHint string `json:"extraction_hint,omitempty" validate:"omitempty,max=2000"`
}

// POST /v1/products
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var req AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.checker.AddProduct(c.Request.Context(), req.URL, req.ExtractionHint)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidURL):
			utils.BadRequestResponse(c, err.Error(), nil)
		case errors.Is(err, models.ErrDuplicateProduct):
			utils.ConflictResponse(c, err.Error())
		default:
			utils.BadRequestResponse(c, fmt.Sprintf("could not add product: %v", err), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": fmt.Sprintf("Added and checked initial price for: %s - %s %.2f", product.Name, product.Currency, product.Price),
		"product": product,
	})
}

// GET /v1/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.catalog.GetAll()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GET /v1/products/detail?url=...
func (h *ProductHandler) GetProduct(c *gin.Context) {
	url, ok := requireURLParam(c)
	if !ok {
		return
	}

	product, err := h.catalog.Get(url)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.NotFoundResponse(c, "product not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// DELETE /v1/products?url=...
func (h *ProductHandler) RemoveProduct(c *gin.Context) {
	url, ok := requireURLParam(c)
	if !ok {
		return
	}

	if err := h.catalog.Remove(url); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Product removed from tracking"})
}

// GET /v1/products/history?url=...
func (h *ProductHandler) GetHistory(c *gin.Context) {
	url, ok := requireURLParam(c)
	if !ok {
		return
	}

	if _, err := h.catalog.Get(url); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.NotFoundResponse(c, "product not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	history, err := h.ledger.HistoryFor(url)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"history": history,
		"count":   len(history),
	})
}

// GET /v1/products/export?url=...&format=csv|xlsx
func (h *ProductHandler) ExportHistory(c *gin.Context) {
	url, ok := requireURLParam(c)
	if !ok {
		return
	}

	if _, err := h.catalog.Get(url); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.NotFoundResponse(c, "product not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// Render into a buffer first so an export error can still produce an
	// error response instead of a 200 with a truncated body.
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		var buf bytes.Buffer
		if err := h.ledger.ExportCSV(&buf, url); err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		c.Header("Content-Disposition", `attachment; filename="price_history.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := h.ledger.ExportXLSX(&buf, url); err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		c.Header("Content-Disposition", `attachment; filename="price_history.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		utils.BadRequestResponse(c, fmt.Sprintf("unsupported export format %q", format), nil)
	}
}

func requireURLParam(c *gin.Context) (string, bool) {
	url := c.Query("url")
	if url == "" {
		utils.BadRequestResponse(c, "url query parameter is required", nil)
		return "", false
	}
	return url, true
}
