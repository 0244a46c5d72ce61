package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/investify-pos/internal/application/service"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/investify-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/investify-pos/pkg/pagination"
)

// CatalogHandler handles catalog HTTP requests
type CatalogHandler struct {
	catalog         *service.CatalogService
	defaultLocation string
}

// NewCatalogHandler creates a new catalog handler. Requests without a
// location_id use defaultLocation.
func NewCatalogHandler(catalog *service.CatalogService, defaultLocation string) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, defaultLocation: defaultLocation}
}

func (h *CatalogHandler) location(c *gin.Context) string {
	if loc := c.Query("location_id"); loc != "" {
		return loc
	}
	return h.defaultLocation
}

// ListProducts handles listing cached catalog products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.catalog.ListProducts(c.Request.Context(), h.location(c), service.ProductFilter{
		Search:     filter.Search,
		CategoryID: filter.CategoryID,
	}, &pagination.PaginationParams{Page: filter.Page, PerPage: filter.PerPage})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// GetProduct handles getting a single catalog product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.Product(c.Request.Context(), h.location(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// ListCategories handles listing catalog categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	catalog, err := h.catalog.Catalog(c.Request.Context(), h.location(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved successfully", catalog.Categories)
}

// Refresh reloads the catalog from the backend
func (h *CatalogHandler) Refresh(c *gin.Context) {
	catalog, err := h.catalog.Refresh(c.Request.Context(), h.location(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Catalog refreshed", gin.H{
		"location_id": catalog.LocationID,
		"products":    len(catalog.Products),
		"categories":  len(catalog.Categories),
	})
}
