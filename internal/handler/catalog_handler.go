package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		products.POST("", middleware.RequirePermission("create"), h.CreateProduct)
		products.POST("/exhibition", middleware.RequirePermission("update"), h.AssignExhibition)
	}

	router.GET("/api/warehouses/:id/products", middleware.RequirePermission("read"), h.ListInventory)
	router.GET("/api/search", middleware.RequirePermission("read", "ska"), h.SearchBarcode)
}

// CreateProduct registers a new product or shirt in a warehouse
// @Summary      Create product
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), companyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// ListInventory lists a warehouse's products, optionally filtered by kind
// @Summary      List inventory
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        id    path      string  true   "Warehouse ID"
// @Param        kind  query     string  false  "Filter by kind (product, shirt)"
// @Success      200   {object}  response.Response{data=[]model.Product}
// @Failure      500   {object}  response.Response
// @Router       /api/warehouses/{id}/products [get]
func (h *CatalogHandler) ListInventory(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid warehouse id"))
		return
	}

	products, err := h.catalogService.ListInventory(c.Request.Context(), warehouseID, c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// SearchBarcode resolves a scanned barcode to its stocked unit
// @Summary      Resolve barcode
// @Description  Locates the unique unit behind a barcode across the company's warehouses
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        barcode  query     string  true  "Scanned barcode"
// @Success      200      {object}  response.Response{data=model.ResolvedUnit}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/search [get]
func (h *CatalogHandler) SearchBarcode(c *gin.Context) {
	barcode := c.Query("barcode")
	if barcode == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "barcode query parameter is required"))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	unit, err := h.catalogService.ResolveBarcode(c.Request.Context(), companyID, barcode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBarcodeNotFound):
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		case errors.Is(err, service.ErrAmbiguousBarcode):
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, unit))
}

// AssignExhibition puts one unit on a store's display slot
// @Summary      Assign exhibition
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AssignExhibitionRequest  true  "Assign Exhibition Payload"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/products/exhibition [post]
func (h *CatalogHandler) AssignExhibition(c *gin.Context) {
	var req service.AssignExhibitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	if err := h.catalogService.AssignExhibition(c.Request.Context(), companyID, req); err != nil {
		if errors.Is(err, service.ErrSlotOccupied) {
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "exhibition assigned"}))
}
