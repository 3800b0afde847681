package handler

import (
	"errors"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/stores/:storeId/invoices")
	{
		invoices.POST("", middleware.RequirePermission("ska"), h.OpenInvoice)
		invoices.GET("", middleware.RequirePermission("read", "ska"), h.ListInvoices)
		invoices.GET("/:id", middleware.RequirePermission("read", "ska"), h.GetInvoice)
		invoices.POST("/:id/items", middleware.RequirePermission("ska"), h.AddItem)
		invoices.PUT("/:id/close", middleware.RequirePermission("ska"), h.CloseInvoice)
	}

	items := router.Group("/api/stores/:storeId/items")
	{
		items.PUT("/:itemId/sold", middleware.RequirePermission("ska"), h.MarkSold)
		items.DELETE("/:itemId", middleware.RequirePermission("ska"), h.ReturnItem)
	}
}

// saleError maps service sentinels onto HTTP statuses.
func saleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBarcodeNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrAmbiguousBarcode):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, service.ErrUserRequired),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrEmptyInvoice),
		errors.Is(err, service.ErrUnsoldItems),
		errors.Is(err, service.ErrInvoiceClosed):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

// OpenInvoice starts a new draft invoice for a store
// @Summary      Open invoice
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        storeId  path      string                      true  "Store ID"
// @Param        payload  body      service.OpenInvoiceRequest  true  "Open Invoice Payload"
// @Success      201      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Router       /api/stores/{storeId}/invoices [post]
func (h *SaleHandler) OpenInvoice(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}

	var req service.OpenInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	invoice, err := h.saleService.OpenInvoice(c.Request.Context(), companyID, storeID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices lists a store's invoices, optionally filtered by status
// @Summary      List invoices
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        storeId  path      string  true   "Store ID"
// @Param        status   query     string  false  "Filter by status (open, closed)"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Items per page (default 20)"
// @Success      200      {object}  response.PagedResponse{data=[]model.Invoice}
// @Failure      500      {object}  response.Response
// @Router       /api/stores/{storeId}/invoices [get]
func (h *SaleHandler) ListInvoices(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}

	params := pagination.Parse(c)
	invoices, total, err := h.saleService.ListInvoices(c.Request.Context(), storeID, c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, invoices, params.Page, params.Limit, total))
}

// GetInvoice returns an invoice with its items and recomputed totals
// @Summary      Get invoice
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        storeId  path      string  true  "Store ID"
// @Param        id       path      string  true  "Invoice ID"
// @Success      200      {object}  response.Response{data=service.InvoiceDetail}
// @Failure      404      {object}  response.Response
// @Router       /api/stores/{storeId}/invoices/{id} [get]
func (h *SaleHandler) GetInvoice(c *gin.Context) {
	storeID, invoiceID, ok := parseStoreInvoice(c)
	if !ok {
		return
	}

	detail, err := h.saleService.GetInvoice(c.Request.Context(), storeID, invoiceID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// AddItem scans a barcode onto the invoice, decrementing warehouse stock
// @Summary      Add item to invoice
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        storeId  path      string                  true  "Store ID"
// @Param        id       path      string                  true  "Invoice ID"
// @Param        payload  body      service.AddItemRequest  true  "Add Item Payload"
// @Success      201      {object}  response.Response{data=model.DraftItem}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/stores/{storeId}/invoices/{id}/items [post]
func (h *SaleHandler) AddItem(c *gin.Context) {
	storeID, invoiceID, ok := parseStoreInvoice(c)
	if !ok {
		return
	}

	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, okCompany := middleware.CompanyID(c)
	if !okCompany {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	item, err := h.saleService.AddItem(c.Request.Context(), companyID, storeID, invoiceID, req)
	if err != nil {
		saleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// ReturnItem removes a staged item and restores its unit to stock
// @Summary      Return item
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        storeId  path      string  true  "Store ID"
// @Param        itemId   path      string  true  "Draft Item ID"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/stores/{storeId}/items/{itemId} [delete]
func (h *SaleHandler) ReturnItem(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	if err := h.saleService.ReturnItem(c.Request.Context(), companyID, storeID, itemID); err != nil {
		saleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "item returned"}))
}

// MarkSold locks a sale price onto a staged item
// @Summary      Mark item sold
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        storeId  path      string                   true  "Store ID"
// @Param        itemId   path      string                   true  "Draft Item ID"
// @Param        payload  body      service.MarkSoldRequest  true  "Mark Sold Payload"
// @Success      200      {object}  response.Response{data=model.DraftItem}
// @Failure      400      {object}  response.Response
// @Router       /api/stores/{storeId}/items/{itemId}/sold [put]
func (h *SaleHandler) MarkSold(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	var req service.MarkSoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.saleService.MarkSold(c.Request.Context(), storeID, itemID, req)
	if err != nil {
		saleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CloseInvoice finalizes an invoice, assigning its number and code
// @Summary      Close invoice
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        storeId  path      string  true  "Store ID"
// @Param        id       path      string  true  "Invoice ID"
// @Success      200      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Router       /api/stores/{storeId}/invoices/{id}/close [put]
func (h *SaleHandler) CloseInvoice(c *gin.Context) {
	storeID, invoiceID, ok := parseStoreInvoice(c)
	if !ok {
		return
	}

	companyID, okCompany := middleware.CompanyID(c)
	if !okCompany {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	invoice, err := h.saleService.CloseInvoice(c.Request.Context(), companyID, storeID, invoiceID)
	if err != nil {
		saleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

func parseStoreInvoice(c *gin.Context) (storeID, invoiceID uuid.UUID, ok bool) {
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return uuid.Nil, uuid.Nil, false
	}
	invoiceID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid invoice id"))
		return uuid.Nil, uuid.Nil, false
	}
	return storeID, invoiceID, true
}
