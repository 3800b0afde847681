package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup) {
	exports := router.Group("/api/exports", middleware.RequirePermission("read"))
	{
		exports.GET("/warehouses/:id/inventory.xlsx", h.InventoryXLSX)
		exports.GET("/warehouses/:id/inventory.pdf", h.InventoryPDF)
		exports.GET("/stores/:id/invoices.xlsx", h.InvoicesXLSX)
		exports.GET("/stores/:id/invoices.pdf", h.InvoicesPDF)
	}
}

// callerPerms resolves the caller's capability set; cost columns in exports
// depend on it.
func callerPerms(c *gin.Context) model.PermissionSet {
	return model.PermissionsForRole(middleware.UserRole(c))
}

// InventoryXLSX downloads the warehouse inventory as a spreadsheet
// @Summary      Export inventory (xlsx)
// @Tags         exports
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "Warehouse ID"
// @Success      200  {file}  binary
// @Failure      500  {object}  response.Response
// @Router       /api/exports/warehouses/{id}/inventory.xlsx [get]
func (h *ExportHandler) InventoryXLSX(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid warehouse id"))
		return
	}

	data, err := h.exportService.InventoryXLSX(c.Request.Context(), warehouseID, callerPerms(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

// InventoryPDF downloads the warehouse inventory as a PDF
// @Summary      Export inventory (pdf)
// @Tags         exports
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path  string  true  "Warehouse ID"
// @Success      200  {file}  binary
// @Failure      500  {object}  response.Response
// @Router       /api/exports/warehouses/{id}/inventory.pdf [get]
func (h *ExportHandler) InventoryPDF(c *gin.Context) {
	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid warehouse id"))
		return
	}

	data, err := h.exportService.InventoryPDF(c.Request.Context(), warehouseID, callerPerms(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inventory.pdf"`)
	c.Data(http.StatusOK, contentTypePDF, data)
}

// InvoicesXLSX downloads a store's closed invoices as a spreadsheet
// @Summary      Export invoices (xlsx)
// @Tags         exports
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  string  true  "Store ID"
// @Success      200  {file}  binary
// @Failure      500  {object}  response.Response
// @Router       /api/exports/stores/{id}/invoices.xlsx [get]
func (h *ExportHandler) InvoicesXLSX(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}

	data, err := h.exportService.InvoicesXLSX(c.Request.Context(), storeID, callerPerms(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, contentTypeXLSX, data)
}

// InvoicesPDF downloads a store's closed invoices as a PDF
// @Summary      Export invoices (pdf)
// @Tags         exports
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path  string  true  "Store ID"
// @Success      200  {file}  binary
// @Failure      500  {object}  response.Response
// @Router       /api/exports/stores/{id}/invoices.pdf [get]
func (h *ExportHandler) InvoicesPDF(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}

	data, err := h.exportService.InvoicesPDF(c.Request.Context(), storeID, callerPerms(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoices.pdf"`)
	c.Data(http.StatusOK, contentTypePDF, data)
}
