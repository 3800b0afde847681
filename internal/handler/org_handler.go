package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrgHandler struct {
	orgService service.OrgService
}

func NewOrgHandler(orgService service.OrgService) *OrgHandler {
	return &OrgHandler{orgService: orgService}
}

func (h *OrgHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/api/companies")
	{
		companies.POST("", middleware.RequirePermission("companies"), h.CreateCompany)
		companies.GET("", middleware.RequirePermission("companies"), h.ListCompanies)
	}

	warehouses := router.Group("/api/warehouses")
	{
		warehouses.POST("", middleware.RequirePermission("create"), h.CreateWarehouse)
		warehouses.GET("", middleware.RequirePermission("read"), h.ListWarehouses)
		warehouses.PUT("/:id", middleware.RequirePermission("update"), h.UpdateWarehouse)
		warehouses.DELETE("/:id", middleware.RequirePermission("delete"), h.DeleteWarehouse)
	}

	// Param name matches the sale routes under /api/stores/:storeId so gin
	// can share the route tree.
	stores := router.Group("/api/stores")
	{
		stores.POST("", middleware.RequirePermission("create"), h.CreateStore)
		stores.GET("", middleware.RequirePermission("read"), h.ListStores)
		stores.PUT("/:storeId", middleware.RequirePermission("update"), h.UpdateStore)
		stores.DELETE("/:storeId", middleware.RequirePermission("delete"), h.DeleteStore)
	}
}

// CreateCompany creates a tenant
// @Summary      Create company
// @Tags         org
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCompanyRequest  true  "Create Company Payload"
// @Success      201      {object}  response.Response{data=model.Company}
// @Failure      400      {object}  response.Response
// @Router       /api/companies [post]
func (h *OrgHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.orgService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// ListCompanies lists all tenants
// @Summary      List companies
// @Tags         org
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Company}
// @Failure      500  {object}  response.Response
// @Router       /api/companies [get]
func (h *OrgHandler) ListCompanies(c *gin.Context) {
	companies, err := h.orgService.ListCompanies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, companies))
}

// CreateWarehouse creates a warehouse in the caller's company
// @Summary      Create warehouse
// @Tags         org
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLocationRequest  true  "Create Warehouse Payload"
// @Success      201      {object}  response.Response{data=model.Warehouse}
// @Failure      400      {object}  response.Response
// @Router       /api/warehouses [post]
func (h *OrgHandler) CreateWarehouse(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	warehouse, err := h.orgService.CreateWarehouse(c.Request.Context(), companyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, warehouse))
}

// ListWarehouses lists the caller's company warehouses
// @Summary      List warehouses
// @Tags         org
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Warehouse}
// @Failure      500  {object}  response.Response
// @Router       /api/warehouses [get]
func (h *OrgHandler) ListWarehouses(c *gin.Context) {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	warehouses, err := h.orgService.ListWarehouses(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouses))
}

// UpdateWarehouse edits a warehouse
// @Summary      Update warehouse
// @Tags         org
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Warehouse ID"
// @Param        payload  body      service.UpdateLocationRequest  true  "Update Warehouse Payload"
// @Success      200      {object}  response.Response{data=model.Warehouse}
// @Failure      400      {object}  response.Response
// @Router       /api/warehouses/{id} [put]
func (h *OrgHandler) UpdateWarehouse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid warehouse id"))
		return
	}

	var req service.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	warehouse, err := h.orgService.UpdateWarehouse(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouse))
}

// DeleteWarehouse removes a warehouse
// @Summary      Delete warehouse
// @Tags         org
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Warehouse ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/warehouses/{id} [delete]
func (h *OrgHandler) DeleteWarehouse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid warehouse id"))
		return
	}

	if err := h.orgService.DeleteWarehouse(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "warehouse deleted"}))
}

// CreateStore creates a store in the caller's company
// @Summary      Create store
// @Tags         org
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLocationRequest  true  "Create Store Payload"
// @Success      201      {object}  response.Response{data=model.Store}
// @Failure      400      {object}  response.Response
// @Router       /api/stores [post]
func (h *OrgHandler) CreateStore(c *gin.Context) {
	var req service.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	store, err := h.orgService.CreateStore(c.Request.Context(), companyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, store))
}

// ListStores lists the caller's company stores
// @Summary      List stores
// @Tags         org
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Store}
// @Failure      500  {object}  response.Response
// @Router       /api/stores [get]
func (h *OrgHandler) ListStores(c *gin.Context) {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	stores, err := h.orgService.ListStores(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stores))
}

// UpdateStore edits a store
// @Summary      Update store
// @Tags         org
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        storeId  path      string                         true  "Store ID"
// @Param        payload  body      service.UpdateLocationRequest  true  "Update Store Payload"
// @Success      200      {object}  response.Response{data=model.Store}
// @Failure      400      {object}  response.Response
// @Router       /api/stores/{storeId} [put]
func (h *OrgHandler) UpdateStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}

	var req service.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	store, err := h.orgService.UpdateStore(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, store))
}

// DeleteStore removes a store
// @Summary      Delete store
// @Tags         org
// @Security     BearerAuth
// @Produce      json
// @Param        storeId  path      string  true  "Store ID"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/stores/{storeId} [delete]
func (h *OrgHandler) DeleteStore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid store id"))
		return
	}

	if err := h.orgService.DeleteStore(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "store deleted"}))
}
