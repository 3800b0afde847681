package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/api/templates")
	{
		templates.POST("", middleware.RequirePermission("create"), h.CreateTemplate)
		templates.GET("", middleware.RequirePermission("read"), h.ListTemplates)
		templates.PUT("/:id", middleware.RequirePermission("update"), h.UpdateTemplate)
		templates.DELETE("/:id", middleware.RequirePermission("delete"), h.DeleteTemplate)
		templates.POST("/:id/render", middleware.RequirePermission("read", "ska"), h.RenderTemplate)
	}
}

// CreateTemplate stores a new WhatsApp message template
// @Summary      Create template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTemplateRequest  true  "Create Template Payload"
// @Success      201      {object}  response.Response{data=model.Template}
// @Failure      400      {object}  response.Response
// @Router       /api/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), companyID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, template))
}

// ListTemplates lists the company's templates
// @Summary      List templates
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Template}
// @Failure      500  {object}  response.Response
// @Router       /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	companyID, ok := middleware.CompanyID(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Company not found in token"))
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, templates))
}

// UpdateTemplate edits a template's name or content
// @Summary      Update template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Template ID"
// @Param        payload  body      service.UpdateTemplateRequest  true  "Update Template Payload"
// @Success      200      {object}  response.Response{data=model.Template}
// @Failure      400      {object}  response.Response
// @Router       /api/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid template id"))
		return
	}

	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// DeleteTemplate removes a template
// @Summary      Delete template
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid template id"))
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "template deleted"}))
}

// RenderTemplate fills a template with a product's fields and builds the share link
// @Summary      Render template
// @Description  Substitutes product placeholders and returns the prefilled WhatsApp link
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Template ID"
// @Param        payload  body      service.RenderTemplateRequest  true  "Render Payload"
// @Success      200      {object}  response.Response{data=service.RenderedTemplate}
// @Failure      400      {object}  response.Response
// @Router       /api/templates/{id}/render [post]
func (h *TemplateHandler) RenderTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid template id"))
		return
	}

	var req service.RenderTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rendered, err := h.templateService.RenderTemplate(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rendered))
}
