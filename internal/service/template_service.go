package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateTemplateRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type UpdateTemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type RenderTemplateRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// RenderedTemplate is a template with product placeholders substituted plus
// the ready-to-open WhatsApp share link.
type RenderedTemplate struct {
	Message   string `json:"message"`
	ShareLink string `json:"share_link"`
}

// --- Interface ---

// TemplateService manages WhatsApp message templates and renders them
// against products for one-tap sharing.
type TemplateService interface {
	CreateTemplate(ctx context.Context, companyID uuid.UUID, req CreateTemplateRequest) (*model.Template, error)
	ListTemplates(ctx context.Context, companyID uuid.UUID) ([]model.Template, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*model.Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	// RenderTemplate substitutes the product's fields into the template
	// placeholders and builds the wa.me link.
	RenderTemplate(ctx context.Context, templateID uuid.UUID, req RenderTemplateRequest) (*RenderedTemplate, error)
}

type templateService struct {
	templateRepo repository.TemplateRepository
	productRepo  repository.ProductRepository
}

func NewTemplateService(templateRepo repository.TemplateRepository, productRepo repository.ProductRepository) TemplateService {
	return &templateService{templateRepo: templateRepo, productRepo: productRepo}
}

func (s *templateService) CreateTemplate(ctx context.Context, companyID uuid.UUID, req CreateTemplateRequest) (*model.Template, error) {
	template := model.Template{
		CompanyID: companyID,
		Name:      req.Name,
		Content:   req.Content,
	}
	if err := s.templateRepo.Create(ctx, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

func (s *templateService) ListTemplates(ctx context.Context, companyID uuid.UUID) ([]model.Template, error) {
	return s.templateRepo.ListByCompany(ctx, companyID)
}

func (s *templateService) UpdateTemplate(ctx context.Context, id uuid.UUID, req UpdateTemplateRequest) (*model.Template, error) {
	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("template not found")
	}

	if req.Name != "" {
		template.Name = req.Name
	}
	if req.Content != "" {
		template.Content = req.Content
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.templateRepo.FindByID(ctx, id); err != nil {
		return errors.New("template not found")
	}
	return s.templateRepo.Delete(ctx, id)
}

func (s *templateService) RenderTemplate(ctx context.Context, templateID uuid.UUID, req RenderTemplateRequest) (*RenderedTemplate, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, errors.New("template not found")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, errors.New("invalid product_id")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, errors.New("product not found")
	}

	message := RenderMessage(template.Content, product)
	return &RenderedTemplate{
		Message:   message,
		ShareLink: WhatsAppShareLink(message),
	}, nil
}

// RenderMessage substitutes the supported placeholders with the product's
// fields. Unknown placeholders are left as-is.
func RenderMessage(content string, product *model.Product) string {
	replacer := strings.NewReplacer(
		"{brand}", product.Brand,
		"{reference}", product.Reference,
		"{color}", product.Color,
		"{gender}", product.Gender,
		"{price}", product.SalePrice.StringFixed(0),
	)
	return replacer.Replace(content)
}

// WhatsAppShareLink builds the wa.me URL that opens WhatsApp with the
// message prefilled.
func WhatsAppShareLink(message string) string {
	return "https://wa.me/?text=" + url.QueryEscape(message)
}
