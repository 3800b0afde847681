package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMessageSubstitutesPlaceholders(t *testing.T) {
	product := &model.Product{
		Brand:     "Nike",
		Reference: "AF1",
		Color:     "White",
		Gender:    "Men",
		SalePrice: decimal.NewFromInt(250000),
	}

	message := RenderMessage("New arrival: {brand} {reference} in {color} ({gender}) for only {price}!", product)
	assert.Equal(t, "New arrival: Nike AF1 in White (Men) for only 250000!", message)
}

func TestRenderMessageLeavesUnknownPlaceholders(t *testing.T) {
	product := &model.Product{Brand: "Nike"}
	message := RenderMessage("{brand} {unknown}", product)
	assert.Equal(t, "Nike {unknown}", message)
}

func TestWhatsAppShareLinkEscapesMessage(t *testing.T) {
	link := WhatsAppShareLink("Nike AF1 & more, 100% cotton")
	assert.Equal(t, "https://wa.me/?text=Nike+AF1+%26+more%2C+100%25+cotton", link)
}

func TestRenderTemplateEndToEnd(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	templates := newStubTemplateRepo()
	products := newStubProductRepo()
	svc := NewTemplateService(templates, products)

	product := &model.Product{
		CompanyID:   companyID,
		WarehouseID: uuid.New(),
		Kind:        model.KindProduct,
		Brand:       "Puma",
		Reference:   "RS-X",
		Color:       "Black",
		Gender:      "Women",
		SalePrice:   decimal.NewFromInt(180000),
		Sizes:       model.SizeMap{},
		Exhibition:  model.ExhibitionMap{},
	}
	require.NoError(t, products.Create(ctx, product))

	template, err := svc.CreateTemplate(ctx, companyID, CreateTemplateRequest{
		Name:    "promo",
		Content: "{brand} {reference} - {price}",
	})
	require.NoError(t, err)

	rendered, err := svc.RenderTemplate(ctx, template.ID, RenderTemplateRequest{
		ProductID: product.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, "Puma RS-X - 180000", rendered.Message)
	assert.Contains(t, rendered.ShareLink, "https://wa.me/?text=")
	assert.Contains(t, rendered.ShareLink, "Puma+RS-X")
}

func TestUpdateTemplatePartialFields(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	templates := newStubTemplateRepo()
	svc := NewTemplateService(templates, newStubProductRepo())

	template, err := svc.CreateTemplate(ctx, companyID, CreateTemplateRequest{Name: "promo", Content: "old"})
	require.NoError(t, err)

	updated, err := svc.UpdateTemplate(ctx, template.ID, UpdateTemplateRequest{Content: "new"})
	require.NoError(t, err)
	assert.Equal(t, "promo", updated.Name)
	assert.Equal(t, "new", updated.Content)
}
