package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *model.Template) error
	Update(ctx context.Context, template *model.Template) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Template, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Template, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *model.Template) error {
	return GetDB(ctx, r.db).Create(template).Error
}

func (r *templateRepository) Update(ctx context.Context, template *model.Template) error {
	return GetDB(ctx, r.db).Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Template{}).Error
}

func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	var template model.Template
	if err := GetDB(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Template, error) {
	var templates []model.Template
	if err := GetDB(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("created_at asc").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}
