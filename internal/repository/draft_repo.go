package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DraftRepository interface {
	Create(ctx context.Context, item *model.DraftItem) error
	Update(ctx context.Context, item *model.DraftItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DraftItem, error)
	// ListByInvoice returns the open invoice's staged items, newest first.
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.DraftItem, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Create(ctx context.Context, item *model.DraftItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *draftRepository) Update(ctx context.Context, item *model.DraftItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *draftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.DraftItem{}).Error
}

func (r *draftRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DraftItem, error) {
	var item model.DraftItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *draftRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.DraftItem, error) {
	var items []model.DraftItem
	if err := GetDB(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("added_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *draftRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Delete(&model.DraftItem{}).Error
}
