package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Save(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindByIDForUpdate row-locks the product for the duration of the
	// surrounding transaction. Stock mutations use it so two concurrent
	// sales of the same barcode cannot both read the same size entry.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, kind string) ([]model.Product, error)
	FindBoxByBarcode(ctx context.Context, warehouseID uuid.UUID, barcode string) (*model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepository) Save(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Product{}).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, kind string) ([]model.Product, error) {
	var products []model.Product
	db := GetDB(ctx, r.db).Where("warehouse_id = ?", warehouseID)
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	if err := db.Order("created_at asc, id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindBoxByBarcode(ctx context.Context, warehouseID uuid.UUID, barcode string) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).
		Where("warehouse_id = ? AND is_box = true AND barcode = ?", warehouseID, barcode).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
