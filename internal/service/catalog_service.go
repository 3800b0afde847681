package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	WarehouseID string                     `json:"warehouse_id" binding:"required"`
	Kind        string                     `json:"kind" binding:"required,oneof=product shirt"`
	Brand       string                     `json:"brand" binding:"required"`
	Reference   string                     `json:"reference" binding:"required"`
	Color       string                     `json:"color"`
	Gender      string                     `json:"gender"`
	Comments    string                     `json:"comments"`
	ImageURL    string                     `json:"image_url"`
	BasePrice   string                     `json:"baseprice" binding:"required"`
	SalePrice   string                     `json:"saleprice" binding:"required"`
	Sizes       map[string]model.SizeEntry `json:"sizes"`
	IsBox       bool                       `json:"is_box"`
	Barcode     string                     `json:"barcode"`
	Total2      int                        `json:"total2"`
}

type AssignExhibitionRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	StoreID   string `json:"store_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Barcode   string `json:"barcode" binding:"required"`
}

// --- Interface ---

// CatalogService owns the warehouse side of the stock model: product
// creation, barcode resolution, and exhibition assignment.
type CatalogService interface {
	CreateProduct(ctx context.Context, companyID uuid.UUID, req CreateProductRequest) (*model.Product, error)
	ListInventory(ctx context.Context, warehouseID uuid.UUID, kind string) ([]model.Product, error)
	// ResolveBarcode locates the unique stocked unit a scanned barcode
	// refers to. The redis index answers first; a miss or stale entry
	// falls back to the warehouse scan, which backfills the index.
	ResolveBarcode(ctx context.Context, companyID uuid.UUID, barcode string) (*model.ResolvedUnit, error)
	// AssignExhibition moves one unit from warehouse size stock onto a
	// store's display slot.
	AssignExhibition(ctx context.Context, companyID uuid.UUID, req AssignExhibitionRequest) error
}

type catalogService struct {
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	index         repository.BarcodeIndex
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	index repository.BarcodeIndex,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) CatalogService {
	return &catalogService{
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		index:         index,
		txManager:     txManager,
		hub:           hub,
	}
}

// --- Implementation ---

func (s *catalogService) CreateProduct(ctx context.Context, companyID uuid.UUID, req CreateProductRequest) (*model.Product, error) {
	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("invalid warehouse_id: %w", err)
	}
	if _, err := s.warehouseRepo.FindByID(ctx, warehouseID); err != nil {
		return nil, fmt.Errorf("warehouse not found: %w", err)
	}

	basePrice, err := ParsePrice(req.BasePrice)
	if err != nil {
		return nil, fmt.Errorf("invalid baseprice: %w", err)
	}
	salePrice, err := ParsePrice(req.SalePrice)
	if err != nil {
		return nil, fmt.Errorf("invalid saleprice: %w", err)
	}

	sizes := model.SizeMap{}
	for label, entry := range req.Sizes {
		sizes[label] = entry
	}

	product := model.Product{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		Kind:        req.Kind,
		Brand:       req.Brand,
		Reference:   req.Reference,
		Color:       req.Color,
		Gender:      req.Gender,
		Comments:    req.Comments,
		ImageURL:    req.ImageURL,
		BasePrice:   basePrice,
		SalePrice:   salePrice,
		Sizes:       sizes,
		Exhibition:  model.ExhibitionMap{},
		IsBox:       req.IsBox,
		Barcode:     req.Barcode,
		Total2:      req.Total2,
	}
	product.Total = product.SumSizes()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.productRepo.Create(txCtx, &product)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.indexProduct(ctx, &product)
	return &product, nil
}

func (s *catalogService) ListInventory(ctx context.Context, warehouseID uuid.UUID, kind string) ([]model.Product, error) {
	return s.productRepo.ListByWarehouse(ctx, warehouseID, kind)
}

func (s *catalogService) ResolveBarcode(ctx context.Context, companyID uuid.UUID, barcode string) (*model.ResolvedUnit, error) {
	if unit, ok := s.resolveFromIndex(ctx, companyID, barcode); ok {
		return unit, nil
	}
	return s.resolveByScan(ctx, companyID, barcode)
}

// resolveFromIndex answers from redis when the entry still matches reality.
// Stale entries are dropped so the scan path re-resolves.
func (s *catalogService) resolveFromIndex(ctx context.Context, companyID uuid.UUID, barcode string) (*model.ResolvedUnit, bool) {
	loc, err := s.index.Get(ctx, companyID, barcode)
	if err != nil {
		if !errors.Is(err, repository.ErrIndexMiss) {
			log.Warn().Err(err).Str("barcode", barcode).Msg("barcode index read failed, falling back to scan")
		}
		return nil, false
	}

	product, err := s.productRepo.FindByID(ctx, loc.ProductID)
	if err != nil {
		_ = s.index.Delete(ctx, companyID, barcode)
		return nil, false
	}

	unit, ok := matchInProduct(product, barcode)
	if !ok {
		_ = s.index.Delete(ctx, companyID, barcode)
		return nil, false
	}
	return unit, true
}

// resolveByScan walks every warehouse in stable enumeration order,
// preserving the original collection priority inside each warehouse:
// product size lists, then exhibition slots, then shirts, then box
// barcodes. A barcode matching in more than one warehouse is rejected
// instead of resolved arbitrarily.
func (s *catalogService) resolveByScan(ctx context.Context, companyID uuid.UUID, barcode string) (*model.ResolvedUnit, error) {
	warehouses, err := s.warehouseRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}

	var found *model.ResolvedUnit
	for _, warehouse := range warehouses {
		unit, err := s.scanWarehouse(ctx, warehouse.ID, barcode)
		if err != nil {
			return nil, err
		}
		if unit == nil {
			continue
		}
		if found != nil {
			return nil, ErrAmbiguousBarcode
		}
		found = unit
	}

	if found == nil {
		return nil, ErrBarcodeNotFound
	}

	s.backfillIndex(ctx, companyID, barcode, found)
	return found, nil
}

func (s *catalogService) scanWarehouse(ctx context.Context, warehouseID uuid.UUID, barcode string) (*model.ResolvedUnit, error) {
	products, err := s.productRepo.ListByWarehouse(ctx, warehouseID, model.KindProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan warehouse %s: %w", warehouseID, err)
	}

	// Pass 1: size barcode lists.
	for i := range products {
		if unit, ok := matchInSizes(&products[i], barcode); ok {
			return unit, nil
		}
	}
	// Pass 2: exhibition slots.
	for i := range products {
		if unit, ok := matchInExhibition(&products[i], barcode); ok {
			return unit, nil
		}
	}

	// Pass 3: shirts collection, size lists only.
	shirts, err := s.productRepo.ListByWarehouse(ctx, warehouseID, model.KindShirt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan shirts in warehouse %s: %w", warehouseID, err)
	}
	for i := range shirts {
		if unit, ok := matchInSizes(&shirts[i], barcode); ok {
			return unit, nil
		}
	}

	// Pass 4: box-level barcode field.
	box, err := s.productRepo.FindBoxByBarcode(ctx, warehouseID, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan boxes in warehouse %s: %w", warehouseID, err)
	}
	return &model.ResolvedUnit{
		Product:     *box,
		WarehouseID: box.WarehouseID,
		Barcode:     box.Barcode,
		Quantity:    box.Total2,
		IsBox:       true,
	}, nil
}

func (s *catalogService) AssignExhibition(ctx context.Context, companyID uuid.UUID, req AssignExhibitionRequest) error {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product_id: %w", err)
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return fmt.Errorf("invalid store_id: %w", err)
	}

	var warehouseID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return fmt.Errorf("product not found: %w", err)
		}
		warehouseID = product.WarehouseID

		if product.Exhibition == nil {
			product.Exhibition = model.ExhibitionMap{}
		}
		if _, occupied := product.Exhibition[storeID.String()]; occupied {
			return ErrSlotOccupied
		}

		if err := removeFromSize(product, req.Size, req.Barcode); err != nil {
			return err
		}
		product.Exhibition[storeID.String()] = model.ExhibitionSlot{Size: req.Size, Barcode: req.Barcode}

		return s.productRepo.Save(txCtx, product)
	})
	if err != nil {
		return err
	}

	if putErr := s.index.Put(ctx, companyID, req.Barcode, repository.BarcodeLocation{
		WarehouseID:     warehouseID,
		ProductID:       productID,
		Kind:            model.KindProduct,
		Size:            req.Size,
		ExhibitionStore: storeID.String(),
	}); putErr != nil {
		log.Warn().Err(putErr).Str("barcode", req.Barcode).Msg("failed to update barcode index")
	}

	s.hub.PublishStockEvent(ws.EventExhibitionAssigned, map[string]interface{}{
		"product_id": productID.String(),
		"store_id":   storeID.String(),
		"size":       req.Size,
		"barcode":    req.Barcode,
	})
	return nil
}

// --- Helpers ---

// indexProduct writes index entries for every barcode the product carries.
func (s *catalogService) indexProduct(ctx context.Context, product *model.Product) {
	put := func(barcode string, loc repository.BarcodeLocation) {
		if err := s.index.Put(ctx, product.CompanyID, barcode, loc); err != nil {
			log.Warn().Err(err).Str("barcode", barcode).Msg("failed to index barcode")
		}
	}

	for size, entry := range product.Sizes {
		for _, barcode := range entry.Barcodes {
			put(barcode, repository.BarcodeLocation{
				WarehouseID: product.WarehouseID,
				ProductID:   product.ID,
				Kind:        product.Kind,
				Size:        size,
			})
		}
	}
	if product.IsBox && product.Barcode != "" {
		put(product.Barcode, repository.BarcodeLocation{
			WarehouseID: product.WarehouseID,
			ProductID:   product.ID,
			Kind:        product.Kind,
			IsBox:       true,
		})
	}
}

func (s *catalogService) backfillIndex(ctx context.Context, companyID uuid.UUID, barcode string, unit *model.ResolvedUnit) {
	loc := repository.BarcodeLocation{
		WarehouseID:     unit.WarehouseID,
		ProductID:       unit.Product.ID,
		Kind:            unit.Product.Kind,
		Size:            unit.Size,
		ExhibitionStore: unit.ExhibitionStore,
		IsBox:           unit.IsBox,
	}
	if err := s.index.Put(ctx, companyID, barcode, loc); err != nil {
		log.Warn().Err(err).Str("barcode", barcode).Msg("failed to backfill barcode index")
	}
}

// matchInProduct checks every location a barcode can occupy on a single
// product row, in the same priority order as the warehouse scan.
func matchInProduct(product *model.Product, barcode string) (*model.ResolvedUnit, bool) {
	if unit, ok := matchInSizes(product, barcode); ok {
		return unit, true
	}
	if unit, ok := matchInExhibition(product, barcode); ok {
		return unit, true
	}
	if product.IsBox && product.Barcode == barcode {
		return &model.ResolvedUnit{
			Product:     *product,
			WarehouseID: product.WarehouseID,
			Barcode:     barcode,
			Quantity:    product.Total2,
			IsBox:       true,
		}, true
	}
	return nil, false
}

func matchInSizes(product *model.Product, barcode string) (*model.ResolvedUnit, bool) {
	for size, entry := range product.Sizes {
		for _, candidate := range entry.Barcodes {
			if candidate == barcode {
				return &model.ResolvedUnit{
					Product:     *product,
					WarehouseID: product.WarehouseID,
					Size:        size,
					Barcode:     barcode,
					Quantity:    entry.Quantity,
				}, true
			}
		}
	}
	return nil, false
}

func matchInExhibition(product *model.Product, barcode string) (*model.ResolvedUnit, bool) {
	for storeID, slot := range product.Exhibition {
		if slot.Barcode == barcode {
			return &model.ResolvedUnit{
				Product:         *product,
				WarehouseID:     product.WarehouseID,
				Size:            slot.Size,
				Barcode:         barcode,
				Quantity:        1,
				ExhibitionStore: storeID,
			}, true
		}
	}
	return nil, false
}

// removeFromSize takes one unit with the given barcode out of a size entry,
// deleting the entry when it empties and keeping Total consistent.
func removeFromSize(product *model.Product, size, barcode string) error {
	entry, ok := product.Sizes[size]
	if !ok {
		return fmt.Errorf("size %q not in stock", size)
	}

	idx := -1
	for i, candidate := range entry.Barcodes {
		if candidate == barcode {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("barcode %q not in size %q", barcode, size)
	}

	entry.Barcodes = append(entry.Barcodes[:idx], entry.Barcodes[idx+1:]...)
	entry.Quantity--
	if entry.Quantity <= 0 {
		delete(product.Sizes, size)
	} else {
		product.Sizes[size] = entry
	}
	product.Total--
	return nil
}

// restoreToSize is the inverse of removeFromSize: one unit back into the
// size entry, recreating the entry if it was deleted.
func restoreToSize(product *model.Product, size, barcode string) {
	if product.Sizes == nil {
		product.Sizes = model.SizeMap{}
	}
	entry, ok := product.Sizes[size]
	if !ok {
		entry = model.SizeEntry{}
	}
	entry.Quantity++
	entry.Barcodes = append(entry.Barcodes, barcode)
	product.Sizes[size] = entry
	product.Total++
}
