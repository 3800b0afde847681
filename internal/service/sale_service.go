package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type OpenInvoiceRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
}

type AddItemRequest struct {
	Barcode      string `json:"barcode" binding:"required"`
	AssignedUser string `json:"assigned_user" binding:"required"`
}

type MarkSoldRequest struct {
	Price string `json:"price" binding:"required"`
}

// InvoiceDetail is an open invoice with its staged items and the totals
// recomputed from them on every fetch.
type InvoiceDetail struct {
	Invoice   model.Invoice     `json:"invoice"`
	Items     []model.DraftItem `json:"items"`
	TotalSold string            `json:"total_sold"`
	TotalEarn string            `json:"total_earn"`
}

// --- Interface ---

// SaleService owns the invoice lifecycle: opening, staging units off
// warehouse stock, returns, price locking, and the closing snapshot.
type SaleService interface {
	OpenInvoice(ctx context.Context, companyID, storeID uuid.UUID, req OpenInvoiceRequest) (*model.Invoice, error)
	ListInvoices(ctx context.Context, storeID uuid.UUID, status string, page, limit int) ([]model.Invoice, int64, error)
	GetInvoice(ctx context.Context, storeID, invoiceID uuid.UUID) (*InvoiceDetail, error)
	AddItem(ctx context.Context, companyID, storeID, invoiceID uuid.UUID, req AddItemRequest) (*model.DraftItem, error)
	ReturnItem(ctx context.Context, companyID, storeID, itemID uuid.UUID) error
	MarkSold(ctx context.Context, storeID, itemID uuid.UUID, req MarkSoldRequest) (*model.DraftItem, error)
	CloseInvoice(ctx context.Context, companyID, storeID, invoiceID uuid.UUID) (*model.Invoice, error)
}

type saleService struct {
	invoiceRepo repository.InvoiceRepository
	draftRepo   repository.DraftRepository
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	userRepo    repository.UserRepository
	catalog     CatalogService
	index       repository.BarcodeIndex
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewSaleService(
	invoiceRepo repository.InvoiceRepository,
	draftRepo repository.DraftRepository,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	catalog CatalogService,
	index repository.BarcodeIndex,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) SaleService {
	return &saleService{
		invoiceRepo: invoiceRepo,
		draftRepo:   draftRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		userRepo:    userRepo,
		catalog:     catalog,
		index:       index,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Invoice lifecycle ---

func (s *saleService) OpenInvoice(ctx context.Context, companyID, storeID uuid.UUID, req OpenInvoiceRequest) (*model.Invoice, error) {
	if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
		return nil, fmt.Errorf("store not found: %w", err)
	}

	invoice := model.Invoice{
		CompanyID:     companyID,
		StoreID:       storeID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Status:        model.InvoiceOpen,
	}
	if err := s.invoiceRepo.Create(ctx, &invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return &invoice, nil
}

func (s *saleService) ListInvoices(ctx context.Context, storeID uuid.UUID, status string, page, limit int) ([]model.Invoice, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.invoiceRepo.ListByStore(ctx, storeID, status, page, limit)
}

func (s *saleService) GetInvoice(ctx context.Context, storeID, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	invoice, err := s.findStoreInvoice(ctx, storeID, invoiceID)
	if err != nil {
		return nil, err
	}

	items := []model.DraftItem{}
	if invoice.Status == model.InvoiceOpen {
		items, err = s.draftRepo.ListByInvoice(ctx, invoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch draft items: %w", err)
		}
	}

	totalSold, totalEarn := ComputeTotals(items)
	if invoice.Status == model.InvoiceClosed {
		totalSold, totalEarn = invoice.TotalSold, invoice.TotalEarn
	}

	return &InvoiceDetail{
		Invoice:   *invoice,
		Items:     items,
		TotalSold: totalSold.StringFixed(0),
		TotalEarn: totalEarn.StringFixed(0),
	}, nil
}

// --- Add to invoice (stock decrement) ---

func (s *saleService) AddItem(ctx context.Context, companyID, storeID, invoiceID uuid.UUID, req AddItemRequest) (*model.DraftItem, error) {
	assignedUser, err := uuid.Parse(req.AssignedUser)
	if err != nil || assignedUser == uuid.Nil {
		return nil, ErrUserRequired
	}

	invoice, err := s.findStoreInvoice(ctx, storeID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != model.InvoiceOpen {
		return nil, ErrInvoiceClosed
	}

	unit, err := s.catalog.ResolveBarcode(ctx, companyID, req.Barcode)
	if err != nil {
		return nil, err
	}

	assignedName := "Unknown User"
	if user, userErr := s.userRepo.FindByID(ctx, assignedUser); userErr == nil {
		assignedName = user.Name
	}

	item := draftFromUnit(unit, companyID, storeID, invoiceID, assignedUser, assignedName)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByIDForUpdate(txCtx, unit.Product.ID)
		if err != nil {
			return fmt.Errorf("product not found: %w", err)
		}

		switch {
		case unit.ExhibitionStore != "":
			// The displayed unit leaves the store's slot; other stores'
			// slots stay untouched.
			if _, ok := product.Exhibition[unit.ExhibitionStore]; !ok {
				return fmt.Errorf("exhibition slot for store %s is gone", unit.ExhibitionStore)
			}
			delete(product.Exhibition, unit.ExhibitionStore)
		case unit.IsBox:
			// The whole box is dispensed in one sale.
			product.Total2 = 0
		default:
			if err := removeFromSize(product, unit.Size, unit.Barcode); err != nil {
				return err
			}
		}

		if err := s.productRepo.Save(txCtx, product); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}
		if err := s.draftRepo.Create(txCtx, item); err != nil {
			return fmt.Errorf("failed to create draft item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Box barcodes stay on the product row and remain resolvable.
	if !unit.IsBox {
		if delErr := s.index.Delete(ctx, companyID, unit.Barcode); delErr != nil {
			log.Warn().Err(delErr).Str("barcode", unit.Barcode).Msg("failed to drop barcode index entry")
		}
	}

	s.hub.PublishStockEvent(ws.EventSaleAdded, map[string]interface{}{
		"store_id":   storeID.String(),
		"invoice_id": invoiceID.String(),
		"product_id": unit.Product.ID.String(),
		"barcode":    unit.Barcode,
		"size":       unit.Size,
	})
	return item, nil
}

// --- Return (stock increment / reversal) ---

func (s *saleService) ReturnItem(ctx context.Context, companyID, storeID, itemID uuid.UUID) error {
	item, err := s.draftRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("draft item not found: %w", err)
		}
		return fmt.Errorf("failed to load draft item: %w", err)
	}
	if item.StoreID != storeID {
		return fmt.Errorf("draft item does not belong to store %s", storeID)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, findErr := s.productRepo.FindByIDForUpdate(txCtx, item.ProductID)

		switch {
		case item.ExhibitionStore != "":
			if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to load product: %w", findErr)
			}
			// Re-insert the displayed unit under its original store. A
			// deleted product simply loses the displayed unit.
			if findErr == nil {
				if product.Exhibition == nil {
					product.Exhibition = model.ExhibitionMap{}
				}
				product.Exhibition[item.ExhibitionStore] = model.ExhibitionSlot{
					Size:    item.Size,
					Barcode: item.Barcode,
				}
				if err := s.productRepo.Save(txCtx, product); err != nil {
					return fmt.Errorf("failed to restore exhibition slot: %w", err)
				}
			}
		case item.IsBox:
			// Restore the box row from the line-item snapshot, recreating
			// it if the row is gone.
			restored := productFromSnapshot(item)
			restored.Total2 = item.Total2
			restored.Total = item.BoxTotal
			restored.IsBox = true
			if err := s.productRepo.Save(txCtx, restored); err != nil {
				return fmt.Errorf("failed to restore box: %w", err)
			}
		default:
			if findErr != nil {
				if !errors.Is(findErr, gorm.ErrRecordNotFound) {
					return fmt.Errorf("failed to load product: %w", findErr)
				}
				recreated := productFromSnapshot(item)
				restoreToSize(recreated, item.Size, item.Barcode)
				if err := s.productRepo.Save(txCtx, recreated); err != nil {
					return fmt.Errorf("failed to recreate product: %w", err)
				}
			} else {
				restoreToSize(product, item.Size, item.Barcode)
				if err := s.productRepo.Save(txCtx, product); err != nil {
					return fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}

		if err := s.draftRepo.Delete(txCtx, item.ID); err != nil {
			return fmt.Errorf("failed to delete draft item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if putErr := s.index.Put(ctx, companyID, item.Barcode, repository.BarcodeLocation{
		WarehouseID:     item.WarehouseID,
		ProductID:       item.ProductID,
		Kind:            item.Kind,
		Size:            item.Size,
		ExhibitionStore: item.ExhibitionStore,
		IsBox:           item.IsBox,
	}); putErr != nil {
		log.Warn().Err(putErr).Str("barcode", item.Barcode).Msg("failed to restore barcode index entry")
	}

	s.hub.PublishStockEvent(ws.EventSaleReturned, map[string]interface{}{
		"store_id":   storeID.String(),
		"invoice_id": item.InvoiceID.String(),
		"product_id": item.ProductID.String(),
		"barcode":    item.Barcode,
	})
	return nil
}

// --- Mark sold / finalize ---

func (s *saleService) MarkSold(ctx context.Context, storeID, itemID uuid.UUID, req MarkSoldRequest) (*model.DraftItem, error) {
	price, err := ParsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	item, err := s.draftRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("draft item not found: %w", err)
	}
	if item.StoreID != storeID {
		return nil, fmt.Errorf("draft item does not belong to store %s", storeID)
	}

	now := time.Now()
	item.Sold = true
	item.SalePrice = price
	item.SoldAt = &now

	if err := s.draftRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to mark item sold: %w", err)
	}
	return item, nil
}

func (s *saleService) CloseInvoice(ctx context.Context, companyID, storeID, invoiceID uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.findStoreInvoice(ctx, storeID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != model.InvoiceOpen {
		return nil, ErrInvoiceClosed
	}

	items, err := s.draftRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draft items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyInvoice
	}
	for _, item := range items {
		if !item.Sold {
			return nil, ErrUnsoldItems
		}
	}

	letter, err := s.storeLetter(ctx, companyID, storeID)
	if err != nil {
		return nil, err
	}

	totalSold, totalEarn := ComputeTotals(items)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// The sequence read happens under the transaction's row lock so two
		// concurrent closes in the same store cannot mint the same number.
		lastNumber, err := s.invoiceRepo.LastInvoiceNumber(txCtx, storeID)
		if err != nil {
			return fmt.Errorf("failed to read invoice sequence: %w", err)
		}

		invoice.Status = model.InvoiceClosed
		invoice.InvoiceNumber = lastNumber + 1
		invoice.InvoiceCode = InvoiceCode(time.Now(), letter, lastNumber)
		invoice.TotalSold = totalSold
		invoice.TotalEarn = totalEarn
		invoice.Items = snapshotItems(items)

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to close invoice: %w", err)
		}
		if err := s.draftRepo.DeleteByInvoice(txCtx, invoiceID); err != nil {
			return fmt.Errorf("failed to purge draft items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.PublishStockEvent(ws.EventInvoiceClosed, map[string]interface{}{
		"store_id":     storeID.String(),
		"invoice_id":   invoiceID.String(),
		"invoice_code": invoice.InvoiceCode,
		"total_sold":   invoice.TotalSold.StringFixed(0),
	})
	return invoice, nil
}

// --- Helpers ---

func (s *saleService) findStoreInvoice(ctx context.Context, storeID, invoiceID uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if invoice.StoreID != storeID {
		return nil, fmt.Errorf("invoice does not belong to store %s", storeID)
	}
	return invoice, nil
}

// storeLetter derives the store's single-letter code from its lexicographic
// position among the company's stores ('A' + index), defaulting to 'A'.
func (s *saleService) storeLetter(ctx context.Context, companyID, storeID uuid.UUID) (byte, error) {
	stores, err := s.storeRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to list stores: %w", err)
	}
	for i, store := range stores {
		if store.ID == storeID {
			return byte('A' + i), nil
		}
	}
	return 'A', nil
}

// InvoiceCode builds the printed invoice identifier: YYMMDD, the store
// letter, then a three-digit sequence. The sequence wraps from 999 back to
// 000 with no carry into a higher digit.
func InvoiceCode(t time.Time, letter byte, lastNumber int) string {
	return fmt.Sprintf("%s%c%03d", t.Format("060102"), letter, (lastNumber+1)%1000)
}

func draftFromUnit(unit *model.ResolvedUnit, companyID, storeID, invoiceID, assignedUser uuid.UUID, assignedName string) *model.DraftItem {
	item := &model.DraftItem{
		CompanyID:        companyID,
		StoreID:          storeID,
		InvoiceID:        invoiceID,
		ProductID:        unit.Product.ID,
		WarehouseID:      unit.WarehouseID,
		Kind:             unit.Product.Kind,
		Brand:            unit.Product.Brand,
		Reference:        unit.Product.Reference,
		Color:            unit.Product.Color,
		Gender:           unit.Product.Gender,
		Comments:         unit.Product.Comments,
		ImageURL:         unit.Product.ImageURL,
		Size:             unit.Size,
		Barcode:          unit.Barcode,
		SalePrice:        unit.Product.SalePrice,
		BasePrice:        unit.Product.BasePrice,
		IsBox:            unit.IsBox,
		ExhibitionStore:  unit.ExhibitionStore,
		AssignedUser:     assignedUser,
		AssignedUserName: assignedName,
	}
	if unit.IsBox {
		item.Size = "N/A"
		item.Total2 = unit.Product.Total2
		item.BoxTotal = unit.Product.Total
	}
	return item
}

// productFromSnapshot rebuilds a product row from the fields a draft item
// carries, for the deleted-while-staged edge case.
func productFromSnapshot(item *model.DraftItem) *model.Product {
	return &model.Product{
		ID:          item.ProductID,
		CompanyID:   item.CompanyID,
		WarehouseID: item.WarehouseID,
		Kind:        item.Kind,
		Brand:       item.Brand,
		Reference:   item.Reference,
		Color:       item.Color,
		Gender:      item.Gender,
		Comments:    item.Comments,
		ImageURL:    item.ImageURL,
		BasePrice:   item.BasePrice,
		SalePrice:   item.SalePrice,
		Sizes:       model.SizeMap{},
		Exhibition:  model.ExhibitionMap{},
		Barcode:     item.Barcode,
	}
}

func snapshotItems(items []model.DraftItem) model.InvoiceItems {
	snapshot := make(model.InvoiceItems, 0, len(items))
	for _, item := range items {
		qty := item.Quantity()
		earn := item.SalePrice.Sub(item.BasePrice).Mul(decimal.NewFromInt(int64(qty)))
		snapshot = append(snapshot, model.InvoiceItem{
			ProductID:        item.ProductID,
			WarehouseID:      item.WarehouseID,
			Kind:             item.Kind,
			Brand:            item.Brand,
			Reference:        item.Reference,
			Color:            item.Color,
			Size:             item.Size,
			Barcode:          item.Barcode,
			ImageURL:         item.ImageURL,
			SalePrice:        item.SalePrice,
			BasePrice:        item.BasePrice,
			Earn:             earn,
			Quantity:         qty,
			IsBox:            item.IsBox,
			Sold:             item.Sold,
			ExhibitionStore:  item.ExhibitionStore,
			AssignedUser:     item.AssignedUser,
			AssignedUserName: item.AssignedUserName,
			AddedAt:          item.AddedAt,
		})
	}
	return snapshot
}
