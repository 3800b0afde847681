package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	companyID   uuid.UUID
	warehouseID uuid.UUID
	storeID     uuid.UUID
	sellerID    uuid.UUID

	products *stubProductRepo
	drafts   *stubDraftRepo
	invoices *stubInvoiceRepo
	stores   *stubStoreRepo
	index    *stubBarcodeIndex

	svc SaleService
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	ctx := context.Background()
	companyID := uuid.New()

	warehouses := &stubWarehouseRepo{}
	warehouse := model.Warehouse{CompanyID: companyID, Name: "Main"}
	require.NoError(t, warehouses.Create(ctx, &warehouse))

	stores := &stubStoreRepo{}
	store := model.Store{CompanyID: companyID, Name: "Downtown"}
	require.NoError(t, stores.Create(ctx, &store))

	users := newStubUserRepo()
	seller := model.User{CompanyID: companyID, Name: "Ana", Email: "ana@example.com", Role: model.RolePosSalesperson}
	require.NoError(t, users.Create(ctx, &seller))

	products := newStubProductRepo()
	drafts := newStubDraftRepo()
	invoices := newStubInvoiceRepo()
	index := newStubBarcodeIndex()

	catalog := NewCatalogService(products, warehouses, index, stubTxManager{}, nil)
	svc := NewSaleService(invoices, drafts, products, stores, users, catalog, index, stubTxManager{}, nil)

	return &saleFixture{
		companyID:   companyID,
		warehouseID: warehouse.ID,
		storeID:     store.ID,
		sellerID:    seller.ID,
		products:    products,
		drafts:      drafts,
		invoices:    invoices,
		stores:      stores,
		index:       index,
		svc:         svc,
	}
}

func (f *saleFixture) openInvoice(t *testing.T) *model.Invoice {
	t.Helper()
	invoice, err := f.svc.OpenInvoice(context.Background(), f.companyID, f.storeID, OpenInvoiceRequest{
		CustomerName: "Carlos",
	})
	require.NoError(t, err)
	return invoice
}

func (f *saleFixture) stockProduct(t *testing.T, sizes model.SizeMap) *model.Product {
	t.Helper()
	product := &model.Product{
		CompanyID:   f.companyID,
		WarehouseID: f.warehouseID,
		Kind:        model.KindProduct,
		Brand:       "Nike",
		Reference:   "AF1",
		Color:       "White",
		SalePrice:   decimal.NewFromInt(100),
		BasePrice:   decimal.NewFromInt(60),
		Sizes:       sizes,
		Exhibition:  model.ExhibitionMap{},
	}
	for _, entry := range sizes {
		product.Total += entry.Quantity
	}
	require.NoError(t, f.products.Create(context.Background(), product))
	return product
}

func TestAddItemDecrementsStockAndSnapshotsProduct(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	product := f.stockProduct(t, model.SizeMap{
		"40": {Quantity: 2, Barcodes: []string{"BC-1", "BC-2"}},
	})
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, model.KindProduct, item.Kind)
	assert.Equal(t, "40", item.Size)
	assert.Equal(t, "Ana", item.AssignedUserName)
	assert.False(t, item.Sold)

	updated, err := f.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Sizes["40"].Quantity)
	assert.Equal(t, []string{"BC-2"}, updated.Sizes["40"].Barcodes)
	assert.Equal(t, 1, updated.Total)

	// The barcode is out of stock, so its index entry is gone.
	_, err = f.index.Get(ctx, f.companyID, "BC-1")
	assert.ErrorIs(t, err, repository.ErrIndexMiss)
}

func TestAddItemRemovesEmptiedSizeEntry(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	product := f.stockProduct(t, model.SizeMap{
		"40": {Quantity: 1, Barcodes: []string{"LAST-1"}},
	})
	invoice := f.openInvoice(t)

	_, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "LAST-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	updated, err := f.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	_, exists := updated.Sizes["40"]
	assert.False(t, exists)
	assert.Equal(t, 0, updated.Total)
}

func TestAddItemRequiresAssignedUser(t *testing.T) {
	f := newSaleFixture(t)
	f.stockProduct(t, model.SizeMap{"40": {Quantity: 1, Barcodes: []string{"BC-1"}}})
	invoice := f.openInvoice(t)

	_, err := f.svc.AddItem(context.Background(), f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: "",
	})
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestAddItemFallsBackToUnknownUserName(t *testing.T) {
	f := newSaleFixture(t)
	f.stockProduct(t, model.SizeMap{"40": {Quantity: 1, Barcodes: []string{"BC-1"}}})
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(context.Background(), f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: uuid.New().String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Unknown User", item.AssignedUserName)
}

func TestAddItemDispensesWholeBox(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	box := &model.Product{
		CompanyID:   f.companyID,
		WarehouseID: f.warehouseID,
		Kind:        model.KindProduct,
		Brand:       "Adidas",
		Reference:   "Socks",
		SalePrice:   decimal.NewFromInt(10),
		BasePrice:   decimal.NewFromInt(4),
		IsBox:       true,
		Barcode:     "BOX-1",
		Total2:      12,
		Total:       12,
		Sizes:       model.SizeMap{},
		Exhibition:  model.ExhibitionMap{},
	}
	require.NoError(t, f.products.Create(ctx, box))
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BOX-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	assert.True(t, item.IsBox)
	assert.Equal(t, "N/A", item.Size)
	assert.Equal(t, 12, item.Total2)
	assert.Equal(t, 12, item.Quantity())

	updated, err := f.products.FindByID(ctx, box.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Total2)
}

func TestAddItemTakesUnitOffExhibition(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	product := f.stockProduct(t, model.SizeMap{})
	product.Exhibition = model.ExhibitionMap{
		f.storeID.String(): {Size: "41", Barcode: "EX-1"},
	}
	require.NoError(t, f.products.Save(ctx, product))
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "EX-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, f.storeID.String(), item.ExhibitionStore)

	updated, err := f.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	_, stillThere := updated.Exhibition[f.storeID.String()]
	assert.False(t, stillThere)
}

func TestReturnItemRestoresStockRoundTrip(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	product := f.stockProduct(t, model.SizeMap{
		"40": {Quantity: 2, Barcodes: []string{"BC-1", "BC-2"}},
	})
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ReturnItem(ctx, f.companyID, f.storeID, item.ID))

	restored, err := f.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Sizes["40"].Quantity)
	assert.ElementsMatch(t, []string{"BC-1", "BC-2"}, restored.Sizes["40"].Barcodes)
	assert.Equal(t, 2, restored.Total)

	// Draft gone, barcode resolvable again.
	_, err = f.drafts.FindByID(ctx, item.ID)
	assert.Error(t, err)
	loc, err := f.index.Get(ctx, f.companyID, "BC-1")
	require.NoError(t, err)
	assert.Equal(t, product.ID, loc.ProductID)
}

func TestReturnItemRecreatesDeletedProduct(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	product := f.stockProduct(t, model.SizeMap{
		"40": {Quantity: 1, Barcodes: []string{"BC-1"}},
	})
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, product.ID))
	require.NoError(t, f.svc.ReturnItem(ctx, f.companyID, f.storeID, item.ID))

	recreated, err := f.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nike", recreated.Brand)
	assert.Equal(t, "AF1", recreated.Reference)
	assert.Equal(t, 1, recreated.Sizes["40"].Quantity)
	assert.Equal(t, []string{"BC-1"}, recreated.Sizes["40"].Barcodes)
}

func TestReturnItemRestoresBoxFromSnapshot(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	box := &model.Product{
		CompanyID:   f.companyID,
		WarehouseID: f.warehouseID,
		Kind:        model.KindProduct,
		Brand:       "Adidas",
		Reference:   "Socks",
		SalePrice:   decimal.NewFromInt(10),
		BasePrice:   decimal.NewFromInt(4),
		IsBox:       true,
		Barcode:     "BOX-1",
		Total2:      12,
		Total:       12,
		Sizes:       model.SizeMap{},
		Exhibition:  model.ExhibitionMap{},
	}
	require.NoError(t, f.products.Create(ctx, box))
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BOX-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	// Returning after the price was locked reverses the sale the same way.
	_, err = f.svc.MarkSold(ctx, f.storeID, item.ID, MarkSoldRequest{Price: "120"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ReturnItem(ctx, f.companyID, f.storeID, item.ID))

	restored, err := f.products.FindByID(ctx, box.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsBox)
	assert.Equal(t, 12, restored.Total2)
	assert.Equal(t, 12, restored.Total)
	assert.Equal(t, "BOX-1", restored.Barcode)

	_, err = f.drafts.FindByID(ctx, item.ID)
	assert.Error(t, err)
}

func TestReturnItemRestoresDeletedBoxFromSnapshot(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	box := &model.Product{
		CompanyID:   f.companyID,
		WarehouseID: f.warehouseID,
		Kind:        model.KindProduct,
		Brand:       "Adidas",
		Reference:   "Socks",
		SalePrice:   decimal.NewFromInt(10),
		BasePrice:   decimal.NewFromInt(4),
		IsBox:       true,
		Barcode:     "BOX-1",
		Total2:      8,
		Total:       8,
		Sizes:       model.SizeMap{},
		Exhibition:  model.ExhibitionMap{},
	}
	require.NoError(t, f.products.Create(ctx, box))
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BOX-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.products.Delete(ctx, box.ID))
	require.NoError(t, f.svc.ReturnItem(ctx, f.companyID, f.storeID, item.ID))

	recreated, err := f.products.FindByID(ctx, box.ID)
	require.NoError(t, err)
	assert.True(t, recreated.IsBox)
	assert.Equal(t, "Socks", recreated.Reference)
	assert.Equal(t, 8, recreated.Total2)
	assert.Equal(t, 8, recreated.Total)
}

func TestReturnItemReinsertsExhibitionSlot(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	product := f.stockProduct(t, model.SizeMap{})
	product.Exhibition = model.ExhibitionMap{
		f.storeID.String(): {Size: "41", Barcode: "EX-9"},
	}
	require.NoError(t, f.products.Save(ctx, product))
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "EX-9",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ReturnItem(ctx, f.companyID, f.storeID, item.ID))

	restored, err := f.products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	slot, ok := restored.Exhibition[f.storeID.String()]
	require.True(t, ok)
	assert.Equal(t, "41", slot.Size)
	assert.Equal(t, "EX-9", slot.Barcode)

	// Draft gone, barcode resolvable as a displayed unit again.
	_, err = f.drafts.FindByID(ctx, item.ID)
	assert.Error(t, err)
	loc, err := f.index.Get(ctx, f.companyID, "EX-9")
	require.NoError(t, err)
	assert.Equal(t, f.storeID.String(), loc.ExhibitionStore)
}

func TestMarkSoldParsesThousandsSeparators(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	f.stockProduct(t, model.SizeMap{"40": {Quantity: 1, Barcodes: []string{"BC-1"}}})
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	sold, err := f.svc.MarkSold(ctx, f.storeID, item.ID, MarkSoldRequest{Price: "1.234"})
	require.NoError(t, err)

	assert.True(t, sold.Sold)
	require.NotNil(t, sold.SoldAt)
	assert.True(t, sold.SalePrice.Equal(decimal.NewFromInt(1234)))
}

func TestMarkSoldRejectsMalformedPrice(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	f.stockProduct(t, model.SizeMap{"40": {Quantity: 1, Barcodes: []string{"BC-1"}}})
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.MarkSold(ctx, f.storeID, item.ID, MarkSoldRequest{Price: "12a4"})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestComputeTotalsCountsOnlySoldItems(t *testing.T) {
	items := []model.DraftItem{
		{Sold: true, SalePrice: decimal.NewFromInt(100), BasePrice: decimal.NewFromInt(60)},
		{Sold: false, SalePrice: decimal.NewFromInt(999), BasePrice: decimal.NewFromInt(1)},
	}

	totalSold, totalEarn := ComputeTotals(items)
	assert.True(t, totalSold.Equal(decimal.NewFromInt(100)))
	assert.True(t, totalEarn.Equal(decimal.NewFromInt(40)))
}

func TestComputeTotalsMultipliesBoxQuantity(t *testing.T) {
	items := []model.DraftItem{
		{Sold: true, IsBox: true, Total2: 5, SalePrice: decimal.NewFromInt(10), BasePrice: decimal.NewFromInt(4)},
	}

	totalSold, totalEarn := ComputeTotals(items)
	assert.True(t, totalSold.Equal(decimal.NewFromInt(50)))
	assert.True(t, totalEarn.Equal(decimal.NewFromInt(30)))
}

func TestCloseInvoiceRejectsEmptyAndUnsold(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	f.stockProduct(t, model.SizeMap{"40": {Quantity: 1, Barcodes: []string{"BC-1"}}})
	invoice := f.openInvoice(t)

	_, err := f.svc.CloseInvoice(ctx, f.companyID, f.storeID, invoice.ID)
	assert.ErrorIs(t, err, ErrEmptyInvoice)

	_, err = f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.CloseInvoice(ctx, f.companyID, f.storeID, invoice.ID)
	assert.ErrorIs(t, err, ErrUnsoldItems)
}

func TestCloseInvoiceAssignsCodeAndSnapshotsItems(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	f.stockProduct(t, model.SizeMap{"40": {Quantity: 1, Barcodes: []string{"BC-1"}}})
	invoice := f.openInvoice(t)

	item, err := f.svc.AddItem(ctx, f.companyID, f.storeID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)
	_, err = f.svc.MarkSold(ctx, f.storeID, item.ID, MarkSoldRequest{Price: "100"})
	require.NoError(t, err)

	closed, err := f.svc.CloseInvoice(ctx, f.companyID, f.storeID, invoice.ID)
	require.NoError(t, err)

	assert.Equal(t, model.InvoiceClosed, closed.Status)
	assert.Equal(t, 1, closed.InvoiceNumber)
	assert.Equal(t, InvoiceCode(time.Now(), 'A', 0), closed.InvoiceCode)
	assert.True(t, closed.TotalSold.Equal(decimal.NewFromInt(100)))
	assert.True(t, closed.TotalEarn.Equal(decimal.NewFromInt(40)))
	require.Len(t, closed.Items, 1)
	assert.Equal(t, "BC-1", closed.Items[0].Barcode)
	assert.True(t, closed.Items[0].Earn.Equal(decimal.NewFromInt(40)))

	// Drafts are purged on close.
	remaining, err := f.drafts.ListByInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = f.svc.CloseInvoice(ctx, f.companyID, f.storeID, invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceClosed)
}

func TestCloseInvoiceUsesSecondStoreLetter(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()

	second := model.Store{CompanyID: f.companyID, Name: "Uptown"}
	require.NoError(t, f.stores.Create(ctx, &second))

	f.stockProduct(t, model.SizeMap{"40": {Quantity: 1, Barcodes: []string{"BC-1"}}})
	invoice, err := f.svc.OpenInvoice(ctx, f.companyID, second.ID, OpenInvoiceRequest{CustomerName: "Eva"})
	require.NoError(t, err)

	item, err := f.svc.AddItem(ctx, f.companyID, second.ID, invoice.ID, AddItemRequest{
		Barcode:      "BC-1",
		AssignedUser: f.sellerID.String(),
	})
	require.NoError(t, err)
	_, err = f.svc.MarkSold(ctx, second.ID, item.ID, MarkSoldRequest{Price: "100"})
	require.NoError(t, err)

	closed, err := f.svc.CloseInvoice(ctx, f.companyID, second.ID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, byte('B'), closed.InvoiceCode[6])
}

func TestInvoiceCodeFormatAndWrap(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "240501A001", InvoiceCode(day, 'A', 0))
	assert.Equal(t, "240501B043", InvoiceCode(day, 'B', 42))

	// The printed sequence wraps from 999 to 000 with no carry, while the
	// numeric sequence keeps growing.
	assert.Equal(t, "240501A000", InvoiceCode(day, 'A', 999))
	assert.Equal(t, "240501A001", InvoiceCode(day, 'A', 1000))
	assert.Equal(t, "240501A000", InvoiceCode(day, 'A', 1999))
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1.234", 1234, false},
		{"100", 100, false},
		{"10.000.000", 10000000, false},
		{" 500 ", 500, false},
		{"", 0, true},
		{"12a4", 0, true},
		{"-50", 0, true},
		{"1,5", 0, true},
	}

	for _, tc := range cases {
		got, err := ParsePrice(tc.input)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPrice, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "input %q", tc.input)
	}
}
