package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	companyID   uuid.UUID
	warehouseID uuid.UUID
	products    *stubProductRepo
	warehouses  *stubWarehouseRepo
	index       *stubBarcodeIndex
	svc         CatalogService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	companyID := uuid.New()
	warehouses := &stubWarehouseRepo{}
	warehouse := model.Warehouse{CompanyID: companyID, Name: "Main"}
	require.NoError(t, warehouses.Create(context.Background(), &warehouse))

	products := newStubProductRepo()
	index := newStubBarcodeIndex()

	return &catalogFixture{
		companyID:   companyID,
		warehouseID: warehouse.ID,
		products:    products,
		warehouses:  warehouses,
		index:       index,
		svc:         NewCatalogService(products, warehouses, index, stubTxManager{}, nil),
	}
}

func (f *catalogFixture) addProduct(t *testing.T, kind string, sizes model.SizeMap) *model.Product {
	t.Helper()
	product := &model.Product{
		CompanyID:   f.companyID,
		WarehouseID: f.warehouseID,
		Kind:        kind,
		Brand:       "Nike",
		Reference:   "AF1",
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

func TestResolveBarcodeFromSizeStock(t *testing.T) {
	f := newCatalogFixture(t)
	product := f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 2, Barcodes: []string{"BC-1", "BC-2"}},
	})

	unit, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "BC-2")
	require.NoError(t, err)

	assert.Equal(t, product.ID, unit.Product.ID)
	assert.Equal(t, "40", unit.Size)
	assert.Equal(t, "BC-2", unit.Barcode)
	assert.False(t, unit.IsBox)
	assert.Empty(t, unit.ExhibitionStore)
}

func TestResolveBarcodeNotFound(t *testing.T) {
	f := newCatalogFixture(t)
	f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 1, Barcodes: []string{"BC-1"}},
	})

	_, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "MISSING")
	assert.ErrorIs(t, err, ErrBarcodeNotFound)
}

func TestResolveBarcodeFromExhibition(t *testing.T) {
	f := newCatalogFixture(t)
	product := f.addProduct(t, model.KindProduct, model.SizeMap{})
	storeID := uuid.New().String()
	product.Exhibition = model.ExhibitionMap{
		storeID: {Size: "41", Barcode: "EX-1"},
	}
	require.NoError(t, f.products.Save(context.Background(), product))

	unit, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "EX-1")
	require.NoError(t, err)

	assert.Equal(t, storeID, unit.ExhibitionStore)
	assert.Equal(t, "41", unit.Size)
}

func TestResolveBarcodeFromShirts(t *testing.T) {
	f := newCatalogFixture(t)
	shirt := f.addProduct(t, model.KindShirt, model.SizeMap{
		"M": {Quantity: 1, Barcodes: []string{"SH-1"}},
	})

	unit, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "SH-1")
	require.NoError(t, err)

	assert.Equal(t, shirt.ID, unit.Product.ID)
	assert.Equal(t, model.KindShirt, unit.Product.Kind)
	assert.Equal(t, "M", unit.Size)
}

func TestResolveBarcodeFromBox(t *testing.T) {
	f := newCatalogFixture(t)
	box := &model.Product{
		CompanyID:   f.companyID,
		WarehouseID: f.warehouseID,
		Kind:        model.KindProduct,
		Brand:       "Adidas",
		Reference:   "Socks",
		IsBox:       true,
		Barcode:     "BOX-1",
		Total2:      12,
		Sizes:       model.SizeMap{},
		Exhibition:  model.ExhibitionMap{},
	}
	require.NoError(t, f.products.Create(context.Background(), box))

	unit, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "BOX-1")
	require.NoError(t, err)

	assert.True(t, unit.IsBox)
	assert.Equal(t, 12, unit.Quantity)
	assert.Equal(t, box.ID, unit.Product.ID)
}

func TestResolveBarcodeSizeStockWinsOverExhibition(t *testing.T) {
	f := newCatalogFixture(t)

	// Same barcode in one product's size stock and another's exhibition:
	// size stock is scanned first.
	inStock := f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 1, Barcodes: []string{"DUP-1"}},
	})
	displayed := f.addProduct(t, model.KindProduct, model.SizeMap{})
	displayed.Exhibition = model.ExhibitionMap{uuid.New().String(): {Size: "40", Barcode: "DUP-1"}}
	require.NoError(t, f.products.Save(context.Background(), displayed))

	unit, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "DUP-1")
	require.NoError(t, err)
	assert.Equal(t, inStock.ID, unit.Product.ID)
	assert.Empty(t, unit.ExhibitionStore)
}

func TestResolveBarcodeAmbiguousAcrossWarehouses(t *testing.T) {
	f := newCatalogFixture(t)
	f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 1, Barcodes: []string{"DUP-W"}},
	})

	second := model.Warehouse{CompanyID: f.companyID, Name: "Annex"}
	require.NoError(t, f.warehouses.Create(context.Background(), &second))
	other := &model.Product{
		CompanyID:   f.companyID,
		WarehouseID: second.ID,
		Kind:        model.KindProduct,
		Brand:       "Puma",
		Reference:   "RS",
		Sizes:       model.SizeMap{"41": {Quantity: 1, Barcodes: []string{"DUP-W"}}},
		Exhibition:  model.ExhibitionMap{},
	}
	require.NoError(t, f.products.Create(context.Background(), other))

	_, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "DUP-W")
	assert.ErrorIs(t, err, ErrAmbiguousBarcode)
}

func TestResolveBarcodeBackfillsIndex(t *testing.T) {
	f := newCatalogFixture(t)
	product := f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 1, Barcodes: []string{"BC-IDX"}},
	})

	_, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "BC-IDX")
	require.NoError(t, err)

	loc, err := f.index.Get(context.Background(), f.companyID, "BC-IDX")
	require.NoError(t, err)
	assert.Equal(t, product.ID, loc.ProductID)
	assert.Equal(t, "40", loc.Size)
}

func TestResolveBarcodeDropsStaleIndexEntry(t *testing.T) {
	f := newCatalogFixture(t)
	product := f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 1, Barcodes: []string{"BC-STALE"}},
	})

	// Index points at the product, but the barcode has since moved out of
	// its size stock.
	require.NoError(t, f.index.Put(context.Background(), f.companyID, "GONE", repository.BarcodeLocation{
		WarehouseID: f.warehouseID,
		ProductID:   product.ID,
		Kind:        model.KindProduct,
		Size:        "40",
	}))

	_, err := f.svc.ResolveBarcode(context.Background(), f.companyID, "GONE")
	assert.ErrorIs(t, err, ErrBarcodeNotFound)

	_, err = f.index.Get(context.Background(), f.companyID, "GONE")
	assert.ErrorIs(t, err, repository.ErrIndexMiss)
}

func TestAssignExhibitionMovesUnitOutOfSizeStock(t *testing.T) {
	f := newCatalogFixture(t)
	product := f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 2, Barcodes: []string{"BC-1", "BC-2"}},
	})
	storeID := uuid.New()

	err := f.svc.AssignExhibition(context.Background(), f.companyID, AssignExhibitionRequest{
		ProductID: product.ID.String(),
		StoreID:   storeID.String(),
		Size:      "40",
		Barcode:   "BC-1",
	})
	require.NoError(t, err)

	updated, err := f.products.FindByID(context.Background(), product.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Sizes["40"].Quantity)
	assert.Equal(t, []string{"BC-2"}, updated.Sizes["40"].Barcodes)
	assert.Equal(t, 1, updated.Total)

	slot, ok := updated.Exhibition[storeID.String()]
	require.True(t, ok)
	assert.Equal(t, "BC-1", slot.Barcode)
	assert.Equal(t, "40", slot.Size)
}

func TestAssignExhibitionRejectsOccupiedSlot(t *testing.T) {
	f := newCatalogFixture(t)
	product := f.addProduct(t, model.KindProduct, model.SizeMap{
		"40": {Quantity: 2, Barcodes: []string{"BC-1", "BC-2"}},
	})
	storeID := uuid.New()

	req := AssignExhibitionRequest{
		ProductID: product.ID.String(),
		StoreID:   storeID.String(),
		Size:      "40",
		Barcode:   "BC-1",
	}
	require.NoError(t, f.svc.AssignExhibition(context.Background(), f.companyID, req))

	req.Barcode = "BC-2"
	err := f.svc.AssignExhibition(context.Background(), f.companyID, req)
	assert.ErrorIs(t, err, ErrSlotOccupied)
}

func TestCreateProductComputesTotalAndIndexesBarcodes(t *testing.T) {
	f := newCatalogFixture(t)

	product, err := f.svc.CreateProduct(context.Background(), f.companyID, CreateProductRequest{
		WarehouseID: f.warehouseID.String(),
		Kind:        model.KindProduct,
		Brand:       "Nike",
		Reference:   "AF1",
		BasePrice:   "60.000",
		SalePrice:   "100.000",
		Sizes: map[string]model.SizeEntry{
			"40": {Quantity: 2, Barcodes: []string{"N-1", "N-2"}},
			"41": {Quantity: 1, Barcodes: []string{"N-3"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, product.Total)
	assert.True(t, product.BasePrice.Equal(decimal.NewFromInt(60000)))
	assert.True(t, product.SalePrice.Equal(decimal.NewFromInt(100000)))

	loc, err := f.index.Get(context.Background(), f.companyID, "N-3")
	require.NoError(t, err)
	assert.Equal(t, product.ID, loc.ProductID)
	assert.Equal(t, "41", loc.Size)
}
