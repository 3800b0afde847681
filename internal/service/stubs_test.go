package service

import (
	"context"
	"sort"
	"sync"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. They preserve the ordering
// contracts of the real implementations (creation order for warehouses and
// stores) so resolution and invoice-letter tests exercise real behavior.

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
	order    []uuid.UUID
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	clone := *product
	r.products[product.ID] = &clone
	r.order = append(r.order, product.ID)
	return nil
}

func (r *stubProductRepo) Save(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if _, ok := r.products[product.ID]; !ok {
		r.order = append(r.order, product.ID)
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *stubProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *stubProductRepo) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID, kind string) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, id := range r.order {
		product, ok := r.products[id]
		if !ok || product.WarehouseID != warehouseID {
			continue
		}
		if kind != "" && product.Kind != kind {
			continue
		}
		out = append(out, *product)
	}
	return out, nil
}

func (r *stubProductRepo) FindBoxByBarcode(ctx context.Context, warehouseID uuid.UUID, barcode string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		product, ok := r.products[id]
		if ok && product.WarehouseID == warehouseID && product.IsBox && product.Barcode == barcode {
			clone := *product
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubWarehouseRepo struct {
	warehouses []model.Warehouse
}

func (r *stubWarehouseRepo) Create(ctx context.Context, warehouse *model.Warehouse) error {
	if warehouse.ID == uuid.Nil {
		warehouse.ID = uuid.New()
	}
	r.warehouses = append(r.warehouses, *warehouse)
	return nil
}

func (r *stubWarehouseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Warehouse, error) {
	for i := range r.warehouses {
		if r.warehouses[i].ID == id {
			clone := r.warehouses[i]
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubWarehouseRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Warehouse, error) {
	var out []model.Warehouse
	for _, w := range r.warehouses {
		if w.CompanyID == companyID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *stubWarehouseRepo) Update(ctx context.Context, warehouse *model.Warehouse) error { return nil }
func (r *stubWarehouseRepo) Delete(ctx context.Context, id uuid.UUID) error               { return nil }

type stubStoreRepo struct {
	stores []model.Store
}

func (r *stubStoreRepo) Create(ctx context.Context, store *model.Store) error {
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	r.stores = append(r.stores, *store)
	return nil
}

func (r *stubStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	for i := range r.stores {
		if r.stores[i].ID == id {
			clone := r.stores[i]
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStoreRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Store, error) {
	var out []model.Store
	for _, s := range r.stores {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubStoreRepo) Update(ctx context.Context, store *model.Store) error { return nil }
func (r *stubStoreRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }

type stubDraftRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.DraftItem
}

func newStubDraftRepo() *stubDraftRepo {
	return &stubDraftRepo{items: make(map[uuid.UUID]*model.DraftItem)}
}

func (r *stubDraftRepo) Create(ctx context.Context, item *model.DraftItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *stubDraftRepo) Update(ctx context.Context, item *model.DraftItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *stubDraftRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *stubDraftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.DraftItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *stubDraftRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.DraftItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.DraftItem
	for _, item := range r.items {
		if item.InvoiceID == invoiceID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (r *stubDraftRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.items {
		if item.InvoiceID == invoiceID {
			delete(r.items, id)
		}
	}
	return nil
}

type stubInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*model.Invoice
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	clone := *invoice
	r.invoices[invoice.ID] = &clone
	return nil
}

func (r *stubInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *invoice
	r.invoices[invoice.ID] = &clone
	return nil
}

func (r *stubInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, id)
	return nil
}

func (r *stubInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *invoice
	return &clone, nil
}

func (r *stubInvoiceRepo) ListByStore(ctx context.Context, storeID uuid.UUID, status string, page, limit int) ([]model.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invoice
	for _, invoice := range r.invoices {
		if invoice.StoreID != storeID {
			continue
		}
		if status != "" && invoice.Status != status {
			continue
		}
		out = append(out, *invoice)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) LastInvoiceNumber(ctx context.Context, storeID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last := 0
	for _, invoice := range r.invoices {
		if invoice.StoreID == storeID && invoice.InvoiceNumber > last {
			last = invoice.InvoiceNumber
		}
	}
	return last, nil
}

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) Update(ctx context.Context, user *model.User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, user := range r.users {
		if user.CompanyID == companyID {
			out = append(out, *user)
		}
	}
	return out, nil
}

type stubTemplateRepo struct {
	templates map[uuid.UUID]*model.Template
}

func newStubTemplateRepo() *stubTemplateRepo {
	return &stubTemplateRepo{templates: make(map[uuid.UUID]*model.Template)}
}

func (r *stubTemplateRepo) Create(ctx context.Context, template *model.Template) error {
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	clone := *template
	r.templates[template.ID] = &clone
	return nil
}

func (r *stubTemplateRepo) Update(ctx context.Context, template *model.Template) error {
	clone := *template
	r.templates[template.ID] = &clone
	return nil
}

func (r *stubTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.templates, id)
	return nil
}

func (r *stubTemplateRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	template, ok := r.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *template
	return &clone, nil
}

func (r *stubTemplateRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Template, error) {
	var out []model.Template
	for _, template := range r.templates {
		if template.CompanyID == companyID {
			out = append(out, *template)
		}
	}
	return out, nil
}

// stubBarcodeIndex mimics the redis index with a plain map.
type stubBarcodeIndex struct {
	mu      sync.Mutex
	entries map[string]repository.BarcodeLocation
}

func newStubBarcodeIndex() *stubBarcodeIndex {
	return &stubBarcodeIndex{entries: make(map[string]repository.BarcodeLocation)}
}

func (i *stubBarcodeIndex) key(companyID uuid.UUID, barcode string) string {
	return companyID.String() + ":" + barcode
}

func (i *stubBarcodeIndex) Put(ctx context.Context, companyID uuid.UUID, barcode string, loc repository.BarcodeLocation) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[i.key(companyID, barcode)] = loc
	return nil
}

func (i *stubBarcodeIndex) Get(ctx context.Context, companyID uuid.UUID, barcode string) (repository.BarcodeLocation, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	loc, ok := i.entries[i.key(companyID, barcode)]
	if !ok {
		return repository.BarcodeLocation{}, repository.ErrIndexMiss
	}
	return loc, nil
}

func (i *stubBarcodeIndex) Delete(ctx context.Context, companyID uuid.UUID, barcode string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, i.key(companyID, barcode))
	return nil
}
