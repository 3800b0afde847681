package service

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateLocationRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
}

type UpdateLocationRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// --- Interface ---

// OrgService manages the tenant structure: companies and their warehouses
// and stores.
type OrgService interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)

	CreateWarehouse(ctx context.Context, companyID uuid.UUID, req CreateLocationRequest) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context, companyID uuid.UUID) ([]model.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id uuid.UUID, req UpdateLocationRequest) (*model.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id uuid.UUID) error

	CreateStore(ctx context.Context, companyID uuid.UUID, req CreateLocationRequest) (*model.Store, error)
	ListStores(ctx context.Context, companyID uuid.UUID) ([]model.Store, error)
	UpdateStore(ctx context.Context, id uuid.UUID, req UpdateLocationRequest) (*model.Store, error)
	DeleteStore(ctx context.Context, id uuid.UUID) error
}

type orgService struct {
	companyRepo   repository.CompanyRepository
	warehouseRepo repository.WarehouseRepository
	storeRepo     repository.StoreRepository
}

func NewOrgService(
	companyRepo repository.CompanyRepository,
	warehouseRepo repository.WarehouseRepository,
	storeRepo repository.StoreRepository,
) OrgService {
	return &orgService{
		companyRepo:   companyRepo,
		warehouseRepo: warehouseRepo,
		storeRepo:     storeRepo,
	}
}

func (s *orgService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*model.Company, error) {
	company := model.Company{Name: req.Name}
	if err := s.companyRepo.Create(ctx, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *orgService) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return s.companyRepo.List(ctx)
}

func (s *orgService) CreateWarehouse(ctx context.Context, companyID uuid.UUID, req CreateLocationRequest) (*model.Warehouse, error) {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, errors.New("company not found")
	}
	warehouse := model.Warehouse{CompanyID: companyID, Name: req.Name, ImageURL: req.ImageURL}
	if err := s.warehouseRepo.Create(ctx, &warehouse); err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (s *orgService) ListWarehouses(ctx context.Context, companyID uuid.UUID) ([]model.Warehouse, error) {
	return s.warehouseRepo.ListByCompany(ctx, companyID)
}

func (s *orgService) UpdateWarehouse(ctx context.Context, id uuid.UUID, req UpdateLocationRequest) (*model.Warehouse, error) {
	warehouse, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("warehouse not found")
	}
	if req.Name != "" {
		warehouse.Name = req.Name
	}
	if req.ImageURL != "" {
		warehouse.ImageURL = req.ImageURL
	}
	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (s *orgService) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	if _, err := s.warehouseRepo.FindByID(ctx, id); err != nil {
		return errors.New("warehouse not found")
	}
	return s.warehouseRepo.Delete(ctx, id)
}

func (s *orgService) CreateStore(ctx context.Context, companyID uuid.UUID, req CreateLocationRequest) (*model.Store, error) {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, errors.New("company not found")
	}
	store := model.Store{CompanyID: companyID, Name: req.Name, ImageURL: req.ImageURL}
	if err := s.storeRepo.Create(ctx, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (s *orgService) ListStores(ctx context.Context, companyID uuid.UUID) ([]model.Store, error) {
	return s.storeRepo.ListByCompany(ctx, companyID)
}

func (s *orgService) UpdateStore(ctx context.Context, id uuid.UUID, req UpdateLocationRequest) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("store not found")
	}
	if req.Name != "" {
		store.Name = req.Name
	}
	if req.ImageURL != "" {
		store.ImageURL = req.ImageURL
	}
	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *orgService) DeleteStore(ctx context.Context, id uuid.UUID) error {
	if _, err := s.storeRepo.FindByID(ctx, id); err != nil {
		return errors.New("store not found")
	}
	return s.storeRepo.Delete(ctx, id)
}
