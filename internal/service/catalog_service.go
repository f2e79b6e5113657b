package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRequest struct {
	SKU      string          `json:"sku" validate:"required,max=50"`
	Name     string          `json:"name" validate:"required,max=255"`
	Unit     string          `json:"unit" validate:"max=20"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Cost     decimal.Decimal `json:"cost" validate:"gte=0"`
	IsActive *bool           `json:"isActive"`
}

// PartnerRequest creates or updates a supplier or a customer. The balance
// is never set directly; it only moves with documents and payments.
type PartnerRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

type BranchRequest struct {
	Code     string `json:"code" validate:"required,max=30"`
	Name     string `json:"name" validate:"required,max=255"`
	Address  string `json:"address"`
	Phone    string `json:"phone" validate:"max=30"`
	IsActive *bool  `json:"isActive"`
}

// CatalogService covers the tenant's master data and stock views.
type CatalogService interface {
	ListProducts(ctx context.Context, tenantID uuid.UUID, filter repository.ProductFilter) ([]model.Product, repository.Pagination, error)
	GetProduct(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, tenantID uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error)

	ListSuppliers(ctx context.Context, tenantID uuid.UUID, filter repository.PartnerFilter) ([]model.Supplier, repository.Pagination, error)
	GetSupplier(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error)
	CreateSupplier(ctx context.Context, tenantID uuid.UUID, actor Actor, req *PartnerRequest) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *PartnerRequest) (*model.Supplier, error)

	ListCustomers(ctx context.Context, tenantID uuid.UUID, filter repository.PartnerFilter) ([]model.Customer, repository.Pagination, error)
	GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error)
	CreateCustomer(ctx context.Context, tenantID uuid.UUID, actor Actor, req *PartnerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *PartnerRequest) (*model.Customer, error)

	ListBranches(ctx context.Context, tenantID uuid.UUID) ([]model.Branch, error)
	GetBranch(ctx context.Context, tenantID, id uuid.UUID) (*model.Branch, error)
	CreateBranch(ctx context.Context, tenantID uuid.UUID, actor Actor, req *BranchRequest) (*model.Branch, error)
	UpdateBranch(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *BranchRequest) (*model.Branch, error)

	ListStocks(ctx context.Context, tenantID uuid.UUID, filter repository.StockFilter) ([]model.Stock, repository.Pagination, error)
	ListMovements(ctx context.Context, tenantID uuid.UUID, filter repository.MovementFilter) ([]model.StockMovement, repository.Pagination, error)
}

type catalogService struct {
	store *repository.Store
	deps  Deps
}

func NewCatalogService(store *repository.Store, deps Deps) CatalogService {
	return &catalogService{store: store, deps: deps}
}

func (s *catalogService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter repository.ProductFilter) ([]model.Product, repository.Pagination, error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	products, total, err := s.store.Products.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list products: %w", err)
	}
	return products, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *catalogService) GetProduct(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	product, err := s.store.Products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrProductNotFound)
	}
	return product, nil
}

func (s *catalogService) skuTaken(ctx context.Context, tenantID uuid.UUID, sku string, except uuid.UUID) error {
	existing, err := s.store.Products.FindBySKU(ctx, tenantID, sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != except {
		return apperror.ErrDuplicate.WithMessage("SKU already exists")
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, tenantID uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	sku := strings.TrimSpace(req.SKU)
	if err := s.skuTaken(ctx, tenantID, sku, uuid.Nil); err != nil {
		return nil, err
	}

	product := &model.Product{
		TenantID: tenantID,
		SKU:      sku,
		Name:     req.Name,
		Unit:     req.Unit,
		Price:    req.Price,
		Cost:     req.Cost,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	product.CreatedBy = actor.Ref()
	product.UpdatedBy = actor.Ref()
	if err := s.store.Products.Create(ctx, product); err != nil {
		if isDuplicate(err) {
			return nil, apperror.ErrDuplicate.WithMessage("SKU already exists")
		}
		return nil, err
	}

	s.deps.publish(tenantID, "product", "created", actor.Name,
		fmt.Sprintf("%s created product '%s'", actor.Name, product.Name), product)
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	product, err := s.GetProduct(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	sku := strings.TrimSpace(req.SKU)
	if err := s.skuTaken(ctx, tenantID, sku, product.ID); err != nil {
		return nil, err
	}

	product.SKU = sku
	product.Name = req.Name
	product.Unit = req.Unit
	product.Price = req.Price
	product.Cost = req.Cost
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedBy = actor.Ref()
	if err := s.store.Products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.deps.publish(tenantID, "product", "updated", actor.Name,
		fmt.Sprintf("%s updated product '%s'", actor.Name, product.Name), product)
	return product, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context, tenantID uuid.UUID, filter repository.PartnerFilter) ([]model.Supplier, repository.Pagination, error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	suppliers, total, err := s.store.Suppliers.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *catalogService) GetSupplier(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.store.Suppliers.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrSupplierNotFound)
	}
	return supplier, nil
}

func (s *catalogService) CreateSupplier(ctx context.Context, tenantID uuid.UUID, actor Actor, req *PartnerRequest) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	supplier := &model.Supplier{
		TenantID: tenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Balance:  decimal.Zero,
	}
	supplier.CreatedBy = actor.Ref()
	supplier.UpdatedBy = actor.Ref()
	if err := s.store.Suppliers.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *catalogService) UpdateSupplier(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *PartnerRequest) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	supplier, err := s.GetSupplier(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = req.Name
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address
	supplier.UpdatedBy = actor.Ref()
	if err := s.store.Suppliers.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return s.GetSupplier(ctx, tenantID, id)
}

func (s *catalogService) ListCustomers(ctx context.Context, tenantID uuid.UUID, filter repository.PartnerFilter) ([]model.Customer, repository.Pagination, error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	customers, total, err := s.store.Customers.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list customers: %w", err)
	}
	return customers, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *catalogService) GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.store.Customers.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrCustomerNotFound)
	}
	return customer, nil
}

func (s *catalogService) CreateCustomer(ctx context.Context, tenantID uuid.UUID, actor Actor, req *PartnerRequest) (*model.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	customer := &model.Customer{
		TenantID: tenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		Balance:  decimal.Zero,
	}
	customer.CreatedBy = actor.Ref()
	customer.UpdatedBy = actor.Ref()
	if err := s.store.Customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *catalogService) UpdateCustomer(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *PartnerRequest) (*model.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	customer, err := s.GetCustomer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.UpdatedBy = actor.Ref()
	if err := s.store.Customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return s.GetCustomer(ctx, tenantID, id)
}

func (s *catalogService) ListBranches(ctx context.Context, tenantID uuid.UUID) ([]model.Branch, error) {
	return s.store.Branches.FindAll(ctx, tenantID)
}

func (s *catalogService) GetBranch(ctx context.Context, tenantID, id uuid.UUID) (*model.Branch, error) {
	branch, err := s.store.Branches.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrBranchNotFound)
	}
	return branch, nil
}

func (s *catalogService) CreateBranch(ctx context.Context, tenantID uuid.UUID, actor Actor, req *BranchRequest) (*model.Branch, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	branch := &model.Branch{
		TenantID: tenantID,
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	branch.CreatedBy = actor.Ref()
	branch.UpdatedBy = actor.Ref()
	if err := s.store.Branches.Create(ctx, branch); err != nil {
		if isDuplicate(err) {
			return nil, apperror.ErrDuplicate.WithMessage("Branch code already exists")
		}
		return nil, err
	}
	return branch, nil
}

func (s *catalogService) UpdateBranch(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *BranchRequest) (*model.Branch, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	branch, err := s.GetBranch(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	branch.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	branch.Name = req.Name
	branch.Address = req.Address
	branch.Phone = req.Phone
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}
	branch.UpdatedBy = actor.Ref()
	if err := s.store.Branches.Update(ctx, branch); err != nil {
		if isDuplicate(err) {
			return nil, apperror.ErrDuplicate.WithMessage("Branch code already exists")
		}
		return nil, err
	}
	return branch, nil
}

func (s *catalogService) ListStocks(ctx context.Context, tenantID uuid.UUID, filter repository.StockFilter) ([]model.Stock, repository.Pagination, error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	stocks, total, err := s.store.Stocks.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list stocks: %w", err)
	}
	return stocks, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *catalogService) ListMovements(ctx context.Context, tenantID uuid.UUID, filter repository.MovementFilter) ([]model.StockMovement, repository.Pagination, error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	movements, total, err := s.store.Stocks.FindMovements(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list stock movements: %w", err)
	}
	return movements, repository.NewPagination(filter.PageRequest, total), nil
}
