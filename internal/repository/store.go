package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store bundles every repository over one connection handle.
// Inside Transaction the handle is the open transaction, so all
// repositories reached through the callback's Store share it.
type Store struct {
	db *gorm.DB

	Tenants         TenantRepository
	Branches        BranchRepository
	Users           UserRepository
	Roles           RoleRepository
	Privileges      PrivilegeRepository
	Products        ProductRepository
	Suppliers       SupplierRepository
	Customers       CustomerRepository
	Stocks          StockRepository
	Sequences       SequenceRepository
	Purchases       PurchaseRepository
	Sales           SaleRepository
	PurchaseReturns PurchaseReturnRepository
	SalesReturns    SalesReturnRepository
	Dashboard       DashboardRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:              db,
		Tenants:         NewTenantRepo(db),
		Branches:        NewBranchRepo(db),
		Users:           NewUserRepo(db),
		Roles:           NewRoleRepo(db),
		Privileges:      NewPrivilegeRepo(db),
		Products:        NewProductRepo(db),
		Suppliers:       NewSupplierRepo(db),
		Customers:       NewCustomerRepo(db),
		Stocks:          NewStockRepo(db),
		Sequences:       NewSequenceRepo(db),
		Purchases:       NewPurchaseRepo(db),
		Sales:           NewSaleRepo(db),
		PurchaseReturns: NewPurchaseReturnRepo(db),
		SalesReturns:    NewSalesReturnRepo(db),
		Dashboard:       NewDashboardRepo(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn as one unit of work: commit when fn returns nil,
// roll back on any error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// forUpdate locks the selected rows until the surrounding transaction ends.
// Dialects without row locks (sqlite) drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
