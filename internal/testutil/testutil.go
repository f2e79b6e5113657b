// Package testutil provides an in-memory database and fixture builders for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection serialises transactions the way row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// NewStore returns a seeded store (privileges, roles, platform admin).
func NewStore(t testing.TB) *repository.Store {
	t.Helper()
	store := repository.NewStore(NewDB(t))
	_, err := repository.Seed(context.Background(), store, "root@platform.test", "secret123")
	require.NoError(t, err)
	return store
}

func CreateTenant(t testing.TB, db *gorm.DB, name string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Name: name, Slug: fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]), IsActive: true}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func CreateBranch(t testing.TB, db *gorm.DB, tenantID uuid.UUID, code string) *model.Branch {
	t.Helper()
	branch := &model.Branch{TenantID: tenantID, Code: code, Name: "Branch " + code, IsActive: true}
	require.NoError(t, db.Create(branch).Error)
	return branch
}

func CreateProduct(t testing.TB, db *gorm.DB, tenantID uuid.UUID, sku string, cost int64) *model.Product {
	t.Helper()
	product := &model.Product{
		TenantID: tenantID,
		SKU:      sku,
		Name:     "Product " + sku,
		Unit:     "pcs",
		Price:    decimal.NewFromInt(cost * 2),
		Cost:     decimal.NewFromInt(cost),
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func CreateSupplier(t testing.TB, db *gorm.DB, tenantID uuid.UUID, name string, balance int64) *model.Supplier {
	t.Helper()
	supplier := &model.Supplier{TenantID: tenantID, Name: name, Balance: decimal.NewFromInt(balance)}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

func CreateCustomer(t testing.TB, db *gorm.DB, tenantID uuid.UUID, name string, balance int64) *model.Customer {
	t.Helper()
	customer := &model.Customer{TenantID: tenantID, Name: name, Balance: decimal.NewFromInt(balance)}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// SetStock writes the on-hand quantity directly, without a ledger row.
func SetStock(t testing.TB, db *gorm.DB, tenantID, productID, branchID uuid.UUID, qty int) {
	t.Helper()
	stock := &model.Stock{TenantID: tenantID, ProductID: productID, BranchID: branchID, Quantity: qty}
	require.NoError(t, db.Create(stock).Error)
}

func StockOf(t testing.TB, db *gorm.DB, tenantID, productID, branchID uuid.UUID) int {
	t.Helper()
	qty, err := repository.NewStockRepo(db).Quantity(context.Background(), tenantID, productID, branchID)
	require.NoError(t, err)
	return qty
}

func SupplierBalance(t testing.TB, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var supplier model.Supplier
	require.NoError(t, db.First(&supplier, "id = ?", id).Error)
	return supplier.Balance
}

func CustomerBalance(t testing.TB, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var customer model.Customer
	require.NoError(t, db.First(&customer, "id = ?", id).Error)
	return customer.Balance
}

// Fixture is one tenant with a branch, a supplier, a customer and two products.
type Fixture struct {
	Tenant   *model.Tenant
	Branch   *model.Branch
	Supplier *model.Supplier
	Customer *model.Customer
	ProductA *model.Product
	ProductB *model.Product
}

func NewFixture(t testing.TB, db *gorm.DB, name string) *Fixture {
	t.Helper()
	tenant := CreateTenant(t, db, name)
	return &Fixture{
		Tenant:   tenant,
		Branch:   CreateBranch(t, db, tenant.ID, "MAIN"),
		Supplier: CreateSupplier(t, db, tenant.ID, name+" Supplier", 0),
		Customer: CreateCustomer(t, db, tenant.ID, name+" Customer", 0),
		ProductA: CreateProduct(t, db, tenant.ID, "A-001", 5),
		ProductB: CreateProduct(t, db, tenant.ID, "B-001", 3),
	}
}
