package service_test

import (
	"testing"

	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/testutil"
	"go-retail-pos/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSKUIsUniquePerTenant(t *testing.T) {
	e := newEnv(t)
	svc := service.NewCatalogService(e.store, e.deps)

	_, err := svc.CreateProduct(e.ctx, e.fx.Tenant.ID, e.actor, &service.ProductRequest{
		SKU: "A-001", Name: "Clone", Price: amount("1"), Cost: amount("1"),
	})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	other := testutil.CreateTenant(t, e.db, "globex")
	product, err := svc.CreateProduct(e.ctx, other.ID, e.actor, &service.ProductRequest{
		SKU: " A-001 ", Name: "Globex Widget", Price: amount("4"), Cost: amount("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A-001", product.SKU)
	assert.True(t, product.IsActive)
	assert.Equal(t, "product", e.events.last().Type)

	_, err = svc.GetProduct(e.ctx, e.fx.Tenant.ID, product.ID)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestUpdateProduct(t *testing.T) {
	e := newEnv(t)
	svc := service.NewCatalogService(e.store, e.deps)

	_, err := svc.UpdateProduct(e.ctx, e.fx.Tenant.ID, e.fx.ProductA.ID, e.actor, &service.ProductRequest{
		SKU: "B-001", Name: "Taken", Price: amount("1"), Cost: amount("1"),
	})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	inactive := false
	updated, err := svc.UpdateProduct(e.ctx, e.fx.Tenant.ID, e.fx.ProductA.ID, e.actor, &service.ProductRequest{
		SKU: "A-001", Name: "Renamed", Price: amount("12"), Cost: amount("6"), IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.IsActive)
	assertAmount(t, "6", updated.Cost)

	_, err = svc.UpdateProduct(e.ctx, e.fx.Tenant.ID, e.fx.ProductA.ID, e.actor, &service.ProductRequest{
		SKU: "A-001", Name: "Broken", Price: amount("-1"),
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListProductsSearch(t *testing.T) {
	e := newEnv(t)
	svc := service.NewCatalogService(e.store, e.deps)

	products, page, err := svc.ListProducts(e.ctx, e.fx.Tenant.ID, repository.ProductFilter{Search: "b-0"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, e.fx.ProductB.ID, products[0].ID)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
}

func TestPartnersKeepTheirBalance(t *testing.T) {
	e := newEnv(t)
	svc := service.NewCatalogService(e.store, e.deps)
	receivedPurchase(t, e, e.fx)

	supplier, err := svc.UpdateSupplier(e.ctx, e.fx.Tenant.ID, e.fx.Supplier.ID, e.actor, &service.PartnerRequest{
		Name: "Acme Wholesale", Phone: "555-0101",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Wholesale", supplier.Name)
	assertAmount(t, "80", supplier.Balance)

	_, err = svc.CreateCustomer(e.ctx, e.fx.Tenant.ID, e.actor, &service.PartnerRequest{Name: "Walk-in", Email: "nope"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	customer, err := svc.CreateCustomer(e.ctx, e.fx.Tenant.ID, e.actor, &service.PartnerRequest{Name: "Walk-in"})
	require.NoError(t, err)
	assert.True(t, customer.Balance.IsZero())

	customers, _, err := svc.ListCustomers(e.ctx, e.fx.Tenant.ID, repository.PartnerFilter{Search: "walk"})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.ID, customers[0].ID)

	other := testutil.CreateTenant(t, e.db, "globex")
	_, err = svc.GetSupplier(e.ctx, other.ID, e.fx.Supplier.ID)
	assert.ErrorIs(t, err, apperror.ErrSupplierNotFound)
	_, err = svc.GetCustomer(e.ctx, other.ID, customer.ID)
	assert.ErrorIs(t, err, apperror.ErrCustomerNotFound)
}

func TestBranchCodes(t *testing.T) {
	e := newEnv(t)
	svc := service.NewCatalogService(e.store, e.deps)

	_, err := svc.CreateBranch(e.ctx, e.fx.Tenant.ID, e.actor, &service.BranchRequest{Code: "main", Name: "Again"})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	branch, err := svc.CreateBranch(e.ctx, e.fx.Tenant.ID, e.actor, &service.BranchRequest{Code: " north ", Name: "North"})
	require.NoError(t, err)
	assert.Equal(t, "NORTH", branch.Code)

	_, err = svc.UpdateBranch(e.ctx, e.fx.Tenant.ID, branch.ID, e.actor, &service.BranchRequest{Code: "MAIN", Name: "North"})
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	branches, err := svc.ListBranches(e.ctx, e.fx.Tenant.ID)
	require.NoError(t, err)
	assert.Len(t, branches, 2)

	other := testutil.CreateTenant(t, e.db, "globex")
	_, err = svc.GetBranch(e.ctx, other.ID, branch.ID)
	assert.ErrorIs(t, err, apperror.ErrBranchNotFound)
}

func TestStockViews(t *testing.T) {
	e := newEnv(t)
	svc := service.NewCatalogService(e.store, e.deps)
	purchase := receivedPurchase(t, e, e.fx)
	cashSale(t, e, e.fx, 4)

	productA := e.fx.ProductA.ID
	stocks, page, err := svc.ListStocks(e.ctx, e.fx.Tenant.ID, repository.StockFilter{ProductID: &productA})
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.Equal(t, 6, stocks[0].Quantity)
	assert.Equal(t, int64(1), page.Total)

	all, _, err := svc.ListMovements(e.ctx, e.fx.Tenant.ID, repository.MovementFilter{ProductID: &productA})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byPurchase, _, err := svc.ListMovements(e.ctx, e.fx.Tenant.ID, repository.MovementFilter{ReferenceID: &purchase.ID})
	require.NoError(t, err)
	assert.Len(t, byPurchase, 2)

	other := testutil.CreateTenant(t, e.db, "globex")
	foreign, _, err := svc.ListMovements(e.ctx, other.ID, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, foreign)
}
