package service_test

import (
	"testing"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/testutil"
	"go-retail-pos/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesReturnRequest(sale *model.Sale, fx *testutil.Fixture, qty int) *service.CreateSalesReturnRequest {
	return &service.CreateSalesReturnRequest{
		SaleID: sale.ID.String(),
		Reason: "wrong size",
		Items: []service.ReturnItemRequest{
			{ProductID: fx.ProductA.ID.String(), Quantity: qty, Price: amount("8")},
		},
	}
}

func TestCreateSalesReturnRestocksSaleBranch(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 10)
	sale := cashSale(t, e, e.fx, 5)
	require.Equal(t, 5, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))

	svc := service.NewSalesReturnService(e.store, e.deps)
	ret, err := svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, salesReturnRequest(sale, e.fx, 2))
	require.NoError(t, err)

	assert.Equal(t, "SR0001", ret.ReturnNumber)
	assert.Equal(t, model.ReturnCompleted, ret.Status)
	assert.Equal(t, e.fx.Branch.ID, ret.BranchID)
	require.NotNil(t, ret.CustomerID)
	assert.Equal(t, e.fx.Customer.ID, *ret.CustomerID)
	assertAmount(t, "16", ret.Total)
	assertAmount(t, "0", ret.TaxAmount)

	assert.Equal(t, 7, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))
	assertAmount(t, "0", testutil.CustomerBalance(t, e.db, e.fx.Customer.ID))

	ins := movements(t, e, e.fx.Tenant.ID, model.RefSalesReturn)
	require.Len(t, ins, 1)
	assert.Equal(t, model.MovementIn, ins[0].Direction)
	assert.Equal(t, 5, ins[0].QuantityBefore)
	assert.Equal(t, 7, ins[0].QuantityAfter)

	assert.Equal(t, "sales_return", e.events.last().Type)
}

func TestCreateSalesReturnToOtherBranch(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 10)
	sale := cashSale(t, e, e.fx, 5)
	outlet := testutil.CreateBranch(t, e.db, e.fx.Tenant.ID, "OUTLET")

	req := salesReturnRequest(sale, e.fx, 3)
	req.BranchID = outlet.ID.String()
	ret, err := service.NewSalesReturnService(e.store, e.deps).Create(e.ctx, e.fx.Tenant.ID, e.actor, req)
	require.NoError(t, err)

	assert.Equal(t, outlet.ID, ret.BranchID)
	assert.Equal(t, 3, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, outlet.ID))
	assert.Equal(t, 5, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))
}

func TestCreateSalesReturnRejectsForeignReferences(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 10)
	sale := cashSale(t, e, e.fx, 5)
	other := testutil.NewFixture(t, e.db, "globex")
	svc := service.NewSalesReturnService(e.store, e.deps)

	req := salesReturnRequest(sale, e.fx, 1)
	req.BranchID = other.Branch.ID.String()
	_, err := svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, req)
	assert.ErrorIs(t, err, apperror.ErrBranchNotFound)

	req = salesReturnRequest(sale, e.fx, 1)
	req.CustomerID = other.Customer.ID.String()
	_, err = svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, req)
	assert.ErrorIs(t, err, apperror.ErrCustomerNotFound)

	req = salesReturnRequest(sale, e.fx, 1)
	req.SaleID = uuid.NewString()
	_, err = svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, req)
	assert.ErrorIs(t, err, apperror.ErrSaleNotFound)

	_, err = svc.Create(e.ctx, other.Tenant.ID, e.actor, salesReturnRequest(sale, other, 1))
	assert.ErrorIs(t, err, apperror.ErrSaleNotFound)

	assert.Empty(t, movements(t, e, e.fx.Tenant.ID, model.RefSalesReturn))
	assert.Equal(t, 5, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))
}

func TestCreateSalesReturnWithoutCustomer(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 4)
	sale, err := service.NewSaleService(e.store, e.deps).Create(e.ctx, e.fx.Tenant.ID, e.actor, &service.CreateSaleRequest{
		BranchID:   e.fx.Branch.ID.String(),
		PaidAmount: amount("8"),
		Items:      []service.LineItemRequest{{ProductID: e.fx.ProductA.ID.String(), Quantity: 1, Price: amount("8")}},
	})
	require.NoError(t, err)

	ret, err := service.NewSalesReturnService(e.store, e.deps).Create(e.ctx, e.fx.Tenant.ID, e.actor, salesReturnRequest(sale, e.fx, 1))
	require.NoError(t, err)
	assert.Nil(t, ret.CustomerID)
}

func TestSalesReturnNumbering(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 10)
	sale := cashSale(t, e, e.fx, 5)
	svc := service.NewSalesReturnService(e.store, e.deps)

	var numbers []string
	for i := 0; i < 3; i++ {
		ret, err := svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, salesReturnRequest(sale, e.fx, 1))
		require.NoError(t, err)
		numbers = append(numbers, ret.ReturnNumber)
	}
	assert.Equal(t, []string{"SR0001", "SR0002", "SR0003"}, numbers)

	// Purchase returns draw from their own counter.
	purchase := receivedPurchase(t, e, e.fx)
	pr, err := service.NewPurchaseReturnService(e.store, e.deps).Create(e.ctx, e.fx.Tenant.ID, e.actor, returnRequest(purchase, e.fx))
	require.NoError(t, err)
	assert.Equal(t, "PR0001", pr.ReturnNumber)
}

func TestUpdateSalesReturn(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 10)
	sale := cashSale(t, e, e.fx, 5)
	svc := service.NewSalesReturnService(e.store, e.deps)
	ret, err := svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, salesReturnRequest(sale, e.fx, 2))
	require.NoError(t, err)

	walkIn := testutil.CreateCustomer(t, e.db, e.fx.Tenant.ID, "Walk-in", 0)
	reason := "changed mind"
	customerID := walkIn.ID.String()
	updated, err := svc.Update(e.ctx, e.fx.Tenant.ID, ret.ID, e.actor, &service.UpdateSalesReturnRequest{
		Reason:     &reason,
		CustomerID: &customerID,
	})
	require.NoError(t, err)

	assert.Equal(t, "changed mind", updated.Reason)
	require.NotNil(t, updated.CustomerID)
	assert.Equal(t, walkIn.ID, *updated.CustomerID)
	assertAmount(t, "16", updated.Total)
	assert.Equal(t, 7, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))

	other := testutil.NewFixture(t, e.db, "globex")
	_, err = svc.Update(e.ctx, other.Tenant.ID, ret.ID, e.actor, &service.UpdateSalesReturnRequest{Reason: &reason})
	assert.ErrorIs(t, err, apperror.ErrReturnNotFound)
}

func TestDeleteSalesReturnTakesStockBackOut(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 10)
	sale := cashSale(t, e, e.fx, 5)
	svc := service.NewSalesReturnService(e.store, e.deps)
	ret, err := svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, salesReturnRequest(sale, e.fx, 2))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(e.ctx, e.fx.Tenant.ID, ret.ID, e.actor))

	assert.Equal(t, 5, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))
	outs := movements(t, e, e.fx.Tenant.ID, model.RefSalesReturnReversal)
	require.Len(t, outs, 1)
	assert.Equal(t, model.MovementOut, outs[0].Direction)
	assert.Equal(t, ret.ID, outs[0].ReferenceID)

	_, err = svc.FindOne(e.ctx, e.fx.Tenant.ID, ret.ID)
	assert.ErrorIs(t, err, apperror.ErrReturnNotFound)
	var headers int64
	require.NoError(t, e.db.Unscoped().Model(&model.SalesReturn{}).Where("id = ?", ret.ID).Count(&headers).Error)
	assert.Zero(t, headers)

	assert.Equal(t, "deleted", e.events.last().Action)
	assert.ErrorIs(t, svc.Delete(e.ctx, e.fx.Tenant.ID, ret.ID, e.actor), apperror.ErrReturnNotFound)
	assert.Equal(t, 5, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))
}

func TestDeleteSalesReturnFloorsStockAtZero(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 5)
	sale := cashSale(t, e, e.fx, 5)
	svc := service.NewSalesReturnService(e.store, e.deps)
	ret, err := svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, salesReturnRequest(sale, e.fx, 3))
	require.NoError(t, err)

	// The returned goods were sold again before the return is cancelled.
	cashSale(t, e, e.fx, 2)
	require.Equal(t, 1, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))

	require.NoError(t, svc.Delete(e.ctx, e.fx.Tenant.ID, ret.ID, e.actor))
	assert.Equal(t, 0, testutil.StockOf(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID))
}

func TestFindAllSalesReturnsByBranchAndCustomer(t *testing.T) {
	e := newEnv(t)
	testutil.SetStock(t, e.db, e.fx.Tenant.ID, e.fx.ProductA.ID, e.fx.Branch.ID, 10)
	sale := cashSale(t, e, e.fx, 5)
	outlet := testutil.CreateBranch(t, e.db, e.fx.Tenant.ID, "OUTLET")
	svc := service.NewSalesReturnService(e.store, e.deps)

	_, err := svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, salesReturnRequest(sale, e.fx, 1))
	require.NoError(t, err)
	req := salesReturnRequest(sale, e.fx, 1)
	req.BranchID = outlet.ID.String()
	_, err = svc.Create(e.ctx, e.fx.Tenant.ID, e.actor, req)
	require.NoError(t, err)

	rows, page, err := svc.FindAll(e.ctx, e.fx.Tenant.ID, repository.ReturnFilter{BranchID: &outlet.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), page.Total)
	require.NotNil(t, rows[0].Branch)
	assert.Equal(t, "OUTLET", rows[0].Branch.Code)

	rows, _, err = svc.FindAll(e.ctx, e.fx.Tenant.ID, repository.ReturnFilter{CounterpartyID: &e.fx.Customer.ID})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, _, err = svc.FindAll(e.ctx, e.fx.Tenant.ID, repository.ReturnFilter{Status: "PENDING"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
