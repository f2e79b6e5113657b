package service_test

import (
	"context"
	"sync"
	"testing"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu      sync.Mutex
	tenants []uuid.UUID
	events  []service.Event
}

func (r *recorder) Publish(tenantID uuid.UUID, event interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
	if e, ok := event.(service.Event); ok {
		r.events = append(r.events, e)
	}
}

func (r *recorder) last() service.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return service.Event{}
	}
	return r.events[len(r.events)-1]
}

type env struct {
	ctx    context.Context
	store  *repository.Store
	db     *gorm.DB
	fx     *testutil.Fixture
	actor  service.Actor
	events *recorder
	deps   service.Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := testutil.NewStore(t)
	events := &recorder{}
	return &env{
		ctx:    context.Background(),
		store:  store,
		db:     store.DB(),
		fx:     testutil.NewFixture(t, store.DB(), "acme"),
		actor:  service.Actor{UserID: uuid.New(), Name: "Dina", Email: "dina@acme.test"},
		events: events,
		deps:   service.Deps{Events: events},
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, amount(want).Equal(got), "want %s, got %s", want, got.String())
}

func movements(t *testing.T, e *env, tenantID uuid.UUID, refType string) []model.StockMovement {
	t.Helper()
	rows, _, err := e.store.Stocks.FindMovements(e.ctx, tenantID, repository.MovementFilter{
		ReferenceType: refType,
		PageRequest:   repository.PageRequest{Page: 1, Limit: 100},
	})
	require.NoError(t, err)
	return rows
}

// receivedPurchase books 10 of product A at 5 and 10 of product B at 3
// (total 80) for the fixture's supplier.
func receivedPurchase(t *testing.T, e *env, fx *testutil.Fixture) *model.Purchase {
	t.Helper()
	purchase, err := service.NewPurchaseService(e.store, e.deps).Create(e.ctx, fx.Tenant.ID, e.actor, &service.CreatePurchaseRequest{
		SupplierID: fx.Supplier.ID.String(),
		BranchID:   fx.Branch.ID.String(),
		Items: []service.LineItemRequest{
			{ProductID: fx.ProductA.ID.String(), Quantity: 10, Price: amount("5")},
			{ProductID: fx.ProductB.ID.String(), Quantity: 10, Price: amount("3")},
		},
	})
	require.NoError(t, err)
	return purchase
}

// cashSale sells qty of product A at 8 from the fixture branch to its customer.
func cashSale(t *testing.T, e *env, fx *testutil.Fixture, qty int) *model.Sale {
	t.Helper()
	sale, err := service.NewSaleService(e.store, e.deps).Create(e.ctx, fx.Tenant.ID, e.actor, &service.CreateSaleRequest{
		CustomerID: fx.Customer.ID.String(),
		BranchID:   fx.Branch.ID.String(),
		PaidAmount: amount("8").Mul(decimal.NewFromInt(int64(qty))),
		Items: []service.LineItemRequest{
			{ProductID: fx.ProductA.ID.String(), Quantity: qty, Price: amount("8")},
		},
	})
	require.NoError(t, err)
	return sale
}
