package service_test

import (
	"testing"

	"go-retail-pos/internal/service"
	"go-retail-pos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	receivedPurchase(t, e, e.fx)
	cashSale(t, e, e.fx, 4)

	stats, err := service.NewDashboardService(e.store, 8).GetDashboardStats(e.ctx, e.fx.Tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	// 6 x 5 + 10 x 3
	assertAmount(t, "60", stats.TotalValuation)
	assertAmount(t, "80", stats.SupplierPayable)
	assertAmount(t, "0", stats.CustomerReceivable)

	other := testutil.CreateTenant(t, e.db, "globex")
	empty, err := service.NewDashboardService(e.store, 8).GetDashboardStats(e.ctx, other.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalProducts)
	assert.True(t, empty.TotalValuation.IsZero())
}

func TestDashboardStockMovement(t *testing.T) {
	e := newEnv(t)
	receivedPurchase(t, e, e.fx)
	cashSale(t, e, e.fx, 4)

	series, err := service.NewDashboardService(e.store, 8).GetStockMovement(e.ctx, e.fx.Tenant.ID, 0)
	require.NoError(t, err)

	var in, out int
	for _, day := range series {
		in += day.Inbound
		out += day.Outbound
	}
	assert.Equal(t, 20, in)
	assert.Equal(t, 4, out)
}
