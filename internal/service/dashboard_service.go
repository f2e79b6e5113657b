package service

import (
	"context"
	"time"

	"go-retail-pos/internal/repository"

	"github.com/google/uuid"
)

const maxChartDays = 366

type DashboardService interface {
	GetStockMovement(ctx context.Context, tenantID uuid.UUID, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*repository.DashboardStats, error)
}

type dashboardService struct {
	store             *repository.Store
	lowStockThreshold int
}

func NewDashboardService(store *repository.Store, lowStockThreshold int) DashboardService {
	return &dashboardService{store: store, lowStockThreshold: lowStockThreshold}
}

// GetStockMovement returns the daily IN/OUT totals of the last days days.
func (s *dashboardService) GetStockMovement(ctx context.Context, tenantID uuid.UUID, days int) ([]repository.StockMovementData, error) {
	if days < 1 {
		days = 7
	}
	if days > maxChartDays {
		days = maxChartDays
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.store.Dashboard.GetStockMovement(ctx, tenantID, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*repository.DashboardStats, error) {
	return s.store.Dashboard.GetDashboardStats(ctx, tenantID, s.lowStockThreshold)
}
