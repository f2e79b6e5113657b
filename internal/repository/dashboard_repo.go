package repository

import (
	"context"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepository interface {
	GetStockMovement(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID, lowStockThreshold int) (*DashboardStats, error)
}

// StockMovementData is one day of the inbound/outbound chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardStats struct {
	TotalProducts      int64           `json:"totalProducts"`
	LowStockCount      int64           `json:"lowStockCount"`
	TotalValuation     decimal.Decimal `json:"totalValuation"`
	SupplierPayable    decimal.Decimal `json:"supplierPayable"`
	CustomerReceivable decimal.Decimal `json:"customerReceivable"`
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) GetStockMovement(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN direction = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("tenant_id = ? AND created_at BETWEEN ? AND ?", tenantID, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			data StockMovementData
			day  interface{}
		)
		if err := rows.Scan(&day, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		data.Date = formatDay(day)
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *dashboardRepo) GetDashboardStats(ctx context.Context, tenantID uuid.UUID, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	err := db.Model(&model.Stock{}).
		Where("tenant_id = ? AND quantity < ?", tenantID, lowStockThreshold).
		Count(&stats.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.Stock{}).
		Joins("JOIN products ON products.id = stocks.product_id").
		Where("stocks.tenant_id = ?", tenantID).
		Select("COALESCE(SUM(stocks.quantity * products.cost), 0)").
		Row().Scan(&stats.TotalValuation)
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.Supplier{}).Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(balance), 0)").Row().Scan(&stats.SupplierPayable)
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.Customer{}).Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(balance), 0)").Row().Scan(&stats.CustomerReceivable)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// formatDay normalises DATE() output: postgres yields a time, sqlite a string.
func formatDay(v interface{}) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case []byte:
		return string(d)
	case string:
		return d
	default:
		return ""
	}
}
