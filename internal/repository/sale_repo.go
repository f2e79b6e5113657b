package repository

import (
	"context"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleFilter struct {
	CustomerID *uuid.UUID
	BranchID   *uuid.UUID
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
	PageRequest
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	NumberExists(ctx context.Context, tenantID uuid.UUID, invoiceNo string) (bool, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]model.Sale, int64, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *saleRepo) NumberExists(ctx context.Context, tenantID uuid.UUID, invoiceNo string) (bool, error) {
	return numberExists(ctx, r.db, &model.Sale{}, "invoice_no", tenantID, invoiceNo)
}

var saleSortColumns = map[string]string{
	"createdAt": "created_at",
	"saleDate":  "sale_date",
	"invoiceNo": "invoice_no",
	"total":     "total",
}

func (r *saleRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("tenant_id = ?", tenantID)
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(invoice_no) LIKE ?", likePattern(filter.Search))
	}
	if filter.StartDate != nil {
		q = q.Where("sale_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("sale_date <= ?", *filter.EndDate)
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []model.Sale
	err := base.Preload("Customer").
		Order(orderClause(saleSortColumns, filter.SortBy, filter.SortOrder, "createdAt")).
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Branch").
		Preload("Items.Product").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}
