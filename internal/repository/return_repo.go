package repository

import (
	"context"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReturnFilter narrows return listings. Nil/empty fields are not applied.
type ReturnFilter struct {
	// CounterpartyID is the supplier for purchase returns and the customer for sales returns.
	CounterpartyID *uuid.UUID
	BranchID       *uuid.UUID
	Status         string
	Search         string
	StartDate      *time.Time
	EndDate        *time.Time
	SortBy         string
	SortOrder      string
	PageRequest
}

type PurchaseReturnRepository interface {
	Create(ctx context.Context, ret *model.PurchaseReturn) error
	NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ReturnFilter) ([]model.PurchaseReturn, int64, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.PurchaseReturn, error)
	// FindForUpdate loads the header with its items and locks the header row.
	FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.PurchaseReturn, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	// Delete hard-deletes the header and its items.
	Delete(ctx context.Context, id uuid.UUID) error
}

type purchaseReturnRepo struct {
	db *gorm.DB
}

func NewPurchaseReturnRepo(db *gorm.DB) PurchaseReturnRepository {
	return &purchaseReturnRepo{db}
}

func returnSortColumns(table string) map[string]string {
	return map[string]string{
		"createdAt":    table + ".created_at",
		"returnDate":   table + ".return_date",
		"returnNumber": table + ".return_number",
		"total":        table + ".total",
	}
}

// scopeReturns applies the filters shared by both return tables.
// partyTable/partyColumn identify the counterparty join used for search.
func scopeReturns(q *gorm.DB, table, partyTable, partyColumn string, tenantID uuid.UUID, filter ReturnFilter) *gorm.DB {
	q = q.Joins("LEFT JOIN "+partyTable+" ON "+partyTable+".id = "+table+"."+partyColumn).
		Where(table+".tenant_id = ?", tenantID)
	if filter.CounterpartyID != nil {
		q = q.Where(table+"."+partyColumn+" = ?", *filter.CounterpartyID)
	}
	if filter.BranchID != nil {
		q = q.Where(table+".branch_id = ?", *filter.BranchID)
	}
	if filter.Status != "" {
		q = q.Where(table+".status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("(LOWER("+table+".return_number) LIKE ? OR LOWER("+partyTable+".name) LIKE ?)", pattern, pattern)
	}
	if filter.StartDate != nil {
		q = q.Where(table+".return_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where(table+".return_date <= ?", *filter.EndDate)
	}
	return q
}

func (r *purchaseReturnRepo) Create(ctx context.Context, ret *model.PurchaseReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *purchaseReturnRepo) NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	return numberExists(ctx, r.db, &model.PurchaseReturn{}, "return_number", tenantID, number)
}

func (r *purchaseReturnRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter ReturnFilter) ([]model.PurchaseReturn, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PurchaseReturn{})
	base := scopeReturns(q, "purchase_returns", "suppliers", "supplier_id", tenantID, filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var returns []model.PurchaseReturn
	err := base.Select("purchase_returns.*").
		Preload("Supplier").
		Preload("Items").
		Order(orderClause(returnSortColumns("purchase_returns"), filter.SortBy, filter.SortOrder, "createdAt")).
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&returns).Error
	return returns, total, err
}

func (r *purchaseReturnRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.PurchaseReturn, error) {
	var ret model.PurchaseReturn
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Purchase").
		Preload("Supplier").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ret).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *purchaseReturnRepo) FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.PurchaseReturn, error) {
	var ret model.PurchaseReturn
	err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ret).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("purchase_return_id = ?", ret.ID).Find(&ret.Items).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *purchaseReturnRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseReturn{}).Where("id = ?", id).Updates(fields).Error
}

func (r *purchaseReturnRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("purchase_return_id = ?", id).Delete(&model.PurchaseReturnItem{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&model.PurchaseReturn{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type SalesReturnRepository interface {
	Create(ctx context.Context, ret *model.SalesReturn) error
	NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ReturnFilter) ([]model.SalesReturn, int64, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.SalesReturn, error)
	FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.SalesReturn, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type salesReturnRepo struct {
	db *gorm.DB
}

func NewSalesReturnRepo(db *gorm.DB) SalesReturnRepository {
	return &salesReturnRepo{db}
}

func (r *salesReturnRepo) Create(ctx context.Context, ret *model.SalesReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *salesReturnRepo) NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	return numberExists(ctx, r.db, &model.SalesReturn{}, "return_number", tenantID, number)
}

func (r *salesReturnRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter ReturnFilter) ([]model.SalesReturn, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SalesReturn{})
	base := scopeReturns(q, "sales_returns", "customers", "customer_id", tenantID, filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var returns []model.SalesReturn
	err := base.Select("sales_returns.*").
		Preload("Customer").
		Preload("Branch").
		Preload("Items").
		Order(orderClause(returnSortColumns("sales_returns"), filter.SortBy, filter.SortOrder, "createdAt")).
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&returns).Error
	return returns, total, err
}

func (r *salesReturnRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.SalesReturn, error) {
	var ret model.SalesReturn
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Sale").
		Preload("Customer").
		Preload("Branch").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ret).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *salesReturnRepo) FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.SalesReturn, error) {
	var ret model.SalesReturn
	err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ret).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("sales_return_id = ?", ret.ID).Find(&ret.Items).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *salesReturnRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.SalesReturn{}).Where("id = ?", id).Updates(fields).Error
}

func (r *salesReturnRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("sales_return_id = ?", id).Delete(&model.SalesReturnItem{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&model.SalesReturn{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// numberExists checks a document number against every row, soft-deleted ones included,
// because the unique index covers them too.
func numberExists(ctx context.Context, db *gorm.DB, table interface{}, column string, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Unscoped().Model(table).
		Where("tenant_id = ? AND "+column+" = ?", tenantID, number).
		Count(&count).Error
	return count > 0, err
}
