package repository

import (
	"context"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PartnerFilter struct {
	Search string
	PageRequest
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	Update(ctx context.Context, supplier *model.Supplier) error
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PartnerFilter) ([]model.Supplier, int64, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error)
	// AdjustBalance adds delta (which may be negative) to the running balance.
	AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// Update never writes balance; only ledger operations move it.
func (r *supplierRepo) Update(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Omit("balance").Save(supplier).Error
}

func (r *supplierRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter PartnerFilter) ([]model.Supplier, int64, error) {
	var suppliers []model.Supplier
	total, err := findPartners(ctx, r.db, &model.Supplier{}, tenantID, filter, &suppliers)
	return suppliers, total, err
}

func (r *supplierRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	return adjustBalance(ctx, r.db, &model.Supplier{}, tenantID, id, delta)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PartnerFilter) ([]model.Customer, int64, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error)
	AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Omit("balance").Save(customer).Error
}

func (r *customerRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter PartnerFilter) ([]model.Customer, int64, error) {
	var customers []model.Customer
	total, err := findPartners(ctx, r.db, &model.Customer{}, tenantID, filter, &customers)
	return customers, total, err
}

func (r *customerRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	return adjustBalance(ctx, r.db, &model.Customer{}, tenantID, id, delta)
}

func findPartners(ctx context.Context, db *gorm.DB, table interface{}, tenantID uuid.UUID, filter PartnerFilter, dest interface{}) (int64, error) {
	q := db.WithContext(ctx).Model(table).Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern, pattern)
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, err
	}
	err := base.Order("name ASC").Offset(filter.Offset()).Limit(filter.Limit).Find(dest).Error
	return total, err
}

// adjustBalance is a single UPDATE ... SET balance = balance + delta, so
// concurrent adjustments never lose each other's writes.
func adjustBalance(ctx context.Context, db *gorm.DB, table interface{}, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	res := db.WithContext(ctx).Model(table).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
