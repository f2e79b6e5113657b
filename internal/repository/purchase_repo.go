package repository

import (
	"context"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseFilter struct {
	SupplierID    *uuid.UUID
	BranchID      *uuid.UUID
	Status        string
	PaymentStatus string
	Search        string
	SortBy        string
	SortOrder     string
	PageRequest
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	NumberExists(ctx context.Context, tenantID uuid.UUID, referenceNo string) (bool, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PurchaseFilter) ([]model.Purchase, int64, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error)
	// FindForUpdate loads the header and locks its row for the rest of the transaction.
	FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error)
	AddPayment(ctx context.Context, payment *model.PurchasePayment) error
	UpdatePaymentState(ctx context.Context, purchase *model.Purchase) error
	CountPayments(ctx context.Context, purchaseID uuid.UUID) (int64, error)
	Delete(ctx context.Context, purchase *model.Purchase, deletedBy string) error
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepo) NumberExists(ctx context.Context, tenantID uuid.UUID, referenceNo string) (bool, error) {
	return numberExists(ctx, r.db, &model.Purchase{}, "reference_no", tenantID, referenceNo)
}

var purchaseSortColumns = map[string]string{
	"createdAt":    "created_at",
	"purchaseDate": "purchase_date",
	"referenceNo":  "reference_no",
	"total":        "total",
}

func (r *purchaseRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter PurchaseFilter) ([]model.Purchase, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Purchase{}).Where("tenant_id = ?", tenantID)
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(reference_no) LIKE ?", likePattern(filter.Search))
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []model.Purchase
	err := base.Preload("Supplier").
		Order(orderClause(purchaseSortColumns, filter.SortBy, filter.SortOrder, "createdAt")).
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&purchases).Error
	return purchases, total, err
}

func (r *purchaseRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Branch").
		Preload("Items.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := forUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepo) AddPayment(ctx context.Context, payment *model.PurchasePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *purchaseRepo) UpdatePaymentState(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Model(&model.Purchase{}).Where("id = ?", purchase.ID).
		Updates(map[string]interface{}{
			"paid_amount":    purchase.PaidAmount,
			"due_amount":     purchase.DueAmount,
			"payment_status": purchase.PaymentStatus,
			"updated_by":     purchase.UpdatedBy,
		}).Error
}

func (r *purchaseRepo) CountPayments(ctx context.Context, purchaseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PurchasePayment{}).Where("purchase_id = ?", purchaseID).Count(&count).Error
	return count, err
}

// Delete soft-deletes the header and its items.
func (r *purchaseRepo) Delete(ctx context.Context, purchase *model.Purchase, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("purchase_id = ?", purchase.ID).Delete(&model.PurchaseItem{}).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Purchase{}).Where("id = ?", purchase.ID).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return db.Delete(&model.Purchase{}, "id = ?", purchase.ID).Error
}
