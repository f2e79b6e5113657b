package repository

import (
	"context"
	"errors"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned by Adjust when Strict is set and the
// on-hand quantity cannot cover an outbound movement.
var ErrInsufficientStock = errors.New("insufficient stock")

// StockAdjustment describes one inventory change and its cause.
type StockAdjustment struct {
	TenantID      uuid.UUID
	ProductID     uuid.UUID
	BranchID      uuid.UUID
	Direction     model.MovementDirection
	Quantity      int
	ReferenceType string
	ReferenceID   uuid.UUID
	Note          string
	Actor         string
	// Strict rejects an OUT larger than the on-hand quantity instead of flooring at zero.
	Strict bool
}

type StockFilter struct {
	BranchID  *uuid.UUID
	ProductID *uuid.UUID
	PageRequest
}

type MovementFilter struct {
	BranchID      *uuid.UUID
	ProductID     *uuid.UUID
	ReferenceType string
	ReferenceID   *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	PageRequest
}

type StockRepository interface {
	// Adjust applies the change to the (product, branch) counter and appends
	// the matching ledger row. Call it inside a transaction.
	Adjust(ctx context.Context, adj StockAdjustment) (*model.StockMovement, error)
	Quantity(ctx context.Context, tenantID, productID, branchID uuid.UUID) (int, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter StockFilter) ([]model.Stock, int64, error)
	FindMovements(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]model.StockMovement, int64, error)
	// AppliedQuantities sums, per product, how far the counters really moved
	// for one document. Floored decrements count only what was taken.
	AppliedQuantities(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) (map[uuid.UUID]int, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) Adjust(ctx context.Context, adj StockAdjustment) (*model.StockMovement, error) {
	db := r.db.WithContext(ctx)

	// Make sure the counter row exists, then lock it.
	seed := model.Stock{TenantID: adj.TenantID, ProductID: adj.ProductID, BranchID: adj.BranchID}
	seed.CreatedBy = adj.Actor
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var stock model.Stock
	err := forUpdate(db).
		Where("tenant_id = ? AND product_id = ? AND branch_id = ?", adj.TenantID, adj.ProductID, adj.BranchID).
		First(&stock).Error
	if err != nil {
		return nil, err
	}

	before := stock.Quantity
	after := before
	switch adj.Direction {
	case model.MovementIn:
		after = before + adj.Quantity
	case model.MovementOut:
		if adj.Strict && before < adj.Quantity {
			return nil, ErrInsufficientStock
		}
		after = before - adj.Quantity
		if after < 0 {
			after = 0
		}
	default:
		return nil, errors.New("unknown movement direction " + string(adj.Direction))
	}

	err = db.Model(&model.Stock{}).Where("id = ?", stock.ID).
		Updates(map[string]interface{}{"quantity": after, "updated_by": adj.Actor}).Error
	if err != nil {
		return nil, err
	}

	movement := &model.StockMovement{
		TenantID:       adj.TenantID,
		ProductID:      adj.ProductID,
		BranchID:       adj.BranchID,
		Direction:      adj.Direction,
		Quantity:       adj.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		ReferenceType:  adj.ReferenceType,
		ReferenceID:    adj.ReferenceID,
		Note:           adj.Note,
	}
	movement.CreatedBy = adj.Actor
	if err := db.Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *stockRepo) Quantity(ctx context.Context, tenantID, productID, branchID uuid.UUID) (int, error) {
	var stock model.Stock
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND branch_id = ?", tenantID, productID, branchID).
		First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stock.Quantity, nil
}

func (r *stockRepo) FindAll(ctx context.Context, tenantID uuid.UUID, filter StockFilter) ([]model.Stock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Stock{}).Where("tenant_id = ?", tenantID)
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stocks []model.Stock
	err := base.Preload("Product").Preload("Branch").
		Order("updated_at DESC").Offset(filter.Offset()).Limit(filter.Limit).
		Find(&stocks).Error
	return stocks, total, err
}

func (r *stockRepo) FindMovements(ctx context.Context, tenantID uuid.UUID, filter MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("tenant_id = ?", tenantID)
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ReferenceType != "" {
		q = q.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		q = q.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []model.StockMovement
	err := base.Preload("Product").
		Order("created_at DESC").Offset(filter.Offset()).Limit(filter.Limit).
		Find(&movements).Error
	return movements, total, err
}

func (r *stockRepo) AppliedQuantities(ctx context.Context, tenantID uuid.UUID, referenceType string, referenceID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		ProductID uuid.UUID
		Applied   int
	}
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select("product_id, COALESCE(SUM(ABS(quantity_after - quantity_before)), 0) AS applied").
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, referenceType, referenceID).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	applied := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		applied[row.ProductID] = row.Applied
	}
	return applied, nil
}
