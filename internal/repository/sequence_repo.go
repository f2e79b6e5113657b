package repository

import (
	"context"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	// Next increments the (tenant, prefix) counter and returns the new value.
	// The upsert takes a row lock that is held until the surrounding
	// transaction ends, so concurrent callers get distinct values.
	Next(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
}

type sequenceRepo struct {
	db *gorm.DB
}

func NewSequenceRepo(db *gorm.DB) SequenceRepository {
	return &sequenceRepo{db}
}

func (r *sequenceRepo) Next(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	db := r.db.WithContext(ctx)

	seq := model.DocumentSequence{TenantID: tenantID, Prefix: prefix, LastValue: 1}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "prefix"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("document_sequences.last_value + 1"),
		}),
	}).Create(&seq).Error
	if err != nil {
		return 0, err
	}

	var current model.DocumentSequence
	if err := db.Where("tenant_id = ? AND prefix = ?", tenantID, prefix).First(&current).Error; err != nil {
		return 0, err
	}
	return current.LastValue, nil
}
