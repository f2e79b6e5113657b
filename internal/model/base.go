package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard Audit Trails
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `gorm:"type:varchar(64)" json:"createdBy,omitempty"`
	UpdatedBy string `gorm:"type:varchar(64)" json:"updatedBy,omitempty"`
	DeletedBy string `gorm:"type:varchar(64)" json:"-"`
}

// BeforeCreate assigns an ID unless the caller already chose one.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// All lists every table, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Privilege{},
		&Role{},
		&Tenant{},
		&Branch{},
		&User{},
		&Product{},
		&Supplier{},
		&Customer{},
		&Stock{},
		&StockMovement{},
		&DocumentSequence{},
		&Purchase{},
		&PurchaseItem{},
		&PurchasePayment{},
		&Sale{},
		&SaleItem{},
		&PurchaseReturn{},
		&PurchaseReturnItem{},
		&SalesReturn{},
		&SalesReturnItem{},
	}
}
