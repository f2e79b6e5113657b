package model

import "github.com/google/uuid"

type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// Reference types recorded on stock movements.
const (
	RefPurchase               = "purchase"
	RefPurchaseReversal       = "purchase_reversal"
	RefSale                   = "sale"
	RefPurchaseReturn         = "purchase_return"
	RefPurchaseReturnReversal = "purchase_return_reversal"
	RefSalesReturn            = "sales_return"
	RefSalesReturnReversal    = "sales_return_reversal"
)

// Stock is the on-hand quantity of one product at one branch.
type Stock struct {
	BaseModel
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_scope" json:"tenantId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_scope" json:"productId"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_scope" json:"branchId"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Branch  *Branch  `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

// StockMovement is an append-only ledger row; rows are never updated or deleted.
type StockMovement struct {
	BaseModel
	TenantID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenantId"`
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"productId"`
	BranchID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"branchId"`
	Direction      MovementDirection `gorm:"type:varchar(10);not null" json:"direction"`
	Quantity       int               `gorm:"not null" json:"quantity"`
	QuantityBefore int               `gorm:"not null" json:"quantityBefore"`
	QuantityAfter  int               `gorm:"not null" json:"quantityAfter"`
	ReferenceType  string            `gorm:"type:varchar(40);not null;index:idx_movement_reference" json:"referenceType"`
	ReferenceID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_movement_reference" json:"referenceId"`
	Note           string            `gorm:"type:text" json:"note,omitempty"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// DocumentSequence is the per-tenant counter behind human-readable document numbers.
type DocumentSequence struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequence_scope" json:"tenantId"`
	Prefix    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_sequence_scope" json:"prefix"`
	LastValue int64     `gorm:"not null;default:0" json:"lastValue"`
}
