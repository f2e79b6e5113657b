package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	TenantID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_tenant_sku" json:"tenantId"`
	SKU      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_sku" json:"sku"`
	Name     string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit     string          `gorm:"type:varchar(20)" json:"unit"`
	Price    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	Cost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	IsActive bool            `gorm:"not null" json:"isActive"`
}

// Supplier balance is what the tenant owes the supplier.
type Supplier struct {
	BaseModel
	TenantID uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenantId"`
	Name     string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone    string          `gorm:"type:varchar(30)" json:"phone"`
	Email    string          `gorm:"type:varchar(255)" json:"email"`
	Address  string          `gorm:"type:text" json:"address"`
	Balance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
}

// Customer balance is what the customer owes the tenant.
type Customer struct {
	BaseModel
	TenantID uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenantId"`
	Name     string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone    string          `gorm:"type:varchar(30)" json:"phone"`
	Email    string          `gorm:"type:varchar(255)" json:"email"`
	Address  string          `gorm:"type:text" json:"address"`
	Balance  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
}
