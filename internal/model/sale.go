package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Sale struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_sale_tenant_invoice" json:"tenantId"`
	InvoiceNo     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_tenant_invoice" json:"invoiceNo"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customerId"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"branchId"`
	Branch        *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	SaleDate      time.Time       `gorm:"not null" json:"saleDate"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"taxAmount"`
	Discount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount"`
	Shipping      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"shipping"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"paidAmount"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"dueAmount"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(10);not null" json:"paymentStatus"`
	PaymentMethod string          `gorm:"type:varchar(30)" json:"paymentMethod"`
	Note          string          `gorm:"type:text" json:"note,omitempty"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

type SaleItem struct {
	BaseModel
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"saleId"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"qty"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Discount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount"`
	Tax       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax"`
	Total     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
}
