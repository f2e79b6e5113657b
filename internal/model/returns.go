package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReturnCompleted = "COMPLETED"
	ReturnPending   = "PENDING"
)

// PurchaseReturn sends goods from a purchase back to the supplier.
type PurchaseReturn struct {
	BaseModel
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_purchase_return_number" json:"tenantId"`
	ReturnNumber string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_purchase_return_number" json:"returnNumber"`
	PurchaseID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchaseId"`
	Purchase     *Purchase       `gorm:"foreignKey:PurchaseID" json:"purchase,omitempty"`
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplierId"`
	Supplier     *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"branchId"`
	ReturnDate   time.Time       `gorm:"not null;index" json:"returnDate"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"taxAmount"`
	Total        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	Status       string          `gorm:"type:varchar(20);not null;index" json:"status"`
	Reason       string          `gorm:"type:text" json:"reason"`
	Note         string          `gorm:"type:text" json:"note,omitempty"`

	Items []PurchaseReturnItem `gorm:"foreignKey:PurchaseReturnID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type PurchaseReturnItem struct {
	BaseModel
	PurchaseReturnID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchaseReturnId"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product          *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity         int             `gorm:"not null" json:"qty"`
	Price            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Total            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
}

// SalesReturn takes goods from a sale back into inventory.
type SalesReturn struct {
	BaseModel
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_sales_return_number" json:"tenantId"`
	ReturnNumber string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_sales_return_number" json:"returnNumber"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"saleId"`
	Sale         *Sale           `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	CustomerID   *uuid.UUID      `gorm:"type:uuid;index" json:"customerId"`
	Customer     *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"branchId"`
	Branch       *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	ReturnDate   time.Time       `gorm:"not null;index" json:"returnDate"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"taxAmount"`
	Total        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	Status       string          `gorm:"type:varchar(20);not null;index" json:"status"`
	Reason       string          `gorm:"type:text" json:"reason"`
	Note         string          `gorm:"type:text" json:"note,omitempty"`

	Items []SalesReturnItem `gorm:"foreignKey:SalesReturnID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type SalesReturnItem struct {
	BaseModel
	SalesReturnID uuid.UUID       `gorm:"type:uuid;not null;index" json:"salesReturnId"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"qty"`
	Price         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
}
