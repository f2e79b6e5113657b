package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

const (
	PurchasePending  = "pending"
	PurchaseOrdered  = "ordered"
	PurchaseReceived = "received"
)

// Document number prefixes, one sequence per tenant and prefix.
const (
	PrefixPurchase       = "PO"
	PrefixInvoice        = "INV"
	PrefixPurchaseReturn = "PR"
	PrefixSalesReturn    = "SR"
)

type Purchase struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_purchase_tenant_ref" json:"tenantId"`
	ReferenceNo   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_tenant_ref" json:"referenceNo"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplierId"`
	Supplier      *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"branchId"`
	Branch        *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Status        string          `gorm:"type:varchar(20);not null;default:'received'" json:"status"`
	PurchaseDate  time.Time       `gorm:"not null" json:"purchaseDate"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"taxAmount"`
	Discount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount"`
	Shipping      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"shipping"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"paidAmount"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"dueAmount"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(10);not null" json:"paymentStatus"`
	Note          string          `gorm:"type:text" json:"note,omitempty"`

	Items    []PurchaseItem    `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
	Payments []PurchasePayment `gorm:"foreignKey:PurchaseID" json:"payments,omitempty"`
}

type PurchaseItem struct {
	BaseModel
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchaseId"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"qty"`
	Price      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Discount   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount"`
	Tax        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"tax"`
	Total      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
}

type PurchasePayment struct {
	BaseModel
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenantId"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchaseId"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Method     string          `gorm:"type:varchar(30)" json:"method"`
	PaidAt     time.Time       `gorm:"not null" json:"paidAt"`
	Note       string          `gorm:"type:text" json:"note,omitempty"`
}

// DueAmount is total minus paid, floored at zero.
func DueAmount(total, paid decimal.Decimal) decimal.Decimal {
	due := total.Sub(paid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// PaymentStatusFor derives UNPAID/PARTIAL/PAID from what has been paid and what is still due.
func PaymentStatusFor(paid, due decimal.Decimal) PaymentStatus {
	switch {
	case !paid.IsPositive():
		return PaymentUnpaid
	case !due.IsPositive():
		return PaymentPaid
	default:
		return PaymentPartial
	}
}
