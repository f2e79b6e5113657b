package service

import (
	"context"
	"time"

	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExportLimit caps how many rows a spreadsheet export reads.
const ExportLimit = 10000

type ReturnItemRequest struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Quantity  int             `json:"qty" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

type CreatePurchaseReturnRequest struct {
	PurchaseID string              `json:"purchaseId" validate:"required,uuid"`
	SupplierID string              `json:"supplierId" validate:"omitempty,uuid"`
	ReturnDate *time.Time          `json:"returnDate"`
	Reason     string              `json:"reason" validate:"max=500"`
	Note       string              `json:"note"`
	Items      []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdatePurchaseReturnRequest carries the only mutable fields; anything
// else in the body is ignored by the JSON decoder.
type UpdatePurchaseReturnRequest struct {
	Reason     *string `json:"reason" validate:"omitempty,max=500"`
	SupplierID *string `json:"supplierId" validate:"omitempty,uuid"`
}

type CreateSalesReturnRequest struct {
	SaleID     string              `json:"saleId" validate:"required,uuid"`
	BranchID   string              `json:"branchId" validate:"omitempty,uuid"`
	CustomerID string              `json:"customerId" validate:"omitempty,uuid"`
	ReturnDate *time.Time          `json:"returnDate"`
	Reason     string              `json:"reason" validate:"max=500"`
	Note       string              `json:"note"`
	Items      []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateSalesReturnRequest struct {
	Reason     *string `json:"reason" validate:"omitempty,max=500"`
	CustomerID *string `json:"customerId" validate:"omitempty,uuid"`
}

type returnLine struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
	Total     decimal.Decimal
}

// buildReturnLines resolves every product inside the tenant and prices the
// lines. Returns carry no tax, so the subtotal is also the total.
func buildReturnLines(ctx context.Context, tx *repository.Store, tenantID uuid.UUID, items []ReturnItemRequest) ([]returnLine, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(items))
	lines := make([]returnLine, 0, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, decimal.Zero, apperror.ErrInvalidID
		}
		ids = append(ids, id)
		lines = append(lines, returnLine{
			ProductID: id,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Total:     item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}

	products, err := tx.Products.FindByIDs(ctx, tenantID, uniqueIDs(ids))
	if err != nil {
		return nil, decimal.Zero, err
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		if _, ok := products[line.ProductID]; !ok {
			return nil, decimal.Zero, apperror.ErrProductNotFound.WithDetails(line.ProductID.String())
		}
		subtotal = subtotal.Add(line.Total)
	}
	return lines, subtotal, nil
}

func listPage(filter *repository.ReturnFilter) {
	filter.PageRequest = filter.PageRequest.Normalize()
}

func exportPage(filter *repository.ReturnFilter) {
	filter.PageRequest = repository.PageRequest{Page: 1, Limit: ExportLimit}
}
