package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateSaleRequest struct {
	CustomerID    string            `json:"customerId" validate:"omitempty,uuid"`
	BranchID      string            `json:"branchId" validate:"required,uuid"`
	SaleDate      *time.Time        `json:"saleDate"`
	Discount      decimal.Decimal   `json:"discount" validate:"gte=0"`
	Shipping      decimal.Decimal   `json:"shipping" validate:"gte=0"`
	PaidAmount    decimal.Decimal   `json:"paidAmount" validate:"gte=0"`
	PaymentMethod string            `json:"paymentMethod" validate:"max=30"`
	Note          string            `json:"note"`
	Items         []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SaleService interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.SaleFilter) ([]model.Sale, repository.Pagination, error)
	FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
	Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreateSaleRequest) (*model.Sale, error)
}

type saleService struct {
	store *repository.Store
	deps  Deps
}

func NewSaleService(store *repository.Store, deps Deps) SaleService {
	return &saleService{store: store, deps: deps}
}

func (s *saleService) FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.SaleFilter) ([]model.Sale, repository.Pagination, error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	sales, total, err := s.store.Sales.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list sales: %w", err)
	}
	return sales, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *saleService) FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.store.Sales.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrSaleNotFound)
	}
	return sale, nil
}

// Create checks out a sale: stock is taken strictly (no overselling), one
// OUT movement is written per line and any unpaid part is charged to the
// customer's balance.
func (s *saleService) Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreateSaleRequest) (*model.Sale, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperror.ErrInvalidID
	}
	customerID := parseOptionalID(req.CustomerID)
	totals := ComputeTotals(req.Items, req.Discount, req.Shipping)
	if err := totals.Validate(); err != nil {
		return nil, err
	}

	var sale *model.Sale
	units := 0
	err = withNumberRetry(func() error {
		units = 0
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			if _, err := tx.Branches.FindByID(ctx, tenantID, branchID); err != nil {
				return notFound(err, apperror.ErrBranchNotFound)
			}
			if customerID != nil {
				if _, err := tx.Customers.FindByID(ctx, tenantID, *customerID); err != nil {
					return notFound(err, apperror.ErrCustomerNotFound)
				}
			}
			productIDs, err := resolveLineProducts(ctx, tx, tenantID, req.Items)
			if err != nil {
				return err
			}

			invoiceNo, err := nextDocumentNumber(ctx, tx, tenantID, model.PrefixInvoice, tx.Sales.NumberExists)
			if err != nil {
				return err
			}

			due := model.DueAmount(totals.Total, req.PaidAmount)
			sale = &model.Sale{
				TenantID:      tenantID,
				InvoiceNo:     invoiceNo,
				CustomerID:    customerID,
				BranchID:      branchID,
				SaleDate:      dateOr(req.SaleDate, time.Now()),
				Subtotal:      totals.Subtotal,
				TaxAmount:     totals.TaxAmount,
				Discount:      req.Discount,
				Shipping:      req.Shipping,
				Total:         totals.Total,
				PaidAmount:    req.PaidAmount,
				DueAmount:     due,
				PaymentStatus: model.PaymentStatusFor(req.PaidAmount, due),
				PaymentMethod: req.PaymentMethod,
				Note:          req.Note,
			}
			sale.CreatedBy = actor.Ref()
			sale.UpdatedBy = actor.Ref()
			for i, item := range req.Items {
				sale.Items = append(sale.Items, model.SaleItem{
					ProductID: productIDs[i],
					Quantity:  item.Quantity,
					Price:     item.Price,
					Discount:  item.Discount,
					Tax:       item.Tax,
					Total:     totals.LineTotals[i],
				})
			}
			if err := tx.Sales.Create(ctx, sale); err != nil {
				return err
			}

			for _, item := range sale.Items {
				_, err := tx.Stocks.Adjust(ctx, repository.StockAdjustment{
					TenantID:      tenantID,
					ProductID:     item.ProductID,
					BranchID:      branchID,
					Direction:     model.MovementOut,
					Quantity:      item.Quantity,
					ReferenceType: model.RefSale,
					ReferenceID:   sale.ID,
					Note:          "Sale " + sale.InvoiceNo,
					Actor:         actor.Ref(),
					Strict:        true,
				})
				if errors.Is(err, repository.ErrInsufficientStock) {
					return apperror.ErrInsufficientStock.WithDetails(item.ProductID.String())
				}
				if err != nil {
					return fmt.Errorf("stock out for %s: %w", sale.InvoiceNo, err)
				}
				units += item.Quantity
			}

			if customerID != nil && due.IsPositive() {
				if err := tx.Customers.AdjustBalance(ctx, tenantID, *customerID, due); err != nil {
					return notFound(err, apperror.ErrCustomerNotFound)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("sale", "created")
	s.deps.Metrics.StockMoved(string(model.MovementOut), units)

	created, err := s.FindOne(ctx, tenantID, sale.ID)
	if err != nil {
		return nil, err
	}
	s.deps.publish(tenantID, "sale", "created", actor.Name,
		fmt.Sprintf("%s recorded sale %s", actor.Name, created.InvoiceNo), created)
	return created, nil
}
