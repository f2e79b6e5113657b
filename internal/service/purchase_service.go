package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one priced line of a purchase or a sale.
type LineItemRequest struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Quantity  int             `json:"qty" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Discount  decimal.Decimal `json:"discount" validate:"gte=0"`
	Tax       decimal.Decimal `json:"tax" validate:"gte=0"`
}

type CreatePurchaseRequest struct {
	ReferenceNo  string            `json:"referenceNo" validate:"max=50"`
	SupplierID   string            `json:"supplierId" validate:"required,uuid"`
	BranchID     string            `json:"branchId" validate:"required,uuid"`
	Status       string            `json:"status" validate:"omitempty,oneof=pending ordered received"`
	PurchaseDate *time.Time        `json:"purchaseDate"`
	Discount     decimal.Decimal   `json:"discount" validate:"gte=0"`
	Shipping     decimal.Decimal   `json:"shipping" validate:"gte=0"`
	Note         string            `json:"note"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type AddPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Method string          `json:"method" validate:"max=30"`
	PaidAt *time.Time      `json:"paidAt"`
	Note   string          `json:"note"`
}

// DocumentTotals is the priced result of a set of lines.
type DocumentTotals struct {
	LineTotals []decimal.Decimal
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
}

// ComputeTotals prices each line as qty*price - discount + tax, sums the
// lines into the subtotal and the line taxes into the tax amount, and
// derives total = subtotal - header discount + shipping.
func ComputeTotals(items []LineItemRequest, discount, shipping decimal.Decimal) DocumentTotals {
	totals := DocumentTotals{
		LineTotals: make([]decimal.Decimal, len(items)),
		Subtotal:   decimal.Zero,
		TaxAmount:  decimal.Zero,
	}
	for i, item := range items {
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Sub(item.Discount).Add(item.Tax)
		totals.LineTotals[i] = line
		totals.Subtotal = totals.Subtotal.Add(line)
		totals.TaxAmount = totals.TaxAmount.Add(item.Tax)
	}
	totals.Total = totals.Subtotal.Sub(discount).Add(shipping)
	return totals
}

// Validate rejects discounts that would price a line or the whole document
// below zero; a negative total would otherwise lower the partner balance.
func (t DocumentTotals) Validate() error {
	var failed []*validator.ErrorResponse
	for i, line := range t.LineTotals {
		if line.IsNegative() {
			failed = append(failed, &validator.ErrorResponse{FailedField: fmt.Sprintf("items[%d].discount", i), Tag: "lte"})
		}
	}
	if t.Total.IsNegative() {
		failed = append(failed, &validator.ErrorResponse{FailedField: "discount", Tag: "lte"})
	}
	if len(failed) > 0 {
		return apperror.Validation(failed)
	}
	return nil
}

// resolveLineProducts parses the product IDs and checks that all of them
// belong to the tenant.
func resolveLineProducts(ctx context.Context, tx *repository.Store, tenantID uuid.UUID, items []LineItemRequest) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.ErrInvalidID
		}
		ids[i] = id
	}
	products, err := tx.Products.FindByIDs(ctx, tenantID, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, apperror.ErrProductNotFound.WithDetails(id.String())
		}
	}
	return ids, nil
}

type PurchaseService interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.PurchaseFilter) ([]model.Purchase, repository.Pagination, error)
	FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error)
	Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreatePurchaseRequest) (*model.Purchase, error)
	AddPayment(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *AddPaymentRequest) (*model.Purchase, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, actor Actor) error
}

type purchaseService struct {
	store *repository.Store
	deps  Deps
}

func NewPurchaseService(store *repository.Store, deps Deps) PurchaseService {
	return &purchaseService{store: store, deps: deps}
}

func (s *purchaseService) FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.PurchaseFilter) ([]model.Purchase, repository.Pagination, error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	purchases, total, err := s.store.Purchases.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *purchaseService) FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.Purchase, error) {
	purchase, err := s.store.Purchases.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrPurchaseNotFound)
	}
	return purchase, nil
}

// Create persists the purchase, books every line into the branch stock with
// an IN movement and adds the total to the supplier balance, all or nothing.
func (s *purchaseService) Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreatePurchaseRequest) (*model.Purchase, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apperror.ErrInvalidID
	}
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperror.ErrInvalidID
	}
	status := req.Status
	if status == "" {
		status = model.PurchaseReceived
	}
	totals := ComputeTotals(req.Items, req.Discount, req.Shipping)
	if err := totals.Validate(); err != nil {
		return nil, err
	}

	var purchase *model.Purchase
	units := 0
	err = withNumberRetry(func() error {
		units = 0
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			if _, err := tx.Suppliers.FindByID(ctx, tenantID, supplierID); err != nil {
				return notFound(err, apperror.ErrSupplierNotFound)
			}
			if _, err := tx.Branches.FindByID(ctx, tenantID, branchID); err != nil {
				return notFound(err, apperror.ErrBranchNotFound)
			}
			productIDs, err := resolveLineProducts(ctx, tx, tenantID, req.Items)
			if err != nil {
				return err
			}

			referenceNo := strings.TrimSpace(req.ReferenceNo)
			if referenceNo == "" {
				referenceNo, err = nextDocumentNumber(ctx, tx, tenantID, model.PrefixPurchase, tx.Purchases.NumberExists)
				if err != nil {
					return err
				}
			} else {
				taken, err := tx.Purchases.NumberExists(ctx, tenantID, referenceNo)
				if err != nil {
					return err
				}
				if taken {
					return apperror.ErrDuplicate.WithMessage("reference number " + referenceNo + " already exists")
				}
			}

			purchase = &model.Purchase{
				TenantID:      tenantID,
				ReferenceNo:   referenceNo,
				SupplierID:    supplierID,
				BranchID:      branchID,
				Status:        status,
				PurchaseDate:  dateOr(req.PurchaseDate, time.Now()),
				Subtotal:      totals.Subtotal,
				TaxAmount:     totals.TaxAmount,
				Discount:      req.Discount,
				Shipping:      req.Shipping,
				Total:         totals.Total,
				PaidAmount:    decimal.Zero,
				DueAmount:     model.DueAmount(totals.Total, decimal.Zero),
				PaymentStatus: model.PaymentUnpaid,
				Note:          req.Note,
			}
			purchase.CreatedBy = actor.Ref()
			purchase.UpdatedBy = actor.Ref()
			for i, item := range req.Items {
				purchase.Items = append(purchase.Items, model.PurchaseItem{
					ProductID: productIDs[i],
					Quantity:  item.Quantity,
					Price:     item.Price,
					Discount:  item.Discount,
					Tax:       item.Tax,
					Total:     totals.LineTotals[i],
				})
			}
			if err := tx.Purchases.Create(ctx, purchase); err != nil {
				return err
			}

			for _, item := range purchase.Items {
				_, err := tx.Stocks.Adjust(ctx, repository.StockAdjustment{
					TenantID:      tenantID,
					ProductID:     item.ProductID,
					BranchID:      branchID,
					Direction:     model.MovementIn,
					Quantity:      item.Quantity,
					ReferenceType: model.RefPurchase,
					ReferenceID:   purchase.ID,
					Note:          "Purchase " + purchase.ReferenceNo,
					Actor:         actor.Ref(),
				})
				if err != nil {
					return fmt.Errorf("stock in for %s: %w", purchase.ReferenceNo, err)
				}
				units += item.Quantity
			}

			if err := tx.Suppliers.AdjustBalance(ctx, tenantID, supplierID, purchase.Total); err != nil {
				return notFound(err, apperror.ErrSupplierNotFound)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("purchase", "created")
	s.deps.Metrics.StockMoved(string(model.MovementIn), units)

	created, err := s.FindOne(ctx, tenantID, purchase.ID)
	if err != nil {
		return nil, err
	}
	s.deps.publish(tenantID, "purchase", "created", actor.Name,
		fmt.Sprintf("%s recorded purchase %s", actor.Name, created.ReferenceNo), created)
	return created, nil
}

// AddPayment locks the purchase row so concurrent payments apply one after
// the other and the due amount never drops below zero.
func (s *purchaseService) AddPayment(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *AddPaymentRequest) (*model.Purchase, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		purchase, err := tx.Purchases.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			return notFound(err, apperror.ErrPurchaseNotFound)
		}

		payment := &model.PurchasePayment{
			TenantID:   tenantID,
			PurchaseID: purchase.ID,
			Amount:     req.Amount,
			Method:     req.Method,
			PaidAt:     dateOr(req.PaidAt, time.Now()),
			Note:       req.Note,
		}
		payment.CreatedBy = actor.Ref()
		if err := tx.Purchases.AddPayment(ctx, payment); err != nil {
			return err
		}

		purchase.PaidAmount = purchase.PaidAmount.Add(req.Amount)
		purchase.DueAmount = model.DueAmount(purchase.Total, purchase.PaidAmount)
		purchase.PaymentStatus = model.PaymentStatusFor(purchase.PaidAmount, purchase.DueAmount)
		purchase.UpdatedBy = actor.Ref()
		if err := tx.Purchases.UpdatePaymentState(ctx, purchase); err != nil {
			return err
		}

		if err := tx.Suppliers.AdjustBalance(ctx, tenantID, purchase.SupplierID, req.Amount.Neg()); err != nil {
			return notFound(err, apperror.ErrSupplierNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("purchase_payment", "created")
	updated, err := s.FindOne(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	s.deps.publish(tenantID, "purchase", "payment_added", actor.Name,
		fmt.Sprintf("%s paid %s on purchase %s", actor.Name, req.Amount.StringFixed(2), updated.ReferenceNo), updated)
	return updated, nil
}

// Delete refuses received or paid purchases. Anything else has its stock
// and supplier balance effects reversed before it is soft-deleted.
func (s *purchaseService) Delete(ctx context.Context, tenantID, id uuid.UUID, actor Actor) error {
	var referenceNo string
	units := 0
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		purchase, err := tx.Purchases.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			return notFound(err, apperror.ErrPurchaseNotFound)
		}
		if purchase.Status == model.PurchaseReceived {
			return apperror.ErrPurchaseReceived
		}
		payments, err := tx.Purchases.CountPayments(ctx, purchase.ID)
		if err != nil {
			return err
		}
		if payments > 0 {
			return apperror.ErrPurchaseHasPayments
		}
		referenceNo = purchase.ReferenceNo

		full, err := tx.Purchases.FindByID(ctx, tenantID, purchase.ID)
		if err != nil {
			return err
		}
		for _, item := range full.Items {
			_, err := tx.Stocks.Adjust(ctx, repository.StockAdjustment{
				TenantID:      tenantID,
				ProductID:     item.ProductID,
				BranchID:      purchase.BranchID,
				Direction:     model.MovementOut,
				Quantity:      item.Quantity,
				ReferenceType: model.RefPurchaseReversal,
				ReferenceID:   purchase.ID,
				Note:          "Reversal of purchase " + purchase.ReferenceNo,
				Actor:         actor.Ref(),
			})
			if err != nil {
				return fmt.Errorf("reverse stock for %s: %w", purchase.ReferenceNo, err)
			}
			units += item.Quantity
		}

		if err := tx.Suppliers.AdjustBalance(ctx, tenantID, purchase.SupplierID, purchase.Total.Neg()); err != nil {
			return notFound(err, apperror.ErrSupplierNotFound)
		}
		return tx.Purchases.Delete(ctx, purchase, actor.Ref())
	})
	if err != nil {
		return err
	}

	s.deps.Metrics.DocumentRecorded("purchase", "deleted")
	s.deps.Metrics.StockMoved(string(model.MovementOut), units)
	s.deps.publish(tenantID, "purchase", "deleted", actor.Name,
		fmt.Sprintf("%s deleted purchase %s", actor.Name, referenceNo), map[string]interface{}{"id": id, "referenceNo": referenceNo})
	return nil
}
