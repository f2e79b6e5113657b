package service

import (
	"context"
	"fmt"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseReturnService interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.PurchaseReturn, repository.Pagination, error)
	FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.PurchaseReturn, error)
	Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreatePurchaseReturnRequest) (*model.PurchaseReturn, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *UpdatePurchaseReturnRequest) (*model.PurchaseReturn, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, actor Actor) error
	Export(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.PurchaseReturn, error)
}

type purchaseReturnService struct {
	store *repository.Store
	deps  Deps
}

func NewPurchaseReturnService(store *repository.Store, deps Deps) PurchaseReturnService {
	return &purchaseReturnService{store: store, deps: deps}
}

func (s *purchaseReturnService) FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.PurchaseReturn, repository.Pagination, error) {
	listPage(&filter)
	returns, total, err := s.store.PurchaseReturns.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list purchase returns: %w", err)
	}
	return returns, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *purchaseReturnService) FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.PurchaseReturn, error) {
	ret, err := s.store.PurchaseReturns.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrReturnNotFound)
	}
	return ret, nil
}

func (s *purchaseReturnService) Export(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.PurchaseReturn, error) {
	exportPage(&filter)
	returns, _, err := s.store.PurchaseReturns.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("export purchase returns: %w", err)
	}
	return returns, nil
}

// Create records the return and, in the same transaction, takes the goods
// out of the purchase's branch and reduces what is owed to the supplier.
func (s *purchaseReturnService) Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreatePurchaseReturnRequest) (*model.PurchaseReturn, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	purchaseID, err := uuid.Parse(req.PurchaseID)
	if err != nil {
		return nil, apperror.ErrInvalidID
	}

	var ret *model.PurchaseReturn
	units := 0
	err = withNumberRetry(func() error {
		units = 0
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			purchase, err := tx.Purchases.FindForUpdate(ctx, tenantID, purchaseID)
			if err != nil {
				return notFound(err, apperror.ErrPurchaseNotFound)
			}

			supplierID := purchase.SupplierID
			if id := parseOptionalID(req.SupplierID); id != nil {
				supplierID = *id
			}
			if _, err := tx.Suppliers.FindByID(ctx, tenantID, supplierID); err != nil {
				return notFound(err, apperror.ErrSupplierNotFound)
			}

			lines, subtotal, err := buildReturnLines(ctx, tx, tenantID, req.Items)
			if err != nil {
				return err
			}

			number, err := nextDocumentNumber(ctx, tx, tenantID, model.PrefixPurchaseReturn, tx.PurchaseReturns.NumberExists)
			if err != nil {
				return err
			}

			ret = &model.PurchaseReturn{
				TenantID:     tenantID,
				ReturnNumber: number,
				PurchaseID:   purchase.ID,
				SupplierID:   supplierID,
				BranchID:     purchase.BranchID,
				ReturnDate:   dateOr(req.ReturnDate, time.Now()),
				Subtotal:     subtotal,
				TaxAmount:    decimal.Zero,
				Total:        subtotal,
				Status:       model.ReturnCompleted,
				Reason:       req.Reason,
				Note:         req.Note,
			}
			ret.CreatedBy = actor.Ref()
			ret.UpdatedBy = actor.Ref()
			for _, line := range lines {
				ret.Items = append(ret.Items, model.PurchaseReturnItem{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					Price:     line.Price,
					Total:     line.Total,
				})
			}
			if err := tx.PurchaseReturns.Create(ctx, ret); err != nil {
				return err
			}

			for _, line := range lines {
				_, err := tx.Stocks.Adjust(ctx, repository.StockAdjustment{
					TenantID:      tenantID,
					ProductID:     line.ProductID,
					BranchID:      ret.BranchID,
					Direction:     model.MovementOut,
					Quantity:      line.Quantity,
					ReferenceType: model.RefPurchaseReturn,
					ReferenceID:   ret.ID,
					Note:          "Purchase return " + ret.ReturnNumber,
					Actor:         actor.Ref(),
				})
				if err != nil {
					return fmt.Errorf("stock out for %s: %w", ret.ReturnNumber, err)
				}
				units += line.Quantity
			}

			if err := tx.Suppliers.AdjustBalance(ctx, tenantID, supplierID, ret.Total.Neg()); err != nil {
				return notFound(err, apperror.ErrSupplierNotFound)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("purchase_return", "created")
	s.deps.Metrics.StockMoved(string(model.MovementOut), units)

	created, err := s.FindOne(ctx, tenantID, ret.ID)
	if err != nil {
		return nil, err
	}
	s.deps.publish(tenantID, "purchase_return", "created", actor.Name,
		fmt.Sprintf("%s recorded purchase return %s", actor.Name, created.ReturnNumber), created)
	return created, nil
}

// Update changes only the reason and the supplier. Moving the return to
// another supplier moves its balance credit with it.
func (s *purchaseReturnService) Update(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *UpdatePurchaseReturnRequest) (*model.PurchaseReturn, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		ret, err := tx.PurchaseReturns.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			return notFound(err, apperror.ErrReturnNotFound)
		}

		fields := map[string]interface{}{"updated_by": actor.Ref()}
		if req.Reason != nil {
			fields["reason"] = *req.Reason
		}
		if req.SupplierID != nil {
			if supplierID := parseOptionalID(*req.SupplierID); supplierID != nil && *supplierID != ret.SupplierID {
				if _, err := tx.Suppliers.FindByID(ctx, tenantID, *supplierID); err != nil {
					return notFound(err, apperror.ErrSupplierNotFound)
				}
				if err := tx.Suppliers.AdjustBalance(ctx, tenantID, ret.SupplierID, ret.Total); err != nil {
					return notFound(err, apperror.ErrSupplierNotFound)
				}
				if err := tx.Suppliers.AdjustBalance(ctx, tenantID, *supplierID, ret.Total.Neg()); err != nil {
					return notFound(err, apperror.ErrSupplierNotFound)
				}
				fields["supplier_id"] = *supplierID
			}
		}
		return tx.PurchaseReturns.UpdateFields(ctx, ret.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("purchase_return", "updated")
	updated, err := s.FindOne(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	s.deps.publish(tenantID, "purchase_return", "updated", actor.Name,
		fmt.Sprintf("%s updated purchase return %s", actor.Name, updated.ReturnNumber), updated)
	return updated, nil
}

// Delete puts the goods back at the branch, restores the supplier balance
// and then removes the return with its items.
func (s *purchaseReturnService) Delete(ctx context.Context, tenantID, id uuid.UUID, actor Actor) error {
	var number string
	units := 0
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		ret, err := tx.PurchaseReturns.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			return notFound(err, apperror.ErrReturnNotFound)
		}
		number = ret.ReturnNumber

		// Only give back what the return really took; the OUT may have been floored.
		applied, err := tx.Stocks.AppliedQuantities(ctx, tenantID, model.RefPurchaseReturn, ret.ID)
		if err != nil {
			return fmt.Errorf("load movements of %s: %w", ret.ReturnNumber, err)
		}

		for _, item := range ret.Items {
			qty := item.Quantity
			if len(applied) > 0 {
				qty = min(qty, applied[item.ProductID])
				applied[item.ProductID] -= qty
			}
			if qty == 0 {
				continue
			}
			_, err := tx.Stocks.Adjust(ctx, repository.StockAdjustment{
				TenantID:      tenantID,
				ProductID:     item.ProductID,
				BranchID:      ret.BranchID,
				Direction:     model.MovementIn,
				Quantity:      qty,
				ReferenceType: model.RefPurchaseReturnReversal,
				ReferenceID:   ret.ID,
				Note:          "Reversal of purchase return " + ret.ReturnNumber,
				Actor:         actor.Ref(),
			})
			if err != nil {
				return fmt.Errorf("reverse stock for %s: %w", ret.ReturnNumber, err)
			}
			units += qty
		}

		if err := tx.Suppliers.AdjustBalance(ctx, tenantID, ret.SupplierID, ret.Total); err != nil {
			return notFound(err, apperror.ErrSupplierNotFound)
		}
		if err := tx.PurchaseReturns.Delete(ctx, ret.ID); err != nil {
			return notFound(err, apperror.ErrReturnNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Metrics.DocumentRecorded("purchase_return", "deleted")
	s.deps.Metrics.StockMoved(string(model.MovementIn), units)
	s.deps.publish(tenantID, "purchase_return", "deleted", actor.Name,
		fmt.Sprintf("%s deleted purchase return %s", actor.Name, number), map[string]interface{}{"id": id, "returnNumber": number})
	return nil
}
