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

type SalesReturnService interface {
	FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.SalesReturn, repository.Pagination, error)
	FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.SalesReturn, error)
	Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreateSalesReturnRequest) (*model.SalesReturn, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *UpdateSalesReturnRequest) (*model.SalesReturn, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, actor Actor) error
	Export(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.SalesReturn, error)
}

type salesReturnService struct {
	store *repository.Store
	deps  Deps
}

func NewSalesReturnService(store *repository.Store, deps Deps) SalesReturnService {
	return &salesReturnService{store: store, deps: deps}
}

func (s *salesReturnService) FindAll(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.SalesReturn, repository.Pagination, error) {
	listPage(&filter)
	returns, total, err := s.store.SalesReturns.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list sales returns: %w", err)
	}
	return returns, repository.NewPagination(filter.PageRequest, total), nil
}

func (s *salesReturnService) FindOne(ctx context.Context, tenantID, id uuid.UUID) (*model.SalesReturn, error) {
	ret, err := s.store.SalesReturns.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrReturnNotFound)
	}
	return ret, nil
}

func (s *salesReturnService) Export(ctx context.Context, tenantID uuid.UUID, filter repository.ReturnFilter) ([]model.SalesReturn, error) {
	exportPage(&filter)
	returns, _, err := s.store.SalesReturns.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("export sales returns: %w", err)
	}
	return returns, nil
}

// Create records the return and puts the goods back into stock at the
// chosen branch. The customer balance is left as it is.
func (s *salesReturnService) Create(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreateSalesReturnRequest) (*model.SalesReturn, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, apperror.ErrInvalidID
	}

	var ret *model.SalesReturn
	units := 0
	err = withNumberRetry(func() error {
		units = 0
		return s.store.Transaction(ctx, func(tx *repository.Store) error {
			sale, err := tx.Sales.FindByID(ctx, tenantID, saleID)
			if err != nil {
				return notFound(err, apperror.ErrSaleNotFound)
			}

			branchID := sale.BranchID
			if id := parseOptionalID(req.BranchID); id != nil {
				if _, err := tx.Branches.FindByID(ctx, tenantID, *id); err != nil {
					return notFound(err, apperror.ErrBranchNotFound)
				}
				branchID = *id
			}

			customerID := sale.CustomerID
			if id := parseOptionalID(req.CustomerID); id != nil {
				customerID = id
			}
			if customerID != nil {
				if _, err := tx.Customers.FindByID(ctx, tenantID, *customerID); err != nil {
					return notFound(err, apperror.ErrCustomerNotFound)
				}
			}

			lines, subtotal, err := buildReturnLines(ctx, tx, tenantID, req.Items)
			if err != nil {
				return err
			}

			number, err := nextDocumentNumber(ctx, tx, tenantID, model.PrefixSalesReturn, tx.SalesReturns.NumberExists)
			if err != nil {
				return err
			}

			ret = &model.SalesReturn{
				TenantID:     tenantID,
				ReturnNumber: number,
				SaleID:       sale.ID,
				CustomerID:   customerID,
				BranchID:     branchID,
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
				ret.Items = append(ret.Items, model.SalesReturnItem{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					Price:     line.Price,
					Total:     line.Total,
				})
			}
			if err := tx.SalesReturns.Create(ctx, ret); err != nil {
				return err
			}

			for _, line := range lines {
				_, err := tx.Stocks.Adjust(ctx, repository.StockAdjustment{
					TenantID:      tenantID,
					ProductID:     line.ProductID,
					BranchID:      branchID,
					Direction:     model.MovementIn,
					Quantity:      line.Quantity,
					ReferenceType: model.RefSalesReturn,
					ReferenceID:   ret.ID,
					Note:          "Sales return " + ret.ReturnNumber,
					Actor:         actor.Ref(),
				})
				if err != nil {
					return fmt.Errorf("stock in for %s: %w", ret.ReturnNumber, err)
				}
				units += line.Quantity
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("sales_return", "created")
	s.deps.Metrics.StockMoved(string(model.MovementIn), units)

	created, err := s.FindOne(ctx, tenantID, ret.ID)
	if err != nil {
		return nil, err
	}
	s.deps.publish(tenantID, "sales_return", "created", actor.Name,
		fmt.Sprintf("%s recorded sales return %s", actor.Name, created.ReturnNumber), created)
	return created, nil
}

func (s *salesReturnService) Update(ctx context.Context, tenantID, id uuid.UUID, actor Actor, req *UpdateSalesReturnRequest) (*model.SalesReturn, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		ret, err := tx.SalesReturns.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			return notFound(err, apperror.ErrReturnNotFound)
		}

		fields := map[string]interface{}{"updated_by": actor.Ref()}
		if req.Reason != nil {
			fields["reason"] = *req.Reason
		}
		if req.CustomerID != nil {
			if customerID := parseOptionalID(*req.CustomerID); customerID != nil {
				if _, err := tx.Customers.FindByID(ctx, tenantID, *customerID); err != nil {
					return notFound(err, apperror.ErrCustomerNotFound)
				}
				fields["customer_id"] = *customerID
			}
		}
		return tx.SalesReturns.UpdateFields(ctx, ret.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("sales_return", "updated")
	updated, err := s.FindOne(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	s.deps.publish(tenantID, "sales_return", "updated", actor.Name,
		fmt.Sprintf("%s updated sales return %s", actor.Name, updated.ReturnNumber), updated)
	return updated, nil
}

// Delete takes the returned goods back out of stock (floored at zero)
// before removing the return with its items.
func (s *salesReturnService) Delete(ctx context.Context, tenantID, id uuid.UUID, actor Actor) error {
	var number string
	units := 0
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		ret, err := tx.SalesReturns.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			return notFound(err, apperror.ErrReturnNotFound)
		}
		number = ret.ReturnNumber

		for _, item := range ret.Items {
			_, err := tx.Stocks.Adjust(ctx, repository.StockAdjustment{
				TenantID:      tenantID,
				ProductID:     item.ProductID,
				BranchID:      ret.BranchID,
				Direction:     model.MovementOut,
				Quantity:      item.Quantity,
				ReferenceType: model.RefSalesReturnReversal,
				ReferenceID:   ret.ID,
				Note:          "Reversal of sales return " + ret.ReturnNumber,
				Actor:         actor.Ref(),
			})
			if err != nil {
				return fmt.Errorf("reverse stock for %s: %w", ret.ReturnNumber, err)
			}
			units += item.Quantity
		}
		if err := tx.SalesReturns.Delete(ctx, ret.ID); err != nil {
			return notFound(err, apperror.ErrReturnNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Metrics.DocumentRecorded("sales_return", "deleted")
	s.deps.Metrics.StockMoved(string(model.MovementOut), units)
	s.deps.publish(tenantID, "sales_return", "deleted", actor.Name,
		fmt.Sprintf("%s deleted sales return %s", actor.Name, number), map[string]interface{}{"id": id, "returnNumber": number})
	return nil
}
