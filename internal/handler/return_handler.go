package handler

import (
	"fmt"
	"time"

	"go-retail-pos/internal/export"
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// returnFilter reads the list query shared by both return kinds.
// counterparty is supplierId or customerId.
func returnFilter(c *fiber.Ctx, counterparty string) (repository.ReturnFilter, error) {
	filter := repository.ReturnFilter{
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		SortBy:      c.Query("sortBy"),
		SortOrder:   c.Query("sortOrder"),
		PageRequest: pageFrom(c),
	}
	var err error
	if filter.CounterpartyID, err = queryID(c, counterparty); err != nil {
		return filter, err
	}
	if filter.BranchID, err = queryID(c, "branchId"); err != nil {
		return filter, err
	}
	if filter.StartDate, err = queryDate(c, "startDate", false); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryDate(c, "endDate", true); err != nil {
		return filter, err
	}
	return filter, nil
}

func sendWorkbook(c *fiber.Ctx, name string, data []byte) error {
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Attachment(fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102_150405")))
	return c.Send(data)
}

type PurchaseReturnHandler struct {
	service service.PurchaseReturnService
}

func NewPurchaseReturnHandler(s service.PurchaseReturnService) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{service: s}
}

// GET /api/v1/purchase-returns
func (h *PurchaseReturnHandler) FindAll(c *fiber.Ctx) error {
	filter, err := returnFilter(c, "supplierId")
	if err != nil {
		return err
	}
	returns, pagination, err := h.service.FindAll(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	return paginated(c, returns, pagination)
}

// GET /api/v1/purchase-returns/export
func (h *PurchaseReturnHandler) Export(c *fiber.Ctx) error {
	filter, err := returnFilter(c, "supplierId")
	if err != nil {
		return err
	}
	returns, err := h.service.Export(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	data, err := export.PurchaseReturns(returns)
	if err != nil {
		return err
	}
	return sendWorkbook(c, "purchase_returns", data)
}

// GET /api/v1/purchase-returns/:id
func (h *PurchaseReturnHandler) FindOne(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ret, err := h.service.FindOne(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// POST /api/v1/purchase-returns
func (h *PurchaseReturnHandler) Create(c *fiber.Ctx) error {
	var req service.CreatePurchaseReturnRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ret, err := h.service.Create(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Purchase return created successfully", ret)
}

// PUT /api/v1/purchase-returns/:id
func (h *PurchaseReturnHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdatePurchaseReturnRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ret, err := h.service.Update(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// DELETE /api/v1/purchase-returns/:id
func (h *PurchaseReturnHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c)); err != nil {
		return err
	}
	return message(c, "Purchase return deleted successfully")
}

type SalesReturnHandler struct {
	service service.SalesReturnService
}

func NewSalesReturnHandler(s service.SalesReturnService) *SalesReturnHandler {
	return &SalesReturnHandler{service: s}
}

// GET /api/v1/sales-returns
func (h *SalesReturnHandler) FindAll(c *fiber.Ctx) error {
	filter, err := returnFilter(c, "customerId")
	if err != nil {
		return err
	}
	returns, pagination, err := h.service.FindAll(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	return paginated(c, returns, pagination)
}

// GET /api/v1/sales-returns/export
func (h *SalesReturnHandler) Export(c *fiber.Ctx) error {
	filter, err := returnFilter(c, "customerId")
	if err != nil {
		return err
	}
	returns, err := h.service.Export(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	data, err := export.SalesReturns(returns)
	if err != nil {
		return err
	}
	return sendWorkbook(c, "sales_returns", data)
}

// GET /api/v1/sales-returns/:id
func (h *SalesReturnHandler) FindOne(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ret, err := h.service.FindOne(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// POST /api/v1/sales-returns
func (h *SalesReturnHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSalesReturnRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ret, err := h.service.Create(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Sales return created successfully", ret)
}

// PUT /api/v1/sales-returns/:id
func (h *SalesReturnHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateSalesReturnRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ret, err := h.service.Update(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return ok(c, ret)
}

// DELETE /api/v1/sales-returns/:id
func (h *SalesReturnHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c)); err != nil {
		return err
	}
	return message(c, "Sales return deleted successfully")
}
