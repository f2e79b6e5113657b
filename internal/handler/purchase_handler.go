package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

// GET /api/v1/purchases
func (h *PurchaseHandler) FindAll(c *fiber.Ctx) error {
	filter := repository.PurchaseFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		Search:        c.Query("search"),
		SortBy:        c.Query("sortBy"),
		SortOrder:     c.Query("sortOrder"),
		PageRequest:   pageFrom(c),
	}
	var err error
	if filter.SupplierID, err = queryID(c, "supplierId"); err != nil {
		return err
	}
	if filter.BranchID, err = queryID(c, "branchId"); err != nil {
		return err
	}

	purchases, pagination, err := h.service.FindAll(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	return paginated(c, purchases, pagination)
}

// GET /api/v1/purchases/:id
func (h *PurchaseHandler) FindOne(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	purchase, err := h.service.FindOne(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, purchase)
}

// POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var req service.CreatePurchaseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	purchase, err := h.service.Create(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Purchase created successfully", purchase)
}

// POST /api/v1/purchases/:id/payments
func (h *PurchaseHandler) AddPayment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.AddPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	purchase, err := h.service.AddPayment(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Payment recorded successfully", purchase)
}

// DELETE /api/v1/purchases/:id
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c)); err != nil {
		return err
	}
	return message(c, "Purchase deleted successfully")
}

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

// GET /api/v1/sales
func (h *SaleHandler) FindAll(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Search:      c.Query("search"),
		SortBy:      c.Query("sortBy"),
		SortOrder:   c.Query("sortOrder"),
		PageRequest: pageFrom(c),
	}
	var err error
	if filter.CustomerID, err = queryID(c, "customerId"); err != nil {
		return err
	}
	if filter.BranchID, err = queryID(c, "branchId"); err != nil {
		return err
	}
	if filter.StartDate, err = queryDate(c, "startDate", false); err != nil {
		return err
	}
	if filter.EndDate, err = queryDate(c, "endDate", true); err != nil {
		return err
	}

	sales, pagination, err := h.service.FindAll(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	return paginated(c, sales, pagination)
}

// GET /api/v1/sales/:id
func (h *SaleHandler) FindOne(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sale, err := h.service.FindOne(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, sale)
}

// POST /api/v1/sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sale, err := h.service.Create(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Sale created successfully", sale)
}
