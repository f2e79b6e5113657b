package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TenantHandler is the super-admin console.
type TenantHandler struct {
	service service.TenantService
}

func NewTenantHandler(s service.TenantService) *TenantHandler {
	return &TenantHandler{service: s}
}

// GET /api/v1/admin/tenants
func (h *TenantHandler) FindAll(c *fiber.Ctx) error {
	tenants, pagination, err := h.service.FindAll(c.UserContext(), c.Query("search"), pageFrom(c))
	if err != nil {
		return err
	}
	return paginated(c, tenants, pagination)
}

// GET /api/v1/admin/tenants/:id
func (h *TenantHandler) FindOne(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tenant, err := h.service.FindOne(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, tenant)
}

// POST /api/v1/admin/tenants
func (h *TenantHandler) Create(c *fiber.Ctx) error {
	var req service.CreateTenantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	setup, err := h.service.Create(c.UserContext(), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Tenant created successfully", setup)
}

// PUT /api/v1/admin/tenants/:id/status
func (h *TenantHandler) SetStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.SetTenantStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tenant, err := h.service.SetStatus(c.UserContext(), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return ok(c, tenant)
}
