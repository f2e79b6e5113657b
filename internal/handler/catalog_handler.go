package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the tenant's products, partners, branches and stock views.
type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

func partnerFilter(c *fiber.Ctx) repository.PartnerFilter {
	return repository.PartnerFilter{Search: c.Query("search"), PageRequest: pageFrom(c)}
}

// GET /api/v1/products
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{Search: c.Query("search"), PageRequest: pageFrom(c)}
	products, pagination, err := h.service.ListProducts(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	return paginated(c, products, pagination)
}

// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Product created", product)
}

// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// GET /api/v1/suppliers
func (h *CatalogHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, pagination, err := h.service.ListSuppliers(c.UserContext(), middleware.TenantID(c), partnerFilter(c))
	if err != nil {
		return err
	}
	return paginated(c, suppliers, pagination)
}

// GET /api/v1/suppliers/:id
func (h *CatalogHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	supplier, err := h.service.GetSupplier(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, supplier)
}

// POST /api/v1/suppliers
func (h *CatalogHandler) CreateSupplier(c *fiber.Ctx) error {
	var req service.PartnerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	supplier, err := h.service.CreateSupplier(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Supplier created", supplier)
}

// PUT /api/v1/suppliers/:id
func (h *CatalogHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.PartnerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	supplier, err := h.service.UpdateSupplier(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return ok(c, supplier)
}

// GET /api/v1/customers
func (h *CatalogHandler) GetCustomers(c *fiber.Ctx) error {
	customers, pagination, err := h.service.ListCustomers(c.UserContext(), middleware.TenantID(c), partnerFilter(c))
	if err != nil {
		return err
	}
	return paginated(c, customers, pagination)
}

// GET /api/v1/customers/:id
func (h *CatalogHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.service.GetCustomer(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, customer)
}

// POST /api/v1/customers
func (h *CatalogHandler) CreateCustomer(c *fiber.Ctx) error {
	var req service.PartnerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.service.CreateCustomer(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Customer created", customer)
}

// PUT /api/v1/customers/:id
func (h *CatalogHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.PartnerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.service.UpdateCustomer(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return ok(c, customer)
}

// GET /api/v1/branches
func (h *CatalogHandler) GetBranches(c *fiber.Ctx) error {
	branches, err := h.service.ListBranches(c.UserContext(), middleware.TenantID(c))
	if err != nil {
		return err
	}
	return ok(c, branches)
}

// GET /api/v1/branches/:id
func (h *CatalogHandler) GetBranch(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	branch, err := h.service.GetBranch(c.UserContext(), middleware.TenantID(c), id)
	if err != nil {
		return err
	}
	return ok(c, branch)
}

// POST /api/v1/branches
func (h *CatalogHandler) CreateBranch(c *fiber.Ctx) error {
	var req service.BranchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	branch, err := h.service.CreateBranch(c.UserContext(), middleware.TenantID(c), middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return created(c, "Branch created", branch)
}

// PUT /api/v1/branches/:id
func (h *CatalogHandler) UpdateBranch(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req service.BranchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	branch, err := h.service.UpdateBranch(c.UserContext(), middleware.TenantID(c), id, middleware.CurrentActor(c), &req)
	if err != nil {
		return err
	}
	return ok(c, branch)
}

// GET /api/v1/stocks
func (h *CatalogHandler) GetStocks(c *fiber.Ctx) error {
	filter := repository.StockFilter{PageRequest: pageFrom(c)}
	var err error
	if filter.BranchID, err = queryID(c, "branchId"); err != nil {
		return err
	}
	if filter.ProductID, err = queryID(c, "productId"); err != nil {
		return err
	}
	stocks, pagination, err := h.service.ListStocks(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	return paginated(c, stocks, pagination)
}

// GET /api/v1/stock-movements
func (h *CatalogHandler) GetStockMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ReferenceType: c.Query("referenceType"),
		PageRequest:   pageFrom(c),
	}
	var err error
	if filter.BranchID, err = queryID(c, "branchId"); err != nil {
		return err
	}
	if filter.ProductID, err = queryID(c, "productId"); err != nil {
		return err
	}
	if filter.ReferenceID, err = queryID(c, "referenceId"); err != nil {
		return err
	}
	if filter.StartDate, err = queryDate(c, "startDate", false); err != nil {
		return err
	}
	if filter.EndDate, err = queryDate(c, "endDate", true); err != nil {
		return err
	}
	movements, pagination, err := h.service.ListMovements(c.UserContext(), middleware.TenantID(c), filter)
	if err != nil {
		return err
	}
	return paginated(c, movements, pagination)
}
