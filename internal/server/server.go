// Package server wires services, handlers and middleware into a fiber app.
package server

import (
	"go-retail-pos/internal/config"
	"go-retail-pos/internal/handler"
	"go-retail-pos/internal/metrics"
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Options struct {
	Config  *config.Config
	Store   *repository.Store
	Tokens  *jwt.Manager
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	Log     *zap.Logger

	DisableAccessLog bool
}

// New builds the application. The caller owns the hub goroutine and Listen.
func New(opts Options) *fiber.App {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	hub := opts.Hub
	if hub == nil {
		hub = ws.NewHub(log)
	}

	// Dependency Injection (Wiring Layers)
	deps := service.Deps{Events: hub, Metrics: opts.Metrics}
	store := opts.Store

	authService := service.NewAuthService(store, opts.Tokens, cfg.Session.IdleTimeout, deps)
	userService := service.NewUserService(store)
	tenantService := service.NewTenantService(store, deps)
	catalogService := service.NewCatalogService(store, deps)
	purchaseService := service.NewPurchaseService(store, deps)
	saleService := service.NewSaleService(store, deps)
	purchaseReturnService := service.NewPurchaseReturnService(store, deps)
	salesReturnService := service.NewSalesReturnService(store, deps)
	dashService := service.NewDashboardService(store, cfg.Stock.LowThreshold)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(store.Roles, store.Privileges)
	tenantHandler := handler.NewTenantHandler(tenantService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	saleHandler := handler.NewSaleHandler(saleService)
	purchaseReturnHandler := handler.NewPurchaseReturnHandler(purchaseReturnService)
	salesReturnHandler := handler.NewSalesReturnHandler(salesReturnService)
	dashHandler := handler.NewDashboardHandler(dashService)
	wsHandler := handler.NewWSHandler(hub)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: handler.ErrorHandler(log),
	})

	// Middleware
	if !opts.DisableAccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.Origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.TenantHeader,
	}))
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
		app.Get("/metrics", opts.Metrics.Handler())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(authService)

	// WebSocket Route
	app.Get("/ws", requireAuth, wsHandler.Upgrade, wsHandler.Serve())

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// Authenticated, no tenant needed
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)

	// ============ SUPER ADMIN CONSOLE ============
	admin := api.Group("/admin", requireAuth, middleware.RequireSuperAdmin(), middleware.RequirePrivilege(model.PrivTenantManage))
	admin.Get("/tenants", tenantHandler.FindAll)
	admin.Post("/tenants", tenantHandler.Create)
	admin.Get("/tenants/:id", tenantHandler.FindOne)
	admin.Put("/tenants/:id/status", tenantHandler.SetStatus)

	// ============ TENANT ROUTES ============
	// All routes below require authentication and a tenant context
	protected := api.Group("", requireAuth, middleware.RequireTenant(tenantService))

	// Dashboard Routes
	protected.Get("/dashboard/stats", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetStockMovement)

	// Purchase Return Routes
	protected.Get("/purchase-returns", middleware.RequirePrivilege(model.PrivPurchaseReturnView), purchaseReturnHandler.FindAll)
	protected.Get("/purchase-returns/export", middleware.RequirePrivilege(model.PrivPurchaseReturnView), purchaseReturnHandler.Export)
	protected.Get("/purchase-returns/:id", middleware.RequirePrivilege(model.PrivPurchaseReturnView), purchaseReturnHandler.FindOne)
	protected.Post("/purchase-returns", middleware.RequirePrivilege(model.PrivPurchaseReturnCreate), purchaseReturnHandler.Create)
	protected.Put("/purchase-returns/:id", middleware.RequirePrivilege(model.PrivPurchaseReturnUpdate), purchaseReturnHandler.Update)
	protected.Delete("/purchase-returns/:id", middleware.RequirePrivilege(model.PrivPurchaseReturnDelete), purchaseReturnHandler.Delete)

	// Sales Return Routes
	protected.Get("/sales-returns", middleware.RequirePrivilege(model.PrivSalesReturnView), salesReturnHandler.FindAll)
	protected.Get("/sales-returns/export", middleware.RequirePrivilege(model.PrivSalesReturnView), salesReturnHandler.Export)
	protected.Get("/sales-returns/:id", middleware.RequirePrivilege(model.PrivSalesReturnView), salesReturnHandler.FindOne)
	protected.Post("/sales-returns", middleware.RequirePrivilege(model.PrivSalesReturnCreate), salesReturnHandler.Create)
	protected.Put("/sales-returns/:id", middleware.RequirePrivilege(model.PrivSalesReturnUpdate), salesReturnHandler.Update)
	protected.Delete("/sales-returns/:id", middleware.RequirePrivilege(model.PrivSalesReturnDelete), salesReturnHandler.Delete)

	// Purchase Routes
	protected.Get("/purchases", middleware.RequirePrivilege(model.PrivPurchaseView), purchaseHandler.FindAll)
	protected.Get("/purchases/:id", middleware.RequirePrivilege(model.PrivPurchaseView), purchaseHandler.FindOne)
	protected.Post("/purchases", middleware.RequirePrivilege(model.PrivPurchaseCreate), purchaseHandler.Create)
	protected.Post("/purchases/:id/payments", middleware.RequirePrivilege(model.PrivPurchasePay), purchaseHandler.AddPayment)
	protected.Delete("/purchases/:id", middleware.RequirePrivilege(model.PrivPurchaseDelete), purchaseHandler.Delete)

	// Sale Routes
	protected.Get("/sales", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.FindAll)
	protected.Get("/sales/:id", middleware.RequirePrivilege(model.PrivSaleView), saleHandler.FindOne)
	protected.Post("/sales", middleware.RequirePrivilege(model.PrivSaleCreate), saleHandler.Create)

	// Product Routes
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), catalogHandler.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), catalogHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), catalogHandler.UpdateProduct)

	// Supplier and Customer Routes
	protected.Get("/suppliers", middleware.RequirePrivilege(model.PrivPartnerView), catalogHandler.GetSuppliers)
	protected.Get("/suppliers/:id", middleware.RequirePrivilege(model.PrivPartnerView), catalogHandler.GetSupplier)
	protected.Post("/suppliers", middleware.RequirePrivilege(model.PrivPartnerManage), catalogHandler.CreateSupplier)
	protected.Put("/suppliers/:id", middleware.RequirePrivilege(model.PrivPartnerManage), catalogHandler.UpdateSupplier)
	protected.Get("/customers", middleware.RequirePrivilege(model.PrivPartnerView), catalogHandler.GetCustomers)
	protected.Get("/customers/:id", middleware.RequirePrivilege(model.PrivPartnerView), catalogHandler.GetCustomer)
	protected.Post("/customers", middleware.RequirePrivilege(model.PrivPartnerManage), catalogHandler.CreateCustomer)
	protected.Put("/customers/:id", middleware.RequirePrivilege(model.PrivPartnerManage), catalogHandler.UpdateCustomer)

	// Branch Routes
	protected.Get("/branches", middleware.RequirePrivilege(model.PrivBranchView), catalogHandler.GetBranches)
	protected.Get("/branches/:id", middleware.RequirePrivilege(model.PrivBranchView), catalogHandler.GetBranch)
	protected.Post("/branches", middleware.RequirePrivilege(model.PrivBranchManage), catalogHandler.CreateBranch)
	protected.Put("/branches/:id", middleware.RequirePrivilege(model.PrivBranchManage), catalogHandler.UpdateBranch)

	// Stock Routes
	protected.Get("/stocks", middleware.RequirePrivilege(model.PrivStockView), catalogHandler.GetStocks)
	protected.Get("/stock-movements", middleware.RequirePrivilege(model.PrivStockView), catalogHandler.GetStockMovements)

	// User Management Routes
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege(model.PrivUserUpdatePrivilege), userHandler.UpdateUserPrivileges)

	// Role and Privilege Routes
	protected.Get("/roles", middleware.RequireAnyPrivilege(model.PrivUserView, model.PrivUserUpdatePrivilege), roleHandler.GetRoles)
	protected.Get("/privileges", middleware.RequireAnyPrivilege(model.PrivUserView, model.PrivUserUpdatePrivilege), roleHandler.GetPrivileges)

	return app
}
