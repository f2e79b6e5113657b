package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-retail-pos/internal/config"
	"go-retail-pos/internal/export"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/server"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/testutil"
	"go-retail-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type envelope struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Data       json.RawMessage        `json:"data"`
	Pagination *repository.Pagination `json:"pagination"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// codeOf returns the error code of env, or "" for a success envelope.
func codeOf(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}

type harness struct {
	t     *testing.T
	app   *fiber.App
	store *repository.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Name = "retail-pos-test"
	cfg.CORS.Origins = "*"
	cfg.Stock.LowThreshold = 10

	store := testutil.NewStore(t)
	app := server.New(server.Options{
		Config:           cfg,
		Store:            store,
		Tokens:           jwt.NewManager("test-secret", time.Hour, "retail-pos-test"),
		DisableAccessLog: true,
	})
	return &harness{t: t, app: app, store: store}
}

func (h *harness) do(method, path, token string, body interface{}, headers ...string) (*http.Response, envelope) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	resp, env := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, resp.StatusCode)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

// onboard creates a tenant through the admin console and returns it with its admin's token.
func (h *harness) onboard(rootToken, name string) (*service.TenantSetup, string) {
	h.t.Helper()
	email := "admin@" + service.Slugify(name) + ".test"
	resp, env := h.do(http.MethodPost, "/api/v1/admin/tenants", rootToken, map[string]string{
		"name":          name,
		"adminEmail":    email,
		"adminPassword": "secret123",
		"adminName":     name + " Admin",
	})
	require.Equal(h.t, http.StatusCreated, resp.StatusCode)
	var setup service.TenantSetup
	require.NoError(h.t, json.Unmarshal(env.Data, &setup))
	return &setup, h.login(email, "secret123")
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorEnvelope(t *testing.T) {
	h := newHarness(t)

	resp, env := h.do(http.MethodGet, "/api/v1/purchase-returns", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTH_REQUIRED", codeOf(env))

	resp, env = h.do(http.MethodGet, "/api/v1/purchase-returns", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", codeOf(env))

	resp, env = h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "root@platform.test", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", codeOf(env))
}

func TestSuperAdminNeedsTenantHeader(t *testing.T) {
	h := newHarness(t)
	root := h.login("root@platform.test", "secret123")
	setup, _ := h.onboard(root, "Corner Shop")

	resp, env := h.do(http.MethodGet, "/api/v1/purchase-returns", root, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "TENANT_CONTEXT_REQUIRED", codeOf(env))

	resp, env = h.do(http.MethodGet, "/api/v1/purchase-returns", root, nil, "X-Tenant-ID", setup.Tenant.ID.String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Page)
}

func TestAdminConsoleChecksRoleFlagNotName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	privileges, err := h.store.Privileges.FindByCodes(ctx, []string{model.PrivTenantManage})
	require.NoError(t, err)
	impostor := &model.Role{Code: "PLATFORM_SUPER", Name: "super", IsSuperAdmin: false}
	require.NoError(t, h.store.DB().Create(impostor).Error)
	user := &model.User{Email: "mallory@platform.test", FullName: "Mallory", RoleID: &impostor.ID, IsActive: true, Privileges: privileges}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, h.store.Users.Create(ctx, user))

	token := h.login("mallory@platform.test", "secret123")
	resp, env := h.do(http.MethodGet, "/api/v1/admin/tenants", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", codeOf(env))

	// Without the flag the X-Tenant-ID header is not honoured either.
	other := testutil.CreateTenant(t, h.store.DB(), "victim")
	resp, env = h.do(http.MethodGet, "/api/v1/purchase-returns", token, nil, "X-Tenant-ID", other.ID.String())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "TENANT_CONTEXT_REQUIRED", codeOf(env))
}

func TestPurchaseReturnLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	root := h.login("root@platform.test", "secret123")
	setup, token := h.onboard(root, "Corner Shop")
	db := h.store.DB()
	tenantID := setup.Tenant.ID

	supplier := testutil.CreateSupplier(t, db, tenantID, "Wholesale Co", 0)
	product := testutil.CreateProduct(t, db, tenantID, "A-001", 5)

	resp, env := h.do(http.MethodPost, "/api/v1/purchases", token, map[string]interface{}{
		"supplierId": supplier.ID,
		"branchId":   setup.Branch.ID,
		"items":      []map[string]interface{}{{"productId": product.ID, "qty": 10, "price": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var purchase model.Purchase
	require.NoError(t, json.Unmarshal(env.Data, &purchase))

	resp, env = h.do(http.MethodPost, "/api/v1/purchase-returns", token, map[string]interface{}{
		"purchaseId": purchase.ID,
		"reason":     "damaged",
		"items":      []map[string]interface{}{{"productId": product.ID, "qty": 3, "price": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ret model.PurchaseReturn
	require.NoError(t, json.Unmarshal(env.Data, &ret))
	assert.Equal(t, "PR0001", ret.ReturnNumber)
	assert.Equal(t, 7, testutil.StockOf(t, db, tenantID, product.ID, setup.Branch.ID))

	resp, env = h.do(http.MethodPost, "/api/v1/purchase-returns", token, map[string]interface{}{
		"purchaseId": purchase.ID,
		"items":      []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", codeOf(env))

	resp, env = h.do(http.MethodGet, "/api/v1/purchase-returns/"+ret.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = h.do(http.MethodGet, "/api/v1/purchase-returns/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", codeOf(env))

	// Another tenant cannot see it.
	_, otherToken := h.onboard(root, "Rival Shop")
	resp, env = h.do(http.MethodGet, "/api/v1/purchase-returns/"+ret.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RETURN_NOT_FOUND", codeOf(env))

	resp, env = h.do(http.MethodPut, "/api/v1/purchase-returns/"+ret.ID.String(), token, map[string]interface{}{
		"reason": "crushed boxes",
		"total":  1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.PurchaseReturn
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "crushed boxes", updated.Reason)
	assert.True(t, updated.Total.Equal(ret.Total))

	resp, _ = h.do(http.MethodDelete, "/api/v1/purchase-returns/"+ret.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, testutil.StockOf(t, db, tenantID, product.ID, setup.Branch.ID))

	resp, env = h.do(http.MethodDelete, "/api/v1/purchase-returns/"+ret.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RETURN_NOT_FOUND", codeOf(env))
}

func TestExportPurchaseReturns(t *testing.T) {
	h := newHarness(t)
	root := h.login("root@platform.test", "secret123")
	setup, token := h.onboard(root, "Corner Shop")
	db := h.store.DB()
	ctx := context.Background()
	tenantID := setup.Tenant.ID
	actor := service.Actor{UserID: setup.Admin.ID, Name: "Admin"}

	supplier := testutil.CreateSupplier(t, db, tenantID, "Wholesale Co", 0)
	product := testutil.CreateProduct(t, db, tenantID, "A-001", 5)
	purchase, err := service.NewPurchaseService(h.store, service.Deps{}).Create(ctx, tenantID, actor, &service.CreatePurchaseRequest{
		SupplierID: supplier.ID.String(),
		BranchID:   setup.Branch.ID.String(),
		Items:      []service.LineItemRequest{{ProductID: product.ID.String(), Quantity: 10, Price: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	returns := service.NewPurchaseReturnService(h.store, service.Deps{})
	for i := 0; i < 2; i++ {
		_, err := returns.Create(ctx, tenantID, actor, &service.CreatePurchaseReturnRequest{
			PurchaseID: purchase.ID.String(),
			Reason:     "damaged",
			Items:      []service.ReturnItemRequest{{ProductID: product.ID.String(), Quantity: 1, Price: decimal.NewFromInt(5)}},
		})
		require.NoError(t, err)
	}

	resp, _ := h.do(http.MethodGet, "/api/v1/purchase-returns/export?sortBy=returnNumber&sortOrder=asc", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "purchase_returns_")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Purchase Returns")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Return Number", rows[0][0])
	assert.Equal(t, "PR0001", rows[1][0])
	assert.Equal(t, "Wholesale Co", rows[1][2])
	assert.Equal(t, "PR0002", rows[2][0])
}

func TestPrivilegeGate(t *testing.T) {
	h := newHarness(t)
	root := h.login("root@platform.test", "secret123")
	setup, _ := h.onboard(root, "Corner Shop")
	ctx := context.Background()

	role, err := h.store.Roles.FindByCode(ctx, model.RoleStaff)
	require.NoError(t, err)
	_, err = service.NewUserService(h.store).CreateUser(ctx, setup.Tenant.ID, service.Actor{}, &service.CreateUserRequest{
		Email: "clerk@corner.test", Password: "secret123", FullName: "Clerk", RoleID: role.ID,
	})
	require.NoError(t, err)
	clerk := h.login("clerk@corner.test", "secret123")

	resp, env := h.do(http.MethodDelete, "/api/v1/users/"+setup.Admin.ID.String(), clerk, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", codeOf(env))

	resp, _ = h.do(http.MethodGet, "/api/v1/admin/tenants", clerk, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
