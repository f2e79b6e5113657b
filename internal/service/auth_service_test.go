package service_test

import (
	"testing"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"
	"go-retail-pos/pkg/apperror"
	"go-retail-pos/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(e *env, idle time.Duration) service.AuthService {
	return service.NewAuthService(e.store, jwt.NewManager("test-secret", time.Hour, "retail-pos-test"), idle, e.deps)
}

// tenantAdmin onboards a tenant and returns its admin's credentials.
func tenantAdmin(t *testing.T, e *env, name string) (*service.TenantSetup, string) {
	t.Helper()
	setup, err := service.NewTenantService(e.store, e.deps).Create(e.ctx, e.actor, &service.CreateTenantRequest{
		Name:          name,
		AdminEmail:    "admin@" + service.Slugify(name) + ".test",
		AdminPassword: "secret123",
		AdminName:     name + " Admin",
	})
	require.NoError(t, err)
	return setup, "secret123"
}

func TestLoginAndAuthenticate(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, 0)
	setup, password := tenantAdmin(t, e, "Corner Shop")

	res, err := auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: password})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Contains(t, res.Privileges, model.PrivPurchaseReturnCreate)
	assert.NotContains(t, res.Privileges, model.PrivTenantManage)

	user, claims, err := auth.Authenticate(e.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, setup.Admin.ID, user.ID)
	assert.False(t, claims.SuperAdmin)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, setup.Tenant.ID, *claims.TenantID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, 0)

	_, err := auth.Login(e.ctx, &service.LoginRequest{Email: "root@platform.test", Password: "nope"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = auth.Login(e.ctx, &service.LoginRequest{Email: "ghost@platform.test", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = auth.Login(e.ctx, &service.LoginRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSuperAdminLogin(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, 0)

	res, err := auth.Login(e.ctx, &service.LoginRequest{Email: " Root@Platform.test ", Password: "secret123"})
	require.NoError(t, err)

	_, claims, err := auth.Authenticate(e.ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, claims.SuperAdmin)
	assert.Nil(t, claims.TenantID)
	assert.Contains(t, claims.Privileges, model.PrivTenantManage)
}

func TestSecondLoginExpiresFirstSession(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, 0)
	setup, password := tenantAdmin(t, e, "Corner Shop")

	first, err := auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: password})
	require.NoError(t, err)
	second, err := auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: password})
	require.NoError(t, err)

	_, _, err = auth.Authenticate(e.ctx, first.Token)
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)

	_, _, err = auth.Authenticate(e.ctx, second.Token)
	assert.NoError(t, err)
}

func TestAuthenticateRejectsInactiveUserAndTenant(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, 0)
	setup, password := tenantAdmin(t, e, "Corner Shop")

	res, err := auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: password})
	require.NoError(t, err)

	inactive := false
	_, err = service.NewTenantService(e.store, e.deps).SetStatus(e.ctx, setup.Tenant.ID, e.actor, &service.SetTenantStatusRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, _, err = auth.Authenticate(e.ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrTenantInactive)
	_, err = auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: password})
	assert.ErrorIs(t, err, apperror.ErrTenantInactive)

	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", setup.Admin.ID).Update("is_active", false).Error)
	_, _, err = auth.Authenticate(e.ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrUserInactive)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, 0)

	_, _, err := auth.Authenticate(e.ctx, "")
	assert.ErrorIs(t, err, apperror.ErrAuthRequired)

	_, _, err = auth.Authenticate(e.ctx, "not.a.token")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	foreign := jwt.NewManager("other-secret", time.Hour, "retail-pos-test")
	token, err := foreign.GenerateToken(jwt.Claims{Email: "root@platform.test"})
	require.NoError(t, err)
	_, _, err = auth.Authenticate(e.ctx, token)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestValidateTokenIdleTimeout(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, time.Minute)
	setup, password := tenantAdmin(t, e, "Corner Shop")

	res, err := auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: password})
	require.NoError(t, err)

	valid, err := auth.ValidateToken(e.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, setup.Admin.ID, valid.User.ID)

	stale := time.Now().Add(-time.Hour)
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", setup.Admin.ID).Update("last_seen_at", stale).Error)
	_, err = auth.ValidateToken(e.ctx, res.Token)
	assert.ErrorIs(t, err, apperror.ErrSessionExpired)

	user, _, err := auth.Authenticate(e.ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, auth.Heartbeat(e.ctx, user))
	_, err = auth.ValidateToken(e.ctx, res.Token)
	assert.NoError(t, err)
	assert.Equal(t, "user_status_update", e.events.last().Type)
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	auth := newAuth(e, 0)
	setup, password := tenantAdmin(t, e, "Corner Shop")

	err := auth.ChangePassword(e.ctx, setup.Admin.ID, &service.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, apperror.ErrWrongPassword)

	require.NoError(t, auth.ChangePassword(e.ctx, setup.Admin.ID, &service.ChangePasswordRequest{OldPassword: password, NewPassword: "newsecret"}))

	_, err = auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: password})
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	_, err = auth.Login(e.ctx, &service.LoginRequest{Email: setup.Admin.Email, Password: "newsecret"})
	assert.NoError(t, err)
}
