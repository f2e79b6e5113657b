package middleware

import (
	"context"
	"strings"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"
	"go-retail-pos/pkg/apperror"
	"go-retail-pos/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	localUser     = "user"
	localClaims   = "claims"
	localTenantID = "tenant_id"

	// TenantHeader lets a super admin act inside one tenant.
	TenantHeader = "X-Tenant-ID"
)

// TenantLookup is the part of the tenant service the tenant middleware needs.
type TenantLookup interface {
	FindOne(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
}

// RequireAuth validates the bearer token and stores the user and claims in
// the request locals. Websocket upgrades may pass the token as ?token=.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		user, claims, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(localUser, user)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c) && c.Query("token") != "" {
			return c.Query("token"), nil
		}
		return "", apperror.ErrAuthRequired
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", apperror.ErrUnauthorized.WithMessage("Invalid authorization format. Use: Bearer <token>")
	}
	return parts[1], nil
}

// RequireTenant resolves the tenant every business route runs in: the
// caller's own tenant, or the X-Tenant-ID header for a super admin.
func RequireTenant(tenants TenantLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		claims := CurrentClaims(c)
		if user == nil || claims == nil {
			return apperror.ErrAuthRequired
		}

		if user.TenantID != nil {
			if user.Tenant != nil && !user.Tenant.IsActive {
				return apperror.ErrTenantInactive
			}
			c.Locals(localTenantID, *user.TenantID)
			return c.Next()
		}

		header := c.Get(TenantHeader)
		if !claims.SuperAdmin || header == "" {
			return apperror.ErrTenantContextRequired
		}
		tenantID, err := uuid.Parse(header)
		if err != nil {
			return apperror.ErrTenantContextRequired.WithMessage("Invalid " + TenantHeader + " header")
		}
		tenant, err := tenants.FindOne(c.UserContext(), tenantID)
		if err != nil {
			return err
		}
		if !tenant.IsActive {
			return apperror.ErrTenantInactive
		}
		c.Locals(localTenantID, tenant.ID)
		return c.Next()
	}
}

// RequireSuperAdmin gates platform routes on the superAdmin claim, which is
// issued from the role's IsSuperAdmin flag.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := CurrentClaims(c)
		if claims == nil || !claims.SuperAdmin {
			return apperror.ErrForbidden.WithMessage("Forbidden: super admin only")
		}
		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperror.ErrForbidden.WithMessage("No privileges found")
		}
		if user.HasPrivilege(requiredPrivilege) {
			return c.Next()
		}
		return apperror.ErrForbidden.WithMessage("Forbidden: requires '" + requiredPrivilege + "' privilege")
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperror.ErrForbidden.WithMessage("No privileges found")
		}
		for _, p := range requiredPrivileges {
			if user.HasPrivilege(p) {
				return c.Next()
			}
		}
		return apperror.ErrForbidden.WithMessage("Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges")
	}
}

func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(localUser).(*model.User)
	return user
}

func CurrentClaims(c *fiber.Ctx) *jwt.Claims {
	claims, _ := c.Locals(localClaims).(*jwt.Claims)
	return claims
}

// TenantID is the tenant resolved by RequireTenant, or uuid.Nil outside it.
func TenantID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(localTenantID).(uuid.UUID)
	return id
}

// CurrentActor is who a write made by this request is attributed to.
func CurrentActor(c *fiber.Ctx) service.Actor {
	user := CurrentUser(c)
	if user == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: user.ID, Name: user.FullName, Email: user.Email}
}
