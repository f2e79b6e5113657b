package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"
	"go-retail-pos/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	// Authenticate resolves a bearer token to its user, enforcing the
	// single-session token version and the active flags of user and tenant.
	Authenticate(ctx context.Context, tokenString string) (*model.User, *jwt.Claims, error)
	Me(ctx context.Context, userID uuid.UUID) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, user *model.User) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	store       *repository.Store
	tokens      *jwt.Manager
	idleTimeout time.Duration
	deps        Deps
}

// NewAuthService builds the auth service. A zero idleTimeout disables the
// inactivity check on token validation.
func NewAuthService(store *repository.Store, tokens *jwt.Manager, idleTimeout time.Duration, deps Deps) AuthService {
	return &authService{store: store, tokens: tokens, idleTimeout: idleTimeout, deps: deps}
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.CheckPassword(req.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.ErrUserInactive
	}
	if user.Tenant != nil && !user.Tenant.IsActive {
		return nil, apperror.ErrTenantInactive
	}

	// A fresh token version logs out every other session of this user.
	tokenVersion := uuid.NewString()
	now := time.Now()
	if err := s.store.Users.UpdateSession(ctx, user.ID, tokenVersion, now); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	user.TokenVersion = tokenVersion
	user.LastSeenAt = &now

	token, err := s.tokens.GenerateToken(jwt.Claims{
		UserID:       user.ID,
		TenantID:     user.TenantID,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode(),
		SuperAdmin:   user.IsSuperAdmin(),
		Privileges:   user.GetPrivilegeCodes(),
		TokenVersion: tokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*model.User, *jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if errors.Is(err, jwt.ErrMissingToken) {
		return nil, nil, apperror.ErrAuthRequired
	}
	if err != nil {
		return nil, nil, apperror.ErrUnauthorized
	}

	user, err := s.store.Users.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperror.ErrUnauthorized
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, apperror.ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, apperror.ErrSessionExpired.WithMessage("Session expired (logged in on another device)")
	}
	if user.Tenant != nil && !user.Tenant.IsActive {
		return nil, nil, apperror.ErrTenantInactive
	}
	return user, claims, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	user, _, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if s.idleTimeout > 0 {
		if user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > s.idleTimeout {
			return nil, apperror.ErrSessionExpired.WithMessage("Session expired due to inactivity")
		}
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*TokenValidationResponse, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperror.ErrUserNotFound)
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

// Heartbeat refreshes last-seen and tells the user's tenant they are online.
func (s *authService) Heartbeat(ctx context.Context, user *model.User) error {
	now := time.Now()
	if err := s.store.Users.UpdateLastSeen(ctx, user.ID, now); err != nil {
		return fmt.Errorf("update last seen: %w", err)
	}

	tenantID := uuid.Nil
	if user.TenantID != nil {
		tenantID = *user.TenantID
	}
	s.deps.publish(tenantID, "user_status_update", "online", user.FullName, "", map[string]interface{}{
		"userId":     user.ID,
		"status":     "online",
		"lastSeenAt": now,
	})
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, apperror.ErrUserNotFound)
	}
	if !user.CheckPassword(req.OldPassword) {
		return apperror.ErrWrongPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.UpdatedBy = userID.String()
	return s.store.Users.Update(ctx, user)
}
