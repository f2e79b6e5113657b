package service

import (
	"context"
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmailExists = apperror.ErrDuplicate.WithMessage("Email already exists")

// UserService manages the users of one tenant. Platform super admins are
// never created or listed through it.
type UserService interface {
	CreateUser(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, tenantID, userID uuid.UUID, actor Actor, req *UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, tenantID, userID uuid.UUID, actor Actor) error
	UpdateUserPrivileges(ctx context.Context, tenantID, userID uuid.UUID, actor Actor, req *UpdatePrivilegesRequest) (*model.UserResponse, error)
	GetAllUsers(ctx context.Context, tenantID uuid.UUID) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, tenantID, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"fullName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"max=20"`
	RoleID      uint   `json:"roleId" validate:"required"`
}

type UpdateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName    string  `json:"fullName" validate:"required"`
	PhoneNumber string  `json:"phoneNumber" validate:"max=20"`
	RoleID      uint    `json:"roleId" validate:"required"`
	IsActive    *bool   `json:"isActive"`
}

type UpdatePrivilegesRequest struct {
	Privileges []string `json:"privileges" validate:"required"`
}

type userService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) UserService {
	return &userService{store: store}
}

// tenantRole loads a role that may be handed out inside a tenant.
func (s *userService) tenantRole(ctx context.Context, roleID uint) (*model.Role, error) {
	role, err := s.store.Roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, notFound(err, apperror.ErrRoleNotFound)
	}
	if role.IsSuperAdmin {
		return nil, apperror.ErrForbidden.WithMessage("Role cannot be assigned to tenant users")
	}
	return role, nil
}

func (s *userService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.store.Users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *userService) CreateUser(ctx context.Context, tenantID uuid.UUID, actor Actor, req *CreateUserRequest) (*model.UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}
	email := req.Email

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailExists
	}

	role, err := s.tenantRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		TenantID:    &tenantID,
		Email:       email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		Privileges:  role.Privileges,
	}
	user.CreatedBy = actor.Ref()
	user.UpdatedBy = actor.Ref()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.Users.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return s.GetUserByID(ctx, tenantID, user.ID)
}

func (s *userService) UpdateUser(ctx context.Context, tenantID, userID uuid.UUID, actor Actor, req *UpdateUserRequest) (*model.UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.FindInTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, notFound(err, apperror.ErrUserNotFound)
	}

	email := req.Email
	if email != user.Email {
		taken, err := s.emailTaken(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	role, err := s.tenantRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	roleChanged := user.RoleID == nil || *user.RoleID != role.ID

	user.Email = email
	user.FullName = req.FullName
	user.PhoneNumber = req.PhoneNumber
	user.RoleID = &role.ID
	user.Role = nil
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.Ref()
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.store.Users.Update(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	// A new role resets privileges to the role's defaults.
	if roleChanged {
		if err := s.store.Users.UpdatePrivileges(ctx, user, role.Privileges); err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(ctx, tenantID, userID)
}

func (s *userService) DeleteUser(ctx context.Context, tenantID, userID uuid.UUID, actor Actor) error {
	if userID == actor.UserID {
		return apperror.ErrForbidden.WithMessage("You cannot delete your own account")
	}
	if err := s.store.Users.Delete(ctx, tenantID, userID, actor.Ref()); err != nil {
		return notFound(err, apperror.ErrUserNotFound)
	}
	return nil
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, tenantID, userID uuid.UUID, actor Actor, req *UpdatePrivilegesRequest) (*model.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindInTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, notFound(err, apperror.ErrUserNotFound)
	}

	privileges, err := s.store.Privileges.FindByCodes(ctx, req.Privileges)
	if err != nil {
		return nil, fmt.Errorf("find privileges: %w", err)
	}
	for _, p := range privileges {
		if p.Code == model.PrivTenantManage {
			return nil, apperror.ErrForbidden.WithMessage("Privilege cannot be granted to tenant users")
		}
	}

	if err := s.store.Users.UpdatePrivileges(ctx, user, privileges); err != nil {
		return nil, err
	}
	user.UpdatedBy = actor.Ref()
	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, tenantID, userID)
}

func (s *userService) GetAllUsers(ctx context.Context, tenantID uuid.UUID) ([]model.UserResponse, error) {
	users, err := s.store.Users.FindAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, tenantID, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.store.Users.FindInTenant(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrUserNotFound)
	}
	response := user.ToResponse()
	return &response, nil
}
