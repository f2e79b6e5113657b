package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
)

type CreateTenantRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Slug          string `json:"slug" validate:"omitempty,max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=30"`
	BranchCode    string `json:"branchCode" validate:"omitempty,max=30"`
	BranchName    string `json:"branchName" validate:"omitempty,max=255"`
	AdminEmail    string `json:"adminEmail" validate:"required,email"`
	AdminPassword string `json:"adminPassword" validate:"required,min=6"`
	AdminName     string `json:"adminName" validate:"required"`
}

type SetTenantStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// TenantSetup is what the console returns after onboarding a tenant.
type TenantSetup struct {
	Tenant *model.Tenant       `json:"tenant"`
	Branch *model.Branch       `json:"branch"`
	Admin  *model.UserResponse `json:"admin"`
}

// TenantService backs the super-admin console.
type TenantService interface {
	FindAll(ctx context.Context, search string, page repository.PageRequest) ([]model.Tenant, repository.Pagination, error)
	FindOne(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	Create(ctx context.Context, actor Actor, req *CreateTenantRequest) (*TenantSetup, error)
	SetStatus(ctx context.Context, id uuid.UUID, actor Actor, req *SetTenantStatusRequest) (*model.Tenant, error)
}

type tenantService struct {
	store *repository.Store
	deps  Deps
}

func NewTenantService(store *repository.Store, deps Deps) TenantService {
	return &tenantService{store: store, deps: deps}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func (s *tenantService) FindAll(ctx context.Context, search string, page repository.PageRequest) ([]model.Tenant, repository.Pagination, error) {
	page = page.Normalize()
	tenants, total, err := s.store.Tenants.FindAll(ctx, search, page)
	if err != nil {
		return nil, repository.Pagination{}, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, repository.NewPagination(page, total), nil
}

func (s *tenantService) FindOne(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	tenant, err := s.store.Tenants.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperror.ErrTenantNotFound)
	}
	return tenant, nil
}

// Create onboards a tenant with its first branch and a TENANT_ADMIN user.
func (s *tenantService) Create(ctx context.Context, actor Actor, req *CreateTenantRequest) (*TenantSetup, error) {
	req.AdminEmail = normalizeEmail(req.AdminEmail)
	if err := validate(req); err != nil {
		return nil, err
	}
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return nil, apperror.Validation([]*validator.ErrorResponse{{FailedField: "slug", Tag: "required"}})
	}
	branchCode := strings.ToUpper(strings.TrimSpace(req.BranchCode))
	if branchCode == "" {
		branchCode = "MAIN"
	}
	branchName := req.BranchName
	if branchName == "" {
		branchName = "Main Branch"
	}

	setup := &TenantSetup{}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		role, err := tx.Roles.FindByCode(ctx, model.RoleTenantAdmin)
		if err != nil {
			return notFound(err, apperror.ErrRoleNotFound)
		}

		tenant := &model.Tenant{Name: req.Name, Slug: slug, Email: req.Email, Phone: req.Phone, IsActive: true}
		tenant.CreatedBy = actor.Ref()
		tenant.UpdatedBy = actor.Ref()
		if err := tx.Tenants.Create(ctx, tenant); err != nil {
			if isDuplicate(err) {
				return apperror.ErrDuplicate.WithMessage("Tenant slug already exists")
			}
			return err
		}

		branch := &model.Branch{TenantID: tenant.ID, Code: branchCode, Name: branchName, IsActive: true}
		branch.CreatedBy = actor.Ref()
		branch.UpdatedBy = actor.Ref()
		if err := tx.Branches.Create(ctx, branch); err != nil {
			return err
		}

		admin := &model.User{
			TenantID:   &tenant.ID,
			Email:      req.AdminEmail,
			FullName:   req.AdminName,
			RoleID:     &role.ID,
			IsActive:   true,
			Privileges: role.Privileges,
		}
		admin.CreatedBy = actor.Ref()
		admin.UpdatedBy = actor.Ref()
		if err := admin.SetPassword(req.AdminPassword); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := tx.Users.Create(ctx, admin); err != nil {
			if isDuplicate(err) {
				return ErrEmailExists
			}
			return err
		}
		admin.Role = role

		response := admin.ToResponse()
		setup.Tenant, setup.Branch, setup.Admin = tenant, branch, &response
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.DocumentRecorded("tenant", "created")
	return setup, nil
}

// SetStatus activates or deactivates a tenant. Users of an inactive tenant
// are rejected on their next request.
func (s *tenantService) SetStatus(ctx context.Context, id uuid.UUID, actor Actor, req *SetTenantStatusRequest) (*model.Tenant, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.store.Tenants.SetActive(ctx, id, *req.IsActive, actor.Ref()); err != nil {
		return nil, notFound(err, apperror.ErrTenantNotFound)
	}

	tenant, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	action := "deactivated"
	if tenant.IsActive {
		action = "activated"
	}
	s.deps.Metrics.DocumentRecorded("tenant", action)
	s.deps.publish(id, "tenant", action, actor.Name, fmt.Sprintf("Tenant %s was %s", tenant.Name, action), tenant)
	return tenant, nil
}
