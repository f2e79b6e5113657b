package repository

import (
	"context"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	FindAll(ctx context.Context, search string, page PageRequest) ([]model.Tenant, int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) error
}

type tenantRepo struct {
	db *gorm.DB
}

func NewTenantRepo(db *gorm.DB) TenantRepository {
	return &tenantRepo{db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepo) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepo) FindAll(ctx context.Context, search string, page PageRequest) ([]model.Tenant, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Tenant{})
	if search != "" {
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(slug) LIKE ?)", likePattern(search), likePattern(search))
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenants []model.Tenant
	err := base.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&tenants).Error
	return tenants, total, err
}

func (r *tenantRepo) SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_by": updatedBy})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type BranchRepository interface {
	Create(ctx context.Context, branch *model.Branch) error
	Update(ctx context.Context, branch *model.Branch) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Branch, error)
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.Branch, error)
}

type branchRepo struct {
	db *gorm.DB
}

func NewBranchRepo(db *gorm.DB) BranchRepository {
	return &branchRepo{db}
}

func (r *branchRepo) Create(ctx context.Context, branch *model.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *branchRepo) Update(ctx context.Context, branch *model.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

func (r *branchRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Branch, error) {
	var branch model.Branch
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name ASC").Find(&branches).Error
	return branches, err
}
