package repository

import (
	"context"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindInTenant(ctx context.Context, tenantID, id uuid.UUID) (*model.User, error)
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy string) error
	UpdatePrivileges(ctx context.Context, user *model.User, privileges []model.Privilege) error
	UpdateSession(ctx context.Context, userID uuid.UUID, tokenVersion string, seenAt time.Time) error
	UpdateLastSeen(ctx context.Context, userID uuid.UUID, seenAt time.Time) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Role").Preload("Privileges").Preload("Tenant")
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.preloaded(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.preloaded(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindInTenant(ctx context.Context, tenantID, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.preloaded(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindAll(ctx context.Context, tenantID uuid.UUID) ([]model.User, error) {
	var users []model.User
	if err := r.preloaded(ctx).Where("tenant_id = ?", tenantID).Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves scalar columns only; privileges go through UpdatePrivileges.
func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Privileges", "Role", "Tenant").Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, tenantID, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("tenant_id = ? AND id = ?", tenantID, id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.User{}).Error
	})
}

func (r *userRepo) UpdatePrivileges(ctx context.Context, user *model.User, privileges []model.Privilege) error {
	return r.db.WithContext(ctx).Model(user).Association("Privileges").Replace(privileges)
}

func (r *userRepo) UpdateSession(ctx context.Context, userID uuid.UUID, tokenVersion string, seenAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"token_version": tokenVersion, "last_seen_at": seenAt}).Error
}

func (r *userRepo) UpdateLastSeen(ctx context.Context, userID uuid.UUID, seenAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", seenAt).Error
}
