package repository

import (
	"context"
	"errors"
	"fmt"

	"go-retail-pos/internal/model"

	"gorm.io/gorm"
)

// SeedResult reports what Seed created so the caller can log it.
type SeedResult struct {
	AdminCreated bool
	AdminEmail   string
}

// Seed creates the default privileges and roles, tops up each role with its
// default privilege set, and creates the platform super admin if missing.
func Seed(ctx context.Context, store *Store, adminEmail, adminPassword string) (*SeedResult, error) {
	if err := store.Privileges.SeedDefaults(ctx); err != nil {
		return nil, fmt.Errorf("seed privileges: %w", err)
	}
	if err := store.Roles.SeedDefaults(ctx); err != nil {
		return nil, fmt.Errorf("seed roles: %w", err)
	}

	for _, def := range model.DefaultRoles {
		role, err := store.Roles.FindByCode(ctx, def.Code)
		if err != nil {
			return nil, fmt.Errorf("load role %s: %w", def.Code, err)
		}
		if len(role.Privileges) > 0 {
			continue
		}
		privileges, err := store.Privileges.FindByCodes(ctx, model.RolePrivilegeCodes(def.Code))
		if err != nil {
			return nil, err
		}
		if err := store.Roles.ReplacePrivileges(ctx, role, privileges); err != nil {
			return nil, fmt.Errorf("assign privileges to %s: %w", def.Code, err)
		}
	}

	result := &SeedResult{AdminEmail: adminEmail}
	_, err := store.Users.FindByEmail(ctx, adminEmail)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	superRole, err := store.Roles.FindByCode(ctx, model.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	admin := &model.User{
		Email:      adminEmail,
		FullName:   "Platform Administrator",
		RoleID:     &superRole.ID,
		IsActive:   true,
		Privileges: superRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(adminPassword); err != nil {
		return nil, err
	}
	if err := store.Users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	result.AdminCreated = true
	return result, nil
}
