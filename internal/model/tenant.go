package model

import "github.com/google/uuid"

// Tenant is the isolation boundary; every business row carries its ID.
type Tenant struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Slug     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Email    string `gorm:"type:varchar(255)" json:"email"`
	Phone    string `gorm:"type:varchar(30)" json:"phone"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

// Branch is a store location; stock is counted per branch.
type Branch struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_branch_tenant_code" json:"tenantId"`
	Code     string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_branch_tenant_code" json:"code"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Address  string    `gorm:"type:text" json:"address"`
	Phone    string    `gorm:"type:varchar(30)" json:"phone"`
	IsActive bool      `gorm:"not null" json:"isActive"`
}
