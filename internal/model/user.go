package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user in the system.
// Platform operators have no tenant; everyone else belongs to exactly one.
type User struct {
	BaseModel
	TenantID     *uuid.UUID  `gorm:"type:uuid;index" json:"tenantId"`
	Tenant       *Tenant     `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string      `gorm:"type:varchar(255)" json:"fullName"`
	PhoneNumber  string      `gorm:"type:varchar(20)" json:"phoneNumber"`
	RoleID       *uint       `gorm:"index" json:"roleId"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"isActive"`
	Privileges   []Privilege `gorm:"many2many:user_privileges;" json:"privileges,omitempty"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
	LastSeenAt   *time.Time  `json:"lastSeenAt,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) HasPrivilege(code string) bool {
	for _, p := range u.Privileges {
		if p.Code == code {
			return true
		}
	}
	return false
}

func (u *User) GetPrivilegeCodes() []string {
	codes := make([]string, len(u.Privileges))
	for i, p := range u.Privileges {
		codes[i] = p.Code
	}
	return codes
}

// IsSuperAdmin reads the role flag; role names are display text only.
func (u *User) IsSuperAdmin() bool {
	return u.Role != nil && u.Role.IsSuperAdmin
}

func (u *User) RoleCode() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Code
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    *uuid.UUID  `json:"tenantId"`
	Email       string      `json:"email"`
	FullName    string      `json:"fullName"`
	PhoneNumber string      `json:"phoneNumber"`
	RoleID      *uint       `json:"roleId,omitempty"`
	Role        *Role       `json:"role,omitempty"`
	IsActive    bool        `json:"isActive"`
	LastSeenAt  *time.Time  `json:"lastSeenAt,omitempty"`
	Privileges  []Privilege `json:"privileges"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		RoleID:      u.RoleID,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastSeenAt:  u.LastSeenAt,
		Privileges:  u.Privileges,
	}
}
