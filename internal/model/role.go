package model

// Role represents user roles in the system
type Role struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Code         string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name         string      `gorm:"type:varchar(100)" json:"name"`
	Description  string      `gorm:"type:text" json:"description"`
	IsSuperAdmin bool        `gorm:"default:false" json:"isSuperAdmin"`
	Privileges   []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleTenantAdmin = "TENANT_ADMIN"
	RoleStaff       = "STAFF"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:         RoleSuperAdmin,
		Name:         "Super Administrator",
		Description:  "Platform operator; manages tenants",
		IsSuperAdmin: true,
	},
	{
		Code:        RoleTenantAdmin,
		Name:        "Tenant Administrator",
		Description: "Full access within one tenant",
	},
	{
		Code:        RoleStaff,
		Name:        "Staff",
		Description: "Day-to-day purchasing, selling and returns",
	},
}

// RolePrivilegeCodes decides which privileges a seeded role receives.
func RolePrivilegeCodes(roleCode string) []string {
	codes := make([]string, 0, len(DefaultPrivileges))
	for _, p := range DefaultPrivileges {
		switch roleCode {
		case RoleSuperAdmin:
			codes = append(codes, p.Code)
		case RoleTenantAdmin:
			if p.Code != PrivTenantManage {
				codes = append(codes, p.Code)
			}
		case RoleStaff:
			if staffPrivileges[p.Code] {
				codes = append(codes, p.Code)
			}
		}
	}
	return codes
}

var staffPrivileges = map[string]bool{
	PrivProductView:          true,
	PrivPartnerView:          true,
	PrivBranchView:           true,
	PrivStockView:            true,
	PrivPurchaseView:         true,
	PrivPurchaseCreate:       true,
	PrivSaleView:             true,
	PrivSaleCreate:           true,
	PrivPurchaseReturnView:   true,
	PrivPurchaseReturnCreate: true,
	PrivSalesReturnView:      true,
	PrivSalesReturnCreate:    true,
	PrivDashboardView:        true,
}
