package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "purchase_return:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"

	PrivPartnerView   = "partner:view"
	PrivPartnerManage = "partner:manage"

	PrivBranchView   = "branch:view"
	PrivBranchManage = "branch:manage"

	PrivStockView = "stock:view"

	PrivPurchaseView   = "purchase:view"
	PrivPurchaseCreate = "purchase:create"
	PrivPurchasePay    = "purchase:pay"
	PrivPurchaseDelete = "purchase:delete"

	PrivSaleView   = "sale:view"
	PrivSaleCreate = "sale:create"

	PrivPurchaseReturnView   = "purchase_return:view"
	PrivPurchaseReturnCreate = "purchase_return:create"
	PrivPurchaseReturnUpdate = "purchase_return:update"
	PrivPurchaseReturnDelete = "purchase_return:delete"

	PrivSalesReturnView   = "sales_return:view"
	PrivSalesReturnCreate = "sales_return:create"
	PrivSalesReturnUpdate = "sales_return:update"
	PrivSalesReturnDelete = "sales_return:delete"

	PrivDashboardView = "dashboard:view"

	PrivTenantManage = "tenant:manage"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivPartnerView, Name: "View Suppliers and Customers"},
	{Code: PrivPartnerManage, Name: "Manage Suppliers and Customers"},
	{Code: PrivBranchView, Name: "View Branch"},
	{Code: PrivBranchManage, Name: "Manage Branch"},
	{Code: PrivStockView, Name: "View Stock"},
	{Code: PrivPurchaseView, Name: "View Purchase"},
	{Code: PrivPurchaseCreate, Name: "Create Purchase"},
	{Code: PrivPurchasePay, Name: "Record Purchase Payment"},
	{Code: PrivPurchaseDelete, Name: "Delete Purchase"},
	{Code: PrivSaleView, Name: "View Sale"},
	{Code: PrivSaleCreate, Name: "Create Sale"},
	{Code: PrivPurchaseReturnView, Name: "View Purchase Return"},
	{Code: PrivPurchaseReturnCreate, Name: "Create Purchase Return"},
	{Code: PrivPurchaseReturnUpdate, Name: "Update Purchase Return"},
	{Code: PrivPurchaseReturnDelete, Name: "Delete Purchase Return"},
	{Code: PrivSalesReturnView, Name: "View Sales Return"},
	{Code: PrivSalesReturnCreate, Name: "Create Sales Return"},
	{Code: PrivSalesReturnUpdate, Name: "Update Sales Return"},
	{Code: PrivSalesReturnDelete, Name: "Delete Sales Return"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivTenantManage, Name: "Manage Tenants"},
}
