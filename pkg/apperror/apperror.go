// Package apperror defines the coded errors shared by services, middleware and handlers.
package apperror

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status and a stable machine-readable code.
type AppError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is matches on Code so copies made by WithDetails/WithMessage still satisfy errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of e with a different message.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Validation wraps field-level failures into a VALIDATION_ERROR.
func Validation(details interface{}) *AppError {
	return ErrValidation.WithDetails(details)
}

var (
	ErrValidation  = New(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed")
	ErrInvalidID   = New(http.StatusBadRequest, "INVALID_ID", "Invalid identifier")
	ErrInvalidJSON = New(http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")

	ErrAuthRequired       = New(http.StatusUnauthorized, "AUTH_REQUIRED", "Missing authorization token")
	ErrUnauthorized       = New(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrUserInactive       = New(http.StatusUnauthorized, "USER_INACTIVE", "User account is inactive")
	ErrSessionExpired     = New(http.StatusUnauthorized, "SESSION_EXPIRED", "Session expired")
	ErrWrongPassword      = New(http.StatusBadRequest, "WRONG_PASSWORD", "Current password is incorrect")

	ErrTenantContextRequired = New(http.StatusForbidden, "TENANT_CONTEXT_REQUIRED", "Tenant context is required")
	ErrTenantInactive        = New(http.StatusForbidden, "TENANT_INACTIVE", "Tenant is inactive")
	ErrForbidden             = New(http.StatusForbidden, "FORBIDDEN", "Forbidden")

	ErrReturnNotFound   = New(http.StatusNotFound, "RETURN_NOT_FOUND", "Return not found")
	ErrPurchaseNotFound = New(http.StatusNotFound, "PURCHASE_NOT_FOUND", "Purchase not found")
	ErrSaleNotFound     = New(http.StatusNotFound, "SALE_NOT_FOUND", "Sale not found")
	ErrSupplierNotFound = New(http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found")
	ErrCustomerNotFound = New(http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	ErrProductNotFound  = New(http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	ErrBranchNotFound   = New(http.StatusNotFound, "BRANCH_NOT_FOUND", "Branch not found")
	ErrUserNotFound     = New(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	ErrRoleNotFound     = New(http.StatusNotFound, "ROLE_NOT_FOUND", "Role not found")
	ErrTenantNotFound   = New(http.StatusNotFound, "TENANT_NOT_FOUND", "Tenant not found")
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")

	ErrPurchaseReceived    = New(http.StatusConflict, "PURCHASE_ALREADY_RECEIVED", "Cannot delete a purchase that has been received")
	ErrPurchaseHasPayments = New(http.StatusConflict, "PURCHASE_HAS_PAYMENTS", "Cannot delete a purchase with recorded payments")
	ErrInsufficientStock   = New(http.StatusConflict, "INSUFFICIENT_STOCK", "Insufficient stock")
	ErrDuplicate           = New(http.StatusConflict, "DUPLICATE", "Resource already exists")

	ErrInternal = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
)
