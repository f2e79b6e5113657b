package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDueAmountClampsAtZero(t *testing.T) {
	total := decimal.NewFromInt(100)

	assert.True(t, DueAmount(total, decimal.NewFromInt(40)).Equal(decimal.NewFromInt(60)))
	assert.True(t, DueAmount(total, decimal.NewFromInt(100)).IsZero())
	assert.True(t, DueAmount(total, decimal.NewFromInt(130)).IsZero())
}

func TestPaymentStatusFor(t *testing.T) {
	cases := []struct {
		name string
		paid int64
		due  int64
		want PaymentStatus
	}{
		{"nothing paid", 0, 100, PaymentUnpaid},
		{"partly paid", 40, 60, PaymentPartial},
		{"fully paid", 100, 0, PaymentPaid},
		{"overpaid", 130, 0, PaymentPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PaymentStatusFor(decimal.NewFromInt(tc.paid), decimal.NewFromInt(tc.due))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRolePrivilegeCodes(t *testing.T) {
	assert.Len(t, RolePrivilegeCodes(RoleSuperAdmin), len(DefaultPrivileges))
	assert.NotContains(t, RolePrivilegeCodes(RoleTenantAdmin), PrivTenantManage)

	staff := RolePrivilegeCodes(RoleStaff)
	assert.Contains(t, staff, PrivPurchaseReturnCreate)
	assert.NotContains(t, staff, PrivPurchaseReturnDelete)
	assert.NotContains(t, staff, PrivUserCreate)
}
