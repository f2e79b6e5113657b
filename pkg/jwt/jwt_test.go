package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour, "test")
	tenantID := uuid.New()
	userID := uuid.New()

	token, err := m.GenerateToken(Claims{
		UserID:       userID,
		TenantID:     &tenantID,
		Email:        "owner@shop.test",
		RoleCode:     "TENANT_ADMIN",
		Privileges:   []string{"purchase:view"},
		TokenVersion: "v1",
	})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tenantID, *claims.TenantID)
	assert.False(t, claims.SuperAdmin)
	assert.Equal(t, "test", claims.Issuer)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, err := NewManager("a", time.Hour, "test").GenerateToken(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour, "test").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewManager("secret", time.Hour, "test")
	m.ttl = -time.Minute

	token, err := m.GenerateToken(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateEmpty(t *testing.T) {
	_, err := NewManager("secret", time.Hour, "test").ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
