package apperror

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetailsKeepsIdentity(t *testing.T) {
	err := Validation([]string{"items"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"items"}, err.Details)
	assert.Nil(t, ErrValidation.Details, "sentinel must not be mutated")
}

func TestAsUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("deleting return: %w", ErrReturnNotFound)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "RETURN_NOT_FOUND", appErr.Code)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestIsComparesCode(t *testing.T) {
	assert.ErrorIs(t, ErrForbidden.WithMessage("requires tenant:manage"), ErrForbidden)
	assert.NotErrorIs(t, ErrForbidden, ErrUnauthorized)
}
