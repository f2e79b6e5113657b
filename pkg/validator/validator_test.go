package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Qty       int             `json:"qty" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

type payload struct {
	OwnerID uuid.UUID `json:"ownerId" validate:"uuid_required"`
	Items   []line    `json:"items" validate:"required,min=1,dive"`
}

func TestValidateStructAcceptsValidPayload(t *testing.T) {
	p := payload{
		OwnerID: uuid.New(),
		Items:   []line{{ProductID: uuid.NewString(), Qty: 2, Price: decimal.NewFromInt(10)}},
	}
	assert.Empty(t, ValidateStruct(&p))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	p := payload{
		Items: []line{{ProductID: "not-a-uuid", Qty: 0, Price: decimal.NewFromInt(-1)}},
	}

	errs := ValidateStruct(&p)
	require.Len(t, errs, 4)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.FailedField)
	}
	assert.ElementsMatch(t, []string{"ownerId", "items[0].productId", "items[0].qty", "items[0].price"}, fields)
}

func TestValidateStructRequiresItems(t *testing.T) {
	errs := ValidateStruct(&payload{OwnerID: uuid.New()})
	require.Len(t, errs, 1)
	assert.Equal(t, "items", errs[0].FailedField)
}
