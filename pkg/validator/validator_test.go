package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
)

type sampleRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=10"`
	Kind   string `json:"kind" validate:"required,oneof=income expense"`
	Color  string `json:"color,omitempty" validate:"omitempty,hexcolor,len=7"`
	Date   string `json:"date,omitempty" validate:"omitempty,isodate"`
	Amount string `json:"amount,omitempty" validate:"omitempty,money"`
}

func TestValidate(t *testing.T) {
	v := New()

	t.Run("valid request", func(t *testing.T) {
		err := v.Validate(&sampleRequest{Name: "Food", Kind: "expense", Color: "#EF4444", Date: "2024-03-01", Amount: "12.50"})
		assert.NoError(t, err)
	})

	tests := []struct {
		name  string
		req   sampleRequest
		field string
	}{
		{name: "missing name", req: sampleRequest{Kind: "income"}, field: "name"},
		{name: "short name", req: sampleRequest{Name: "F", Kind: "income"}, field: "name"},
		{name: "bad kind", req: sampleRequest{Name: "Food", Kind: "transfer"}, field: "kind"},
		{name: "bad color", req: sampleRequest{Name: "Food", Kind: "income", Color: "red"}, field: "color"},
		{name: "short color", req: sampleRequest{Name: "Food", Kind: "income", Color: "#FFF"}, field: "color"},
		{name: "exponent amount", req: sampleRequest{Name: "Food", Kind: "income", Amount: "1e-20000000"}, field: "amount"},
		{name: "bad date", req: sampleRequest{Name: "Food", Kind: "income", Date: "01/03/2024"}, field: "date"},
		{name: "too many decimals", req: sampleRequest{Name: "Food", Kind: "income", Amount: "1.001"}, field: "amount"},
		{name: "over the limit", req: sampleRequest{Name: "Food", Kind: "income", Amount: "100000000.00"}, field: "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeValidation))
			assert.Equal(t, tt.field, errors.As(err).Details["field"])
		})
	}
}
