package money

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "1000", want: "1000.00"},
		{name: "two decimals", input: "250.50", want: "250.50"},
		{name: "one decimal", input: " 0.5 ", want: "0.50"},
		{name: "negative", input: "-12.34", want: "-12.34"},
		{name: "three decimals", input: "1.005", wantErr: true},
		{name: "garbage", input: "12,50", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "exponent", input: "1e2", wantErr: true},
		{name: "huge exponent", input: "1e20000000", wantErr: true},
		{name: "tiny exponent", input: "1e-20000000", wantErr: true},
		{name: "too many digits", input: "1234567890123456", wantErr: true},
		{name: "long fraction", input: "0." + strings.Repeat("0", 5000) + "1", wantErr: true},
		{name: "leading plus", input: "+5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, Format(got))
		})
	}
}

func TestParseRejectsExponentsQuickly(t *testing.T) {
	start := time.Now()
	for _, input := range []string{"1e-999999999", "1E999999999", "-9e-99999999"} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestCents(t *testing.T) {
	d := decimal.RequireFromString("250.50")
	assert.Equal(t, int64(25050), ToCents(d))
	assert.True(t, FromCents(25050).Equal(d))
	assert.Equal(t, "-0.40", Format(FromCents(-40)))
}

func TestWithinLimit(t *testing.T) {
	assert.True(t, WithinLimit(MaxAmount))
	assert.True(t, WithinLimit(MaxAmount.Neg()))
	assert.False(t, WithinLimit(MaxAmount.Add(decimal.RequireFromString("0.01"))))
}

func TestSum(t *testing.T) {
	total := Sum(
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("-0.05"),
	)
	assert.Equal(t, "0.25", Format(total))
	assert.True(t, Sum().IsZero())
}
