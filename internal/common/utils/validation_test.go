package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNotFutureDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)

	assert.NoError(t, ValidateNotFutureDate("2024-03-15", now))
	assert.NoError(t, ValidateNotFutureDate("2023-12-31", now))

	err := ValidateNotFutureDate("2024-03-16", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")

	assert.Error(t, ValidateNotFutureDate("2024-02-30", now))
	assert.Error(t, ValidateNotFutureDate("15/03/2024", now))
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "#EF4444", NormalizeColor(" #ef4444 "))
	assert.Equal(t, "RED", NormalizeColor("red"))
}

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength("Nubank", "name", 2, 100))
	assert.Error(t, ValidateLength(" a ", "name", 2, 100))
	assert.Error(t, ValidateLength("abcdef", "name", 2, 5))
	assert.NoError(t, ValidateLength("Saúde", "name", 2, 5))
	assert.Error(t, ValidateRequiredString("   ", "name"))
}
