package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("delete account: %w", NewReferenceProtectedError("account has transactions"))

	assert.True(t, stderrors.Is(err, NewReferenceProtectedError("")))
	assert.False(t, stderrors.Is(err, NewNotFoundError("")))
	assert.True(t, HasCode(err, CodeReferenceProtected))
	assert.False(t, HasCode(stderrors.New("plain"), CodeReferenceProtected))
}

func TestAs(t *testing.T) {
	t.Run("keeps app errors", func(t *testing.T) {
		appErr := As(fmt.Errorf("wrapped: %w", NewConflictError("stale")))
		assert.Equal(t, CodeConflict, appErr.Code)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})

	t.Run("wraps plain errors as internal", func(t *testing.T) {
		cause := stderrors.New("disk full")
		appErr := As(cause)
		assert.Equal(t, CodeInternal, appErr.Code)
		assert.ErrorIs(t, appErr, cause)
	})
}

func TestWithDetail(t *testing.T) {
	base := NewFieldValidationError("amount", "amount must be greater than zero")
	extended := base.WithDetail("value", "0")

	assert.Equal(t, "amount", extended.Details["field"])
	assert.Equal(t, "0", extended.Details["value"])
	assert.NotContains(t, base.Details, "value")
	assert.Equal(t, "VALIDATION_ERROR: amount must be greater than zero", base.Error())
}
