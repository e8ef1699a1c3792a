package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
)

// DateLayout is the ISO 8601 calendar date layout used for transaction dates
const DateLayout = "2006-01-02"

var (
	// DateRegex validates ISO 8601 date strings (YYYY-MM-DD)
	DateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidateISODate validates an ISO 8601 date string (YYYY-MM-DD)
func ValidateISODate(date string) error {
	if !DateRegex.MatchString(date) {
		return errors.NewValidationError("invalid date format, should be YYYY-MM-DD")
	}

	// Parse the date to ensure it's valid
	_, err := time.Parse(DateLayout, date)
	if err != nil {
		return errors.NewValidationError("invalid date value")
	}

	return nil
}

// ValidateNotFutureDate rejects dates after today's calendar date
func ValidateNotFutureDate(date string, now time.Time) error {
	if err := ValidateISODate(date); err != nil {
		return err
	}
	// Both sides are YYYY-MM-DD so lexical order is chronological order
	if date > now.Format(DateLayout) {
		return errors.NewFieldValidationError("date", "transaction date cannot be in the future")
	}
	return nil
}

// NormalizeColor trims and upper-cases a color so #ef4444 and #EF4444 are stored alike
func NormalizeColor(color string) string {
	return strings.ToUpper(strings.TrimSpace(color))
}

// ValidateRequiredString validates that a string is not empty
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewFieldValidationError(fieldName, fieldName+" is required")
	}
	return nil
}

// ValidateLength checks the rune length of a trimmed value
func ValidateLength(value, fieldName string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < minLen {
		return errors.NewFieldValidationError(fieldName, fmt.Sprintf("%s must have at least %d characters", fieldName, minLen))
	}
	if maxLen > 0 && n > maxLen {
		return errors.NewFieldValidationError(fieldName, fmt.Sprintf("%s cannot have more than %d characters", fieldName, maxLen))
	}
	return nil
}
