package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/money"
)

// Validator provides validation functions for request data
type Validator interface {
	// Validate validates a struct or field based on validation tags
	Validate(i interface{}) error
}

// New creates a new validator
func New() Validator {
	v := playground.New(playground.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("isodate", func(fl playground.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("money", func(fl playground.FieldLevel) bool {
		d, err := money.Parse(fl.Field().String())
		return err == nil && money.WithinLimit(d)
	})

	return &playgroundValidator{validate: v}
}

type playgroundValidator struct {
	validate *playground.Validate
}

func (v *playgroundValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.NewInvalidInputError("request could not be validated", err)
	}

	first := fieldErrs[0]
	return errors.NewFieldValidationError(first.Field(), describe(first))
}

func describe(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hexadecimal color like #EF4444", fe.Field())
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "money":
		return fmt.Sprintf("%s must be a decimal with at most 2 decimal places and magnitude up to %s", fe.Field(), money.Format(money.MaxAmount))
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}
