package validator

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	// amounts are validated as numbers so gt/gte/lte tags apply to them
	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	return validator
}

func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	f, _ := d.Float64()

	return f
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", err.Param())
		}
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", err.Param())
		}
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "unique":
		return "must not contain duplicates"
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", err.Param())
	default:
		return "is invalid"
	}
}
