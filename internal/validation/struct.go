package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"agora/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "username", ValidateUsername)
	mustRegister(v, "password", ValidatePassword)
	mustRegister(v, "account_email", ValidateEmail)
	return v
}

func mustRegister(v *validator.Validate, tag string, check func(string) error) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return check(fl.Field().String()) == nil
	})
	if err != nil {
		panic(err)
	}
}

// Struct validates a request body against its `validate` tags and returns a
// models.AppError with code VALIDATION_ERROR describing the first failure.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("invalid request body")
	}
	return models.NewValidationError(message(fieldErrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	value := stringValue(fe.Value())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "username":
		return ValidateUsername(value).Error()
	case "password":
		return ValidatePassword(value).Error()
	case "account_email", "email":
		return "invalid email format"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return fmt.Sprint(v)
}
