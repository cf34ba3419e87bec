package otpauth

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type emailInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type otpInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	OTP   string `json:"otp" validate:"required,numeric,min=4,max=10"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type newPasswordInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeEmail trims and lower-cases an email so that every key and
// credential lookup uses the same identity.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateInput runs struct validation and maps failures to INVALID_INPUT
// with one detail per field.
func (e *Engine) validateInput(in any) error {
	err := e.validate.Struct(in)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return ErrInvalidInput
	}

	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		details[fe.Field()] = fieldMessage(fe)
	}
	return ErrInvalidInput.WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email format"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "numeric":
		return field + " must contain only numbers"
	default:
		return field + " is invalid"
	}
}
