package handlers

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{1,30}$`)
	linkedinRegex = regexp.MustCompile(`^(https?://(www\.)?linkedin\.com/.*|[a-zA-Z0-9-]{1,30})$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// username: alphanumerics and hyphens, at most 30 characters
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})

	// website: a LinkedIn URL or a bare handle
	_ = v.RegisterValidation("linkedin", func(fl validator.FieldLevel) bool {
		return linkedinRegex.MatchString(fl.Field().String())
	})

	// phone: 10-15 digits, optional leading +
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})

	return v
}

// ValidateRequest validates a request struct, returning a user-friendly
// message for the first failing field.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return fmt.Errorf("validation failed: %s: %s", ve[0].Field(), formatValidationError(ve[0]))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "handle":
		return "only alphanumeric characters and hyphens are allowed (max 30 characters)"
	case "linkedin":
		return "must be a valid LinkedIn URL or username"
	case "phone":
		return "must be between 10 and 15 digits and may start with +"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
