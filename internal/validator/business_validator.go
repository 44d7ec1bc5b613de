package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// registerBusinessRules registers custom rule validators for course server
// creation and join requests.
func (v *Validator) registerBusinessRules() {
	// Course name validation (3-200 characters after trimming)
	v.validate.RegisterValidation("course_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 3 && len(name) <= 200
	})

	// Year validation (at least 4 characters, e.g. "2025")
	v.validate.RegisterValidation("course_year", func(fl validator.FieldLevel) bool {
		year := strings.TrimSpace(fl.Field().String())
		return len(year) >= 4 && len(year) <= 10
	})

	// Join code validation (non-empty after trimming; shape is checked
	// against storage, a malformed code simply never matches)
	v.validate.RegisterValidation("join_code", func(fl validator.FieldLevel) bool {
		code := strings.TrimSpace(fl.Field().String())
		return len(code) >= 1 && len(code) <= 20
	})
}
