package validation

import (
	"fmt"

	"github.com/kbukum/pipekit/errors"
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator accumulates field-level validation errors.
type Validator struct {
	errs []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a violation for a field.
func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any violations were recorded.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Errors returns the recorded violations.
func (v *Validator) Errors() []FieldError {
	return v.errs
}

// Validate returns an AppError summarizing all violations, or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	err := errors.Validation(fmt.Sprintf("%d validation error(s)", len(v.errs)))
	for _, fe := range v.errs {
		err = err.WithDetail(fe.Field, fe.Message)
	}
	return err
}

// Required checks that value is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if value == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength checks that value does not exceed maxLen.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return v
}

// OneOf checks that value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of %v", allowed))
	return v
}
