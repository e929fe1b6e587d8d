package usecase

import (
	"errors"
	"fmt"

	"artisan-marketplace/pkg/utils"
)

// Error kinds surfaced to handlers. Match with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrAmbiguous      = errors.New("ambiguous")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
)

// ValidationError carries per-field messages keyed by json field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), utils.FormatValidationErrors(e.Fields))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// validate runs struct validation and wraps the result.
func validate(v any) error {
	if errs := utils.ValidateStruct(v); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

func notFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

func forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, msg)
}
