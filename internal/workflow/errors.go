package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error taxonomy. Handlers map these onto HTTP codes with errors.Is; services
// wrap them with context via fmt.Errorf("%w").
var (
	ErrNotAuthorized   = errors.New("not permitted")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidOtp      = errors.New("invalid or expired otp")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("transition conflicts with current state")
	ErrExternalService = errors.New("external service failure")
)

// ValidationError carries field-level messages. errors.Is(err, ErrValidation)
// holds for every ValidationError.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}
