package workflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMessageIsDeterministic(t *testing.T) {
	err := NewValidationError(map[string]string{
		"room_number": "required",
		"place":       "required",
	})
	// Fields render sorted so log lines and API payloads are stable.
	assert.Equal(t, "validation failed: place: required; room_number: required", err.Error())
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("saving draft: %w", NewValidationError(map[string]string{"email": "invalid format"}))
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid format", verr.Fields["email"])
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotAuthorized, ErrValidation, ErrInvalidOtp, ErrNotFound, ErrConflict, ErrExternalService}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b))
			}
		}
	}
}
