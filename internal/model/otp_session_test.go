package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func activeSession() OtpSession {
	return OtpSession{
		Code:      "483920",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
}

func TestOtpValidateAcceptsCorrectCode(t *testing.T) {
	s := activeSession()
	assert.NoError(t, s.Validate("483920", time.Now()))
}

func TestOtpValidateRejectsWrongCode(t *testing.T) {
	s := activeSession()
	assert.ErrorIs(t, s.Validate("000000", time.Now()), ErrOtpMismatch)
}

func TestOtpValidateRejectsConsumedSession(t *testing.T) {
	s := activeSession()
	s.Consumed = true
	assert.ErrorIs(t, s.Validate("483920", time.Now()), ErrOtpConsumed)
}

func TestOtpValidateRejectsExpiredSession(t *testing.T) {
	s := activeSession()
	assert.ErrorIs(t, s.Validate("483920", s.ExpiresAt.Add(time.Second)), ErrOtpExpired)
}

func TestOtpValidateEnforcesAttemptLimit(t *testing.T) {
	s := activeSession()
	s.Attempts = OtpMaxAttempts
	// Even the correct code is rejected once the limit is reached.
	assert.ErrorIs(t, s.Validate("483920", time.Now()), ErrOtpExhausted)
}

func TestOtpValidateChecksOrder(t *testing.T) {
	// Consumed wins over expired: a consumed session never reports a softer
	// failure that might invite a retry.
	s := activeSession()
	s.Consumed = true
	s.ExpiresAt = time.Now().Add(-time.Minute)
	assert.ErrorIs(t, s.Validate("483920", time.Now()), ErrOtpConsumed)
}
