package model

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OTP verification failure reasons. The service layer wraps these into the
// workflow error taxonomy.
var (
	ErrOtpConsumed  = errors.New("otp session already consumed")
	ErrOtpExpired   = errors.New("otp session expired")
	ErrOtpMismatch  = errors.New("otp code mismatch")
	ErrOtpExhausted = errors.New("otp attempt limit reached")
)

const OtpMaxAttempts = 3

// OtpSession is the transient one-active-per-(application, role) signature
// session. Consumption must be compare-and-swap at the store level so two
// near-simultaneous verify attempts cannot both succeed.
type OtpSession struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index:idx_otp_app_role" json:"application_id"`
	Role          string    `gorm:"type:varchar(30);not null;index:idx_otp_app_role" json:"role"`
	Code          string    `gorm:"type:varchar(6);not null" json:"-"` // never serialized to callers
	TargetDocType string    `gorm:"type:varchar(30);not null" json:"target_doc_type"`
	Comments      string    `gorm:"type:text" json:"comments"`
	Consumed      bool      `gorm:"default:false" json:"consumed"`
	Attempts      int       `gorm:"default:0" json:"attempts"`
	ExpiresAt     time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Validate checks a submitted code against the session without mutating it.
// Consumption and attempt counting are persisted separately by the repository.
func (s *OtpSession) Validate(code string, now time.Time) error {
	if s.Consumed {
		return ErrOtpConsumed
	}
	if now.After(s.ExpiresAt) {
		return ErrOtpExpired
	}
	if s.Attempts >= OtpMaxAttempts {
		return ErrOtpExhausted
	}
	if subtle.ConstantTimeCompare([]byte(s.Code), []byte(code)) != 1 {
		return ErrOtpMismatch
	}
	return nil
}
