package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is the issued license certificate for an approved application.
// Generation is asynchronous — a row appears only once the background issuer
// has produced and stored the PDF.
type Certificate struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"application_id"`
	CertificateNo string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"certificate_no"`
	DocumentID    *uuid.UUID `gorm:"type:uuid" json:"document_id"`
	GeneratedAt   time.Time  `gorm:"not null" json:"generated_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
