package model

import (
	"time"

	"github.com/google/uuid"
)

// Document type enum constants. The last three are system-generated by the
// engine as transition side effects, never uploaded by the applicant.
const (
	DocTypePAN             = "PAN"
	DocTypeAadhar          = "AADHAR"
	DocTypeDegree          = "DEGREE"
	DocTypeMarksheet       = "MARKSHEET"
	DocTypeExperienceCert  = "EXPERIENCE_CERTIFICATE"
	DocTypeISSECOACert     = "ISSE_COA_CERTIFICATE"
	DocTypePropertyTax     = "PROPERTY_TAX_RECEIPT"
	DocTypeSelfDeclaration = "SELF_DECLARATION"
	DocTypeProfilePicture  = "PROFILE_PICTURE"
	DocTypeAdditional      = "ADDITIONAL"

	DocTypeRecommendationForm = "RECOMMENDATION_FORM"
	DocTypeLicenseCertificate = "LICENSE_CERTIFICATE"
	DocTypePaymentChallan     = "PAYMENT_CHALLAN"
)

// Document is a typed file reference attached to an application. File content
// lives in the external document store; the core only records metadata and a
// content-addressable handle.
type Document struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index:idx_documents_app_type" json:"application_id"`
	DocType       string    `gorm:"type:varchar(30);not null;index:idx_documents_app_type" json:"doc_type"`
	FileName      string    `gorm:"type:varchar(255);not null" json:"file_name"`
	Size          int64     `json:"size"`
	ContentHash   string    `gorm:"type:varchar(64);not null" json:"content_hash"` // sha256 hex of content
	Verified      bool      `gorm:"default:false" json:"verified"`
	Generated     bool      `gorm:"default:false" json:"generated"` // true for engine-produced documents
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
