package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PositionType enum constants — fixed at creation, determine the fee and the
// required document set.
const (
	PositionArchitect          = "ARCHITECT"
	PositionLicenceEngineer    = "LICENCE_ENGINEER"
	PositionStructuralEngineer = "STRUCTURAL_ENGINEER"
	PositionSupervisorGrade1   = "SUPERVISOR_GRADE1"
	PositionSupervisorGrade2   = "SUPERVISOR_GRADE2"
)

// Address is embedded twice on Application (local + permanent)
type Address struct {
	Line1   string `gorm:"type:varchar(255)" json:"line1"`
	Line2   string `gorm:"type:varchar(255)" json:"line2"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	State   string `gorm:"type:varchar(100)" json:"state"`
	Pincode string `gorm:"type:varchar(10)" json:"pincode"`
}

// Application is one license application and its lifecycle state.
// Status holds a workflow.Status integer code — the authoritative workflow
// position; it only changes through the transition engine.
type Application struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationNo string    `gorm:"type:varchar(30);uniqueIndex" json:"application_no"` // assigned on first submission, stable thereafter
	ApplicantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"applicant_id"`
	Applicant     *User     `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`

	PositionType string `gorm:"type:varchar(30);not null;index" json:"position_type"`
	Status       int    `gorm:"not null;index" json:"status"`

	FullName   string `gorm:"type:varchar(255)" json:"full_name"`
	FatherName string `gorm:"type:varchar(255)" json:"father_name"`
	Email      string `gorm:"type:varchar(255)" json:"email"`
	Phone      string `gorm:"type:varchar(20)" json:"phone"`

	PANNumber    string `gorm:"type:varchar(20)" json:"pan_number"`
	AadharNumber string `gorm:"type:varchar(20)" json:"aadhar_number"`
	COANumber    string `gorm:"type:varchar(30)" json:"coa_number"` // Council of Architecture reg no, optional

	LocalAddress         Address `gorm:"embedded;embeddedPrefix:local_" json:"local_address"`
	PermanentAddress     Address `gorm:"embedded;embeddedPrefix:permanent_" json:"permanent_address"`
	PermanentSameAsLocal bool    `json:"permanent_same_as_local"`

	Qualifications []Qualification `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"qualifications"`
	Experiences    []Experience    `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"experiences"`
	Documents      []Document      `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"documents"`

	// Payment gate. Once PaymentDone is set it persists across resubmission.
	FeeAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"fee_amount"`
	PaymentDone bool            `gorm:"default:false" json:"payment_done"`
	PaymentRef  string          `gorm:"type:varchar(100)" json:"payment_ref"`
	ChallanNo   string          `gorm:"type:varchar(30)" json:"challan_no"`
	PaidAt      *time.Time      `json:"paid_at"`

	CertificateID *uuid.UUID `gorm:"type:uuid" json:"certificate_id"`

	// Rejection metadata — stage-scoped, cleared on resubmission.
	RejectedByRole    string `gorm:"type:varchar(30)" json:"rejected_by_role"`
	RejectedAtStatus  int    `gorm:"default:0" json:"rejected_at_status"`
	RejectionComments string `gorm:"type:text" json:"rejection_comments"`

	SubmittedAt *time.Time     `json:"submitted_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Qualification is one academic qualification row on an application
type Qualification struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"application_id"`
	Degree        string    `gorm:"type:varchar(100);not null" json:"degree"`
	University    string    `gorm:"type:varchar(255)" json:"university"`
	PassingYear   int       `json:"passing_year"`
	Grade         string    `gorm:"type:varchar(20)" json:"grade"`
}

// Experience is one professional experience row on an application
type Experience struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"application_id"`
	Organization  string     `gorm:"type:varchar(255);not null" json:"organization"`
	Designation   string     `gorm:"type:varchar(100)" json:"designation"`
	FromDate      time.Time  `json:"from_date"`
	ToDate        *time.Time `json:"to_date"` // nil = current employment
	Details       string     `gorm:"type:text" json:"details"`
}
