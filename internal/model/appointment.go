package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is the zero-or-one active review appointment per application
// while the record sits in the Junior Engineer stage. It becomes inert once
// document verification advances the record past the JE stage.
type Appointment struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"application_id"`
	ReviewDate    time.Time `gorm:"not null" json:"review_date"`
	Place         string    `gorm:"type:varchar(255);not null" json:"place"`
	RoomNumber    string    `gorm:"type:varchar(30);not null" json:"room_number"`
	ContactPerson string    `gorm:"type:varchar(255);not null" json:"contact_person"`
	Comments      string    `gorm:"type:text" json:"comments"`
	Active        bool      `gorm:"default:true;index" json:"active"`

	Reschedules []AppointmentReschedule `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"reschedules"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AppointmentReschedule is one entry in the reschedule history
type AppointmentReschedule struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	Reason        string    `gorm:"type:text;not null" json:"reason"`
	PreviousDate  time.Time `gorm:"not null" json:"previous_date"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
