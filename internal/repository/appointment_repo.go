package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	FindActiveByApplication(ctx context.Context, appID uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	AppendReschedule(ctx context.Context, entry *model.AppointmentReschedule) error
	// Deactivate makes the appointment inert once document verification moves
	// the record past the JE stage.
	Deactivate(ctx context.Context, appID uuid.UUID) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return GetDB(ctx, r.db).Create(appt).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appt model.Appointment
	if err := GetDB(ctx, r.db).Preload("Reschedules").First(&appt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindActiveByApplication(ctx context.Context, appID uuid.UUID) (*model.Appointment, error) {
	var appt model.Appointment
	err := GetDB(ctx, r.db).Preload("Reschedules").
		First(&appt, "application_id = ? AND active = ?", appID, true).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	return GetDB(ctx, r.db).Save(appt).Error
}

func (r *appointmentRepository) AppendReschedule(ctx context.Context, entry *model.AppointmentReschedule) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *appointmentRepository) Deactivate(ctx context.Context, appID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Appointment{}).
		Where("application_id = ? AND active = ?", appID, true).
		Update("active", false).Error
}
