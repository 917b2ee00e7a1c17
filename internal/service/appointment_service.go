package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRequest struct {
	ReviewDate    time.Time `json:"review_date" binding:"required"`
	Place         string    `json:"place" binding:"required"`
	ContactPerson string    `json:"contact_person" binding:"required"`
	RoomNumber    string    `json:"room_number" binding:"required"`
	Comments      string    `json:"comments"`
}

type RescheduleRequest struct {
	NewReviewDate time.Time `json:"new_review_date" binding:"required"`
	Reason        string    `json:"reason" binding:"required"`
	Place         string    `json:"place" binding:"required"`
	ContactPerson string    `json:"contact_person" binding:"required"`
	RoomNumber    string    `json:"room_number" binding:"required"`
}

type AppointmentResponse struct {
	ID            string                        `json:"id"`
	ApplicationID string                        `json:"application_id"`
	ReviewDate    time.Time                     `json:"review_date"`
	Place         string                        `json:"place"`
	ContactPerson string                        `json:"contact_person"`
	RoomNumber    string                        `json:"room_number"`
	Comments      string                        `json:"comments,omitempty"`
	Active        bool                          `json:"active"`
	Reschedules   []model.AppointmentReschedule `json:"reschedules,omitempty"`
}

type AppointmentService interface {
	Schedule(ctx context.Context, appID string, actor workflow.Actor, req ScheduleRequest) (*AppointmentResponse, error)
	Reschedule(ctx context.Context, appID string, actor workflow.Actor, req RescheduleRequest) (*AppointmentResponse, error)
	GetActive(ctx context.Context, appID string, actor workflow.Actor) (*AppointmentResponse, error)
}

type appointmentService struct {
	db       *gorm.DB
	tx       repository.TransactionManager
	apps     repository.ApplicationRepository
	appts    repository.AppointmentRepository
	audit    repository.AuditRepository
	notifier Notifier
}

func NewAppointmentService(
	db *gorm.DB,
	tx repository.TransactionManager,
	apps repository.ApplicationRepository,
	appts repository.AppointmentRepository,
	audit repository.AuditRepository,
	notifier Notifier,
) AppointmentService {
	return &appointmentService{
		db:       db,
		tx:       tx,
		apps:     apps,
		appts:    appts,
		audit:    audit,
		notifier: notifierOrNoop(notifier),
	}
}

// Schedule books the document review meeting and moves the record into the
// appointment stage. One active appointment per application.
func (s *appointmentService) Schedule(ctx context.Context, appID string, actor workflow.Actor, req ScheduleRequest) (*AppointmentResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	var appt model.Appointment
	var applicantID uuid.UUID
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockApplication(txCtx, id)
		if err != nil {
			return err
		}

		intent, err := workflow.Decide(workflow.Request{
			Status:   workflow.Status(app.Status),
			Position: app.PositionType,
			Action:   workflow.ActionSchedule,
			Actor:    actor,
			Schedule: &workflow.SchedulePayload{
				ReviewDate:    req.ReviewDate,
				Place:         req.Place,
				ContactPerson: req.ContactPerson,
				RoomNumber:    req.RoomNumber,
				Comments:      req.Comments,
			},
		})
		if err != nil {
			return err
		}

		appt = model.Appointment{
			ApplicationID: app.ID,
			ReviewDate:    req.ReviewDate,
			Place:         req.Place,
			ContactPerson: req.ContactPerson,
			RoomNumber:    req.RoomNumber,
			Comments:      req.Comments,
			Active:        true,
		}
		if err := s.appts.Create(txCtx, &appt); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		app.Status = int(intent.To)
		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		applicantID = app.ApplicantID
		return s.logAudit(txCtx, actor, model.ActionSchedule, app, map[string]interface{}{
			"review_date": req.ReviewDate,
			"place":       req.Place,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toAppointmentResponse(&appt)
	s.notifier.NotifyUser(applicantID.String(), EventAppointmentScheduled, resp)
	return resp, nil
}

// Reschedule moves an existing appointment to a new date. The status stays
// put; the previous date and the stated reason go into the reschedule
// history and the applicant is re-notified.
func (s *appointmentService) Reschedule(ctx context.Context, appID string, actor workflow.Actor, req RescheduleRequest) (*AppointmentResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	var apptID uuid.UUID
	var applicantID uuid.UUID
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockApplication(txCtx, id)
		if err != nil {
			return err
		}

		if _, err := workflow.Decide(workflow.Request{
			Status:   workflow.Status(app.Status),
			Position: app.PositionType,
			Action:   workflow.ActionReschedule,
			Actor:    actor,
			Reschedule: &workflow.ReschedulePayload{
				NewReviewDate: req.NewReviewDate,
				Reason:        req.Reason,
				Place:         req.Place,
				ContactPerson: req.ContactPerson,
				RoomNumber:    req.RoomNumber,
			},
		}); err != nil {
			return err
		}

		appt, err := s.appts.FindActiveByApplication(txCtx, app.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no active appointment for application %s", workflow.ErrNotFound, appID)
			}
			return err
		}

		history := model.AppointmentReschedule{
			AppointmentID: appt.ID,
			PreviousDate:  appt.ReviewDate,
			Reason:        req.Reason,
		}
		if err := s.appts.AppendReschedule(txCtx, &history); err != nil {
			return fmt.Errorf("failed to record reschedule: %w", err)
		}

		appt.ReviewDate = req.NewReviewDate
		appt.Place = req.Place
		appt.ContactPerson = req.ContactPerson
		appt.RoomNumber = req.RoomNumber
		if err := s.appts.Update(txCtx, appt); err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		apptID = appt.ID
		applicantID = app.ApplicantID
		return s.logAudit(txCtx, actor, model.ActionReschedule, app, map[string]interface{}{
			"previous_date":   history.PreviousDate,
			"new_review_date": req.NewReviewDate,
			"reason":          req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	appt, err := s.appts.FindByID(ctx, apptID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload appointment: %w", err)
	}
	resp := toAppointmentResponse(appt)
	s.notifier.NotifyUser(applicantID.String(), EventAppointmentUpdated, resp)
	return resp, nil
}

func (s *appointmentService) GetActive(ctx context.Context, appID string, actor workflow.Actor) (*AppointmentResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: application %s", workflow.ErrNotFound, appID)
		}
		return nil, err
	}
	if actor.Role == workflow.RoleApplicant && app.ApplicantID.String() != actor.UserID {
		return nil, workflow.ErrNotAuthorized
	}
	appt, err := s.appts.FindActiveByApplication(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active appointment for application %s", workflow.ErrNotFound, appID)
		}
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

func (s *appointmentService) lockApplication(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	app, err := s.apps.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: application %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return app, nil
}

func (s *appointmentService) logAudit(ctx context.Context, actor workflow.Actor, action string, app *model.Application, details map[string]interface{}) error {
	actorUID, _ := uuid.Parse(actor.UserID)
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     &actorUID,
		Action:     action,
		EntityID:   app.ID.String(),
		EntityName: app.ApplicationNo,
		Details:    string(payload),
	}
	if err := s.audit.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toAppointmentResponse(appt *model.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:            appt.ID.String(),
		ApplicationID: appt.ApplicationID.String(),
		ReviewDate:    appt.ReviewDate,
		Place:         appt.Place,
		ContactPerson: appt.ContactPerson,
		RoomNumber:    appt.RoomNumber,
		Comments:      appt.Comments,
		Active:        appt.Active,
		Reschedules:   appt.Reschedules,
	}
}
