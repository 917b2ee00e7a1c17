package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RejectRequest struct {
	Comments string `json:"comments" binding:"required"`
}

// WorkflowService applies officer-driven transitions that carry no document
// signature: junior engineer document verification, clerk approval, and
// stage rejection. Signature transitions live in OtpService; payment in
// PaymentService.
type WorkflowService interface {
	VerifyDocuments(ctx context.Context, appID string, actor workflow.Actor) (*ApplicationResponse, error)
	ClerkApprove(ctx context.Context, appID string, actor workflow.Actor) (*ApplicationResponse, error)
	Reject(ctx context.Context, appID string, actor workflow.Actor, req RejectRequest) (*ApplicationResponse, error)
}

type workflowService struct {
	db       *gorm.DB
	tx       repository.TransactionManager
	apps     repository.ApplicationRepository
	docs     repository.DocumentRepository
	appts    repository.AppointmentRepository
	audit    repository.AuditRepository
	notifier Notifier
}

func NewWorkflowService(
	db *gorm.DB,
	tx repository.TransactionManager,
	apps repository.ApplicationRepository,
	docs repository.DocumentRepository,
	appts repository.AppointmentRepository,
	audit repository.AuditRepository,
	notifier Notifier,
) WorkflowService {
	return &workflowService{
		db:       db,
		tx:       tx,
		apps:     apps,
		docs:     docs,
		appts:    appts,
		audit:    audit,
		notifier: notifierOrNoop(notifier),
	}
}

// VerifyDocuments completes the junior engineer review: every uploaded
// document is marked verified, the appointment is retired, and the record
// auto-forwards into the assistant engineer queue.
func (s *workflowService) VerifyDocuments(ctx context.Context, appID string, actor workflow.Actor) (*ApplicationResponse, error) {
	return s.transition(ctx, appID, actor, workflow.Request{Action: workflow.ActionVerifyDocuments}, model.ActionVerifyDocuments,
		func(txCtx context.Context, app *model.Application, intent workflow.Intent) error {
			if err := s.docs.MarkAllVerified(txCtx, app.ID); err != nil {
				return fmt.Errorf("failed to mark documents verified: %w", err)
			}
			if err := s.appts.Deactivate(txCtx, app.ID); err != nil {
				return fmt.Errorf("failed to close appointment: %w", err)
			}
			return nil
		})
}

// ClerkApprove records the registry check and auto-forwards into the second
// signature round.
func (s *workflowService) ClerkApprove(ctx context.Context, appID string, actor workflow.Actor) (*ApplicationResponse, error) {
	return s.transition(ctx, appID, actor, workflow.Request{Action: workflow.ActionApprove}, model.ActionClerkApprove, nil)
}

// Reject sends the application back to the applicant from any officer stage.
// The rejecting role, the stage, and the comments are recorded on the record
// so the applicant sees exactly what to fix before resubmitting.
func (s *workflowService) Reject(ctx context.Context, appID string, actor workflow.Actor, req RejectRequest) (*ApplicationResponse, error) {
	return s.transition(ctx, appID, actor,
		workflow.Request{Action: workflow.ActionReject, Reject: &workflow.RejectPayload{Comments: req.Comments}},
		model.ActionReject,
		func(txCtx context.Context, app *model.Application, intent workflow.Intent) error {
			app.RejectedByRole = string(actor.Role)
			app.RejectedAtStatus = int(intent.From)
			app.RejectionComments = req.Comments
			// An open appointment dies with the rejection; resubmission starts over.
			if err := s.appts.Deactivate(txCtx, app.ID); err != nil {
				return fmt.Errorf("failed to close appointment: %w", err)
			}
			return nil
		})
}

// transition is the shared engine loop: lock the row, decide, apply the
// action-specific side effects, persist the new status, audit, commit, then
// notify the applicant.
func (s *workflowService) transition(
	ctx context.Context,
	appID string,
	actor workflow.Actor,
	req workflow.Request,
	auditAction string,
	sideEffect func(txCtx context.Context, app *model.Application, intent workflow.Intent) error,
) (*ApplicationResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	var applicantID uuid.UUID
	var event string
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: application %s", workflow.ErrNotFound, appID)
			}
			return err
		}

		req.Status = workflow.Status(app.Status)
		req.Position = app.PositionType
		req.Actor = actor
		req.PaymentDone = app.PaymentDone

		intent, err := workflow.Decide(req)
		if err != nil {
			return err
		}

		if sideEffect != nil {
			if err := sideEffect(txCtx, app, intent); err != nil {
				return err
			}
		}

		app.Status = int(intent.To)
		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		applicantID = app.ApplicantID
		event = EventStatusChanged
		if req.Action == workflow.ActionReject {
			event = EventApplicationRejected
		}

		actorUID, _ := uuid.Parse(actor.UserID)
		details, _ := json.Marshal(map[string]interface{}{
			"from":   int(intent.From),
			"to":     int(intent.To),
			"role":   string(actor.Role),
			"action": string(req.Action),
		})
		entry := model.AuditLog{
			UserID:     &actorUID,
			Action:     auditAction,
			EntityID:   app.ID.String(),
			EntityName: app.ApplicationNo,
			Details:    string(details),
		}
		if err := s.audit.Log(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	app, err := s.apps.FindByIDFull(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload application: %w", err)
	}
	resp := toApplicationResponse(app)
	s.notifier.NotifyUser(applicantID.String(), event, resp)
	return &resp, nil
}
