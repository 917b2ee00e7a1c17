package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/pdf"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfirmPaymentRequest struct {
	PaymentRef string `json:"payment_ref" binding:"required"`
}

type ChallanResponse struct {
	ChallanNo  string `json:"challan_no"`
	Amount     string `json:"amount"`
	DocumentID string `json:"document_id"`
}

// PaymentService owns the fee gate: challan generation when the record rests
// in the payment stage, and the confirmation that releases it to the clerk.
// Confirmation is idempotent — a gateway retry against an already-paid
// record is a no-op.
type PaymentService interface {
	InitiatePayment(ctx context.Context, appID string, actor workflow.Actor) (*ChallanResponse, error)
	ConfirmPayment(ctx context.Context, appID string, actor workflow.Actor, req ConfirmPaymentRequest) (*ApplicationResponse, error)
}

type paymentService struct {
	db       *gorm.DB
	tx       repository.TransactionManager
	apps     repository.ApplicationRepository
	docs     repository.DocumentRepository
	audit    repository.AuditRepository
	store    storage.Store
	notifier Notifier
}

func NewPaymentService(
	db *gorm.DB,
	tx repository.TransactionManager,
	apps repository.ApplicationRepository,
	docs repository.DocumentRepository,
	audit repository.AuditRepository,
	store storage.Store,
	notifier Notifier,
) PaymentService {
	return &paymentService{
		db:       db,
		tx:       tx,
		apps:     apps,
		docs:     docs,
		audit:    audit,
		store:    store,
		notifier: notifierOrNoop(notifier),
	}
}

// InitiatePayment renders the payment challan for an application resting in
// the payment stage. The challan number derives from the application number,
// so repeated calls regenerate the same challan.
func (s *paymentService) InitiatePayment(ctx context.Context, appID string, actor workflow.Actor) (*ChallanResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	var resp ChallanResponse
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockOwned(txCtx, id, actor)
		if err != nil {
			return err
		}
		if workflow.Status(app.Status) != workflow.StatusPaymentPending {
			return fmt.Errorf("%w: application is not awaiting payment", workflow.ErrConflict)
		}

		if app.ChallanNo == "" {
			app.ChallanNo = "CHL-" + app.ApplicationNo
		}

		content, err := pdf.GenerateChallan(pdf.ChallanData{
			ChallanNo:     app.ChallanNo,
			ApplicationNo: app.ApplicationNo,
			ApplicantName: app.FullName,
			PositionType:  app.PositionType,
			Amount:        app.FeeAmount.StringFixed(2),
			GeneratedAt:   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to render challan: %w", err)
		}
		hash, err := s.store.Save(content)
		if err != nil {
			return fmt.Errorf("failed to store challan: %w", err)
		}

		doc := model.Document{
			ApplicationID: app.ID,
			DocType:       model.DocTypePaymentChallan,
			FileName:      fmt.Sprintf("challan_%s.pdf", app.ApplicationNo),
			Size:          int64(len(content)),
			ContentHash:   hash,
			Generated:     true,
			Verified:      true,
		}
		if err := s.docs.Upsert(txCtx, &doc); err != nil {
			return fmt.Errorf("failed to save challan document: %w", err)
		}

		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		resp = ChallanResponse{
			ChallanNo:  app.ChallanNo,
			Amount:     app.FeeAmount.StringFixed(2),
			DocumentID: doc.ID.String(),
		}
		return s.logAudit(txCtx, actor, model.ActionInitiatePayment, app, map[string]interface{}{
			"challan_no": app.ChallanNo,
			"amount":     app.FeeAmount.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConfirmPayment records a successful gateway payment and releases the
// record to the clerk queue.
func (s *paymentService) ConfirmPayment(ctx context.Context, appID string, actor workflow.Actor, req ConfirmPaymentRequest) (*ApplicationResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	var applicantID uuid.UUID
	var alreadyPaid bool
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockOwned(txCtx, id, actor)
		if err != nil {
			return err
		}

		// Gateway retries land here after the first confirmation moved the
		// record on. Treat them as success.
		if app.PaymentDone {
			applicantID = app.ApplicantID
			alreadyPaid = true
			return nil
		}

		intent, err := workflow.Decide(workflow.Request{
			Status:      workflow.Status(app.Status),
			Position:    app.PositionType,
			Action:      workflow.ActionConfirmPayment,
			Actor:       actor,
			PaymentDone: true, // the fork must see the payment we are recording
		})
		if err != nil {
			return err
		}

		now := time.Now()
		app.PaymentDone = true
		app.PaymentRef = req.PaymentRef
		app.PaidAt = &now
		app.Status = int(intent.To)
		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		applicantID = app.ApplicantID
		return s.logAudit(txCtx, actor, model.ActionConfirmPayment, app, map[string]interface{}{
			"payment_ref": req.PaymentRef,
			"challan_no":  app.ChallanNo,
			"amount":      app.FeeAmount.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	app, err := s.apps.FindByIDFull(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload application: %w", err)
	}
	resp := toApplicationResponse(app)
	if !alreadyPaid {
		s.notifier.NotifyUser(applicantID.String(), EventPaymentConfirmed, resp)
	}
	return &resp, nil
}

func (s *paymentService) lockOwned(ctx context.Context, id uuid.UUID, actor workflow.Actor) (*model.Application, error) {
	app, err := s.apps.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: application %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	if actor.Role != workflow.RoleApplicant || app.ApplicantID.String() != actor.UserID {
		return nil, workflow.ErrNotAuthorized
	}
	return app, nil
}

func (s *paymentService) logAudit(ctx context.Context, actor workflow.Actor, action string, app *model.Application, details map[string]interface{}) error {
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
