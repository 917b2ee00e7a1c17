package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"backend/internal/model"
	"backend/internal/pdf"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const otpTTL = 5 * time.Minute

type GenerateOtpRequest struct {
	Comments string `json:"comments"`
}

type VerifySignRequest struct {
	Code     string `json:"code" binding:"required,len=6"`
	Comments string `json:"comments"`
}

type OtpSessionResponse struct {
	SessionID     string    `json:"session_id"`
	TargetDocType string    `json:"target_doc_type"`
	ExpiresAt     time.Time `json:"expires_at"`
	// Code is handed back to the officer's authenticated session; a production
	// deployment would route it through an SMS gateway instead.
	Code string `json:"code"`
}

// CertificateEnqueuer accepts applications that reached final approval and
// need a certificate issued. Satisfied by CertificateService.
type CertificateEnqueuer interface {
	Enqueue(appID uuid.UUID)
}

// OtpService owns the digital signature leg of the workflow: officers
// generate a one-time code bound to (application, role) and then verify it
// to sign, which advances the record and stamps the generated document.
type OtpService interface {
	Generate(ctx context.Context, appID string, actor workflow.Actor, req GenerateOtpRequest) (*OtpSessionResponse, error)
	VerifyAndSign(ctx context.Context, appID string, actor workflow.Actor, req VerifySignRequest) (*ApplicationResponse, error)
}

type otpService struct {
	db       *gorm.DB
	tx       repository.TransactionManager
	apps     repository.ApplicationRepository
	otps     repository.OtpRepository
	docs     repository.DocumentRepository
	audit    repository.AuditRepository
	store    storage.Store
	certs    CertificateEnqueuer
	notifier Notifier
}

func NewOtpService(
	db *gorm.DB,
	tx repository.TransactionManager,
	apps repository.ApplicationRepository,
	otps repository.OtpRepository,
	docs repository.DocumentRepository,
	audit repository.AuditRepository,
	store storage.Store,
	certs CertificateEnqueuer,
	notifier Notifier,
) OtpService {
	return &otpService{
		db:       db,
		tx:       tx,
		apps:     apps,
		otps:     otps,
		docs:     docs,
		audit:    audit,
		store:    store,
		certs:    certs,
		notifier: notifierOrNoop(notifier),
	}
}

// signatureDetails is the audit payload written per sign-off; the generated
// documents rebuild their signature blocks from these entries.
type signatureDetails struct {
	Role     string `json:"role"`
	DocType  string `json:"doc_type"`
	Comments string `json:"comments,omitempty"`
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
}

// Generate creates a fresh signing code for the acting officer. Any earlier
// open session for the same (application, role) pair is invalidated first so
// exactly one code is live at a time.
func (s *otpService) Generate(ctx context.Context, appID string, actor workflow.Actor, req GenerateOtpRequest) (*OtpSessionResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	var session model.OtpSession
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockApplication(txCtx, id)
		if err != nil {
			return err
		}

		if _, err := workflow.Decide(workflow.Request{
			Status:   workflow.Status(app.Status),
			Position: app.PositionType,
			Action:   workflow.ActionGenerateOtp,
			Actor:    actor,
		}); err != nil {
			return err
		}

		docType, ok := workflow.SignedDocType(workflow.Status(app.Status))
		if !ok {
			return fmt.Errorf("%w: status %d has no signable document", workflow.ErrConflict, app.Status)
		}

		if err := s.otps.InvalidateForRole(txCtx, app.ID, string(actor.Role)); err != nil {
			return fmt.Errorf("failed to invalidate previous sessions: %w", err)
		}

		code, err := randomCode()
		if err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}
		session = model.OtpSession{
			ApplicationID: app.ID,
			Role:          string(actor.Role),
			Code:          code,
			TargetDocType: docType,
			Comments:      req.Comments,
			ExpiresAt:     time.Now().Add(otpTTL),
		}
		if err := s.otps.Create(txCtx, &session); err != nil {
			return fmt.Errorf("failed to create otp session: %w", err)
		}

		return s.logAudit(txCtx, actor, model.ActionGenerateOtp, app, signatureDetails{
			Role:    string(actor.Role),
			DocType: docType,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := &OtpSessionResponse{
		SessionID:     session.ID.String(),
		TargetDocType: session.TargetDocType,
		ExpiresAt:     session.ExpiresAt,
		Code:          session.Code,
	}
	s.notifier.NotifyUser(actor.UserID, EventOtpGenerated, map[string]interface{}{
		"application_id":  appID,
		"target_doc_type": session.TargetDocType,
		"expires_at":      session.ExpiresAt,
	})
	return resp, nil
}

// VerifyAndSign checks the code and, on success, consumes the session,
// records the sign-off, regenerates the signed document, and advances the
// workflow. A wrong code burns one attempt; the attempt counter is bumped
// outside the transition transaction so throttling survives a rollback.
func (s *otpService) VerifyAndSign(ctx context.Context, appID string, actor workflow.Actor, req VerifySignRequest) (*ApplicationResponse, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	session, err := s.otps.FindActive(ctx, id, string(actor.Role))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active signing session", workflow.ErrInvalidOtp)
		}
		return nil, err
	}

	if err := session.Validate(req.Code, time.Now()); err != nil {
		if errors.Is(err, model.ErrOtpMismatch) {
			// Counted outside the transaction on purpose.
			if incErr := s.otps.IncrementAttempts(ctx, session.ID); incErr != nil {
				return nil, fmt.Errorf("failed to record attempt: %w", incErr)
			}
			if session.Attempts+1 >= model.OtpMaxAttempts {
				_ = s.otps.InvalidateForRole(ctx, id, string(actor.Role))
			}
		}
		return nil, fmt.Errorf("%w: %v", workflow.ErrInvalidOtp, err)
	}

	var applicantID uuid.UUID
	var approved bool
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockApplication(txCtx, id)
		if err != nil {
			return err
		}

		intent, err := workflow.Decide(workflow.Request{
			Status:      workflow.Status(app.Status),
			Position:    app.PositionType,
			Action:      workflow.ActionSign,
			Actor:       actor,
			PaymentDone: app.PaymentDone,
		})
		if err != nil {
			return err
		}

		ok, err := s.otps.Consume(txCtx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to consume otp session: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: session no longer valid", workflow.ErrInvalidOtp)
		}

		if err := s.logAudit(txCtx, actor, model.ActionSign, app, signatureDetails{
			Role:     string(actor.Role),
			DocType:  session.TargetDocType,
			Comments: req.Comments,
			From:     int(intent.From),
			To:       int(intent.To),
		}); err != nil {
			return err
		}

		// The recommendation form is regenerated after every stage-1 sign-off so
		// it always carries the complete set collected so far. Stage-2 sign-offs
		// only accumulate; the certificate issuer renders them at issuance.
		if session.TargetDocType == workflow.DocRecommendationForm {
			if err := s.regenerateRecommendation(txCtx, app); err != nil {
				return err
			}
		}

		app.Status = int(intent.To)
		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		applicantID = app.ApplicantID
		approved = intent.To == workflow.StatusApproved
		return nil
	})
	if err != nil {
		return nil, err
	}

	if approved && s.certs != nil {
		s.certs.Enqueue(id)
	}

	app, err := s.apps.FindByIDFull(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload application: %w", err)
	}
	resp := toApplicationResponse(app)
	s.notifier.NotifyUser(applicantID.String(), EventStatusChanged, resp)
	return &resp, nil
}

// regenerateRecommendation rebuilds the recommendation form from the audit
// trail and upserts it into the document set.
func (s *otpService) regenerateRecommendation(ctx context.Context, app *model.Application) error {
	sigs, err := s.collectSignatures(ctx, app.ID, workflow.DocRecommendationForm)
	if err != nil {
		return err
	}

	content, err := pdf.GenerateRecommendationForm(pdf.RecommendationData{
		ApplicationNo: app.ApplicationNo,
		ApplicantName: app.FullName,
		PositionType:  app.PositionType,
		Signatures:    sigs,
	})
	if err != nil {
		return fmt.Errorf("failed to render recommendation form: %w", err)
	}

	hash, err := s.store.Save(content)
	if err != nil {
		return fmt.Errorf("failed to store recommendation form: %w", err)
	}

	doc := model.Document{
		ApplicationID: app.ID,
		DocType:       model.DocTypeRecommendationForm,
		FileName:      fmt.Sprintf("recommendation_%s.pdf", app.ApplicationNo),
		Size:          int64(len(content)),
		ContentHash:   hash,
		Generated:     true,
		Verified:      true,
	}
	if err := s.docs.Upsert(ctx, &doc); err != nil {
		return fmt.Errorf("failed to save recommendation form: %w", err)
	}
	return nil
}

// collectSignatures reads the sign-off history for one generated document
// out of the audit trail, oldest first.
func (s *otpService) collectSignatures(ctx context.Context, appID uuid.UUID, docType string) ([]pdf.Signature, error) {
	entries, err := s.audit.ListByEntityAction(ctx, appID.String(), model.ActionSign)
	if err != nil {
		return nil, fmt.Errorf("failed to load signature history: %w", err)
	}

	var sigs []pdf.Signature
	for _, e := range entries {
		var det signatureDetails
		if err := json.Unmarshal([]byte(e.Details), &det); err != nil {
			continue
		}
		if det.DocType != docType {
			continue
		}
		signedBy := ""
		if e.User != nil {
			signedBy = e.User.Username
		}
		sigs = append(sigs, pdf.Signature{
			Role:     det.Role,
			SignedBy: signedBy,
			SignedAt: e.CreatedAt,
			Comments: det.Comments,
		})
	}
	return sigs, nil
}

func (s *otpService) lockApplication(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	app, err := s.apps.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: application %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	return app, nil
}

func (s *otpService) logAudit(ctx context.Context, actor workflow.Actor, action string, app *model.Application, details signatureDetails) error {
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

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
