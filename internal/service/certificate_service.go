package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/internal/model"
	"backend/internal/pdf"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	CertificateNo string    `json:"certificate_no"`
	DocumentID    string    `json:"document_id,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// CertificateService issues license certificates for approved applications.
// Issuance runs on a background worker fed by a channel; the approval
// transition commits first and enqueues afterwards, so a crash between the
// two is healed by the startup recovery pass.
type CertificateService interface {
	CertificateEnqueuer
	// Run drains the issue queue until ctx is cancelled. Call once, in its
	// own goroutine.
	Run(ctx context.Context)
	// RecoverPending enqueues approved applications that have no certificate
	// yet. Called at startup.
	RecoverPending(ctx context.Context) error
	Status(ctx context.Context, appID string, actor workflow.Actor) (*CertificateResponse, error)
}

type certificateService struct {
	db        *gorm.DB
	tx        repository.TransactionManager
	apps      repository.ApplicationRepository
	certs     repository.CertificateRepository
	docs      repository.DocumentRepository
	audit     repository.AuditRepository
	store     storage.Store
	notifier  Notifier
	verifyURL string
	queue     chan uuid.UUID
}

// NewCertificateService builds the issuer. verifyBaseURL is the public
// portal URL embedded in the certificate QR code.
func NewCertificateService(
	db *gorm.DB,
	tx repository.TransactionManager,
	apps repository.ApplicationRepository,
	certs repository.CertificateRepository,
	docs repository.DocumentRepository,
	audit repository.AuditRepository,
	store storage.Store,
	notifier Notifier,
	verifyBaseURL string,
) CertificateService {
	return &certificateService{
		db:        db,
		tx:        tx,
		apps:      apps,
		certs:     certs,
		docs:      docs,
		audit:     audit,
		store:     store,
		notifier:  notifierOrNoop(notifier),
		verifyURL: verifyBaseURL,
		queue:     make(chan uuid.UUID, 64),
	}
}

func (s *certificateService) Enqueue(appID uuid.UUID) {
	select {
	case s.queue <- appID:
	default:
		// Full queue is fine — recovery picks the record up on next start,
		// and approval state is already durable.
		log.Printf("certificate queue full, deferring application %s to recovery", appID)
	}
}

func (s *certificateService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case appID := <-s.queue:
			if err := s.issue(ctx, appID); err != nil {
				log.Printf("certificate issuance failed for application %s: %v", appID, err)
			}
		}
	}
}

func (s *certificateService) RecoverPending(ctx context.Context) error {
	apps, err := s.apps.ListApprovedWithoutCertificate(ctx, int(workflow.StatusApproved))
	if err != nil {
		return fmt.Errorf("failed to list pending certificates: %w", err)
	}
	for _, app := range apps {
		s.Enqueue(app.ID)
	}
	if len(apps) > 0 {
		log.Printf("recovered %d approved applications awaiting certificates", len(apps))
	}
	return nil
}

// issue generates and records one certificate. Safe to call twice for the
// same application: the second call finds the certificate link and returns.
func (s *certificateService) issue(ctx context.Context, appID uuid.UUID) error {
	var applicantID uuid.UUID
	var resp CertificateResponse

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.FindByIDForUpdate(txCtx, appID)
		if err != nil {
			return err
		}
		if workflow.Status(app.Status) != workflow.StatusApproved || app.CertificateID != nil {
			return nil // nothing to do
		}

		certNo, err := s.nextCertificateNo(txCtx)
		if err != nil {
			return err
		}

		sigs, err := s.collectStage2Signatures(txCtx, app.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		content, err := pdf.GenerateLicenseCertificate(pdf.CertificateData{
			CertificateNo: certNo,
			ApplicationNo: app.ApplicationNo,
			ApplicantName: app.FullName,
			PositionType:  app.PositionType,
			IssuedAt:      now,
			VerifyURL:     s.verifyURL + "/certificates/" + certNo,
			Signatures:    sigs,
		})
		if err != nil {
			return fmt.Errorf("failed to render certificate: %w", err)
		}
		hash, err := s.store.Save(content)
		if err != nil {
			return fmt.Errorf("failed to store certificate: %w", err)
		}

		doc := model.Document{
			ApplicationID: app.ID,
			DocType:       model.DocTypeLicenseCertificate,
			FileName:      fmt.Sprintf("license_%s.pdf", certNo),
			Size:          int64(len(content)),
			ContentHash:   hash,
			Generated:     true,
			Verified:      true,
		}
		if err := s.docs.Upsert(txCtx, &doc); err != nil {
			return fmt.Errorf("failed to save certificate document: %w", err)
		}

		cert := model.Certificate{
			ApplicationID: app.ID,
			CertificateNo: certNo,
			DocumentID:    &doc.ID,
			GeneratedAt:   now,
		}
		if err := s.certs.Create(txCtx, &cert); err != nil {
			return fmt.Errorf("failed to create certificate: %w", err)
		}

		app.CertificateID = &cert.ID
		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to link certificate: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"certificate_no": certNo})
		entry := model.AuditLog{
			Action:     model.ActionIssueCert,
			EntityID:   app.ID.String(),
			EntityName: app.ApplicationNo,
			Details:    string(details),
		}
		if err := s.audit.Log(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		applicantID = app.ApplicantID
		resp = toCertificateResponse(&cert)
		return nil
	})
	if err != nil {
		return err
	}

	if resp.CertificateNo != "" {
		s.notifier.NotifyUser(applicantID.String(), EventCertificateIssued, resp)
	}
	return nil
}

func (s *certificateService) nextCertificateNo(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("CERT-%d-", time.Now().Year())

	// Serialize number assignment the same way application numbers are.
	repository.GetDB(ctx, s.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	count, err := s.certs.CountByNumberPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count certificates: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// collectStage2Signatures pulls the license-certificate sign-offs out of the
// audit trail.
func (s *certificateService) collectStage2Signatures(ctx context.Context, appID uuid.UUID) ([]pdf.Signature, error) {
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
		if det.DocType != workflow.DocLicenseCertificate {
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

func (s *certificateService) Status(ctx context.Context, appID string, actor workflow.Actor) (*CertificateResponse, error) {
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
	cert, err := s.certs.FindByApplication(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: certificate not issued yet", workflow.ErrNotFound)
		}
		return nil, err
	}
	resp := toCertificateResponse(cert)
	return &resp, nil
}

func toCertificateResponse(cert *model.Certificate) CertificateResponse {
	resp := CertificateResponse{
		ID:            cert.ID.String(),
		ApplicationID: cert.ApplicationID.String(),
		CertificateNo: cert.CertificateNo,
		GeneratedAt:   cert.GeneratedAt,
	}
	if cert.DocumentID != nil {
		resp.DocumentID = cert.DocumentID.String()
	}
	return resp
}
