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

// --- DTOs ---

type AddressDTO struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type QualificationDTO struct {
	Degree      string `json:"degree" binding:"required"`
	University  string `json:"university"`
	PassingYear int    `json:"passing_year"`
	Grade       string `json:"grade"`
}

type ExperienceDTO struct {
	Organization string     `json:"organization" binding:"required"`
	Designation  string     `json:"designation"`
	FromDate     time.Time  `json:"from_date"`
	ToDate       *time.Time `json:"to_date"`
	Details      string     `json:"details"`
}

type DraftRequest struct {
	PositionType         string             `json:"position_type" binding:"required"`
	FullName             string             `json:"full_name" binding:"required"`
	FatherName           string             `json:"father_name"`
	Email                string             `json:"email" binding:"required,email"`
	Phone                string             `json:"phone" binding:"required"`
	PANNumber            string             `json:"pan_number"`
	AadharNumber         string             `json:"aadhar_number"`
	COANumber            string             `json:"coa_number"`
	LocalAddress         AddressDTO         `json:"local_address"`
	PermanentAddress     AddressDTO         `json:"permanent_address"`
	PermanentSameAsLocal bool               `json:"permanent_same_as_local"`
	Qualifications       []QualificationDTO `json:"qualifications"`
	Experiences          []ExperienceDTO    `json:"experiences"`
}

type ApplicationResponse struct {
	ID                string                `json:"id"`
	ApplicationNo     string                `json:"application_no,omitempty"`
	ApplicantID       string                `json:"applicant_id"`
	ApplicantName     string                `json:"applicant_name,omitempty"`
	PositionType      string                `json:"position_type"`
	Status            int                   `json:"status"`
	StatusName        string                `json:"status_name"`
	FullName          string                `json:"full_name"`
	FatherName        string                `json:"father_name,omitempty"`
	Email             string                `json:"email"`
	Phone             string                `json:"phone"`
	PANNumber         string                `json:"pan_number,omitempty"`
	AadharNumber      string                `json:"aadhar_number,omitempty"`
	COANumber         string                `json:"coa_number,omitempty"`
	LocalAddress      AddressDTO            `json:"local_address"`
	PermanentAddress  AddressDTO            `json:"permanent_address"`
	FeeAmount         string                `json:"fee_amount"`
	PaymentDone       bool                  `json:"payment_done"`
	PaymentRef        string                `json:"payment_ref,omitempty"`
	ChallanNo         string                `json:"challan_no,omitempty"`
	RejectedByRole    string                `json:"rejected_by_role,omitempty"`
	RejectionComments string                `json:"rejection_comments,omitempty"`
	Qualifications    []model.Qualification `json:"qualifications,omitempty"`
	Experiences       []model.Experience    `json:"experiences,omitempty"`
	Documents         []model.Document      `json:"documents,omitempty"`
	SubmittedAt       *string               `json:"submitted_at,omitempty"`
	CreatedAt         string                `json:"created_at"`
}

// --- Interface ---

type ApplicationService interface {
	CreateDraft(ctx context.Context, applicantID string, req DraftRequest) (*ApplicationResponse, error)
	UpdateDraft(ctx context.Context, id string, actor workflow.Actor, req DraftRequest) (*ApplicationResponse, error)
	Submit(ctx context.Context, id string, actor workflow.Actor) (*ApplicationResponse, error)
	Resubmit(ctx context.Context, id string, actor workflow.Actor) (*ApplicationResponse, error)
	Get(ctx context.Context, id string, actor workflow.Actor) (*ApplicationResponse, error)
	ListMine(ctx context.Context, applicantID string, page, limit int) ([]ApplicationResponse, int64, error)
	ListPending(ctx context.Context, actor workflow.Actor, positionType string, page, limit int) ([]ApplicationResponse, int64, error)
}

type applicationService struct {
	db       *gorm.DB
	tx       repository.TransactionManager
	apps     repository.ApplicationRepository
	docs     repository.DocumentRepository
	audit    repository.AuditRepository
	notifier Notifier
}

func NewApplicationService(
	db *gorm.DB,
	tx repository.TransactionManager,
	apps repository.ApplicationRepository,
	docs repository.DocumentRepository,
	audit repository.AuditRepository,
	notifier Notifier,
) ApplicationService {
	return &applicationService{
		db:       db,
		tx:       tx,
		apps:     apps,
		docs:     docs,
		audit:    audit,
		notifier: notifierOrNoop(notifier),
	}
}

// --- Implementation ---

func (s *applicationService) CreateDraft(ctx context.Context, applicantID string, req DraftRequest) (*ApplicationResponse, error) {
	uid, err := uuid.Parse(applicantID)
	if err != nil {
		return nil, fmt.Errorf("invalid applicant id: %w", err)
	}
	if !workflow.ValidPosition(req.PositionType) {
		return nil, workflow.NewValidationError(map[string]string{"position_type": "unknown position type"})
	}

	app := model.Application{
		ApplicantID:  uid,
		PositionType: req.PositionType,
		Status:       int(workflow.StatusDraft),
		FeeAmount:    workflow.FeeFor(req.PositionType),
	}
	applyDraftFields(&app, req)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.apps.Create(txCtx, &app); err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		if err := s.apps.ReplaceQualifications(txCtx, app.ID, qualModels(req.Qualifications)); err != nil {
			return fmt.Errorf("failed to save qualifications: %w", err)
		}
		if err := s.apps.ReplaceExperiences(txCtx, app.ID, expModels(req.Experiences)); err != nil {
			return fmt.Errorf("failed to save experiences: %w", err)
		}
		return s.writeAudit(txCtx, &uid, model.ActionSaveDraft, app.ID.String(), app.PositionType, map[string]interface{}{
			"position_type": app.PositionType,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, app.ID)
}

func (s *applicationService) UpdateDraft(ctx context.Context, id string, actor workflow.Actor, req DraftRequest) (*ApplicationResponse, error) {
	appID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockOwned(txCtx, appID, actor)
		if err != nil {
			return err
		}
		status := workflow.Status(app.Status)
		if status != workflow.StatusDraft && status != workflow.StatusRejected {
			return fmt.Errorf("%w: drafts are editable only before submission or after rejection", workflow.ErrConflict)
		}
		// PositionType is fixed at creation — it determines fees and required documents.
		if req.PositionType != app.PositionType {
			return workflow.NewValidationError(map[string]string{"position_type": "cannot change after creation"})
		}
		applyDraftFields(app, req)
		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		if err := s.apps.ReplaceQualifications(txCtx, app.ID, qualModels(req.Qualifications)); err != nil {
			return fmt.Errorf("failed to save qualifications: %w", err)
		}
		if err := s.apps.ReplaceExperiences(txCtx, app.ID, expModels(req.Experiences)); err != nil {
			return fmt.Errorf("failed to save experiences: %w", err)
		}
		actorID := app.ApplicantID
		return s.writeAudit(txCtx, &actorID, model.ActionSaveDraft, app.ID.String(), app.PositionType, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, appID)
}

// Submit moves a draft into the approval chain: validates the required
// document set, assigns the stable application number on first submission,
// and auto-forwards to the Junior Engineer queue.
func (s *applicationService) Submit(ctx context.Context, id string, actor workflow.Actor) (*ApplicationResponse, error) {
	return s.submit(ctx, id, actor, workflow.ActionSubmit)
}

// Resubmit restarts the full forward chain after a rejection. Stage
// rejection metadata is cleared; a completed payment persists, so the chain
// will skip the payment gate on its second pass.
func (s *applicationService) Resubmit(ctx context.Context, id string, actor workflow.Actor) (*ApplicationResponse, error) {
	return s.submit(ctx, id, actor, workflow.ActionResubmit)
}

func (s *applicationService) submit(ctx context.Context, id string, actor workflow.Actor, action workflow.Action) (*ApplicationResponse, error) {
	appID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}

	var applicantID uuid.UUID
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.lockOwned(txCtx, appID, actor)
		if err != nil {
			return err
		}

		intent, err := workflow.Decide(workflow.Request{
			Status:      workflow.Status(app.Status),
			Position:    app.PositionType,
			Action:      action,
			Actor:       actor,
			PaymentDone: app.PaymentDone,
		})
		if err != nil {
			return err
		}

		docs, err := s.docs.ListByApplication(txCtx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to load documents: %w", err)
		}
		uploaded := make([]string, 0, len(docs))
		for _, d := range docs {
			uploaded = append(uploaded, d.DocType)
		}
		if missing := workflow.MissingDocuments(app.PositionType, uploaded); len(missing) > 0 {
			fields := map[string]string{}
			for _, m := range missing {
				fields[m] = "document required"
			}
			return workflow.NewValidationError(fields)
		}

		if app.ApplicationNo == "" {
			no, err := s.generateApplicationNo(txCtx)
			if err != nil {
				return fmt.Errorf("failed to assign application number: %w", err)
			}
			app.ApplicationNo = no
		}

		now := time.Now()
		app.SubmittedAt = &now
		app.Status = int(intent.To)
		if action == workflow.ActionResubmit {
			app.RejectedByRole = ""
			app.RejectedAtStatus = 0
			app.RejectionComments = ""
		}
		if err := s.apps.Update(txCtx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		applicantID = app.ApplicantID
		auditAction := model.ActionSubmit
		if action == workflow.ActionResubmit {
			auditAction = model.ActionResubmit
		}
		return s.writeAudit(txCtx, &applicantID, auditAction, app.ID.String(), app.ApplicationNo, map[string]interface{}{
			"status": app.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.reload(ctx, appID)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyUser(applicantID.String(), EventStatusChanged, resp)
	return resp, nil
}

func (s *applicationService) Get(ctx context.Context, id string, actor workflow.Actor) (*ApplicationResponse, error) {
	appID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}
	app, err := s.apps.FindByIDFull(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: application %s", workflow.ErrNotFound, id)
		}
		return nil, err
	}
	// Applicants see only their own records; officers see everything.
	if actor.Role == workflow.RoleApplicant && app.ApplicantID.String() != actor.UserID {
		return nil, workflow.ErrNotAuthorized
	}
	resp := toApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) ListMine(ctx context.Context, applicantID string, page, limit int) ([]ApplicationResponse, int64, error) {
	uid, err := uuid.Parse(applicantID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid applicant id: %w", err)
	}
	apps, total, err := s.apps.ListByApplicant(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toApplicationResponses(apps), total, nil
}

// ListPending is the role-parameterized work queue: each officer role sees
// the applications resting in the states it may act on.
func (s *applicationService) ListPending(ctx context.Context, actor workflow.Actor, positionType string, page, limit int) ([]ApplicationResponse, int64, error) {
	states := workflow.StatesForRole(actor.Role)
	if len(states) == 0 || actor.Role == workflow.RoleApplicant {
		return nil, 0, workflow.ErrNotAuthorized
	}
	// Assistant engineers only ever see their own specialty.
	if actor.Role == workflow.RoleAssistantEngineer {
		positionType = actor.Specialty
	}
	statuses := make([]int, 0, len(states))
	for _, st := range states {
		statuses = append(statuses, int(st))
	}
	apps, total, err := s.apps.ListByStatuses(ctx, statuses, positionType, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toApplicationResponses(apps), total, nil
}

// --- Helpers ---

// lockOwned loads the application under a row lock and enforces applicant
// ownership. Officers never reach this path.
func (s *applicationService) lockOwned(ctx context.Context, appID uuid.UUID, actor workflow.Actor) (*model.Application, error) {
	app, err := s.apps.FindByIDForUpdate(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: application %s", workflow.ErrNotFound, appID)
		}
		return nil, err
	}
	if app.ApplicantID.String() != actor.UserID {
		return nil, workflow.ErrNotAuthorized
	}
	return app, nil
}

func (s *applicationService) reload(ctx context.Context, appID uuid.UUID) (*ApplicationResponse, error) {
	app, err := s.apps.FindByIDFull(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload application: %w", err)
	}
	resp := toApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) generateApplicationNo(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "LIC-" + today + "-"

	// Use advisory lock to prevent concurrent duplicate application numbers
	repository.GetDB(ctx, s.db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	count, err := s.apps.CountByNumberPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *applicationService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := s.audit.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func applyDraftFields(app *model.Application, req DraftRequest) {
	app.FullName = req.FullName
	app.FatherName = req.FatherName
	app.Email = req.Email
	app.Phone = req.Phone
	app.PANNumber = req.PANNumber
	app.AadharNumber = req.AadharNumber
	app.COANumber = req.COANumber
	app.LocalAddress = toAddress(req.LocalAddress)
	app.PermanentSameAsLocal = req.PermanentSameAsLocal
	if req.PermanentSameAsLocal {
		app.PermanentAddress = app.LocalAddress
	} else {
		app.PermanentAddress = toAddress(req.PermanentAddress)
	}
}

func toAddress(dto AddressDTO) model.Address {
	return model.Address{
		Line1:   dto.Line1,
		Line2:   dto.Line2,
		City:    dto.City,
		State:   dto.State,
		Pincode: dto.Pincode,
	}
}

func qualModels(dtos []QualificationDTO) []model.Qualification {
	out := make([]model.Qualification, 0, len(dtos))
	for _, q := range dtos {
		out = append(out, model.Qualification{
			Degree:      q.Degree,
			University:  q.University,
			PassingYear: q.PassingYear,
			Grade:       q.Grade,
		})
	}
	return out
}

func expModels(dtos []ExperienceDTO) []model.Experience {
	out := make([]model.Experience, 0, len(dtos))
	for _, e := range dtos {
		out = append(out, model.Experience{
			Organization: e.Organization,
			Designation:  e.Designation,
			FromDate:     e.FromDate,
			ToDate:       e.ToDate,
			Details:      e.Details,
		})
	}
	return out
}

func toApplicationResponse(app *model.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                app.ID.String(),
		ApplicationNo:     app.ApplicationNo,
		ApplicantID:       app.ApplicantID.String(),
		PositionType:      app.PositionType,
		Status:            app.Status,
		StatusName:        workflow.Status(app.Status).String(),
		FullName:          app.FullName,
		FatherName:        app.FatherName,
		Email:             app.Email,
		Phone:             app.Phone,
		PANNumber:         app.PANNumber,
		AadharNumber:      app.AadharNumber,
		COANumber:         app.COANumber,
		LocalAddress:      fromAddress(app.LocalAddress),
		PermanentAddress:  fromAddress(app.PermanentAddress),
		FeeAmount:         app.FeeAmount.StringFixed(2),
		PaymentDone:       app.PaymentDone,
		PaymentRef:        app.PaymentRef,
		ChallanNo:         app.ChallanNo,
		RejectedByRole:    app.RejectedByRole,
		RejectionComments: app.RejectionComments,
		Qualifications:    app.Qualifications,
		Experiences:       app.Experiences,
		Documents:         app.Documents,
		CreatedAt:         app.CreatedAt.Format(time.RFC3339),
	}
	if app.Applicant != nil {
		resp.ApplicantName = app.Applicant.Username
	}
	if app.SubmittedAt != nil {
		t := app.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &t
	}
	return resp
}

func toApplicationResponses(apps []model.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, toApplicationResponse(&apps[i]))
	}
	return out
}

func fromAddress(a model.Address) AddressDTO {
	return AddressDTO{
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Pincode: a.Pincode,
	}
}
