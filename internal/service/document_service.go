package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/storage"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// uploadableDocTypes are the applicant-provided document types. Generated
// types are engine-owned and rejected on upload.
var uploadableDocTypes = map[string]bool{
	model.DocTypePAN:             true,
	model.DocTypeAadhar:          true,
	model.DocTypeDegree:          true,
	model.DocTypeMarksheet:       true,
	model.DocTypeExperienceCert:  true,
	model.DocTypeISSECOACert:     true,
	model.DocTypePropertyTax:     true,
	model.DocTypeSelfDeclaration: true,
	model.DocTypeProfilePicture:  true,
	model.DocTypeAdditional:      true,
}

type DocumentService interface {
	Upload(ctx context.Context, appID string, actor workflow.Actor, docType, fileName string, content []byte) (*model.Document, error)
	List(ctx context.Context, appID string, actor workflow.Actor) ([]model.Document, error)
	// Download returns the document metadata and its stored content.
	Download(ctx context.Context, docID string, actor workflow.Actor) (*model.Document, []byte, error)
}

type documentService struct {
	db    *gorm.DB
	tx    repository.TransactionManager
	apps  repository.ApplicationRepository
	docs  repository.DocumentRepository
	audit repository.AuditRepository
	store storage.Store
}

func NewDocumentService(
	db *gorm.DB,
	tx repository.TransactionManager,
	apps repository.ApplicationRepository,
	docs repository.DocumentRepository,
	audit repository.AuditRepository,
	store storage.Store,
) DocumentService {
	return &documentService{db: db, tx: tx, apps: apps, docs: docs, audit: audit, store: store}
}

// Upload attaches one applicant document, replacing any earlier upload of
// the same type. Uploads are only accepted while the record is editable.
func (s *documentService) Upload(ctx context.Context, appID string, actor workflow.Actor, docType, fileName string, content []byte) (*model.Document, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}
	if !uploadableDocTypes[docType] {
		return nil, workflow.NewValidationError(map[string]string{"doc_type": "not an uploadable document type"})
	}
	if len(content) == 0 {
		return nil, workflow.NewValidationError(map[string]string{"file": "empty file"})
	}

	var doc model.Document
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.apps.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: application %s", workflow.ErrNotFound, appID)
			}
			return err
		}
		if app.ApplicantID.String() != actor.UserID {
			return workflow.ErrNotAuthorized
		}
		status := workflow.Status(app.Status)
		if status != workflow.StatusDraft && status != workflow.StatusRejected {
			return fmt.Errorf("%w: documents can only change before submission or after rejection", workflow.ErrConflict)
		}

		hash, err := s.store.Save(content)
		if err != nil {
			return fmt.Errorf("failed to store document: %w", err)
		}

		doc = model.Document{
			ApplicationID: app.ID,
			DocType:       docType,
			FileName:      fileName,
			Size:          int64(len(content)),
			ContentHash:   hash,
		}
		if err := s.docs.Upsert(txCtx, &doc); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}

		actorUID, _ := uuid.Parse(actor.UserID)
		entry := model.AuditLog{
			UserID:     &actorUID,
			Action:     model.ActionUploadDocument,
			EntityID:   app.ID.String(),
			EntityName: docType,
		}
		if err := s.audit.Log(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *documentService) List(ctx context.Context, appID string, actor workflow.Actor) ([]model.Document, error) {
	id, err := uuid.Parse(appID)
	if err != nil {
		return nil, fmt.Errorf("invalid application id: %w", err)
	}
	if err := s.authorizeRead(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.docs.ListByApplication(ctx, id)
}

func (s *documentService) Download(ctx context.Context, docID string, actor workflow.Actor) (*model.Document, []byte, error) {
	id, err := uuid.Parse(docID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid document id: %w", err)
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: document %s", workflow.ErrNotFound, docID)
		}
		return nil, nil, err
	}
	if err := s.authorizeRead(ctx, doc.ApplicationID, actor); err != nil {
		return nil, nil, err
	}
	content, err := s.store.Load(doc.ContentHash)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", workflow.ErrExternalService, err)
	}
	return doc, content, nil
}

func (s *documentService) authorizeRead(ctx context.Context, appID uuid.UUID, actor workflow.Actor) error {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: application %s", workflow.ErrNotFound, appID)
		}
		return err
	}
	if actor.Role == workflow.RoleApplicant && app.ApplicantID.String() != actor.UserID {
		return workflow.ErrNotAuthorized
	}
	return nil
}
