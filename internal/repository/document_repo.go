package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListByApplication(ctx context.Context, appID uuid.UUID) ([]model.Document, error)
	// Upsert replaces the (application, docType) document or creates it —
	// regenerated signed documents and re-uploads keep a single row per type.
	Upsert(ctx context.Context, doc *model.Document) error
	MarkAllVerified(ctx context.Context, appID uuid.UUID) error
	DeleteUploaded(ctx context.Context, appID uuid.UUID, docType string) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := GetDB(ctx, r.db).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByApplication(ctx context.Context, appID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := GetDB(ctx, r.db).
		Where("application_id = ?", appID).
		Order("created_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) Upsert(ctx context.Context, doc *model.Document) error {
	db := GetDB(ctx, r.db)
	var existing model.Document
	err := db.First(&existing, "application_id = ? AND doc_type = ?", doc.ApplicationID, doc.DocType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(doc).Error
	}
	if err != nil {
		return err
	}
	existing.FileName = doc.FileName
	existing.Size = doc.Size
	existing.ContentHash = doc.ContentHash
	existing.Verified = doc.Verified
	existing.Generated = doc.Generated
	if saveErr := db.Save(&existing).Error; saveErr != nil {
		return saveErr
	}
	doc.ID = existing.ID
	return nil
}

func (r *documentRepository) MarkAllVerified(ctx context.Context, appID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Document{}).
		Where("application_id = ?", appID).
		Update("verified", true).Error
}

func (r *documentRepository) DeleteUploaded(ctx context.Context, appID uuid.UUID, docType string) error {
	return GetDB(ctx, r.db).
		Where("application_id = ? AND doc_type = ? AND generated = ?", appID, docType, false).
		Delete(&model.Document{}).Error
}
