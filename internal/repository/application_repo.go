package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationRepository is the data access layer for license applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	FindByIDFull(ctx context.Context, id uuid.UUID) (*model.Application, error)
	// FindByIDForUpdate takes a row lock so concurrent transitions against the
	// same record serialize. Must be called inside a transaction context.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID, page, limit int) ([]model.Application, int64, error)
	ListByStatuses(ctx context.Context, statuses []int, positionType string, page, limit int) ([]model.Application, int64, error)
	Update(ctx context.Context, app *model.Application) error
	ListApprovedWithoutCertificate(ctx context.Context, approvedStatus int) ([]model.Application, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	ReplaceQualifications(ctx context.Context, appID uuid.UUID, quals []model.Qualification) error
	ReplaceExperiences(ctx context.Context, appID uuid.UUID, exps []model.Experience) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *model.Application) error {
	return GetDB(ctx, r.db).Create(app).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	if err := GetDB(ctx, r.db).First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByIDFull loads the denormalized view: documents, qualifications,
// experiences, applicant.
func (r *applicationRepository) FindByIDFull(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := GetDB(ctx, r.db).
		Preload("Applicant").
		Preload("Qualifications").
		Preload("Experiences").
		Preload("Documents").
		First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uuid.UUID, page, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Application{}).Where("applicant_id = ?", applicantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *applicationRepository) ListByStatuses(ctx context.Context, statuses []int, positionType string, page, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := GetDB(ctx, r.db)
	build := func(q *gorm.DB) *gorm.DB {
		q = q.Where("status IN ?", statuses)
		if positionType != "" {
			q = q.Where("position_type = ?", positionType)
		}
		return q
	}

	if err := build(db.Model(&model.Application{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := build(db.Preload("Applicant")).
		Order("submitted_at ASC").
		Offset(offset).Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *model.Application) error {
	return GetDB(ctx, r.db).Save(app).Error
}

// ListApprovedWithoutCertificate feeds the certificate issuer recovery pass
// at startup.
func (r *applicationRepository) ListApprovedWithoutCertificate(ctx context.Context, approvedStatus int) ([]model.Application, error) {
	var apps []model.Application
	err := GetDB(ctx, r.db).
		Where("status = ? AND certificate_id IS NULL", approvedStatus).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Application{}).
		Where("application_no LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (r *applicationRepository) ReplaceQualifications(ctx context.Context, appID uuid.UUID, quals []model.Qualification) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("application_id = ?", appID).Delete(&model.Qualification{}).Error; err != nil {
		return err
	}
	if len(quals) == 0 {
		return nil
	}
	for i := range quals {
		quals[i].ApplicationID = appID
	}
	return db.Create(&quals).Error
}

func (r *applicationRepository) ReplaceExperiences(ctx context.Context, appID uuid.UUID, exps []model.Experience) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("application_id = ?", appID).Delete(&model.Experience{}).Error; err != nil {
		return err
	}
	if len(exps) == 0 {
		return nil
	}
	for i := range exps {
		exps[i].ApplicationID = appID
	}
	return db.Create(&exps).Error
}
