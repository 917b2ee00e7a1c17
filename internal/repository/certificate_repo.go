package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	FindByApplication(ctx context.Context, appID uuid.UUID) (*model.Certificate, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, cert *model.Certificate) error {
	return GetDB(ctx, r.db).Create(cert).Error
}

func (r *certificateRepository) FindByApplication(ctx context.Context, appID uuid.UUID) (*model.Certificate, error) {
	var cert model.Certificate
	if err := GetDB(ctx, r.db).First(&cert, "application_id = ?", appID).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Certificate{}).
		Where("certificate_no LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}
