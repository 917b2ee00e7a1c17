package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OtpRepository interface {
	Create(ctx context.Context, session *model.OtpSession) error
	FindActive(ctx context.Context, appID uuid.UUID, role string) (*model.OtpSession, error)
	// Consume atomically marks a session consumed. Returns false when the
	// session was already consumed or expired — the check-and-set runs in one
	// statement so two racing verify attempts cannot both succeed.
	Consume(ctx context.Context, sessionID uuid.UUID) (bool, error)
	IncrementAttempts(ctx context.Context, sessionID uuid.UUID) error
	InvalidateForRole(ctx context.Context, appID uuid.UUID, role string) error
}

type otpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, session *model.OtpSession) error {
	return GetDB(ctx, r.db).Create(session).Error
}

func (r *otpRepository) FindActive(ctx context.Context, appID uuid.UUID, role string) (*model.OtpSession, error) {
	var session model.OtpSession
	err := GetDB(ctx, r.db).
		Where("application_id = ? AND role = ? AND consumed = ?", appID, role, false).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *otpRepository) Consume(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.OtpSession{}).
		Where("id = ? AND consumed = ? AND expires_at > NOW()", sessionID, false).
		Update("consumed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *otpRepository) IncrementAttempts(ctx context.Context, sessionID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.OtpSession{}).
		Where("id = ?", sessionID).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

// InvalidateForRole consumes every open session for the pair so a fresh
// generate request leaves exactly one live code.
func (r *otpRepository) InvalidateForRole(ctx context.Context, appID uuid.UUID, role string) error {
	return GetDB(ctx, r.db).Model(&model.OtpSession{}).
		Where("application_id = ? AND role = ? AND consumed = ?", appID, role, false).
		Update("consumed", true).Error
}
