package repositories

import (
	"context"
	"time"

	"moimhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loginCodeRepository implements LoginCodeRepository interface
type loginCodeRepository struct {
	db *gorm.DB
}

// NewLoginCodeRepository creates a new login code repository
func NewLoginCodeRepository(db *gorm.DB) LoginCodeRepository {
	return &loginCodeRepository{db: db}
}

// Create creates a new login code
func (r *loginCodeRepository) Create(ctx context.Context, code *models.LoginCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// GetByCode gets a login code by its value
func (r *loginCodeRepository) GetByCode(ctx context.Context, code string) (*models.LoginCode, error) {
	var row models.LoginCode
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkUsed flips used_at on an unused, unexpired code and returns the number
// of rows touched. The guard on used_at makes concurrent redemption attempts
// race-safe: exactly one caller sees a row count of 1.
func (r *loginCodeRepository) MarkUsed(ctx context.Context, code string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.LoginCode{}).
		Where("code = ?", code).
		Where("used_at IS NULL").
		Where("expires_at > ?", now).
		Update("used_at", &now)
	return result.RowsAffected, result.Error
}

// DeleteUnusedByMemberID purges a member's stale unused codes
func (r *loginCodeRepository) DeleteUnusedByMemberID(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Where("used_at IS NULL").
		Delete(&models.LoginCode{}).Error
}

// DeleteDead deletes used and expired codes (cleanup job)
func (r *loginCodeRepository) DeleteDead(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("used_at IS NOT NULL OR expires_at < ?", time.Now()).
		Delete(&models.LoginCode{})
	return result.RowsAffected, result.Error
}
