package repositories

import (
	"context"

	"moimhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByLoginID gets a member by login id
func (r *memberRepository) GetByLoginID(ctx context.Context, loginID string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("login_id = ?", loginID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByLoginIDOrPhone gets a member matching either identifier
func (r *memberRepository) GetByLoginIDOrPhone(ctx context.Context, loginID, phone string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("login_id = ? OR phone = ?", loginID, phone).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update updates a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// Delete soft deletes a member
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, id).Error
}

// ExistsByLoginID checks if a login id is taken
func (r *memberRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("login_id = ?", loginID).Count(&count).Error
	return count > 0, err
}

// ExistsByPhone checks if a phone number is taken
func (r *memberRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}
