package repositories

import (
	"context"

	"moimhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// affiliationRepository implements AffiliationRepository interface
type affiliationRepository struct {
	db *gorm.DB
}

// NewAffiliationRepository creates a new affiliation repository
func NewAffiliationRepository(db *gorm.DB) AffiliationRepository {
	return &affiliationRepository{db: db}
}

// Create creates a new affiliation
func (r *affiliationRepository) Create(ctx context.Context, aff *models.Affiliation) error {
	return r.db.WithContext(ctx).Create(aff).Error
}

// GetByID gets an affiliation by ID
func (r *affiliationRepository) GetByID(ctx context.Context, id uint) (*models.Affiliation, error) {
	var aff models.Affiliation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&aff).Error
	if err != nil {
		return nil, err
	}
	return &aff, nil
}

// GetByMemberAndOrganization gets a member's affiliation within one organization
func (r *affiliationRepository) GetByMemberAndOrganization(ctx context.Context, memberID, orgID uint) (*models.Affiliation, error) {
	var aff models.Affiliation
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Where("organization_id = ?", orgID).
		First(&aff).Error
	if err != nil {
		return nil, err
	}
	return &aff, nil
}

// ListByMember lists a member's affiliations with org and generation preloaded
func (r *affiliationRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Affiliation, error) {
	var affs []*models.Affiliation
	err := r.db.WithContext(ctx).
		Preload("Organization").
		Preload("Generation").
		Preload("Position").
		Where("member_id = ?", memberID).
		Find(&affs).Error
	if err != nil {
		return nil, err
	}
	return affs, nil
}

// ListByOrganization lists affiliations of an organization with pagination,
// optional text search over member name/phone/company and generation filter
func (r *affiliationRepository) ListByOrganization(ctx context.Context, orgID uint, filter AffiliationFilter, offset, limit int) ([]*models.Affiliation, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Affiliation{}).
		Joins("JOIN members ON members.id = affiliations.member_id").
		Where("affiliations.organization_id = ?", orgID)

	if filter.Status != "" {
		query = query.Where("affiliations.status = ?", filter.Status)
	}
	if filter.GenerationID != 0 {
		query = query.Where("affiliations.generation_id = ?", filter.GenerationID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("members.name LIKE ? OR members.phone LIKE ? OR members.company LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var affs []*models.Affiliation
	err := query.
		Preload("Member").
		Preload("Generation").
		Preload("Position").
		Offset(offset).
		Limit(limit).
		Find(&affs).Error
	if err != nil {
		return nil, 0, err
	}

	return affs, total, nil
}

// UpdateStatus updates an affiliation's approval status
func (r *affiliationRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Affiliation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateRole updates an affiliation's role
func (r *affiliationRepository) UpdateRole(ctx context.Context, id uint, role string) error {
	return r.db.WithContext(ctx).
		Model(&models.Affiliation{}).
		Where("id = ?", id).
		Update("role", role).Error
}

// UpdatePosition assigns or clears the position of an affiliation
func (r *affiliationRepository) UpdatePosition(ctx context.Context, id uint, positionID *uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Affiliation{}).
		Where("id = ?", id).
		Update("position_id", positionID).Error
}

// ActivatePendingByMember flips all of a member's PENDING affiliations to ACTIVE
func (r *affiliationRepository) ActivatePendingByMember(ctx context.Context, memberID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Affiliation{}).
		Where("member_id = ?", memberID).
		Where("status = ?", models.AffiliationPending).
		Update("status", models.AffiliationActive).Error
}

// HasAdminRole reports whether the member holds an ADMIN role anywhere
func (r *affiliationRepository) HasAdminRole(ctx context.Context, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Affiliation{}).
		Where("member_id = ?", memberID).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error
	return count > 0, err
}
