package repositories

import (
	"context"

	"moimhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// generationRepository implements GenerationRepository interface
type generationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new generation repository
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

// Create creates a new generation
func (r *generationRepository) Create(ctx context.Context, gen *models.Generation) error {
	return r.db.WithContext(ctx).Create(gen).Error
}

// GetByID gets a generation by ID
func (r *generationRepository) GetByID(ctx context.Context, id uint) (*models.Generation, error) {
	var gen models.Generation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&gen).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

// ListByOrganization lists generations of an organization, newest name first
func (r *generationRepository) ListByOrganization(ctx context.Context, orgID uint) ([]*models.Generation, error) {
	var gens []*models.Generation
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name DESC").
		Find(&gens).Error
	if err != nil {
		return nil, err
	}
	return gens, nil
}

// ClearPrimary unsets the primary flag for all generations of an organization
func (r *generationRepository) ClearPrimary(ctx context.Context, orgID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Generation{}).
		Where("organization_id = ?", orgID).
		Update("is_primary", false).Error
}

// SetPrimary marks one generation as the organization's primary
func (r *generationRepository) SetPrimary(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Generation{}).
		Where("id = ?", id).
		Update("is_primary", true).Error
}

// Delete soft deletes a generation
func (r *generationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Generation{}, id).Error
}

// ExistsByName checks if a generation name is taken within an organization
func (r *generationRepository) ExistsByName(ctx context.Context, orgID uint, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Generation{}).
		Where("organization_id = ?", orgID).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}
