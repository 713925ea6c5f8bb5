package repositories

import (
	"context"

	"moimhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// positionRepository implements PositionRepository interface
type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

// Create creates a new position
func (r *positionRepository) Create(ctx context.Context, position *models.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

// GetByID gets a position by ID
func (r *positionRepository) GetByID(ctx context.Context, id uint) (*models.Position, error) {
	var position models.Position
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&position).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// ListByGeneration lists all positions of a generation ordered by rank.
// Consumers derive display order from rank, not insertion order.
func (r *positionRepository) ListByGeneration(ctx context.Context, generationID uint) ([]*models.Position, error) {
	var positions []*models.Position
	err := r.db.WithContext(ctx).
		Where("generation_id = ?", generationID).
		Order("`rank` ASC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// MaxSiblingRank returns the highest rank among siblings sharing a parent
// (0 when there are none)
func (r *positionRepository) MaxSiblingRank(ctx context.Context, generationID uint, parentID *uint) (int, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("generation_id = ?", generationID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var maxRank int
	// rank is a reserved word in MySQL 8, hence the quoting
	err := query.Select("COALESCE(MAX(`rank`), 0)").Scan(&maxRank).Error
	return maxRank, err
}

// CountByGeneration counts positions in a generation
func (r *positionRepository) CountByGeneration(ctx context.Context, generationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("generation_id = ?", generationID).
		Count(&count).Error
	return count, err
}

// CountChildren counts direct children of a position
func (r *positionRepository) CountChildren(ctx context.Context, parentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	return count, err
}

// Update updates a position
func (r *positionRepository) Update(ctx context.Context, position *models.Position) error {
	return r.db.WithContext(ctx).Save(position).Error
}

// Delete deletes a position
func (r *positionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Position{}, id).Error
}
