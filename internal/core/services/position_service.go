package services

import (
	"context"
	"errors"
	"log"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Position errors
var (
	ErrGenerationNotFound  = errors.New("generation not found")
	ErrPositionNotFound    = errors.New("position not found")
	ErrParentNotFound      = errors.New("parent position not found")
	ErrParentWrongGen      = errors.New("parent belongs to a different generation")
	ErrPositionWrongGen    = errors.New("position belongs to a different generation")
	ErrInvalidDuesCycle    = errors.New("invalid dues cycle")
	ErrNoPositionsToClone  = errors.New("source generation has no positions")
	ErrTargetNotEmpty      = errors.New("target generation already has positions")
	ErrSameGeneration      = errors.New("source and target generation are the same")
	ErrOrphanedPositions   = errors.New("source contains positions with unreachable parents")
	ErrPositionHasChildren = errors.New("position still has child positions")
)

// PositionService handles the position tree of each generation, including
// cloning the whole tree into a new generation
type PositionService struct {
	db              *gorm.DB
	positionRepo    repositories.PositionRepository
	generationRepo  repositories.GenerationRepository
	affiliationRepo repositories.AffiliationRepository
}

// NewPositionService creates a new position service
func NewPositionService(
	db *gorm.DB,
	positionRepo repositories.PositionRepository,
	generationRepo repositories.GenerationRepository,
	affiliationRepo repositories.AffiliationRepository,
) *PositionService {
	return &PositionService{
		db:              db,
		positionRepo:    positionRepo,
		generationRepo:  generationRepo,
		affiliationRepo: affiliationRepo,
	}
}

// CreatePositionInput represents position creation input
type CreatePositionInput struct {
	GenerationID uint   `json:"generation_id"`
	Name         string `json:"name"`
	ParentID     *uint  `json:"parent_id"`
	IsExecutive  bool   `json:"is_executive"`
	DuesAmount   int    `json:"dues_amount"`
	DuesCycle    string `json:"dues_cycle"`
}

// Create adds a position to a generation. The rank is assigned as the next
// free slot among its siblings, and a parent must live in the same
// generation as the child.
func (s *PositionService) Create(ctx context.Context, input *CreatePositionInput) (*models.Position, error) {
	if _, err := s.generationRepo.GetByID(ctx, input.GenerationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := s.positionRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.GenerationID != input.GenerationID {
			return nil, ErrParentWrongGen
		}
	}

	cycle := input.DuesCycle
	if cycle == "" {
		cycle = models.DuesCycleNone
	}
	if !models.ValidDuesCycle(cycle) {
		return nil, ErrInvalidDuesCycle
	}

	maxRank, err := s.positionRepo.MaxSiblingRank(ctx, input.GenerationID, input.ParentID)
	if err != nil {
		return nil, err
	}

	position := &models.Position{
		GenerationID: input.GenerationID,
		Name:         input.Name,
		Rank:         maxRank + 1,
		ParentID:     input.ParentID,
		IsExecutive:  input.IsExecutive,
		DuesAmount:   input.DuesAmount,
		DuesCycle:    cycle,
	}
	if err := s.positionRepo.Create(ctx, position); err != nil {
		return nil, err
	}

	log.Printf("✅ Position created: %s (generation %d)", position.Name, position.GenerationID)
	return position, nil
}

// UpdatePositionInput represents position update input
type UpdatePositionInput struct {
	Name        *string `json:"name"`
	Rank        *int    `json:"rank"`
	IsExecutive *bool   `json:"is_executive"`
	DuesAmount  *int    `json:"dues_amount"`
	DuesCycle   *string `json:"dues_cycle"`
}

// Update modifies a position's own fields. Reparenting is not supported,
// delete and recreate instead.
func (s *PositionService) Update(ctx context.Context, id uint, input *UpdatePositionInput) (*models.Position, error) {
	position, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		position.Name = *input.Name
	}
	if input.Rank != nil {
		position.Rank = *input.Rank
	}
	if input.IsExecutive != nil {
		position.IsExecutive = *input.IsExecutive
	}
	if input.DuesAmount != nil {
		position.DuesAmount = *input.DuesAmount
	}
	if input.DuesCycle != nil {
		if !models.ValidDuesCycle(*input.DuesCycle) {
			return nil, ErrInvalidDuesCycle
		}
		position.DuesCycle = *input.DuesCycle
	}

	if err := s.positionRepo.Update(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

// Delete removes a position. A position that still has children cannot be
// deleted so the forest never loses internal links.
func (s *PositionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.positionRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPositionNotFound
		}
		return err
	}

	children, err := s.positionRepo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrPositionHasChildren
	}

	return s.positionRepo.Delete(ctx, id)
}

// PositionNode is a position with its children nested, for tree rendering
type PositionNode struct {
	*models.Position
	Children []*PositionNode `json:"children"`
}

// Tree returns the positions of a generation as a forest ordered by rank
func (s *PositionService) Tree(ctx context.Context, generationID uint) ([]*PositionNode, error) {
	if _, err := s.generationRepo.GetByID(ctx, generationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}

	positions, err := s.positionRepo.ListByGeneration(ctx, generationID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*PositionNode, len(positions))
	for _, p := range positions {
		nodes[p.ID] = &PositionNode{Position: p, Children: []*PositionNode{}}
	}

	var roots []*PositionNode
	for _, p := range positions {
		node := nodes[p.ID]
		if p.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*p.ParentID]
		if !ok {
			// parent outside this generation, surface the row as a root
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots, nil
}

// CloneResult summarizes a completed generation clone
type CloneResult struct {
	SourceGenerationID uint `json:"source_generation_id"`
	TargetGenerationID uint `json:"target_generation_id"`
	ClonedCount        int  `json:"cloned_count"`
}

// CloneGeneration copies the entire position tree of one generation into
// another, preserving structure, rank order and every attribute while
// assigning fresh ids. The copy runs in a single transaction against an
// empty target, so observers see either no positions or the full tree.
//
// Roots are inserted first, then descendants in passes: a position is
// copied once its parent's new id is known. A pass that copies nothing
// while rows remain means those rows reference parents outside the
// source tree, and the whole clone is rolled back.
func (s *PositionService) CloneGeneration(ctx context.Context, sourceID, targetID uint) (*CloneResult, error) {
	if sourceID == targetID {
		return nil, ErrSameGeneration
	}

	if _, err := s.generationRepo.GetByID(ctx, sourceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}
	if _, err := s.generationRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}

	var cloned int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewPositionRepository(tx)

		existing, err := repo.CountByGeneration(ctx, targetID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrTargetNotEmpty
		}

		source, err := repo.ListByGeneration(ctx, sourceID)
		if err != nil {
			return err
		}
		if len(source) == 0 {
			return ErrNoPositionsToClone
		}

		// old id -> new id, filled in as rows are copied
		idMap := make(map[uint]uint, len(source))

		copyOne := func(p *models.Position, parentID *uint) error {
			clone := &models.Position{
				GenerationID: targetID,
				Name:         p.Name,
				Rank:         p.Rank,
				ParentID:     parentID,
				IsExecutive:  p.IsExecutive,
				DuesAmount:   p.DuesAmount,
				DuesCycle:    p.DuesCycle,
			}
			if err := repo.Create(ctx, clone); err != nil {
				return err
			}
			idMap[p.ID] = clone.ID
			return nil
		}

		var pending []*models.Position
		for _, p := range source {
			if p.ParentID == nil {
				if err := copyOne(p, nil); err != nil {
					return err
				}
				continue
			}
			pending = append(pending, p)
		}

		for len(pending) > 0 {
			var remaining []*models.Position
			for _, p := range pending {
				newParent, ok := idMap[*p.ParentID]
				if !ok {
					remaining = append(remaining, p)
					continue
				}
				if err := copyOne(p, &newParent); err != nil {
					return err
				}
			}
			if len(remaining) == len(pending) {
				return ErrOrphanedPositions
			}
			pending = remaining
		}

		cloned = len(idMap)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Cloned %d positions: generation %d -> %d", cloned, sourceID, targetID)

	return &CloneResult{
		SourceGenerationID: sourceID,
		TargetGenerationID: targetID,
		ClonedCount:        cloned,
	}, nil
}

// AssignMemberPosition assigns a position to an affiliation, or clears it
// when positionID is nil. The position must belong to the affiliation's
// generation.
func (s *PositionService) AssignMemberPosition(ctx context.Context, affiliationID uint, positionID *uint) error {
	aff, err := s.affiliationRepo.GetByID(ctx, affiliationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAffiliationNotFound
		}
		return err
	}

	if positionID != nil {
		position, err := s.positionRepo.GetByID(ctx, *positionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPositionNotFound
			}
			return err
		}
		if position.GenerationID != aff.GenerationID {
			return ErrPositionWrongGen
		}
	}

	return s.affiliationRepo.UpdatePosition(ctx, affiliationID, positionID)
}
