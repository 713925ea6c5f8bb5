package services

import (
	"context"
	"errors"
	"log"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Organization errors
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrgNameTaken         = errors.New("organization name already taken")
	ErrGenNameTaken         = errors.New("generation name already taken in this organization")
	ErrGenerationWrongOrg   = errors.New("generation belongs to a different organization")
)

// OrganizationService handles organizations and their generations
type OrganizationService struct {
	db               *gorm.DB
	organizationRepo repositories.OrganizationRepository
	generationRepo   repositories.GenerationRepository
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	db *gorm.DB,
	organizationRepo repositories.OrganizationRepository,
	generationRepo repositories.GenerationRepository,
) *OrganizationService {
	return &OrganizationService{
		db:               db,
		organizationRepo: organizationRepo,
		generationRepo:   generationRepo,
	}
}

// CreateOrganization creates an organization together with its first
// generation, which starts as the primary one
func (s *OrganizationService) CreateOrganization(ctx context.Context, name, firstGeneration string) (*models.Organization, error) {
	taken, err := s.organizationRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrOrgNameTaken
	}

	org := &models.Organization{Name: name}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewOrganizationRepository(tx).Create(ctx, org); err != nil {
			return err
		}
		return repositories.NewGenerationRepository(tx).Create(ctx, &models.Generation{
			OrganizationID: org.ID,
			Name:           firstGeneration,
			IsPrimary:      true,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Organization created: %s", org.Name)
	return org, nil
}

// ListOrganizations lists all organizations
func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	return s.organizationRepo.List(ctx)
}

// GetOrganization gets one organization by id
func (s *OrganizationService) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	org, err := s.organizationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return org, nil
}

// DeleteOrganization soft deletes an organization
func (s *OrganizationService) DeleteOrganization(ctx context.Context, id uint) error {
	if _, err := s.GetOrganization(ctx, id); err != nil {
		return err
	}
	return s.organizationRepo.Delete(ctx, id)
}

// CreateGeneration adds a generation to an organization. Names are unique
// within the organization.
func (s *OrganizationService) CreateGeneration(ctx context.Context, orgID uint, name string) (*models.Generation, error) {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	taken, err := s.generationRepo.ExistsByName(ctx, orgID, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrGenNameTaken
	}

	gen := &models.Generation{OrganizationID: orgID, Name: name}
	if err := s.generationRepo.Create(ctx, gen); err != nil {
		return nil, err
	}

	log.Printf("✅ Generation created: %s (organization %d)", gen.Name, orgID)
	return gen, nil
}

// ListGenerations lists the generations of an organization
func (s *OrganizationService) ListGenerations(ctx context.Context, orgID uint) ([]*models.Generation, error) {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.generationRepo.ListByOrganization(ctx, orgID)
}

// SetPrimaryGeneration marks one generation as the organization's current
// one. The clear and the set run in one transaction so exactly one
// generation is primary at any time.
func (s *OrganizationService) SetPrimaryGeneration(ctx context.Context, orgID, generationID uint) error {
	gen, err := s.generationRepo.GetByID(ctx, generationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenerationNotFound
		}
		return err
	}
	if gen.OrganizationID != orgID {
		return ErrGenerationWrongOrg
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewGenerationRepository(tx)
		if err := repo.ClearPrimary(ctx, orgID); err != nil {
			return err
		}
		return repo.SetPrimary(ctx, generationID)
	})
}

// DeleteGeneration soft deletes a generation
func (s *OrganizationService) DeleteGeneration(ctx context.Context, orgID, generationID uint) error {
	gen, err := s.generationRepo.GetByID(ctx, generationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenerationNotFound
		}
		return err
	}
	if gen.OrganizationID != orgID {
		return ErrGenerationWrongOrg
	}
	return s.generationRepo.Delete(ctx, generationID)
}
