package repositories

import (
	"context"

	"moimhub/internal/adapters/persistence/models"
)

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByLoginID(ctx context.Context, loginID string) (*models.Member, error)
	GetByLoginIDOrPhone(ctx context.Context, loginID, phone string) (*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uint) error
	ExistsByLoginID(ctx context.Context, loginID string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeActive(ctx context.Context, id uint) (int64, error)
	SetReplacedBy(ctx context.Context, id, replacedBy uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByMemberID(ctx context.Context, memberID uint) error
	CountActiveByMemberID(ctx context.Context, memberID uint) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// LoginCodeRepository defines login code repository interface
type LoginCodeRepository interface {
	Create(ctx context.Context, code *models.LoginCode) error
	GetByCode(ctx context.Context, code string) (*models.LoginCode, error)
	MarkUsed(ctx context.Context, code string) (int64, error)
	DeleteUnusedByMemberID(ctx context.Context, memberID uint) error
	DeleteDead(ctx context.Context) (int64, error)
}

// PositionRepository defines position repository interface
type PositionRepository interface {
	Create(ctx context.Context, position *models.Position) error
	GetByID(ctx context.Context, id uint) (*models.Position, error)
	ListByGeneration(ctx context.Context, generationID uint) ([]*models.Position, error)
	MaxSiblingRank(ctx context.Context, generationID uint, parentID *uint) (int, error)
	CountByGeneration(ctx context.Context, generationID uint) (int64, error)
	CountChildren(ctx context.Context, parentID uint) (int64, error)
	Update(ctx context.Context, position *models.Position) error
	Delete(ctx context.Context, id uint) error
}

// OrganizationRepository defines organization repository interface
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uint) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Delete(ctx context.Context, id uint) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// GenerationRepository defines generation repository interface
type GenerationRepository interface {
	Create(ctx context.Context, gen *models.Generation) error
	GetByID(ctx context.Context, id uint) (*models.Generation, error)
	ListByOrganization(ctx context.Context, orgID uint) ([]*models.Generation, error)
	ClearPrimary(ctx context.Context, orgID uint) error
	SetPrimary(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	ExistsByName(ctx context.Context, orgID uint, name string) (bool, error)
}

// AffiliationFilter narrows affiliation listings
type AffiliationFilter struct {
	Query        string
	GenerationID uint
	Status       string
}

// AffiliationRepository defines affiliation repository interface
type AffiliationRepository interface {
	Create(ctx context.Context, aff *models.Affiliation) error
	GetByID(ctx context.Context, id uint) (*models.Affiliation, error)
	GetByMemberAndOrganization(ctx context.Context, memberID, orgID uint) (*models.Affiliation, error)
	ListByMember(ctx context.Context, memberID uint) ([]*models.Affiliation, error)
	ListByOrganization(ctx context.Context, orgID uint, filter AffiliationFilter, offset, limit int) ([]*models.Affiliation, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	UpdateRole(ctx context.Context, id uint, role string) error
	UpdatePosition(ctx context.Context, id uint, positionID *uint) error
	ActivatePendingByMember(ctx context.Context, memberID uint) error
	HasAdminRole(ctx context.Context, memberID uint) (bool, error)
}
