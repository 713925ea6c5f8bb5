package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/adapters/persistence/repositories"
	"moimhub/internal/pkg/pagination"
	"moimhub/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member errors
var (
	ErrLoginIDTaken        = errors.New("login id already taken")
	ErrPhoneTaken          = errors.New("phone number already registered")
	ErrAffiliationNotFound = errors.New("affiliation not found")
	ErrAffiliationExists   = errors.New("member already belongs to this organization")
	ErrNoAffiliations      = errors.New("at least one affiliation is required")
	ErrInvalidPhone        = errors.New("invalid phone number")
	ErrInvalidRole         = errors.New("invalid role")
	ErrWeakPassword        = errors.New("password does not meet requirements")
)

// MemberService handles member registration, admin member management and
// the approval workflow
type MemberService struct {
	db              *gorm.DB
	memberRepo      repositories.MemberRepository
	affiliationRepo repositories.AffiliationRepository
	generationRepo  repositories.GenerationRepository
}

// NewMemberService creates a new member service
func NewMemberService(
	db *gorm.DB,
	memberRepo repositories.MemberRepository,
	affiliationRepo repositories.AffiliationRepository,
	generationRepo repositories.GenerationRepository,
) *MemberService {
	return &MemberService{
		db:              db,
		memberRepo:      memberRepo,
		affiliationRepo: affiliationRepo,
		generationRepo:  generationRepo,
	}
}

// AffiliationInput names the organization and generation a member joins
type AffiliationInput struct {
	OrganizationID uint `json:"organization_id"`
	GenerationID   uint `json:"generation_id"`
}

// RegisterInput represents self-service registration input
type RegisterInput struct {
	LoginID      string             `json:"login_id"`
	Password     string             `json:"password"`
	Name         string             `json:"name"`
	Phone        string             `json:"phone"`
	Company      *string            `json:"company"`
	Job          *string            `json:"job"`
	Address      *string            `json:"address"`
	Affiliations []AffiliationInput `json:"affiliations"`
}

// Register creates a member together with their affiliations in one
// transaction. Self-registered affiliations start ACTIVE.
func (s *MemberService) Register(ctx context.Context, input *RegisterInput) (*models.Member, error) {
	if !password.Validate(input.Password) {
		return nil, ErrWeakPassword
	}
	if len(input.Affiliations) == 0 {
		return nil, ErrNoAffiliations
	}

	if taken, err := s.memberRepo.ExistsByLoginID(ctx, input.LoginID); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrLoginIDTaken
	}
	if taken, err := s.memberRepo.ExistsByPhone(ctx, input.Phone); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrPhoneTaken
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		LoginID:  input.LoginID,
		Name:     input.Name,
		Phone:    input.Phone,
		Password: hashed,
		Company:  input.Company,
		Job:      input.Job,
		Address:  input.Address,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		memberRepo := repositories.NewMemberRepository(tx)
		affRepo := repositories.NewAffiliationRepository(tx)
		genRepo := repositories.NewGenerationRepository(tx)

		if err := memberRepo.Create(ctx, member); err != nil {
			return err
		}

		for _, a := range input.Affiliations {
			gen, err := genRepo.GetByID(ctx, a.GenerationID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrGenerationNotFound
				}
				return err
			}
			if gen.OrganizationID != a.OrganizationID {
				return ErrGenerationNotFound
			}

			aff := &models.Affiliation{
				MemberID:       member.ID,
				OrganizationID: a.OrganizationID,
				GenerationID:   a.GenerationID,
				Role:           models.RoleUser,
				Status:         models.AffiliationActive,
			}
			if err := affRepo.Create(ctx, aff); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Member registered: %s", member.LoginID)
	return member, nil
}

// AdminCreateInput represents admin member creation input
type AdminCreateInput struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Company        *string `json:"company"`
	Job            *string `json:"job"`
	OrganizationID uint    `json:"organization_id"`
	GenerationID   uint    `json:"generation_id"`
}

// AdminCreate adds a member on behalf of an admin. An existing member with
// the same phone number is reused instead of duplicated; a brand-new member
// gets the phone digits as both login id and initial password, to be
// replaced through the setup-password flow. The affiliation starts PENDING.
func (s *MemberService) AdminCreate(ctx context.Context, input *AdminCreateInput) (*models.Member, error) {
	digits := phoneDigits(input.Phone)
	if len(digits) < 9 {
		return nil, ErrInvalidPhone
	}

	gen, err := s.generationRepo.GetByID(ctx, input.GenerationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}
	if gen.OrganizationID != input.OrganizationID {
		return nil, ErrGenerationNotFound
	}

	var member *models.Member
	err = s.db.Transaction(func(tx *gorm.DB) error {
		memberRepo := repositories.NewMemberRepository(tx)
		affRepo := repositories.NewAffiliationRepository(tx)

		existing, err := memberRepo.GetByLoginIDOrPhone(ctx, digits, input.Phone)
		switch {
		case err == nil:
			member = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			hashed, err := password.Hash(digits)
			if err != nil {
				return err
			}
			member = &models.Member{
				LoginID:  digits,
				Name:     input.Name,
				Phone:    input.Phone,
				Password: hashed,
				Company:  input.Company,
				Job:      input.Job,
			}
			if err := memberRepo.Create(ctx, member); err != nil {
				return err
			}
		default:
			return err
		}

		if _, err := affRepo.GetByMemberAndOrganization(ctx, member.ID, input.OrganizationID); err == nil {
			return ErrAffiliationExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return affRepo.Create(ctx, &models.Affiliation{
			MemberID:       member.ID,
			OrganizationID: input.OrganizationID,
			GenerationID:   input.GenerationID,
			Role:           models.RoleUser,
			Status:         models.AffiliationPending,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Member created by admin: %s", member.Name)
	return member, nil
}

// BulkRow is one row of a bulk member import
type BulkRow struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Company *string `json:"company"`
	Job     *string `json:"job"`
}

// BulkRowError reports why one import row was skipped
type BulkRowError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BulkResult summarizes a bulk import batch
type BulkResult struct {
	BatchID string         `json:"batch_id"`
	Created int            `json:"created"`
	Reused  int            `json:"reused"`
	Errors  []BulkRowError `json:"errors"`
}

// BulkCreate imports many members into one organization generation. Rows
// are validated individually so a bad row skips without aborting the
// batch. The returned batch id ties the import's log lines together.
func (s *MemberService) BulkCreate(ctx context.Context, orgID, generationID uint, rows []BulkRow) (*BulkResult, error) {
	gen, err := s.generationRepo.GetByID(ctx, generationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}
	if gen.OrganizationID != orgID {
		return nil, ErrGenerationNotFound
	}

	result := &BulkResult{
		BatchID: uuid.New().String(),
		Errors:  []BulkRowError{},
	}

	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		digits := phoneDigits(row.Phone)
		if name == "" {
			result.Errors = append(result.Errors, BulkRowError{Index: i, Reason: "name is required"})
			continue
		}
		if len(digits) < 9 {
			result.Errors = append(result.Errors, BulkRowError{Index: i, Reason: "invalid phone number"})
			continue
		}

		existed, err := s.memberRepo.ExistsByPhone(ctx, row.Phone)
		if err != nil {
			return nil, err
		}

		if _, err := s.AdminCreate(ctx, &AdminCreateInput{
			Name:           name,
			Phone:          row.Phone,
			Company:        row.Company,
			Job:            row.Job,
			OrganizationID: orgID,
			GenerationID:   generationID,
		}); err != nil {
			if errors.Is(err, ErrAffiliationExists) {
				result.Errors = append(result.Errors, BulkRowError{Index: i, Reason: "already a member of this organization"})
				continue
			}
			result.Errors = append(result.Errors, BulkRowError{Index: i, Reason: err.Error()})
			continue
		}
		if existed {
			result.Reused++
		} else {
			result.Created++
		}
	}

	log.Printf("✅ Bulk import %s: %d created, %d reused, %d skipped",
		result.BatchID, result.Created, result.Reused, len(result.Errors))
	return result, nil
}

// Approve flips a pending affiliation to ACTIVE
func (s *MemberService) Approve(ctx context.Context, affiliationID uint) error {
	return s.setAffiliationStatus(ctx, affiliationID, models.AffiliationActive)
}

// Reject flips a pending affiliation to REJECTED
func (s *MemberService) Reject(ctx context.Context, affiliationID uint) error {
	return s.setAffiliationStatus(ctx, affiliationID, models.AffiliationRejected)
}

func (s *MemberService) setAffiliationStatus(ctx context.Context, affiliationID uint, status string) error {
	if _, err := s.affiliationRepo.GetByID(ctx, affiliationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAffiliationNotFound
		}
		return err
	}
	return s.affiliationRepo.UpdateStatus(ctx, affiliationID, status)
}

// ChangeRole changes an affiliation's role between USER and ADMIN
func (s *MemberService) ChangeRole(ctx context.Context, affiliationID uint, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return ErrInvalidRole
	}
	if _, err := s.affiliationRepo.GetByID(ctx, affiliationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAffiliationNotFound
		}
		return err
	}
	return s.affiliationRepo.UpdateRole(ctx, affiliationID, role)
}

// UpdateProfileInput represents self-service profile update input
type UpdateProfileInput struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Job     *string `json:"job"`
	Address *string `json:"address"`
}

// UpdateProfile lets a member edit their own profile fields
func (s *MemberService) UpdateProfile(ctx context.Context, memberID uint, input *UpdateProfileInput) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		member.Name = *input.Name
	}
	if input.Company != nil {
		member.Company = input.Company
	}
	if input.Job != nil {
		member.Job = input.Job
	}
	if input.Address != nil {
		member.Address = input.Address
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// AdminUpdateInput represents admin member update input
type AdminUpdateInput struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Job     *string `json:"job"`
	Address *string `json:"address"`
}

// AdminUpdate edits any member's profile, including the phone number
func (s *MemberService) AdminUpdate(ctx context.Context, memberID uint, input *AdminUpdateInput) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	if input.Phone != nil && *input.Phone != member.Phone {
		if taken, err := s.memberRepo.ExistsByPhone(ctx, *input.Phone); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrPhoneTaken
		}
		member.Phone = *input.Phone
	}
	if input.Name != nil {
		member.Name = *input.Name
	}
	if input.Company != nil {
		member.Company = input.Company
	}
	if input.Job != nil {
		member.Job = input.Job
	}
	if input.Address != nil {
		member.Address = input.Address
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// SetupInitialPassword replaces the provisioned password of an
// admin-created member and activates their pending affiliations, both in
// one transaction.
func (s *MemberService) SetupInitialPassword(ctx context.Context, memberID uint, newPassword string) error {
	if !password.Validate(newPassword) {
		return ErrWeakPassword
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	member.Password = hashed

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewMemberRepository(tx).Update(ctx, member); err != nil {
			return err
		}
		return repositories.NewAffiliationRepository(tx).ActivatePendingByMember(ctx, memberID)
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Password set up for member ID: %d", memberID)
	return nil
}

// ListInput represents member listing input
type ListInput struct {
	OrganizationID uint
	Query          string
	GenerationID   uint
	Status         string
	Page           int
	Limit          int
}

// MemberListItem is one row of an organization's member listing
type MemberListItem struct {
	Affiliation *models.Affiliation    `json:"affiliation"`
	Member      *models.MemberResponse `json:"member"`
}

// List returns an organization's members through their affiliations, with
// pagination, text search and generation/status filters
func (s *MemberService) List(ctx context.Context, input *ListInput) ([]*MemberListItem, *pagination.Meta, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = pagination.DefaultLimit
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	params := &pagination.Params{Page: page, Limit: limit, Offset: (page - 1) * limit}

	filter := repositories.AffiliationFilter{
		Query:        input.Query,
		GenerationID: input.GenerationID,
		Status:       input.Status,
	}

	affs, total, err := s.affiliationRepo.ListByOrganization(ctx, input.OrganizationID, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, nil, err
	}

	items := make([]*MemberListItem, 0, len(affs))
	for _, aff := range affs {
		item := &MemberListItem{Affiliation: aff}
		if aff.Member != nil {
			item.Member = aff.Member.ToResponse()
		}
		items = append(items, item)
	}

	return items, pagination.GetMeta(params, total), nil
}

// Delete soft deletes a member and revokes their sessions
func (s *MemberService) Delete(ctx context.Context, memberID uint) error {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := repositories.NewRefreshTokenRepository(tx).RevokeAllByMemberID(ctx, memberID); err != nil {
			return err
		}
		return repositories.NewMemberRepository(tx).Delete(ctx, memberID)
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Member deleted: ID %d", memberID)
	return nil
}

// GetWithAffiliations loads a member together with their affiliations
func (s *MemberService) GetWithAffiliations(ctx context.Context, memberID uint) (*models.Member, []*models.Affiliation, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMemberNotFound
		}
		return nil, nil, err
	}

	affs, err := s.affiliationRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, nil, err
	}
	return member, affs, nil
}

// phoneDigits strips everything but digits from a phone number
func phoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
