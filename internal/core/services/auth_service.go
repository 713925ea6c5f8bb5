package services

import (
	"context"
	"errors"
	"log"
	"time"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/adapters/persistence/repositories"
	"moimhub/internal/config"
	"moimhub/internal/pkg/jwt"
	"moimhub/internal/pkg/password"
	"moimhub/internal/pkg/token"

	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrDeviceMismatch     = errors.New("device mismatch")
	ErrInvalidLoginCode   = errors.New("invalid login code")
	ErrLoginCodeUsed      = errors.New("login code already used")
	ErrLoginCodeExpired   = errors.New("login code expired")
	ErrMemberNotFound     = errors.New("member not found")
)

// AuthService handles credential checks, token issuance, refresh rotation
// and the one-time web-session code handoff
type AuthService struct {
	db              *gorm.DB
	memberRepo      repositories.MemberRepository
	refreshRepo     repositories.RefreshTokenRepository
	loginCodeRepo   repositories.LoginCodeRepository
	affiliationRepo repositories.AffiliationRepository
	cfg             *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	db *gorm.DB,
	memberRepo repositories.MemberRepository,
	refreshRepo repositories.RefreshTokenRepository,
	loginCodeRepo repositories.LoginCodeRepository,
	affiliationRepo repositories.AffiliationRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		db:              db,
		memberRepo:      memberRepo,
		refreshRepo:     refreshRepo,
		loginCodeRepo:   loginCodeRepo,
		affiliationRepo: affiliationRepo,
		cfg:             cfg,
	}
}

// LoginInput represents mobile login input
type LoginInput struct {
	LoginID   string  `json:"login_id"`
	Password  string  `json:"password"`
	DeviceID  *string `json:"device_id"`
	UserAgent *string `json:"user_agent"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Member       *models.MemberResponse `json:"member"`
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
}

// Login authenticates a mobile client by credentials and issues a token
// pair. Unknown login id and wrong password both fail as
// ErrInvalidCredentials so the response never reveals which was wrong.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	member, err := s.memberRepo.GetByLoginID(ctx, input.LoginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, member.Password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, member, input.DeviceID, input.UserAgent)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Mobile login: %s", member.LoginID)

	return &AuthResponse{
		Member:       member.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh rotates a refresh token: the presented token is looked up by
// hash, validated, revoked, and replaced by a fresh one inside a single
// transaction. Replaying an already rotated token fails as ErrTokenRevoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, deviceID *string) (*TokenPair, error) {
	tokenHash := token.Hash(refreshToken)

	var pair *TokenPair
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewRefreshTokenRepository(tx)

		stored, err := repo.GetByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if stored.IsRevoked() {
			return ErrTokenRevoked
		}
		if stored.IsExpired() {
			return ErrTokenExpired
		}
		// Binding rejects only an explicit mismatch; a token stored without
		// a device id, or a request that omits one, passes.
		if stored.DeviceID != nil && deviceID != nil && *stored.DeviceID != *deviceID {
			return ErrDeviceMismatch
		}

		// Guarded revoke: a concurrent refresh of the same token loses here.
		rows, err := repo.RevokeActive(ctx, stored.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrTokenRevoked
		}

		member, err := repositories.NewMemberRepository(tx).GetByID(ctx, stored.MemberID)
		if err != nil {
			return ErrMemberNotFound
		}

		rawRefresh, err := token.New(token.RefreshTokenBytes)
		if err != nil {
			return err
		}

		next := &models.RefreshToken{
			MemberID:  stored.MemberID,
			TokenHash: token.Hash(rawRefresh),
			DeviceID:  stored.DeviceID,
			UserAgent: stored.UserAgent,
			ExpiresAt: time.Now().Add(time.Duration(s.cfg.Auth.RefreshTokenDays) * 24 * time.Hour),
		}
		if err := repo.Create(ctx, next); err != nil {
			return err
		}
		if err := repo.SetReplacedBy(ctx, stored.ID, next.ID); err != nil {
			return err
		}

		// role lookup stays on tx so the whole rotation uses one connection
		accessToken, err := s.signAccessToken(ctx, repositories.NewAffiliationRepository(tx), member)
		if err != nil {
			return err
		}

		pair = &TokenPair{AccessToken: accessToken, RefreshToken: rawRefresh}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Logout revokes the presented refresh token. Revoking an already revoked
// or unknown token is not an error from the caller's perspective.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshRepo.RevokeByTokenHash(ctx, token.Hash(refreshToken)); err != nil {
		return err
	}

	log.Println("✅ Mobile logout")
	return nil
}

// LogoutAll revokes all refresh tokens for a member
func (s *AuthService) LogoutAll(ctx context.Context, memberID uint) error {
	if err := s.refreshRepo.RevokeAllByMemberID(ctx, memberID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for member ID: %d", memberID)
	return nil
}

// ValidateAccessToken verifies a bearer token and returns its claims
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.Auth.JWTSecret)
}

// IssueLoginCode creates a one-time code letting an authenticated mobile
// session bootstrap a browser session. Stale unused codes for the member
// are purged first so only the newest code can redeem.
func (s *AuthService) IssueLoginCode(ctx context.Context, memberID uint) (*models.LoginCode, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	raw, err := token.New(token.LoginCodeBytes)
	if err != nil {
		return nil, err
	}

	code := &models.LoginCode{
		Code:      raw,
		MemberID:  memberID,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Auth.LoginCodeSecs) * time.Second),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewLoginCodeRepository(tx)
		if err := repo.DeleteUnusedByMemberID(ctx, memberID); err != nil {
			return err
		}
		return repo.Create(ctx, code)
	})
	if err != nil {
		return nil, err
	}

	return code, nil
}

// RedeemLoginCode consumes a login code exactly once and returns the
// associated member. The used_at flip and the status checks run as one
// guarded update so two concurrent redemptions cannot both succeed.
func (s *AuthService) RedeemLoginCode(ctx context.Context, code string) (*models.Member, error) {
	var member *models.Member
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewLoginCodeRepository(tx)

		row, err := repo.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidLoginCode
			}
			return err
		}
		if row.IsUsed() {
			return ErrLoginCodeUsed
		}
		if row.IsExpired() {
			return ErrLoginCodeExpired
		}

		rows, err := repo.MarkUsed(ctx, code)
		if err != nil {
			return err
		}
		if rows == 0 {
			// lost the race, or expired between the read and the update
			return ErrLoginCodeUsed
		}

		member, err = repositories.NewMemberRepository(tx).GetByID(ctx, row.MemberID)
		if err != nil {
			return ErrMemberNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

// WebLoginInput represents the web login provider input: either
// credentials or a one-time login code
type WebLoginInput struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

// WebAuthenticate is the browser-side login provider. It accepts either a
// loginId/password pair or a login code issued by a mobile session, and
// returns the same token pair shape as mobile login.
func (s *AuthService) WebAuthenticate(ctx context.Context, input *WebLoginInput) (*AuthResponse, error) {
	var member *models.Member
	var err error

	if input.Code != "" {
		member, err = s.RedeemLoginCode(ctx, input.Code)
		if err != nil {
			return nil, err
		}
	} else {
		member, err = s.memberRepo.GetByLoginID(ctx, input.LoginID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		if !password.Verify(input.Password, member.Password) {
			return nil, ErrInvalidCredentials
		}
	}

	pair, err := s.issueTokens(ctx, member, nil, nil)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Web login: %s", member.LoginID)

	return &AuthResponse{
		Member:       member.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// GetMemberByID gets a member by ID
func (s *AuthService) GetMemberByID(ctx context.Context, memberID uint) (*models.Member, error) {
	return s.memberRepo.GetByID(ctx, memberID)
}

// ActiveSessionCount reports how many unrevoked, unexpired refresh tokens
// the member currently holds
func (s *AuthService) ActiveSessionCount(ctx context.Context, memberID uint) (int64, error) {
	return s.refreshRepo.CountActiveByMemberID(ctx, memberID)
}

// issueTokens signs a bearer token and persists the hash of a fresh opaque
// refresh token
func (s *AuthService) issueTokens(ctx context.Context, member *models.Member, deviceID, userAgent *string) (*TokenPair, error) {
	accessToken, err := s.signAccessToken(ctx, s.affiliationRepo, member)
	if err != nil {
		return nil, err
	}

	rawRefresh, err := token.New(token.RefreshTokenBytes)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		MemberID:  member.ID,
		TokenHash: token.Hash(rawRefresh),
		DeviceID:  deviceID,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Auth.RefreshTokenDays) * 24 * time.Hour),
	}
	if err := s.refreshRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: rawRefresh}, nil
}

// signAccessToken builds the short-lived bearer token with the member's
// role. The affiliation repository is passed in so callers inside a
// transaction can keep the role lookup on the same connection.
func (s *AuthService) signAccessToken(ctx context.Context, affRepo repositories.AffiliationRepository, member *models.Member) (string, error) {
	role := models.RoleUser
	isAdmin, err := affRepo.HasAdminRole(ctx, member.ID)
	if err != nil {
		return "", err
	}
	if isAdmin {
		role = models.RoleAdmin
	}

	return jwt.GenerateAccessToken(
		member.ID,
		member.LoginID,
		member.Name,
		role,
		s.cfg.Auth.JWTSecret,
		s.cfg.Auth.AccessTokenMins,
	)
}
