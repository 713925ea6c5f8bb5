package services

import (
	"testing"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/adapters/persistence/repositories"
	"moimhub/internal/config"
	"moimhub/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 90,
			LoginCodeSecs:    60,
		},
	}
}

func newTestAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	return NewAuthService(
		db,
		repositories.NewMemberRepository(db),
		repositories.NewRefreshTokenRepository(db),
		repositories.NewLoginCodeRepository(db),
		repositories.NewAffiliationRepository(db),
		testConfig(),
	)
}

func newTestPositionService(db *gorm.DB) *PositionService {
	return NewPositionService(
		db,
		repositories.NewPositionRepository(db),
		repositories.NewGenerationRepository(db),
		repositories.NewAffiliationRepository(db),
	)
}

func newTestMemberService(db *gorm.DB) *MemberService {
	return NewMemberService(
		db,
		repositories.NewMemberRepository(db),
		repositories.NewAffiliationRepository(db),
		repositories.NewGenerationRepository(db),
	)
}

func newTestOrganizationService(db *gorm.DB) *OrganizationService {
	return NewOrganizationService(
		db,
		repositories.NewOrganizationRepository(db),
		repositories.NewGenerationRepository(db),
	)
}

// seedOrgWithGeneration creates an organization with one generation
func seedOrgWithGeneration(t *testing.T, db *gorm.DB, orgName, genName string) (*models.Organization, *models.Generation) {
	t.Helper()

	org := &models.Organization{Name: orgName}
	require.NoError(t, db.Create(org).Error)

	gen := &models.Generation{OrganizationID: org.ID, Name: genName, IsPrimary: true}
	require.NoError(t, db.Create(gen).Error)

	return org, gen
}

// seedMember creates a member with a bcrypt password
func seedMember(t *testing.T, db *gorm.DB, loginID, rawPassword, phone string) *models.Member {
	t.Helper()

	hashed, err := password.Hash(rawPassword)
	require.NoError(t, err)

	member := &models.Member{
		LoginID:  loginID,
		Name:     "Test Member",
		Phone:    phone,
		Password: hashed,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}
