package services

import (
	"context"
	"testing"
	"time"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/pkg/token"

	"github.com/stretchr/testify/require"
)

func TestLoginIssuesTokenPair(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	seedMember(t, db, "alice", "secret-password", "01011112222")

	result, err := svc.Login(context.Background(), &LoginInput{
		LoginID:  "alice",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)
	require.Equal(t, "alice", result.Member.LoginID)

	// only the hash is persisted
	var stored models.RefreshToken
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, token.Hash(result.RefreshToken), stored.TokenHash)
	require.NotEqual(t, result.RefreshToken, stored.TokenHash)

	claims, err := svc.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, result.Member.ID, claims.MemberID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	seedMember(t, db, "alice", "secret-password", "01011112222")

	// wrong password and unknown login id fail identically
	_, err := svc.Login(context.Background(), &LoginInput{LoginID: "alice", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &LoginInput{LoginID: "nobody", Password: "secret-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotationSingleUse(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	seedMember(t, db, "alice", "secret-password", "01011112222")

	login, err := svc.Login(context.Background(), &LoginInput{
		LoginID:  "alice",
		Password: "secret-password",
	})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), login.RefreshToken, nil)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	// replaying the rotated token must fail
	_, err = svc.Refresh(context.Background(), login.RefreshToken, nil)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// the fresh token continues the chain
	next, err := svc.Refresh(context.Background(), pair.RefreshToken, nil)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// the old row points at its successor
	var old models.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", token.Hash(login.RefreshToken)).First(&old).Error)
	require.NotNil(t, old.RevokedAt)
	require.NotNil(t, old.ReplacedBy)

	var replacement models.RefreshToken
	require.NoError(t, db.First(&replacement, *old.ReplacedBy).Error)
	require.Equal(t, token.Hash(pair.RefreshToken), replacement.TokenHash)
}

func TestRefreshUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)

	_, err := svc.Refresh(context.Background(), "never-issued", nil)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	raw, err := token.New(token.RefreshTokenBytes)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.RefreshToken{
		MemberID:  member.ID,
		TokenHash: token.Hash(raw),
		ExpiresAt: time.Now().Add(-time.Hour),
	}).Error)

	_, err = svc.Refresh(context.Background(), raw, nil)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshDeviceBinding(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	seedMember(t, db, "alice", "secret-password", "01011112222")

	deviceA := "device-a"
	deviceB := "device-b"

	login, err := svc.Login(context.Background(), &LoginInput{
		LoginID:  "alice",
		Password: "secret-password",
		DeviceID: &deviceA,
	})
	require.NoError(t, err)

	// a different device id is rejected
	_, err = svc.Refresh(context.Background(), login.RefreshToken, &deviceB)
	require.ErrorIs(t, err, ErrDeviceMismatch)

	// omitting the device id passes the permissive check
	pair, err := svc.Refresh(context.Background(), login.RefreshToken, nil)
	require.NoError(t, err)

	// the binding carries over to the rotated token
	var rotated models.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", token.Hash(pair.RefreshToken)).First(&rotated).Error)
	require.NotNil(t, rotated.DeviceID)
	require.Equal(t, deviceA, *rotated.DeviceID)
}

func TestRefreshUnboundTokenAcceptsAnyDevice(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	seedMember(t, db, "alice", "secret-password", "01011112222")

	login, err := svc.Login(context.Background(), &LoginInput{
		LoginID:  "alice",
		Password: "secret-password",
	})
	require.NoError(t, err)

	device := "some-device"
	_, err = svc.Refresh(context.Background(), login.RefreshToken, &device)
	require.NoError(t, err)
}

func TestLogoutRevokesAndIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	seedMember(t, db, "alice", "secret-password", "01011112222")

	login, err := svc.Login(context.Background(), &LoginInput{
		LoginID:  "alice",
		Password: "secret-password",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	require.NoError(t, svc.Logout(context.Background(), "never-issued"))

	_, err = svc.Refresh(context.Background(), login.RefreshToken, nil)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLogoutAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	first, err := svc.Login(context.Background(), &LoginInput{LoginID: "alice", Password: "secret-password"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), &LoginInput{LoginID: "alice", Password: "secret-password"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(context.Background(), member.ID))

	_, err = svc.Refresh(context.Background(), first.RefreshToken, nil)
	require.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.Refresh(context.Background(), second.RefreshToken, nil)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLoginCodeRedeemOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	code, err := svc.IssueLoginCode(context.Background(), member.ID)
	require.NoError(t, err)
	require.NotEmpty(t, code.Code)
	require.True(t, code.ExpiresAt.After(time.Now()))

	redeemed, err := svc.RedeemLoginCode(context.Background(), code.Code)
	require.NoError(t, err)
	require.Equal(t, member.ID, redeemed.ID)

	_, err = svc.RedeemLoginCode(context.Background(), code.Code)
	require.ErrorIs(t, err, ErrLoginCodeUsed)
}

func TestLoginCodeExpired(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	raw, err := token.New(token.LoginCodeBytes)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.LoginCode{
		Code:      raw,
		MemberID:  member.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	_, err = svc.RedeemLoginCode(context.Background(), raw)
	require.ErrorIs(t, err, ErrLoginCodeExpired)
}

func TestLoginCodeSupersededByNewerCode(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	first, err := svc.IssueLoginCode(context.Background(), member.ID)
	require.NoError(t, err)
	second, err := svc.IssueLoginCode(context.Background(), member.ID)
	require.NoError(t, err)

	// issuing a newer code removes the unused older one
	_, err = svc.RedeemLoginCode(context.Background(), first.Code)
	require.ErrorIs(t, err, ErrInvalidLoginCode)

	_, err = svc.RedeemLoginCode(context.Background(), second.Code)
	require.NoError(t, err)
}

func TestWebAuthenticateWithCode(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	code, err := svc.IssueLoginCode(context.Background(), member.ID)
	require.NoError(t, err)

	result, err := svc.WebAuthenticate(context.Background(), &WebLoginInput{Code: code.Code})
	require.NoError(t, err)
	require.Equal(t, member.ID, result.Member.ID)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)

	// the code is spent by the handoff
	_, err = svc.WebAuthenticate(context.Background(), &WebLoginInput{Code: code.Code})
	require.ErrorIs(t, err, ErrLoginCodeUsed)
}

func TestWebAuthenticateWithCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	seedMember(t, db, "alice", "secret-password", "01011112222")

	result, err := svc.WebAuthenticate(context.Background(), &WebLoginInput{
		LoginID:  "alice",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", result.Member.LoginID)

	_, err = svc.WebAuthenticate(context.Background(), &WebLoginInput{
		LoginID:  "alice",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccessTokenCarriesAdminRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	require.NoError(t, db.Create(&models.Affiliation{
		MemberID:       member.ID,
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
		Role:           models.RoleAdmin,
		Status:         models.AffiliationActive,
	}).Error)

	result, err := svc.Login(context.Background(), &LoginInput{LoginID: "alice", Password: "secret-password"})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestRefreshedAccessTokenCarriesAdminRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	require.NoError(t, db.Create(&models.Affiliation{
		MemberID:       member.ID,
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
		Role:           models.RoleAdmin,
		Status:         models.AffiliationActive,
	}).Error)

	login, err := svc.Login(context.Background(), &LoginInput{LoginID: "alice", Password: "secret-password"})
	require.NoError(t, err)

	// the role lookup during rotation runs on the transaction connection
	pair, err := svc.Refresh(context.Background(), login.RefreshToken, nil)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestActiveSessionCount(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	count, err := svc.ActiveSessionCount(context.Background(), member.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	first, err := svc.Login(context.Background(), &LoginInput{LoginID: "alice", Password: "secret-password"})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), &LoginInput{LoginID: "alice", Password: "secret-password"})
	require.NoError(t, err)

	count, err = svc.ActiveSessionCount(context.Background(), member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, svc.Logout(context.Background(), first.RefreshToken))

	count, err = svc.ActiveSessionCount(context.Background(), member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
