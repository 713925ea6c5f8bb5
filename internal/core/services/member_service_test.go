package services

import (
	"context"
	"testing"

	"moimhub/internal/adapters/persistence/models"
	"moimhub/internal/pkg/password"

	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesMemberWithAffiliations(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	member, err := svc.Register(context.Background(), &RegisterInput{
		LoginID:  "alice",
		Password: "secret-password",
		Name:     "Alice",
		Phone:    "01011112222",
		Affiliations: []AffiliationInput{
			{OrganizationID: gen.OrganizationID, GenerationID: gen.ID},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, member.ID)
	require.True(t, password.Verify("secret-password", member.Password))

	var affs []models.Affiliation
	require.NoError(t, db.Where("member_id = ?", member.ID).Find(&affs).Error)
	require.Len(t, affs, 1)
	require.Equal(t, models.AffiliationActive, affs[0].Status)
	require.Equal(t, models.RoleUser, affs[0].Role)
}

func TestRegisterDuplicateLoginID(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	seedMember(t, db, "alice", "secret-password", "01011112222")

	_, err := svc.Register(context.Background(), &RegisterInput{
		LoginID:  "alice",
		Password: "secret-password",
		Name:     "Another Alice",
		Phone:    "01033334444",
		Affiliations: []AffiliationInput{
			{OrganizationID: gen.OrganizationID, GenerationID: gen.ID},
		},
	})
	require.ErrorIs(t, err, ErrLoginIDTaken)
}

func TestRegisterRollsBackOnBadAffiliation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	_, err := svc.Register(context.Background(), &RegisterInput{
		LoginID:  "alice",
		Password: "secret-password",
		Name:     "Alice",
		Phone:    "01011112222",
		Affiliations: []AffiliationInput{
			{OrganizationID: gen.OrganizationID, GenerationID: gen.ID},
			{OrganizationID: gen.OrganizationID, GenerationID: 999},
		},
	})
	require.ErrorIs(t, err, ErrGenerationNotFound)

	// the member row did not survive the rollback
	var count int64
	require.NoError(t, db.Model(&models.Member{}).Where("login_id = ?", "alice").Count(&count).Error)
	require.Zero(t, count)
}

func TestAdminCreateProvisionsAndReusesByPhone(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	org2, gen2 := seedOrgWithGeneration(t, db, "Other Club", "1기")

	member, err := svc.AdminCreate(context.Background(), &AdminCreateInput{
		Name:           "Bob",
		Phone:          "010-2222-3333",
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
	})
	require.NoError(t, err)

	// login id and provisioned password are the phone digits
	require.Equal(t, "01022223333", member.LoginID)
	require.True(t, password.Verify("01022223333", member.Password))

	var aff models.Affiliation
	require.NoError(t, db.Where("member_id = ?", member.ID).First(&aff).Error)
	require.Equal(t, models.AffiliationPending, aff.Status)

	// the same phone joins another organization as the same member
	again, err := svc.AdminCreate(context.Background(), &AdminCreateInput{
		Name:           "Bobby",
		Phone:          "010-2222-3333",
		OrganizationID: org2.ID,
		GenerationID:   gen2.ID,
	})
	require.NoError(t, err)
	require.Equal(t, member.ID, again.ID)

	// joining the same organization twice is rejected
	_, err = svc.AdminCreate(context.Background(), &AdminCreateInput{
		Name:           "Bob",
		Phone:          "010-2222-3333",
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
	})
	require.ErrorIs(t, err, ErrAffiliationExists)
}

func TestBulkCreateSkipsBadRows(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	seedMember(t, db, "01099998888", "whatever-pass", "010-9999-8888")

	result, err := svc.BulkCreate(context.Background(), gen.OrganizationID, gen.ID, []BulkRow{
		{Name: "Carol", Phone: "010-1111-0001"},
		{Name: "", Phone: "010-1111-0002"},
		{Name: "Dave", Phone: "bad"},
		{Name: "Existing", Phone: "010-9999-8888"},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.BatchID)
	require.Equal(t, 1, result.Created)
	require.Equal(t, 1, result.Reused)
	require.Len(t, result.Errors, 2)
	require.Equal(t, 1, result.Errors[0].Index)
	require.Equal(t, 2, result.Errors[1].Index)
}

func TestSetupInitialPasswordActivatesPending(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	member, err := svc.AdminCreate(context.Background(), &AdminCreateInput{
		Name:           "Bob",
		Phone:          "01022223333",
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetupInitialPassword(context.Background(), member.ID, "brand-new-password"))

	var updated models.Member
	require.NoError(t, db.First(&updated, member.ID).Error)
	require.True(t, password.Verify("brand-new-password", updated.Password))
	require.False(t, password.Verify("01022223333", updated.Password))

	var aff models.Affiliation
	require.NoError(t, db.Where("member_id = ?", member.ID).First(&aff).Error)
	require.Equal(t, models.AffiliationActive, aff.Status)
}

func TestApproveAndReject(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	member, err := svc.AdminCreate(context.Background(), &AdminCreateInput{
		Name:           "Bob",
		Phone:          "01022223333",
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
	})
	require.NoError(t, err)

	var aff models.Affiliation
	require.NoError(t, db.Where("member_id = ?", member.ID).First(&aff).Error)

	require.NoError(t, svc.Approve(context.Background(), aff.ID))
	require.NoError(t, db.First(&aff, aff.ID).Error)
	require.Equal(t, models.AffiliationActive, aff.Status)

	require.NoError(t, svc.Reject(context.Background(), aff.ID))
	require.NoError(t, db.First(&aff, aff.ID).Error)
	require.Equal(t, models.AffiliationRejected, aff.Status)

	require.ErrorIs(t, svc.Approve(context.Background(), 999), ErrAffiliationNotFound)
}

func TestChangeRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	aff := &models.Affiliation{
		MemberID:       member.ID,
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
		Role:           models.RoleUser,
		Status:         models.AffiliationActive,
	}
	require.NoError(t, db.Create(aff).Error)

	require.ErrorIs(t, svc.ChangeRole(context.Background(), aff.ID, "OWNER"), ErrInvalidRole)
	require.NoError(t, svc.ChangeRole(context.Background(), aff.ID, models.RoleAdmin))

	var updated models.Affiliation
	require.NoError(t, db.First(&updated, aff.ID).Error)
	require.Equal(t, models.RoleAdmin, updated.Role)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	for _, m := range []struct{ loginID, name, phone string }{
		{"alice", "Alice Kim", "01011110001"},
		{"bob", "Bob Lee", "01011110002"},
		{"carol", "Carol Kim", "01011110003"},
	} {
		member := seedMember(t, db, m.loginID, "secret-password", m.phone)
		require.NoError(t, db.Model(&models.Member{}).Where("id = ?", member.ID).Update("name", m.name).Error)
		require.NoError(t, db.Create(&models.Affiliation{
			MemberID:       member.ID,
			OrganizationID: gen.OrganizationID,
			GenerationID:   gen.ID,
			Role:           models.RoleUser,
			Status:         models.AffiliationActive,
		}).Error)
	}

	items, meta, err := svc.List(context.Background(), &ListInput{
		OrganizationID: gen.OrganizationID,
		Query:          "Kim",
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.EqualValues(t, 2, meta.Total)

	// pagination
	items, meta, err = svc.List(context.Background(), &ListInput{
		OrganizationID: gen.OrganizationID,
		Page:           2,
		Limit:          2,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 3, meta.Total)
	require.Equal(t, 2, meta.TotalPages)
	require.True(t, meta.HasPrev)
	require.False(t, meta.HasNext)
}

func TestDeleteRevokesSessions(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestMemberService(db)
	authSvc := newTestAuthService(t, db)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")

	login, err := authSvc.Login(context.Background(), &LoginInput{
		LoginID:  "alice",
		Password: "secret-password",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), member.ID))

	// the member is gone and the session no longer refreshes
	_, _, err = svc.GetWithAffiliations(context.Background(), member.ID)
	require.Error(t, err)

	_, err = authSvc.Refresh(context.Background(), login.RefreshToken, nil)
	require.ErrorIs(t, err, ErrTokenRevoked)

	require.ErrorIs(t, svc.Delete(context.Background(), member.ID), ErrMemberNotFound)
}
