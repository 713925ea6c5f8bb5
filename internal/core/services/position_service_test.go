package services

import (
	"context"
	"testing"

	"moimhub/internal/adapters/persistence/models"

	"github.com/stretchr/testify/require"
)

// seedTree builds a small position tree in gen:
//
//	회장 (rank 1)
//	├── 부회장 (rank 1)
//	│   └── 총무 (rank 1)
//	└── 감사 (rank 2)
func seedTree(t *testing.T, svc *PositionService, genID uint) map[string]*models.Position {
	t.Helper()
	ctx := context.Background()

	root, err := svc.Create(ctx, &CreatePositionInput{
		GenerationID: genID, Name: "회장", IsExecutive: true,
		DuesAmount: 50000, DuesCycle: models.DuesCycleMonthly,
	})
	require.NoError(t, err)

	vice, err := svc.Create(ctx, &CreatePositionInput{
		GenerationID: genID, Name: "부회장", ParentID: &root.ID, IsExecutive: true,
	})
	require.NoError(t, err)

	secretary, err := svc.Create(ctx, &CreatePositionInput{
		GenerationID: genID, Name: "총무", ParentID: &vice.ID,
		DuesAmount: 10000, DuesCycle: models.DuesCycleYearly,
	})
	require.NoError(t, err)

	auditor, err := svc.Create(ctx, &CreatePositionInput{
		GenerationID: genID, Name: "감사", ParentID: &root.ID,
	})
	require.NoError(t, err)

	return map[string]*models.Position{
		"root": root, "vice": vice, "secretary": secretary, "auditor": auditor,
	}
}

func TestCreateAssignsSiblingRanks(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	ctx := context.Background()

	first, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen.ID, Name: "회장"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen.ID, Name: "감사"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen.ID, Name: "부회장", ParentID: &first.ID})
	require.NoError(t, err)

	require.Equal(t, 1, first.Rank)
	require.Equal(t, 2, second.Rank)
	// children rank independently of roots
	require.Equal(t, 1, child.Rank)
}

func TestCreateRejectsParentFromOtherGeneration(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen1 := seedOrgWithGeneration(t, db, "Club", "1기")
	gen2 := &models.Generation{OrganizationID: gen1.OrganizationID, Name: "2기"}
	require.NoError(t, db.Create(gen2).Error)
	ctx := context.Background()

	root, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen1.ID, Name: "회장"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &CreatePositionInput{GenerationID: gen2.ID, Name: "부회장", ParentID: &root.ID})
	require.ErrorIs(t, err, ErrParentWrongGen)
}

func TestCreateRejectsUnknownDuesCycle(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	_, err := svc.Create(context.Background(), &CreatePositionInput{
		GenerationID: gen.ID, Name: "회장", DuesCycle: "WEEKLY",
	})
	require.ErrorIs(t, err, ErrInvalidDuesCycle)
}

func TestCloneGenerationPreservesStructure(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen1 := seedOrgWithGeneration(t, db, "Club", "1기")
	gen2 := &models.Generation{OrganizationID: gen1.OrganizationID, Name: "2기"}
	require.NoError(t, db.Create(gen2).Error)
	ctx := context.Background()

	source := seedTree(t, svc, gen1.ID)

	result, err := svc.CloneGeneration(ctx, gen1.ID, gen2.ID)
	require.NoError(t, err)
	require.Equal(t, 4, result.ClonedCount)
	require.Equal(t, gen1.ID, result.SourceGenerationID)
	require.Equal(t, gen2.ID, result.TargetGenerationID)

	var cloned []*models.Position
	require.NoError(t, db.Where("generation_id = ?", gen2.ID).Order("id").Find(&cloned).Error)
	require.Len(t, cloned, 4)

	byName := make(map[string]*models.Position, len(cloned))
	sourceIDs := make(map[uint]bool)
	for _, p := range source {
		sourceIDs[p.ID] = true
	}
	for _, p := range cloned {
		byName[p.Name] = p
		// fresh ids, never shared with the source
		require.False(t, sourceIDs[p.ID])
		require.Equal(t, gen2.ID, p.GenerationID)
	}

	// structure is isomorphic to the source
	require.Nil(t, byName["회장"].ParentID)
	require.Equal(t, byName["회장"].ID, *byName["부회장"].ParentID)
	require.Equal(t, byName["부회장"].ID, *byName["총무"].ParentID)
	require.Equal(t, byName["회장"].ID, *byName["감사"].ParentID)

	// attributes carry over
	require.Equal(t, 1, byName["회장"].Rank)
	require.Equal(t, 2, byName["감사"].Rank)
	require.True(t, byName["회장"].IsExecutive)
	require.Equal(t, 50000, byName["회장"].DuesAmount)
	require.Equal(t, models.DuesCycleMonthly, byName["회장"].DuesCycle)
	require.Equal(t, models.DuesCycleYearly, byName["총무"].DuesCycle)

	// the source tree is untouched
	var sourceCount int64
	require.NoError(t, db.Model(&models.Position{}).Where("generation_id = ?", gen1.ID).Count(&sourceCount).Error)
	require.EqualValues(t, 4, sourceCount)
}

func TestCloneGenerationRejectsNonEmptyTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen1 := seedOrgWithGeneration(t, db, "Club", "1기")
	gen2 := &models.Generation{OrganizationID: gen1.OrganizationID, Name: "2기"}
	require.NoError(t, db.Create(gen2).Error)
	ctx := context.Background()

	seedTree(t, svc, gen1.ID)
	_, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen2.ID, Name: "회장"})
	require.NoError(t, err)

	_, err = svc.CloneGeneration(ctx, gen1.ID, gen2.ID)
	require.ErrorIs(t, err, ErrTargetNotEmpty)
}

func TestCloneGenerationEmptySource(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen1 := seedOrgWithGeneration(t, db, "Club", "1기")
	gen2 := &models.Generation{OrganizationID: gen1.OrganizationID, Name: "2기"}
	require.NoError(t, db.Create(gen2).Error)

	_, err := svc.CloneGeneration(context.Background(), gen1.ID, gen2.ID)
	require.ErrorIs(t, err, ErrNoPositionsToClone)
}

func TestCloneGenerationSameGeneration(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	_, err := svc.CloneGeneration(context.Background(), gen.ID, gen.ID)
	require.ErrorIs(t, err, ErrSameGeneration)
}

func TestCloneGenerationRollsBackOnOrphans(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen1 := seedOrgWithGeneration(t, db, "Club", "1기")
	gen2 := &models.Generation{OrganizationID: gen1.OrganizationID, Name: "2기"}
	require.NoError(t, db.Create(gen2).Error)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen1.ID, Name: "회장"})
	require.NoError(t, err)

	// a row whose parent does not exist in the source generation
	missing := uint(99999)
	require.NoError(t, db.Create(&models.Position{
		GenerationID: gen1.ID, Name: "유령", Rank: 1, ParentID: &missing,
	}).Error)

	_, err = svc.CloneGeneration(ctx, gen1.ID, gen2.ID)
	require.ErrorIs(t, err, ErrOrphanedPositions)

	// nothing was left behind in the target
	var count int64
	require.NoError(t, db.Model(&models.Position{}).Where("generation_id = ?", gen2.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestCloneThenGrowTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen1 := seedOrgWithGeneration(t, db, "Club", "1기")
	gen2 := &models.Generation{OrganizationID: gen1.OrganizationID, Name: "2기"}
	require.NoError(t, db.Create(gen2).Error)
	ctx := context.Background()

	seedTree(t, svc, gen1.ID)
	_, err := svc.CloneGeneration(ctx, gen1.ID, gen2.ID)
	require.NoError(t, err)

	// the cloned tree behaves like any other: new roots rank after existing ones
	extra, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen2.ID, Name: "고문"})
	require.NoError(t, err)
	require.Equal(t, 2, extra.Rank)

	// and the source generation is unaffected by target edits
	var sourceCount int64
	require.NoError(t, db.Model(&models.Position{}).Where("generation_id = ?", gen1.ID).Count(&sourceCount).Error)
	require.EqualValues(t, 4, sourceCount)
}

func TestDeleteBlockedWhileChildrenExist(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	ctx := context.Background()

	tree := seedTree(t, svc, gen.ID)

	err := svc.Delete(ctx, tree["root"].ID)
	require.ErrorIs(t, err, ErrPositionHasChildren)

	// leaves delete fine
	require.NoError(t, svc.Delete(ctx, tree["secretary"].ID))
	require.NoError(t, svc.Delete(ctx, tree["vice"].ID))
}

func TestTreeNestsChildrenByRank(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")

	seedTree(t, svc, gen.ID)

	roots, err := svc.Tree(context.Background(), gen.ID)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, "회장", roots[0].Name)
	require.Len(t, roots[0].Children, 2)
	require.Equal(t, "부회장", roots[0].Children[0].Name)
	require.Equal(t, "감사", roots[0].Children[1].Name)
	require.Len(t, roots[0].Children[0].Children, 1)
	require.Equal(t, "총무", roots[0].Children[0].Children[0].Name)
}

func TestAssignMemberPosition(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)
	_, gen := seedOrgWithGeneration(t, db, "Club", "1기")
	gen2 := &models.Generation{OrganizationID: gen.OrganizationID, Name: "2기"}
	require.NoError(t, db.Create(gen2).Error)
	member := seedMember(t, db, "alice", "secret-password", "01011112222")
	ctx := context.Background()

	aff := &models.Affiliation{
		MemberID:       member.ID,
		OrganizationID: gen.OrganizationID,
		GenerationID:   gen.ID,
		Role:           models.RoleUser,
		Status:         models.AffiliationActive,
	}
	require.NoError(t, db.Create(aff).Error)

	tree := seedTree(t, svc, gen.ID)
	other, err := svc.Create(ctx, &CreatePositionInput{GenerationID: gen2.ID, Name: "회장"})
	require.NoError(t, err)

	// position from another generation is rejected
	require.ErrorIs(t, svc.AssignMemberPosition(ctx, aff.ID, &other.ID), ErrPositionWrongGen)

	require.NoError(t, svc.AssignMemberPosition(ctx, aff.ID, &tree["vice"].ID))

	var updated models.Affiliation
	require.NoError(t, db.First(&updated, aff.ID).Error)
	require.NotNil(t, updated.PositionID)
	require.Equal(t, tree["vice"].ID, *updated.PositionID)

	// nil clears the assignment
	require.NoError(t, svc.AssignMemberPosition(ctx, aff.ID, nil))
	require.NoError(t, db.First(&updated, aff.ID).Error)
	require.Nil(t, updated.PositionID)
}

func TestTreeUnknownGeneration(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestPositionService(db)

	_, err := svc.Tree(context.Background(), 42)
	require.ErrorIs(t, err, ErrGenerationNotFound)
}
