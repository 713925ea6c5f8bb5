package services

import (
	"context"
	"testing"

	"moimhub/internal/adapters/persistence/models"

	"github.com/stretchr/testify/require"
)

func TestCreateOrganizationWithFirstGeneration(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrganizationService(db)

	org, err := svc.CreateOrganization(context.Background(), "Hiking Club", "1기")
	require.NoError(t, err)

	gens, err := svc.ListGenerations(context.Background(), org.ID)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	require.Equal(t, "1기", gens[0].Name)
	require.True(t, gens[0].IsPrimary)

	_, err = svc.CreateOrganization(context.Background(), "Hiking Club", "1기")
	require.ErrorIs(t, err, ErrOrgNameTaken)
}

func TestCreateGenerationUniqueNamePerOrganization(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrganizationService(db)

	org, err := svc.CreateOrganization(context.Background(), "Hiking Club", "1기")
	require.NoError(t, err)

	_, err = svc.CreateGeneration(context.Background(), org.ID, "2기")
	require.NoError(t, err)

	_, err = svc.CreateGeneration(context.Background(), org.ID, "2기")
	require.ErrorIs(t, err, ErrGenNameTaken)

	// the same name is fine in a different organization
	other, err := svc.CreateOrganization(context.Background(), "Book Club", "1기")
	require.NoError(t, err)
	_, err = svc.CreateGeneration(context.Background(), other.ID, "2기")
	require.NoError(t, err)
}

func TestSetPrimaryGenerationIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrganizationService(db)

	org, err := svc.CreateOrganization(context.Background(), "Hiking Club", "1기")
	require.NoError(t, err)
	second, err := svc.CreateGeneration(context.Background(), org.ID, "2기")
	require.NoError(t, err)

	require.NoError(t, svc.SetPrimaryGeneration(context.Background(), org.ID, second.ID))

	var primaries []models.Generation
	require.NoError(t, db.Where("organization_id = ? AND is_primary = ?", org.ID, true).Find(&primaries).Error)
	require.Len(t, primaries, 1)
	require.Equal(t, second.ID, primaries[0].ID)
}

func TestSetPrimaryGenerationWrongOrganization(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestOrganizationService(db)

	org, err := svc.CreateOrganization(context.Background(), "Hiking Club", "1기")
	require.NoError(t, err)
	other, err := svc.CreateOrganization(context.Background(), "Book Club", "1기")
	require.NoError(t, err)

	gens, err := svc.ListGenerations(context.Background(), other.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.SetPrimaryGeneration(context.Background(), org.ID, gens[0].ID), ErrGenerationWrongOrg)
	require.ErrorIs(t, svc.SetPrimaryGeneration(context.Background(), org.ID, 999), ErrGenerationNotFound)
}
