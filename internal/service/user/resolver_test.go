package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

type fakeAuthority struct {
	businessIDs      []int64
	locationIDs      []int64
	locationGroupIDs []int64
	err              error

	businessCalls      []models.ManagedResourcesSelection
	locationCalls      []models.ManagedResourcesSelection
	locationGroupCalls []models.ManagedResourcesSelection
	tenantCalls        []models.ManagedResourcesSelection
}

func (f *fakeAuthority) BusinessIDs(_ context.Context, _ *models.User, sel models.ManagedResourcesSelection) ([]int64, error) {
	f.businessCalls = append(f.businessCalls, sel)
	return f.businessIDs, f.err
}

func (f *fakeAuthority) LocationIDs(_ context.Context, _ *models.User, sel models.ManagedResourcesSelection) ([]int64, error) {
	f.locationCalls = append(f.locationCalls, sel)
	return f.locationIDs, f.err
}

func (f *fakeAuthority) LocationGroupIDs(_ context.Context, _ *models.User, sel models.ManagedResourcesSelection) ([]int64, error) {
	f.locationGroupCalls = append(f.locationGroupCalls, sel)
	return f.locationGroupIDs, f.err
}

func (f *fakeAuthority) SalesPartnerResources(_ context.Context, _ *models.User, sel models.ManagedResourcesSelection) ([]int64, []int64, []int64, error) {
	f.tenantCalls = append(f.tenantCalls, sel)
	return f.businessIDs, f.locationIDs, f.locationGroupIDs, f.err
}

func testUser(tier models.Tier) *models.User {
	role := models.RoleLocationManager
	switch tier {
	case models.TierAdmin:
		role = models.RoleAdmin
	case models.TierBusinessManager:
		role = models.RoleBusinessManager
	}
	return &models.User{
		ID:             42,
		SalesPartnerID: 7,
		Role:           role,
		Tier:           tier,
		Features:       map[models.Feature]bool{models.FeatureDAM: true},
		AccessToken:    "token",
	}
}

func TestDefaultAdminSkipsAuthority(t *testing.T) {
	authority := &fakeAuthority{}
	svc := NewManagedResourcesService(authority)

	resolved, err := svc.Default(context.Background(), testUser(models.TierAdmin))

	require.NoError(t, err)
	assert.True(t, resolved.AllSalesPartnerResources)
	assert.Equal(t, int64(7), resolved.SalesPartnerID)
	assert.Empty(t, authority.tenantCalls)
}

func TestDefaultNonAdminResolvesTenantScope(t *testing.T) {
	authority := &fakeAuthority{
		businessIDs:      []int64{1, 2},
		locationIDs:      []int64{10},
		locationGroupIDs: []int64{100},
	}
	svc := NewManagedResourcesService(authority)

	resolved, err := svc.Default(context.Background(), testUser(models.TierBusinessManager))

	require.NoError(t, err)
	assert.False(t, resolved.AllSalesPartnerResources)
	assert.Equal(t, []int64{1, 2}, resolved.BusinessIDs)
	assert.Equal(t, []int64{10}, resolved.LocationIDs)
	assert.Equal(t, []int64{100}, resolved.LocationGroupIDs)
	assert.Equal(t, int64(7), resolved.SalesPartnerID)
	require.Len(t, authority.tenantCalls, 1)
	assert.True(t, authority.tenantCalls[0].AllManagedResources)
}

func TestWithSelectionRejectsInvalidSelection(t *testing.T) {
	svc := NewManagedResourcesService(&fakeAuthority{})

	_, err := svc.WithSelection(context.Background(), testUser(models.TierAdmin), models.ManagedResourcesSelection{
		AllManagedResources: true,
		BusinessIDs:         []int64{1},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestWithSelectionLocationManagerCannotPickBusinesses(t *testing.T) {
	svc := NewManagedResourcesService(&fakeAuthority{})

	_, err := svc.WithSelection(context.Background(), testUser(models.TierLocationManager), models.ManagedResourcesSelection{
		BusinessIDs: []int64{1},
	})

	require.ErrorIs(t, err, domain.ErrInvalidSelection)
	assert.Contains(t, err.Error(), "location manager role cannot specify businesses")
}

func TestWithSelectionAllManagedResourcesByTier(t *testing.T) {
	tests := []struct {
		name          string
		tier          models.Tier
		wantBusiness  bool
		wantLocations bool
	}{
		{name: "admin resolves businesses", tier: models.TierAdmin, wantBusiness: true},
		{name: "business manager resolves businesses", tier: models.TierBusinessManager, wantBusiness: true},
		{name: "location manager resolves locations", tier: models.TierLocationManager, wantLocations: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authority := &fakeAuthority{businessIDs: []int64{1}, locationIDs: []int64{10}}
			svc := NewManagedResourcesService(authority)

			resolved, err := svc.WithSelection(context.Background(), testUser(tt.tier), models.ManagedResourcesSelection{
				AllManagedResources: true,
				ExcludedLocationIDs: []int64{99},
			})

			require.NoError(t, err)
			assert.Equal(t, []int64{99}, resolved.ExcludedLocationIDs)
			if tt.wantBusiness {
				assert.Equal(t, []int64{1}, resolved.BusinessIDs)
				assert.Empty(t, resolved.LocationIDs)
			}
			if tt.wantLocations {
				assert.Equal(t, []int64{10}, resolved.LocationIDs)
				assert.Empty(t, resolved.BusinessIDs)
			}
		})
	}
}

func TestWithSelectionResolvesEachDimensionSeparately(t *testing.T) {
	authority := &fakeAuthority{
		businessIDs:      []int64{1},
		locationIDs:      []int64{10, 11},
		locationGroupIDs: []int64{100},
	}
	svc := NewManagedResourcesService(authority)

	resolved, err := svc.WithSelection(context.Background(), testUser(models.TierBusinessManager), models.ManagedResourcesSelection{
		BusinessIDs:         []int64{1, 2},
		LocationGroupIDs:    []int64{100, 101},
		ExcludedLocationIDs: []int64{50},
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{1}, resolved.BusinessIDs)
	assert.Equal(t, []int64{100}, resolved.LocationGroupIDs)
	assert.Equal(t, []int64{50}, resolved.ExcludedLocationIDs)
	// The resolved set carries no tenant id; scoped queries take it from
	// the default resolution instead.
	assert.Zero(t, resolved.SalesPartnerID)

	require.Len(t, authority.locationGroupCalls, 1)
	assert.Empty(t, authority.locationGroupCalls[0].BusinessIDs)
	assert.Equal(t, []int64{100, 101}, authority.locationGroupCalls[0].LocationGroupIDs)
}

func TestWithSelectionEmptySelection(t *testing.T) {
	svc := NewManagedResourcesService(&fakeAuthority{})

	_, err := svc.WithSelection(context.Background(), testUser(models.TierAdmin), models.ManagedResourcesSelection{})

	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}

func TestWithSelectionPropagatesAuthorityError(t *testing.T) {
	authority := &fakeAuthority{err: errors.New("boom")}
	svc := NewManagedResourcesService(authority)

	_, err := svc.WithSelection(context.Background(), testUser(models.TierBusinessManager), models.ManagedResourcesSelection{
		BusinessIDs: []int64{1},
	})

	assert.Error(t, err)
}

func TestFilteredListResourcesKeepsSalesPartnerID(t *testing.T) {
	authority := &fakeAuthority{locationIDs: []int64{10}}
	svc := NewManagedResourcesService(authority)

	resolved, err := svc.FilteredListResources(context.Background(), testUser(models.TierLocationManager), models.ManagedResourcesSelection{
		LocationIDs: []int64{10, 11},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), resolved.SalesPartnerID)
	assert.Equal(t, []int64{10}, resolved.LocationIDs)
	require.Len(t, authority.tenantCalls, 1)
}
