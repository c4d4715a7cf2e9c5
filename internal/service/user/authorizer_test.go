package user

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

type fakeCounter struct {
	accessible int64
	total      int64
}

func (f *fakeCounter) AccessibleAssetCount(context.Context, int64, models.ApplicableManagedResources) (int64, error) {
	return f.accessible, nil
}

func (f *fakeCounter) TotalAssetCount(context.Context, int64) (int64, error) {
	return f.total, nil
}

func newAuthz(counter FolderAssetCounter) *AuthorizationService {
	return NewAuthorizationService(counter, slog.Default())
}

func locationRows(assetID int64, ids ...int64) []models.AssetLocation {
	rows := make([]models.AssetLocation, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.AssetLocation{AssetID: assetID, LocationID: id})
	}
	return rows
}

func TestNeedsFeature(t *testing.T) {
	authz := newAuthz(&fakeCounter{})

	usr := testUser(models.TierAdmin)
	assert.NoError(t, authz.NeedsFeature(usr, models.FeatureDAM))

	usr.Features = nil
	err := authz.NeedsFeature(usr, models.FeatureDAM)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCanAccessAssetAdminComparesTenants(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierAdmin)

	asset := &models.Asset{ID: 1, SalesPartnerID: usr.SalesPartnerID}
	assert.NoError(t, authz.CanAccessAsset(usr, asset, models.ApplicableManagedResources{}))

	asset.SalesPartnerID = usr.SalesPartnerID + 1
	assert.ErrorIs(t, authz.CanAccessAsset(usr, asset, models.ApplicableManagedResources{}), domain.ErrForbidden)
}

func TestCanAccessAssetBusinessManagerNeedsAssociation(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierBusinessManager)

	asset := &models.Asset{ID: 1}
	assert.ErrorIs(t, authz.CanAccessAsset(usr, asset, models.ApplicableManagedResources{}), domain.ErrForbidden)

	asset.Businesses = []models.AssetBusiness{{AssetID: 1, BusinessID: 2}}
	assert.NoError(t, authz.CanAccessAsset(usr, asset, models.ApplicableManagedResources{}))
}

func TestCanAccessAssetLocationManagerExclusion(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierLocationManager)
	resources := models.ApplicableManagedResources{LocationIDs: []int64{10, 11}}

	asset := &models.Asset{
		ID:        1,
		Locations: locationRows(1, 10, 11),
		ExcludedLocations: []models.AssetExcludedLocation{
			{AssetID: 1, ExcludedLocationID: 10},
			{AssetID: 1, ExcludedLocationID: 11},
		},
	}
	// Every managed location is excluded, nothing remains visible.
	assert.ErrorIs(t, authz.CanAccessAsset(usr, asset, resources), domain.ErrForbidden)

	asset.ExcludedLocations = asset.ExcludedLocations[:1]
	assert.NoError(t, authz.CanAccessAsset(usr, asset, resources))
}

func TestCanUpdateOrDeleteAssetAdminSkipsResourceChecks(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierAdmin)

	asset := &models.Asset{ID: 1, Locations: locationRows(1, 10, 11)}
	assert.NoError(t, authz.CanUpdateOrDeleteAsset(usr, asset, models.ApplicableManagedResources{}))
}

func TestCanUpdateOrDeleteAssetRequiresAllLocations(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierLocationManager)

	asset := &models.Asset{ID: 1, Locations: locationRows(1, 10, 11)}
	resources := models.ApplicableManagedResources{LocationIDs: []int64{10}}

	err := authz.CanUpdateOrDeleteAsset(usr, asset, resources)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "does not manage all locations")

	resources.LocationIDs = []int64{10, 11}
	assert.NoError(t, authz.CanUpdateOrDeleteAsset(usr, asset, resources))
}

func TestCanUpdateOrDeleteAssetRequiresAllGroups(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierBusinessManager)

	asset := &models.Asset{
		ID:             1,
		LocationGroups: []models.AssetLocationGroup{{AssetID: 1, LocationGroupID: 100}},
	}

	err := authz.CanUpdateOrDeleteAsset(usr, asset, models.ApplicableManagedResources{})
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "does not manage all groups")
}

func TestCanUpdateOrDeleteAssetBusinessManagerBusinesses(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierBusinessManager)

	asset := &models.Asset{
		ID:         1,
		Businesses: []models.AssetBusiness{{AssetID: 1, BusinessID: 20}},
	}

	err := authz.CanUpdateOrDeleteAsset(usr, asset, models.ApplicableManagedResources{BusinessIDs: []int64{21}})
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "does not manage all businesses")

	assert.NoError(t, authz.CanUpdateOrDeleteAsset(usr, asset, models.ApplicableManagedResources{BusinessIDs: []int64{20}}))
}

func TestCanUpdateOrDeleteAssetLocationManagerBusinessLink(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierLocationManager)

	asset := &models.Asset{
		ID:         1,
		Businesses: []models.AssetBusiness{{AssetID: 1, BusinessID: 20}},
	}

	err := authz.CanUpdateOrDeleteAsset(usr, asset, models.ApplicableManagedResources{})
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "associated with at least one business")
}

func TestCanAccessFolderAuthorShortCircuits(t *testing.T) {
	authz := newAuthz(&fakeCounter{accessible: 0})
	usr := testUser(models.TierLocationManager)

	folder := &models.Folder{ID: 5, AuthorID: usr.ID}
	assert.NoError(t, authz.CanAccessFolder(context.Background(), usr, folder, models.ApplicableManagedResources{}))
}

func TestCanAccessFolderAdmin(t *testing.T) {
	authz := newAuthz(&fakeCounter{})
	usr := testUser(models.TierAdmin)

	folder := &models.Folder{ID: 5, AuthorID: usr.ID + 1}
	// Empty folders are invisible to non-author admins.
	assert.ErrorIs(t, authz.CanAccessFolder(context.Background(), usr, folder, models.ApplicableManagedResources{}), domain.ErrForbidden)

	folder.Assets = []models.Asset{{ID: 1, SalesPartnerID: usr.SalesPartnerID + 1}}
	assert.ErrorIs(t, authz.CanAccessFolder(context.Background(), usr, folder, models.ApplicableManagedResources{}), domain.ErrForbidden)

	folder.Assets[0].SalesPartnerID = usr.SalesPartnerID
	assert.NoError(t, authz.CanAccessFolder(context.Background(), usr, folder, models.ApplicableManagedResources{}))
}

func TestCanAccessFolderManagerNeedsAccessibleAsset(t *testing.T) {
	usr := testUser(models.TierBusinessManager)
	folder := &models.Folder{ID: 5, AuthorID: usr.ID + 1}

	assert.ErrorIs(t,
		newAuthz(&fakeCounter{accessible: 0}).CanAccessFolder(context.Background(), usr, folder, models.ApplicableManagedResources{}),
		domain.ErrForbidden)

	assert.NoError(t,
		newAuthz(&fakeCounter{accessible: 1}).CanAccessFolder(context.Background(), usr, folder, models.ApplicableManagedResources{}))
}

func TestCanDeleteFolder(t *testing.T) {
	usr := testUser(models.TierBusinessManager)
	folder := &models.Folder{ID: 5, AuthorID: usr.ID}

	// Partial management blocks deletion.
	err := newAuthz(&fakeCounter{accessible: 2, total: 3}).
		CanDeleteFolder(context.Background(), usr, folder, models.ApplicableManagedResources{})
	require.ErrorIs(t, err, domain.ErrForbidden)
	var opErr *domain.OperationForbiddenError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "delete folder", opErr.Operation)

	// Full management allows it.
	assert.NoError(t, newAuthz(&fakeCounter{accessible: 3, total: 3}).
		CanDeleteFolder(context.Background(), usr, folder, models.ApplicableManagedResources{}))

	// Whole-tenant scope skips the count comparison.
	assert.NoError(t, newAuthz(&fakeCounter{accessible: 0, total: 3}).
		CanDeleteFolder(context.Background(), usr, folder, models.ApplicableManagedResources{AllSalesPartnerResources: true}))
}
