package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
	"github.com/transactional/dam-service/internal/domain/services"
	"github.com/transactional/dam-service/internal/pagination"
)

type fakeAssetService struct {
	services.AssetService

	tenants      []int64
	tenantsErr   error
	pages        map[int64][]repositories.AssetPage
	deleted      map[int64][]int64
	activated    []time.Time
	deactivated  []time.Time
	activateErr  error
	listCalls    int
	deleteCalled bool
}

func newFakeAssetService() *fakeAssetService {
	return &fakeAssetService{
		pages:   make(map[int64][]repositories.AssetPage),
		deleted: make(map[int64][]int64),
	}
}

func (f *fakeAssetService) SalesPartnerIDs(context.Context) ([]int64, error) {
	return f.tenants, f.tenantsErr
}

func (f *fakeAssetService) ListForSalesPartner(_ context.Context, salesPartnerID int64, page pagination.Page) (*repositories.AssetPage, error) {
	f.listCalls++
	pages := f.pages[salesPartnerID]
	if page.Number >= len(pages) {
		return &repositories.AssetPage{Page: page}, nil
	}
	return &pages[page.Number], nil
}

func (f *fakeAssetService) DeleteAssetLocations(_ context.Context, assetID int64, locationIDs []int64) (int64, error) {
	f.deleteCalled = true
	f.deleted[assetID] = append(f.deleted[assetID], locationIDs...)
	return int64(len(locationIDs)), nil
}

func (f *fakeAssetService) Activate(_ context.Context, day time.Time) (int64, error) {
	f.activated = append(f.activated, day)
	return 1, f.activateErr
}

func (f *fakeAssetService) Deactivate(_ context.Context, day time.Time) (int64, error) {
	f.deactivated = append(f.deactivated, day)
	return 1, nil
}

type fakeLocationAuthority struct {
	valid  map[int64][]int64
	failed map[int64]error
}

func (f *fakeLocationAuthority) LocationIDsForSalesPartner(_ context.Context, salesPartnerID int64, sel models.ManagedResourcesSelection) ([]int64, error) {
	if err := f.failed[salesPartnerID]; err != nil {
		return nil, err
	}
	if !sel.AllManagedResources {
		return nil, errors.New("expected an all-resources selection")
	}
	return f.valid[salesPartnerID], nil
}

func assetWithLocations(id int64, locationIDs ...int64) models.Asset {
	asset := models.Asset{ID: id}
	for _, locationID := range locationIDs {
		asset.Locations = append(asset.Locations, models.AssetLocation{AssetID: id, LocationID: locationID})
	}
	return asset
}

func TestObsoleteLinksRunDeletesUnknownLocations(t *testing.T) {
	assets := newFakeAssetService()
	assets.tenants = []int64{7}
	assets.pages[7] = []repositories.AssetPage{
		{
			Assets: []models.Asset{
				assetWithLocations(1, 10, 11),
				assetWithLocations(2, 11),
			},
			Total: 2,
		},
	}
	authority := &fakeLocationAuthority{valid: map[int64][]int64{7: {11}}}

	deletion := NewObsoleteLocationLinksDeletion(assets, authority, 100, slog.Default())
	deletion.Run(context.Background(), nil)

	assert.Equal(t, map[int64][]int64{1: {10}}, assets.deleted)
}

func TestObsoleteLinksRunWalksAllPages(t *testing.T) {
	assets := newFakeAssetService()
	assets.pages[7] = []repositories.AssetPage{
		{Assets: []models.Asset{assetWithLocations(1, 10)}, Total: 2},
		{Assets: []models.Asset{assetWithLocations(2, 10)}, Total: 2},
	}
	authority := &fakeLocationAuthority{valid: map[int64][]int64{7: {10}}}

	deletion := NewObsoleteLocationLinksDeletion(assets, authority, 1, slog.Default())
	deletion.Run(context.Background(), []int64{7})

	assert.Equal(t, 2, assets.listCalls)
	assert.False(t, assets.deleteCalled)
}

func TestObsoleteLinksRunContinuesAfterTenantFailure(t *testing.T) {
	assets := newFakeAssetService()
	assets.pages[8] = []repositories.AssetPage{
		{Assets: []models.Asset{assetWithLocations(3, 30)}, Total: 1},
	}
	authority := &fakeLocationAuthority{
		valid:  map[int64][]int64{8: {}},
		failed: map[int64]error{7: errors.New("authority unavailable")},
	}

	deletion := NewObsoleteLocationLinksDeletion(assets, authority, 100, slog.Default())
	deletion.Run(context.Background(), []int64{7, 8})

	// Tenant 7 fails, tenant 8 still loses its obsolete link.
	assert.Equal(t, []int64{30}, assets.deleted[3])
}

func TestActivationTasks(t *testing.T) {
	assets := newFakeAssetService()
	day := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	ActivateAssets(context.Background(), assets, day, slog.Default())
	DeactivateAssets(context.Background(), assets, day, slog.Default())

	assert.Equal(t, []time.Time{day}, assets.activated)
	assert.Equal(t, []time.Time{day}, assets.deactivated)
}
