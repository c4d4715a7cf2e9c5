package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

type fakeResourceRepo struct {
	added   map[string][]int64
	deleted map[string][]int64
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{
		added:   make(map[string][]int64),
		deleted: make(map[string][]int64),
	}
}

func (f *fakeResourceRepo) ListForAsset(context.Context, int64) (*models.AssetResources, error) {
	return &models.AssetResources{}, nil
}

func (f *fakeResourceRepo) record(m map[string][]int64, kind string, ids []int64) {
	m[kind] = append(m[kind], ids...)
}

func (f *fakeResourceRepo) AddLocations(_ context.Context, _ int64, ids []int64) error {
	f.record(f.added, "locations", ids)
	return nil
}

func (f *fakeResourceRepo) DeleteLocations(_ context.Context, _ int64, ids []int64) (int64, error) {
	f.record(f.deleted, "locations", ids)
	return int64(len(ids)), nil
}

func (f *fakeResourceRepo) AddBusinesses(_ context.Context, _ int64, ids []int64) error {
	f.record(f.added, "businesses", ids)
	return nil
}

func (f *fakeResourceRepo) DeleteBusinesses(_ context.Context, _ int64, ids []int64) (int64, error) {
	f.record(f.deleted, "businesses", ids)
	return int64(len(ids)), nil
}

func (f *fakeResourceRepo) AddExcludedLocations(_ context.Context, _ int64, ids []int64) error {
	f.record(f.added, "excluded", ids)
	return nil
}

func (f *fakeResourceRepo) DeleteExcludedLocations(_ context.Context, _ int64, ids []int64) (int64, error) {
	f.record(f.deleted, "excluded", ids)
	return int64(len(ids)), nil
}

func (f *fakeResourceRepo) AddLocationGroups(_ context.Context, _ int64, ids []int64) error {
	f.record(f.added, "groups", ids)
	return nil
}

func (f *fakeResourceRepo) DeleteLocationGroups(_ context.Context, _ int64, ids []int64) (int64, error) {
	f.record(f.deleted, "groups", ids)
	return int64(len(ids)), nil
}

func TestDiffIDs(t *testing.T) {
	tests := []struct {
		name       string
		existing   []int64
		selected   []int64
		wantDelete []int64
		wantAdd    []int64
	}{
		{name: "no change", existing: []int64{1, 2}, selected: []int64{1, 2}},
		{name: "all new", selected: []int64{1, 2}, wantAdd: []int64{1, 2}},
		{name: "all gone", existing: []int64{1, 2}, wantDelete: []int64{1, 2}},
		{name: "overlap", existing: []int64{1, 2, 3}, selected: []int64{2, 3, 4}, wantDelete: []int64{1}, wantAdd: []int64{4}},
		{name: "duplicate selection", existing: []int64{1}, selected: []int64{2, 2, 1}, wantAdd: []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toDelete, toAdd := diffIDs(tt.existing, tt.selected)
			assert.Equal(t, tt.wantDelete, toDelete)
			assert.Equal(t, tt.wantAdd, toAdd)
		})
	}
}

func TestReconcileResourcesRejectsEmptyInputs(t *testing.T) {
	svc := &assetService{resources: newFakeResourceRepo()}
	asset := &models.Asset{ID: 1}

	var selErr *domain.InvalidSelectionError

	err := svc.reconcileResources(context.Background(), asset,
		models.ApplicableManagedResources{LocationIDs: []int64{1}},
		models.ApplicableManagedResources{})
	require.ErrorAs(t, err, &selErr)
	assert.Contains(t, err.Error(), "managedResources is empty")

	err = svc.reconcileResources(context.Background(), asset,
		models.ApplicableManagedResources{},
		models.ApplicableManagedResources{AllSalesPartnerResources: true})
	require.ErrorAs(t, err, &selErr)
	assert.Contains(t, err.Error(), "selectedManagedResources is empty")
}

func TestReconcileResourcesAppliesDiffs(t *testing.T) {
	repo := newFakeResourceRepo()
	svc := &assetService{resources: repo}

	asset := &models.Asset{
		ID: 1,
		Locations: []models.AssetLocation{
			{AssetID: 1, LocationID: 10},
			{AssetID: 1, LocationID: 11},
		},
		Businesses: []models.AssetBusiness{{AssetID: 1, BusinessID: 20}},
	}
	selected := models.ApplicableManagedResources{
		LocationIDs:         []int64{11, 12},
		LocationGroupIDs:    []int64{30},
		ExcludedLocationIDs: []int64{12},
	}
	managed := models.ApplicableManagedResources{AllSalesPartnerResources: true}

	require.NoError(t, svc.reconcileResources(context.Background(), asset, selected, managed))

	assert.Equal(t, []int64{10}, repo.deleted["locations"])
	assert.Equal(t, []int64{12}, repo.added["locations"])
	assert.Equal(t, []int64{20}, repo.deleted["businesses"])
	assert.Empty(t, repo.added["businesses"])
	assert.Equal(t, []int64{12}, repo.added["excluded"])
	assert.Equal(t, []int64{30}, repo.added["groups"])

	// The in-memory sets now mirror the selection.
	assert.Equal(t, []int64{11, 12}, asset.LocationIDs())
	assert.Empty(t, asset.BusinessIDs())
	assert.Equal(t, []int64{12}, asset.ExcludedLocationIDs())
	assert.Equal(t, []int64{30}, asset.LocationGroupIDs())
}

func TestReconcileResourcesIsIdempotent(t *testing.T) {
	repo := newFakeResourceRepo()
	svc := &assetService{resources: repo}

	asset := &models.Asset{
		ID:        1,
		Locations: []models.AssetLocation{{AssetID: 1, LocationID: 10}},
	}
	selected := models.ApplicableManagedResources{LocationIDs: []int64{10}}
	managed := models.ApplicableManagedResources{LocationIDs: []int64{10}}

	require.NoError(t, svc.reconcileResources(context.Background(), asset, selected, managed))

	assert.Empty(t, repo.added["locations"])
	assert.Empty(t, repo.deleted["locations"])
	assert.Equal(t, []int64{10}, asset.LocationIDs())
}
