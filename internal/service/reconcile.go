package service

import (
	"context"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

// reconcileResources brings the asset's four association sets in line with
// the selected resources. Rows already present survive untouched, rows no
// longer selected are deleted, and newly selected ids are inserted. Runs
// inside the caller's transaction.
//
// A caller who does not manage all of the asset's businesses or locations
// never reaches this point, so the guards only reject empty inputs.
func (s *assetService) reconcileResources(ctx context.Context, asset *models.Asset, selected, managed models.ApplicableManagedResources) error {
	if managed.Empty() {
		return &domain.InvalidSelectionError{Reason: "no managed resources found: managedResources is empty"}
	}
	if len(selected.LocationIDs) == 0 && len(selected.BusinessIDs) == 0 && len(selected.LocationGroupIDs) == 0 {
		return &domain.InvalidSelectionError{Reason: "no resources found for asset association: selectedManagedResources is empty"}
	}

	toDelete, toAdd := diffIDs(asset.LocationIDs(), selected.LocationIDs)
	if _, err := s.resources.DeleteLocations(ctx, asset.ID, toDelete); err != nil {
		return err
	}
	if err := s.resources.AddLocations(ctx, asset.ID, toAdd); err != nil {
		return err
	}

	toDelete, toAdd = diffIDs(asset.BusinessIDs(), selected.BusinessIDs)
	if _, err := s.resources.DeleteBusinesses(ctx, asset.ID, toDelete); err != nil {
		return err
	}
	if err := s.resources.AddBusinesses(ctx, asset.ID, toAdd); err != nil {
		return err
	}

	toDelete, toAdd = diffIDs(asset.ExcludedLocationIDs(), selected.ExcludedLocationIDs)
	if _, err := s.resources.DeleteExcludedLocations(ctx, asset.ID, toDelete); err != nil {
		return err
	}
	if err := s.resources.AddExcludedLocations(ctx, asset.ID, toAdd); err != nil {
		return err
	}

	toDelete, toAdd = diffIDs(asset.LocationGroupIDs(), selected.LocationGroupIDs)
	if _, err := s.resources.DeleteLocationGroups(ctx, asset.ID, toDelete); err != nil {
		return err
	}
	if err := s.resources.AddLocationGroups(ctx, asset.ID, toAdd); err != nil {
		return err
	}

	applySelectedResources(asset, selected)
	return nil
}

// applySelectedResources rebuilds the in-memory association sets from the
// selected ids, deduplicated, in selection order.
func applySelectedResources(asset *models.Asset, selected models.ApplicableManagedResources) {
	asset.Locations = nil
	for _, id := range uniqueIDs(selected.LocationIDs) {
		asset.Locations = append(asset.Locations, models.AssetLocation{AssetID: asset.ID, LocationID: id})
	}
	asset.Businesses = nil
	for _, id := range uniqueIDs(selected.BusinessIDs) {
		asset.Businesses = append(asset.Businesses, models.AssetBusiness{AssetID: asset.ID, BusinessID: id})
	}
	asset.ExcludedLocations = nil
	for _, id := range uniqueIDs(selected.ExcludedLocationIDs) {
		asset.ExcludedLocations = append(asset.ExcludedLocations, models.AssetExcludedLocation{AssetID: asset.ID, ExcludedLocationID: id})
	}
	asset.LocationGroups = nil
	for _, id := range uniqueIDs(selected.LocationGroupIDs) {
		asset.LocationGroups = append(asset.LocationGroups, models.AssetLocationGroup{AssetID: asset.ID, LocationGroupID: id})
	}
}

// diffIDs splits existing and selected into the ids to delete (existing but
// not selected) and the ids to add (selected but not existing).
func diffIDs(existing, selected []int64) (toDelete, toAdd []int64) {
	selectedSet := make(map[int64]bool, len(selected))
	for _, id := range selected {
		selectedSet[id] = true
	}
	for _, id := range existing {
		if !selectedSet[id] {
			toDelete = append(toDelete, id)
		}
	}

	existingSet := make(map[int64]bool, len(existing))
	for _, id := range existing {
		existingSet[id] = true
	}
	seen := make(map[int64]bool, len(selected))
	for _, id := range selected {
		if !existingSet[id] && !seen[id] {
			seen[id] = true
			toAdd = append(toAdd, id)
		}
	}
	return toDelete, toAdd
}

// uniqueIDs deduplicates while preserving first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	var out []int64
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
