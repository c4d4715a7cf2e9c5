package models

import "github.com/transactional/dam-service/internal/domain"

// ManagedResourcesSelection is a caller-supplied resource selection. At most
// one driving criterion may be present; Validate enforces the rules before
// any resolution happens.
type ManagedResourcesSelection struct {
	AllManagedResources bool
	Labels              []string
	BusinessIDs         []int64
	LocationIDs         []int64
	ExcludedLocationIDs []int64
	LocationGroupIDs    []int64
}

// Validate checks the selection's mutual-exclusivity and completeness rules.
// The rules form an ordered decision list; the first matching rule wins.
func (s ManagedResourcesSelection) Validate() error {
	switch {
	case s.AllManagedResources:
		if len(s.Labels) > 0 || len(s.BusinessIDs) > 0 || len(s.LocationIDs) > 0 || len(s.LocationGroupIDs) > 0 {
			return &domain.InvalidSelectionError{
				Reason: "when allManagedResources is true, labels, businessIds, locationIds and/or locationGroupIds should not be specified",
			}
		}
	case len(s.BusinessIDs) > 0:
		if len(s.Labels) > 0 {
			return &domain.InvalidSelectionError{
				Reason: "when businessIds are provided, labels should not be specified",
			}
		}
	case len(s.LocationIDs) > 0:
		if len(s.ExcludedLocationIDs) > 0 || len(s.Labels) > 0 {
			return &domain.InvalidSelectionError{
				Reason: "when locationIds are provided, excludedLocationIds or labels should not be specified",
			}
		}
	case len(s.LocationGroupIDs) > 0:
		// Valid on its own.
	default:
		return &domain.InvalidSelectionError{
			Reason: "one of these parameters must be specified: [allManagedResources = true, labels, businessIds, locationIds, locationGroupIds]",
		}
	}
	return nil
}

// ApplicableManagedResources is the resolved, authority-verified resource
// set for one caller. It is always derived by the resolver, never taken
// from the caller directly, and is the ground truth for every subsequent
// authorization decision.
type ApplicableManagedResources struct {
	AllSalesPartnerResources bool
	SalesPartnerID           int64
	LocationIDs              []int64
	BusinessIDs              []int64
	ExcludedLocationIDs      []int64
	LocationGroupIDs         []int64
}

// Empty reports whether no resource dimension is populated and the
// all-resources flag is unset.
func (r ApplicableManagedResources) Empty() bool {
	return !r.AllSalesPartnerResources &&
		len(r.LocationIDs) == 0 && len(r.BusinessIDs) == 0 && len(r.LocationGroupIDs) == 0
}

// AssetResources holds the four association sets of one asset after a
// reconciliation pass.
type AssetResources struct {
	Locations         []AssetLocation
	Businesses        []AssetBusiness
	ExcludedLocations []AssetExcludedLocation
	LocationGroups    []AssetLocationGroup
}
