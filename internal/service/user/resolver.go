// Package user resolves caller identities to their applicable managed
// resources and enforces the role-based access rules built on them.
package user

import (
	"context"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

// AuthorityClient is the slice of the resource authority consulted during
// resolution. Every id it returns is already verified against the caller's
// management scope.
type AuthorityClient interface {
	BusinessIDs(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) ([]int64, error)
	LocationIDs(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) ([]int64, error)
	LocationGroupIDs(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) ([]int64, error)
	SalesPartnerResources(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) (businessIDs, locationIDs, locationGroupIDs []int64, err error)
}

// ManagedResourcesService turns callers and their optional selections into
// ApplicableManagedResources. Resolved resources are the ground truth for
// all later authorization checks; caller-supplied ids never bypass it.
type ManagedResourcesService struct {
	authority AuthorityClient
}

func NewManagedResourcesService(authority AuthorityClient) *ManagedResourcesService {
	return &ManagedResourcesService{authority: authority}
}

// Default resolves the caller's full management scope. Admin tiers manage
// the whole tenant and skip the authority roundtrip; other tiers get their
// enriched business, location and group sets.
func (s *ManagedResourcesService) Default(ctx context.Context, user *models.User) (models.ApplicableManagedResources, error) {
	if user.Tier == models.TierAdmin {
		return models.ApplicableManagedResources{
			AllSalesPartnerResources: true,
			SalesPartnerID:           user.SalesPartnerID,
		}, nil
	}

	sel := models.ManagedResourcesSelection{AllManagedResources: true}
	businessIDs, locationIDs, locationGroupIDs, err := s.authority.SalesPartnerResources(ctx, user, sel)
	if err != nil {
		return models.ApplicableManagedResources{}, err
	}

	return models.ApplicableManagedResources{
		BusinessIDs:      businessIDs,
		LocationIDs:      locationIDs,
		LocationGroupIDs: locationGroupIDs,
		SalesPartnerID:   user.SalesPartnerID,
	}, nil
}

// WithSelection resolves an explicit selection. Each requested dimension is
// verified with the authority separately and the results are unioned;
// excluded location ids pass through untouched.
func (s *ManagedResourcesService) WithSelection(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) (models.ApplicableManagedResources, error) {
	if err := sel.Validate(); err != nil {
		return models.ApplicableManagedResources{}, err
	}

	if user.Tier == models.TierLocationManager && len(sel.BusinessIDs) > 0 {
		return models.ApplicableManagedResources{}, &domain.InvalidSelectionError{
			Reason: "user with a location manager role cannot specify businesses for assets",
		}
	}

	if sel.AllManagedResources {
		return s.resolveAllManagedResources(ctx, user, sel)
	}

	if len(sel.BusinessIDs) == 0 && len(sel.LocationIDs) == 0 && len(sel.LocationGroupIDs) == 0 {
		return models.ApplicableManagedResources{}, &domain.InvalidSelectionError{
			Reason: "one of these parameters must be specified: [allManagedResources = true, businessIds, locationIds, locationGroupIds]",
		}
	}

	resolved := models.ApplicableManagedResources{
		ExcludedLocationIDs: sel.ExcludedLocationIDs,
	}

	if len(sel.BusinessIDs) > 0 {
		businessIDs, err := s.authority.BusinessIDs(ctx, user, sel)
		if err != nil {
			return models.ApplicableManagedResources{}, err
		}
		resolved.BusinessIDs = businessIDs
	}
	if len(sel.LocationIDs) > 0 {
		locationIDs, err := s.authority.LocationIDs(ctx, user, models.ManagedResourcesSelection{LocationIDs: sel.LocationIDs})
		if err != nil {
			return models.ApplicableManagedResources{}, err
		}
		resolved.LocationIDs = locationIDs
	}
	if len(sel.LocationGroupIDs) > 0 {
		locationGroupIDs, err := s.authority.LocationGroupIDs(ctx, user, models.ManagedResourcesSelection{LocationGroupIDs: sel.LocationGroupIDs})
		if err != nil {
			return models.ApplicableManagedResources{}, err
		}
		resolved.LocationGroupIDs = locationGroupIDs
	}

	return resolved, nil
}

// resolveAllManagedResources handles the explicit allManagedResources
// selection. Admin and business manager tiers resolve to their businesses,
// location managers to their locations.
func (s *ManagedResourcesService) resolveAllManagedResources(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) (models.ApplicableManagedResources, error) {
	resolved := models.ApplicableManagedResources{
		ExcludedLocationIDs: sel.ExcludedLocationIDs,
	}

	switch user.Tier {
	case models.TierAdmin, models.TierBusinessManager:
		businessIDs, err := s.authority.BusinessIDs(ctx, user, sel)
		if err != nil {
			return models.ApplicableManagedResources{}, err
		}
		resolved.BusinessIDs = businessIDs
	default:
		locationIDs, err := s.authority.LocationIDs(ctx, user, sel)
		if err != nil {
			return models.ApplicableManagedResources{}, err
		}
		resolved.LocationIDs = locationIDs
	}

	return resolved, nil
}

// FilteredListResources resolves a list-filtering selection. Unlike
// WithSelection it always consults the authority for all three dimensions,
// so an empty selection yields the caller's full scope.
func (s *ManagedResourcesService) FilteredListResources(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) (models.ApplicableManagedResources, error) {
	businessIDs, locationIDs, locationGroupIDs, err := s.authority.SalesPartnerResources(ctx, user, sel)
	if err != nil {
		return models.ApplicableManagedResources{}, err
	}

	return models.ApplicableManagedResources{
		BusinessIDs:      businessIDs,
		LocationIDs:      locationIDs,
		LocationGroupIDs: locationGroupIDs,
		SalesPartnerID:   user.SalesPartnerID,
	}, nil
}
