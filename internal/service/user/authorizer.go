package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

// FolderAssetCounter supplies the per-folder asset counts needed by the
// folder access rules.
type FolderAssetCounter interface {
	AccessibleAssetCount(ctx context.Context, folderID int64, resources models.ApplicableManagedResources) (int64, error)
	TotalAssetCount(ctx context.Context, folderID int64) (int64, error)
}

// AuthorizationService enforces the role-tier access rules over assets and
// folders. All checks work on resolved resources, never on raw selections.
type AuthorizationService struct {
	counter FolderAssetCounter
	logger  *slog.Logger
}

func NewAuthorizationService(counter FolderAssetCounter, logger *slog.Logger) *AuthorizationService {
	return &AuthorizationService{counter: counter, logger: logger}
}

// NeedsFeature fails when the caller's tenant does not carry the feature.
func (s *AuthorizationService) NeedsFeature(user *models.User, feature models.Feature) error {
	if !user.HasFeature(feature) {
		return &domain.ForbiddenError{
			Reason: fmt.Sprintf("user %d is missing feature %s", user.ID, feature),
		}
	}
	return nil
}

// CanAccessAsset checks read access to one asset. Admin tiers compare
// tenants. Manager tiers need the asset to have survived resource
// filtering, which shows as at least one remaining association. Location
// managers additionally lose access when the asset's exclusion list covers
// all of their locations.
func (s *AuthorizationService) CanAccessAsset(user *models.User, asset *models.Asset, resources models.ApplicableManagedResources) error {
	denied := &domain.ForbiddenError{
		Reason: fmt.Sprintf("user %d does not have access to asset with id %d", user.ID, asset.ID),
	}

	switch user.Tier {
	case models.TierAdmin:
		if user.SalesPartnerID != asset.SalesPartnerID {
			return denied
		}

	case models.TierBusinessManager:
		if !asset.HasAnyResourceAssociation() {
			return denied
		}

	default:
		if !asset.HasAnyResourceAssociation() {
			return denied
		}

		excluded := make(map[int64]bool, len(asset.ExcludedLocations))
		for _, e := range asset.ExcludedLocations {
			excluded[e.ExcludedLocationID] = true
		}
		remaining := 0
		for _, id := range resources.LocationIDs {
			if !excluded[id] {
				remaining++
			}
		}
		if remaining == 0 {
			return denied
		}
	}

	return nil
}

// CanUpdateOrDeleteAsset checks write access to one asset. Non-admin tiers
// must manage every location and location group the asset is linked to.
// Business managers must also manage every linked business, and location
// managers may not touch assets linked to any business at all.
func (s *AuthorizationService) CanUpdateOrDeleteAsset(user *models.User, asset *models.Asset, resources models.ApplicableManagedResources) error {
	if user.Tier != models.TierAdmin {
		if unmanaged := missingIDs(asset.LocationIDs(), resources.LocationIDs); len(unmanaged) > 0 {
			s.logger.Error("user does not manage all locations of asset",
				"userId", user.ID,
				"userRole", user.Role,
				"managedLocations", resources.LocationIDs,
				"assetLocations", asset.LocationIDs(),
			)
			return &domain.ForbiddenError{
				Reason: fmt.Sprintf("user %d with role %s does not manage all locations of asset %d", user.ID, user.Role, asset.ID),
			}
		}

		if unmanaged := missingIDs(asset.LocationGroupIDs(), resources.LocationGroupIDs); len(unmanaged) > 0 {
			s.logger.Error("user does not manage all location groups of asset",
				"userId", user.ID,
				"userRole", user.Role,
				"managedGroups", resources.LocationGroupIDs,
				"assetGroups", asset.LocationGroupIDs(),
			)
			return &domain.ForbiddenError{
				Reason: fmt.Sprintf("user %d with role %s does not manage all groups of asset %d", user.ID, user.Role, asset.ID),
			}
		}
	}

	switch user.Tier {
	case models.TierBusinessManager:
		if unmanaged := missingIDs(asset.BusinessIDs(), resources.BusinessIDs); len(unmanaged) > 0 {
			s.logger.Error("user does not manage all businesses of asset",
				"userId", user.ID,
				"userRole", user.Role,
				"managedBusinesses", resources.BusinessIDs,
				"assetBusinesses", asset.BusinessIDs(),
			)
			return &domain.ForbiddenError{
				Reason: fmt.Sprintf("user %d with role %s does not manage all businesses of asset %d", user.ID, user.Role, asset.ID),
			}
		}
	case models.TierLocationManager:
		if len(asset.Businesses) > 0 {
			s.logger.Error("location manager cannot update asset linked to businesses",
				"userId", user.ID,
				"userRole", user.Role,
			)
			return &domain.ForbiddenError{
				Reason: fmt.Sprintf("user %d with role %s cannot update asset %d because it is associated with at least one business", user.ID, user.Role, asset.ID),
			}
		}
	}

	return nil
}

// CanAccessFolder checks read access to one folder. The author always has
// access. Admin tiers compare tenants via the folder's first asset; other
// tiers need at least one accessible asset inside the folder.
func (s *AuthorizationService) CanAccessFolder(ctx context.Context, user *models.User, folder *models.Folder, resources models.ApplicableManagedResources) error {
	if user.ID == folder.AuthorID {
		return nil
	}

	denied := &domain.ForbiddenError{
		Reason: fmt.Sprintf("user %d does not have access to folder with id %d", user.ID, folder.ID),
	}

	if user.Tier == models.TierAdmin {
		if len(folder.Assets) == 0 || user.SalesPartnerID != folder.Assets[0].SalesPartnerID {
			return denied
		}
		return nil
	}

	count, err := s.counter.AccessibleAssetCount(ctx, folder.ID, resources)
	if err != nil {
		return err
	}
	if count < 1 {
		return denied
	}

	return nil
}

// CanDeleteFolder checks folder deletion on top of read access: unless the
// caller manages the whole tenant, every asset in the folder must be
// accessible to them.
func (s *AuthorizationService) CanDeleteFolder(ctx context.Context, user *models.User, folder *models.Folder, resources models.ApplicableManagedResources) error {
	if err := s.CanAccessFolder(ctx, user, folder, resources); err != nil {
		return err
	}

	if resources.AllSalesPartnerResources {
		return nil
	}

	totalCount, err := s.counter.TotalAssetCount(ctx, folder.ID)
	if err != nil {
		return err
	}
	accessibleCount, err := s.counter.AccessibleAssetCount(ctx, folder.ID, resources)
	if err != nil {
		return err
	}

	if accessibleCount < totalCount {
		return &domain.OperationForbiddenError{
			UserID:    user.ID,
			Operation: "delete folder",
			Reason:    fmt.Sprintf("folder %d has at least one asset not managed by user", folder.ID),
		}
	}

	return nil
}

// missingIDs returns the ids of want absent from have.
func missingIDs(want, have []int64) []int64 {
	haveSet := make(map[int64]bool, len(have))
	for _, id := range have {
		haveSet[id] = true
	}
	var missing []int64
	for _, id := range want {
		if !haveSet[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
