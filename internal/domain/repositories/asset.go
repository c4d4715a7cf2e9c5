package repositories

import (
	"context"
	"time"

	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/pagination"
)

// AssetListFilter narrows a type-scoped asset listing.
type AssetListFilter struct {
	Type           models.AssetType
	Query          string
	FolderIDs      []int64
	Statuses       []models.AssetStatus
	FolderStatuses []models.FolderStatus
}

// AssetPage is one page of a listing plus the unpaged total.
type AssetPage struct {
	Assets []models.Asset
	Total  int64
	Page   pagination.Page
}

// AssetRepository persists assets and answers the resource-scoped catalog
// queries. Listing methods do not load association rows; callers populate
// them through AssetResourceRepository when needed.
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error

	// GetNonRemoved returns the asset with its association rows loaded, or
	// a NotFoundError if the asset is absent or soft-removed.
	GetNonRemoved(ctx context.Context, id int64) (*models.Asset, error)

	// Update persists the asset's mutable core fields (not associations).
	Update(ctx context.Context, asset *models.Asset) error

	// ListByType pages assets of one type. With AllSalesPartnerResources
	// the scope is the tenant; otherwise the asset must be reachable via
	// the caller's businesses, locations or location groups, and assets
	// whose exclusion list swallows every caller location are dropped.
	ListByType(ctx context.Context, filter AssetListFilter, resources models.ApplicableManagedResources, page pagination.Page) (*AssetPage, error)

	// ListByFolder pages assets of one folder under the same resource
	// scoping rules as ListByType.
	ListByFolder(ctx context.Context, folderID int64, statuses []models.AssetStatus, query string, resources models.ApplicableManagedResources, page pagination.Page) (*AssetPage, error)

	// ListBySalesPartner pages all non-removed assets of a tenant.
	ListBySalesPartner(ctx context.Context, salesPartnerID int64, page pagination.Page) (*AssetPage, error)

	// CountByFolder counts all non-removed assets of a folder, regardless
	// of resource scope.
	CountByFolder(ctx context.Context, folderID int64) (int64, error)

	// CountAccessible counts the folder's non-removed assets reachable
	// through the given resources.
	CountAccessible(ctx context.Context, folderID int64, resources models.ApplicableManagedResources) (int64, error)

	// CountVisibleAndTotal returns the folder's visible and non-removed
	// asset counts within the given resource scope.
	CountVisibleAndTotal(ctx context.Context, folderID int64, resources models.ApplicableManagedResources) (models.AssetCounts, error)

	// DistinctSalesPartnerIDs lists tenants owning at least one
	// non-removed asset.
	DistinctSalesPartnerIDs(ctx context.Context) ([]int64, error)

	// ExistingTemplateIDs returns which of the given template ids already
	// back an asset.
	ExistingTemplateIDs(ctx context.Context, templateIDs []int64) ([]int64, error)

	// ActivateByStartDate flips hidden assets whose start date falls on
	// the given day to visible. Returns the number of rows changed.
	ActivateByStartDate(ctx context.Context, day time.Time) (int64, error)

	// DeactivateByEndDate flips visible assets whose end date falls on
	// the given day to hidden.
	DeactivateByEndDate(ctx context.Context, day time.Time) (int64, error)

	// RemoveByFolder soft-removes every not-yet-removed asset of a folder.
	RemoveByFolder(ctx context.Context, folderID int64) (int64, error)
}

// AssetResourceRepository persists the four kinds of association rows.
// Rows are identified by (asset id, resource id); adds are idempotent at
// the set level because the reconciler only feeds ids not already present.
type AssetResourceRepository interface {
	ListForAsset(ctx context.Context, assetID int64) (*models.AssetResources, error)

	AddLocations(ctx context.Context, assetID int64, locationIDs []int64) error
	DeleteLocations(ctx context.Context, assetID int64, locationIDs []int64) (int64, error)

	AddBusinesses(ctx context.Context, assetID int64, businessIDs []int64) error
	DeleteBusinesses(ctx context.Context, assetID int64, businessIDs []int64) (int64, error)

	AddExcludedLocations(ctx context.Context, assetID int64, locationIDs []int64) error
	DeleteExcludedLocations(ctx context.Context, assetID int64, locationIDs []int64) (int64, error)

	AddLocationGroups(ctx context.Context, assetID int64, groupIDs []int64) error
	DeleteLocationGroups(ctx context.Context, assetID int64, groupIDs []int64) (int64, error)
}
