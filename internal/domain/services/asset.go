package services

import (
	"context"
	"time"

	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
	"github.com/transactional/dam-service/internal/pagination"
)

// AssetService handles asset business logic
type AssetService interface {
	// Types lists the asset types the catalog currently serves.
	Types() []models.AssetType

	// Create creates an asset inside a folder of the same type and links
	// it to the selected resources.
	Create(ctx context.Context, user *models.User, req *CreateAssetRequest, selected models.ApplicableManagedResources) (*models.Asset, error)

	// Get retrieves a non-removed asset with all association rows loaded.
	Get(ctx context.Context, id int64) (*models.Asset, error)

	// GetFiltered retrieves a non-removed asset with its associations
	// filtered down to the caller's resources.
	GetFiltered(ctx context.Context, id int64, resources models.ApplicableManagedResources) (*models.Asset, error)

	// List pages assets within the caller's resource scope, each with
	// filtered associations.
	List(ctx context.Context, req *ListAssetRequest, resources models.ApplicableManagedResources) (*repositories.AssetPage, error)

	// ListForFolder pages one folder's assets for an explicit resource
	// set, without a caller context.
	ListForFolder(ctx context.Context, q *FolderAssetsQuery) (*repositories.AssetPage, error)

	// ListForSalesPartner pages all non-removed assets of one tenant with
	// location associations loaded.
	ListForSalesPartner(ctx context.Context, salesPartnerID int64, page pagination.Page) (*repositories.AssetPage, error)

	// Update applies field changes and reconciles the association sets to
	// the selected resources in one transaction.
	Update(ctx context.Context, id int64, req *UpdateAssetRequest, selected, managed models.ApplicableManagedResources) (*models.Asset, error)

	// Delete removes the backing template and soft-removes the asset.
	Delete(ctx context.Context, user *models.User, id int64) error

	// IncrementUsageCount bumps the asset's usage counter.
	IncrementUsageCount(ctx context.Context, id int64) (*models.Asset, error)

	// Activate flips hidden assets starting on the given day to visible.
	Activate(ctx context.Context, day time.Time) (int64, error)

	// Deactivate flips visible assets ending on the given day to hidden.
	Deactivate(ctx context.Context, day time.Time) (int64, error)

	// ExistingTemplateIDs returns which template ids already back an asset.
	ExistingTemplateIDs(ctx context.Context, templateIDs []int64) ([]int64, error)

	// SalesPartnerIDs lists tenants owning at least one non-removed asset.
	SalesPartnerIDs(ctx context.Context) ([]int64, error)

	// DeleteAssetLocations drops location links from an asset. Used when
	// locations disappear from the resource authority.
	DeleteAssetLocations(ctx context.Context, assetID int64, locationIDs []int64) (int64, error)
}

// ResourceSelection carries the caller-supplied resource criteria of asset
// payloads.
type ResourceSelection struct {
	AllManagedResources bool     `json:"allManagedResources"`
	Labels              []string `json:"labels,omitempty"`
	BusinessIDs         []int64  `json:"businessIds,omitempty"`
	LocationIDs         []int64  `json:"locationIds,omitempty"`
	ExcludedLocationIDs []int64  `json:"excludedLocationIds,omitempty"`
	LocationGroupIDs    []int64  `json:"locationGroupIds,omitempty"`
}

// Selection converts the payload fields to a domain selection.
func (s ResourceSelection) Selection() models.ManagedResourcesSelection {
	return models.ManagedResourcesSelection{
		AllManagedResources: s.AllManagedResources,
		Labels:              s.Labels,
		BusinessIDs:         s.BusinessIDs,
		LocationIDs:         s.LocationIDs,
		ExcludedLocationIDs: s.ExcludedLocationIDs,
		LocationGroupIDs:    s.LocationGroupIDs,
	}
}

// CreateAssetRequest represents an asset creation request
type CreateAssetRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Type        models.AssetType   `json:"type"`
	Status      models.AssetStatus `json:"status,omitempty"`
	StartDate   *time.Time         `json:"startDate,omitempty"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
	AuthorID    int64              `json:"authorId"`
	FolderID    int64              `json:"folderId"`
	TemplateID  int64              `json:"templateId"`

	ResourceSelection
}

// UpdateAssetRequest represents an asset update request. Name, status and
// start date keep their current values when omitted; description and end
// date are always replaced.
type UpdateAssetRequest struct {
	Name        *string             `json:"name,omitempty"`
	Description string              `json:"description,omitempty"`
	Status      *models.AssetStatus `json:"status,omitempty"`
	StartDate   *time.Time          `json:"startDate,omitempty"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	FolderID    *int64              `json:"folderId,omitempty"`

	ResourceSelection
}

// ListAssetRequest represents an asset listing request. Either Type or
// FolderIDs must be present.
type ListAssetRequest struct {
	Type           models.AssetType
	Status         models.AssetStatus
	Query          string
	FolderIDs      []int64
	FolderStatuses []models.FolderStatus
	LocationIDs    []int64
	BusinessIDs    []int64
	Size           int
	Page           int
}

// FolderAssetsQuery scopes one folder's assets to an explicit resource set
// for backend-to-backend listings.
type FolderAssetsQuery struct {
	FolderID         int64
	LocationIDs      []int64
	BusinessIDs      []int64
	LocationGroupIDs []int64
	Query            string
	SalesPartnerID   int64
	Page             pagination.Page
}
