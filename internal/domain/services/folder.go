package services

import (
	"context"

	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
	"github.com/transactional/dam-service/internal/pagination"
)

// FolderService handles folder business logic
type FolderService interface {
	// Create creates a new folder.
	Create(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// Get retrieves a non-removed folder with its non-removed assets.
	Get(ctx context.Context, id int64) (*models.Folder, error)

	// List lists folders visible to the caller. Without asset statuses the
	// author's empty folders are included; with them only folders holding
	// a matching accessible asset come back.
	List(ctx context.Context, user *models.User, req *ListFolderRequest, resources models.ApplicableManagedResources) ([]models.Folder, error)

	// ListByResources pages folders reachable through an explicit resource
	// set, without a caller context.
	ListByResources(ctx context.Context, q *FolderResourcesQuery) (*repositories.FolderPage, error)

	// FindByNameAndAuthor finds a folder by exact name and author, or nil.
	FindByNameAndAuthor(ctx context.Context, name string, authorID int64) (*models.Folder, error)

	// Update applies field changes to a folder.
	Update(ctx context.Context, id int64, req *UpdateFolderRequest) (*models.Folder, error)

	// Delete soft-removes a folder together with all of its assets.
	Delete(ctx context.Context, id int64) error

	// AccessibleAssetCount counts the folder's non-removed assets
	// reachable through the given resources.
	AccessibleAssetCount(ctx context.Context, folderID int64, resources models.ApplicableManagedResources) (int64, error)

	// TotalAssetCount counts all non-removed assets of the folder.
	TotalAssetCount(ctx context.Context, folderID int64) (int64, error)

	// AssetCounts returns the folder's visible and total asset counts
	// within the caller's resource scope.
	AssetCounts(ctx context.Context, folderID int64, resources models.ApplicableManagedResources) (models.AssetCounts, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Type        models.AssetType    `json:"type"`
	Status      models.FolderStatus `json:"status,omitempty"`
	AuthorID    int64               `json:"authorId"`
}

// UpdateFolderRequest represents a folder update request. Name and status
// keep their current values when omitted; description is always replaced.
type UpdateFolderRequest struct {
	Name        *string              `json:"name,omitempty"`
	Description string               `json:"description,omitempty"`
	Status      *models.FolderStatus `json:"status,omitempty"`
}

// ListFolderRequest represents a folder listing request
type ListFolderRequest struct {
	Type          models.AssetType
	Statuses      []models.FolderStatus
	AssetStatuses []models.AssetStatus
	LocationIDs   []int64
}

// FolderResourcesQuery scopes folders to an explicit resource set for
// backend-to-backend listings.
type FolderResourcesQuery struct {
	LocationIDs      []int64
	BusinessID       int64
	LocationGroupIDs []int64
	SalesPartnerID   int64
	Page             pagination.Page
}
