package repositories

import (
	"context"

	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/pagination"
)

// FolderPage is one page of a folder listing plus the unpaged total.
type FolderPage struct {
	Folders []models.Folder
	Total   int64
	Page    pagination.Page
}

type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error

	// GetNonRemoved returns the folder with its non-removed assets loaded,
	// or a NotFoundError if the folder is absent or soft-removed.
	GetNonRemoved(ctx context.Context, id int64) (*models.Folder, error)

	Update(ctx context.Context, folder *models.Folder) error

	FindByNameAndAuthor(ctx context.Context, name string, authorID int64) (*models.Folder, error)

	// ListByAuthorOrSalesPartner lists folders of one type that either
	// belong to the author or contain an asset of the tenant.
	ListByAuthorOrSalesPartner(ctx context.Context, folderType models.AssetType, statuses []models.FolderStatus, userID, salesPartnerID int64) ([]models.Folder, error)

	// ListByAuthorOrResources lists folders the caller authored plus
	// folders containing a non-removed asset reachable through the
	// caller's resources.
	ListByAuthorOrResources(ctx context.Context, folderType models.AssetType, statuses []models.FolderStatus, assetStatuses []models.AssetStatus, userID int64, resources models.ApplicableManagedResources) ([]models.Folder, error)

	// ListByAssetStatus lists folders of one type containing an asset in
	// one of the given statuses, scoped by tenant or by resources.
	ListByAssetStatus(ctx context.Context, folderType models.AssetType, statuses []models.FolderStatus, assetStatuses []models.AssetStatus, resources models.ApplicableManagedResources) ([]models.Folder, error)

	// ListByResources pages non-removed folders containing an asset of the
	// tenant linked to one of the given locations, businesses or groups.
	ListByResources(ctx context.Context, locationIDs, businessIDs, locationGroupIDs []int64, salesPartnerID int64, page pagination.Page) (*FolderPage, error)
}
