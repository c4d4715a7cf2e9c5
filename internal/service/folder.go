package service

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
	"github.com/transactional/dam-service/internal/domain/services"
)

type folderService struct {
	folders repositories.FolderRepository
	assets  repositories.AssetRepository
	tx      repositories.TransactionManager
	logger  *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folders repositories.FolderRepository,
	assets repositories.AssetRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folders: folders,
		assets:  assets,
		tx:      tx,
		logger:  logger,
	}
}

func (s *folderService) Create(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := validateCreateFolderRequest(req); err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}

	status := req.Status
	if status == "" {
		status = models.FolderVisible
	}

	folder := &models.Folder{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		Type:        req.Type,
		AuthorID:    req.AuthorID,
	}

	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "type", folder.Type, "authorId", folder.AuthorID)
	return folder, nil
}

func (s *folderService) Get(ctx context.Context, id int64) (*models.Folder, error) {
	return s.folders.GetNonRemoved(ctx, id)
}

// List lists folders visible to the caller.
//
// Without asset statuses, folders that look empty to the caller can still
// come back: folders holding only removed assets for admins or the author,
// and folders without any caller-managed asset for the author. With asset
// statuses, a folder only comes back when it holds a caller-accessible
// asset in one of those statuses, so no apparently empty folder appears.
func (s *folderService) List(ctx context.Context, user *models.User, req *services.ListFolderRequest, resources models.ApplicableManagedResources) ([]models.Folder, error) {
	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = models.NonRemovedFolderStatuses
	}

	if len(req.AssetStatuses) == 0 {
		if resources.AllSalesPartnerResources {
			return s.folders.ListByAuthorOrSalesPartner(ctx, req.Type, statuses, user.ID, resources.SalesPartnerID)
		}
		return s.folders.ListByAuthorOrResources(ctx, req.Type, statuses, models.NonRemovedAssetStatuses, user.ID, resources)
	}

	return s.folders.ListByAssetStatus(ctx, req.Type, statuses, req.AssetStatuses, resources)
}

func (s *folderService) ListByResources(ctx context.Context, q *services.FolderResourcesQuery) (*repositories.FolderPage, error) {
	return s.folders.ListByResources(ctx, q.LocationIDs, []int64{q.BusinessID}, q.LocationGroupIDs, q.SalesPartnerID, q.Page)
}

func (s *folderService) FindByNameAndAuthor(ctx context.Context, name string, authorID int64) (*models.Folder, error) {
	return s.folders.FindByNameAndAuthor(ctx, name, authorID)
}

func (s *folderService) Update(ctx context.Context, id int64, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if err := validateUpdateFolderRequest(req); err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}

	folder, err := s.folders.GetNonRemoved(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}
	folder.Description = req.Description
	if req.Status != nil {
		folder.Status = *req.Status
	}

	if err := s.folders.Update(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// Delete soft-removes the folder and every asset inside it in one
// transaction.
func (s *folderService) Delete(ctx context.Context, id int64) error {
	return s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.folders.GetNonRemoved(txCtx, id)
		if err != nil {
			return err
		}

		removed, err := s.assets.RemoveByFolder(txCtx, id)
		if err != nil {
			return err
		}

		folder.Status = models.FolderRemoved
		if err := s.folders.Update(txCtx, folder); err != nil {
			return err
		}

		s.logger.Info("folder removed", "id", id, "removedAssets", removed)
		return nil
	})
}

func (s *folderService) AccessibleAssetCount(ctx context.Context, folderID int64, resources models.ApplicableManagedResources) (int64, error) {
	return s.assets.CountAccessible(ctx, folderID, resources)
}

func (s *folderService) TotalAssetCount(ctx context.Context, folderID int64) (int64, error) {
	return s.assets.CountByFolder(ctx, folderID)
}

func (s *folderService) AssetCounts(ctx context.Context, folderID int64, resources models.ApplicableManagedResources) (models.AssetCounts, error) {
	return s.assets.CountVisibleAndTotal(ctx, folderID, resources)
}

func validateCreateFolderRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 60)),
		validation.Field(&req.Description, validation.Length(0, 250)),
		validation.Field(&req.Type, validation.Required, validation.In(models.AssetTypeAdTemplate, models.AssetTypeSocialPostTemplate)),
		validation.Field(&req.AuthorID, validation.Required, validation.Min(int64(1))),
	)
}

func validateUpdateFolderRequest(req *services.UpdateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 60)),
		validation.Field(&req.Description, validation.Length(0, 250)),
	)
}
