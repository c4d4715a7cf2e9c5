package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
	"github.com/transactional/dam-service/internal/domain/services"
	"github.com/transactional/dam-service/internal/pagination"
)

// TemplateDeleter removes the external template backing an asset.
type TemplateDeleter interface {
	DeleteTemplate(ctx context.Context, user *models.User, templateID int64) error
}

type assetService struct {
	assets    repositories.AssetRepository
	resources repositories.AssetResourceRepository
	folders   repositories.FolderRepository
	templates TemplateDeleter
	tx        repositories.TransactionManager
	logger    *slog.Logger
}

// NewAssetService creates a new asset service
func NewAssetService(
	assets repositories.AssetRepository,
	resources repositories.AssetResourceRepository,
	folders repositories.FolderRepository,
	templates TemplateDeleter,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) services.AssetService {
	return &assetService{
		assets:    assets,
		resources: resources,
		folders:   folders,
		templates: templates,
		tx:        tx,
		logger:    logger,
	}
}

// Types lists the supported asset types. Ad templates exist in the data
// model but are not served yet.
func (s *assetService) Types() []models.AssetType {
	return []models.AssetType{models.AssetTypeSocialPostTemplate}
}

func (s *assetService) Create(ctx context.Context, user *models.User, req *services.CreateAssetRequest, selected models.ApplicableManagedResources) (*models.Asset, error) {
	if err := validateCreateAssetRequest(req); err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}

	if len(selected.LocationIDs) == 0 && len(selected.BusinessIDs) == 0 && len(selected.LocationGroupIDs) == 0 {
		return nil, &domain.InvalidSelectionError{Reason: "either locationIds, businessIds or locationGroupIds must be provided"}
	}

	folder, err := s.folders.GetNonRemoved(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	if req.Type != folder.Type {
		return nil, &domain.InvalidSelectionError{
			Reason: fmt.Sprintf("folder with folderId %d has a different type: %s", req.FolderID, folder.Type),
		}
	}

	status := req.Status
	if status == "" {
		status = models.AssetVisible
	}
	startDate := time.Now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}

	asset := &models.Asset{
		Name:           req.Name,
		Description:    req.Description,
		Status:         status,
		StartDate:      startDate,
		EndDate:        req.EndDate,
		Type:           req.Type,
		AuthorID:       req.AuthorID,
		FolderID:       folder.ID,
		SalesPartnerID: user.SalesPartnerID,
		TemplateID:     req.TemplateID,
	}

	err = s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.assets.Create(txCtx, asset); err != nil {
			return err
		}
		if err := s.resources.AddLocations(txCtx, asset.ID, selected.LocationIDs); err != nil {
			return err
		}
		if err := s.resources.AddBusinesses(txCtx, asset.ID, selected.BusinessIDs); err != nil {
			return err
		}
		if err := s.resources.AddExcludedLocations(txCtx, asset.ID, selected.ExcludedLocationIDs); err != nil {
			return err
		}
		return s.resources.AddLocationGroups(txCtx, asset.ID, selected.LocationGroupIDs)
	})
	if err != nil {
		return nil, err
	}

	applySelectedResources(asset, selected)

	s.logger.Info("asset created",
		"id", asset.ID,
		"type", asset.Type,
		"folderId", asset.FolderID,
		"salesPartnerId", asset.SalesPartnerID,
	)

	return asset, nil
}

func (s *assetService) Get(ctx context.Context, id int64) (*models.Asset, error) {
	return s.assets.GetNonRemoved(ctx, id)
}

func (s *assetService) GetFiltered(ctx context.Context, id int64, resources models.ApplicableManagedResources) (*models.Asset, error) {
	asset, err := s.assets.GetNonRemoved(ctx, id)
	if err != nil {
		return nil, err
	}
	filterAssetResources(asset, resources)
	return asset, nil
}

func (s *assetService) List(ctx context.Context, req *services.ListAssetRequest, resources models.ApplicableManagedResources) (*repositories.AssetPage, error) {
	if req.Type == "" && len(req.FolderIDs) == 0 {
		return nil, &domain.InvalidSelectionError{Reason: "either type or folder_ids is required"}
	}

	size := req.Size
	if size <= 0 {
		size = 100
	}
	page := pagination.Page{Number: req.Page, Size: size}

	var statuses []models.AssetStatus
	if req.Status != "" {
		statuses = []models.AssetStatus{req.Status}
	}

	var assetPage *repositories.AssetPage
	var err error
	if req.Type != "" {
		assetPage, err = s.assets.ListByType(ctx, repositories.AssetListFilter{
			Type:           req.Type,
			Query:          req.Query,
			FolderIDs:      req.FolderIDs,
			Statuses:       statuses,
			FolderStatuses: req.FolderStatuses,
		}, resources, page)
	} else {
		assetPage, err = s.assets.ListByFolder(ctx, req.FolderIDs[0], statuses, req.Query, resources, page)
	}
	if err != nil {
		return nil, err
	}

	if err := s.populateResources(ctx, assetPage.Assets, resources); err != nil {
		return nil, err
	}

	return assetPage, nil
}

func (s *assetService) ListForFolder(ctx context.Context, q *services.FolderAssetsQuery) (*repositories.AssetPage, error) {
	resources := models.ApplicableManagedResources{
		SalesPartnerID:   q.SalesPartnerID,
		LocationIDs:      q.LocationIDs,
		BusinessIDs:      q.BusinessIDs,
		LocationGroupIDs: q.LocationGroupIDs,
	}
	return s.assets.ListByFolder(ctx, q.FolderID, nil, q.Query, resources, q.Page)
}

func (s *assetService) ListForSalesPartner(ctx context.Context, salesPartnerID int64, page pagination.Page) (*repositories.AssetPage, error) {
	assetPage, err := s.assets.ListBySalesPartner(ctx, salesPartnerID, page)
	if err != nil {
		return nil, err
	}

	for i := range assetPage.Assets {
		asset := &assetPage.Assets[i]
		loaded, err := s.resources.ListForAsset(ctx, asset.ID)
		if err != nil {
			return nil, err
		}
		asset.Locations = loaded.Locations
	}

	return assetPage, nil
}

func (s *assetService) Update(ctx context.Context, id int64, req *services.UpdateAssetRequest, selected, managed models.ApplicableManagedResources) (*models.Asset, error) {
	if err := validateUpdateAssetRequest(req); err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}

	var asset *models.Asset
	err := s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		asset, err = s.assets.GetNonRemoved(txCtx, id)
		if err != nil {
			return err
		}

		if req.FolderID != nil && *req.FolderID != asset.FolderID {
			folder, err := s.folders.GetNonRemoved(txCtx, *req.FolderID)
			if err != nil {
				return err
			}
			asset.FolderID = folder.ID
		}

		if req.Name != nil {
			asset.Name = *req.Name
		}
		asset.Description = req.Description
		if req.Status != nil {
			asset.Status = *req.Status
		}
		if req.StartDate != nil {
			asset.StartDate = *req.StartDate
		}
		asset.EndDate = req.EndDate

		if err := s.reconcileResources(txCtx, asset, selected, managed); err != nil {
			return err
		}

		return s.assets.Update(txCtx, asset)
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// Delete removes the backing template first, then soft-removes the asset.
// The template call stays outside the transaction; a failure there leaves
// the asset untouched.
func (s *assetService) Delete(ctx context.Context, user *models.User, id int64) error {
	asset, err := s.assets.GetNonRemoved(ctx, id)
	if err != nil {
		return err
	}

	if err := s.templates.DeleteTemplate(ctx, user, asset.TemplateID); err != nil {
		return err
	}

	asset.Status = models.AssetRemoved
	if err := s.assets.Update(ctx, asset); err != nil {
		return err
	}

	s.logger.Info("asset removed", "id", asset.ID, "salesPartnerId", asset.SalesPartnerID)
	return nil
}

func (s *assetService) IncrementUsageCount(ctx context.Context, id int64) (*models.Asset, error) {
	var asset *models.Asset
	err := s.tx.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		asset, err = s.assets.GetNonRemoved(txCtx, id)
		if err != nil {
			return err
		}
		asset.UsageCount++
		return s.assets.Update(txCtx, asset)
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *assetService) Activate(ctx context.Context, day time.Time) (int64, error) {
	return s.assets.ActivateByStartDate(ctx, day)
}

func (s *assetService) Deactivate(ctx context.Context, day time.Time) (int64, error) {
	return s.assets.DeactivateByEndDate(ctx, day)
}

func (s *assetService) ExistingTemplateIDs(ctx context.Context, templateIDs []int64) ([]int64, error) {
	return s.assets.ExistingTemplateIDs(ctx, templateIDs)
}

func (s *assetService) SalesPartnerIDs(ctx context.Context) ([]int64, error) {
	return s.assets.DistinctSalesPartnerIDs(ctx)
}

func (s *assetService) DeleteAssetLocations(ctx context.Context, assetID int64, locationIDs []int64) (int64, error) {
	return s.resources.DeleteLocations(ctx, assetID, locationIDs)
}

// populateResources loads and filters each asset's association sets.
func (s *assetService) populateResources(ctx context.Context, assets []models.Asset, resources models.ApplicableManagedResources) error {
	for i := range assets {
		asset := &assets[i]
		loaded, err := s.resources.ListForAsset(ctx, asset.ID)
		if err != nil {
			return err
		}
		asset.Locations = loaded.Locations
		asset.Businesses = loaded.Businesses
		asset.ExcludedLocations = loaded.ExcludedLocations
		asset.LocationGroups = loaded.LocationGroups
		filterAssetResources(asset, resources)
	}
	return nil
}

// filterAssetResources narrows the asset's association sets to the caller's
// resources. Tenant-wide access keeps everything. Excluded locations are
// filtered against the caller's locations, like the location set itself.
func filterAssetResources(asset *models.Asset, resources models.ApplicableManagedResources) {
	if resources.AllSalesPartnerResources {
		return
	}

	locations := idSet(resources.LocationIDs)
	businesses := idSet(resources.BusinessIDs)
	groups := idSet(resources.LocationGroupIDs)

	var keptLocations []models.AssetLocation
	for _, l := range asset.Locations {
		if locations[l.LocationID] {
			keptLocations = append(keptLocations, l)
		}
	}
	asset.Locations = keptLocations

	var keptBusinesses []models.AssetBusiness
	for _, b := range asset.Businesses {
		if businesses[b.BusinessID] {
			keptBusinesses = append(keptBusinesses, b)
		}
	}
	asset.Businesses = keptBusinesses

	var keptExcluded []models.AssetExcludedLocation
	for _, e := range asset.ExcludedLocations {
		if locations[e.ExcludedLocationID] {
			keptExcluded = append(keptExcluded, e)
		}
	}
	asset.ExcludedLocations = keptExcluded

	var keptGroups []models.AssetLocationGroup
	for _, g := range asset.LocationGroups {
		if groups[g.LocationGroupID] {
			keptGroups = append(keptGroups, g)
		}
	}
	asset.LocationGroups = keptGroups
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func validateCreateAssetRequest(req *services.CreateAssetRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 250)),
		validation.Field(&req.Description, validation.Length(0, 4096)),
		validation.Field(&req.Type, validation.Required, validation.In(models.AssetTypeAdTemplate, models.AssetTypeSocialPostTemplate)),
		validation.Field(&req.AuthorID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.FolderID, validation.Required, validation.Min(int64(1))),
	)
}

func validateUpdateAssetRequest(req *services.UpdateAssetRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 250)),
		validation.Field(&req.Description, validation.Length(0, 4096)),
	)
}
