package handler

import (
	"log/slog"
	"net/http"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/services"
	"github.com/transactional/dam-service/internal/httputil"
	"github.com/transactional/dam-service/internal/service/user"
)

// AssetHandler serves the dashboard-facing asset endpoints. Every mutation
// resolves the caller's managed resources before touching the catalog.
type AssetHandler struct {
	assets    services.AssetService
	folders   services.FolderService
	resources *user.ManagedResourcesService
	authz     *user.AuthorizationService
	logger    *slog.Logger
}

func NewAssetHandler(
	assets services.AssetService,
	folders services.FolderService,
	resources *user.ManagedResourcesService,
	authz *user.AuthorizationService,
	logger *slog.Logger,
) *AssetHandler {
	return &AssetHandler{
		assets:    assets,
		folders:   folders,
		resources: resources,
		authz:     authz,
		logger:    logger,
	}
}

// RegisterRoutes registers the asset routes on the mux.
func (h *AssetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dam/assets/types", h.Types)
	mux.HandleFunc("POST /api/dam/assets", h.Create)
	mux.HandleFunc("GET /api/dam/assets", h.List)
	mux.HandleFunc("GET /api/dam/assets/{id}", h.Get)
	mux.HandleFunc("PATCH /api/dam/assets/{id}", h.Update)
	mux.HandleFunc("DELETE /api/dam/assets/{id}", h.Delete)
	mux.HandleFunc("POST /api/dam/assets/{id}/increment-usage-count", h.IncrementUsageCount)
}

// Types handles GET /api/dam/assets/types
func (h *AssetHandler) Types(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.assets.Types())
}

// Create handles POST /api/dam/assets
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usr, err := userFromHeaders(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.NeedsFeature(usr, models.FeatureDAM); err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req services.CreateAssetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selected, err := h.resources.WithSelection(ctx, usr, req.Selection())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	folder, err := h.folders.Get(ctx, req.FolderID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanAccessFolder(ctx, usr, folder, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	asset, err := h.assets.Create(ctx, usr, &req, selected)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newAssetResponse(asset))
}

// Get handles GET /api/dam/assets/{id}
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usr, err := userFromHeaders(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	asset, err := h.assets.GetFiltered(ctx, id, managed)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanAccessAsset(usr, asset, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newAssetResponse(asset))
}

// List handles GET /api/dam/assets
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usr, err := userFromHeaders(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	req, err := parseListAssetRequest(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if req.Type == "" && len(req.FolderIDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "either type or folder_ids is required")
		return
	}

	// An explicit location/business filter narrows the resolved scope
	// instead of replacing the default resolution.
	var managed models.ApplicableManagedResources
	if len(req.LocationIDs) == 0 && len(req.BusinessIDs) == 0 {
		managed, err = h.resources.Default(ctx, usr)
	} else {
		managed, err = h.resources.FilteredListResources(ctx, usr, models.ManagedResourcesSelection{
			LocationIDs: req.LocationIDs,
			BusinessIDs: req.BusinessIDs,
		})
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	page, err := h.assets.List(ctx, req, managed)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	assets := make([]AssetResponse, 0, len(page.Assets))
	for i := range page.Assets {
		assets = append(assets, newAssetResponse(&page.Assets[i]))
	}
	httputil.RespondJSON(w, http.StatusOK, ListAssetResponse{
		Assets:     assets,
		Size:       page.Page.Size,
		Page:       page.Page.Number,
		TotalCount: page.Total,
	})
}

// Update handles PATCH /api/dam/assets/{id}
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usr, err := userFromHeaders(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.NeedsFeature(usr, models.FeatureDAM); err != nil {
		handleError(w, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req services.UpdateAssetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selected, err := h.resources.WithSelection(ctx, usr, req.Selection())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	// Ownership is checked against the unfiltered association sets.
	asset, err := h.assets.Get(ctx, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanAccessAsset(usr, asset, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanUpdateOrDeleteAsset(usr, asset, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	updated, err := h.assets.Update(ctx, id, &req, selected, managed)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newAssetResponse(updated))
}

// Delete handles DELETE /api/dam/assets/{id}
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usr, err := userFromHeaders(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.NeedsFeature(usr, models.FeatureDAM); err != nil {
		handleError(w, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	asset, err := h.assets.Get(ctx, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanAccessAsset(usr, asset, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanUpdateOrDeleteAsset(usr, asset, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.assets.Delete(ctx, usr, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// IncrementUsageCount handles POST /api/dam/assets/{id}/increment-usage-count
func (h *AssetHandler) IncrementUsageCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usr, err := userFromHeaders(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.NeedsFeature(usr, models.FeatureDAM); err != nil {
		handleError(w, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	asset, err := h.assets.GetFiltered(ctx, id, managed)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanAccessAsset(usr, asset, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if _, err := h.assets.IncrementUsageCount(ctx, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func parseListAssetRequest(r *http.Request) (*services.ListAssetRequest, error) {
	folderIDs, err := httputil.QueryInt64Slice(r, "folder_ids")
	if err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}
	locationIDs, err := httputil.QueryInt64Slice(r, "location_ids")
	if err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}
	businessIDs, err := httputil.QueryInt64Slice(r, "business_ids")
	if err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}
	size, err := httputil.QueryInt(r, "size", 100)
	if err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}
	page, err := httputil.QueryInt(r, "page", 0)
	if err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}

	var folderStatuses []models.FolderStatus
	for _, s := range httputil.QueryStringSlice(r, "folder_statuses") {
		folderStatuses = append(folderStatuses, models.FolderStatus(s))
	}

	return &services.ListAssetRequest{
		Type:           models.AssetType(r.URL.Query().Get("type")),
		Status:         models.AssetStatus(r.URL.Query().Get("status")),
		Query:          r.URL.Query().Get("query"),
		FolderIDs:      folderIDs,
		FolderStatuses: folderStatuses,
		LocationIDs:    locationIDs,
		BusinessIDs:    businessIDs,
		Size:           size,
		Page:           page,
	}, nil
}
