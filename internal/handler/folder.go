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

// FolderHandler serves the dashboard-facing folder endpoints.
type FolderHandler struct {
	folders   services.FolderService
	resources *user.ManagedResourcesService
	authz     *user.AuthorizationService
	logger    *slog.Logger
}

func NewFolderHandler(
	folders services.FolderService,
	resources *user.ManagedResourcesService,
	authz *user.AuthorizationService,
	logger *slog.Logger,
) *FolderHandler {
	return &FolderHandler{
		folders:   folders,
		resources: resources,
		authz:     authz,
		logger:    logger,
	}
}

// RegisterRoutes registers the folder routes on the mux.
func (h *FolderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/dam/folders", h.Create)
	mux.HandleFunc("GET /api/dam/folders", h.List)
	mux.HandleFunc("GET /api/dam/folders/{id}", h.Get)
	mux.HandleFunc("PATCH /api/dam/folders/{id}", h.Update)
	mux.HandleFunc("DELETE /api/dam/folders/{id}", h.Delete)
}

// Create handles POST /api/dam/folders
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.Create(ctx, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	// A fresh folder has no assets yet, both counts start at zero.
	httputil.RespondJSON(w, http.StatusOK, newFolderResponse(folder, models.AssetCounts{}))
}

// Get handles GET /api/dam/folders/{id}
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	folder, err := h.folders.Get(ctx, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanAccessFolder(ctx, usr, folder, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	counts, err := h.folders.AssetCounts(ctx, id, managed)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newFolderResponse(folder, counts))
}

// List handles GET /api/dam/folders
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	usr, err := userFromHeaders(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	req, err := parseListFolderRequest(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var managed models.ApplicableManagedResources
	if len(req.LocationIDs) == 0 {
		managed, err = h.resources.Default(ctx, usr)
	} else {
		managed, err = h.resources.FilteredListResources(ctx, usr, models.ManagedResourcesSelection{
			LocationIDs: req.LocationIDs,
		})
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	folders, err := h.folders.List(ctx, usr, req, managed)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	out := make([]FolderResponse, 0, len(folders))
	for i := range folders {
		counts, err := h.folders.AssetCounts(ctx, folders[i].ID, managed)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		out = append(out, newFolderResponse(&folders[i], counts))
	}

	httputil.RespondJSON(w, http.StatusOK, ListFolderResponse{Folders: out})
}

// Update handles PATCH /api/dam/folders/{id}
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req services.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folders.Get(ctx, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanAccessFolder(ctx, usr, folder, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	updated, err := h.folders.Update(ctx, id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	counts, err := h.folders.AssetCounts(ctx, id, managed)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newFolderResponse(updated, counts))
}

// Delete handles DELETE /api/dam/folders/{id}
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	folder, err := h.folders.Get(ctx, id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	managed, err := h.resources.Default(ctx, usr)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if err := h.authz.CanDeleteFolder(ctx, usr, folder, managed); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.folders.Delete(ctx, id); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func parseListFolderRequest(r *http.Request) (*services.ListFolderRequest, error) {
	locationIDs, err := httputil.QueryInt64Slice(r, "location_ids")
	if err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}

	folderType := models.AssetType(r.URL.Query().Get("type"))
	if folderType == "" {
		return nil, &domain.InvalidSelectionError{Reason: "type is required"}
	}

	var statuses []models.FolderStatus
	for _, s := range httputil.QueryStringSlice(r, "statuses") {
		statuses = append(statuses, models.FolderStatus(s))
	}
	var assetStatuses []models.AssetStatus
	for _, s := range httputil.QueryStringSlice(r, "asset_statuses") {
		assetStatuses = append(assetStatuses, models.AssetStatus(s))
	}

	return &services.ListFolderRequest{
		Type:          folderType,
		Statuses:      statuses,
		AssetStatuses: assetStatuses,
		LocationIDs:   locationIDs,
	}, nil
}
