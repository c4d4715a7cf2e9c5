package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/services"
	"github.com/transactional/dam-service/internal/httputil"
	"github.com/transactional/dam-service/internal/pagination"
	"github.com/transactional/dam-service/internal/task"
)

// InternalHandler serves the backend-to-backend endpoints. Callers are
// other services, so there is no per-user resource resolution; the request
// body names the resource scope explicitly.
type InternalHandler struct {
	assets       services.AssetService
	folders      services.FolderService
	obsoleteTask *task.ObsoleteLocationLinksDeletion
	logger       *slog.Logger
}

func NewInternalHandler(
	assets services.AssetService,
	folders services.FolderService,
	obsoleteTask *task.ObsoleteLocationLinksDeletion,
	logger *slog.Logger,
) *InternalHandler {
	return &InternalHandler{
		assets:       assets,
		folders:      folders,
		obsoleteTask: obsoleteTask,
		logger:       logger,
	}
}

// RegisterRoutes registers the internal routes on the mux.
func (h *InternalHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /internal/dam/folders", h.ListFolders)
	mux.HandleFunc("POST /internal/dam/assets", h.ListAssets)
	mux.HandleFunc("POST /internal/dam/assets/activation", h.ActivateAssets)
	mux.HandleFunc("POST /internal/dam/assets/deactivation", h.DeactivateAssets)
	mux.HandleFunc("POST /internal/dam/assets/migration", h.ExistingAssets)
	mux.HandleFunc("GET /internal/dam/folders/migration", h.FindFolder)
	mux.HandleFunc("POST /internal/dam/assets/obsolete-location-deletion", h.DeleteObsoleteLocationLinks)
}

// InternalListFolderRequest scopes a folder listing to explicit resources
// with offset/max pagination.
type InternalListFolderRequest struct {
	LocationIDs      []int64 `json:"locationIds,omitempty"`
	BusinessID       int64   `json:"businessId"`
	SalesPartnerID   int64   `json:"salesPartnerId"`
	LocationGroupIDs []int64 `json:"locationGroupIds,omitempty"`
	Offset           int     `json:"offset"`
	Max              int     `json:"max"`
}

func (r InternalListFolderRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BusinessID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Offset, validation.Min(0)),
		validation.Field(&r.Max, validation.Min(0)),
	)
}

// InternalListAssetRequest scopes one folder's assets to explicit
// resources with offset/max pagination.
type InternalListAssetRequest struct {
	FolderID         int64   `json:"folderId"`
	LocationIDs      []int64 `json:"locationIds,omitempty"`
	BusinessID       int64   `json:"businessId"`
	LocationGroupIDs []int64 `json:"locationGroupIds,omitempty"`
	Query            string  `json:"query,omitempty"`
	SalesPartnerID   int64   `json:"salesPartnerId"`
	Offset           int     `json:"offset"`
	Max              int     `json:"max"`
}

func (r InternalListAssetRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FolderID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.BusinessID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Offset, validation.Min(0)),
		validation.Field(&r.Max, validation.Min(0)),
	)
}

// ListFolders handles POST /internal/dam/folders
func (h *InternalHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InternalListFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	applyWindowDefaults(&req.Offset, &req.Max)
	if err := req.validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.folders.ListByResources(ctx, &services.FolderResourcesQuery{
		LocationIDs:      req.LocationIDs,
		BusinessID:       req.BusinessID,
		LocationGroupIDs: req.LocationGroupIDs,
		SalesPartnerID:   req.SalesPartnerID,
		Page:             pagination.Window(req.Offset, req.Max),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	requested := pagination.SliceForRequest(page.Folders, req.Offset, req.Max, page.Page.Size)
	folders := make([]InternalFolderResponse, 0, len(requested))
	for i := range requested {
		folders = append(folders, newInternalFolderResponse(&requested[i]))
	}

	httputil.RespondJSON(w, http.StatusOK, InternalListFolderResponse{
		Folders:    folders,
		Offset:     req.Offset,
		Max:        req.Max,
		TotalCount: page.Total,
	})
}

// ListAssets handles POST /internal/dam/assets
func (h *InternalHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InternalListAssetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	applyWindowDefaults(&req.Offset, &req.Max)
	if err := req.validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.assets.ListForFolder(ctx, &services.FolderAssetsQuery{
		FolderID:         req.FolderID,
		LocationIDs:      req.LocationIDs,
		BusinessIDs:      []int64{req.BusinessID},
		LocationGroupIDs: req.LocationGroupIDs,
		Query:            req.Query,
		SalesPartnerID:   req.SalesPartnerID,
		Page:             pagination.Window(req.Offset, req.Max),
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	requested := pagination.SliceForRequest(page.Assets, req.Offset, req.Max, page.Page.Size)
	assets := make([]InternalAssetResponse, 0, len(requested))
	for i := range requested {
		assets = append(assets, newInternalAssetResponse(&requested[i]))
	}

	httputil.RespondJSON(w, http.StatusOK, InternalListAssetResponse{
		Assets:     assets,
		Offset:     req.Offset,
		Max:        req.Max,
		TotalCount: page.Total,
	})
}

// ActivateAssets handles POST /internal/dam/assets/activation
func (h *InternalHandler) ActivateAssets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate civilDate `json:"startDate"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StartDate.IsZero() {
		httputil.RespondError(w, http.StatusBadRequest, "startDate is required")
		return
	}

	go task.ActivateAssets(context.WithoutCancel(r.Context()), h.assets, req.StartDate.Time(), h.logger)
	w.WriteHeader(http.StatusAccepted)
}

// DeactivateAssets handles POST /internal/dam/assets/deactivation
func (h *InternalHandler) DeactivateAssets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EndDate civilDate `json:"endDate"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.EndDate.IsZero() {
		httputil.RespondError(w, http.StatusBadRequest, "endDate is required")
		return
	}

	go task.DeactivateAssets(context.WithoutCancel(r.Context()), h.assets, req.EndDate.Time(), h.logger)
	w.WriteHeader(http.StatusAccepted)
}

// ExistingAssets handles POST /internal/dam/assets/migration
func (h *InternalHandler) ExistingAssets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateIDs []int64 `json:"templateIds"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.assets.ExistingTemplateIDs(r.Context(), req.TemplateIDs)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ExistingAssetsResponse{TemplateIDs: ids})
}

// FindFolder handles GET /internal/dam/folders/migration
func (h *InternalHandler) FindFolder(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		httputil.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}
	authorID, err := httputil.QueryInt64(r, "authorId", 0)
	if err != nil || authorID < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "authorId is required and must be positive")
		return
	}

	folder, err := h.folders.FindByNameAndAuthor(r.Context(), name, authorID)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if folder == nil {
		httputil.RespondJSON(w, http.StatusOK, nil)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, newInternalFolderResponse(folder))
}

// DeleteObsoleteLocationLinks handles POST /internal/dam/assets/obsolete-location-deletion
func (h *InternalHandler) DeleteObsoleteLocationLinks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SalesPartnerIDs []int64 `json:"salesPartnerIds,omitempty"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	go h.obsoleteTask.Run(context.WithoutCancel(r.Context()), req.SalesPartnerIDs)
	w.WriteHeader(http.StatusAccepted)
}

func applyWindowDefaults(offset, max *int) {
	if *offset < 0 {
		*offset = 0
	}
	if *max == 0 {
		*max = 10
	}
}

// civilDate is a date without a time component, encoded as "2006-01-02".
type civilDate struct {
	t time.Time
}

func (d *civilDate) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return &domain.InvalidSelectionError{Reason: "invalid date: " + raw}
	}
	d.t = parsed
	return nil
}

func (d civilDate) IsZero() bool    { return d.t.IsZero() }
func (d civilDate) Time() time.Time { return d.t }
