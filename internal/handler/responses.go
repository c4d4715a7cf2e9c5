package handler

import (
	"time"

	"github.com/transactional/dam-service/internal/domain/models"
)

// AssetResponse is the asset representation served to dashboard consumers,
// association id sets included.
type AssetResponse struct {
	ID                  int64              `json:"id"`
	Name                string             `json:"name"`
	Description         string             `json:"description,omitempty"`
	DateCreated         time.Time          `json:"dateCreated"`
	DateUpdated         time.Time          `json:"dateUpdated"`
	Type                models.AssetType   `json:"type"`
	StartDate           time.Time          `json:"startDate"`
	EndDate             *time.Time         `json:"endDate,omitempty"`
	Status              models.AssetStatus `json:"status"`
	AuthorID            int64              `json:"authorId"`
	FolderID            int64              `json:"folderId"`
	TemplateID          int64              `json:"templateId"`
	LocationIDs         []int64            `json:"locationIds"`
	BusinessIDs         []int64            `json:"businessIds"`
	ExcludedLocationIDs []int64            `json:"excludedLocationIds"`
	LocationGroupIDs    []int64            `json:"locationGroupIds"`
}

func newAssetResponse(a *models.Asset) AssetResponse {
	return AssetResponse{
		ID:                  a.ID,
		Name:                a.Name,
		Description:         a.Description,
		DateCreated:         a.DateCreated,
		DateUpdated:         a.DateUpdated,
		Type:                a.Type,
		StartDate:           a.StartDate,
		EndDate:             a.EndDate,
		Status:              a.Status,
		AuthorID:            a.AuthorID,
		FolderID:            a.FolderID,
		TemplateID:          a.TemplateID,
		LocationIDs:         a.LocationIDs(),
		BusinessIDs:         a.BusinessIDs(),
		ExcludedLocationIDs: a.ExcludedLocationIDs(),
		LocationGroupIDs:    a.LocationGroupIDs(),
	}
}

// ListAssetResponse is one page of assets plus the page geometry.
type ListAssetResponse struct {
	Assets     []AssetResponse `json:"assets"`
	Size       int             `json:"size"`
	Page       int             `json:"page"`
	TotalCount int64           `json:"totalCount"`
}

// FolderResponse carries the folder plus its asset counts as seen by the
// caller. The counts stay zero on creation responses.
type FolderResponse struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	DateCreated      time.Time           `json:"dateCreated"`
	DateUpdated      time.Time           `json:"dateUpdated"`
	Status           models.FolderStatus `json:"status"`
	Type             models.AssetType    `json:"type"`
	AuthorID         int64               `json:"authorId"`
	NumVisibleAssets int64               `json:"numVisibleAssets"`
	NumTotalAssets   int64               `json:"numTotalAssets"`
}

func newFolderResponse(f *models.Folder, counts models.AssetCounts) FolderResponse {
	return FolderResponse{
		ID:               f.ID,
		Name:             f.Name,
		Description:      f.Description,
		DateCreated:      f.DateCreated,
		DateUpdated:      f.DateUpdated,
		Status:           f.Status,
		Type:             f.Type,
		AuthorID:         f.AuthorID,
		NumVisibleAssets: counts.Visible,
		NumTotalAssets:   counts.Total,
	}
}

type ListFolderResponse struct {
	Folders []FolderResponse `json:"folders"`
}

// Backend-to-backend representations omit the association id sets.

type InternalAssetResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	DateCreated time.Time          `json:"dateCreated"`
	DateUpdated time.Time          `json:"dateUpdated"`
	Type        models.AssetType   `json:"type"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
	Status      models.AssetStatus `json:"status"`
	AuthorID    int64              `json:"authorId"`
	FolderID    int64              `json:"folderId"`
	TemplateID  int64              `json:"templateId"`
}

func newInternalAssetResponse(a *models.Asset) InternalAssetResponse {
	return InternalAssetResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		DateCreated: a.DateCreated,
		DateUpdated: a.DateUpdated,
		Type:        a.Type,
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		Status:      a.Status,
		AuthorID:    a.AuthorID,
		FolderID:    a.FolderID,
		TemplateID:  a.TemplateID,
	}
}

type InternalFolderResponse struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	DateCreated time.Time           `json:"dateCreated"`
	DateUpdated time.Time           `json:"dateUpdated"`
	Status      models.FolderStatus `json:"status"`
	Type        models.AssetType    `json:"type"`
	AuthorID    int64               `json:"authorId"`
}

func newInternalFolderResponse(f *models.Folder) InternalFolderResponse {
	return InternalFolderResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		DateCreated: f.DateCreated,
		DateUpdated: f.DateUpdated,
		Status:      f.Status,
		Type:        f.Type,
		AuthorID:    f.AuthorID,
	}
}

type InternalListAssetResponse struct {
	Assets     []InternalAssetResponse `json:"assets"`
	Offset     int                     `json:"offset"`
	Max        int                     `json:"max"`
	TotalCount int64                   `json:"totalCount"`
}

type InternalListFolderResponse struct {
	Folders    []InternalFolderResponse `json:"folders"`
	Offset     int                      `json:"offset"`
	Max        int                      `json:"max"`
	TotalCount int64                    `json:"totalCount"`
}

// ExistingAssetsResponse lists the template ids that already back an asset.
type ExistingAssetsResponse struct {
	TemplateIDs []int64 `json:"templateIds"`
}
