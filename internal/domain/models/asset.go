package models

import "time"

// AssetStatus is the lifecycle state of an asset. Removed is terminal:
// removed assets are excluded from every non-removed query and never
// transition back.
type AssetStatus string

const (
	AssetHidden  AssetStatus = "HIDDEN"
	AssetVisible AssetStatus = "VISIBLE"
	AssetRemoved AssetStatus = "REMOVED"
)

// NonRemovedAssetStatuses is the status allow-list for regular queries.
var NonRemovedAssetStatuses = []AssetStatus{AssetHidden, AssetVisible}

// AssetType distinguishes the kinds of catalog assets.
type AssetType string

const (
	AssetTypeAdTemplate         AssetType = "AD_TEMPLATE"
	AssetTypeSocialPostTemplate AssetType = "SOCIAL_POST_TEMPLATE"
)

// Asset is a catalog entity scoped to a sales partner, linked to external
// resources through four kinds of association rows.
type Asset struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	DateCreated    time.Time   `json:"dateCreated"`
	DateUpdated    time.Time   `json:"dateUpdated"`
	Status         AssetStatus `json:"status"`
	StartDate      time.Time   `json:"startDate"`
	EndDate        *time.Time  `json:"endDate,omitempty"`
	Type           AssetType   `json:"type"`
	AuthorID       int64       `json:"authorId"`
	FolderID       int64       `json:"folderId"`
	SalesPartnerID int64       `json:"salesPartnerId"`
	UsageCount     int         `json:"usageCount"`
	TemplateID     int64       `json:"templateId"`

	Locations         []AssetLocation         `json:"-"`
	Businesses        []AssetBusiness         `json:"-"`
	ExcludedLocations []AssetExcludedLocation `json:"-"`
	LocationGroups    []AssetLocationGroup    `json:"-"`
}

// Association rows carry composite identity (asset id + resource id); there
// is no synthetic key and duplicates are not allowed.

type AssetLocation struct {
	AssetID    int64
	LocationID int64
}

type AssetBusiness struct {
	AssetID    int64
	BusinessID int64
}

type AssetExcludedLocation struct {
	AssetID            int64
	ExcludedLocationID int64
}

type AssetLocationGroup struct {
	AssetID         int64
	LocationGroupID int64
}

// LocationIDs projects the asset's location associations to an id slice.
func (a *Asset) LocationIDs() []int64 {
	ids := make([]int64, 0, len(a.Locations))
	for _, l := range a.Locations {
		ids = append(ids, l.LocationID)
	}
	return ids
}

func (a *Asset) BusinessIDs() []int64 {
	ids := make([]int64, 0, len(a.Businesses))
	for _, b := range a.Businesses {
		ids = append(ids, b.BusinessID)
	}
	return ids
}

func (a *Asset) ExcludedLocationIDs() []int64 {
	ids := make([]int64, 0, len(a.ExcludedLocations))
	for _, e := range a.ExcludedLocations {
		ids = append(ids, e.ExcludedLocationID)
	}
	return ids
}

func (a *Asset) LocationGroupIDs() []int64 {
	ids := make([]int64, 0, len(a.LocationGroups))
	for _, g := range a.LocationGroups {
		ids = append(ids, g.LocationGroupID)
	}
	return ids
}

// HasAnyResourceAssociation reports whether the asset is linked to at least
// one business, location or location group.
func (a *Asset) HasAnyResourceAssociation() bool {
	return len(a.Businesses) > 0 || len(a.Locations) > 0 || len(a.LocationGroups) > 0
}

// AssetCounts carries the visible and total (non-removed) asset counts of a
// folder as seen by one caller.
type AssetCounts struct {
	Visible int64 `json:"visible"`
	Total   int64 `json:"total"`
}
