package authority

import (
	"github.com/transactional/dam-service/internal/domain/models"
)

// envelope is the outer response wrapper of every authority call. A status
// other than "SUCCESS" or a missing payload is a protocol failure, distinct
// from a transport error.
type envelope[T any] struct {
	Status   string `json:"status"`
	Response *T     `json:"response"`
}

const statusSuccess = "SUCCESS"

// LocationsRequest filters the authority's paginated location listing.
type LocationsRequest struct {
	Max                 int      `json:"max"`
	Offset              int64    `json:"offset"`
	FieldMask           []string `json:"fieldMask"`
	Status              []string `json:"status"`
	Features            []string `json:"features"`
	Labels              []string `json:"labels,omitempty"`
	BusinessIDs         []int64  `json:"businessIds,omitempty"`
	LocationIDs         []int64  `json:"locationIds,omitempty"`
	ExcludedLocationIDs []int64  `json:"excludedLocationIds,omitempty"`
	LocationGroupIDs    []int64  `json:"locationGroupIds,omitempty"`
	SelectAll           bool     `json:"selectAll"`
}

// BusinessesRequest filters the authority's paginated business listing.
type BusinessesRequest struct {
	Max         int      `json:"max"`
	Offset      int64    `json:"offset"`
	FieldMask   []string `json:"fieldMask"`
	Status      []string `json:"status"`
	Features    []string `json:"features"`
	BusinessIDs []int64  `json:"businessIds,omitempty"`
}

// LocationGroupsRequest filters the authority's paginated group listing.
type LocationGroupsRequest struct {
	Max              int     `json:"max"`
	Offset           int64   `json:"offset"`
	LocationGroupIDs []int64 `json:"locationGroupIds,omitempty"`
}

// Location is an authority location record. BusinessID and Groups are only
// populated when the enriched field mask requests them.
type Location struct {
	ID         int64           `json:"id"`
	BusinessID *int64          `json:"businessId,omitempty"`
	Groups     []LocationGroup `json:"groups,omitempty"`
}

type Business struct {
	ID int64 `json:"id"`
}

type LocationGroup struct {
	ID        int64      `json:"id"`
	Locations []Location `json:"locations,omitempty"`
}

type LocationsResponse struct {
	Count     int64      `json:"count"`
	Max       int        `json:"max"`
	Offset    int64      `json:"offset"`
	Locations []Location `json:"locations"`
}

type BusinessesResponse struct {
	Count      int64      `json:"count"`
	Max        int        `json:"max"`
	Offset     int64      `json:"offset"`
	Businesses []Business `json:"businesses"`
}

type LocationGroupsResponse struct {
	Count          int64           `json:"count"`
	Max            int             `json:"max"`
	Offset         int64           `json:"offset"`
	LocationGroups []LocationGroup `json:"locationGroups"`
}

func (p *Profile) locationsRequest(sel models.ManagedResourcesSelection) *LocationsRequest {
	return &LocationsRequest{
		FieldMask:           p.LocationFieldMask,
		Status:              p.LocationStatuses,
		Features:            p.Features,
		Labels:              sel.Labels,
		BusinessIDs:         sel.BusinessIDs,
		LocationIDs:         sel.LocationIDs,
		ExcludedLocationIDs: sel.ExcludedLocationIDs,
		LocationGroupIDs:    sel.LocationGroupIDs,
		SelectAll:           true,
	}
}

func (p *Profile) businessesRequest(sel models.ManagedResourcesSelection) *BusinessesRequest {
	return &BusinessesRequest{
		FieldMask:   p.BusinessFieldMask,
		Status:      p.BusinessStatuses,
		Features:    p.Features,
		BusinessIDs: sel.BusinessIDs,
	}
}

func (p *Profile) locationGroupsRequest(sel models.ManagedResourcesSelection) *LocationGroupsRequest {
	return &LocationGroupsRequest{
		LocationGroupIDs: sel.LocationGroupIDs,
	}
}
