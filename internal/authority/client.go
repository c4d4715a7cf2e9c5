// Package authority implements the typed client for the resource authority
// (the monolith): the external service that owns businesses, locations and
// location groups and decides which of them a caller manages.
package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

// Config carries the authority connection settings.
type Config struct {
	BaseURL          string
	TokenlessBaseURL string
	APIVersion       string
	PageSize         int
	Timeout          time.Duration
}

// Client calls the authority's paginated listing endpoints. Every listing
// is fetched page by page until the accumulated item count reaches the
// authority-reported total; the authority chooses the effective page size,
// so the loop never assumes one.
type Client struct {
	http      *resty.Client
	tokenless *resty.Client
	profile   *Profile
	version   string
	pageSize  int
	logger    *slog.Logger
}

// NewClient creates an authority client. The tokenless endpoint is used for
// tenant-scoped calls authenticated by the fronting proxy instead of a user
// access token.
func NewClient(cfg Config, profile *Profile, logger *slog.Logger) *Client {
	newHTTP := func(baseURL string) *resty.Client {
		return resty.New().
			SetBaseURL(baseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", "DAM Service").
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json")
	}

	return &Client{
		http:      newHTTP(cfg.BaseURL),
		tokenless: newHTTP(cfg.TokenlessBaseURL),
		profile:   profile,
		version:   cfg.APIVersion,
		pageSize:  cfg.PageSize,
		logger:    logger,
	}
}

// BusinessIDs returns the distinct ids of the caller's managed businesses
// matching the selection.
func (c *Client) BusinessIDs(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) ([]int64, error) {
	callInfo := fmt.Sprintf("user %d", user.ID)
	const task = "get managed businesses"

	req := c.profile.businessesRequest(sel)
	req.Max = c.pageSize

	ids := newIDSet()
	var fetched int64
	for {
		resp, err := c.post(ctx, c.http, "/businesses/", user.AccessToken, req)
		if err != nil {
			return nil, &domain.AuthorityError{CallInfo: callInfo, Task: task, Err: err}
		}
		body, err := decodeEnvelope[BusinessesResponse](resp, callInfo, task)
		if err != nil {
			return nil, err
		}
		for _, b := range body.Businesses {
			ids.add(b.ID)
		}
		fetched += int64(len(body.Businesses))
		req.Offset = fetched
		if fetched >= body.Count || len(body.Businesses) == 0 {
			break
		}
	}
	return ids.values(), nil
}

// LocationIDs returns the distinct ids of the caller's managed locations
// that have the catalog feature enabled.
func (c *Client) LocationIDs(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) ([]int64, error) {
	callInfo := fmt.Sprintf("user %d", user.ID)
	locations, err := c.fetchLocations(ctx, callInfo, c.profile.locationsRequest(sel), func(req *LocationsRequest) (*resty.Response, error) {
		return c.post(ctx, c.http, "/locations/", user.AccessToken, req)
	})
	if err != nil {
		return nil, err
	}

	ids := newIDSet()
	for _, l := range locations {
		ids.add(l.ID)
	}
	return ids.values(), nil
}

// LocationIDsForSalesPartner is the tokenless variant of LocationIDs, used
// by background passes that act for a tenant rather than a caller.
func (c *Client) LocationIDsForSalesPartner(ctx context.Context, salesPartnerID int64, sel models.ManagedResourcesSelection) ([]int64, error) {
	callInfo := fmt.Sprintf("sales partner %d", salesPartnerID)
	locations, err := c.fetchLocations(ctx, callInfo, c.profile.locationsRequest(sel), func(req *LocationsRequest) (*resty.Response, error) {
		return c.tokenless.R().
			SetContext(ctx).
			SetQueryParam("v", c.version).
			SetHeader("X-Http-Method-Override", "GET").
			SetHeader("X-Uberall-Certificate-Auth-Sp-Id", fmt.Sprintf("%d", salesPartnerID)).
			SetBody(req).
			Post("/locations/")
	})
	if err != nil {
		return nil, err
	}

	ids := newIDSet()
	for _, l := range locations {
		ids.add(l.ID)
	}
	return ids.values(), nil
}

// LocationGroupIDs returns the ids of the caller's managed location groups
// in which at least one member location has the catalog feature enabled.
// The authority does not expose feature eligibility per group, so the
// groups' member locations are resolved in a second pass and intersected.
func (c *Client) LocationGroupIDs(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) ([]int64, error) {
	callInfo := fmt.Sprintf("user %d", user.ID)
	const task = "get managed location groups"

	req := c.profile.locationGroupsRequest(sel)
	req.Max = c.pageSize

	var groups []LocationGroup
	var fetched int64
	for {
		resp, err := c.post(ctx, c.http, "/location-groups/", user.AccessToken, req)
		if err != nil {
			return nil, &domain.AuthorityError{CallInfo: callInfo, Task: task, Err: err}
		}
		body, err := decodeEnvelope[LocationGroupsResponse](resp, callInfo, task)
		if err != nil {
			return nil, err
		}
		groups = append(groups, body.LocationGroups...)
		fetched += int64(len(body.LocationGroups))
		req.Offset = fetched
		if fetched >= body.Count || len(body.LocationGroups) == 0 {
			break
		}
	}

	memberIDs := newIDSet()
	for _, g := range groups {
		for _, l := range g.Locations {
			memberIDs.add(l.ID)
		}
	}
	eligible, err := c.LocationIDs(ctx, user, models.ManagedResourcesSelection{LocationIDs: memberIDs.values()})
	if err != nil {
		return nil, err
	}

	eligibleSet := newIDSet()
	for _, id := range eligible {
		eligibleSet.add(id)
	}

	ids := newIDSet()
	for _, g := range groups {
		for _, l := range g.Locations {
			if eligibleSet.contains(l.ID) {
				ids.add(g.ID)
				break
			}
		}
	}
	return ids.values(), nil
}

// SalesPartnerResources resolves the caller's businesses, locations and
// location groups in a single enriched location traversal: each location
// record carries its business id and group memberships inline.
func (c *Client) SalesPartnerResources(ctx context.Context, user *models.User, sel models.ManagedResourcesSelection) (businessIDs, locationIDs, locationGroupIDs []int64, err error) {
	callInfo := fmt.Sprintf("user %d", user.ID)

	req := c.profile.locationsRequest(sel)
	req.FieldMask = c.profile.EnrichedLocationFieldMask

	locations, err := c.fetchLocations(ctx, callInfo, req, func(req *LocationsRequest) (*resty.Response, error) {
		return c.post(ctx, c.http, "/locations/", user.AccessToken, req)
	})
	if err != nil {
		return nil, nil, nil, err
	}

	businesses, locs, groups := newIDSet(), newIDSet(), newIDSet()
	for _, l := range locations {
		locs.add(l.ID)
		if l.BusinessID != nil {
			businesses.add(*l.BusinessID)
		}
		for _, g := range l.Groups {
			groups.add(g.ID)
		}
	}
	return businesses.values(), locs.values(), groups.values(), nil
}

// DeleteTemplate deletes the social template backing an asset. A forbidden
// response is surfaced as an authorization failure rather than an
// authority failure.
func (c *Client) DeleteTemplate(ctx context.Context, user *models.User, templateID int64) error {
	callInfo := fmt.Sprintf("user %d", user.ID)
	task := fmt.Sprintf("delete template %d", templateID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"v": c.version, "access_token": user.AccessToken}).
		Delete(fmt.Sprintf("/social-posts/templates/%d", templateID))
	if err != nil {
		return &domain.AuthorityError{CallInfo: callInfo, Task: task, Err: err}
	}
	if resp.StatusCode() == http.StatusForbidden {
		return &domain.ForbiddenError{
			Reason: fmt.Sprintf("user %d is forbidden from deleting template with id %d", user.ID, templateID),
		}
	}
	if resp.IsError() {
		return &domain.AuthorityError{
			CallInfo: callInfo,
			Task:     task,
			Err:      fmt.Errorf("http response status: %d", resp.StatusCode()),
		}
	}
	return nil
}

// fetchLocations pages through a location listing until the accumulated
// count reaches the authority-reported total. Pages are fetched
// sequentially: the next offset depends on what has accumulated so far.
func (c *Client) fetchLocations(ctx context.Context, callInfo string, req *LocationsRequest, call func(*LocationsRequest) (*resty.Response, error)) ([]Location, error) {
	const task = "get managed locations"

	req.Max = c.pageSize

	var locations []Location
	for {
		resp, err := call(req)
		if err != nil {
			return nil, &domain.AuthorityError{CallInfo: callInfo, Task: task, Err: err}
		}
		body, err := decodeEnvelope[LocationsResponse](resp, callInfo, task)
		if err != nil {
			return nil, err
		}
		locations = append(locations, body.Locations...)
		req.Offset = int64(len(locations))
		if int64(len(locations)) >= body.Count || len(body.Locations) == 0 {
			break
		}
	}
	return locations, nil
}

func (c *Client) post(ctx context.Context, client *resty.Client, path, accessToken string, body any) (*resty.Response, error) {
	// The authority's listing endpoints take their filters as a request
	// body, so the call goes out as a method-overridden POST.
	return client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"v": c.version, "access_token": accessToken}).
		SetHeader("X-Http-Method-Override", "GET").
		SetBody(body).
		Post(path)
}

// decodeEnvelope validates the HTTP status and the authority envelope and
// returns the inner payload. A 403 becomes a ForbiddenError; any other
// failure, including a non-SUCCESS envelope status or a missing payload,
// becomes an AuthorityError.
func decodeEnvelope[T any](resp *resty.Response, callInfo, task string) (*T, error) {
	if resp.StatusCode() == http.StatusForbidden {
		return nil, &domain.ForbiddenError{
			Reason: fmt.Sprintf("authority denied %s for %s", task, callInfo),
		}
	}
	if resp.IsError() {
		return nil, &domain.AuthorityError{
			CallInfo: callInfo,
			Task:     task,
			Err:      fmt.Errorf("http response status: %d", resp.StatusCode()),
		}
	}

	var env envelope[T]
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, &domain.AuthorityError{
			CallInfo: callInfo,
			Task:     task,
			Err:      fmt.Errorf("decode authority response: %w", err),
		}
	}
	if env.Status != statusSuccess {
		return nil, &domain.AuthorityError{
			CallInfo: callInfo,
			Task:     task,
			Err:      fmt.Errorf("authority response status: %s", env.Status),
		}
	}
	if env.Response == nil {
		return nil, &domain.AuthorityError{
			CallInfo: callInfo,
			Task:     task,
			Err:      fmt.Errorf("authority response body is empty"),
		}
	}
	return env.Response, nil
}

// idSet accumulates distinct ids across pages while preserving first-seen
// order, so repeated resolutions produce stable results.
type idSet struct {
	seen  map[int64]struct{}
	order []int64
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[int64]struct{})}
}

func (s *idSet) add(id int64) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *idSet) contains(id int64) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *idSet) values() []int64 {
	return s.order
}
