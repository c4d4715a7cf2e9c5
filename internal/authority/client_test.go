package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	profile, err := DefaultProfile()
	require.NoError(t, err)
	return NewClient(Config{
		BaseURL:          baseURL,
		TokenlessBaseURL: baseURL,
		APIVersion:       "v1",
		PageSize:         2,
		Timeout:          5 * time.Second,
	}, profile, slog.Default())
}

func authorityUser() *models.User {
	return &models.User{ID: 42, SalesPartnerID: 7, AccessToken: "token-1"}
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"status":   "SUCCESS",
		"response": payload,
	}))
}

func TestBusinessIDsPaginatesAndDeduplicates(t *testing.T) {
	pages := [][]Business{
		{{ID: 1}, {ID: 2}},
		{{ID: 2}, {ID: 3}},
	}
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/businesses/", r.URL.Path)
		assert.Equal(t, "GET", r.Header.Get("X-Http-Method-Override"))
		assert.Equal(t, "v1", r.URL.Query().Get("v"))
		assert.Equal(t, "token-1", r.URL.Query().Get("access_token"))

		var req BusinessesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.Max)

		page := pages[calls]
		calls++
		writeEnvelope(t, w, BusinessesResponse{Count: 4, Businesses: page})
	}))
	defer srv.Close()

	ids, err := newTestClient(t, srv.URL).BusinessIDs(context.Background(), authorityUser(), models.ManagedResourcesSelection{AllManagedResources: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Equal(t, 2, calls)
}

func TestLocationIDsSendsSelectionFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req LocationsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []int64{10, 11}, req.LocationIDs)
		assert.True(t, req.SelectAll)
		assert.NotEmpty(t, req.Status)
		assert.NotEmpty(t, req.Features)

		writeEnvelope(t, w, LocationsResponse{Count: 2, Locations: []Location{{ID: 10}, {ID: 11}}})
	}))
	defer srv.Close()

	ids, err := newTestClient(t, srv.URL).LocationIDs(context.Background(), authorityUser(), models.ManagedResourcesSelection{LocationIDs: []int64{10, 11}})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids)
}

func TestLocationIDsForSalesPartnerUsesCertificateHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.Header.Get("X-Uberall-Certificate-Auth-Sp-Id"))
		assert.Empty(t, r.URL.Query().Get("access_token"))

		writeEnvelope(t, w, LocationsResponse{Count: 1, Locations: []Location{{ID: 10}}})
	}))
	defer srv.Close()

	ids, err := newTestClient(t, srv.URL).LocationIDsForSalesPartner(context.Background(), 7, models.ManagedResourcesSelection{AllManagedResources: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids)
}

func TestLocationGroupIDsRequiresEligibleMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/location-groups/":
			writeEnvelope(t, w, LocationGroupsResponse{Count: 2, LocationGroups: []LocationGroup{
				{ID: 100, Locations: []Location{{ID: 10}, {ID: 11}}},
				{ID: 200, Locations: []Location{{ID: 12}}},
			}})
		case "/locations/":
			// Only location 11 has the catalog feature enabled.
			writeEnvelope(t, w, LocationsResponse{Count: 1, Locations: []Location{{ID: 11}}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	ids, err := newTestClient(t, srv.URL).LocationGroupIDs(context.Background(), authorityUser(), models.ManagedResourcesSelection{LocationGroupIDs: []int64{100, 200}})
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, ids)
}

func TestSalesPartnerResourcesCollectsInlineAssociations(t *testing.T) {
	businessID := int64(20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req LocationsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.FieldMask)

		writeEnvelope(t, w, LocationsResponse{Count: 2, Locations: []Location{
			{ID: 10, BusinessID: &businessID, Groups: []LocationGroup{{ID: 100}}},
			{ID: 11, BusinessID: &businessID},
		}})
	}))
	defer srv.Close()

	businesses, locations, groups, err := newTestClient(t, srv.URL).SalesPartnerResources(context.Background(), authorityUser(), models.ManagedResourcesSelection{AllManagedResources: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{20}, businesses)
	assert.Equal(t, []int64{10, 11}, locations)
	assert.Equal(t, []int64{100}, groups)
}

func TestForbiddenResponseBecomesForbiddenError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).LocationIDs(context.Background(), authorityUser(), models.ManagedResourcesSelection{AllManagedResources: true})
	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestNonSuccessEnvelopeBecomesAuthorityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ERROR","response":null}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).BusinessIDs(context.Background(), authorityUser(), models.ManagedResourcesSelection{AllManagedResources: true})
	var authorityErr *domain.AuthorityError
	require.ErrorAs(t, err, &authorityErr)
	assert.Contains(t, err.Error(), "ERROR")
}

func TestEmptyEnvelopePayloadBecomesAuthorityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"SUCCESS"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).BusinessIDs(context.Background(), authorityUser(), models.ManagedResourcesSelection{AllManagedResources: true})
	var authorityErr *domain.AuthorityError
	require.ErrorAs(t, err, &authorityErr)
	assert.Contains(t, err.Error(), "empty")
}

func TestDeleteTemplate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "DELETE", r.Method)
			assert.Equal(t, "/social-posts/templates/55", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		require.NoError(t, newTestClient(t, srv.URL).DeleteTemplate(context.Background(), authorityUser(), 55))
	})

	t.Run("forbidden", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		err := newTestClient(t, srv.URL).DeleteTemplate(context.Background(), authorityUser(), 55)
		var forbidden *domain.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
	})
}
