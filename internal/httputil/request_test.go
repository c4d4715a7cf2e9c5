package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Summer campaign"}`))
	require.NoError(t, ParseJSON(httptest.NewRecorder(), r, &dest))
	assert.Equal(t, "Summer campaign", dest.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))
	err := ParseJSON(httptest.NewRecorder(), r, &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestQueryInt64(t *testing.T) {
	r := httptest.NewRequest("GET", "/?size=25", nil)

	size, err := QueryInt64(r, "size", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(25), size)

	page, err := QueryInt64(r, "page", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page)

	r = httptest.NewRequest("GET", "/?size=abc", nil)
	_, err = QueryInt64(r, "size", 100)
	assert.Error(t, err)
}

func TestQueryInt64Slice(t *testing.T) {
	r := httptest.NewRequest("GET", "/?location_ids=1,2&location_ids=3", nil)

	ids, err := QueryInt64Slice(r, "location_ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = QueryInt64Slice(r, "business_ids")
	require.NoError(t, err)
	assert.Nil(t, ids)

	r = httptest.NewRequest("GET", "/?location_ids=1,x", nil)
	_, err = QueryInt64Slice(r, "location_ids")
	assert.Error(t, err)
}

func TestQueryStringSlice(t *testing.T) {
	r := httptest.NewRequest("GET", "/?statuses=ACTIVE,%20INACTIVE&statuses=&statuses=DELETED", nil)
	assert.Equal(t, []string{"ACTIVE", "INACTIVE", "DELETED"}, QueryStringSlice(r, "statuses"))
}
