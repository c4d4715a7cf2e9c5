package handler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyWindowDefaults(t *testing.T) {
	tests := []struct {
		name       string
		offset     int
		max        int
		wantOffset int
		wantMax    int
	}{
		{name: "zero values", offset: 0, max: 0, wantOffset: 0, wantMax: 10},
		{name: "negative offset", offset: -5, max: 20, wantOffset: 0, wantMax: 20},
		{name: "explicit window kept", offset: 30, max: 15, wantOffset: 30, wantMax: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, max := tt.offset, tt.max
			applyWindowDefaults(&offset, &max)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantMax, max)
		})
	}
}

func TestCivilDateUnmarshal(t *testing.T) {
	var payload struct {
		StartDate civilDate `json:"startDate"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"startDate":"2026-06-15"}`), &payload))
	assert.False(t, payload.StartDate.IsZero())
	assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), payload.StartDate.Time())

	payload.StartDate = civilDate{}
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":null}`), &payload))
	assert.True(t, payload.StartDate.IsZero())

	err := json.Unmarshal([]byte(`{"startDate":"15.06.2026"}`), &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestInternalListFolderRequestValidate(t *testing.T) {
	valid := InternalListFolderRequest{BusinessID: 1, Offset: 0, Max: 10}
	assert.NoError(t, valid.validate())

	missingBusiness := InternalListFolderRequest{Max: 10}
	assert.Error(t, missingBusiness.validate())
}

func TestInternalListAssetRequestValidate(t *testing.T) {
	valid := InternalListAssetRequest{FolderID: 5, BusinessID: 1, Max: 10}
	assert.NoError(t, valid.validate())

	missingFolder := InternalListAssetRequest{BusinessID: 1, Max: 10}
	assert.Error(t, missingFolder.validate())
}
