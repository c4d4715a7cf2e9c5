package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagedResourcesSelectionValidate(t *testing.T) {
	tests := []struct {
		name      string
		selection ManagedResourcesSelection
		wantErr   string
	}{
		{
			name:      "all managed resources alone",
			selection: ManagedResourcesSelection{AllManagedResources: true},
		},
		{
			name:      "all managed resources with excluded locations",
			selection: ManagedResourcesSelection{AllManagedResources: true, ExcludedLocationIDs: []int64{1}},
		},
		{
			name:      "all managed resources with location ids",
			selection: ManagedResourcesSelection{AllManagedResources: true, LocationIDs: []int64{1}},
			wantErr:   "when allManagedResources is true",
		},
		{
			name:      "all managed resources with labels",
			selection: ManagedResourcesSelection{AllManagedResources: true, Labels: []string{"west"}},
			wantErr:   "when allManagedResources is true",
		},
		{
			name:      "business ids alone",
			selection: ManagedResourcesSelection{BusinessIDs: []int64{1, 2}},
		},
		{
			name:      "business ids with excluded locations",
			selection: ManagedResourcesSelection{BusinessIDs: []int64{1}, ExcludedLocationIDs: []int64{5}},
		},
		{
			name:      "business ids with labels",
			selection: ManagedResourcesSelection{BusinessIDs: []int64{1}, Labels: []string{"west"}},
			wantErr:   "when businessIds are provided",
		},
		{
			name:      "location ids alone",
			selection: ManagedResourcesSelection{LocationIDs: []int64{1}},
		},
		{
			name:      "location ids with excluded locations",
			selection: ManagedResourcesSelection{LocationIDs: []int64{1}, ExcludedLocationIDs: []int64{2}},
			wantErr:   "when locationIds are provided",
		},
		{
			name:      "location ids with labels",
			selection: ManagedResourcesSelection{LocationIDs: []int64{1}, Labels: []string{"west"}},
			wantErr:   "when locationIds are provided",
		},
		{
			name:      "location group ids alone",
			selection: ManagedResourcesSelection{LocationGroupIDs: []int64{1}},
		},
		{
			name:      "labels alone",
			selection: ManagedResourcesSelection{Labels: []string{"west"}},
			wantErr:   "one of these parameters must be specified",
		},
		{
			name:      "empty selection",
			selection: ManagedResourcesSelection{},
			wantErr:   "one of these parameters must be specified",
		},
		{
			name:      "excluded locations only",
			selection: ManagedResourcesSelection{ExcludedLocationIDs: []int64{1}},
			wantErr:   "one of these parameters must be specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.selection.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplicableManagedResourcesEmpty(t *testing.T) {
	assert.True(t, ApplicableManagedResources{}.Empty())
	assert.True(t, ApplicableManagedResources{ExcludedLocationIDs: []int64{1}}.Empty())
	assert.False(t, ApplicableManagedResources{AllSalesPartnerResources: true}.Empty())
	assert.False(t, ApplicableManagedResources{LocationIDs: []int64{1}}.Empty())
	assert.False(t, ApplicableManagedResources{BusinessIDs: []int64{1}}.Empty())
	assert.False(t, ApplicableManagedResources{LocationGroupIDs: []int64{1}}.Empty())
}
