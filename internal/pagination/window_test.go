package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		max      int
		wantPage int
		wantSize int
	}{
		{name: "zero offset", offset: 0, max: 10, wantPage: 0, wantSize: 10},
		{name: "offset not aligned", offset: 7, max: 10, wantPage: 0, wantSize: 17},
		{name: "offset aligned to max", offset: 10, max: 10, wantPage: 1, wantSize: 10},
		{name: "offset multiple of max", offset: 30, max: 10, wantPage: 3, wantSize: 10},
		{name: "offset smaller than max", offset: 3, max: 10, wantPage: 0, wantSize: 13},
		{name: "single item", offset: 5, max: 1, wantPage: 5, wantSize: 1},
		{name: "prime offset", offset: 13, max: 5, wantPage: 2, wantSize: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(tt.offset, tt.max)
			assert.Equal(t, tt.wantPage, got.Number)
			assert.Equal(t, tt.wantSize, got.Size)
		})
	}
}

// The returned page must always fully cover [offset, offset+max) with a
// page size of at least max.
func TestWindowCoversRequestedRange(t *testing.T) {
	for offset := 0; offset <= 200; offset++ {
		for max := 1; max <= 40; max++ {
			got := Window(offset, max)
			start := got.Number * got.Size
			end := start + got.Size

			assert.GreaterOrEqual(t, got.Size, max, "offset=%d max=%d", offset, max)
			assert.LessOrEqual(t, start, offset, "offset=%d max=%d", offset, max)
			assert.Greater(t, end, offset, "offset=%d max=%d", offset, max)
			assert.GreaterOrEqual(t, end, offset+max, "offset=%d max=%d", offset, max)
		}
	}
}

func TestSliceForRequest(t *testing.T) {
	page := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}

	// Page of size 9 starting at 0, caller asked for offset=3 max=4.
	got := SliceForRequest(page, 3, 4, 9)
	assert.Equal(t, []int{3, 4, 5, 6}, got)

	// Requested range extends past the fetched items.
	got = SliceForRequest(page[:5], 3, 4, 9)
	assert.Equal(t, []int{3, 4}, got)

	// Offset beyond the page contents.
	got = SliceForRequest([]int{}, 3, 4, 9)
	assert.Empty(t, got)
}
