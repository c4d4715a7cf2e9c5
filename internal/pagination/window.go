// Package pagination converts between the offset/limit contract exposed to
// internal API consumers and the page/pageSize contract of the catalog
// queries.
package pagination

// Page is a page-based pagination request.
type Page struct {
	Number int
	Size   int
}

// Window finds the smallest page size that returns all requested items in
// one page while minimizing the number of retrieved items that were not
// requested. Best case the page size equals max, worst case offset+max.
func Window(offset, max int) Page {
	for window := max; window < offset+max; window++ {
		// With each new window tried, the window's first start index is at
		// the requested offset. If that start index fails, the window is
		// shifted left, which is possible whenever window is larger than max.
		for leftShift := 0; leftShift <= window-max; leftShift++ {
			// The window can be the page size at the current start index if
			// the number of items before the start index is divisible by the
			// window size.
			if (offset-leftShift)%window == 0 {
				return Page{Number: (offset - leftShift) / window, Size: window}
			}
		}
	}
	return Page{Number: 0, Size: offset + max}
}

// SliceForRequest cuts the originally requested [offset, offset+max) range
// out of a fetched page. The page may start before the requested offset
// when Window shifted it left.
func SliceForRequest[T any](items []T, offset, max, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	start := offset % pageSize
	if start > len(items) {
		return nil
	}
	sliced := items[start:]
	if len(sliced) > max {
		sliced = sliced[:max]
	}
	return sliced
}
