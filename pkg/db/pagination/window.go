// Package pagination slices fully materialized result sets into pages.
package pagination

// Window describes one page of an in-memory result set.
type Window struct {
	Page     int
	Limit    int
	LastPage int
	Start    int
	End      int
}

// NewWindow computes the bounds of page for total rows split into pages of limit.
// A limit of zero or less selects everything. Pages past the end select nothing.
func NewWindow(total, page, limit int) Window {
	if total < 0 {
		total = 0
	}
	if limit <= 0 {
		return Window{End: total}
	}

	lastPage := 0
	if total > 0 {
		lastPage = (total - 1) / limit
	}

	// page <= lastPage keeps page*limit below total.
	start, end := total, total
	if page >= 0 && page <= lastPage {
		start = page * limit
		end = total
		if limit < total-start {
			end = start + limit
		}
	}

	return Window{
		Page:     page,
		Limit:    limit,
		LastPage: lastPage,
		Start:    start,
		End:      end,
	}
}

// Paged reports whether a page size was applied.
func (w Window) Paged() bool {
	return w.Limit > 0
}

// Slice returns the rows of items that fall inside w.
func Slice[T any](items []T, w Window) []T {
	if w.Start >= len(items) {
		return []T{}
	}
	end := w.End
	if end > len(items) {
		end = len(items)
	}
	return items[w.Start:end]
}
