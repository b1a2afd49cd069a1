package listing

// PageSizes are the page sizes a list can be shown with.
var PageSizes = []int{5, 10, 25, 50, 100}

// DefaultPageSize is used when no size is configured.
const DefaultPageSize = 10

// Ellipsis marks a collapsed run of page numbers in a PageWindow.
const Ellipsis = -1

// windowDelta is how many pages either side of the current page are shown.
const windowDelta = 2

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// PageState is the current 1-based page and the page size.
type PageState struct {
	Page int
	Size int
}

// Page is one slice of a filtered subset.
type Page[T any] struct {
	Items     []T
	PageCount int
	// Start and End are 0-based indices into the subset, End exclusive.
	Start int
	End   int
	Total int
}

// ShowingStart is the 1-based index of the first row on the page, or 0
// when the page is empty.
func (p Page[T]) ShowingStart() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.Start + 1
}

// ShowingEnd is the 1-based index of the last row on the page.
func (p Page[T]) ShowingEnd() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.End
}

// PageCount returns ceil(total/size), never less than 1.
func PageCount(total, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate returns page number page (1-based) of subset. The page is not
// clamped: a page past the last one yields no items. size must be >= 1.
func Paginate[T any](subset []T, size, page int) Page[T] {
	if size < 1 {
		size = 1
	}
	total := len(subset)
	start := (page - 1) * size
	end := min(start+size, total)

	p := Page[T]{
		PageCount: PageCount(total, size),
		Start:     start,
		End:       end,
		Total:     total,
	}
	if start < 0 || start >= end {
		p.Items = []T{}
		return p
	}
	p.Items = subset[start:end]
	return p
}

// PageWindow returns the page numbers to display for navigation. The
// first and last page are always present, up to two pages either side of
// current are listed and any other run is replaced by Ellipsis.
func PageWindow(current, pageCount int) []int {
	if pageCount < 1 {
		pageCount = 1
	}

	out := []int{1}
	if current-windowDelta > 2 {
		out = append(out, Ellipsis)
	}

	for i := max(2, current-windowDelta); i <= min(pageCount-1, current+windowDelta); i++ {
		out = append(out, i)
	}

	if current+windowDelta < pageCount-1 {
		out = append(out, Ellipsis, pageCount)
	} else if pageCount > 1 {
		out = append(out, pageCount)
	}

	return out
}
