package listing

import (
	"github.com/colonyops/remit/internal/core/billing"
)

// State is the complete state of one invoice list: the records, the
// filter, the page and the selection. Every mutation leaves the cached
// page and the select-all flag consistent with the rest of the state.
type State struct {
	records []billing.Invoice
	filter  FilterState
	page    PageState
	matcher MatcherFactory

	selection *Selection
	filtered  []billing.Invoice
	current   Page[billing.Invoice]
	selectAll bool
}

// NewState creates a list over records with the default filter, page 1
// and the given page size. An invalid size falls back to DefaultPageSize.
// A nil matcher factory uses PatientMatcher.
func NewState(records []billing.Invoice, pageSize int, matcher MatcherFactory) *State {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	if matcher == nil {
		matcher = PatientMatcher
	}
	s := &State{
		records:   records,
		filter:    DefaultFilter(),
		page:      PageState{Page: 1, Size: pageSize},
		matcher:   matcher,
		selection: NewSelection(),
	}
	s.recompute()
	return s
}

// Records returns the full, unfiltered record list.
func (s *State) Records() []billing.Invoice { return s.records }

// Filter returns the current filter state.
func (s *State) Filter() FilterState { return s.filter }

// PageState returns the current page and size.
func (s *State) PageState() PageState { return s.page }

// Filtered returns the records matching the current filter.
func (s *State) Filtered() []billing.Invoice { return s.filtered }

// Current returns the visible page.
func (s *State) Current() Page[billing.Invoice] { return s.current }

// SelectAll reports whether every visible row is selected. It is false
// when the page is empty.
func (s *State) SelectAll() bool { return s.selectAll }

// Selection returns the selection tracker. Mutate it through State so the
// select-all flag stays in sync.
func (s *State) Selection() *Selection { return s.selection }

// SetRecords replaces the record list, keeping the filter and selection.
// The page is clamped to the new page count.
func (s *State) SetRecords(records []billing.Invoice) {
	s.records = records
	s.recompute()
	if s.page.Page > s.current.PageCount {
		s.page.Page = s.current.PageCount
		s.recompute()
	}
}

// SetQuery changes the search text and returns to page 1.
func (s *State) SetQuery(q string) {
	s.filter.Query = q
	s.resetPage()
}

// SetStatus changes the status selector and returns to page 1.
func (s *State) SetStatus(status string) {
	s.filter.Status = status
	s.resetPage()
}

// SetOverdue changes the overdue bucket and returns to page 1.
func (s *State) SetOverdue(bucket string) {
	s.filter.Overdue = bucket
	s.resetPage()
}

// SetShowPaid toggles display of settled records and returns to page 1.
func (s *State) SetShowPaid(show bool) {
	s.filter.ShowPaid = show
	s.resetPage()
}

// SetPageSize changes the page size and returns to page 1. Sizes not in
// PageSizes are rejected and leave the state unchanged.
func (s *State) SetPageSize(size int) bool {
	if !ValidPageSize(size) {
		return false
	}
	s.page.Size = size
	s.resetPage()
	return true
}

// SetPage moves to page p, clamped to [1, PageCount].
func (s *State) SetPage(p int) {
	s.page.Page = min(max(p, 1), PageCount(len(s.filtered), s.page.Size))
	s.recompute()
}

// NextPage moves forward one page, stopping at the last page.
func (s *State) NextPage() { s.SetPage(s.page.Page + 1) }

// PrevPage moves back one page, stopping at page 1.
func (s *State) PrevPage() { s.SetPage(s.page.Page - 1) }

// VisibleIDs returns the identifiers on the current page in order.
func (s *State) VisibleIDs() []string {
	return billing.IDs(s.current.Items)
}

// Toggle selects or deselects a single record.
func (s *State) Toggle(id string, checked bool) {
	s.selection.Toggle(id, checked)
	s.recomputeSelectAll()
}

// ToggleAllVisible selects or deselects every row on the current page.
func (s *State) ToggleAllVisible(checked bool) {
	s.selection.ToggleAllVisible(checked, s.VisibleIDs())
	s.recomputeSelectAll()
}

// SelectedIDs returns the selected identifiers in record order.
func (s *State) SelectedIDs() []string {
	return s.selection.IDs(billing.IDs(s.records))
}

// ClearSelection deselects everything.
func (s *State) ClearSelection() {
	s.selection.Clear()
	s.recomputeSelectAll()
}

func (s *State) resetPage() {
	s.page.Page = 1
	s.recompute()
}

func (s *State) recompute() {
	s.filtered = FilterFunc(s.records, s.matcher(s.filter))
	s.current = Paginate(s.filtered, s.page.Size, s.page.Page)
	s.recomputeSelectAll()
}

func (s *State) recomputeSelectAll() {
	s.selectAll = s.selection.AllVisibleSelected(s.VisibleIDs())
}
