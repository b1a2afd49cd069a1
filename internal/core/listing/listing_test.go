package listing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/core/billing"
)

func makeInvoices(n int) []billing.Invoice {
	out := make([]billing.Invoice, n)
	for i := range out {
		out[i] = billing.Invoice{
			ID:      fmt.Sprintf("INV-%03d", i+1),
			Kind:    billing.KindPatient,
			Patient: fmt.Sprintf("Patient %d", i+1),
			Status:  billing.StatusPromptSent,
		}
	}
	return out
}

func sampleInvoices() []billing.Invoice {
	return []billing.Invoice{
		{ID: "INV-005", Patient: "Sarah Johnson", Status: billing.StatusTextTwice},
		{ID: "INV-003", Patient: "Michael Smith", Status: billing.StatusPromptSent},
		{ID: "INV-006", Patient: "Emily Davis", Status: billing.StatusCallFailed},
		{ID: "INV-004", Patient: "Linda Taylor", Status: billing.StatusAIScheduled},
		{ID: "INV-008", Patient: "David Brown", Status: billing.StatusPaid},
		{ID: "INV-009", Patient: "Daniel Martinez", Status: "paid"},
	}
}

func patients(invoices []billing.Invoice) []string {
	out := make([]string, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.Patient
	}
	return out
}

func TestFilter(t *testing.T) {
	records := sampleInvoices()

	tests := []struct {
		name   string
		query  string
		status string
		want   []string
	}{
		{"empty query matches all", "", AllStatuses, patients(records)},
		{"case-insensitive name", "john", AllStatuses, []string{"Sarah Johnson"}},
		{"matches identifier", "inv-006", AllStatuses, []string{"Emily Davis"}},
		{"exact status", "", billing.StatusPaid, []string{"David Brown"}},
		{"query and status", "a", billing.StatusCallFailed, []string{"Emily Davis"}},
		{"no match", "zzz", AllStatuses, []string{}},
		{"regex characters are literal", ".*", AllStatuses, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.query, tt.status)
			assert.Equal(t, tt.want, patients(got))
		})
	}
}

func TestFilter_PaidScenario(t *testing.T) {
	got := Filter(sampleInvoices(), "", "Paid")
	require.NotEmpty(t, got)
	for _, inv := range got {
		assert.Equal(t, "Paid", inv.Status)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	records := sampleInvoices()
	before := patients(records)
	_ = Filter(records, "smith", AllStatuses)
	assert.Equal(t, before, patients(records))
}

func TestFilter_Idempotent(t *testing.T) {
	records := append(sampleInvoices(), makeInvoices(30)...)
	for _, q := range []string{"", "a", "inv-01", "john", "Patient 2"} {
		for _, status := range billing.PatientStatuses {
			once := Filter(records, q, status)
			twice := Filter(once, q, status)
			assert.Equal(t, once, twice, "query=%q status=%q", q, status)
		}
	}
}

func TestWorkcoverMatcher(t *testing.T) {
	claims := []billing.Invoice{
		{ID: "WC-1", Kind: billing.KindWorkcover, Patient: "Ann Lee", Provider: "Dr. Wilson", Insurer: "Allianz Workcover", CaseManager: "Jane Roe", PaymentStatus: billing.PaymentUnpaid},
		{ID: "WC-2", Kind: billing.KindWorkcover, Patient: "Bob Ray", Provider: "Dr. Patel", Insurer: "QBE Workcover", CaseManager: "Tom Hill", PaymentStatus: billing.PaymentOverdue},
		{ID: "WC-3", Kind: billing.KindWorkcover, Patient: "Cat Moss", Provider: "Dr. Patel", Insurer: "GIO", CaseManager: "Jane Roe", PaymentStatus: "12 days overdue"},
		{ID: "WC-4", Kind: billing.KindWorkcover, Patient: "Dan Fox", Provider: "Dr. Wilson", Insurer: "GIO", CaseManager: "Tom Hill", PaymentStatus: billing.PaymentPaid},
	}

	ids := func(f FilterState) []string {
		return billing.IDs(FilterFunc(claims, WorkcoverMatcher(f)))
	}

	assert.Equal(t, []string{"WC-1", "WC-2", "WC-3"}, ids(FilterState{Status: AllStatuses}), "paid hidden by default")
	assert.Equal(t, []string{"WC-1", "WC-2", "WC-3", "WC-4"}, ids(FilterState{Status: AllStatuses, ShowPaid: true}))
	assert.Equal(t, []string{"WC-2", "WC-3"}, ids(FilterState{Status: billing.PaymentOverdue}))
	assert.Equal(t, []string{"WC-1"}, ids(FilterState{Status: billing.PaymentUnpaid}))
	assert.Empty(t, ids(FilterState{Status: billing.PaymentPaid}), "paid selector still honours show paid")
	assert.Equal(t, []string{"WC-4"}, ids(FilterState{Status: billing.PaymentPaid, ShowPaid: true}))
	assert.Equal(t, []string{"WC-2", "WC-3"}, ids(FilterState{Query: "patel", Status: AllStatuses}))
	assert.Equal(t, []string{"WC-2"}, ids(FilterState{Query: "qbe", Status: AllStatuses}))
	assert.Equal(t, []string{"WC-1", "WC-3"}, ids(FilterState{Query: "JANE", Status: AllStatuses}))
}

func TestOverdueMatches(t *testing.T) {
	tests := []struct {
		bucket string
		days   int
		want   bool
	}{
		{OverdueAny, 0, true},
		{"", 120, true},
		{Overdue20to60, 19, false},
		{Overdue20to60, 20, true},
		{Overdue20to60, 59, true},
		{Overdue20to60, 60, false},
		{Overdue60to90, 60, true},
		{Overdue60to90, 90, true},
		{Overdue60to90, 91, false},
		{OverdueOver90, 90, false},
		{OverdueOver90, 91, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.bucket, tt.days), func(t *testing.T) {
			assert.Equal(t, tt.want, OverdueMatches(tt.bucket, tt.days))
		})
	}
}

func TestMatchers_OverdueBucket(t *testing.T) {
	records := []billing.Invoice{
		{ID: "INV-1", Kind: billing.KindPatient, Patient: "Ann Lee", Status: billing.StatusTextTwice, OverdueDays: 3},
		{ID: "INV-2", Kind: billing.KindPatient, Patient: "Bob Ray", Status: billing.StatusTextTwice, OverdueDays: 45},
		{ID: "INV-3", Kind: billing.KindPatient, Patient: "Cat Moss", Status: billing.StatusCallFailed, OverdueDays: 75},
		{ID: "INV-4", Kind: billing.KindPatient, Patient: "Dan Fox", Status: billing.StatusTextTwice, OverdueDays: 120},
	}
	ids := func(f FilterState) []string {
		return billing.IDs(FilterFunc(records, PatientMatcher(f)))
	}

	assert.Equal(t, []string{"INV-1", "INV-2", "INV-3", "INV-4"}, ids(DefaultFilter()))
	assert.Equal(t, []string{"INV-2"}, ids(FilterState{Status: AllStatuses, Overdue: Overdue20to60}))
	assert.Equal(t, []string{"INV-3"}, ids(FilterState{Status: AllStatuses, Overdue: Overdue60to90}))
	assert.Equal(t, []string{"INV-4"}, ids(FilterState{Status: billing.StatusTextTwice, Overdue: OverdueOver90}))
	assert.Empty(t, ids(FilterState{Status: billing.StatusCallFailed, Overdue: OverdueOver90}), "bucket and status both apply")

	claims := []billing.Invoice{
		{ID: "WC-1", Kind: billing.KindWorkcover, PaymentStatus: billing.PaymentOverdue, OverdueDays: 22},
		{ID: "WC-2", Kind: billing.KindWorkcover, PaymentStatus: billing.PaymentPaid, OverdueDays: 30},
		{ID: "WC-3", Kind: billing.KindWorkcover, PaymentStatus: billing.PaymentOverdue, OverdueDays: 4},
	}
	got := FilterFunc(claims, WorkcoverMatcher(FilterState{Status: AllStatuses, Overdue: Overdue20to60}))
	assert.Equal(t, []string{"WC-1"}, billing.IDs(got), "paid claims stay hidden")
}

func TestPaginate_Scenario23(t *testing.T) {
	subset := makeInvoices(23)

	p1 := Paginate(subset, 10, 1)
	assert.Equal(t, 3, p1.PageCount)
	assert.Equal(t, 0, p1.Start)
	assert.Equal(t, 10, p1.End)
	assert.Equal(t, subset[0:10], p1.Items)
	assert.Equal(t, 1, p1.ShowingStart())
	assert.Equal(t, 10, p1.ShowingEnd())

	p3 := Paginate(subset, 10, 3)
	assert.Equal(t, 20, p3.Start)
	assert.Equal(t, 23, p3.End)
	assert.Len(t, p3.Items, 3)
	assert.Equal(t, subset[20:23], p3.Items)
}

func TestPaginate_EdgeCases(t *testing.T) {
	t.Run("empty subset", func(t *testing.T) {
		p := Paginate([]billing.Invoice{}, 10, 1)
		assert.Equal(t, 1, p.PageCount)
		assert.Empty(t, p.Items)
		assert.Equal(t, 0, p.ShowingStart())
		assert.Equal(t, 0, p.ShowingEnd())
	})

	t.Run("past last page", func(t *testing.T) {
		p := Paginate(makeInvoices(5), 10, 4)
		assert.Equal(t, 1, p.PageCount)
		assert.Empty(t, p.Items)
	})

	t.Run("exact multiple", func(t *testing.T) {
		p := Paginate(makeInvoices(20), 10, 2)
		assert.Equal(t, 2, p.PageCount)
		assert.Len(t, p.Items, 10)
	})
}

func TestPaginate_Partitions(t *testing.T) {
	for _, n := range []int{0, 1, 7, 23, 100} {
		subset := makeInvoices(n)
		for size := 1; size <= 12; size++ {
			p := Paginate(subset, size, 1)

			var joined []billing.Invoice
			for page := 1; page <= p.PageCount; page++ {
				joined = append(joined, Paginate(subset, size, page).Items...)
			}
			assert.Len(t, joined, n, "n=%d size=%d", n, size)
			assert.Equal(t, billing.IDs(subset), billing.IDs(joined), "n=%d size=%d", n, size)
		}
	}
}

func TestPageWindow(t *testing.T) {
	e := Ellipsis
	tests := []struct {
		current, count int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 2, []int{1, 2}},
		{1, 5, []int{1, 2, 3, e, 5}},
		{1, 10, []int{1, 2, 3, e, 10}},
		{5, 10, []int{1, e, 3, 4, 5, 6, 7, e, 10}},
		{4, 10, []int{1, 2, 3, 4, 5, 6, e, 10}},
		{10, 10, []int{1, e, 8, 9, 10}},
		{7, 10, []int{1, e, 5, 6, 7, 8, 9, 10}},
		{3, 7, []int{1, 2, 3, 4, 5, e, 7}},
		{3, 6, []int{1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.current, tt.count), func(t *testing.T) {
			assert.Equal(t, tt.want, PageWindow(tt.current, tt.count))
		})
	}
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	visible := []string{"a", "b", "c"}

	assert.False(t, s.AllVisibleSelected(nil), "empty visible set is never all selected")
	assert.False(t, s.AllVisibleSelected(visible))

	s.ToggleAllVisible(true, visible)
	assert.True(t, s.AllVisibleSelected(visible))
	assert.Equal(t, 3, s.Len())

	s.Toggle("b", false)
	assert.False(t, s.AllVisibleSelected(visible))
	assert.False(t, s.Has("b"))

	s.Toggle("z", true)
	s.ToggleAllVisible(false, visible)
	assert.False(t, s.AllVisibleSelected(visible))
	assert.Equal(t, []string{"z"}, s.IDs(visible), "ids outside the visible set survive")

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestSelection_RoundTrip(t *testing.T) {
	for _, visible := range [][]string{{"a"}, {"a", "b"}, {"x", "y", "z", "w"}} {
		s := NewSelection()
		s.ToggleAllVisible(true, visible)
		assert.True(t, s.AllVisibleSelected(visible))
		s.ToggleAllVisible(false, visible)
		assert.False(t, s.AllVisibleSelected(visible))
	}
}

func TestSelection_IDsOrder(t *testing.T) {
	s := NewSelection()
	s.Toggle("c", true)
	s.Toggle("a", true)
	assert.Equal(t, []string{"a", "c"}, s.IDs([]string{"a", "b", "c"}))
}

func TestState_CrossPageSelection(t *testing.T) {
	s := NewState(makeInvoices(20), 10, nil)

	s.ToggleAllVisible(true)
	page1 := s.VisibleIDs()
	require.Len(t, page1, 10)
	assert.True(t, s.SelectAll())

	s.NextPage()
	assert.Equal(t, 2, s.PageState().Page)
	assert.False(t, s.SelectAll(), "page 2 rows are not selected yet")

	s.ToggleAllVisible(true)
	assert.Equal(t, 20, s.Selection().Len())
	assert.True(t, s.SelectAll())

	s.ToggleAllVisible(false)
	assert.Equal(t, 10, s.Selection().Len())
	assert.Equal(t, page1, s.SelectedIDs())
	assert.False(t, s.SelectAll())

	s.PrevPage()
	assert.True(t, s.SelectAll(), "page 1 selection survives navigation")
}

func TestState_ResetsToFirstPage(t *testing.T) {
	mutations := map[string]func(s *State){
		"query":     func(s *State) { s.SetQuery("patient") },
		"status":    func(s *State) { s.SetStatus(billing.StatusPromptSent) },
		"page size": func(s *State) { s.SetPageSize(5) },
		"show paid": func(s *State) { s.SetShowPaid(true) },
		"overdue":   func(s *State) { s.SetOverdue(OverdueAny) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := NewState(makeInvoices(40), 10, nil)
			s.SetPage(3)
			require.Equal(t, 3, s.PageState().Page)

			mutate(s)
			assert.Equal(t, 1, s.PageState().Page)
		})
	}
}

func TestState_PageClamping(t *testing.T) {
	s := NewState(makeInvoices(23), 10, nil)

	s.PrevPage()
	assert.Equal(t, 1, s.PageState().Page)

	s.SetPage(99)
	assert.Equal(t, 3, s.PageState().Page)
	assert.Len(t, s.Current().Items, 3)

	s.NextPage()
	assert.Equal(t, 3, s.PageState().Page)

	s.SetRecords(makeInvoices(12))
	assert.Equal(t, 2, s.PageState().Page)
	assert.Len(t, s.Current().Items, 2)
}

func TestState_SetPageSize(t *testing.T) {
	s := NewState(makeInvoices(23), 7, nil)
	assert.Equal(t, DefaultPageSize, s.PageState().Size, "invalid size falls back")

	assert.False(t, s.SetPageSize(3))
	assert.Equal(t, DefaultPageSize, s.PageState().Size)

	assert.True(t, s.SetPageSize(25))
	assert.Equal(t, 1, s.Current().PageCount)
	assert.Len(t, s.Current().Items, 23)
}

func TestState_SelectAllRecomputedOnFilter(t *testing.T) {
	s := NewState(sampleInvoices(), 10, nil)
	s.Toggle("INV-005", true)
	assert.False(t, s.SelectAll())

	s.SetQuery("john")
	assert.True(t, s.SelectAll(), "only the selected row is visible")

	s.SetQuery("zzz")
	assert.False(t, s.SelectAll(), "no visible rows")
	assert.Equal(t, []string{"INV-005"}, s.SelectedIDs(), "filtering keeps the selection")

	s.ClearSelection()
	assert.Empty(t, s.SelectedIDs())
}

func TestState_WorkcoverMatcher(t *testing.T) {
	claims := []billing.Invoice{
		{ID: "WC-1", Kind: billing.KindWorkcover, PaymentStatus: billing.PaymentUnpaid},
		{ID: "WC-2", Kind: billing.KindWorkcover, PaymentStatus: billing.PaymentPaid},
	}
	s := NewState(claims, 10, MatcherFor(billing.KindWorkcover))
	assert.Equal(t, []string{"WC-1"}, s.VisibleIDs())

	s.SetShowPaid(true)
	assert.Equal(t, []string{"WC-1", "WC-2"}, s.VisibleIDs())
}
