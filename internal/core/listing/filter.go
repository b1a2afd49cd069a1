package listing

import (
	"strings"

	"github.com/colonyops/remit/internal/core/billing"
)

// AllStatuses is the status selector that matches every record.
const AllStatuses = "All"

// Overdue bucket selectors over Invoice.OverdueDays.
const (
	OverdueAny    = "Any"
	Overdue20to60 = "20-60 days"
	Overdue60to90 = "60-90 days"
	OverdueOver90 = "90+ days"
)

// OverdueBuckets lists the overdue selectors in cycle order.
var OverdueBuckets = []string{OverdueAny, Overdue20to60, Overdue60to90, OverdueOver90}

// FilterState holds the free-text query, the status selector and the
// overdue bucket of a list.
type FilterState struct {
	Query   string
	Status  string
	Overdue string
	// ShowPaid only applies to matchers that hide settled records.
	ShowPaid bool
}

// DefaultFilter returns the filter a list starts with.
func DefaultFilter() FilterState {
	return FilterState{Status: AllStatuses, Overdue: OverdueAny}
}

// Matcher reports whether a record belongs in the filtered subset.
type Matcher func(inv billing.Invoice) bool

// MatcherFactory builds a Matcher from the current filter state.
type MatcherFactory func(f FilterState) Matcher

// Filter returns the records whose patient name or identifier contains
// query (case-insensitive) and whose status label equals status exactly,
// unless status is AllStatuses. Input order is preserved and records is
// not modified.
func Filter(records []billing.Invoice, query, status string) []billing.Invoice {
	return FilterFunc(records, PatientMatcher(FilterState{Query: query, Status: status}))
}

// FilterFunc returns the records accepted by m in input order.
func FilterFunc(records []billing.Invoice, m Matcher) []billing.Invoice {
	out := make([]billing.Invoice, 0, len(records))
	for _, r := range records {
		if m(r) {
			out = append(out, r)
		}
	}
	return out
}

// PatientMatcher matches on patient name or identifier, the exact status
// label and the overdue bucket.
func PatientMatcher(f FilterState) Matcher {
	query := strings.ToLower(f.Query)
	return func(inv billing.Invoice) bool {
		return containsFold(query, inv.Patient, inv.ID) &&
			statusMatches(f.Status, inv.Status) &&
			OverdueMatches(f.Overdue, inv.OverdueDays)
	}
}

// WorkcoverMatcher matches claims on patient, identifier, service
// provider, insurer or case manager. The status selector applies to the
// payment status: "Overdue" also accepts statuses such as
// "12 days overdue". Paid claims are hidden unless ShowPaid is set.
func WorkcoverMatcher(f FilterState) Matcher {
	query := strings.ToLower(f.Query)
	return func(inv billing.Invoice) bool {
		if !containsFold(query, inv.Patient, inv.ID, inv.Provider, inv.Insurer, inv.CaseManager) {
			return false
		}
		if !f.ShowPaid && inv.PaymentStatus == billing.PaymentPaid {
			return false
		}
		return paymentStatusMatches(f.Status, inv.PaymentStatus) && OverdueMatches(f.Overdue, inv.OverdueDays)
	}
}

// MatcherFor returns the matcher factory for a list of the given kind.
func MatcherFor(kind billing.Kind) MatcherFactory {
	if kind == billing.KindWorkcover {
		return WorkcoverMatcher
	}
	return PatientMatcher
}

// OverdueMatches reports whether days overdue falls in bucket: 20 up to
// 60, 60 through 90, or more than 90. Unknown buckets match everything.
func OverdueMatches(bucket string, days int) bool {
	switch bucket {
	case Overdue20to60:
		return days >= 20 && days < 60
	case Overdue60to90:
		return days >= 60 && days <= 90
	case OverdueOver90:
		return days > 90
	default:
		return true
	}
}

func statusMatches(selector, status string) bool {
	return selector == "" || selector == AllStatuses || selector == status
}

func paymentStatusMatches(selector, status string) bool {
	switch selector {
	case "", AllStatuses:
		return true
	case billing.PaymentOverdue:
		return status == billing.PaymentOverdue || strings.Contains(status, "overdue")
	default:
		return selector == status
	}
}

// containsFold reports whether lowered query is a substring of any field.
func containsFold(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
