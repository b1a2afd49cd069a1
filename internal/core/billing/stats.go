package billing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Stats is the summary shown above each invoice list.
type Stats struct {
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	Unpaid             int             `json:"unpaid"`
	Overdue            int             `json:"overdue"`
	AverageDaysOverdue int             `json:"average_days_overdue"`
	RemindersSent      int             `json:"reminders_sent"`
}

// Summarize computes stats over invoices. Paid invoices are excluded from
// the outstanding total and unpaid count. The average is taken over
// invoices with a positive overdue day count and rounded.
func Summarize(invoices []Invoice, activities []Activity) Stats {
	var (
		s       = Stats{TotalOutstanding: decimal.Zero}
		daysSum int
		daysN   int
	)

	for _, inv := range invoices {
		if inv.IsPaid() {
			continue
		}
		s.TotalOutstanding = s.TotalOutstanding.Add(inv.Amount)
		s.Unpaid++
		if inv.IsOverdue() {
			s.Overdue++
		}
		if inv.OverdueDays > 0 {
			daysSum += inv.OverdueDays
			daysN++
		}
	}

	if daysN > 0 {
		s.AverageDaysOverdue = int(math.Round(float64(daysSum) / float64(daysN)))
	}

	for _, a := range activities {
		if a.Type.IsReminder() {
			s.RemindersSent++
		}
	}
	return s
}
