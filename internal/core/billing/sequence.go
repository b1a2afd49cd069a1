package billing

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/robfig/cron/v3"
)

// Sequence rule option sets offered by the rules dialog.
var (
	InitialDelayOptions   = []int{1, 3, 5, 7, 9, 14, 21, 30}
	RepeatIntervalOptions = []int{7, 14, 21, 30}
	MaxAttemptOptions     = []int{1, 2, 3, 4, 5}
)

// SequenceRule controls the automatic follow-up sequence of an invoice.
type SequenceRule struct {
	InvoiceID          string    `json:"invoice_id"`
	InitialDelayDays   int       `json:"initial_delay_days"`
	RepeatIntervalDays int       `json:"repeat_interval_days"`
	MaxAttempts        int       `json:"max_attempts"`
	SkipWeekends       bool      `json:"skip_weekends"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultSequenceRule returns the rule used when an invoice has none.
func DefaultSequenceRule(invoiceID string) SequenceRule {
	return SequenceRule{
		InvoiceID:          invoiceID,
		InitialDelayDays:   9,
		RepeatIntervalDays: 14,
		MaxAttempts:        3,
		SkipWeekends:       true,
	}
}

// Validate checks every value is one of the offered options.
func (r SequenceRule) Validate() error {
	var errs []error
	if r.InvoiceID == "" {
		errs = append(errs, errors.New("invoice id is required"))
	}
	if !slices.Contains(InitialDelayOptions, r.InitialDelayDays) {
		errs = append(errs, fmt.Errorf("initial delay %d days is not one of %v", r.InitialDelayDays, InitialDelayOptions))
	}
	if !slices.Contains(RepeatIntervalOptions, r.RepeatIntervalDays) {
		errs = append(errs, fmt.Errorf("repeat interval %d days is not one of %v", r.RepeatIntervalDays, RepeatIntervalOptions))
	}
	if !slices.Contains(MaxAttemptOptions, r.MaxAttempts) {
		errs = append(errs, fmt.Errorf("max attempts %d is not one of %v", r.MaxAttempts, MaxAttemptOptions))
	}
	return errors.Join(errs...)
}

// Schedule returns the attempt times of the sequence, starting
// InitialDelayDays after from and repeating every RepeatIntervalDays.
func (r SequenceRule) Schedule(from time.Time) []time.Time {
	first := from.AddDate(0, 0, r.InitialDelayDays)
	every := cron.Every(time.Duration(r.RepeatIntervalDays) * 24 * time.Hour)
	return plan(first, every, r.MaxAttempts, r.SkipWeekends)
}

// plan returns up to n times starting at first and following sched. A nil
// schedule yields only the first time.
func plan(first time.Time, sched cron.Schedule, n int, skipWeekends bool) []time.Time {
	if n < 1 {
		return nil
	}
	out := []time.Time{shiftWeekend(first, skipWeekends)}
	if sched == nil {
		return out
	}
	next := first
	for len(out) < n {
		next = sched.Next(next)
		if next.IsZero() {
			break
		}
		out = append(out, shiftWeekend(next, skipWeekends))
	}
	return out
}

func shiftWeekend(t time.Time, skip bool) time.Time {
	if !skip {
		return t
	}
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}
