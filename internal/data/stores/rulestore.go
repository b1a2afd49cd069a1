package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/data/db"
)

// RuleStore implements billing.RuleStore using SQLite.
type RuleStore struct {
	db  *db.DB
	now func() time.Time
}

var _ billing.RuleStore = (*RuleStore)(nil)

// NewRuleStore creates a new SQLite-backed sequence rule store.
func NewRuleStore(db *db.DB) *RuleStore {
	return &RuleStore{db: db, now: time.Now}
}

// Get returns the rule saved for an invoice.
func (s *RuleStore) Get(ctx context.Context, invoiceID string) (billing.SequenceRule, error) {
	row, err := s.db.QueriesFor(ctx).GetSequenceRule(ctx, invoiceID)
	if IsNotFoundError(err) {
		return billing.SequenceRule{}, fmt.Errorf("sequence rule for %s: %w", invoiceID, billing.ErrNotFound)
	}
	if err != nil {
		return billing.SequenceRule{}, fmt.Errorf("failed to get sequence rule: %w", err)
	}

	return billing.SequenceRule{
		InvoiceID:          row.InvoiceID,
		InitialDelayDays:   int(row.InitialDelayDays),
		RepeatIntervalDays: int(row.RepeatIntervalDays),
		MaxAttempts:        int(row.MaxAttempts),
		SkipWeekends:       row.SkipWeekends,
		UpdatedAt:          fromUnix(row.UpdatedAt),
	}, nil
}

// Save validates and stores a rule, replacing any previous one.
func (s *RuleStore) Save(ctx context.Context, r billing.SequenceRule) error {
	if err := r.Validate(); err != nil {
		return err
	}

	err := s.db.QueriesFor(ctx).SaveSequenceRule(ctx, db.SequenceRule{
		InvoiceID:          r.InvoiceID,
		InitialDelayDays:   int64(r.InitialDelayDays),
		RepeatIntervalDays: int64(r.RepeatIntervalDays),
		MaxAttempts:        int64(r.MaxAttempts),
		SkipWeekends:       r.SkipWeekends,
		UpdatedAt:          s.now().UnixNano(),
	})
	if err != nil {
		if IsForeignKeyError(err) {
			return fmt.Errorf("invoice %s: %w", r.InvoiceID, billing.ErrNotFound)
		}
		return fmt.Errorf("failed to save sequence rule: %w", err)
	}
	return nil
}
