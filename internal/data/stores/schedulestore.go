package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/data/db"
)

// ScheduleStore implements billing.ScheduleStore using SQLite.
type ScheduleStore struct {
	db *db.DB
}

var _ billing.ScheduleStore = (*ScheduleStore)(nil)

// NewScheduleStore creates a new SQLite-backed follow-up schedule store.
func NewScheduleStore(db *db.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// Replace swaps an invoice's planned sends in one transaction.
func (s *ScheduleStore) Replace(ctx context.Context, invoiceID string, sends []billing.ScheduledSend) error {
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteScheduledSends(ctx, invoiceID); err != nil {
			return err
		}
		for _, send := range sends {
			if send.ID == "" {
				send.ID = uuid.NewString()
			}
			err := q.InsertScheduledSend(ctx, db.ScheduledSend{
				ID:        send.ID,
				InvoiceID: invoiceID,
				Channel:   string(send.Channel),
				Message:   send.Message,
				SendAt:    toUnix(send.SendAt),
				Attempt:   int64(send.Attempt),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace scheduled sends: %w", err)
	}
	return nil
}

// ListForInvoice returns an invoice's planned sends in send order.
func (s *ScheduleStore) ListForInvoice(ctx context.Context, invoiceID string) ([]billing.ScheduledSend, error) {
	rows, err := s.db.QueriesFor(ctx).ListScheduledSends(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled sends: %w", err)
	}

	out := make([]billing.ScheduledSend, 0, len(rows))
	for _, row := range rows {
		out = append(out, billing.ScheduledSend{
			ID:        row.ID,
			InvoiceID: row.InvoiceID,
			Channel:   billing.Channel(row.Channel),
			Message:   row.Message,
			SendAt:    fromUnix(row.SendAt),
			Attempt:   int(row.Attempt),
		})
	}
	return out, nil
}
