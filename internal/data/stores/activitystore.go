package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/data/db"
)

// ActivityStore implements billing.ActivityStore using SQLite.
type ActivityStore struct {
	db *db.DB
}

var _ billing.ActivityStore = (*ActivityStore)(nil)

// NewActivityStore creates a new SQLite-backed activity store.
func NewActivityStore(db *db.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Append records an activity. An empty ID is generated.
func (s *ActivityStore) Append(ctx context.Context, a billing.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Category == "" {
		a.Category = a.Type.Category()
	}

	err := s.db.QueriesFor(ctx).InsertActivity(ctx, db.Activity{
		ID:          a.ID,
		InvoiceID:   a.InvoiceID,
		Type:        string(a.Type),
		Description: a.Description,
		Author:      a.Author,
		Category:    a.Category,
		CreatedAt:   toUnix(a.CreatedAt),
	})
	if err != nil {
		if IsForeignKeyError(err) {
			return fmt.Errorf("invoice %s: %w", a.InvoiceID, billing.ErrNotFound)
		}
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// ListForInvoice returns an invoice's activities, newest first.
func (s *ActivityStore) ListForInvoice(ctx context.Context, invoiceID string) ([]billing.Activity, error) {
	rows, err := s.db.QueriesFor(ctx).ListActivitiesForInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return convertActivities(rows), nil
}

// ListByKind returns the activities of every invoice of a kind, newest first.
func (s *ActivityStore) ListByKind(ctx context.Context, kind billing.Kind) ([]billing.Activity, error) {
	rows, err := s.db.QueriesFor(ctx).ListActivitiesByKind(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return convertActivities(rows), nil
}

func convertActivities(rows []db.Activity) []billing.Activity {
	out := make([]billing.Activity, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToActivity(row))
	}
	return out
}
