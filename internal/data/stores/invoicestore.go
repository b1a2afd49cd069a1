package stores

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/data/db"
)

// InvoiceStore implements billing.InvoiceStore using SQLite.
type InvoiceStore struct {
	db  *db.DB
	now func() time.Time
}

var _ billing.InvoiceStore = (*InvoiceStore)(nil)

// NewInvoiceStore creates a new SQLite-backed invoice store.
func NewInvoiceStore(db *db.DB) *InvoiceStore {
	return &InvoiceStore{db: db, now: time.Now}
}

// List returns the invoices of one kind ordered by due date. When q.IDs
// is set only those invoices are returned.
func (s *InvoiceStore) List(ctx context.Context, q billing.InvoiceQuery) ([]billing.Invoice, error) {
	rows, err := s.db.QueriesFor(ctx).ListInvoicesByKind(ctx, string(q.Kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]billing.Invoice, 0, len(rows))
	for _, row := range rows {
		if len(q.IDs) > 0 && !slices.Contains(q.IDs, row.ID) {
			continue
		}
		inv, err := rowToInvoice(row)
		if err != nil {
			return nil, fmt.Errorf("failed to convert invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	return invoices, nil
}

// Get returns an invoice by ID. Returns billing.ErrNotFound if not found.
func (s *InvoiceStore) Get(ctx context.Context, id string) (billing.Invoice, error) {
	row, err := s.db.QueriesFor(ctx).GetInvoice(ctx, id)
	if IsNotFoundError(err) {
		return billing.Invoice{}, fmt.Errorf("invoice %s: %w", id, billing.ErrNotFound)
	}
	if err != nil {
		return billing.Invoice{}, fmt.Errorf("failed to get invoice: %w", err)
	}

	return rowToInvoice(row)
}

// Upsert creates or replaces an invoice.
func (s *InvoiceStore) Upsert(ctx context.Context, inv billing.Invoice) error {
	if inv.ID == "" {
		return fmt.Errorf("invoice id is required")
	}
	if inv.Amount.IsNegative() {
		return fmt.Errorf("invoice %s: amount cannot be negative", inv.ID)
	}

	if err := s.db.QueriesFor(ctx).UpsertInvoice(ctx, invoiceToRow(inv, s.now())); err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

// UpdateStatus writes the status fields of inv. Returns billing.ErrNotFound
// if the invoice does not exist.
func (s *InvoiceStore) UpdateStatus(ctx context.Context, inv billing.Invoice) error {
	n, err := s.db.QueriesFor(ctx).UpdateInvoiceStatus(ctx, db.UpdateInvoiceStatusParams{
		ID:                  inv.ID,
		Status:              inv.Status,
		StatusColor:         inv.StatusColor,
		Overdue:             inv.Overdue,
		OverdueDays:         int64(inv.OverdueDays),
		DueNote:             inv.DueNote,
		CommunicationStatus: inv.CommunicationStatus,
		PaymentStatus:       inv.PaymentStatus,
		UpdatedAt:           s.now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("invoice %s: %w", inv.ID, billing.ErrNotFound)
	}
	return nil
}

// Delete removes an invoice and its history.
func (s *InvoiceStore) Delete(ctx context.Context, id string) error {
	n, err := s.db.QueriesFor(ctx).DeleteInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("invoice %s: %w", id, billing.ErrNotFound)
	}
	return nil
}
