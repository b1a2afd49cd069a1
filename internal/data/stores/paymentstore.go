package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/data/db"
)

// PaymentStore implements billing.PaymentStore using SQLite.
type PaymentStore struct {
	db  *db.DB
	now func() time.Time
}

var _ billing.PaymentStore = (*PaymentStore)(nil)

// NewPaymentStore creates a new SQLite-backed payment store.
func NewPaymentStore(db *db.DB) *PaymentStore {
	return &PaymentStore{db: db, now: time.Now}
}

// Create records a payment.
func (s *PaymentStore) Create(ctx context.Context, p billing.Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	err := s.db.QueriesFor(ctx).InsertPayment(ctx, db.Payment{
		ID:         p.ID,
		InvoiceID:  p.InvoiceID,
		AmountPaid: p.AmountPaid.StringFixed(2),
		Method:     p.Method,
		PaidOn:     toUnix(p.PaidOn),
		Receipt:    p.Receipt,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt.UnixNano(),
	})
	if err != nil {
		if IsForeignKeyError(err) {
			return fmt.Errorf("invoice %s: %w", p.InvoiceID, billing.ErrNotFound)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// ListForInvoice returns an invoice's payments in payment date order.
func (s *PaymentStore) ListForInvoice(ctx context.Context, invoiceID string) ([]billing.Payment, error) {
	rows, err := s.db.QueriesFor(ctx).ListPaymentsForInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]billing.Payment, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.AmountPaid)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q for payment %s: %w", row.AmountPaid, row.ID, err)
		}
		out = append(out, billing.Payment{
			ID:         row.ID,
			InvoiceID:  row.InvoiceID,
			AmountPaid: amount,
			Method:     row.Method,
			PaidOn:     fromUnix(row.PaidOn),
			Receipt:    row.Receipt,
			Notes:      row.Notes,
			CreatedAt:  fromUnix(row.CreatedAt),
		})
	}
	return out, nil
}
