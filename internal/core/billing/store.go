package billing

import (
	"context"
	"time"
)

// InvoiceQuery narrows an invoice listing.
type InvoiceQuery struct {
	Kind Kind
	// IDs restricts the listing to the given identifiers when non-empty.
	IDs []string
}

// InvoiceStore persists invoices and claims.
type InvoiceStore interface {
	List(ctx context.Context, q InvoiceQuery) ([]Invoice, error)
	Get(ctx context.Context, id string) (Invoice, error)
	Upsert(ctx context.Context, inv Invoice) error
	UpdateStatus(ctx context.Context, inv Invoice) error
	Delete(ctx context.Context, id string) error
}

// ActivityStore persists the activity log.
type ActivityStore interface {
	Append(ctx context.Context, a Activity) error
	ListForInvoice(ctx context.Context, invoiceID string) ([]Activity, error)
	ListByKind(ctx context.Context, kind Kind) ([]Activity, error)
}

// RuleStore persists per-invoice sequence rules.
type RuleStore interface {
	// Get returns ErrNotFound when the invoice has no rule.
	Get(ctx context.Context, invoiceID string) (SequenceRule, error)
	Save(ctx context.Context, r SequenceRule) error
}

// PaymentStore persists payments.
type PaymentStore interface {
	Create(ctx context.Context, p Payment) error
	ListForInvoice(ctx context.Context, invoiceID string) ([]Payment, error)
}

// ScheduledSend is one planned follow-up delivery.
type ScheduledSend struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoice_id"`
	Channel   Channel   `json:"channel"`
	Message   string    `json:"message"`
	SendAt    time.Time `json:"send_at"`
	Attempt   int       `json:"attempt"`
}

// ScheduleStore persists planned follow-up sends.
type ScheduleStore interface {
	// Replace drops the pending sends of the invoice and stores sends.
	Replace(ctx context.Context, invoiceID string, sends []ScheduledSend) error
	ListForInvoice(ctx context.Context, invoiceID string) ([]ScheduledSend, error)
}
