// Package eventbus provides a typed publish/subscribe event bus that
// carries billing actions from the services to the TUI and the log.
package eventbus

import (
	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/notify"
)

// Event names a kind of event on the bus.
type Event string

// Keep list sorted A-Z.
const (
	EventEmailDrafted          Event = "email.drafted"
	EventFixturesImported      Event = "fixtures.imported"
	EventFollowUpScheduled     Event = "followup.scheduled"
	EventInvoicePaid           Event = "invoice.paid"
	EventNotificationPublished Event = "notification.published"
	EventRulesSaved            Event = "rules.saved"
	EventTuiStarted            Event = "tui.started"
	EventTuiStopped            Event = "tui.stopped"
)

// FollowUpScheduledPayload is emitted when a follow-up plan is stored.
type FollowUpScheduledPayload struct {
	Invoice billing.Invoice
	Channel billing.Channel
	Sends   []billing.ScheduledSend
}

// InvoicePaidPayload is emitted when a payment settles an invoice.
type InvoicePaidPayload struct {
	Invoice billing.Invoice
	Payment billing.Payment
}

// EmailDraftedPayload is emitted when a case manager email is recorded.
type EmailDraftedPayload struct {
	Invoice billing.Invoice
	Draft   billing.EmailDraft
}

// RulesSavedPayload is emitted when an invoice's sequence rule changes.
type RulesSavedPayload struct {
	Rule billing.SequenceRule
}

// FixturesImportedPayload is emitted after a fixture import.
type FixturesImportedPayload struct {
	Invoices   int
	Activities int
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// TUIStartedPayload is emitted when the TUI starts.
type TUIStartedPayload struct{}

// TUIStoppedPayload is emitted when the TUI stops.
type TUIStoppedPayload struct{}
