package eventbus

import (
	"fmt"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/notify"
)

// NotificationRouter maps billing events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeFollowUpScheduled(func(p FollowUpScheduledPayload) {
		if len(p.Sends) == 0 {
			r.notifyf(notify.LevelInfo, "%s follow-up recorded for %s", p.Channel.Title(), p.Invoice.Patient)
			return
		}
		r.notifyf(notify.LevelInfo, "%s to %s scheduled (%d sends)", p.Channel.Title(), p.Invoice.Patient, len(p.Sends))
	})

	r.bus.SubscribeInvoicePaid(func(p InvoicePaidPayload) {
		r.notifyf(notify.LevelInfo, "%s marked paid (%s)", p.Invoice.ID, billing.FormatMoney(p.Payment.AmountPaid))
	})

	r.bus.SubscribeEmailDrafted(func(p EmailDraftedPayload) {
		r.notifyf(notify.LevelInfo, "email to %s recorded", p.Draft.To)
	})

	r.bus.SubscribeRulesSaved(func(p RulesSavedPayload) {
		r.notifyf(notify.LevelInfo, "sequence rules saved for %s", p.Rule.InvoiceID)
	})

	r.bus.SubscribeFixturesImported(func(p FixturesImportedPayload) {
		if p.Invoices == 0 {
			r.notifyf(notify.LevelWarning, "fixture import wrote no invoices")
			return
		}
		r.notifyf(notify.LevelInfo, "imported %d invoices and %d activities", p.Invoices, p.Activities)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
