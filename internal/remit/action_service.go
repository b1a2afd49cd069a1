package remit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/config"
	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/core/logging"
)

// Communication statuses set on claims by actions.
const (
	CommFollowUp      = "Follow up in Progress"
	CommAICall        = "AI Call Scheduled"
	CommAwaiting      = "Waiting for response"
	CommRemittanceMsg = "Paid Remittance Received"
)

// ActionService performs the per-row actions: follow-ups, sequence rules,
// payments and case manager emails. No message leaves the machine; every
// action is logged and recorded in the invoice's activity history.
type ActionService struct {
	st     Stores
	config *config.Config
	bus    *eventbus.EventBus
	log    zerolog.Logger
	now    func() time.Time
}

// NewActionService creates a new ActionService.
func NewActionService(st Stores, cfg *config.Config, bus *eventbus.EventBus, log zerolog.Logger) *ActionService {
	return &ActionService{
		st:     st,
		config: cfg,
		bus:    bus,
		log:    log.With().Str("cmp", "actions").Logger().Hook(logging.ContextHook{}),
		now:    time.Now,
	}
}

// author is the name recorded on activities: the operator on the context,
// falling back to the configured desk operator.
func (s *ActionService) author(ctx context.Context) string {
	if op := logging.GetOperator(ctx); op != "" {
		return op
	}
	return s.config.Clinic.Operator
}

// MessageData returns the template data used for an invoice's reminders.
func (s *ActionService) MessageData(inv billing.Invoice) billing.MessageData {
	data := billing.NewMessageData(inv, s.config.FollowUp.PaymentLink, s.config.Clinic.Name)
	data.Vars = s.config.Vars
	return data
}

// DefaultFollowUp returns the follow-up dialog defaults for an invoice,
// with the configured message template.
func (s *ActionService) DefaultFollowUp(inv billing.Invoice) billing.FollowUp {
	return billing.NewFollowUp(inv.ID, s.config.FollowUp.DefaultMessage)
}

// Preview renders a message template for an invoice.
func (s *ActionService) Preview(inv billing.Invoice, tmpl string) (string, error) {
	return billing.RenderMessage(tmpl, s.MessageData(inv))
}

// Rule returns the invoice's saved sequence rule, or the configured
// default when none has been saved.
func (s *ActionService) Rule(ctx context.Context, invoiceID string) (billing.SequenceRule, error) {
	rule, err := s.st.Rules.Get(ctx, invoiceID)
	if errors.Is(err, billing.ErrNotFound) {
		return s.config.Sequence.Rule(invoiceID), nil
	}
	return rule, err
}

// FollowUpResult describes a recorded follow-up.
type FollowUpResult struct {
	Invoice billing.Invoice
	Message string
	Sends   []billing.ScheduledSend
}

// FollowUp records a follow-up. Message channels render the template and
// plan their sends from the send time, the repeat frequency and the
// invoice's sequence rule; the plan replaces any previous one. Phone
// follow-ups record the call outcome instead.
func (s *ActionService) FollowUp(ctx context.Context, f billing.FollowUp) (FollowUpResult, error) {
	ctx = logging.WithInvoiceID(ctx, f.InvoiceID)

	if err := f.Validate(); err != nil {
		return FollowUpResult{}, fmt.Errorf("invalid follow-up: %w", err)
	}

	var res FollowUpResult
	err := s.st.inTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.recordFollowUp(ctx, f)
		return err
	})
	if err != nil {
		return FollowUpResult{}, err
	}

	s.log.Info().Ctx(ctx).
		Str("channel", string(f.Channel)).
		Int("sends", len(res.Sends)).
		Msg("follow-up recorded")

	s.bus.PublishFollowUpScheduled(eventbus.FollowUpScheduledPayload{
		Invoice: res.Invoice,
		Channel: f.Channel,
		Sends:   res.Sends,
	})
	return res, nil
}

// recordFollowUp writes the plan, the status and the activity of a
// follow-up. It runs inside the caller's transaction.
func (s *ActionService) recordFollowUp(ctx context.Context, f billing.FollowUp) (FollowUpResult, error) {
	inv, err := s.st.Invoices.Get(ctx, f.InvoiceID)
	if err != nil {
		return FollowUpResult{}, err
	}
	if inv.IsPaid() {
		return FollowUpResult{}, billing.ErrAlreadyPaid
	}

	res := FollowUpResult{Invoice: inv}
	now := s.now()

	var description string
	if f.Channel == billing.ChannelPhone {
		description = callDescription(f)
		if f.CallOutcome == billing.OutcomeFailed {
			setFollowUpStatus(&res.Invoice, billing.StatusCallFailed, CommAwaiting)
		} else {
			setFollowUpStatus(&res.Invoice, billing.StatusPromptSent, CommFollowUp)
		}
	} else {
		res.Message, err = s.Preview(inv, f.Message)
		if err != nil {
			return FollowUpResult{}, err
		}

		rule, err := s.Rule(ctx, inv.ID)
		if err != nil {
			return FollowUpResult{}, err
		}
		times, err := f.Plan(now, rule, s.config.FollowUp.CustomRepeats)
		if err != nil {
			return FollowUpResult{}, err
		}

		res.Sends = make([]billing.ScheduledSend, 0, len(times))
		for i, at := range times {
			res.Sends = append(res.Sends, billing.ScheduledSend{
				ID:        uuid.NewString(),
				InvoiceID: inv.ID,
				Channel:   f.Channel,
				Message:   res.Message,
				SendAt:    at,
				Attempt:   i + 1,
			})
		}
		if err := s.st.Schedule.Replace(ctx, inv.ID, res.Sends); err != nil {
			return FollowUpResult{}, err
		}

		description = fmt.Sprintf("%s reminder scheduled (%s, %s): %s", f.Channel.Title(), f.SendIn, f.Repeat, res.Message)
		if f.Channel == billing.ChannelAICall {
			setFollowUpStatus(&res.Invoice, billing.StatusAIScheduled, CommAICall)
		} else {
			setFollowUpStatus(&res.Invoice, billing.StatusPromptSent, CommFollowUp)
		}
	}

	if err := s.st.Invoices.UpdateStatus(ctx, res.Invoice); err != nil {
		return FollowUpResult{}, err
	}

	activity := billing.NewActivity(inv.ID, f.Channel.ActivityType(), s.author(ctx), description, now)
	if err := s.st.Activities.Append(ctx, activity); err != nil {
		return FollowUpResult{}, err
	}

	return res, nil
}

func callDescription(f billing.FollowUp) string {
	var d string
	switch f.CallOutcome {
	case billing.OutcomeFailed:
		d = "Call attempted, no answer"
	case billing.OutcomeSuccess:
		d = "Call completed"
	default:
		d = "Call logged"
	}
	if f.CallNotes != "" {
		d += ": " + f.CallNotes
	}
	return d
}

func setFollowUpStatus(inv *billing.Invoice, patientStatus, commStatus string) {
	if inv.Kind == billing.KindWorkcover {
		inv.CommunicationStatus = commStatus
		return
	}
	inv.Status = patientStatus
	inv.StatusColor = billing.StatusColor(patientStatus)
}

// SaveRules stores an invoice's sequence rule.
func (s *ActionService) SaveRules(ctx context.Context, rule billing.SequenceRule) error {
	ctx = logging.WithInvoiceID(ctx, rule.InvoiceID)

	desc := fmt.Sprintf("First reminder after %d days, then every %d days, up to %d attempts",
		rule.InitialDelayDays, rule.RepeatIntervalDays, rule.MaxAttempts)
	if rule.SkipWeekends {
		desc += ", skipping weekends"
	}

	err := s.st.inTx(ctx, func(ctx context.Context) error {
		if _, err := s.st.Invoices.Get(ctx, rule.InvoiceID); err != nil {
			return err
		}
		if err := s.st.Rules.Save(ctx, rule); err != nil {
			return err
		}
		return s.st.Activities.Append(ctx, billing.NewActivity(rule.InvoiceID, billing.ActivityRules, s.author(ctx), desc, s.now()))
	})
	if err != nil {
		return err
	}

	s.log.Info().Ctx(ctx).
		Int("initial_delay", rule.InitialDelayDays).
		Int("repeat_interval", rule.RepeatIntervalDays).
		Int("max_attempts", rule.MaxAttempts).
		Msg("sequence rules saved")

	s.bus.PublishRulesSaved(eventbus.RulesSavedPayload{Rule: rule})
	return nil
}

// MarkPaid records a payment and moves the invoice into its paid state.
// A zero amount defaults to the invoice amount and a zero date to today.
func (s *ActionService) MarkPaid(ctx context.Context, p billing.Payment) (billing.Invoice, error) {
	ctx = logging.WithInvoiceID(ctx, p.InvoiceID)

	var inv billing.Invoice
	err := s.st.inTx(ctx, func(ctx context.Context) error {
		var err error
		inv, p, err = s.recordPayment(ctx, p)
		return err
	})
	if err != nil {
		return billing.Invoice{}, err
	}

	s.log.Info().Ctx(ctx).
		Str("amount", p.AmountPaid.StringFixed(2)).
		Str("method", p.Method).
		Msg("invoice marked paid")

	s.bus.PublishInvoicePaid(eventbus.InvoicePaidPayload{Invoice: inv, Payment: p})
	return inv, nil
}

// recordPayment stores p and settles its invoice. The paid check runs in
// the same transaction as the writes so a retry after a failure cannot
// record the payment twice.
func (s *ActionService) recordPayment(ctx context.Context, p billing.Payment) (billing.Invoice, billing.Payment, error) {
	inv, err := s.st.Invoices.Get(ctx, p.InvoiceID)
	if err != nil {
		return billing.Invoice{}, p, err
	}
	if inv.IsPaid() {
		return billing.Invoice{}, p, billing.ErrAlreadyPaid
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.AmountPaid.IsZero() {
		p.AmountPaid = inv.Amount
	}
	p.CreatedAt = s.now()
	if p.PaidOn.IsZero() {
		y, m, d := p.CreatedAt.Date()
		p.PaidOn = time.Date(y, m, d, 0, 0, 0, 0, p.CreatedAt.Location())
	}
	if err := p.Validate(); err != nil {
		return billing.Invoice{}, p, fmt.Errorf("invalid payment: %w", err)
	}

	if err := s.st.Payments.Create(ctx, p); err != nil {
		return billing.Invoice{}, p, err
	}

	inv.MarkPaid()
	if inv.Kind == billing.KindWorkcover {
		inv.CommunicationStatus = CommRemittanceMsg
	}
	if err := s.st.Invoices.UpdateStatus(ctx, inv); err != nil {
		return billing.Invoice{}, p, err
	}

	desc := fmt.Sprintf("Payment of %s received via %s", billing.FormatMoney(p.AmountPaid), p.Method)
	if p.Notes != "" {
		desc += ": " + p.Notes
	}
	if err := s.st.Activities.Append(ctx, billing.NewActivity(inv.ID, billing.ActivityPayment, s.author(ctx), desc, p.CreatedAt)); err != nil {
		return billing.Invoice{}, p, err
	}

	// Paid invoices get no further reminders.
	if err := s.st.Schedule.Replace(ctx, inv.ID, nil); err != nil {
		return billing.Invoice{}, p, err
	}
	return inv, p, nil
}

// EmailDraft returns the prefilled case manager email for a claim.
func (s *ActionService) EmailDraft(ctx context.Context, invoiceID string) (billing.EmailDraft, error) {
	inv, err := s.st.Invoices.Get(ctx, invoiceID)
	if err != nil {
		return billing.EmailDraft{}, err
	}
	if inv.CaseManager == "" {
		return billing.EmailDraft{}, fmt.Errorf("invoice %s has no case manager", invoiceID)
	}
	return billing.NewEmailDraft(inv, s.config.Email.Domain), nil
}

// SendEmail records an email to the claim's case manager.
func (s *ActionService) SendEmail(ctx context.Context, invoiceID string, draft billing.EmailDraft) error {
	ctx = logging.WithInvoiceID(ctx, invoiceID)

	if err := draft.Validate(); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	desc := fmt.Sprintf("Email to %s: %s", draft.To, draft.Subject)
	if draft.Attachment != "" {
		desc += " (attached " + draft.Attachment + ")"
	}

	var inv billing.Invoice
	err := s.st.inTx(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = s.st.Invoices.Get(ctx, invoiceID); err != nil {
			return err
		}
		if !inv.IsPaid() && inv.Kind == billing.KindWorkcover {
			inv.CommunicationStatus = CommAwaiting
			if err := s.st.Invoices.UpdateStatus(ctx, inv); err != nil {
				return err
			}
		}
		return s.st.Activities.Append(ctx, billing.NewActivity(invoiceID, billing.ActivityEmail, s.author(ctx), desc, s.now()))
	})
	if err != nil {
		return err
	}

	s.log.Info().Ctx(ctx).Str("to", draft.To).Msg("case manager email recorded")
	s.bus.PublishEmailDrafted(eventbus.EmailDraftedPayload{Invoice: inv, Draft: draft})
	return nil
}

// AddNote appends a free-form note to an invoice's history.
func (s *ActionService) AddNote(ctx context.Context, invoiceID, note string) error {
	if note == "" {
		return errors.New("note is required")
	}
	return s.st.Activities.Append(ctx, billing.NewActivity(invoiceID, billing.ActivityNote, s.author(ctx), note, s.now()))
}
