package invoices

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/tui/components/form"
)

// Form variable names.
const (
	varChannel   = "channel"
	varSendIn    = "send_in"
	varRepeat    = "repeat"
	varMessage   = "message"
	varCallNotes = "call_notes"
	varOutcome   = "outcome"

	varInitialDelay   = "initial_delay"
	varRepeatInterval = "repeat_interval"
	varMaxAttempts    = "max_attempts"
	varSkipWeekends   = "skip_weekends"

	varPaidOn  = "paid_on"
	varMethod  = "method"
	varAmount  = "amount"
	varReceipt = "receipt"
	varNotes   = "notes"

	varTo         = "to"
	varSubject    = "subject"
	varBody       = "body"
	varAttachment = "attachment"
)

var outcomeLabels = []struct {
	label   string
	outcome billing.CallOutcome
}{
	{"No call made", billing.OutcomeNone},
	{"No answer", billing.OutcomeFailed},
	{"Spoke with patient", billing.OutcomeSuccess},
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func dialogTitle(d Dialog, inv billing.Invoice) string {
	return fmt.Sprintf("%s · %s %s", d, inv.ID, inv.Patient)
}

func channelTitles() []string {
	out := make([]string, len(billing.Channels))
	for i, c := range billing.Channels {
		out[i] = c.Title()
	}
	return out
}

func channelFromTitle(title string) billing.Channel {
	for _, c := range billing.Channels {
		if c.Title() == title {
			return c
		}
	}
	return billing.ChannelSMS
}

func sendLabels() []string {
	out := make([]string, len(billing.SendOptions))
	for i, o := range billing.SendOptions {
		out[i] = o.Label
	}
	return out
}

// newFollowUpForm builds the follow-up dialog prefilled with defaults.
func newFollowUpForm(inv billing.Invoice, f billing.FollowUp, repeats []string) *form.Dialog {
	outcomes := make([]string, len(outcomeLabels))
	for i, o := range outcomeLabels {
		outcomes[i] = o.label
	}

	return form.NewDialog(
		dialogTitle(DialogFollowUp, inv),
		[]form.Field{
			form.NewSelectField("Channel", channelTitles(), f.Channel.Title()),
			form.NewSelectField("Send time", sendLabels(), f.SendIn),
			form.NewSelectField("Repeat", repeats, f.Repeat),
			form.NewTextAreaField("Message", "Reminder text, supports {{ .PatientName }} {{ .Amount }} {{ .Date }}", f.Message, 4),
			form.NewTextAreaField("Call notes", "Phone follow-ups only", f.CallNotes, 2),
			form.NewSelectField("Call outcome", outcomes, outcomes[0]),
		},
		[]string{varChannel, varSendIn, varRepeat, varMessage, varCallNotes, varOutcome},
	).WithValidation(varMessage, form.FieldValidation{MaxLength: 1600})
}

// followUpFromForm reads a submitted follow-up dialog.
func followUpFromForm(invoiceID string, d *form.Dialog) billing.FollowUp {
	f := billing.FollowUp{
		InvoiceID: invoiceID,
		Channel:   channelFromTitle(d.String(varChannel)),
		SendIn:    d.String(varSendIn),
		Repeat:    d.String(varRepeat),
		Message:   strings.TrimSpace(d.String(varMessage)),
		CallNotes: strings.TrimSpace(d.String(varCallNotes)),
	}
	if f.Channel == billing.ChannelPhone {
		for _, o := range outcomeLabels {
			if o.label == d.String(varOutcome) {
				f.CallOutcome = o.outcome
			}
		}
	}
	return f
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func optionLabels(values []int, unit string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = plural(v, unit)
	}
	return out
}

// leadingInt parses the count at the start of an option label.
func leadingInt(label string) int {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(fields[0])
	return n
}

// newRulesForm builds the sequence rules dialog for rule.
func newRulesForm(inv billing.Invoice, rule billing.SequenceRule) *form.Dialog {
	return form.NewDialog(
		dialogTitle(DialogSetSequence, inv),
		[]form.Field{
			form.NewSelectField("First reminder after", optionLabels(billing.InitialDelayOptions, "day"), plural(rule.InitialDelayDays, "day")),
			form.NewSelectField("Then every", optionLabels(billing.RepeatIntervalOptions, "day"), plural(rule.RepeatIntervalDays, "day")),
			form.NewSelectField("Up to", optionLabels(billing.MaxAttemptOptions, "attempt"), plural(rule.MaxAttempts, "attempt")),
			form.NewToggleField("Weekends", "Move reminders landing on a weekend to Monday", rule.SkipWeekends),
		},
		[]string{varInitialDelay, varRepeatInterval, varMaxAttempts, varSkipWeekends},
	)
}

// rulesFromForm reads a submitted rules dialog.
func rulesFromForm(invoiceID string, d *form.Dialog) billing.SequenceRule {
	return billing.SequenceRule{
		InvoiceID:          invoiceID,
		InitialDelayDays:   leadingInt(d.String(varInitialDelay)),
		RepeatIntervalDays: leadingInt(d.String(varRepeatInterval)),
		MaxAttempts:        leadingInt(d.String(varMaxAttempts)),
		SkipWeekends:       d.Bool(varSkipWeekends),
	}
}

func checkPaymentDate(s string) error {
	_, err := billing.ParsePaymentDate(s)
	if err != nil {
		return errors.New("use MM/DD/YYYY")
	}
	return nil
}

func checkAmount(s string) error {
	amount, err := billing.ParseMoney(s)
	if err != nil {
		return errors.New("not an amount")
	}
	if !amount.IsPositive() {
		return errors.New("must be greater than zero")
	}
	return nil
}

// newMarkPaidForm builds the payment dialog, defaulting to the full
// amount paid today.
func newMarkPaidForm(inv billing.Invoice, today time.Time) *form.Dialog {
	return form.NewDialog(
		dialogTitle(DialogMarkPaid, inv),
		[]form.Field{
			form.NewTextField("Payment date", billing.PaymentDateLayout, today.Format(billing.PaymentDateLayout)),
			form.NewSelectField("Method", billing.PaymentMethods, billing.PaymentMethods[0]),
			form.NewTextField("Amount", "0.00", inv.Amount.StringFixed(2)),
			form.NewTextField("Receipt", "receipt file name", "").WithCharLimit(255),
			form.NewTextAreaField("Notes", "Optional", "", 2),
		},
		[]string{varPaidOn, varMethod, varAmount, varReceipt, varNotes},
	).
		WithValidation(varPaidOn, form.FieldValidation{Required: true, Check: checkPaymentDate}).
		WithValidation(varAmount, form.FieldValidation{Required: true, Check: checkAmount}).
		WithValidation(varNotes, form.FieldValidation{MaxLength: 2000})
}

// paymentFromForm reads a submitted payment dialog.
func paymentFromForm(invoiceID string, d *form.Dialog) (billing.Payment, error) {
	paidOn, err := billing.ParsePaymentDate(strings.TrimSpace(d.String(varPaidOn)))
	if err != nil {
		return billing.Payment{}, err
	}
	amount, err := billing.ParseMoney(d.String(varAmount))
	if err != nil {
		return billing.Payment{}, err
	}
	return billing.Payment{
		InvoiceID:  invoiceID,
		AmountPaid: amount,
		Method:     d.String(varMethod),
		PaidOn:     paidOn,
		Receipt:    strings.TrimSpace(d.String(varReceipt)),
		Notes:      strings.TrimSpace(d.String(varNotes)),
	}, nil
}

// newEmailForm builds the case manager email dialog from a draft.
func newEmailForm(inv billing.Invoice, draft billing.EmailDraft) *form.Dialog {
	return form.NewDialog(
		dialogTitle(DialogActionEmail, inv),
		[]form.Field{
			form.NewTextField("To", "case manager address", draft.To),
			form.NewTextField("Subject", "", draft.Subject),
			form.NewTextAreaField("Body", "", draft.Body, 6),
			form.NewTextField("Attachment", "statement PDF", draft.Attachment),
		},
		[]string{varTo, varSubject, varBody, varAttachment},
	).
		WithValidation(varTo, form.FieldValidation{Required: true, Pattern: emailPattern, Hint: "not an email address"}).
		WithValidation(varSubject, form.FieldValidation{Required: true, MaxLength: 200}).
		WithValidation(varBody, form.FieldValidation{Required: true})
}

// draftFromForm reads a submitted email dialog.
func draftFromForm(d *form.Dialog) billing.EmailDraft {
	return billing.EmailDraft{
		To:         strings.TrimSpace(d.String(varTo)),
		Subject:    strings.TrimSpace(d.String(varSubject)),
		Body:       d.String(varBody),
		Attachment: strings.TrimSpace(d.String(varAttachment)),
	}
}
