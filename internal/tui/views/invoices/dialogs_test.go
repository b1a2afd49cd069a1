package invoices

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/tui/components/form"
	"github.com/colonyops/remit/pkg/tuitest"
)

func press(d *form.Dialog, msgs ...tea.Msg) {
	for _, msg := range msgs {
		d.Update(msg)
	}
}

func down() tea.Msg { return tea.KeyPressMsg{Code: tea.KeyDown} }

var testInvoice = billing.Invoice{
	ID:      "INV-001",
	Kind:    billing.KindPatient,
	Patient: "Sarah Johnson",
	Amount:  decimal.RequireFromString("150"),
	Status:  billing.StatusTextTwice,
}

func TestFollowUpForm(t *testing.T) {
	repeats := []string{billing.RepeatNever, billing.DefaultRepeat}

	t.Run("defaults round trip", func(t *testing.T) {
		d := newFollowUpForm(testInvoice, billing.NewFollowUp("INV-001", "Hi Sarah"), repeats)
		assert.Equal(t, "Follow up · INV-001 Sarah Johnson", d.Title)

		press(d, tuitest.KeyCtrl('s'))
		require.True(t, d.Submitted())

		got := followUpFromForm("INV-001", d)
		assert.Equal(t, billing.NewFollowUp("INV-001", "Hi Sarah"), got)
	})

	t.Run("outcome only kept for phone", func(t *testing.T) {
		d := newFollowUpForm(testInvoice, billing.NewFollowUp("INV-001", "Hi"), repeats)
		press(d, down(), down())
		press(d, tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab())
		press(d, down(), down())

		got := followUpFromForm("INV-001", d)
		assert.Equal(t, billing.ChannelPhone, got.Channel)
		assert.Equal(t, billing.OutcomeSuccess, got.CallOutcome)

		d = newFollowUpForm(testInvoice, billing.NewFollowUp("INV-001", "Hi"), repeats)
		press(d, tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab(), tuitest.KeyTab())
		press(d, down())
		got = followUpFromForm("INV-001", d)
		assert.Equal(t, billing.ChannelSMS, got.Channel)
		assert.Equal(t, billing.OutcomeNone, got.CallOutcome)
	})
}

func TestRulesForm(t *testing.T) {
	rule := billing.DefaultSequenceRule("INV-001")

	d := newRulesForm(testInvoice, rule)
	assert.Equal(t, "9 days", d.String(varInitialDelay))
	assert.Equal(t, "14 days", d.String(varRepeatInterval))
	assert.Equal(t, "3 attempts", d.String(varMaxAttempts))
	assert.Equal(t, rule, rulesFromForm("INV-001", d))

	press(d, down(), tuitest.KeyTab(), tuitest.KeyTab(), down(), down(), tuitest.KeyTab(), tuitest.KeyPress(' '))
	got := rulesFromForm("INV-001", d)
	assert.Equal(t, 14, got.InitialDelayDays)
	assert.Equal(t, 5, got.MaxAttempts)
	assert.False(t, got.SkipWeekends)
	assert.NoError(t, got.Validate())
}

func TestMarkPaidForm(t *testing.T) {
	today := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.Local)

	d := newMarkPaidForm(testInvoice, today)
	assert.Equal(t, "03/14/2026", d.String(varPaidOn))
	assert.Equal(t, "150.00", d.String(varAmount))
	assert.Equal(t, billing.PaymentMethods[0], d.String(varMethod))

	p, err := paymentFromForm("INV-001", d)
	require.NoError(t, err)
	assert.True(t, p.AmountPaid.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 14, p.PaidOn.Day())
	assert.Equal(t, time.March, p.PaidOn.Month())
	assert.Empty(t, p.Receipt)
}

func TestFormChecks(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) error
		in    string
		want  string
	}{
		{"valid date", checkPaymentDate, "12/31/2025", ""},
		{"iso date", checkPaymentDate, "2025-12-31", "use MM/DD/YYYY"},
		{"valid amount", checkAmount, "$1,250.50", ""},
		{"zero amount", checkAmount, "0", "must be greater than zero"},
		{"negative amount", checkAmount, "-5", "must be greater than zero"},
		{"garbage amount", checkAmount, "abc", "not an amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.in)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestEmailForm(t *testing.T) {
	claim := billing.Invoice{ID: "WC-1001", Kind: billing.KindWorkcover, Patient: "Tom Baker"}

	t.Run("rejects a bad address", func(t *testing.T) {
		d := newEmailForm(claim, billing.EmailDraft{To: "nope", Subject: "Claim WC-1001", Body: "Hello"})
		press(d, tuitest.KeyCtrl('s'))
		assert.False(t, d.Submitted())
		assert.Contains(t, tuitest.StripANSI(d.View()), "not an email address")
	})

	t.Run("round trips a valid draft", func(t *testing.T) {
		draft := billing.EmailDraft{
			To:         "cm@insurer.example",
			Subject:    "Claim WC-1001",
			Body:       "Please see the attached statement.",
			Attachment: "WC-1001.pdf",
		}
		d := newEmailForm(claim, draft)
		press(d, tuitest.KeyCtrl('s'))
		require.True(t, d.Submitted())
		assert.Equal(t, draft, draftFromForm(d))
	})
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 21, leadingInt("21 days"))
	assert.Equal(t, 1, leadingInt("1 attempt"))
	assert.Equal(t, 0, leadingInt(""))
	assert.Equal(t, 0, leadingInt("days"))
}
