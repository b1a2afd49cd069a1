package invoices

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/core/eventbus/testbus"
	"github.com/colonyops/remit/internal/remit/remittest"
	"github.com/colonyops/remit/pkg/tuitest"
)

func newTestView(t *testing.T, kind billing.Kind) (View, *testbus.Bus) {
	t.Helper()
	app, tb := remittest.New(t)
	v := New(app, kind)
	v.SetSize(160, 40)
	return settle(t, v, v.Init()), tb
}

// send delivers msgs in order and returns the command of the last one.
func send(v View, msgs ...tea.Msg) (View, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		v, cmd = v.Update(msg)
	}
	return v, cmd
}

// settle runs cmd and feeds back its result until the chain of store
// commands ends. Other commands, such as cursor blinks, are not run.
func settle(t *testing.T, v View, cmd tea.Cmd) View {
	t.Helper()
	for range 10 {
		if cmd == nil {
			return v
		}
		msg := cmd()
		switch msg.(type) {
		case recordsLoadedMsg, ruleLoadedMsg, draftLoadedMsg, infoLoadedMsg, actionDoneMsg:
		default:
			return v
		}
		v, cmd = v.Update(msg)
	}
	t.Fatal("command chain did not settle")
	return v
}

func search(v View, query string) View {
	v, _ = send(v, tuitest.KeyText('/'))
	v, _ = send(v, tuitest.TypeText(query)...)
	v, _ = send(v, tuitest.KeyEnter())
	return v
}

func screen(v View) string {
	return tuitest.StripANSI(v.View())
}

func TestView_Load(t *testing.T) {
	v, _ := newTestView(t, billing.KindPatient)

	out := screen(v)
	assert.Contains(t, out, "Sarah Johnson")
	assert.Contains(t, out, "INV-005")
	assert.Contains(t, out, "Showing 1-5 of 5")
	assert.Contains(t, out, "Status: All")
	assert.NotContains(t, out, "Paid:", "paid toggle is for claims")

	assert.Equal(t, 5, v.Stats().Unpaid)
	assert.Contains(t, tuitest.StripANSI(v.StatsView()), "Unpaid invoices")
}

func TestView_SearchAndFilter(t *testing.T) {
	v, _ := newTestView(t, billing.KindPatient)

	v, _ = send(v, tuitest.KeyText('/'))
	assert.True(t, v.HasEditorFocus())
	v, _ = send(v, tuitest.TypeText("sarah")...)

	out := screen(v)
	assert.Contains(t, out, "Search: sarah")
	assert.Contains(t, out, "Showing 1-1 of 1")
	assert.NotContains(t, out, "Michael Smith")

	v, _ = send(v, tuitest.KeyEsc())
	assert.False(t, v.HasEditorFocus())
	assert.Contains(t, screen(v), "Showing 1-5 of 5")

	v = search(v, "nobody")
	assert.Contains(t, screen(v), "No invoices match your filters.")
	assert.False(t, v.HasEditorFocus(), "enter keeps the query and leaves search")

	v, _ = send(v, tuitest.KeyText('/'), tuitest.KeyEsc(), tuitest.KeyText('s'))
	out = screen(v)
	assert.Contains(t, out, "Status: Text x2")
	assert.Contains(t, out, "Showing 1-2 of 2")
	assert.Contains(t, out, "David Brown")
}

func TestView_SearchInput(t *testing.T) {
	v, _ := newTestView(t, billing.KindPatient)

	v, _ = send(v, tuitest.KeyText('/'), tea.PasteMsg{Content: "johnson"})
	out := screen(v)
	assert.Contains(t, out, "Search: johnson")
	assert.Contains(t, out, "Showing 1-1 of 1", "a paste filters like typing")

	v, _ = send(v, tuitest.KeyCtrl('w'))
	assert.Empty(t, v.Controller().State().Filter().Query, "ctrl+w deletes the word")
	assert.Contains(t, screen(v), "Showing 1-5 of 5")

	v, _ = send(v, tuitest.TypeText("sarah")...)
	v, _ = send(v, tuitest.KeyEnter())
	require.False(t, v.HasEditorFocus())

	v, _ = send(v, tuitest.KeyText('/'), tea.KeyPressMsg{Code: tea.KeyBackspace})
	assert.Equal(t, "sara", v.Controller().State().Filter().Query, "reopening edits the kept query")
	assert.Contains(t, screen(v), "Sarah Johnson")
}

func TestView_Selection(t *testing.T) {
	v, _ := newTestView(t, billing.KindPatient)

	v, _ = send(v, tuitest.KeyPress(' '), tuitest.KeyDown(), tuitest.KeyPress(' '))
	assert.Contains(t, screen(v), "2 selected")

	v, _ = send(v, tuitest.KeyText('a'))
	assert.Contains(t, screen(v), "5 selected")

	v, _ = send(v, tuitest.KeyText('x'))
	assert.NotContains(t, screen(v), "selected")
}

func TestView_FollowUp(t *testing.T) {
	v, tb := newTestView(t, billing.KindPatient)
	v = search(v, "INV-005")

	v, _ = send(v, tuitest.KeyText('f'))
	require.True(t, v.HasEditorFocus())
	overlay := tuitest.StripANSI(v.Overlay(v.View(), 160, 40))
	assert.Contains(t, overlay, "Follow up · INV-005 Sarah Johnson")

	v, cmd := send(v, tuitest.KeyCtrl('s'))
	v = settle(t, v, cmd)

	tb.AssertPublished(t, eventbus.EventFollowUpScheduled)
	status, isErr := v.Status()
	assert.False(t, isErr)
	assert.Contains(t, status, "SMS to Sarah Johnson scheduled, first")
	assert.False(t, v.HasEditorFocus())
	inv, ok := v.Controller().Selected()
	require.True(t, ok)
	assert.Equal(t, billing.StatusPromptSent, inv.Status)
}

func TestView_FollowUpCancel(t *testing.T) {
	v, tb := newTestView(t, billing.KindPatient)

	v, _ = send(v, tuitest.KeyText('f'))
	require.True(t, v.HasEditorFocus())
	v, _ = send(v, tuitest.KeyEsc())

	assert.False(t, v.HasEditorFocus())
	assert.Equal(t, DialogClosed, v.Controller().Dialog())
	tb.AssertNotPublished(t, eventbus.EventFollowUpScheduled, 0)
}

func TestView_MarkPaid(t *testing.T) {
	t.Run("records the payment", func(t *testing.T) {
		v, tb := newTestView(t, billing.KindPatient)
		v = search(v, "INV-003")

		v, _ = send(v, tuitest.KeyText('p'))
		v, cmd := send(v, tuitest.KeyCtrl('s'))
		v = settle(t, v, cmd)

		tb.AssertPublished(t, eventbus.EventInvoicePaid)
		status, _ := v.Status()
		assert.Equal(t, "INV-003 marked paid ($315.00)", status)
		assert.Equal(t, 4, v.Stats().Unpaid)

		v, _ = send(v, tuitest.KeyText('p'))
		status, isErr := v.Status()
		assert.True(t, isErr)
		assert.Equal(t, "INV-003: invoice is already paid", status)
		assert.False(t, v.HasEditorFocus())
	})

	t.Run("keeps the dialog open on invalid input", func(t *testing.T) {
		v, tb := newTestView(t, billing.KindPatient)

		v, _ = send(v, tuitest.KeyText('p'))
		for range 10 {
			v, _ = send(v, tea.KeyPressMsg{Code: tea.KeyBackspace})
		}
		v, _ = send(v, tuitest.KeyCtrl('s'))

		assert.True(t, v.HasEditorFocus())
		assert.Contains(t, tuitest.StripANSI(v.Overlay(v.View(), 160, 40)), "Payment date: required")
		tb.AssertNotPublished(t, eventbus.EventInvoicePaid, 0)
	})
}

func TestView_Rules(t *testing.T) {
	v, tb := newTestView(t, billing.KindPatient)

	v, cmd := send(v, tuitest.KeyText('r'))
	v = settle(t, v, cmd)
	require.True(t, v.HasEditorFocus())
	assert.Equal(t, DialogSetSequence, v.Controller().Dialog())

	v, cmd = send(v, tuitest.KeyCtrl('s'))
	v = settle(t, v, cmd)

	tb.AssertPublished(t, eventbus.EventRulesSaved)
	status, _ := v.Status()
	assert.Contains(t, status, "sequence rules saved for")
}

func TestView_PendingDialog(t *testing.T) {
	t.Run("keys wait for the loading dialog", func(t *testing.T) {
		v, tb := newTestView(t, billing.KindPatient)

		v, cmd := send(v, tuitest.KeyText('r'))
		require.NotNil(t, cmd)
		assert.True(t, v.HasEditorFocus(), "a loading dialog holds focus")

		v, again := send(v, tuitest.KeyText('p'))
		assert.Nil(t, again)
		assert.Equal(t, DialogSetSequence, v.Controller().Dialog())
		assert.Contains(t, tuitest.StripANSI(v.Overlay(v.View(), 160, 40)), "loading...")

		v = settle(t, v, cmd)
		overlay := tuitest.StripANSI(v.Overlay(v.View(), 160, 40))
		assert.Contains(t, overlay, "Set sequence rules")
		assert.NotContains(t, overlay, "Mark as paid")

		v, cmd = send(v, tuitest.KeyCtrl('s'))
		settle(t, v, cmd)
		tb.AssertPublished(t, eventbus.EventRulesSaved)
		tb.AssertNotPublished(t, eventbus.EventInvoicePaid, 0)
	})

	t.Run("drops a load for an abandoned dialog", func(t *testing.T) {
		v, _ := newTestView(t, billing.KindPatient)

		v, cmd := send(v, tuitest.KeyText('r'))
		stale := cmd()
		v, _ = send(v, tuitest.KeyEsc())
		assert.False(t, v.HasEditorFocus())

		v, _ = send(v, tuitest.KeyText('p'))
		require.Equal(t, DialogMarkPaid, v.Controller().Dialog())

		v, _ = send(v, stale)
		assert.Equal(t, DialogMarkPaid, v.Controller().Dialog())
		overlay := tuitest.StripANSI(v.Overlay(v.View(), 160, 40))
		assert.Contains(t, overlay, "Mark as paid")
		assert.NotContains(t, overlay, "Set sequence rules")
	})

	t.Run("export result leaves a newer dialog open", func(t *testing.T) {
		v, _ := newTestView(t, billing.KindPatient)

		v, cmd := send(v, tuitest.KeyText('o'))
		v, _ = send(v, tuitest.KeyText('f'))
		require.Equal(t, DialogFollowUp, v.Controller().Dialog())

		v, _ = send(v, cmd())
		assert.Equal(t, DialogFollowUp, v.Controller().Dialog())
		status, isErr := v.Status()
		assert.False(t, isErr, status)
		assert.Contains(t, status, "statement written to")
	})
}

func TestView_Info(t *testing.T) {
	v, _ := newTestView(t, billing.KindPatient)
	v = search(v, "Sarah")

	v, cmd := send(v, tuitest.KeyEnter())
	v = settle(t, v, cmd)
	require.True(t, v.HasEditorFocus())

	overlay := tuitest.StripANSI(v.Overlay(v.View(), 160, 40))
	assert.Contains(t, overlay, "Patient info · INV-005 Sarah Johnson")
	assert.Contains(t, overlay, "enter/esc close")

	v, _ = send(v, tuitest.KeyEsc())
	assert.False(t, v.HasEditorFocus())
}

func TestView_EmailIsForClaims(t *testing.T) {
	v, tb := newTestView(t, billing.KindPatient)

	v, cmd := send(v, tuitest.KeyText('e'))
	assert.Nil(t, cmd)
	status, isErr := v.Status()
	assert.False(t, isErr)
	assert.Equal(t, "email is only available for workcover claims", status)
	assert.False(t, v.HasEditorFocus())
	tb.AssertNotPublished(t, eventbus.EventEmailDrafted, 0)
}

func TestView_Workcover(t *testing.T) {
	t.Run("hides paid claims until toggled", func(t *testing.T) {
		v, _ := newTestView(t, billing.KindWorkcover)

		out := screen(v)
		assert.Contains(t, out, "Showing 1-7 of 7")
		assert.Contains(t, out, "Paid: hidden")
		assert.NotContains(t, out, "WC-1005")

		v, _ = send(v, tuitest.KeyText('P'))
		out = screen(v)
		assert.Contains(t, out, "Showing 1-8 of 8")
		assert.Contains(t, out, "Paid: shown")

		v = search(v, "WC-1005")
		v, _ = send(v, tuitest.KeyText('f'))
		status, isErr := v.Status()
		assert.True(t, isErr)
		assert.Contains(t, status, "invoice is already paid")
	})

	t.Run("emails the case manager", func(t *testing.T) {
		v, tb := newTestView(t, billing.KindWorkcover)
		v = search(v, "WC-1001")

		v, cmd := send(v, tuitest.KeyText('e'))
		v = settle(t, v, cmd)
		require.True(t, v.HasEditorFocus())
		assert.Equal(t, DialogActionEmail, v.Controller().Dialog())

		v, cmd = send(v, tuitest.KeyCtrl('s'))
		v = settle(t, v, cmd)

		tb.AssertPublished(t, eventbus.EventEmailDrafted)
		status, isErr := v.Status()
		assert.False(t, isErr)
		assert.Contains(t, status, "email to ")
		assert.Contains(t, status, "recorded")
	})

	t.Run("filters on payment status", func(t *testing.T) {
		v, _ := newTestView(t, billing.KindWorkcover)
		v, _ = send(v, tuitest.KeyText('s'))

		out := screen(v)
		assert.Contains(t, out, "Status: Unpaid")
		assert.Contains(t, out, "Showing 1-4 of 4")
		assert.Contains(t, tuitest.StripANSI(v.StatsView()), "Unpaid claims")
	})
}

func TestView_OverdueBucket(t *testing.T) {
	v, _ := newTestView(t, billing.KindWorkcover)
	assert.NotContains(t, screen(v), "Overdue:", "no chip for any")

	v, _ = send(v, tuitest.KeyText('d'))
	out := screen(v)
	assert.Contains(t, out, "Overdue: 20-60 days")
	assert.Contains(t, out, "Showing 1-1 of 1")
	assert.Contains(t, out, "WC-1007")

	v, _ = send(v, tuitest.KeyText('d'))
	assert.Contains(t, screen(v), "No claims match your filters.")

	v, _ = send(v, tuitest.KeyText('d'), tuitest.KeyText('d'))
	out = screen(v)
	assert.NotContains(t, out, "Overdue:")
	assert.Contains(t, out, "Showing 1-7 of 7")
}

func TestView_Export(t *testing.T) {
	v, _ := newTestView(t, billing.KindPatient)

	v, cmd := send(v, tuitest.KeyText('o'))
	v = settle(t, v, cmd)

	status, isErr := v.Status()
	require.False(t, isErr, status)
	assert.Contains(t, status, "statement written to")
}

func TestView_IgnoresOtherTabs(t *testing.T) {
	v, _ := newTestView(t, billing.KindPatient)

	v, _ = send(v, recordsLoadedMsg{kind: billing.KindWorkcover})
	assert.Contains(t, screen(v), "Showing 1-5 of 5")
}
