package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/core/eventbus/testbus"
	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/internal/remit/remittest"
)

type harness struct {
	app    *remit.App
	bus    *testbus.Bus
	flags  *Flags
	stdout bytes.Buffer
	status bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	app, tb := remittest.New(t)
	return &harness{
		app:   app,
		bus:   tb,
		flags: &Flags{ConfigPath: filepath.Join(t.TempDir(), "config.yaml")},
	}
}

// run executes one remit invocation against a fresh command tree.
func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.status.Reset()

	root := &cli.Command{
		Name:           "remit",
		Writer:         &h.stdout,
		ErrWriter:      &h.status,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	root = NewLsCmd(h.flags, h.app).Register(root)
	root = NewShowCmd(h.flags, h.app).Register(root)
	root = NewFollowUpCmd(h.flags, h.app).Register(root)
	root = NewRulesCmd(h.flags, h.app).Register(root)
	root = NewPayCmd(h.flags, h.app).Register(root)
	root = NewEmailCmd(h.flags, h.app).Register(root)
	root = NewNoteCmd(h.flags, h.app).Register(root)
	root = NewExportCmd(h.flags, h.app).Register(root)
	root = NewStatsCmd(h.flags, h.app).Register(root)
	root = NewSeedCmd(h.flags, h.app).Register(root)
	root = NewConfigValidateCmd(h.flags, h.app).Register(root)

	ctx := printer.NewContext(context.Background(), printer.New(&h.status))
	return root.Run(ctx, append([]string{"remit"}, args...))
}

func TestLs(t *testing.T) {
	h := newHarness(t)

	t.Run("patients table", func(t *testing.T) {
		require.NoError(t, h.run(t, "ls"))
		out := h.stdout.String()
		assert.Contains(t, out, "PROVIDER")
		assert.Contains(t, out, "Sarah Johnson")
		assert.Contains(t, out, "$285.50")
		assert.Contains(t, out, "Showing 1-5 of 5 (page 1 of 1)")
	})

	t.Run("workcover hides paid claims", func(t *testing.T) {
		require.NoError(t, h.run(t, "ls", "--kind", "workcover"))
		out := h.stdout.String()
		assert.Contains(t, out, "INSURER")
		assert.Contains(t, out, "WC-1001")
		assert.NotContains(t, out, "WC-1005")

		require.NoError(t, h.run(t, "ls", "-k", "workcover", "--show-paid"))
		assert.Contains(t, h.stdout.String(), "WC-1005")
	})

	t.Run("query and status", func(t *testing.T) {
		require.NoError(t, h.run(t, "ls", "-q", "smith"))
		assert.Contains(t, h.stdout.String(), "Michael Smith")
		assert.NotContains(t, h.stdout.String(), "Sarah Johnson")

		require.NoError(t, h.run(t, "ls", "--status", billing.StatusCallFailed))
		assert.Contains(t, h.stdout.String(), "Emily Davis")
		assert.Contains(t, h.stdout.String(), "of 1 ")

		require.NoError(t, h.run(t, "ls", "-q", "nobody"))
		assert.Empty(t, h.stdout.String())
		assert.Contains(t, h.status.String(), "No patients match")

		assert.Error(t, h.run(t, "ls", "--status", "Sleeping"))
	})

	t.Run("json page", func(t *testing.T) {
		require.NoError(t, h.run(t, "ls", "--json", "--page-size", "25", "--page", "9"))

		var got lsOutput
		require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
		assert.Equal(t, billing.KindPatient, got.Kind)
		assert.Equal(t, 1, got.Page, "page clamps to the last page")
		assert.Equal(t, 25, got.PageSize)
		assert.Equal(t, 5, got.Total)
		assert.Len(t, got.Invoices, 5)

		assert.Error(t, h.run(t, "ls", "--page-size", "7"))
	})

	t.Run("bad kind", func(t *testing.T) {
		assert.Error(t, h.run(t, "ls", "--kind", "dental"))
	})
}

func TestFollowUp(t *testing.T) {
	t.Run("sms schedules sends", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.run(t, "followup", "INV-003", "--repeat", "Every week"))
		status := h.status.String()
		assert.Contains(t, status, "Michael Smith scheduled")
		assert.Contains(t, status, "1st")

		sends, err := h.app.Invoices.Schedule(context.Background(), "INV-003")
		require.NoError(t, err)
		assert.NotEmpty(t, sends)
		h.bus.AssertPublished(t, eventbus.EventFollowUpScheduled)
	})

	t.Run("preview renders without scheduling", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.run(t, "followup", "INV-003", "--preview", "-m", "Hi {{ .PatientName }}, {{ .Amount }} is due"))
		assert.Equal(t, "Hi Michael Smith, $315.00 is due\n", h.stdout.String())

		sends, err := h.app.Invoices.Schedule(context.Background(), "INV-003")
		require.NoError(t, err)
		assert.Empty(t, sends)
	})

	t.Run("phone records the call", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.run(t, "followup", "INV-006", "--channel", "phone", "--notes", "left voicemail", "--outcome", "failed"))
		assert.Contains(t, h.status.String(), "follow-up recorded for Emily Davis")

		inv, err := h.app.Invoices.Get(context.Background(), "INV-006")
		require.NoError(t, err)
		assert.Equal(t, billing.StatusCallFailed, inv.Status)
	})

	t.Run("request from file", func(t *testing.T) {
		h := newHarness(t)

		path := filepath.Join(t.TempDir(), "req.json")
		body := `{"invoice_id":"INV-004","channel":"sms","send_in":"Send now","repeat":"Every week"}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		require.NoError(t, h.run(t, "followup", "--file", path))
		assert.Contains(t, h.status.String(), "Linda Taylor scheduled")
	})

	t.Run("errors", func(t *testing.T) {
		h := newHarness(t)

		assert.Error(t, h.run(t, "followup"))
		assert.Error(t, h.run(t, "followup", "INV-404"))
		assert.Error(t, h.run(t, "followup", "INV-003", "--channel", "pigeon"))
		assert.Error(t, h.run(t, "followup", "WC-1005"), "paid claims take no follow-ups")
	})
}

func TestRules(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "rules", "INV-005"))
	assert.Contains(t, h.stdout.String(), "Initial delay")
	assert.Empty(t, h.status.String(), "showing rules saves nothing")

	require.NoError(t, h.run(t, "rules", "INV-005", "--repeat-interval", "14", "--json"))
	assert.Contains(t, h.status.String(), "Sequence rules saved for INV-005")

	var rule billing.SequenceRule
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &rule))
	assert.Equal(t, 14, rule.RepeatIntervalDays)

	got, err := h.app.Actions.Rule(context.Background(), "INV-005")
	require.NoError(t, err)
	assert.Equal(t, 14, got.RepeatIntervalDays)

	assert.Error(t, h.run(t, "rules", "INV-005", "--max-attempts", "0"))
	assert.Error(t, h.run(t, "rules"))
}

func TestPay(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "pay", "INV-005", "--method", "Cash", "--date", "07/01/2025", "--receipt", "R-1"))
	assert.Contains(t, h.status.String(), "INV-005 marked paid ($285.50 via Cash)")

	inv, err := h.app.Invoices.Get(context.Background(), "INV-005")
	require.NoError(t, err)
	assert.True(t, inv.IsPaid())
	h.bus.AssertPublished(t, eventbus.EventInvoicePaid)

	err = h.run(t, "pay", "INV-005", "--method", "Cash")
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrAlreadyPaid)

	assert.Error(t, h.run(t, "pay", "INV-003", "--method", "Bitcoin"))
	assert.Error(t, h.run(t, "pay", "INV-003", "--method", "Cash", "--date", "2025-07-01"))
	assert.Error(t, h.run(t, "pay", "INV-003", "--method", "Cash", "--amount", "lots"))
}

func TestEmail(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "email", "WC-1001", "--preview", "--subject", "Claim WC-1001"))
	out := h.stdout.String()
	assert.Contains(t, out, "To: rebecca.moore@workcover.allianz.gov.au")
	assert.Contains(t, out, "Subject: Claim WC-1001")
	assert.Contains(t, out, "Attachment: WC-1001.pdf")
	h.bus.AssertNotPublished(t, eventbus.EventEmailDrafted, 0)

	require.NoError(t, h.run(t, "email", "WC-1001", "--no-attachment"))
	assert.Contains(t, h.status.String(), "Email to rebecca.moore@workcover.allianz.gov.au recorded for WC-1001")
	h.bus.AssertPublished(t, eventbus.EventEmailDrafted)

	assert.Error(t, h.run(t, "email"))
}

func TestNoteAndShow(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "note", "INV-008", "promised", "to", "pay", "Friday"))
	assert.Contains(t, h.status.String(), "Note added to INV-008")

	require.NoError(t, h.run(t, "show", "INV-008", "--raw"))
	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "# David Brown"))
	assert.Contains(t, out, "promised to pay Friday")

	assert.Error(t, h.run(t, "note", "INV-008"))
	assert.Error(t, h.run(t, "show", "INV-404"))
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	require.NoError(t, h.run(t, "export", "INV-003", "WC-1002", "--dir", dir))
	assert.Equal(t, 2, strings.Count(h.status.String(), "Statement written"))

	for _, p := range []string{
		filepath.Join(dir, "michael-smith", "INV-003.pdf"),
		filepath.Join(dir, "olivia-martin", "WC-1002.pdf"),
	} {
		assert.FileExists(t, p)
	}

	assert.Error(t, h.run(t, "export"))
}

func TestStats(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "stats"))
	out := h.stdout.String()
	assert.Contains(t, out, "OUTSTANDING")
	assert.Contains(t, out, "Patients")
	assert.Contains(t, out, "Workcover")

	require.NoError(t, h.run(t, "stats", "--kind", "patient", "--json"))
	var got map[billing.Kind]billing.Stats
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	require.Contains(t, got, billing.KindPatient)
	assert.NotContains(t, got, billing.KindWorkcover)
	assert.Equal(t, 5, got[billing.KindPatient].Unpaid)
	assert.Equal(t, "1606.95", got[billing.KindPatient].TotalOutstanding.StringFixed(2))
}

func TestSeed(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "seed"))
	assert.Contains(t, h.status.String(), "Imported 13 invoices")

	records, err := h.app.Invoices.List(context.Background(), billing.KindPatient)
	require.NoError(t, err)
	assert.Len(t, records, 5, "reseeding upserts")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("invoices: []\n"), 0o644))
	require.NoError(t, h.run(t, "seed", "--glob", empty))
	assert.Contains(t, h.status.String(), "No invoices found")

	assert.Error(t, h.run(t, "seed", "--glob", filepath.Join(t.TempDir(), "*.yaml")))
}

func TestConfigValidate(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "config", "validate"))
	assert.Contains(t, h.status.String(), "Configuration is valid")

	require.NoError(t, h.run(t, "config", "validate", "--format", "json"))
	var ok struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &ok))
	assert.True(t, ok.Valid)

	h.app.Config.FollowUp.DefaultMessage = "{{ .Patient "
	require.Error(t, h.run(t, "config", "validate"))
	assert.Contains(t, h.status.String(), "error(s) found")
}
