package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/listing"
	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *remit.App

	// flags
	kind       string
	query      string
	status     string
	page       int
	pageSize   int
	showPaid   bool
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *remit.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List invoices",
		UsageText: "remit ls [--kind workcover] [--query text] [--status label] [--page n] [--json]",
		Description: `Prints one page of the patient invoice or workcover claim list, filtered
the same way as the dashboard: --query matches the patient name or
invoice id, --status matches the status column exactly.

Paid claims are hidden unless --show-paid is set.`,
		Flags: []cli.Flag{
			newKindFlag(&cmd.kind),
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "search patient names and invoice ids",
				Destination: &cmd.query,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "only show this status",
				Value:       listing.AllStatuses,
				Destination: &cmd.status,
			},
			&cli.IntFlag{
				Name:        "page",
				Aliases:     []string{"p"},
				Usage:       "page to show, clamped to the last page",
				Value:       1,
				Destination: &cmd.page,
			},
			&cli.IntFlag{
				Name:        "page-size",
				Usage:       fmt.Sprintf("rows per page, one of %v (defaults to list.page_size)", listing.PageSizes),
				Destination: &cmd.pageSize,
			},
			&cli.BoolFlag{
				Name:        "show-paid",
				Usage:       "include paid workcover claims",
				Destination: &cmd.showPaid,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the page as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// lsOutput is the JSON output format for remit ls --json.
type lsOutput struct {
	Kind      billing.Kind      `json:"kind"`
	Page      int               `json:"page"`
	PageCount int               `json:"page_count"`
	PageSize  int               `json:"page_size"`
	Total     int               `json:"total"`
	Invoices  []billing.Invoice `json:"invoices"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	kind, _ := billing.ParseKind(cmd.kind)

	statuses := billing.StatusesFor(kind)
	if !slices.Contains(statuses, cmd.status) {
		return fmt.Errorf("unknown %s status %q, expected one of: %s", kind, cmd.status, strings.Join(statuses, ", "))
	}

	records, err := cmd.app.Invoices.List(ctx, kind)
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}

	pageSize := cmd.app.Config.List.PageSize
	if cmd.pageSize != 0 {
		if !listing.ValidPageSize(cmd.pageSize) {
			return fmt.Errorf("page size must be one of %v", listing.PageSizes)
		}
		pageSize = cmd.pageSize
	}

	state := listing.NewState(records, pageSize, listing.MatcherFor(kind))
	state.SetQuery(cmd.query)
	state.SetStatus(cmd.status)
	state.SetShowPaid(cmd.showPaid)
	state.SetPage(cmd.page)

	page := state.Current()
	ps := state.PageState()

	out := c.Root().Writer
	if cmd.jsonOutput {
		items := page.Items
		if items == nil {
			items = []billing.Invoice{}
		}
		return iojson.Encode(out, lsOutput{
			Kind:      kind,
			Page:      ps.Page,
			PageCount: page.PageCount,
			PageSize:  ps.Size,
			Total:     page.Total,
			Invoices:  items,
		})
	}

	if page.Total == 0 {
		printer.Ctx(ctx).Infof("No %s match", strings.ToLower(kind.Title()))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if kind == billing.KindWorkcover {
		_, _ = fmt.Fprintln(w, "ID\tPATIENT\tINSURER\tAMOUNT\tDUE\tCOMMUNICATION\tPAYMENT")
		for _, inv := range page.Items {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				inv.ID, inv.Patient, inv.Insurer, billing.FormatMoney(inv.Amount),
				inv.DueDisplay(), inv.CommunicationStatus, inv.PaymentStatus)
		}
	} else {
		_, _ = fmt.Fprintln(w, "ID\tPATIENT\tPROVIDER\tAMOUNT\tDUE\tSTATUS")
		for _, inv := range page.Items {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				inv.ID, inv.Patient, inv.Provider, billing.FormatMoney(inv.Amount),
				inv.DueDisplay(), inv.StatusLabel())
		}
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nShowing %d-%d of %d (page %d of %d)\n",
		page.ShowingStart(), page.ShowingEnd(), page.Total, ps.Page, page.PageCount)
	return nil
}
