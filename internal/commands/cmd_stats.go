package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/pkg/iojson"
)

type StatsCmd struct {
	flags *Flags
	app   *remit.App

	kind       string
	jsonOutput bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, app *remit.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "stats",
		Usage:       "Show outstanding totals",
		UsageText:   "remit stats [--kind workcover] [--json]",
		Description: "Prints the dashboard summary cards for one kind, or every kind when --kind is omitted.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "kind",
				Aliases:     []string{"k"},
				Usage:       "invoice kind (patient, workcover)",
				Destination: &cmd.kind,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON keyed by kind",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	kinds := billing.Kinds
	if cmd.kind != "" {
		k, err := billing.ParseKind(cmd.kind)
		if err != nil {
			return err
		}
		kinds = []billing.Kind{k}
	}

	all := make(map[billing.Kind]billing.Stats, len(kinds))
	for _, k := range kinds {
		s, err := cmd.app.Invoices.Stats(ctx, k)
		if err != nil {
			return fmt.Errorf("stats for %s: %w", k, err)
		}
		all[k] = s
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Encode(out, all)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tOUTSTANDING\tUNPAID\tOVERDUE\tAVG DAYS OVERDUE\tREMINDERS SENT")
	for _, k := range kinds {
		s := all[k]
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			k.Title(), billing.FormatMoney(s.TotalOutstanding), s.Unpaid, s.Overdue, s.AverageDaysOverdue, s.RemindersSent)
	}
	return w.Flush()
}
