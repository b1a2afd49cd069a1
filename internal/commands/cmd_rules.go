package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/pkg/iojson"
)

type RulesCmd struct {
	flags *Flags
	app   *remit.App

	// flags
	initialDelay   int
	repeatInterval int
	maxAttempts    int
	skipWeekends   bool
	jsonOutput     bool
}

// NewRulesCmd creates a new rules command
func NewRulesCmd(flags *Flags, app *remit.App) *RulesCmd {
	return &RulesCmd{flags: flags, app: app}
}

// Register adds the rules command to the application
func (cmd *RulesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rules",
		Usage:     "Show or change an invoice's follow-up sequence",
		UsageText: "remit rules <invoice-id> [--initial-delay days] [--repeat-interval days] [--max-attempts n] [--skip-weekends=false]",
		Description: `Without flags, prints the sequence rules of an invoice: its saved rules or
the configured defaults. Any flag saves the rules with that value changed.`,
		ShellComplete: InvoiceIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "initial-delay",
				Usage:       fmt.Sprintf("days before the first reminder, one of %v", billing.InitialDelayOptions),
				Destination: &cmd.initialDelay,
			},
			&cli.IntFlag{
				Name:        "repeat-interval",
				Usage:       fmt.Sprintf("days between reminders, one of %v", billing.RepeatIntervalOptions),
				Destination: &cmd.repeatInterval,
			},
			&cli.IntFlag{
				Name:        "max-attempts",
				Usage:       fmt.Sprintf("reminders to send, one of %v", billing.MaxAttemptOptions),
				Destination: &cmd.maxAttempts,
			},
			&cli.BoolFlag{
				Name:        "skip-weekends",
				Usage:       "move reminders falling on a weekend to Monday",
				Destination: &cmd.skipWeekends,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the rules as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RulesCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("invoice id is required")
	}
	if _, err := cmd.app.Invoices.Get(ctx, id); err != nil {
		return fmt.Errorf("get invoice: %w", err)
	}

	rule, err := cmd.app.Actions.Rule(ctx, id)
	if err != nil {
		return fmt.Errorf("get rules: %w", err)
	}

	changed := false
	if c.IsSet("initial-delay") {
		rule.InitialDelayDays, changed = cmd.initialDelay, true
	}
	if c.IsSet("repeat-interval") {
		rule.RepeatIntervalDays, changed = cmd.repeatInterval, true
	}
	if c.IsSet("max-attempts") {
		rule.MaxAttempts, changed = cmd.maxAttempts, true
	}
	if c.IsSet("skip-weekends") {
		rule.SkipWeekends, changed = cmd.skipWeekends, true
	}

	if changed {
		if err := cmd.app.Actions.SaveRules(ctx, rule); err != nil {
			return fmt.Errorf("save rules: %w", err)
		}
		printer.Ctx(ctx).Successf("Sequence rules saved for %s", id)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Encode(out, rule)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Initial delay\t%d days\n", rule.InitialDelayDays)
	_, _ = fmt.Fprintf(w, "Repeat interval\t%d days\n", rule.RepeatIntervalDays)
	_, _ = fmt.Fprintf(w, "Max attempts\t%d\n", rule.MaxAttempts)
	_, _ = fmt.Fprintf(w, "Skip weekends\t%t\n", rule.SkipWeekends)
	return w.Flush()
}
