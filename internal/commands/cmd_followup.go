package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/pkg/iojson"
)

type FollowUpCmd struct {
	flags *Flags
	app   *remit.App

	input iojson.FileReader[billing.FollowUp]

	// flags
	channel string
	sendIn  string
	repeat  string
	message string
	notes   string
	outcome string
	preview bool
}

// NewFollowUpCmd creates a new followup command
func NewFollowUpCmd(flags *Flags, app *remit.App) *FollowUpCmd {
	return &FollowUpCmd{flags: flags, app: app}
}

// Register adds the followup command to the application
func (cmd *FollowUpCmd) Register(app *cli.Command) *cli.Command {
	channels := make([]string, len(billing.Channels))
	for i, c := range billing.Channels {
		channels[i] = string(c)
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "followup",
		Usage:     "Schedule a payment reminder",
		UsageText: "remit followup <invoice-id> [--channel sms] [--send-in label] [--repeat label] [--message text]",
		Description: `Schedules reminders for an unpaid invoice. The message is a template
rendered with the invoice (see followup.default_message). Sends are planned
from --send-in and --repeat and capped by the invoice's sequence rules.

Phone follow-ups record the call instead: use --notes and --outcome.

The request can also be given as JSON with --file (- reads stdin).`,
		ShellComplete: InvoiceIDCompleter(cmd.app),
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.StringFlag{
				Name:        "channel",
				Aliases:     []string{"c"},
				Usage:       "one of " + strings.Join(channels, ", "),
				Value:       string(billing.ChannelSMS),
				Destination: &cmd.channel,
			},
			&cli.StringFlag{
				Name:        "send-in",
				Usage:       fmt.Sprintf("first send, e.g. %q", billing.SendOptions[1].Label),
				Value:       billing.SendOptions[0].Label,
				Destination: &cmd.sendIn,
			},
			&cli.StringFlag{
				Name:        "repeat",
				Usage:       "repeat frequency label, including followup.custom_repeats",
				Value:       billing.DefaultRepeat,
				Destination: &cmd.repeat,
			},
			&cli.StringFlag{
				Name:        "message",
				Aliases:     []string{"m"},
				Usage:       "message template (defaults to followup.default_message)",
				Destination: &cmd.message,
			},
			&cli.StringFlag{
				Name:        "notes",
				Usage:       "call notes for phone follow-ups",
				Destination: &cmd.notes,
			},
			&cli.StringFlag{
				Name:        "outcome",
				Usage:       "call outcome for phone follow-ups (success, failed)",
				Destination: &cmd.outcome,
			},
			&cli.BoolFlag{
				Name:        "preview",
				Usage:       "print the rendered message without scheduling",
				Destination: &cmd.preview,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FollowUpCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	f, err := cmd.request(ctx, c)
	if err != nil {
		return err
	}

	inv, err := cmd.app.Invoices.Get(ctx, f.InvoiceID)
	if err != nil {
		return fmt.Errorf("get invoice: %w", err)
	}

	if cmd.preview {
		msg, err := cmd.app.Actions.Preview(inv, f.Message)
		if err != nil {
			return fmt.Errorf("render message: %w", err)
		}
		_, _ = fmt.Fprintln(c.Root().Writer, msg)
		return nil
	}

	res, err := cmd.app.Actions.FollowUp(ctx, f)
	if err != nil {
		return fmt.Errorf("follow up %s: %w", f.InvoiceID, err)
	}

	if len(res.Sends) == 0 {
		p.Successf("%s follow-up recorded for %s", f.Channel.Title(), inv.Patient)
		return nil
	}

	p.Successf("%s to %s scheduled", f.Channel.Title(), inv.Patient)
	for _, s := range res.Sends {
		p.Printf("  %s  %s (%s)", humanize.Ordinal(s.Attempt), s.SendAt.Format(billing.AppointmentLayout), humanize.Time(s.SendAt))
	}
	return nil
}

// request builds the follow-up from --file or from the invoice id argument
// and flags.
func (cmd *FollowUpCmd) request(ctx context.Context, c *cli.Command) (billing.FollowUp, error) {
	if cmd.input.Set() {
		f, err := cmd.input.Read()
		if err != nil {
			return billing.FollowUp{}, err
		}
		if f.Message == "" && f.Channel != billing.ChannelPhone {
			f.Message = cmd.app.Config.FollowUp.DefaultMessage
		}
		return f, nil
	}

	id := c.Args().First()
	if id == "" {
		return billing.FollowUp{}, fmt.Errorf("invoice id is required")
	}
	inv, err := cmd.app.Invoices.Get(ctx, id)
	if err != nil {
		return billing.FollowUp{}, fmt.Errorf("get invoice: %w", err)
	}

	f := cmd.app.Actions.DefaultFollowUp(inv)
	f.Channel = billing.Channel(cmd.channel)
	f.SendIn = cmd.sendIn
	f.Repeat = cmd.repeat
	if cmd.message != "" {
		f.Message = cmd.message
	}
	if f.Channel == billing.ChannelPhone {
		f.CallNotes = cmd.notes
		f.CallOutcome = billing.CallOutcome(cmd.outcome)
	}
	return f, nil
}
