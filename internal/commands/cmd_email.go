package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/pkg/iojson"
)

type EmailCmd struct {
	flags *Flags
	app   *remit.App

	// flags
	to           string
	subject      string
	body         string
	noAttachment bool
	preview      bool
	jsonOutput   bool
}

// NewEmailCmd creates a new email command
func NewEmailCmd(flags *Flags, app *remit.App) *EmailCmd {
	return &EmailCmd{flags: flags, app: app}
}

// Register adds the email command to the application
func (cmd *EmailCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "email",
		Usage:     "Email a claim's case manager",
		UsageText: "remit email <claim-id> [--to addr] [--subject text] [--body text] [--preview]",
		Description: `Records an email to the case manager of a workcover claim. The draft is
prefilled from the claim; flags replace individual fields. Use --preview to
print the draft without recording it.`,
		ShellComplete: InvoiceIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "recipient address", Destination: &cmd.to},
			&cli.StringFlag{Name: "subject", Usage: "subject line", Destination: &cmd.subject},
			&cli.StringFlag{Name: "body", Usage: "message body", Destination: &cmd.body},
			&cli.BoolFlag{Name: "no-attachment", Usage: "do not attach the statement", Destination: &cmd.noAttachment},
			&cli.BoolFlag{Name: "preview", Usage: "print the draft only", Destination: &cmd.preview},
			&cli.BoolFlag{Name: "json", Usage: "print the draft as JSON (with --preview)", Destination: &cmd.jsonOutput},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EmailCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("claim id is required")
	}

	draft, err := cmd.app.Actions.EmailDraft(ctx, id)
	if err != nil {
		return fmt.Errorf("draft email: %w", err)
	}
	if cmd.to != "" {
		draft.To = cmd.to
	}
	if cmd.subject != "" {
		draft.Subject = cmd.subject
	}
	if cmd.body != "" {
		draft.Body = cmd.body
	}
	if cmd.noAttachment {
		draft.Attachment = ""
	}

	if cmd.preview {
		out := c.Root().Writer
		if cmd.jsonOutput {
			return iojson.Encode(out, draft)
		}
		_, _ = fmt.Fprintf(out, "To: %s\nSubject: %s\n", draft.To, draft.Subject)
		if draft.Attachment != "" {
			_, _ = fmt.Fprintf(out, "Attachment: %s\n", draft.Attachment)
		}
		_, _ = fmt.Fprintf(out, "\n%s\n", draft.Body)
		return nil
	}

	if err := cmd.app.Actions.SendEmail(ctx, id, draft); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	printer.Ctx(ctx).Successf("Email to %s recorded for %s", draft.To, id)
	return nil
}
