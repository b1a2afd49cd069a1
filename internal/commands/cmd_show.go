package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/remit/internal/core/styles"
	"github.com/colonyops/remit/internal/remit"
)

type ShowCmd struct {
	flags *Flags
	app   *remit.App

	raw bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *remit.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "show",
		Usage:         "Show an invoice with its history",
		UsageText:     "remit show <invoice-id> [--raw]",
		Description:   "Prints the patient info panel of the dashboard: invoice details, payments, planned reminders and activity.",
		ShellComplete: InvoiceIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("invoice id is required")
	}

	md, err := cmd.app.Invoices.PatientInfo(ctx, id)
	if err != nil {
		return fmt.Errorf("get invoice: %w", err)
	}

	out := c.Root().Writer
	if cmd.raw || !isTerminal(out) {
		_, err := fmt.Fprint(out, md)
		return err
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w, 100)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
