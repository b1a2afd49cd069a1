package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
)

type ExportCmd struct {
	flags *Flags
	app   *remit.App

	dir string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *remit.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Write PDF statements",
		UsageText: "remit export <invoice-id>... [--dir path]",
		Description: `Writes a PDF statement per invoice with its payments, history and
planned reminders. Files go to <data-dir>/exports unless --dir is set.`,
		ShellComplete: InvoiceIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"o"},
				Usage:       "output directory",
				Destination: &cmd.dir,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one invoice id is required")
	}

	for _, id := range ids {
		path, err := cmd.app.Invoices.Export(ctx, id, cmd.dir)
		if err != nil {
			return fmt.Errorf("export %s: %w", id, err)
		}
		p.Success("Statement written", path)
	}
	return nil
}
