package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
)

type NoteCmd struct {
	flags *Flags
	app   *remit.App
}

// NewNoteCmd creates a new note command
func NewNoteCmd(flags *Flags, app *remit.App) *NoteCmd {
	return &NoteCmd{flags: flags, app: app}
}

// Register adds the note command to the application
func (cmd *NoteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "note",
		Usage:         "Add a note to an invoice's history",
		UsageText:     "remit note <invoice-id> <text>...",
		ShellComplete: InvoiceIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *NoteCmd) run(ctx context.Context, c *cli.Command) error {
	args := c.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("usage: remit note <invoice-id> <text>")
	}
	id, text := args[0], strings.Join(args[1:], " ")

	if _, err := cmd.app.Invoices.Get(ctx, id); err != nil {
		return fmt.Errorf("get invoice: %w", err)
	}
	if err := cmd.app.Actions.AddNote(ctx, id, text); err != nil {
		return fmt.Errorf("add note: %w", err)
	}

	printer.Ctx(ctx).Successf("Note added to %s", id)
	return nil
}
