package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/remit"
)

// InvoiceIDCompleter returns a ShellCompleteFunc that suggests unpaid
// invoice ids, with the patient name as the description, as positional
// completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func InvoiceIDCompleter(app *remit.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		w := cmd.Root().Writer
		for _, kind := range billing.Kinds {
			invoices, err := app.Invoices.List(ctx, kind)
			if err != nil {
				return
			}
			for _, inv := range invoices {
				if inv.IsPaid() {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s:%s\n", inv.ID, inv.Patient)
			}
		}
	}
}
