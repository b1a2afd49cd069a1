package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
)

type PayCmd struct {
	flags *Flags
	app   *remit.App

	// flags
	amount  string
	method  string
	date    string
	receipt string
	notes   string
}

// NewPayCmd creates a new pay command
func NewPayCmd(flags *Flags, app *remit.App) *PayCmd {
	return &PayCmd{flags: flags, app: app}
}

// Register adds the pay command to the application
func (cmd *PayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "pay",
		Usage:     "Record a payment",
		UsageText: "remit pay <invoice-id> [--method name] [--amount 0.00] [--date MM/DD/YYYY]",
		Description: `Marks an invoice paid and records the payment. Amount defaults to the
invoice amount and date to today.

When --method is omitted and the terminal is interactive, a form asks for
the payment details.`,
		ShellComplete: InvoiceIDCompleter(cmd.app),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "amount",
				Aliases:     []string{"a"},
				Usage:       "amount paid (defaults to the invoice amount)",
				Destination: &cmd.amount,
			},
			&cli.StringFlag{
				Name:        "method",
				Aliases:     []string{"m"},
				Usage:       "one of: " + strings.Join(billing.PaymentMethods, ", "),
				Destination: &cmd.method,
			},
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "payment date as MM/DD/YYYY (defaults to today)",
				Destination: &cmd.date,
			},
			&cli.StringFlag{
				Name:        "receipt",
				Usage:       "receipt or transaction number",
				Destination: &cmd.receipt,
			},
			&cli.StringFlag{
				Name:        "notes",
				Usage:       "payment notes",
				Destination: &cmd.notes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PayCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("invoice id is required")
	}
	inv, err := cmd.app.Invoices.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get invoice: %w", err)
	}
	if inv.IsPaid() {
		return fmt.Errorf("%s: %w", id, billing.ErrAlreadyPaid)
	}

	if cmd.method == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("--method is required when not running interactively")
		}
		if err := cmd.runForm(inv); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	payment, err := cmd.payment(inv)
	if err != nil {
		return err
	}

	if _, err := cmd.app.Actions.MarkPaid(ctx, payment); err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}

	p.Successf("%s marked paid (%s via %s)", id, billing.FormatMoney(payment.AmountPaid), payment.Method)
	return nil
}

// payment builds the payment from the flag values. The amount defaults to
// the invoice amount; an empty date is left zero for the service to default.
func (cmd *PayCmd) payment(inv billing.Invoice) (billing.Payment, error) {
	pay := billing.Payment{
		InvoiceID:  inv.ID,
		AmountPaid: inv.Amount,
		Method:     cmd.method,
		Receipt:    cmd.receipt,
		Notes:      cmd.notes,
	}

	if cmd.amount != "" {
		amt, err := billing.ParseMoney(cmd.amount)
		if err != nil {
			return pay, fmt.Errorf("--amount: %w", err)
		}
		pay.AmountPaid = amt
	}
	if cmd.date != "" {
		d, err := billing.ParsePaymentDate(cmd.date)
		if err != nil {
			return pay, fmt.Errorf("--date: %w", err)
		}
		pay.PaidOn = d
	}
	if !slices.Contains(billing.PaymentMethods, pay.Method) {
		return pay, fmt.Errorf("unknown payment method %q", pay.Method)
	}
	return pay, nil
}

func (cmd *PayCmd) runForm(inv billing.Invoice) error {
	if cmd.amount == "" {
		cmd.amount = inv.Amount.StringFixed(2)
	}
	if cmd.date == "" {
		cmd.date = time.Now().Format(billing.PaymentDateLayout)
	}
	cmd.method = billing.PaymentMethods[0]

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(fmt.Sprintf("Mark %s paid", inv.ID)).
				Description(fmt.Sprintf("%s · %s outstanding", inv.Patient, billing.FormatMoney(inv.Amount))),
			huh.NewInput().
				Title("Amount paid").
				Validate(validateAmount).
				Value(&cmd.amount),
			huh.NewSelect[string]().
				Title("Payment method").
				Options(huh.NewOptions(billing.PaymentMethods...)...).
				Value(&cmd.method),
			huh.NewInput().
				Title("Payment date").
				Description("MM/DD/YYYY").
				Validate(validateDate).
				Value(&cmd.date),
			huh.NewInput().
				Title("Receipt number").
				Value(&cmd.receipt),
			huh.NewText().
				Title("Notes").
				Value(&cmd.notes),
		),
	).WithTheme(huh.ThemeCharm()).Run()
}

func validateAmount(s string) error {
	amt, err := billing.ParseMoney(s)
	if err != nil {
		return err
	}
	if !amt.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

func validateDate(s string) error {
	_, err := billing.ParsePaymentDate(s)
	return err
}
