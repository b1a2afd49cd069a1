package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/data/fixtures"
	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
)

type SeedCmd struct {
	flags *Flags
	app   *remit.App

	glob string
}

// NewSeedCmd creates a new seed command
func NewSeedCmd(flags *Flags, app *remit.App) *SeedCmd {
	return &SeedCmd{flags: flags, app: app}
}

// Register adds the seed command to the application
func (cmd *SeedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "seed",
		Usage:     "Import invoice fixtures",
		UsageText: "remit seed [--glob 'fixtures/**/*.yaml']",
		Description: `Imports invoices and their activity history from YAML fixture files.
Without --glob the bundled demo data is imported.

Invoices are upserted by id and activities already present are skipped,
so seeding twice is safe.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "glob",
				Aliases:     []string{"g"},
				Usage:       "doublestar pattern of fixture files",
				Destination: &cmd.glob,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SeedCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	var (
		set    fixtures.Set
		err    error
		source = "demo data"
	)
	if cmd.glob == "" {
		set, err = fixtures.Demo()
	} else {
		set, err = fixtures.LoadGlob(cmd.glob)
		source = cmd.glob
	}
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}

	if n, _ := set.Count(); n == 0 {
		p.Warnf("No invoices found in %s", source)
		return nil
	}

	res, err := cmd.app.Invoices.Import(ctx, set)
	if err != nil {
		return fmt.Errorf("import fixtures: %w", err)
	}

	p.Successf("Imported %d invoices and %d activities from %s", res.Invoices, res.Activities, source)
	return nil
}
