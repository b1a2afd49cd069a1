package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/commands"
	"github.com/colonyops/remit/internal/core/config"
	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/core/logging"
	"github.com/colonyops/remit/internal/core/styles"
	"github.com/colonyops/remit/internal/data/db"
	"github.com/colonyops/remit/internal/data/stores"
	"github.com/colonyops/remit/internal/printer"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/internal/tui"
	"github.com/colonyops/remit/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() fills
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

const busBuffer = 64

func build() tui.BuildInfo {
	b := tui.BuildInfo{Version: version, Commit: commit, Date: date}
	if b.Version != "dev" {
		return b
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		b.Version = mv
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
		case "vcs.time":
			b.Date = s.Value
		}
	}
	return b
}

func main() {
	ctx := context.Background()

	var (
		logCloser = func() {}
		remitApp  = &remit.App{}
		database  *db.DB
		busCancel context.CancelFunc
		buildInfo = build()
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "remit",
		Usage:     "Follow up unpaid patient invoices and workcover claims",
		UsageText: "remit [global options] command [command options]",
		Description: `remit is a billing desk for a small clinic. It lists unpaid patient
invoices and workcover claims, schedules payment reminders, records
payments and writes PDF statements.

Run 'remit' with no arguments to open the dashboard.
Run 'remit seed' once to load the demo data.`,
		Version: buildInfo.String() + " " + buildInfo.Date,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("REMIT_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/remit.log, - for stderr)",
				Sources:     cli.EnvVars("REMIT_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("REMIT_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("REMIT_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "operator",
				Usage:       "name recorded on activities (defaults to clinic.operator)",
				Sources:     cli.EnvVars("REMIT_OPERATOR"),
				Destination: &flags.Operator,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}
			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			database, err = stores.OpenWithRecovery(cfg.DBDir(), db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}, logging.Component("db"))
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			bus := eventbus.New(busBuffer)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewNotificationRouter(bus).Register()

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*remitApp = *remit.NewApp(remit.SQLiteStores(database), cfg, bus, database, log.Logger)

			if flags.Operator != "" {
				ctx = logging.WithOperator(ctx, flags.Operator)
			}
			ctx = printer.NewContext(ctx, printer.New(os.Stderr))
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			logCloser()
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, remitApp, buildInfo)

	app = commands.NewLsCmd(flags, remitApp).Register(app)
	app = commands.NewShowCmd(flags, remitApp).Register(app)
	app = commands.NewFollowUpCmd(flags, remitApp).Register(app)
	app = commands.NewRulesCmd(flags, remitApp).Register(app)
	app = commands.NewPayCmd(flags, remitApp).Register(app)
	app = commands.NewEmailCmd(flags, remitApp).Register(app)
	app = commands.NewNoteCmd(flags, remitApp).Register(app)
	app = commands.NewExportCmd(flags, remitApp).Register(app)
	app = commands.NewStatsCmd(flags, remitApp).Register(app)
	app = commands.NewSeedCmd(flags, remitApp).Register(app)
	app = commands.NewConfigValidateCmd(flags, remitApp).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'remit --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
