package commands

import (
	"context"
	"fmt"

	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/logging"
	"github.com/colonyops/remit/internal/remit"
	"github.com/colonyops/remit/internal/tui"
	"github.com/colonyops/remit/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
	app   *remit.App
	build tui.BuildInfo

	tab          string
	profilerPort int
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *remit.App, build tui.BuildInfo) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
		build: build,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tab",
			Usage:       "open on this tab (patient, workcover), overriding list.default_tab",
			Sources:     cli.EnvVars("REMIT_TAB"),
			Destination: &cmd.tab,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "serve pprof on this localhost port while the dashboard runs (0 disables)",
			Sources:     cli.EnvVars("REMIT_PROFILER_PORT"),
			Destination: &cmd.profilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, _ *cli.Command) error {
	if cmd.tab != "" {
		kind, err := billing.ParseKind(cmd.tab)
		if err != nil {
			return fmt.Errorf("--tab: %w", err)
		}
		cmd.app.Config.List.DefaultTab = string(kind)
	}

	if cmd.profilerPort > 0 {
		prof := profiler.New(cmd.profilerPort, logging.Component("profiler"))
		if err := prof.Start(ctx); err != nil {
			return fmt.Errorf("start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := prof.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("profiler shutdown")
			}
		}()
	}

	var warnings []string
	for _, w := range cmd.app.Config.Warnings() {
		warnings = append(warnings, fmt.Sprintf("%s: %s", w.Category, w.Message))
	}

	m := tui.New(cmd.app, tui.Options{
		Build:    cmd.build,
		Warnings: warnings,
	})

	log.Info().Str("tab", string(m.ActiveKind())).Msg("starting dashboard")
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
