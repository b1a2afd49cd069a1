// Package remittest builds a remit.App over a temporary SQLite database
// seeded with the demo fixtures, for tests outside the remit package.
package remittest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remit/internal/core/config"
	"github.com/colonyops/remit/internal/core/eventbus/testbus"
	"github.com/colonyops/remit/internal/data/db"
	"github.com/colonyops/remit/internal/data/fixtures"
	"github.com/colonyops/remit/internal/remit"
)

// New returns an App with the demo data imported and the recorded events
// reset.
func New(t *testing.T) (*remit.App, *testbus.Bus) {
	t.Helper()

	dataDir := t.TempDir()
	database, err := db.Open(dataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir

	tb := testbus.New(t)
	app := remit.NewApp(remit.SQLiteStores(database), &cfg, tb.EventBus, database, zerolog.Nop())

	set, err := fixtures.Demo()
	require.NoError(t, err)
	_, err = app.Invoices.Import(context.Background(), set)
	require.NoError(t, err)
	tb.Reset()

	return app, tb
}
