// Package remit wires the billing stores, configuration and event bus into
// the services consumed by the CLI and the TUI.
package remit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/config"
	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/data/db"
	"github.com/colonyops/remit/internal/data/stores"
)

// Stores groups the persistence interfaces used by the services.
type Stores struct {
	Invoices   billing.InvoiceStore
	Activities billing.ActivityStore
	Rules      billing.RuleStore
	Payments   billing.PaymentStore
	Schedule   billing.ScheduleStore

	// Tx makes the writes of one action atomic. Without it each store
	// call commits on its own.
	Tx Transactor
}

// Transactor runs fn in a transaction that every store call made with
// fn's context joins.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

func (st Stores) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if st.Tx == nil {
		return fn(ctx)
	}
	return st.Tx.InTx(ctx, fn)
}

// SQLiteStores returns SQLite-backed stores over database.
func SQLiteStores(database *db.DB) Stores {
	return Stores{
		Invoices:   stores.NewInvoiceStore(database),
		Activities: stores.NewActivityStore(database),
		Rules:      stores.NewRuleStore(database),
		Payments:   stores.NewPaymentStore(database),
		Schedule:   stores.NewScheduleStore(database),
		Tx:         database,
	}
}

// App is the central entry point for all remit operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Invoices *InvoiceService
	Actions  *ActionService

	Config *config.Config
	Bus    *eventbus.EventBus
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(st Stores, cfg *config.Config, bus *eventbus.EventBus, database *db.DB, log zerolog.Logger) *App {
	return &App{
		Invoices: NewInvoiceService(st, cfg, bus, log),
		Actions:  NewActionService(st, cfg, bus, log),
		Config:   cfg,
		Bus:      bus,
		DB:       database,
	}
}
