package remit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/config"
	"github.com/colonyops/remit/internal/core/eventbus"
	"github.com/colonyops/remit/internal/data/fixtures"
	"github.com/colonyops/remit/internal/report"
)

// InvoiceService reads invoices and their history.
type InvoiceService struct {
	st     Stores
	config *config.Config
	bus    *eventbus.EventBus
	log    zerolog.Logger
	now    func() time.Time
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(st Stores, cfg *config.Config, bus *eventbus.EventBus, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{
		st:     st,
		config: cfg,
		bus:    bus,
		log:    log.With().Str("cmp", "invoices").Logger(),
		now:    time.Now,
	}
}

// List returns the invoices of a kind in due-date order.
func (s *InvoiceService) List(ctx context.Context, kind billing.Kind) ([]billing.Invoice, error) {
	return s.st.Invoices.List(ctx, billing.InvoiceQuery{Kind: kind})
}

// Get returns a single invoice.
func (s *InvoiceService) Get(ctx context.Context, id string) (billing.Invoice, error) {
	return s.st.Invoices.Get(ctx, id)
}

// Stats summarizes the invoices of a kind together with the reminders
// sent for them.
func (s *InvoiceService) Stats(ctx context.Context, kind billing.Kind) (billing.Stats, error) {
	invoices, err := s.List(ctx, kind)
	if err != nil {
		return billing.Stats{}, fmt.Errorf("list invoices: %w", err)
	}
	activities, err := s.st.Activities.ListByKind(ctx, kind)
	if err != nil {
		return billing.Stats{}, fmt.Errorf("list activities: %w", err)
	}
	return billing.Summarize(invoices, activities), nil
}

// Activities returns an invoice's history, newest first.
func (s *InvoiceService) Activities(ctx context.Context, id string) ([]billing.Activity, error) {
	return s.st.Activities.ListForInvoice(ctx, id)
}

// Payments returns the payments recorded against an invoice.
func (s *InvoiceService) Payments(ctx context.Context, id string) ([]billing.Payment, error) {
	return s.st.Payments.ListForInvoice(ctx, id)
}

// Schedule returns the planned follow-up sends for an invoice.
func (s *InvoiceService) Schedule(ctx context.Context, id string) ([]billing.ScheduledSend, error) {
	return s.st.Schedule.ListForInvoice(ctx, id)
}

// Details is everything known about one invoice.
type Details struct {
	Invoice    billing.Invoice
	Activities []billing.Activity
	Payments   []billing.Payment
	Schedule   []billing.ScheduledSend
}

// Details loads an invoice with its history, payments and schedule.
func (s *InvoiceService) Details(ctx context.Context, id string) (Details, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return Details{}, err
	}
	d := Details{Invoice: inv}
	if d.Activities, err = s.Activities(ctx, id); err != nil {
		return Details{}, err
	}
	if d.Payments, err = s.Payments(ctx, id); err != nil {
		return Details{}, err
	}
	if d.Schedule, err = s.Schedule(ctx, id); err != nil {
		return Details{}, err
	}
	return d, nil
}

// PatientInfo renders an invoice's details as markdown.
func (s *InvoiceService) PatientInfo(ctx context.Context, id string) (string, error) {
	d, err := s.Details(ctx, id)
	if err != nil {
		return "", err
	}
	return PatientMarkdown(d, s.now()), nil
}

// Import writes a fixture set and announces it on the bus.
func (s *InvoiceService) Import(ctx context.Context, set fixtures.Set) (fixtures.Result, error) {
	var res fixtures.Result
	err := s.st.inTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = fixtures.Import(ctx, set, s.st.Invoices, s.st.Activities)
		return err
	})
	if err != nil {
		return res, err
	}

	s.log.Info().Int("invoices", res.Invoices).Int("activities", res.Activities).Msg("fixtures imported")
	s.bus.PublishFixturesImported(eventbus.FixturesImportedPayload{
		Invoices:   res.Invoices,
		Activities: res.Activities,
	})
	return res, nil
}

// Export writes a PDF statement for an invoice under dir, defaulting to
// the configured export directory, and returns the file path.
func (s *InvoiceService) Export(ctx context.Context, id, dir string) (string, error) {
	d, err := s.Details(ctx, id)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = s.config.ExportDir()
	}

	path, err := report.WriteFile(dir, report.Statement{
		Clinic:      s.config.Clinic.Name,
		PaymentLink: s.config.FollowUp.PaymentLink,
		Invoice:     d.Invoice,
		Payments:    d.Payments,
		Activities:  d.Activities,
		Schedule:    d.Schedule,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("invoice", id).Str("path", path).Msg("statement exported")
	return path, nil
}
