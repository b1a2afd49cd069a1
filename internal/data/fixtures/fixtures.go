// Package fixtures loads invoice and activity records from YAML files,
// either the bundled demo set or files matched by a glob.
package fixtures

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/remit/internal/core/billing"
)

//go:embed demo/*.yaml
var demoFS embed.FS

// Date layouts accepted in fixture files.
const (
	DateLayout     = "2006-01-02"
	ActivityLayout = "01/02/2006 03:04 PM"
)

// InvoiceFixture is the file form of an invoice.
type InvoiceFixture struct {
	ID                  string `yaml:"id"`
	Kind                string `yaml:"kind"`
	Patient             string `yaml:"patient"`
	Provider            string `yaml:"provider"`
	Phone               string `yaml:"phone"`
	Appointment         string `yaml:"appointment"`
	Created             string `yaml:"created"`
	Due                 string `yaml:"due"`
	Amount              string `yaml:"amount"`
	Status              string `yaml:"status"`
	StatusColor         string `yaml:"status_color"`
	Overdue             bool   `yaml:"overdue"`
	OverdueDays         int    `yaml:"overdue_days"`
	DueNote             string `yaml:"due_note"`
	Insurer             string `yaml:"insurer"`
	CaseManager         string `yaml:"case_manager"`
	CommunicationStatus string `yaml:"communication_status"`
	PaymentStatus       string `yaml:"payment_status"`
}

// ActivityFixture is the file form of an activity entry.
type ActivityFixture struct {
	Invoice     string `yaml:"invoice"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Category    string `yaml:"category"`
	At          string `yaml:"at"`
}

// File is the top-level shape of a fixture file.
type File struct {
	Invoices   []InvoiceFixture  `yaml:"invoices"`
	Activities []ActivityFixture `yaml:"activities"`
}

// Set is a parsed collection of fixtures ready for import.
type Set struct {
	Invoices   []billing.Invoice
	Activities []billing.Activity
}

// Count returns the number of invoices and activities in the set.
func (s Set) Count() (int, int) {
	return len(s.Invoices), len(s.Activities)
}

// OfKind returns the set's invoices of one kind.
func (s Set) OfKind(kind billing.Kind) []billing.Invoice {
	var out []billing.Invoice
	for _, inv := range s.Invoices {
		if inv.Kind == kind {
			out = append(out, inv)
		}
	}
	return out
}

// Demo parses the bundled demo fixtures.
func Demo() (Set, error) {
	return loadFS(demoFS, "demo/*.yaml")
}

// LoadGlob parses every file matching pattern. Patterns support "**".
func LoadGlob(pattern string) (Set, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return Set{}, fmt.Errorf("invalid fixture pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return Set{}, fmt.Errorf("no fixture files match %q", pattern)
	}
	slices.Sort(matches)

	var set Set
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return Set{}, fmt.Errorf("read fixture %s: %w", m, err)
		}
		if err := set.parse(m, data); err != nil {
			return Set{}, err
		}
	}
	return set, set.check()
}

func loadFS(fsys fs.FS, pattern string) (Set, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return Set{}, err
	}
	slices.Sort(matches)

	var set Set
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return Set{}, err
		}
		if err := set.parse(path.Base(m), data); err != nil {
			return Set{}, err
		}
	}
	return set, set.check()
}

// Parse decodes a single fixture document. name is used in errors.
func Parse(name string, data []byte) (Set, error) {
	var set Set
	if err := set.parse(name, data); err != nil {
		return Set{}, err
	}
	return set, set.check()
}

func (s *Set) parse(name string, data []byte) error {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse fixture %s: %w", name, err)
	}

	for i, fx := range f.Invoices {
		inv, err := fx.Invoice()
		if err != nil {
			return fmt.Errorf("%s: invoices[%d]: %w", name, i, err)
		}
		s.Invoices = append(s.Invoices, inv)
	}
	for i, fx := range f.Activities {
		a, err := fx.Activity()
		if err != nil {
			return fmt.Errorf("%s: activities[%d]: %w", name, i, err)
		}
		s.Activities = append(s.Activities, a)
	}
	return nil
}

// check rejects duplicate ids and activities for unknown invoices.
func (s Set) check() error {
	seen := make(map[string]struct{}, len(s.Invoices))
	for _, inv := range s.Invoices {
		if _, ok := seen[inv.ID]; ok {
			return fmt.Errorf("duplicate invoice id %q", inv.ID)
		}
		seen[inv.ID] = struct{}{}
	}
	for _, a := range s.Activities {
		if _, ok := seen[a.InvoiceID]; !ok {
			return fmt.Errorf("activity %q references unknown invoice %q", a.Description, a.InvoiceID)
		}
	}
	return nil
}

// Invoice converts the fixture into a billing invoice.
func (fx InvoiceFixture) Invoice() (billing.Invoice, error) {
	if strings.TrimSpace(fx.ID) == "" {
		return billing.Invoice{}, errors.New("id is required")
	}

	kind := billing.KindPatient
	if fx.Kind != "" {
		k, err := billing.ParseKind(fx.Kind)
		if err != nil {
			return billing.Invoice{}, err
		}
		kind = k
	}

	amount, err := billing.ParseMoney(fx.Amount)
	if err != nil {
		return billing.Invoice{}, fmt.Errorf("amount: %w", err)
	}
	if amount.LessThan(decimal.Zero) {
		return billing.Invoice{}, fmt.Errorf("amount must not be negative, got %s", fx.Amount)
	}

	inv := billing.Invoice{
		ID:                  fx.ID,
		Kind:                kind,
		Patient:             fx.Patient,
		Provider:            fx.Provider,
		Phone:               fx.Phone,
		Amount:              amount,
		Status:              fx.Status,
		StatusColor:         fx.StatusColor,
		Overdue:             fx.Overdue || fx.OverdueDays > 0,
		OverdueDays:         fx.OverdueDays,
		DueNote:             fx.DueNote,
		Insurer:             fx.Insurer,
		CaseManager:         fx.CaseManager,
		CommunicationStatus: fx.CommunicationStatus,
		PaymentStatus:       fx.PaymentStatus,
	}

	if inv.Appointment, err = parseTime(billing.AppointmentLayout, fx.Appointment); err != nil {
		return billing.Invoice{}, fmt.Errorf("appointment: %w", err)
	}
	if inv.CreatedAt, err = parseTime(DateLayout, fx.Created); err != nil {
		return billing.Invoice{}, fmt.Errorf("created: %w", err)
	}
	if inv.DueDate, err = parseTime(DateLayout, fx.Due); err != nil {
		return billing.Invoice{}, fmt.Errorf("due: %w", err)
	}

	switch kind {
	case billing.KindPatient:
		if inv.Status == "" {
			inv.Status = billing.StatusTextTwice
		}
		if inv.StatusColor == "" {
			inv.StatusColor = billing.StatusColor(inv.Status)
		}
	case billing.KindWorkcover:
		if inv.PaymentStatus == "" {
			inv.PaymentStatus = billing.PaymentUnpaid
		}
		if inv.StatusColor == "" {
			inv.StatusColor = billing.CommunicationColor(inv.CommunicationStatus)
		}
	}

	return inv, nil
}

// Activity converts the fixture into a billing activity.
func (fx ActivityFixture) Activity() (billing.Activity, error) {
	if fx.Invoice == "" {
		return billing.Activity{}, errors.New("invoice is required")
	}
	at, err := parseTime(ActivityLayout, fx.At)
	if err != nil {
		return billing.Activity{}, fmt.Errorf("at: %w", err)
	}

	typ := billing.ActivityType(fx.Type)
	if typ == "" {
		typ = billing.ActivityNote
	}
	a := billing.NewActivity(fx.Invoice, typ, fx.Author, fx.Description, at)
	if fx.Category != "" {
		a.Category = fx.Category
	}
	return a, nil
}

func parseTime(layout, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(layout, value, time.Local)
}

// Result reports what an import wrote.
type Result struct {
	Invoices   int
	Activities int
}

// Import upserts the set's invoices and appends its activities.
// Activities are only written for invoices that did not exist before the
// import, so re-seeding does not duplicate history.
func Import(ctx context.Context, set Set, invoices billing.InvoiceStore, activities billing.ActivityStore) (Result, error) {
	var res Result
	fresh := make(map[string]bool, len(set.Invoices))

	for _, inv := range set.Invoices {
		_, err := invoices.Get(ctx, inv.ID)
		switch {
		case errors.Is(err, billing.ErrNotFound):
			fresh[inv.ID] = true
		case err != nil:
			return res, err
		}

		if err := invoices.Upsert(ctx, inv); err != nil {
			return res, fmt.Errorf("import invoice %s: %w", inv.ID, err)
		}
		res.Invoices++
	}

	for _, a := range set.Activities {
		if !fresh[a.InvoiceID] {
			continue
		}
		if err := activities.Append(ctx, a); err != nil {
			return res, fmt.Errorf("import activity for %s: %w", a.InvoiceID, err)
		}
		res.Activities++
	}

	return res, nil
}
