// Package report renders invoice statements as PDF documents.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/colonyops/remit/internal/core/billing"
)

// Statement is the content of an invoice statement.
type Statement struct {
	Clinic      string
	PaymentLink string
	Invoice     billing.Invoice
	Payments    []billing.Payment
	Activities  []billing.Activity
	Schedule    []billing.ScheduledSend
	GeneratedAt time.Time
}

const (
	pageWidth  = 210.0
	margin     = 15.0
	lineHeight = 6.0
	labelWidth = 45.0
)

// Render writes the statement as a PDF to w.
func Render(w io.Writer, s Statement) error {
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = time.Now()
	}
	inv := s.Invoice

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle("Statement "+inv.ID, true)
	pdf.SetAuthor(s.Clinic, true)
	pdf.SetCreator("remit", true)
	pdf.SetCreationDate(s.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(s.Clinic), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, lineHeight, "Statement for invoice "+inv.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Generated "+s.GeneratedAt.Format("2 January 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, lineHeight, tr(value), "", 1, "L", false, 0, "")
	}

	field("Patient", inv.Patient)
	field("Provider", inv.Provider)
	if !inv.Appointment.IsZero() {
		field("Appointment", inv.Appointment.Format(billing.AppointmentLayout))
	}
	if !inv.CreatedAt.IsZero() {
		field("Invoice date", inv.CreatedAt.Format("2 January 2006"))
	}
	if !inv.DueDate.IsZero() {
		field("Due date", inv.DueDate.Format("2 January 2006"))
	}
	if inv.Kind == billing.KindWorkcover {
		field("Insurer", inv.Insurer)
		field("Case manager", inv.CaseManager)
	}
	field("Status", inv.StatusLabel())
	pdf.Ln(4)

	pdf.SetFillColor(238, 238, 238)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(pageWidth-2*margin-40, 9, "Amount due", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 9, billing.FormatMoney(Outstanding(inv, s.Payments)), "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if inv.IsOverdue() {
		pdf.SetTextColor(180, 30, 30)
		pdf.CellFormat(0, lineHeight, inv.DueDisplay(), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	if len(s.Payments) > 0 {
		section(pdf, "Payments")
		for _, p := range s.Payments {
			line := fmt.Sprintf("%s  %s via %s", p.PaidOn.Format(billing.PaymentDateLayout), billing.FormatMoney(p.AmountPaid), p.Method)
			if p.Receipt != "" {
				line += "  (receipt " + p.Receipt + ")"
			}
			pdf.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if len(s.Schedule) > 0 {
		section(pdf, "Upcoming reminders")
		for _, send := range s.Schedule {
			line := fmt.Sprintf("%s %s on %s", humanize.Ordinal(send.Attempt), send.Channel.Title(), send.SendAt.Format("2 Jan 2006"))
			pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if len(s.Activities) > 0 {
		section(pdf, "History")
		for _, a := range s.Activities {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s  %s (%s)", a.CreatedAt.Format("02/01/2006 15:04"), a.Category, a.Author)), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(a.Description), "", "L", false)
		}
	}

	if s.PaymentLink != "" && !inv.IsPaid() {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(30, 80, 180)
		pdf.WriteLinkString(lineHeight, "Pay online: "+s.PaymentLink, s.PaymentLink)
		pdf.SetTextColor(0, 0, 0)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render statement %s: %w", inv.ID, err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

// Outstanding is the invoice amount less payments, never negative. Paid
// invoices owe nothing.
func Outstanding(inv billing.Invoice, payments []billing.Payment) decimal.Decimal {
	if inv.IsPaid() {
		return decimal.Zero
	}
	due := inv.Amount
	for _, p := range payments {
		due = due.Sub(p.AmountPaid)
	}
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// Path returns where a statement for inv is written under dir: one
// directory per patient, named by the invoice's attachment name.
func Path(dir string, inv billing.Invoice) string {
	patient := slug.Make(inv.Patient)
	if patient == "" {
		patient = "unknown"
	}
	return filepath.Join(dir, patient, billing.AttachmentName(inv.ID))
}

// WriteFile renders the statement under dir and returns the file path.
func WriteFile(dir string, s Statement) (string, error) {
	path := Path(dir, s.Invoice)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create statement file: %w", err)
	}
	if err := Render(f, s); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close statement file: %w", err)
	}
	return path, nil
}
