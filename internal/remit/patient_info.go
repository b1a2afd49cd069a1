package remit

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/colonyops/remit/internal/core/billing"
)

// PatientMarkdown renders the patient info panel. Times in the activity
// list are relative to now.
func PatientMarkdown(d Details, now time.Time) string {
	inv := d.Invoice
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", inv.Patient)

	b.WriteString("| | |\n|---|---|\n")
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "| **%s** | %s |\n", k, v)
		}
	}
	row("Invoice", inv.ID)
	row("Phone", inv.Phone)
	row("Provider", inv.Provider)
	if !inv.Appointment.IsZero() {
		row("Appointment", inv.Appointment.Format(billing.AppointmentLayout))
	}
	row("Amount", billing.FormatMoney(inv.Amount))
	row("Status", inv.StatusLabel())
	if !inv.IsPaid() {
		row("Due", inv.DueDisplay())
	}
	if inv.Kind == billing.KindWorkcover {
		row("Insurer", inv.Insurer)
		row("Case manager", inv.CaseManager)
		row("Communication", inv.CommunicationStatus)
	}

	if len(d.Payments) > 0 {
		b.WriteString("\n## Payments\n\n")
		for _, p := range d.Payments {
			fmt.Fprintf(&b, "- %s via %s on %s", billing.FormatMoney(p.AmountPaid), p.Method, p.PaidOn.Format(billing.PaymentDateLayout))
			if p.Receipt != "" {
				fmt.Fprintf(&b, " (receipt `%s`)", p.Receipt)
			}
			b.WriteString("\n")
		}
	}

	if len(d.Schedule) > 0 {
		b.WriteString("\n## Upcoming follow-ups\n\n")
		for _, s := range d.Schedule {
			fmt.Fprintf(&b, "%d. %s %s (%s)\n", s.Attempt, s.Channel.Title(), s.SendAt.Format(billing.AppointmentLayout), humanize.RelTime(s.SendAt, now, "ago", "from now"))
		}
	}

	b.WriteString("\n## Activity\n\n")
	if len(d.Activities) == 0 {
		b.WriteString("_No activity recorded._\n")
		return b.String()
	}
	for _, a := range d.Activities {
		fmt.Fprintf(&b, "- **%s** by %s, %s  \n  %s\n", a.Category, a.Author, humanize.RelTime(a.CreatedAt, now, "ago", "from now"), a.Description)
	}
	return b.String()
}
