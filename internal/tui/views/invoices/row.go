package invoices

import (
	"strings"
	"time"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/core/styles"
	"github.com/colonyops/remit/internal/tui/components"
)

const (
	dateLayout  = "02 Jan 2006"
	apptLayout  = "02 Jan 15:04"
	cellGap     = " "
	minFlexCell = 12
)

type column struct {
	title string
	width int // 0 = flexible
	right bool
	cell  func(inv billing.Invoice) string
}

func patientColumns() []column {
	return []column{
		{title: "Invoice", width: 9, cell: func(inv billing.Invoice) string { return inv.ID }},
		{title: "Patient", cell: func(inv billing.Invoice) string { return inv.Patient }},
		{title: "Provider", width: 16, cell: func(inv billing.Invoice) string { return inv.Provider }},
		{title: "Appointment", width: 12, cell: func(inv billing.Invoice) string { return formatTime(inv.Appointment, apptLayout) }},
		{title: "Due", width: 28, cell: dueCell},
		{title: "Amount", width: 10, right: true, cell: amountCell},
		{title: "Status", width: 12, cell: func(inv billing.Invoice) string { return styles.Badge(inv.Status, inv.StatusColor) }},
	}
}

func workcoverColumns() []column {
	return []column{
		{title: "Claim", width: 8, cell: func(inv billing.Invoice) string { return inv.ID }},
		{title: "Patient", cell: func(inv billing.Invoice) string { return inv.Patient }},
		{title: "Insurer", width: 18, cell: func(inv billing.Invoice) string { return inv.Insurer }},
		{title: "Case manager", width: 16, cell: func(inv billing.Invoice) string { return inv.CaseManager }},
		{title: "Due", width: 28, cell: dueCell},
		{title: "Amount", width: 10, right: true, cell: amountCell},
		{title: "Communication", width: 26, cell: func(inv billing.Invoice) string {
			return styles.Badge(inv.CommunicationStatus, billing.CommunicationColor(inv.CommunicationStatus))
		}},
		{title: "Payment", width: 8, cell: paymentCell},
	}
}

func columnsFor(kind billing.Kind) []column {
	if kind == billing.KindWorkcover {
		return workcoverColumns()
	}
	return patientColumns()
}

func dueCell(inv billing.Invoice) string {
	due := formatTime(inv.DueDate, dateLayout)
	note := inv.DueDisplay()
	if inv.IsPaid() {
		return due
	}
	if inv.IsOverdue() {
		return due + " " + styles.OverdueStyle.Render(note)
	}
	return due + " " + styles.TextMutedStyle.Render(note)
}

func amountCell(inv billing.Invoice) string {
	return billing.FormatMoney(inv.Amount)
}

func paymentCell(inv billing.Invoice) string {
	switch inv.PaymentStatus {
	case billing.PaymentPaid:
		return styles.Badge(inv.PaymentStatus, billing.ColorGreen)
	case billing.PaymentOverdue:
		return styles.Badge(inv.PaymentStatus, billing.ColorRed)
	default:
		return styles.Badge(inv.PaymentStatus, billing.ColorOrange)
	}
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}

// layoutColumns sizes the flexible column to fill width.
func layoutColumns(cols []column, width int) []column {
	fixed := len(styles.IconCheckboxOff) + len(cellGap) + len(styles.IconCursor) + len(cellGap)
	flex := 0
	for _, c := range cols {
		fixed += c.width + len(cellGap)
		if c.width == 0 {
			flex++
		}
	}
	out := make([]column, len(cols))
	copy(out, cols)
	if flex == 0 {
		return out
	}
	each := max((width-fixed)/flex, minFlexCell)
	for i := range out {
		if out[i].width == 0 {
			out[i].width = each
		}
	}
	return out
}

func fit(s string, width int, right bool) string {
	s = ansi.Truncate(s, width, "…")
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	if right {
		return components.Pad(pad) + s
	}
	return s + components.Pad(pad)
}

func checkbox(on bool) string {
	if on {
		return styles.IconCheckboxOn
	}
	return styles.IconCheckboxOff
}

// renderHeader renders the column titles with the select-all checkbox.
func renderHeader(cols []column, allSelected bool) string {
	var b strings.Builder
	b.WriteString(components.Pad(lipgloss.Width(styles.IconCursor)))
	b.WriteString(cellGap)
	b.WriteString(checkbox(allSelected))
	for _, c := range cols {
		b.WriteString(cellGap)
		b.WriteString(fit(c.title, c.width, c.right))
	}
	return styles.TableHeaderStyle.Render(b.String())
}

// renderRow renders one invoice row.
func renderRow(cols []column, inv billing.Invoice, cursor, selected bool) string {
	var b strings.Builder
	if cursor {
		b.WriteString(styles.TextPrimaryStyle.Render(styles.IconCursor))
	} else {
		b.WriteString(components.Pad(lipgloss.Width(styles.IconCursor)))
	}
	b.WriteString(cellGap)

	box := checkbox(selected)
	if selected {
		box = styles.RowSelectedStyle.Render(box)
	}
	b.WriteString(box)

	for _, c := range cols {
		b.WriteString(cellGap)
		b.WriteString(fit(c.cell(inv), c.width, c.right))
	}

	if cursor {
		return styles.RowCursorStyle.Render(b.String())
	}
	return styles.RowStyle.Render(b.String())
}
