// Package billing defines the invoice domain: invoices and claims, the
// activity log, follow-up plans, sequence rules, payments and the
// summaries shown on the dashboard.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// Kind separates patient invoices from workcover claims.
type Kind string

const (
	KindPatient   Kind = "patient"
	KindWorkcover Kind = "workcover"
)

// Kinds lists every invoice kind in tab order.
var Kinds = []Kind{KindPatient, KindWorkcover}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPatient, KindWorkcover:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown invoice kind %q", s)
}

// Title returns the tab label for the kind.
func (k Kind) Title() string {
	if k == KindWorkcover {
		return "Workcover"
	}
	return "Patients"
}

// Patient invoice status labels.
const (
	StatusTextTwice   = "Text x2"
	StatusPromptSent  = "Prompt Sent"
	StatusCallFailed  = "Call Failed"
	StatusAIScheduled = "AI Scheduled"
	StatusPaid        = "Paid"
)

// Workcover payment statuses.
const (
	PaymentPaid    = "Paid"
	PaymentUnpaid  = "Unpaid"
	PaymentOverdue = "Overdue"
)

// PatientStatuses are the status selector values for patient invoices,
// starting with the catch-all.
var PatientStatuses = []string{"All", StatusTextTwice, StatusPromptSent, StatusCallFailed, StatusAIScheduled, StatusPaid}

// PaymentStatuses are the status selector values for workcover claims.
var PaymentStatuses = []string{"All", PaymentUnpaid, PaymentOverdue, PaymentPaid}

// StatusesFor returns the status selector values for kind.
func StatusesFor(kind Kind) []string {
	if kind == KindWorkcover {
		return PaymentStatuses
	}
	return PatientStatuses
}

// Color tags used for status badges. The TUI maps them to palette colors.
const (
	ColorPurple = "purple"
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorBlue   = "blue"
	ColorOrange = "orange"
	ColorYellow = "yellow"
	ColorGray   = "gray"
)

var statusColors = map[string]string{
	StatusTextTwice:   ColorPurple,
	StatusPromptSent:  ColorGreen,
	StatusCallFailed:  ColorRed,
	StatusAIScheduled: ColorBlue,
	StatusPaid:        ColorGray,
}

// StatusColor returns the color tag for a patient status label.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return ColorGray
}

var communicationColors = map[string]string{
	"Will be paid by 30th Oct":   ColorBlue,
	"Waiting for response":       ColorOrange,
	"AI Call Scheduled":          ColorPurple,
	"Follow up in Progress":      ColorYellow,
	"Awaiting Remittance":        ColorGreen,
	"Payment Scheduled 2 Nov":    ColorBlue,
	"Status Confirmed via Email": ColorGreen,
	"Paid Remittance Received":   ColorGreen,
	"Scheduled":                  ColorBlue,
	"Documentation required":     ColorOrange,
	"In progress":                ColorBlue,
	"Follow up required":         ColorRed,
	"Completed":                  ColorGreen,
}

// CommunicationColor returns the color tag for a claim's communication
// status. Unknown statuses are gray.
func CommunicationColor(status string) string {
	if c, ok := communicationColors[status]; ok {
		return c
	}
	return ColorGray
}

// Invoice is a single billable record. Patient invoices and workcover
// claims share the type; the claim-only fields are empty for patients.
type Invoice struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Patient     string          `json:"patient"`
	Provider    string          `json:"provider"`
	Phone       string          `json:"phone,omitempty"`
	Appointment time.Time       `json:"appointment"`
	CreatedAt   time.Time       `json:"created_at"`
	DueDate     time.Time       `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	StatusColor string          `json:"status_color"`
	Overdue     bool            `json:"overdue"`
	OverdueDays int             `json:"overdue_days"`
	DueNote     string          `json:"due_note,omitempty"`

	Insurer             string `json:"insurer,omitempty"`
	CaseManager         string `json:"case_manager,omitempty"`
	CommunicationStatus string `json:"communication_status,omitempty"`
	PaymentStatus       string `json:"payment_status,omitempty"`
}

// IsPaid reports whether the invoice has been settled.
func (inv Invoice) IsPaid() bool {
	if inv.Kind == KindWorkcover {
		return inv.PaymentStatus == PaymentPaid
	}
	return inv.Status == StatusPaid
}

// IsOverdue reports whether the invoice is past due and unpaid.
func (inv Invoice) IsOverdue() bool {
	if inv.IsPaid() {
		return false
	}
	return inv.Overdue || inv.OverdueDays > 0 || inv.PaymentStatus == PaymentOverdue
}

// StatusLabel is the label shown in the status column: the payment
// status for claims and the follow-up status for patients.
func (inv Invoice) StatusLabel() string {
	if inv.Kind == KindWorkcover {
		return inv.PaymentStatus
	}
	return inv.Status
}

// DueDisplay returns the due note shown under the due date.
func (inv Invoice) DueDisplay() string {
	if inv.DueNote != "" {
		return inv.DueNote
	}
	return OverdueText(inv.OverdueDays)
}

// OverdueText formats a day count as "N days overdue", or "On time".
func OverdueText(days int) string {
	switch {
	case days <= 0:
		return "On time"
	case days == 1:
		return "1 day overdue"
	default:
		return fmt.Sprintf("%d days overdue", days)
	}
}

// MarkPaid moves the invoice into its paid state.
func (inv *Invoice) MarkPaid() {
	inv.Overdue = false
	inv.OverdueDays = 0
	inv.DueNote = ""
	if inv.Kind == KindWorkcover {
		inv.PaymentStatus = PaymentPaid
		return
	}
	inv.Status = StatusPaid
	inv.StatusColor = StatusColor(StatusPaid)
}

// IDs returns the identifiers of invoices in order.
func IDs(invoices []Invoice) []string {
	out := make([]string, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.ID
	}
	return out
}
