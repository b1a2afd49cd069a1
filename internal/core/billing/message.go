package billing

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DefaultMessage is the reminder text preloaded in the follow-up dialog.
const DefaultMessage = "Hi {{ .PatientName }}, this is a reminder to complete your payment of {{ .Amount }} for your appointment on {{ .Date }}. You can pay using the link below."

// AppointmentLayout formats appointment times in messages and tables.
const AppointmentLayout = "2006-01-02, 03:04 PM"

// MessageData is the data available to reminder templates.
type MessageData struct {
	PatientName string
	Amount      string
	Date        string
	InvoiceID   string
	Provider    string
	PaymentLink string
	Clinic      string
	Vars        map[string]any
}

// NewMessageData builds template data for inv.
func NewMessageData(inv Invoice, paymentLink, clinic string) MessageData {
	return MessageData{
		PatientName: inv.Patient,
		Amount:      FormatMoney(inv.Amount),
		Date:        inv.Appointment.Format(AppointmentLayout),
		InvoiceID:   inv.ID,
		Provider:    inv.Provider,
		PaymentLink: paymentLink,
		Clinic:      clinic,
	}
}

// RenderMessage executes a reminder template. Templates have the sprig
// function set available.
func RenderMessage(tmpl string, data MessageData) (string, error) {
	t, err := template.New("message").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse message template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render message template: %w", err)
	}
	return buf.String(), nil
}
