package billing

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an entry in an invoice's activity log.
type ActivityType string

const (
	ActivityNote      ActivityType = "patient_note"
	ActivitySMS       ActivityType = "sms"
	ActivityEmail     ActivityType = "email"
	ActivityCall      ActivityType = "call"
	ActivityVoicemail ActivityType = "voicemail"
	ActivityAICall    ActivityType = "ai_call"
	ActivityPayment   ActivityType = "payment"
	ActivityRules     ActivityType = "rules"
)

// IsReminder reports whether the activity counts as a reminder sent to
// the patient or case manager.
func (t ActivityType) IsReminder() bool {
	return t == ActivitySMS || t == ActivityEmail
}

var activityCategories = map[ActivityType]string{
	ActivityNote:      "Patient Note",
	ActivitySMS:       "SMS Reminder Sent",
	ActivityEmail:     "Email Sent",
	ActivityCall:      "Call Attempted",
	ActivityVoicemail: "Voicemail Left",
	ActivityAICall:    "AI Call Scheduled",
	ActivityPayment:   "Payment Recorded",
	ActivityRules:     "Sequence Updated",
}

// Category returns the default display category for the type.
func (t ActivityType) Category() string {
	if c, ok := activityCategories[t]; ok {
		return c
	}
	return string(t)
}

// Activity is a single entry in an invoice's history.
type Activity struct {
	ID          string       `json:"id"`
	InvoiceID   string       `json:"invoice_id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Author      string       `json:"author"`
	Category    string       `json:"category"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewActivity creates an activity with a fresh id and the type's default
// category.
func NewActivity(invoiceID string, typ ActivityType, author, description string, at time.Time) Activity {
	return Activity{
		ID:          uuid.NewString(),
		InvoiceID:   invoiceID,
		Type:        typ,
		Description: description,
		Author:      author,
		Category:    typ.Category(),
		CreatedAt:   at,
	}
}
