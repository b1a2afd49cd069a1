package billing

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Channel is how a follow-up reaches the patient.
type Channel string

const (
	ChannelSMS    Channel = "sms"
	ChannelEmail  Channel = "email"
	ChannelPhone  Channel = "phone"
	ChannelAICall Channel = "ai_call"
)

// Channels lists the channels in dialog order.
var Channels = []Channel{ChannelSMS, ChannelEmail, ChannelPhone, ChannelAICall}

// Title is the channel's display label.
func (c Channel) Title() string {
	switch c {
	case ChannelSMS:
		return "SMS"
	case ChannelEmail:
		return "Email"
	case ChannelPhone:
		return "Phone"
	case ChannelAICall:
		return "AI Call"
	}
	return string(c)
}

// ActivityType maps the channel onto the activity it records.
func (c Channel) ActivityType() ActivityType {
	switch c {
	case ChannelEmail:
		return ActivityEmail
	case ChannelPhone:
		return ActivityCall
	case ChannelAICall:
		return ActivityAICall
	}
	return ActivitySMS
}

// CallOutcome records the result of a phone follow-up.
type CallOutcome string

const (
	OutcomeNone    CallOutcome = ""
	OutcomeFailed  CallOutcome = "failed"
	OutcomeSuccess CallOutcome = "success"
)

// SendOption is a labelled delay before the first send.
type SendOption struct {
	Label string
	Delay time.Duration
}

// SendOptions are the send-time choices, the first being the default.
var SendOptions = []SendOption{
	{"Send now", 0},
	{"Send in 1 hour", time.Hour},
	{"Send in 2 hours", 2 * time.Hour},
	{"Send in 6 hours", 6 * time.Hour},
	{"Send tomorrow", 24 * time.Hour},
	{"Send in 3 days", 3 * 24 * time.Hour},
	{"Send in 1 week", 7 * 24 * time.Hour},
}

// RepeatNever disables repeating sends.
const RepeatNever = "Never"

// DefaultRepeat is the repeat frequency preselected in the dialog.
const DefaultRepeat = "Every week"

// RepeatOption maps a repeat label onto a cron spec.
type RepeatOption struct {
	Label string
	Spec  string
}

// RepeatOptions are the built-in repeat frequencies.
var RepeatOptions = []RepeatOption{
	{RepeatNever, ""},
	{"Every day", "@every 24h"},
	{"Every 2 days", "@every 48h"},
	{"Every 3 days", "@every 72h"},
	{"Every week", "@every 168h"},
	{"Every 2 weeks", "@every 336h"},
	{"Every month", "@every 720h"},
}

// SendDelay returns the delay for a send-time label.
func SendDelay(label string) (time.Duration, error) {
	for _, o := range SendOptions {
		if o.Label == label {
			return o.Delay, nil
		}
	}
	return 0, fmt.Errorf("unknown send time %q", label)
}

// RepeatSchedule resolves a repeat label to a schedule. Labels not among
// RepeatOptions are looked up in custom, which maps labels to standard
// cron specs. RepeatNever yields a nil schedule.
func RepeatSchedule(label string, custom map[string]string) (cron.Schedule, error) {
	spec, ok := "", false
	for _, o := range RepeatOptions {
		if o.Label == label {
			spec, ok = o.Spec, true
			break
		}
	}
	if !ok {
		spec, ok = custom[label]
	}
	if !ok {
		return nil, fmt.Errorf("unknown repeat frequency %q", label)
	}
	if spec == "" {
		return nil, nil
	}

	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid repeat schedule %q: %w", spec, err)
	}
	return sched, nil
}

// FollowUp is a reminder request made from the follow-up dialog.
type FollowUp struct {
	InvoiceID   string      `json:"invoice_id" validate:"required"`
	Channel     Channel     `json:"channel" validate:"required,oneof=sms email phone ai_call"`
	SendIn      string      `json:"send_in" validate:"required"`
	Repeat      string      `json:"repeat" validate:"required"`
	Message     string      `json:"message" validate:"required_unless=Channel phone,max=1600"`
	CallNotes   string      `json:"call_notes,omitempty" validate:"max=2000"`
	CallOutcome CallOutcome `json:"call_outcome,omitempty" validate:"omitempty,oneof=failed success"`
}

// NewFollowUp returns a follow-up with the dialog defaults.
func NewFollowUp(invoiceID, message string) FollowUp {
	return FollowUp{
		InvoiceID: invoiceID,
		Channel:   ChannelSMS,
		SendIn:    SendOptions[0].Label,
		Repeat:    DefaultRepeat,
		Message:   message,
	}
}

// Plan returns the send times of the follow-up starting from now, capped
// at the rule's maximum attempts.
func (f FollowUp) Plan(now time.Time, rule SequenceRule, custom map[string]string) ([]time.Time, error) {
	delay, err := SendDelay(f.SendIn)
	if err != nil {
		return nil, err
	}
	sched, err := RepeatSchedule(f.Repeat, custom)
	if err != nil {
		return nil, err
	}
	return plan(now.Add(delay), sched, max(rule.MaxAttempts, 1), rule.SkipWeekends), nil
}
