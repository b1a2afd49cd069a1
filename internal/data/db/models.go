package db

// Invoice is a row of the invoices table. Times are unix nanoseconds and
// amounts are decimal strings.
type Invoice struct {
	ID                  string
	Kind                string
	Patient             string
	Provider            string
	Phone               string
	Appointment         int64
	CreatedAt           int64
	DueDate             int64
	Amount              string
	Status              string
	StatusColor         string
	Overdue             bool
	OverdueDays         int64
	DueNote             string
	Insurer             string
	CaseManager         string
	CommunicationStatus string
	PaymentStatus       string
	UpdatedAt           int64
}

type Activity struct {
	ID          string
	InvoiceID   string
	Type        string
	Description string
	Author      string
	Category    string
	CreatedAt   int64
}

type SequenceRule struct {
	InvoiceID          string
	InitialDelayDays   int64
	RepeatIntervalDays int64
	MaxAttempts        int64
	SkipWeekends       bool
	UpdatedAt          int64
}

type ScheduledSend struct {
	ID        string
	InvoiceID string
	Channel   string
	Message   string
	SendAt    int64
	Attempt   int64
}

type Payment struct {
	ID         string
	InvoiceID  string
	AmountPaid string
	Method     string
	PaidOn     int64
	Receipt    string
	Notes      string
	CreatedAt  int64
}
