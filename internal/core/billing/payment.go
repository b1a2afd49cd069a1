package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []string{
	"Credit Card",
	"Bank Transfer",
	"Direct Debit",
	"Cash",
	"Cheque",
	"PayPal",
	"Other",
}

// PaymentDateLayout is the input format of payment dates (MM/DD/YYYY).
const PaymentDateLayout = "01/02/2006"

// ErrAlreadyPaid is returned when recording a payment on a paid invoice.
var ErrAlreadyPaid = errors.New("invoice is already paid")

// Payment records money received against an invoice.
type Payment struct {
	ID         string          `json:"id"`
	InvoiceID  string          `json:"invoice_id" validate:"required"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Method     string          `json:"method" validate:"required,payment_method"`
	PaidOn     time.Time       `json:"paid_on" validate:"required"`
	Receipt    string          `json:"receipt,omitempty" validate:"max=255"`
	Notes      string          `json:"notes,omitempty" validate:"max=2000"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewPayment creates a payment for inv with the full invoice amount.
func NewPayment(inv Invoice) Payment {
	return Payment{
		ID:         uuid.NewString(),
		InvoiceID:  inv.ID,
		AmountPaid: inv.Amount,
	}
}

// Validate checks the payment fields and that the amount is positive.
func (p Payment) Validate() error {
	if err := validatorInstance().Struct(p); err != nil {
		return err
	}
	if !p.AmountPaid.IsPositive() {
		return fmt.Errorf("amount paid must be greater than zero, got %s", p.AmountPaid.StringFixed(2))
	}
	return nil
}

// ParsePaymentDate parses a MM/DD/YYYY date in the local time zone.
func ParsePaymentDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(PaymentDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("payment date must be MM/DD/YYYY: %w", err)
	}
	return t, nil
}
