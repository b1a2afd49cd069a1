package stores

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/colonyops/remit/internal/core/billing"
	"github.com/colonyops/remit/internal/data/db"
)

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func invoiceToRow(inv billing.Invoice, now time.Time) db.Invoice {
	created := inv.CreatedAt
	if created.IsZero() {
		created = now
	}
	return db.Invoice{
		ID:                  inv.ID,
		Kind:                string(inv.Kind),
		Patient:             inv.Patient,
		Provider:            inv.Provider,
		Phone:               inv.Phone,
		Appointment:         toUnix(inv.Appointment),
		CreatedAt:           created.UnixNano(),
		DueDate:             toUnix(inv.DueDate),
		Amount:              inv.Amount.StringFixed(2),
		Status:              inv.Status,
		StatusColor:         inv.StatusColor,
		Overdue:             inv.Overdue,
		OverdueDays:         int64(inv.OverdueDays),
		DueNote:             inv.DueNote,
		Insurer:             inv.Insurer,
		CaseManager:         inv.CaseManager,
		CommunicationStatus: inv.CommunicationStatus,
		PaymentStatus:       inv.PaymentStatus,
		UpdatedAt:           now.UnixNano(),
	}
}

func rowToInvoice(row db.Invoice) (billing.Invoice, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return billing.Invoice{}, fmt.Errorf("invalid amount %q for invoice %s: %w", row.Amount, row.ID, err)
	}

	return billing.Invoice{
		ID:                  row.ID,
		Kind:                billing.Kind(row.Kind),
		Patient:             row.Patient,
		Provider:            row.Provider,
		Phone:               row.Phone,
		Appointment:         fromUnix(row.Appointment),
		CreatedAt:           fromUnix(row.CreatedAt),
		DueDate:             fromUnix(row.DueDate),
		Amount:              amount,
		Status:              row.Status,
		StatusColor:         row.StatusColor,
		Overdue:             row.Overdue,
		OverdueDays:         int(row.OverdueDays),
		DueNote:             row.DueNote,
		Insurer:             row.Insurer,
		CaseManager:         row.CaseManager,
		CommunicationStatus: row.CommunicationStatus,
		PaymentStatus:       row.PaymentStatus,
	}, nil
}

func rowToActivity(row db.Activity) billing.Activity {
	return billing.Activity{
		ID:          row.ID,
		InvoiceID:   row.InvoiceID,
		Type:        billing.ActivityType(row.Type),
		Description: row.Description,
		Author:      row.Author,
		Category:    row.Category,
		CreatedAt:   fromUnix(row.CreatedAt),
	}
}
