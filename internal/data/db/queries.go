package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the statements used by the stores.
type Queries struct {
	db DBTX
}

// New returns queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const invoiceColumns = `id, kind, patient, provider, phone, appointment, created_at, due_date,
	amount, status, status_color, overdue, overdue_days, due_note, insurer, case_manager,
	communication_status, payment_status, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row scanner) (Invoice, error) {
	var i Invoice
	err := row.Scan(
		&i.ID, &i.Kind, &i.Patient, &i.Provider, &i.Phone, &i.Appointment, &i.CreatedAt, &i.DueDate,
		&i.Amount, &i.Status, &i.StatusColor, &i.Overdue, &i.OverdueDays, &i.DueNote, &i.Insurer, &i.CaseManager,
		&i.CommunicationStatus, &i.PaymentStatus, &i.UpdatedAt,
	)
	return i, err
}

const listInvoicesByKind = `SELECT ` + invoiceColumns + `
FROM invoices
WHERE kind = ?
ORDER BY due_date ASC, id ASC`

func (q *Queries) ListInvoicesByKind(ctx context.Context, kind string) ([]Invoice, error) {
	rows, err := q.db.QueryContext(ctx, listInvoicesByKind, kind)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getInvoice = `SELECT ` + invoiceColumns + `
FROM invoices
WHERE id = ?`

func (q *Queries) GetInvoice(ctx context.Context, id string) (Invoice, error) {
	return scanInvoice(q.db.QueryRowContext(ctx, getInvoice, id))
}

const upsertInvoice = `INSERT INTO invoices (` + invoiceColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	kind = excluded.kind,
	patient = excluded.patient,
	provider = excluded.provider,
	phone = excluded.phone,
	appointment = excluded.appointment,
	due_date = excluded.due_date,
	amount = excluded.amount,
	status = excluded.status,
	status_color = excluded.status_color,
	overdue = excluded.overdue,
	overdue_days = excluded.overdue_days,
	due_note = excluded.due_note,
	insurer = excluded.insurer,
	case_manager = excluded.case_manager,
	communication_status = excluded.communication_status,
	payment_status = excluded.payment_status,
	updated_at = excluded.updated_at`

func (q *Queries) UpsertInvoice(ctx context.Context, i Invoice) error {
	_, err := q.db.ExecContext(ctx, upsertInvoice,
		i.ID, i.Kind, i.Patient, i.Provider, i.Phone, i.Appointment, i.CreatedAt, i.DueDate,
		i.Amount, i.Status, i.StatusColor, i.Overdue, i.OverdueDays, i.DueNote, i.Insurer, i.CaseManager,
		i.CommunicationStatus, i.PaymentStatus, i.UpdatedAt,
	)
	return err
}

type UpdateInvoiceStatusParams struct {
	ID                  string
	Status              string
	StatusColor         string
	Overdue             bool
	OverdueDays         int64
	DueNote             string
	CommunicationStatus string
	PaymentStatus       string
	UpdatedAt           int64
}

const updateInvoiceStatus = `UPDATE invoices SET
	status = ?,
	status_color = ?,
	overdue = ?,
	overdue_days = ?,
	due_note = ?,
	communication_status = ?,
	payment_status = ?,
	updated_at = ?
WHERE id = ?`

// UpdateInvoiceStatus returns the number of rows changed.
func (q *Queries) UpdateInvoiceStatus(ctx context.Context, arg UpdateInvoiceStatusParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateInvoiceStatus,
		arg.Status, arg.StatusColor, arg.Overdue, arg.OverdueDays, arg.DueNote,
		arg.CommunicationStatus, arg.PaymentStatus, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteInvoice = `DELETE FROM invoices WHERE id = ?`

// DeleteInvoice returns the number of rows removed.
func (q *Queries) DeleteInvoice(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteInvoice, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const insertActivity = `INSERT INTO activities (id, invoice_id, type, description, author, category, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertActivity(ctx context.Context, a Activity) error {
	_, err := q.db.ExecContext(ctx, insertActivity,
		a.ID, a.InvoiceID, a.Type, a.Description, a.Author, a.Category, a.CreatedAt,
	)
	return err
}

const listActivitiesForInvoice = `SELECT id, invoice_id, type, description, author, category, created_at
FROM activities
WHERE invoice_id = ?
ORDER BY created_at DESC, id ASC`

func (q *Queries) ListActivitiesForInvoice(ctx context.Context, invoiceID string) ([]Activity, error) {
	return q.listActivities(ctx, listActivitiesForInvoice, invoiceID)
}

const listActivitiesByKind = `SELECT a.id, a.invoice_id, a.type, a.description, a.author, a.category, a.created_at
FROM activities a
JOIN invoices i ON i.id = a.invoice_id
WHERE i.kind = ?
ORDER BY a.created_at DESC, a.id ASC`

func (q *Queries) ListActivitiesByKind(ctx context.Context, kind string) ([]Activity, error) {
	return q.listActivities(ctx, listActivitiesByKind, kind)
}

func (q *Queries) listActivities(ctx context.Context, query string, arg string) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.InvoiceID, &a.Type, &a.Description, &a.Author, &a.Category, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const getSequenceRule = `SELECT invoice_id, initial_delay_days, repeat_interval_days, max_attempts, skip_weekends, updated_at
FROM sequence_rules
WHERE invoice_id = ?`

func (q *Queries) GetSequenceRule(ctx context.Context, invoiceID string) (SequenceRule, error) {
	var r SequenceRule
	err := q.db.QueryRowContext(ctx, getSequenceRule, invoiceID).Scan(
		&r.InvoiceID, &r.InitialDelayDays, &r.RepeatIntervalDays, &r.MaxAttempts, &r.SkipWeekends, &r.UpdatedAt,
	)
	return r, err
}

const saveSequenceRule = `INSERT INTO sequence_rules (invoice_id, initial_delay_days, repeat_interval_days, max_attempts, skip_weekends, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (invoice_id) DO UPDATE SET
	initial_delay_days = excluded.initial_delay_days,
	repeat_interval_days = excluded.repeat_interval_days,
	max_attempts = excluded.max_attempts,
	skip_weekends = excluded.skip_weekends,
	updated_at = excluded.updated_at`

func (q *Queries) SaveSequenceRule(ctx context.Context, r SequenceRule) error {
	_, err := q.db.ExecContext(ctx, saveSequenceRule,
		r.InvoiceID, r.InitialDelayDays, r.RepeatIntervalDays, r.MaxAttempts, r.SkipWeekends, r.UpdatedAt,
	)
	return err
}

const deleteScheduledSends = `DELETE FROM scheduled_sends WHERE invoice_id = ?`

func (q *Queries) DeleteScheduledSends(ctx context.Context, invoiceID string) error {
	_, err := q.db.ExecContext(ctx, deleteScheduledSends, invoiceID)
	return err
}

const insertScheduledSend = `INSERT INTO scheduled_sends (id, invoice_id, channel, message, send_at, attempt)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertScheduledSend(ctx context.Context, s ScheduledSend) error {
	_, err := q.db.ExecContext(ctx, insertScheduledSend,
		s.ID, s.InvoiceID, s.Channel, s.Message, s.SendAt, s.Attempt,
	)
	return err
}

const listScheduledSends = `SELECT id, invoice_id, channel, message, send_at, attempt
FROM scheduled_sends
WHERE invoice_id = ?
ORDER BY send_at ASC, attempt ASC`

func (q *Queries) ListScheduledSends(ctx context.Context, invoiceID string) ([]ScheduledSend, error) {
	rows, err := q.db.QueryContext(ctx, listScheduledSends, invoiceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ScheduledSend
	for rows.Next() {
		var s ScheduledSend
		if err := rows.Scan(&s.ID, &s.InvoiceID, &s.Channel, &s.Message, &s.SendAt, &s.Attempt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const insertPayment = `INSERT INTO payments (id, invoice_id, amount_paid, method, paid_on, receipt, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertPayment(ctx context.Context, p Payment) error {
	_, err := q.db.ExecContext(ctx, insertPayment,
		p.ID, p.InvoiceID, p.AmountPaid, p.Method, p.PaidOn, p.Receipt, p.Notes, p.CreatedAt,
	)
	return err
}

const listPaymentsForInvoice = `SELECT id, invoice_id, amount_paid, method, paid_on, receipt, notes, created_at
FROM payments
WHERE invoice_id = ?
ORDER BY paid_on ASC, created_at ASC`

func (q *Queries) ListPaymentsForInvoice(ctx context.Context, invoiceID string) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx, listPaymentsForInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.AmountPaid, &p.Method, &p.PaidOn, &p.Receipt, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
