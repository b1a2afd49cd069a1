package logging

import "context"

type contextKey string

const (
	invoiceIDKey contextKey = "invoice_id"
	operatorKey  contextKey = "operator"
)

// WithInvoiceID adds an invoice ID to the context.
func WithInvoiceID(ctx context.Context, invoiceID string) context.Context {
	return context.WithValue(ctx, invoiceIDKey, invoiceID)
}

// WithOperator adds the name of the desk operator performing an action.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey, operator)
}

// GetInvoiceID retrieves the invoice ID from the context.
// Returns empty string if not present.
func GetInvoiceID(ctx context.Context) string {
	if id, ok := ctx.Value(invoiceIDKey).(string); ok {
		return id
	}
	return ""
}

// GetOperator retrieves the operator from the context.
// Returns empty string if not present.
func GetOperator(ctx context.Context) string {
	if op, ok := ctx.Value(operatorKey).(string); ok {
		return op
	}
	return ""
}
