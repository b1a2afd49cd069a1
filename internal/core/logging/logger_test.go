package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "parse log line")
	return entry
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger := Component("test-component")
	logger.Info().Msg("test message")

	entry := decode(t, &buf)
	assert.Equal(t, "test-component", entry["cmp"])
	assert.Equal(t, "test message", entry["message"])
}

func TestComponent_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	ctx := WithInvoiceID(context.Background(), "INV-005")
	ctx = WithOperator(ctx, "reception")

	logger := Component("actions")
	logger.Info().Ctx(ctx).Msg("reminder queued")

	entry := decode(t, &buf)
	assert.Equal(t, "INV-005", entry["invoice_id"])
	assert.Equal(t, "reception", entry["operator"])
}

func TestContextHook_BackgroundContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})

	logger.Info().Ctx(context.Background()).Msg("plain")

	entry := decode(t, &buf)
	assert.NotContains(t, entry, "invoice_id")
	assert.NotContains(t, entry, "operator")
}

func TestGetters_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetInvoiceID(ctx))
	assert.Empty(t, GetOperator(ctx))
}
