package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Successf("INV-003 marked paid (%s)", "$315.00")
	p.Warnf("no payment link")
	p.Errorf("invoice is already paid")
	p.Success("Statement written", "/tmp/inv-003.pdf")
	p.Printf("plain %d", 1)

	assert.Equal(t, "✔ INV-003 marked paid ($315.00)\n"+
		"! no payment link\n"+
		"✘ invoice is already paid\n"+
		"✔ Statement written /tmp/inv-003.pdf\n"+
		"plain 1\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))
	assert.NotNil(t, Ctx(context.Background()), "falls back to stderr")
}
