package printer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Printf("plain %d", 1)
	p.Success("Added", "abc123")
	p.Warnf("careful %s", "now")
	p.Errorf("broken")
	p.Infof("fyi")

	out := buf.String()
	assert.Contains(t, out, "plain 1\n")
	assert.Contains(t, out, "Added")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "warning: careful now")
	assert.Contains(t, out, "error: broken")
	assert.Contains(t, out, "fyi")
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))
	assert.NotNil(t, Ctx(context.Background()))
}
