// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/almanac/internal/core/styles"
)

type ctxKey struct{}

// Printer prints human-facing status messages. Command results go to the
// command writer; status lines go here.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext stores p in ctx.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stderr)
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Success prints a title with an optional muted detail.
func (p *Printer) Success(title, detail string) {
	line := styles.SuccessStyle.Render(styles.IconCompleted + " " + title)
	if detail != "" {
		line += " " + styles.MutedStyle.Render(detail)
	}
	_, _ = fmt.Fprintln(p.w, line)
}

// Successf prints a formatted success line.
func (p *Printer) Successf(format string, args ...any) {
	p.Success(fmt.Sprintf(format, args...), "")
}

// Infof prints a formatted muted line.
func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.MutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Warnf prints a formatted warning line.
func (p *Printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.WarningStyle.Render("warning: "+fmt.Sprintf(format, args...)))
}

// Errorf prints a formatted error line.
func (p *Printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.ErrorStyle.Render("error: "+fmt.Sprintf(format, args...)))
}
