// Package printer renders user-facing CLI output with consistent styling.
// Commands fetch the printer from the context so tests can capture output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// Printer writes styled status lines.
type Printer struct {
	out io.Writer
}

// New creates a printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

type ctxKey struct{}

// WithCtx stores the printer in the context.
func WithCtx(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer from the context, or a stdout printer.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

// Infof prints an informational line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintln(p.out, infoStyle.Render("•")+" "+fmt.Sprintf(format, args...))
}

// Success prints a success line.
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.out, successStyle.Render("✓")+" "+msg)
}

// Successf prints a formatted success line.
func (p *Printer) Successf(format string, args ...any) {
	p.Success(fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintln(p.out, warnStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, errorStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Mutedf prints a de-emphasized line, for secondary detail under a result.
func (p *Printer) Mutedf(format string, args ...any) {
	fmt.Fprintln(p.out, mutedStyle.Render("  "+fmt.Sprintf(format, args...)))
}
