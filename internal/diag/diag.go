// Package diag implements the compiler's diagnostic engine: it
// accumulates structured messages with primary/secondary spans and
// renders them with source context, following §4.1 of the design.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/shkhuz/aria/internal/source"
)

// Kind classifies a Msg's severity.
type Kind int

const (
	Error Kind = iota
	Warning
	Note
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "?"
	}
}

// SubMsg is either a "fat" sub-message (carries its own span and
// source excerpt) or a "thin" one (text only), per §4.1.
type SubMsg struct {
	Text string
	Span *source.Span // nil for a thin sub-message
}

// Msg is one diagnostic: a severity, a primary message, an optional
// primary span, and any number of fat/thin sub-messages.
type Msg struct {
	Kind    Kind
	Primary string
	Span    *source.Span
	Subs    []SubMsg
}

// Fat appends a sub-message with its own span.
func (m *Msg) Fat(span source.Span, format string, args ...interface{}) *Msg {
	m.Subs = append(m.Subs, SubMsg{Text: fmt.Sprintf(format, args...), Span: &span})
	return m
}

// Thin appends a text-only sub-message.
func (m *Msg) Thin(format string, args ...interface{}) *Msg {
	m.Subs = append(m.Subs, SubMsg{Text: fmt.Sprintf(format, args...)})
	return m
}

// Engine accumulates diagnostics for one compilation stage (or the
// whole compile). Emitting an Error sets the sticky error flag;
// warnings and notes never do, per §7 "warnings never stop
// compilation".
type Engine struct {
	out      io.Writer
	colorize bool

	msgs      []Msg
	errored   bool
	errCount  int
	warnCount int
}

// New creates an Engine writing to w. Colorization is enabled only
// when w looks like a terminal, mirroring grafana-k6's cmd/ui.go
// gating of fatih/color on isatty.
func New(w io.Writer) *Engine {
	colorize := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Engine{out: w, colorize: colorize}
}

// Emit records msg, writes its rendering to the engine's writer, and
// updates the sticky error flag / counters.
func (e *Engine) Emit(msg Msg) {
	e.msgs = append(e.msgs, msg)
	switch msg.Kind {
	case Error:
		e.errored = true
		e.errCount++
	case Warning:
		e.warnCount++
	}
	e.render(msg)
}

// Errorf is a convenience for Emit(Msg{Kind: Error, ...}).
func (e *Engine) Errorf(span source.Span, format string, args ...interface{}) *Msg {
	m := Msg{Kind: Error, Primary: fmt.Sprintf(format, args...), Span: &span}
	e.Emit(m)
	return &e.msgs[len(e.msgs)-1]
}

// Warnf is a convenience for Emit(Msg{Kind: Warning, ...}).
func (e *Engine) Warnf(span source.Span, format string, args ...interface{}) *Msg {
	m := Msg{Kind: Warning, Primary: fmt.Sprintf(format, args...), Span: &span}
	e.Emit(m)
	return &e.msgs[len(e.msgs)-1]
}

// Errored reports whether any Error-kind message has been emitted
// since construction. This is the "sticky error flag" §4.1 and §7
// both refer to: the driver checks it after every stage and refuses
// to enter the next stage if it is set.
func (e *Engine) Errored() bool { return e.errored }

// Counts returns the number of errors and warnings emitted so far.
func (e *Engine) Counts() (errs, warns int) { return e.errCount, e.warnCount }

// Messages returns all messages emitted so far, in emission order.
// Tests use this (and the first emitted span) as the observable
// surface §4.1 requires ("message count and the first emitted span
// are observable for tests").
func (e *Engine) Messages() []Msg { return e.msgs }

// FirstSpan returns the primary span of the first emitted message, or
// nil if nothing has been emitted yet.
func (e *Engine) FirstSpan() *source.Span {
	if len(e.msgs) == 0 {
		return nil
	}
	return e.msgs[0].Span
}

// Summary writes the trailing "N error(s), M warning(s)" line.
func (e *Engine) Summary() {
	if e.errCount == 0 && e.warnCount == 0 {
		return
	}
	parts := make([]string, 0, 2)
	if e.errCount > 0 {
		parts = append(parts, plural(e.errCount, "error"))
	}
	if e.warnCount > 0 {
		parts = append(parts, plural(e.warnCount, "warning"))
	}
	fmt.Fprintf(e.out, "%s\n", strings.Join(parts, ", "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func (e *Engine) sev(k Kind, s string) string {
	if !e.colorize {
		return s
	}
	switch k {
	case Error:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case Warning:
		return color.New(color.FgYellow, color.Bold).Sprint(s)
	default:
		return color.New(color.FgCyan, color.Bold).Sprint(s)
	}
}

// render writes one paragraph: colored severity, primary message,
// source excerpt with caret, indented fat sub-messages each with
// their own excerpt, trailing thin sub-messages.
func (e *Engine) render(m Msg) {
	fmt.Fprintf(e.out, "%s: %s\n", e.sev(m.Kind, m.Kind.String()), m.Primary)
	if m.Span != nil {
		e.renderExcerpt(*m.Span, "", m.Kind, true)
	}
	for _, sub := range m.Subs {
		if sub.Span != nil {
			fmt.Fprintf(e.out, "  %s\n", sub.Text)
			sameFile := m.Span != nil && sub.Span.File == m.Span.File
			e.renderExcerpt(*sub.Span, "  ", m.Kind, !sameFile)
		} else {
			fmt.Fprintf(e.out, "  %s\n", sub.Text)
		}
	}
}

// renderExcerpt prints the source line(s) spanned by sp with a
// gutter, a caret underline of length end-start (clamped to
// end-of-line), and an ellipsis tail for multi-line spans. indent is
// prefixed to every printed line (used for sub-message excerpts).
func (e *Engine) renderExcerpt(sp source.Span, indent string, kind Kind, showFilePrefix bool) {
	if sp.File == nil {
		return
	}
	startPos := sp.File.Pos(sp.Start)
	gutter := fmt.Sprintf("%d", startPos.Line)
	if showFilePrefix {
		fmt.Fprintf(e.out, "%s--> %s:%s\n", indent, sp.File.Path, startPos.String())
	}

	line := sp.File.Line(sp.Start)
	rendered := strings.ReplaceAll(string(line), "\t", "    ")
	fmt.Fprintf(e.out, "%s %s | %s\n", indent, gutter, rendered)

	lineStartCol := startPos.Col
	caretLen := sp.End - sp.Start
	// clamp to end-of-line
	remaining := len(rendered) - (lineStartCol - 1)
	if remaining < 0 {
		remaining = 0
	}
	multiline := caretLen > remaining
	if multiline {
		caretLen = remaining
	}
	if caretLen < 1 {
		caretLen = 1
	}
	pad := strings.Repeat(" ", len(gutter)+3+lineStartCol-1)
	caret := strings.Repeat("^", caretLen)
	if multiline {
		caret += "..."
	}
	fmt.Fprintf(e.out, "%s%s%s\n", indent, pad, e.sev(kind, caret))
}
