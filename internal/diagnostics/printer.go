package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorDim    = "\x1b[2m"
)

// Printer renders diagnostics for humans. Severity labels are coloured when
// the destination is a terminal.
type Printer struct {
	w     io.Writer
	color bool
	// Sources maps file names to their text, used to show the offending line.
	Sources map[string]string
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: colorEnabled(w), Sources: make(map[string]string)}
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (p *Printer) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + colorReset
}

// Print writes a single diagnostic followed by the source line it points to.
func (p *Printer) Print(d *DiagnosticError) {
	label := p.paint(colorRed, d.Category().String())
	if d.IsWarning() {
		label = p.paint(colorYellow, d.Category().String())
	}

	loc := d.File
	if d.Pos.IsValid() {
		if loc != "" {
			loc += ":"
		}
		loc += d.Pos.String()
	}
	if loc != "" {
		fmt.Fprintf(p.w, "%s: ", loc)
	}
	fmt.Fprintf(p.w, "%s[%s]: %s", label, d.Code, d.Message)
	if d.Cause != nil {
		fmt.Fprintf(p.w, ": %s", d.Cause)
	}
	fmt.Fprintln(p.w)

	if line, ok := p.sourceLine(d); ok {
		fmt.Fprintf(p.w, "  %s\n", p.paint(colorDim, line))
		fmt.Fprintf(p.w, "  %s^\n", strings.Repeat(" ", d.Pos.Column-1))
	}
}

func (p *Printer) sourceLine(d *DiagnosticError) (string, bool) {
	src, ok := p.Sources[d.File]
	if !ok || !d.Pos.IsValid() {
		return "", false
	}
	lines := strings.Split(src, "\n")
	if d.Pos.Line > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[d.Pos.Line-1], "\r"), true
}

// PrintError prints every diagnostic reachable from err, or the plain
// message when err carries none.
func (p *Printer) PrintError(err error) {
	var list List
	if errors.As(err, &list) {
		for _, d := range list {
			p.Print(d)
		}
		return
	}
	if d, ok := As(err); ok {
		p.Print(d)
		return
	}
	fmt.Fprintf(p.w, "%s: %s\n", p.paint(colorRed, "error"), err)
}
