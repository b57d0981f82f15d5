// Package output provides styled terminal output for the gotruss commands.
// Functions use lipgloss for styling but hide the details from callers.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

const rule = "═══════════════════════════════════════════════════════════════"
const thinRule = "───────────────────────────────────────────────────────────────"

// Printer writes styled lines to a writer
type Printer struct {
	w       io.Writer
	verbose bool
}

// New creates a Printer writing to w
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// SetVerbose enables Verbose messages
func (p *Printer) SetVerbose(v bool) {
	p.verbose = v
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer { return p.w }

// Success prints a completed operation in green.
//
// Example:
//
//	out.Success("Wrote truss.png")
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, successStyle.Render("✔ "+msg))
}

// Error prints a failure in red
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, errorStyle.Render("✘ "+msg))
}

// Warn prints a warning in yellow
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, warnStyle.Render("! "+msg))
}

// Info prints a status line in cyan
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, infoStyle.Render("ℹ "+msg))
}

// Step prints an indented sub-item in grey
func (p *Printer) Step(msg string) {
	fmt.Fprintln(p.w, stepStyle.Render("   "+msg))
}

// Verbose prints msg only in verbose mode
func (p *Printer) Verbose(msg string) {
	if p.verbose {
		fmt.Fprintln(p.w, stepStyle.Render("… "+msg))
	}
}

// Header prints a report title between double rules
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, headerStyle.Render("     "+strings.ToUpper(title)))
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w)
}

// Section prints a section title over a single rule
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w, headerStyle.Render(strings.ToUpper(title)+":"))
	fmt.Fprintln(p.w, thinRule)
}

// Table returns a tabwriter aligned the way report tables are. Callers must
// Flush it.
func (p *Printer) Table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
}

// Println writes an unstyled line
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}
