// Package ui formats command output for the terminal
package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// ErrorOptions configures an error message
type ErrorOptions struct {
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders an error with optional suggestions:
//
//	✗ UNKNOWN FIELD: tt_nmae
//
//	   Did you mean: tt_name?
//
//	   → List fields: fieldmeta fields
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	red := newColor(opts.NoColor, color.FgRed, color.Bold)
	if opts.Context != "" {
		red.Fprintf(&b, "✗ %s: %s\n", strings.ToUpper(opts.Context), opts.Problem)
	} else {
		red.Fprintf(&b, "✗ %s\n", opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		newColor(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}
	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := newColor(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}
	return b.String()
}

// UnknownFieldError reports a field name the registry does not know
func UnknownFieldError(name string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "unknown field",
		Problem:      name,
		Suggestions:  Suggest(name, known, 3),
		HelpCommands: []string{"List fields: fieldmeta fields"},
		NoColor:      noColor,
	})
}

// WriteSuccess writes a green check line
func WriteSuccess(w io.Writer, message string, noColor bool) {
	newColor(noColor, color.FgGreen, color.Bold).Fprintf(w, "✓ %s\n", message)
}

// WriteFailure writes a red cross line
func WriteFailure(w io.Writer, message string, noColor bool) {
	newColor(noColor, color.FgRed, color.Bold).Fprintf(w, "✗ %s\n", message)
}

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

// Table renders rows under a header, columns padded to their widest cell
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow adds a row. Missing cells render empty
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := utf8.RuneCountInString(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	head := newColor(t.noColor, color.Bold, color.FgCyan)
	gray := newColor(t.noColor, color.FgHiBlack)

	for i, h := range t.headers {
		head.Fprint(t.writer, t.cell(h, widths, i))
	}
	fmt.Fprintln(t.writer)
	for i, w := range widths {
		gray.Fprint(t.writer, t.cell(strings.Repeat("─", w), widths, i))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i := range widths {
			var c string
			if i < len(row) {
				c = row[i]
			}
			fmt.Fprint(t.writer, t.cell(c, widths, i))
		}
		fmt.Fprintln(t.writer)
	}
}

// cell pads column i; the last column is not padded
func (t *Table) cell(s string, widths []int, i int) string {
	if i == len(widths)-1 {
		return s
	}
	if n := utf8.RuneCountInString(s); n < widths[i] {
		s += strings.Repeat(" ", widths[i]-n)
	}
	return s + "  "
}

// KeyValue writes aligned "key: value" lines
func KeyValue(w io.Writer, noColor bool, pairs ...[2]string) {
	width := 0
	for _, p := range pairs {
		if n := utf8.RuneCountInString(p[0]); n > width {
			width = n
		}
	}
	cyan := newColor(noColor, color.FgCyan)
	for _, p := range pairs {
		key := p[0] + ":"
		cyan.Fprint(w, key+strings.Repeat(" ", width+1-utf8.RuneCountInString(key)))
		fmt.Fprintf(w, " %s\n", p[1])
	}
}
