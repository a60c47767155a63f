package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders tabular data, e.g. the classes of a meta-model together
// with their constraint counts
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, noColor bool) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		rows:    make([][]string, 0),
		noColor: noColor,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerColor := color.New(color.FgCyan, color.Bold)
	if t.noColor {
		headerColor.DisableColor()
	}

	for i, header := range t.headers {
		if i > 0 {
			fmt.Fprint(t.writer, "  ")
		}
		headerColor.Fprintf(t.writer, "%-*s", widths[i], header)
	}
	fmt.Fprintln(t.writer)

	for i, width := range widths {
		if i > 0 {
			fmt.Fprint(t.writer, "  ")
		}
		fmt.Fprint(t.writer, strings.Repeat("-", width))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				fmt.Fprint(t.writer, "  ")
			}
			fmt.Fprintf(t.writer, "%-*s", widths[i], cell)
		}
		fmt.Fprintln(t.writer)
	}
}
