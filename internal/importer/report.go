package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const maxReasonWidth = 72

// WriteReport prints the outcome as an aligned terminal table followed by
// one line per failed row.
func WriteReport(w io.Writer, source string, o *Outcome) error {
	summary := [][2]string{
		{"Source", source},
		{"Processed", strconv.Itoa(o.Processed)},
		{"Succeeded", strconv.Itoa(o.Succeeded)},
		{"Duplicates", strconv.Itoa(o.Duplicates)},
		{"Failed", strconv.Itoa(o.Failed)},
	}
	if err := writeTable(w, "IMPORT SUMMARY", nil, toRows(summary)); err != nil {
		return err
	}
	if len(o.Failures) == 0 {
		return nil
	}

	rows := make([][]string, len(o.Failures))
	for i, f := range o.Failures {
		rows[i] = []string{
			strconv.Itoa(f.Line),
			f.Status,
			runewidth.Truncate(f.Reason, maxReasonWidth, "..."),
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return writeTable(w, "FAILED ROWS", []string{"Line", "Status", "Reason"}, rows)
}

func toRows(pairs [][2]string) [][]string {
	out := make([][]string, len(pairs))
	for i, p := range pairs {
		out[i] = []string{p[0], p[1]}
	}
	return out
}

func writeTable(w io.Writer, title string, header []string, rows [][]string) error {
	cols := len(header)
	if cols == 0 && len(rows) > 0 {
		cols = len(rows[0])
	}
	widths := make([]int, cols)
	measure := func(cells []string) {
		for i, c := range cells {
			if cw := runewidth.StringWidth(c); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}

	var b strings.Builder
	sep := separator(widths)
	fmt.Fprintln(&b, title)
	b.WriteString(sep)
	if len(header) > 0 {
		b.WriteString(line(header, widths))
		b.WriteString(sep)
	}
	for _, r := range rows {
		b.WriteString(line(r, widths))
	}
	b.WriteString(sep)

	_, err := io.WriteString(w, b.String())
	return err
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func line(cells []string, widths []int) string {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(" ")
		b.WriteString(runewidth.FillRight(cell, w))
		b.WriteString(" |")
	}
	b.WriteString("\n")
	return b.String()
}
