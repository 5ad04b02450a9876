package report

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/Hanaasagi/labgrade/pkg/ctcae"
)

const columnGap = "  "

var (
	headerStyle  = color.New(color.Bold, color.FgHiWhite)
	summaryStyle = color.New(color.FgHiCyan)
	noteStyle    = color.New(color.FgHiBlack)

	gradeStyles = [ctcae.MaxGrade + 1]*color.Color{
		color.New(color.FgGreen),
		color.New(color.FgYellow),
		color.New(color.FgHiYellow, color.Bold),
		color.New(color.FgRed, color.Bold),
		color.New(color.FgHiRed, color.Bold, color.ReverseVideo),
	}
)

// WriteTable writes an aligned table followed by the summary line. Column
// widths are measured in terminal cells so Japanese item names line up.
func WriteTable(w io.Writer, findings []ctcae.Finding, opts Options) error {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, NewRow(f).cells())
	}

	header := opts.header()
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	paint := func(c *color.Color, s string) string {
		if !opts.Color || c == nil {
			return s
		}
		return c.Sprint(s)
	}
	// Colors go on after padding so escape codes do not count as width.
	writeRow := func(cells []string, style func(col int) *color.Color) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString(columnGap)
			}
			if i == len(cells)-1 {
				b.WriteString(paint(style(i), cell))
				continue
			}
			b.WriteString(paint(style(i), runewidth.FillRight(cell, widths[i])))
		}
		b.WriteByte('\n')
	}

	if len(rows) > 0 {
		writeRow(header, func(int) *color.Color { return headerStyle })
		for n, row := range rows {
			grade := findings[n].Result.Grade
			writeRow(row, func(col int) *color.Color {
				if col == 4 && grade.Valid() {
					return gradeStyles[grade]
				}
				return nil
			})
		}
		b.WriteByte('\n')
	}

	b.WriteString(paint(summaryStyle, Summary(findings)))
	b.WriteByte('\n')

	if hasApproximated(findings) {
		b.WriteString(paint(noteStyle, ApproximatedMarker+" graded against ULN; no baseline value available"))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
