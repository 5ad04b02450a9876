// Package report renders graded findings for terminals, spreadsheets and
// machine consumers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Hanaasagi/labgrade/pkg/ctcae"
)

// Format selects an output renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatTSV   Format = "tsv"
	FormatJSON  Format = "json"
)

// ApproximatedMarker flags findings graded against the ULN although a
// baseline-relative grade was requested.
const ApproximatedMarker = "*"

// DefaultHeader labels the table and TSV columns.
var DefaultHeader = []string{"項目", "値", "単位", "CTCAE用語", "Grade", "根拠"}

// ParseFormat accepts table, tsv and json, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatTSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, tsv or json)", s)
	}
}

// Options tunes rendering.
type Options struct {
	// Color enables ANSI colors in table output.
	Color bool

	// Header replaces DefaultHeader when it has one label per column.
	Header []string
}

func (o Options) header() []string {
	if len(o.Header) == len(DefaultHeader) {
		return o.Header
	}
	return DefaultHeader
}

// Write renders findings in the given format.
func Write(w io.Writer, format Format, findings []ctcae.Finding, opts Options) error {
	switch format {
	case FormatTSV:
		return WriteTSV(w, findings, opts)
	case FormatJSON:
		return WriteJSON(w, findings)
	case FormatTable, "":
		return WriteTable(w, findings, opts)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Row is the display form of a finding.
type Row struct {
	Item   string
	Value  string
	Unit   string
	Term   string
	Grade  string
	Reason string
}

// NewRow formats a finding. The configured unit wins over the unit found in
// the report.
func NewRow(f ctcae.Finding) Row {
	unit := f.Unit
	if unit == "" {
		unit = f.Record.Unit
	}

	item := f.Display
	if item == "" {
		item = f.LabID
	}

	grade := f.Result.Grade.String()
	if f.Approximated {
		grade += ApproximatedMarker
	}

	return Row{
		Item:   item,
		Value:  f.Record.Comparator + strconv.FormatFloat(f.Record.Value, 'f', -1, 64),
		Unit:   unit,
		Term:   f.Term,
		Grade:  grade,
		Reason: f.Result.Reason,
	}
}

func (r Row) cells() []string {
	return []string{r.Item, r.Value, r.Unit, r.Term, r.Grade, r.Reason}
}

// Summary returns the one-line result count.
func Summary(findings []ctcae.Finding) string {
	switch len(findings) {
	case 0:
		return "no gradeable items"
	case 1:
		return "1 finding"
	default:
		return fmt.Sprintf("%d findings", len(findings))
	}
}

func hasApproximated(findings []ctcae.Finding) bool {
	for _, f := range findings {
		if f.Approximated {
			return true
		}
	}
	return false
}

// WriteTSV writes a header row and one row per finding. Tabs and newlines
// inside cells are replaced by spaces.
func WriteTSV(w io.Writer, findings []ctcae.Finding, opts Options) error {
	var b strings.Builder
	header := make([]string, 0, len(DefaultHeader))
	for _, h := range opts.header() {
		header = append(header, tsvEscaper.Replace(h))
	}
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')

	for _, f := range findings {
		cells := NewRow(f).cells()
		for i, c := range cells {
			cells[i] = tsvEscaper.Replace(c)
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Document is the JSON shape shared by the CLI and the HTTP API.
type Document struct {
	Items []ctcae.Finding `json:"items"`
	Count int             `json:"count"`
}

// NewDocument wraps findings. Items is never null.
func NewDocument(findings []ctcae.Finding) Document {
	if findings == nil {
		findings = []ctcae.Finding{}
	}
	return Document{Items: findings, Count: len(findings)}
}

// WriteJSON writes an indented Document.
func WriteJSON(w io.Writer, findings []ctcae.Finding) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(findings))
}
