package megaoak

import (
	"strings"
)

// Parser converts report text into lab records.
type Parser struct {
	sentinels    []string
	headerLabels []string
	rules        []recordRule
}

// ParserOption configures a Parser
type ParserOption func(*Parser)

// WithSentinels replaces the trailing comment block markers
func WithSentinels(sentinels []string) ParserOption {
	return func(p *Parser) {
		p.sentinels = sentinels
	}
}

// WithHeaderLabels replaces the table header words that mark non-data rows
func WithHeaderLabels(labels []string) ParserOption {
	return func(p *Parser) {
		p.headerLabels = labels
	}
}

// NewParser creates a parser with the default sentinels and header labels
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		sentinels:    DefaultSentinels,
		headerLabels: DefaultHeaderLabels,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.rules = []recordRule{
		headerLabelRule(p.headerLabels),
		swapRule,
	}
	return p
}

// Parse returns one record per report line that carries a numeric value,
// in input order. It never fails; unusable lines are skipped.
func (p *Parser) Parse(text string) []LabRecord {
	lines := strings.Split(text, "\n")
	kept, offset := Trim(lines, p.sentinels)

	var (
		records []LabRecord
		section string
	)

	for i, raw := range kept {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		if label, ok := SectionLabel(raw); ok {
			section = label
			continue
		}

		cols := SplitColumns(raw)
		if cols.Name == "" && cols.Value == "" {
			continue
		}

		if rec, ok := buildRecord(cols, p.rules, offset+i+1, section); ok {
			records = append(records, rec)
		}
	}

	return records
}

// Parse is a convenience function using a default parser
func Parse(text string) []LabRecord {
	return NewParser().Parse(text)
}
