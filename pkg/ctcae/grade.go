package ctcae

import (
	"log/slog"

	"github.com/Hanaasagi/labgrade/pkg/megaoak"
)

// Finding pairs a parsed record with its grade.
type Finding struct {
	Record  megaoak.LabRecord `json:"record"`
	LabID   string            `json:"lab_id"`
	Display string            `json:"display"`
	Unit    string            `json:"unit"`
	Term    string            `json:"ctcae_term"`
	Result  GradeResult       `json:"result"`

	// Approximated is set when a baseline-relative grade was requested but the
	// value was graded against the ULN instead.
	Approximated bool `json:"approximated,omitempty"`
}

// Grader runs the parse, match and evaluate pipeline over a fixed
// configuration. It holds no mutable state and is safe for concurrent use.
type Grader struct {
	config  *Config
	parser  *megaoak.Parser
	matcher *Matcher
}

// GraderOption configures a Grader
type GraderOption func(*Grader)

// WithParser sets the report parser
func WithParser(p *megaoak.Parser) GraderOption {
	return func(g *Grader) {
		g.parser = p
	}
}

// NewGrader validates cfg and prepares the keyword matcher.
func NewGrader(cfg *Config, opts ...GraderOption) (*Grader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Grader{
		config:  cfg,
		parser:  megaoak.NewParser(),
		matcher: NewMatcher(cfg.MapKeys),
	}

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the configuration the grader was built with.
func (g *Grader) Config() *Config {
	return g.config
}

// Grade parses text and grades every record whose name maps to a configured
// lab, in input order.
func (g *Grader) Grade(text string, o Overrides) []Finding {
	return g.GradeRecords(g.parser.Parse(text), o)
}

// GradeRecords grades already parsed records.
func (g *Grader) GradeRecords(records []megaoak.LabRecord, o Overrides) []Finding {
	refs := g.config.Refs.With(o)
	findings := make([]Finding, 0, len(records))

	for _, rec := range records {
		id, ok := g.matcher.Match(rec.RawName)
		if !ok {
			continue
		}

		def, ok := g.config.Lab(id)
		if !ok {
			slog.Debug("Keyword target has no lab definition", "target", id, "line", rec.Line)
			continue
		}

		findings = append(findings, Finding{
			Record:       rec,
			LabID:        def.ID,
			Display:      def.Display,
			Unit:         def.Unit,
			Term:         def.Term,
			Result:       Evaluate(def, rec.Value, refs, o.Sex),
			Approximated: o.BaselineAbnormal && def.Method == MethodRatioULN,
		})
	}

	slog.Debug("Graded report", "records", len(records), "findings", len(findings))
	return findings
}

// GradeText is a convenience function that builds a Grader for a single call.
func GradeText(text string, cfg *Config, o Overrides, opts ...GraderOption) ([]Finding, error) {
	g, err := NewGrader(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return g.Grade(text, o), nil
}
