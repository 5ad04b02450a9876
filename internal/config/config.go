package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/Hanaasagi/labgrade/pkg/ctcae"
	"github.com/Hanaasagi/labgrade/pkg/megaoak"
)

const (
	appName = "labgrade"

	// EmbeddedSource is reported as the path of the built-in document.
	EmbeddedSource = "(embedded)"
)

//go:embed default.toml
var defaultDocument []byte

// ErrNoConfig is returned when an explicitly requested file does not exist.
var ErrNoConfig = errors.New("config file not found")

// Document is the on-disk grading configuration.
type Document struct {
	Parser  ParserConfig       `toml:"parser"`
	Report  ReportConfig       `toml:"report"`
	Refs    map[string]float64 `toml:"refs"`
	Labs    []LabConfig        `toml:"labs"`
	MapKeys []MapKeyConfig     `toml:"map_keys"`

	// Source is the file the document was read from.
	Source string `toml:"-"`
}

type ParserConfig struct {
	Sentinels    []string `toml:"sentinels,omitempty"`
	HeaderLabels []string `toml:"header_labels,omitempty"`
}

// ReportConfig holds output settings. An empty header keeps the built-in
// column labels.
type ReportConfig struct {
	Header []string `toml:"header,omitempty"`
}

type LabConfig struct {
	ID           string           `toml:"id"`
	Display      string           `toml:"display"`
	Unit         string           `toml:"unit"`
	CTCAETerm    string           `toml:"ctcae_term"`
	Method       string           `toml:"method"`
	Reference    string           `toml:"reference,omitempty"`
	Interval     string           `toml:"interval,omitempty"`
	NormalReason string           `toml:"normal_reason"`
	Cutpoints    []CutpointConfig `toml:"cutpoints"`
}

// CutpointConfig uses min/max for absolute methods and min_ratio/max_ratio
// for ratio methods. A missing bound is unbounded.
type CutpointConfig struct {
	Grade    int      `toml:"grade"`
	Min      *float64 `toml:"min,omitempty"`
	Max      *float64 `toml:"max,omitempty"`
	MinRatio *float64 `toml:"min_ratio,omitempty"`
	MaxRatio *float64 `toml:"max_ratio,omitempty"`
	Reason   string   `toml:"reason"`
}

type MapKeyConfig struct {
	Keys   []string `toml:"keys"`
	Target string   `toml:"target"`
}

// DefaultPath returns the user config file location under XDG_CONFIG_HOME.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Default decodes the built-in document.
func Default() (*Document, error) {
	doc, err := Decode(bytes.NewReader(defaultDocument))
	if err != nil {
		return nil, fmt.Errorf("decoding embedded config: %w", err)
	}
	doc.Source = EmbeddedSource
	return doc, nil
}

// Decode reads a TOML document. Unknown keys are logged and ignored.
func Decode(r io.Reader) (*Document, error) {
	var doc Document

	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("Ignoring unknown config keys", "keys", fmt.Sprint(undecoded))
	}
	return &doc, nil
}

// LoadFile reads the document at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoConfig, path)
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close() // nolint: errcheck

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// Load resolves the document to use: the explicit path when given, then the
// user config file, then the built-in document.
func Load(explicit string) (*Document, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}

	if path, err := xdg.SearchConfigFile(filepath.Join(appName, "config.toml")); err == nil {
		return LoadFile(path)
	}

	slog.Debug("No user config file, using the embedded document")
	return Default()
}

// Encode writes the document as TOML.
func (d *Document) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(d)
}

// ParserOptions returns the parser settings of the document. Empty lists
// keep the parser defaults.
func (d *Document) ParserOptions() []megaoak.ParserOption {
	var opts []megaoak.ParserOption
	if len(d.Parser.Sentinels) > 0 {
		opts = append(opts, megaoak.WithSentinels(d.Parser.Sentinels))
	}
	if len(d.Parser.HeaderLabels) > 0 {
		opts = append(opts, megaoak.WithHeaderLabels(d.Parser.HeaderLabels))
	}
	return opts
}

// Config converts the document into a validated grading configuration.
func (d *Document) Config() (*ctcae.Config, error) {
	cfg := &ctcae.Config{
		Refs:    ctcae.References(d.Refs),
		Labs:    make([]ctcae.LabDefinition, 0, len(d.Labs)),
		MapKeys: make([]ctcae.MapKey, 0, len(d.MapKeys)),
	}

	for _, lab := range d.Labs {
		def := ctcae.LabDefinition{
			ID:           lab.ID,
			Display:      lab.Display,
			Unit:         lab.Unit,
			Term:         lab.CTCAETerm,
			Method:       ctcae.Method(lab.Method),
			Reference:    lab.Reference,
			Interval:     ctcae.Interval(lab.Interval),
			NormalReason: lab.NormalReason,
		}
		for _, cp := range lab.Cutpoints {
			def.Cutpoints = append(def.Cutpoints, cp.cutpoint(def.Method))
		}
		cfg.Labs = append(cfg.Labs, def)
	}

	for _, mk := range d.MapKeys {
		cfg.MapKeys = append(cfg.MapKeys, ctcae.MapKey{Keys: mk.Keys, Target: mk.Target})
	}

	if err := cfg.Validate(); err != nil {
		if d.Source == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", d.Source, err)
	}
	return cfg, nil
}

func (c CutpointConfig) cutpoint(method ctcae.Method) ctcae.Cutpoint {
	lo, hi := c.Min, c.Max
	if method == ctcae.MethodRatioULN && (c.MinRatio != nil || c.MaxRatio != nil) {
		lo, hi = c.MinRatio, c.MaxRatio
	}

	return ctcae.Cutpoint{
		Grade:  ctcae.Grade(c.Grade),
		Min:    bound(lo, math.Inf(-1)),
		Max:    bound(hi, math.Inf(1)),
		Reason: c.Reason,
	}
}

func bound(v *float64, open float64) float64 {
	if v == nil {
		return open
	}
	return *v
}
