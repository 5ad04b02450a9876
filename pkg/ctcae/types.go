// Package ctcae grades parsed lab records against a declarative table of
// CTCAE-style cutpoints.
package ctcae

import (
	"fmt"
	"math"
	"strings"
)

// Method selects how a lab value is compared with its reference.
type Method string

// Supported grading methods
const (
	MethodRatioULN        Method = "ratio_uln"          // value / ULN against ratio cutpoints
	MethodAbsoluteHbVsLLN Method = "absolute_hb_vs_lln" // absolute value below the sex-specific Hb LLN
	MethodAbsoluteKVsLLN  Method = "absolute_k_vs_lln"  // absolute value below the potassium LLN
)

// Interval tells which edge of a cutpoint range is inclusive.
type Interval string

const (
	// ClosedOpen is [min, max). It is the default.
	ClosedOpen Interval = "closed_open"
	// OpenClosed is (min, max], matching tables written as "> 3 - 5 x ULN".
	OpenClosed Interval = "open_closed"
)

// Contains reports whether x lies in the range between lo and hi.
func (iv Interval) Contains(x, lo, hi float64) bool {
	if iv == OpenClosed {
		return x > lo && x <= hi
	}
	return x >= lo && x < hi
}

// Grade is a severity grade between 0 and MaxGrade.
type Grade int

// MaxGrade is the most severe grade a cutpoint may assign.
const MaxGrade Grade = 4

// Valid reports whether g is within 0..MaxGrade.
func (g Grade) Valid() bool {
	return g >= 0 && g <= MaxGrade
}

func (g Grade) String() string {
	return fmt.Sprintf("G%d", int(g))
}

// GradeResult is the outcome of grading one value. Reason always explains
// the grade, including the grade 0 fallbacks.
type GradeResult struct {
	Grade  Grade  `json:"grade"`
	Reason string `json:"reason"`
}

// Cutpoint maps a value (absolute methods) or a ratio (ratio methods) range
// to a grade. Unbounded sides are ±Inf.
type Cutpoint struct {
	Grade  Grade
	Min    float64
	Max    float64
	Reason string
}

// LabDefinition describes one gradeable lab.
type LabDefinition struct {
	ID           string
	Display      string
	Unit         string
	Term         string // CTCAE term, e.g. "Anemia"
	Method       Method
	Reference    string // Reference key used by the method; empty selects the method default
	Interval     Interval
	Cutpoints    []Cutpoint
	NormalReason string
}

// MapKey routes item names containing any of Keys to the lab Target.
type MapKey struct {
	Keys   []string
	Target string
}

// Well-known reference keys
const (
	RefULNAST = "ULN_AST"
	RefULNALT = "ULN_ALT"
	RefLLNK   = "LLN_K"
	RefLLNHbM = "LLN_Hb_M"
	RefLLNHbF = "LLN_Hb_F"

	// RefLLNHb is an override alias for the Hb LLN of the selected sex.
	RefLLNHb = "LLN_Hb"
)

// References holds named reference values such as ULN_AST.
type References map[string]float64

// Get returns the reference value for key when it is usable.
func (r References) Get(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || !validReference(v) {
		return 0, false
	}
	return v, true
}

// With returns a copy of r with valid override values applied. Invalid or
// non-positive overrides keep the configured value.
func (r References) With(o Overrides) References {
	out := make(References, len(r)+len(o.Refs))
	for k, v := range r {
		out[k] = v
	}

	for k, v := range o.Refs {
		if !validReference(v) {
			continue
		}
		if k == RefLLNHb {
			k = HbReference(o.Sex)
		}
		out[k] = v
	}
	return out
}

func validReference(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Sex selects the Hb reference.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// ParseSex accepts M/F and male/female in any case.
func ParseSex(s string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return SexMale, true
	case "f", "female":
		return SexFemale, true
	default:
		return SexFemale, false
	}
}

// HbReference returns the Hb LLN reference key for sex. Anything but male
// uses the female reference.
func HbReference(sex Sex) string {
	if sex == SexMale {
		return RefLLNHbM
	}
	return RefLLNHbF
}

// Overrides are the per-call reference inputs.
type Overrides struct {
	Refs map[string]float64
	Sex  Sex

	// BaselineAbnormal is accepted but there is no prior value to grade
	// against, so ratio findings are only marked as approximated.
	BaselineAbnormal bool
}
