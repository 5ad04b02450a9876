// Package megaoak turns semi-structured, loosely columnar lab report dumps
// into canonical lab records.
//
// A report is a sequence of section headers ("014 [urine sediment]") followed
// by item lines whose columns are separated by runs of spaces or tabs:
//
//	001  Hb.          10.1   L
//	002  AST (GOT)    45     H    outsourced
//
// Lines that do not yield a numeric value are dropped silently.
package megaoak

import "fmt"

// LabRecord is one parsed report line carrying a numeric value.
type LabRecord struct {
	Line       int     `json:"line"`                 // 1-based line number in the input text
	Section    string  `json:"section,omitempty"`    // Label of the most recent section header
	Name       string  `json:"name"`                 // Normalized item name
	RawName    string  `json:"raw_name"`             // Item name as it appeared in the report
	Value      float64 `json:"value"`                // Parsed numeric value
	Unit       string  `json:"unit,omitempty"`       // Unit token following the value, if any
	Comparator string  `json:"comparator,omitempty"` // One of <, <=, >, >= when the value was censored
	Flag       string  `json:"flag,omitempty"`       // H, L or the normalized abnormal-label column
	Note       string  `json:"note,omitempty"`       // Normalized trailing note column
	RawValue   string  `json:"raw_value"`            // Value cell as it appeared in the report
}

// String returns a compact representation of the record
func (r LabRecord) String() string {
	return fmt.Sprintf("LabRecord[%d]: %q = %s%g %s (flag %q)",
		r.Line, r.Name, r.Comparator, r.Value, r.Unit, r.Flag)
}
