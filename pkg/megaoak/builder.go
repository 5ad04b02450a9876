package megaoak

import (
	"regexp"

	"github.com/Hanaasagi/labgrade/pkg/textnorm"
)

// DefaultHeaderLabels are table header words repeated inside some sections.
// Lines whose name column equals one of them are not data.
var DefaultHeaderLabels = []string{"項目", "結果", "item", "result"}

var leadingNumberRe = regexp.MustCompile(`^-?\d+(\.\d+)?`)

// recordRule adjusts a candidate line in place. Returning false drops the line.
type recordRule func(c *Columns) bool

// headerLabelRule skips repeated table header rows.
func headerLabelRule(labels []string) recordRule {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[textnorm.Name(l)] = struct{}{}
	}

	return func(c *Columns) bool {
		_, isHeader := set[textnorm.Name(c.Name)]
		return !isHeader
	}
}

// swapRule recovers reversed layouts such as "4.30    neut" where the value
// column comes first.
func swapRule(c *Columns) bool {
	if looksNumeric(c.Name) && !looksNumeric(c.Value) {
		c.Name, c.Value = c.Value, c.Name
	}
	return true
}

func looksNumeric(s string) bool {
	return leadingNumberRe.MatchString(textnorm.Normalize(s))
}

// buildRecord applies rules to the columns and parses the value cell.
// It returns false when the line carries no usable number.
func buildRecord(cols Columns, rules []recordRule, line int, section string) (LabRecord, bool) {
	for _, rule := range rules {
		if !rule(&cols) {
			return LabRecord{}, false
		}
	}

	vc := ParseValueCell(cols.Value)
	if !vc.HasValue {
		return LabRecord{}, false
	}

	flag := vc.Flag
	if flag == "" {
		flag = textnorm.Normalize(cols.Flag)
	}

	return LabRecord{
		Line:       line,
		Section:    section,
		Name:       textnorm.Name(cols.Name),
		RawName:    cols.Name,
		Value:      vc.Value,
		Unit:       vc.Unit,
		Comparator: vc.Comparator,
		Flag:       flag,
		Note:       textnorm.Normalize(cols.Note),
		RawValue:   vc.Raw,
	}, true
}
