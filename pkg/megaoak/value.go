package megaoak

import (
	"regexp"
	"strconv"

	"github.com/Hanaasagi/labgrade/pkg/textnorm"
)

// ValueCell is the result of parsing a value column.
type ValueCell struct {
	Value      float64
	HasValue   bool
	Unit       string
	Comparator string
	Flag       string
	Raw        string
}

// valueRule inspects a width-folded cell. It returns true when it has
// decided the value, in which case later rules are not consulted.
type valueRule func(cell string, vc *ValueCell) bool

var (
	// Flags stand alone between spaces or the cell edges, so the L of
	// "mmol/L" or "/μL" is part of the unit.
	flagHighRe    = regexp.MustCompile(`(?:^|\s)H(?:\s|$)`)
	flagLowRe     = regexp.MustCompile(`(?:^|\s)L(?:\s|$)`)
	qualitativeRe = regexp.MustCompile(`[（(]\s*[+\-＋－]\s*[)）]`)
	comparatorRe  = regexp.MustCompile(`([<>]=?)\s*([0-9.]+)\s*/\s*([A-Za-z%μµ/]+)|([<>]=?)\s*([0-9.]+)`)
	numberRe      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	unitRe        = regexp.MustCompile(`^\s*([A-Za-z%μµ/]+)`)
)

// valueRules are applied in order; the first rule that decides wins.
var valueRules = []valueRule{
	qualitativeRule,
	comparatorRule,
	firstNumberRule,
}

// ParseValueCell extracts the numeric value, unit, comparator and H/L flag
// from a value column. HasValue is false for qualitative markers such as
// "(+)" and for cells without any number.
func ParseValueCell(cell string) ValueCell {
	folded := textnorm.Fold(cell)
	vc := ValueCell{
		Raw:  cell,
		Flag: detectFlag(folded),
	}

	for _, rule := range valueRules {
		if rule(folded, &vc) {
			break
		}
	}
	return vc
}

func detectFlag(cell string) string {
	switch {
	case flagHighRe.MatchString(cell):
		return "H"
	case flagLowRe.MatchString(cell):
		return "L"
	default:
		return ""
	}
}

// qualitativeRule stops parsing at "(+)", "(-)" and their full-width forms.
func qualitativeRule(cell string, vc *ValueCell) bool {
	return qualitativeRe.MatchString(cell)
}

// comparatorRule handles censored values such as "<0.1", ">=5" and ">100/H".
func comparatorRule(cell string, vc *ValueCell) bool {
	m := comparatorRe.FindStringSubmatch(cell)
	if m == nil {
		return false
	}

	cmp, num, unit := m[1], m[2], m[3]
	if cmp == "" {
		cmp, num = m[4], m[5]
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return false
	}

	vc.Value, vc.HasValue = v, true
	vc.Comparator = cmp
	vc.Unit = unit
	return true
}

// firstNumberRule takes the first decimal in the cell and the unit token
// right after it.
func firstNumberRule(cell string, vc *ValueCell) bool {
	loc := numberRe.FindStringIndex(cell)
	if loc == nil {
		return true
	}

	v, err := strconv.ParseFloat(cell[loc[0]:loc[1]], 64)
	if err != nil {
		return true
	}
	vc.Value, vc.HasValue = v, true

	if m := unitRe.FindStringSubmatch(cell[loc[1]:]); m != nil && !isFlagToken(m[1]) {
		vc.Unit = m[1]
	}
	return true
}

func isFlagToken(s string) bool {
	return s == "H" || s == "L"
}
