package megaoak

import (
	"regexp"

	"github.com/Hanaasagi/labgrade/pkg/textnorm"
)

// DefaultSentinels are the trailing comment block markers. Everything from
// the first of them onward is boilerplate.
var DefaultSentinels = []string{"付加コメント", "依頼コメント", "検体コメント"}

var sectionHeaderRe = regexp.MustCompile(`^\s*\d+\s*\[([^\]]+)\]`)

// IsSectionHeader reports whether line introduces a new section,
// e.g. "014 [尿沈渣]". Full-width digits and brackets are accepted.
func IsSectionHeader(line string) bool {
	return sectionHeaderRe.MatchString(textnorm.Fold(line))
}

// SectionLabel returns the normalized bracket label of a section header line.
func SectionLabel(line string) (string, bool) {
	m := sectionHeaderRe.FindStringSubmatch(textnorm.Fold(line))
	if m == nil {
		return "", false
	}
	return textnorm.Normalize(m[1]), true
}

// Trim drops the leading boilerplate before the first section header and the
// trailing block starting at the first sentinel line. It returns the retained
// lines and the index of the first retained line in the input.
func Trim(lines []string, sentinels []string) ([]string, int) {
	start, end := 0, len(lines)

	for i, line := range lines {
		if IsSectionHeader(line) {
			start = i
			break
		}
	}

	stops := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		if n := textnorm.Normalize(s); n != "" {
			stops[n] = struct{}{}
		}
	}

	for i := start; i < len(lines); i++ {
		if _, ok := stops[textnorm.Normalize(lines[i])]; ok {
			end = i
			break
		}
	}

	return lines[start:end], start
}
