package megaoak

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Hanaasagi/labgrade/pkg/textnorm"
)

// MinColumnGap is how many consecutive spaces separate two columns. A single
// space is part of the column text ("AST (GOT)").
const MinColumnGap = 2

var lineIndexRe = regexp.MustCompile(`^\d{1,4}$`)

// Columns holds the logical columns of one report line. Absent columns are empty.
type Columns struct {
	Name  string
	Value string
	Flag  string
	Note  string
}

// SplitColumns breaks a report line into name, value, flag and note columns.
// Columns are separated by runs of MinColumnGap or more whitespace characters
// or by any tab. A leading 1-4 digit report index is discarded.
func SplitColumns(line string) Columns {
	cols := splitRuns(textnorm.Blank(line))

	if len(cols) > 0 && lineIndexRe.MatchString(textnorm.Normalize(cols[0])) {
		cols = cols[1:]
	}

	var c Columns
	fields := []*string{&c.Name, &c.Value, &c.Flag, &c.Note}
	for i := 0; i < len(fields) && i < len(cols); i++ {
		*fields[i] = cols[i]
	}
	return c
}

// splitRuns is a multi-space tokenizer: single spaces stay inside a token,
// wider gaps and tabs end it.
func splitRuns(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		spaces  int
		tabbed  bool
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range line {
		if unicode.IsSpace(r) {
			spaces++
			if r == '\t' {
				tabbed = true
			}
			continue
		}

		if current.Len() > 0 && spaces > 0 {
			if spaces >= MinColumnGap || tabbed {
				flush()
			} else {
				current.WriteByte(' ')
			}
		}
		spaces, tabbed = 0, false
		current.WriteRune(r)
	}
	flush()

	return tokens
}
