package ctcae

import (
	"strings"

	"github.com/Hanaasagi/labgrade/pkg/textnorm"
)

// Matcher maps free-text item names to lab ids using a priority-ordered
// keyword table. The first entry with a keyword contained in the normalized
// name wins.
type Matcher struct {
	entries []matchEntry
}

type matchEntry struct {
	keys   []string
	target string
}

// NewMatcher normalizes the keywords of keys once. Keywords that normalize
// to nothing are ignored, they would match every name.
func NewMatcher(keys []MapKey) *Matcher {
	m := &Matcher{entries: make([]matchEntry, 0, len(keys))}

	for _, mk := range keys {
		e := matchEntry{target: mk.Target}
		for _, k := range mk.Keys {
			if nk := textnorm.Key(k); nk != "" {
				e.keys = append(e.keys, nk)
			}
		}
		m.entries = append(m.entries, e)
	}
	return m
}

// Match returns the lab id for rawName.
func (m *Matcher) Match(rawName string) (string, bool) {
	name := textnorm.Key(rawName)
	if name == "" {
		return "", false
	}

	for _, e := range m.entries {
		for _, k := range e.keys {
			if strings.Contains(name, k) {
				return e.target, true
			}
		}
	}
	return "", false
}

// MatchKey is a convenience function for one-off lookups
func MatchKey(rawName string, keys []MapKey) (string, bool) {
	return NewMatcher(keys).Match(rawName)
}
