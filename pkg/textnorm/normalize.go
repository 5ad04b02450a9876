// Package textnorm canonicalizes the character forms and whitespace found in
// pasted lab reports.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Fold maps full-width Latin letters, digits, punctuation and the ideographic
// space to their half-width forms. Half-width katakana is widened so every
// form of the same character compares equal.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	folded := width.Fold.String(s)
	return strings.ReplaceAll(folded, "　", " ")
}

// Blank replaces control characters with plain spaces without collapsing
// runs, so column gaps survive.
func Blank(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return ' '
		}
		return r
	}, s)
}

// Squash collapses control characters and whitespace runs into a single
// space and trims both ends.
func Squash(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	return strings.Join(fields, " ")
}

// Normalize folds character widths and squashes whitespace. It is idempotent.
func Normalize(s string) string {
	return Squash(Fold(s))
}

// Name normalizes a report item name: Normalize plus ASCII lowercasing.
// Non-ASCII letters are left alone.
func Name(s string) string {
	return asciiLower(Normalize(s))
}

// Key prepares a name for keyword matching. Everything outside ASCII
// lowercase letters, digits, kana, CJK ideographs and spaces is removed.
func Key(s string) string {
	folded := strings.ToLower(Fold(s))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 0x3040 && r <= 0x30FF:
			b.WriteRune(r)
		case r >= 0x4E00 && r <= 0x9FAF:
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return Squash(b.String())
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
