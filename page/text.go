package page

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf16"
)

// CountWords collapses whitespace in text and counts the remaining
// space-separated tokens. Empty or whitespace-only text yields 0.
func CountWords(text string) int {
	return len(strings.FieldsFunc(text, isSpace))
}

// isSpace matches the whitespace class browsers use for \s, so that a word
// count computed here agrees with one computed in a live document.
func isSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}

// TextLength returns the length of s in UTF-16 code units, the unit a browser
// host reports for string length.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// ParseInt reads a leading base-10 integer the lenient way HTML attribute
// values are usually read: leading whitespace and trailing garbage are
// ignored ("1200px" is 1200). Values beyond the int range saturate at
// math.MaxInt or math.MinInt. It reports false when no digits lead.
func ParseInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, isSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits, overflow := 0, 0, false
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		d := int(s[digits] - '0')
		if n > (math.MaxInt-d)/10 {
			overflow = true
		} else if !overflow {
			n = n*10 + d
		}
		digits++
	}
	switch {
	case digits == 0:
		return 0, false
	case overflow && neg:
		return math.MinInt, true
	case overflow:
		return math.MaxInt, true
	case neg:
		return -n, true
	}
	return n, true
}
