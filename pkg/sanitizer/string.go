package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeCity collapses whitespace but keeps case, since locations are
// matched exactly against a fixed list.
func NormalizeCity(city string) string {
	return TrimAndNormalize(city)
}

// NormalizeEmail makes addresses compare equal regardless of case or
// surrounding whitespace.
func NormalizeEmail(email string) string {
	return Pipeline{strings.TrimSpace, strings.ToLower}.Apply(email)
}
