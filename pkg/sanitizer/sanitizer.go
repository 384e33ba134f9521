// Package sanitizer normalizes patient- and doctor-supplied free text before
// validation and storage.
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

// TrimAndNormalize trims the string and collapses internal whitespace runs to
// a single space.
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

func stripControl(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// SanitizeName normalizes display names (patients, doctors, medications).
func SanitizeName(input string) string {
	p := Pipeline{stripControl, TrimAndNormalize}
	return p.Apply(input)
}

// SanitizeFreeText normalizes multi-line clinical text (reasons, notes,
// medical history). Newlines and tabs survive, other control runes do not.
func SanitizeFreeText(input string) string {
	p := Pipeline{stripControl, strings.TrimSpace}
	return p.Apply(input)
}

// SanitizeEmail lowercases and trims an email address.
func SanitizeEmail(input string) string {
	p := Pipeline{strings.TrimSpace, strings.ToLower}
	return p.Apply(input)
}
