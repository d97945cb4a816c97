// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// unsafeCharRegex matches characters that are never stored in lead text
	unsafeCharRegex = regexp.MustCompile(`[<>'"&]`)
	nonDigitRegex   = regexp.MustCompile(`\D`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(s, ""))
}

// Text strips tags and the characters <>'"&, trims whitespace and truncates
// the result to maxLen runes. A maxLen <= 0 disables truncation.
func Text(s string, maxLen int) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = unsafeCharRegex.ReplaceAllString(result, "")
	result = strings.TrimSpace(result)
	return Truncate(result, maxLen)
}

// Truncate cuts s to at most maxLen runes.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// Digits removes every non-digit character.
func Digits(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}
