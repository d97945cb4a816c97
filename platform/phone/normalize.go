// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"spartan_estimator/platform/sanitize"

	"github.com/nyaruka/phonenumbers"
)

const (
	defaultRegion = "US"

	// MinDigits and MaxDigits bound an accepted phone number after stripping non-digits.
	MinDigits = 10
	MaxDigits = 15
)

// Digits returns only the digits of input.
func Digits(input string) string {
	return sanitize.Digits(input)
}

// ValidDigits reports whether input normalizes to MinDigits..MaxDigits digits.
func ValidDigits(input string) bool {
	n := len(Digits(input))
	return n >= MinDigits && n <= MaxDigits
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
