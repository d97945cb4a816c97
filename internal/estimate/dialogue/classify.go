package dialogue

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"spartan_estimator/internal/estimate/domain"
	"spartan_estimator/platform/phone"
)

// Match is the result of classifying one message for one step.
type Match[T any] struct {
	Value T
	OK    bool
}

func matched[T any](v T) Match[T] { return Match[T]{Value: v, OK: true} }

func noMatch[T any]() Match[T] { return Match[T]{} }

// Quantity is an answer to a "how many, or no" question.
type Quantity struct {
	N    int
	None bool
}

// PaneAnswer is either a pane count or an admission the visitor does not know.
type PaneAnswer struct {
	Count int
	Known bool
}

const maxPaneCount = 500

var (
	firstIntRegex = regexp.MustCompile(`\d+`)
	allDigitRegex = regexp.MustCompile(`^\d+$`)
)

// firstInt extracts the first run of digits. Runs too long for an int do not match.
func firstInt(msg string) (int, bool) {
	digits := firstIntRegex.FindString(msg)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsAny(msg string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

// classifyService checks keywords in menu order; the first hit wins.
func classifyService(msg string) Match[domain.Service] {
	switch {
	case containsAny(msg, "window", "1"):
		return matched(domain.ServiceWindow)
	case containsAny(msg, "solar panel", "2"):
		return matched(domain.ServiceSolar)
	case containsAny(msg, "pressure", "3"):
		return matched(domain.ServicePressure)
	case containsAny(msg, "soft", "4"):
		return matched(domain.ServiceSoft)
	case containsAny(msg, "light", "permanent", "5"):
		return matched(domain.ServiceLighting)
	case containsAny(msg, "multiple", "6", "bundle"):
		return matched(domain.ServiceMultiple)
	}
	return noMatch[domain.Service]()
}

func classifyStories(msg string) Match[int] {
	for _, s := range []int{1, 2, 3} {
		if strings.Contains(msg, strconv.Itoa(s)) {
			return matched(s)
		}
	}
	return noMatch[int]()
}

func classifyWindowType(msg string) Match[domain.WindowType] {
	switch {
	case containsAny(msg, "both", "3", "full"):
		return matched(domain.WindowTypeBoth)
	case containsAny(msg, "exterior", "1", "outside"):
		return matched(domain.WindowTypeExterior)
	case containsAny(msg, "interior", "2", "inside"):
		return matched(domain.WindowTypeInterior)
	}
	return noMatch[domain.WindowType]()
}

func classifyPaneCount(msg string) Match[PaneAnswer] {
	if containsAny(msg, "not sure", "don't know", "unsure", "idk") {
		return matched(PaneAnswer{})
	}
	if n, ok := firstInt(msg); ok && n > 0 && n < maxPaneCount {
		return matched(PaneAnswer{Count: n, Known: true})
	}
	return noMatch[PaneAnswer]()
}

// classifyYesNo never fails: anything that is not a yes is a no.
func classifyYesNo(msg string) Match[bool] {
	return matched(containsAny(msg, "yes", "yeah", "yep"))
}

// classifyQuantityOrNone accepts a decline keyword or a number. A zero is a decline.
func classifyQuantityOrNone(msg string) Match[Quantity] {
	if containsAny(msg, "no", "none") {
		return matched(Quantity{None: true})
	}
	n, ok := firstInt(msg)
	if !ok {
		return noMatch[Quantity]()
	}
	if n == 0 {
		return matched(Quantity{None: true})
	}
	return matched(Quantity{N: n})
}

// classifyCount accepts any number, zero included.
func classifyCount(msg string) Match[int] {
	if n, ok := firstInt(msg); ok {
		return matched(n)
	}
	return noMatch[int]()
}

// classifySides accepts a positive number of sides, clamped to the maximum.
func classifySides(msg string) Match[int] {
	if n, ok := firstInt(msg); ok && n > 0 {
		return matched(domain.ClampSides(n))
	}
	return noMatch[int]()
}

// classifyName rejects single characters and bare numbers. raw keeps the
// visitor's capitalization.
func classifyName(msg, raw string) Match[string] {
	if utf8.RuneCountInString(msg) > 1 && !allDigitRegex.MatchString(msg) {
		return matched(raw)
	}
	return noMatch[string]()
}

func classifyPhone(msg string) Match[string] {
	if digits := phone.Digits(msg); len(digits) >= phone.MinDigits {
		return matched(digits)
	}
	return noMatch[string]()
}

func classifyAddress(msg, raw string) Match[string] {
	if utf8.RuneCountInString(msg) > 5 {
		return matched(raw)
	}
	return noMatch[string]()
}

func classifyRestart(msg string) Match[bool] {
	if containsAny(msg, "start over", "new", "reset") {
		return matched(true)
	}
	return noMatch[bool]()
}
