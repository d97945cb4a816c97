// Package pricing turns an estimate record into a price range.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"spartan_estimator/internal/estimate/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	paneMinRate = 8
	paneMaxRate = 10

	solarPanelRate  = 10
	solarScreenRate = 10

	pressureBase    = 150
	pressurePerSide = 50

	softWashPerSide = 200

	lightingMin = 1300
	lightingMax = 2500

	flatRateMinFactor  = 0.9
	hardWaterMinFactor = 0.3
	hardWaterMaxFactor = 0.5
)

// OnSiteEstimate is the placeholder breakdown used when nothing can be priced.
const OnSiteEstimate = "We'll provide a detailed estimate on-site."

// flatRates maps window type and story count to a whole-house price, used
// when the pane count is unknown.
var flatRates = map[domain.WindowType]map[int]int{
	domain.WindowTypeExterior: {1: 200, 2: 300, 3: 400},
	domain.WindowTypeInterior: {1: 150, 2: 200, 3: 250},
	domain.WindowTypeBoth:     {1: 250, 2: 350, 3: 450},
}

// Calculate computes the quote for r. Line items are added in a fixed order
// and the hard water surcharge is derived from the running totals last.
func Calculate(r domain.Record) domain.Quote {
	min, max, items := itemize(r)
	if len(items) == 0 {
		return domain.Quote{Breakdown: []string{OnSiteEstimate}}
	}
	return domain.Quote{Min: min, Max: max, Breakdown: items}
}

// Summary renders the quote as the chat's markdown breakdown.
func Summary(r domain.Record) string {
	min, max, items := itemize(r)
	if len(items) == 0 {
		return OnSiteEstimate
	}

	p := message.NewPrinter(language.AmericanEnglish)

	var b strings.Builder
	b.WriteString("**SPARTAN ESTIMATE BREAKDOWN:**\n\n")
	for _, item := range items {
		b.WriteString("• ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString(p.Sprintf("\n**TOTAL ESTIMATE: $%d - $%d**\n\n", min, max))
	b.WriteString("*Final price confirmed after free on-site assessment.*")
	return b.String()
}

// PressureWashPrice is the price for washing the given number of sides.
func PressureWashPrice(sides int) int {
	return pressureBase + (sides-1)*pressurePerSide
}

// SoftWashPrice is the price for soft washing the given number of sides.
func SoftWashPrice(sides int) int {
	return sides * softWashPerSide
}

func itemize(r domain.Record) (min, max int, items []string) {
	panes := domain.Deref(r.PaneCount)
	stories := domain.Deref(r.Stories)

	if panes > 0 {
		lo, hi := panes*paneMinRate, panes*paneMaxRate
		min += lo
		max += hi
		items = append(items, fmt.Sprintf("Window Panes (%d): $%d - $%d", panes, lo, hi))
	} else if stories > 0 && r.WindowType != domain.WindowTypeNone {
		if price := flatRates[r.WindowType][stories]; price > 0 {
			lo := round(float64(price) * flatRateMinFactor)
			min += lo
			max += price
			items = append(items, fmt.Sprintf("%d-Story %s Clean: $%d - $%d", stories, flatRateLabel(r.WindowType), lo, price))
		}
	}

	if n := domain.Deref(r.SolarPanels); n > 0 {
		price := n * solarPanelRate
		min += price
		max += price
		items = append(items, fmt.Sprintf("Solar Panels (%d): $%d", n, price))
	}

	if n := domain.Deref(r.SolarScreens); n > 0 {
		price := n * solarScreenRate
		min += price
		max += price
		items = append(items, fmt.Sprintf("Solar Screens (%d): $%d", n, price))
	}

	if sides := domain.ClampSides(domain.Deref(r.PressureWashSides)); sides > 0 {
		price := PressureWashPrice(sides)
		min += price
		max += price
		items = append(items, fmt.Sprintf("Pressure Washing (%d sides): $%d", sides, price))
	}

	if sides := domain.ClampSides(domain.Deref(r.SoftWashSides)); sides > 0 {
		price := SoftWashPrice(sides)
		min += price
		max += price
		items = append(items, fmt.Sprintf("Soft Wash (%d sides): $%d", sides, price))
	}

	if r.PermanentLighting {
		min += lightingMin
		max += lightingMax
		items = append(items, "Permanent Lighting: $1,300 - $2,500+")
	}

	if r.HardWaterSpots && (panes > 0 || stories > 0) {
		lo := round(float64(min) * hardWaterMinFactor)
		hi := round(float64(max) * hardWaterMaxFactor)
		min += lo
		max += hi
		items = append(items, fmt.Sprintf("Hard Water Spot Treatment: +$%d - $%d", lo, hi))
	}

	return min, max, items
}

func flatRateLabel(t domain.WindowType) string {
	switch t {
	case domain.WindowTypeBoth:
		return "Full"
	case domain.WindowTypeExterior:
		return "Exterior"
	case domain.WindowTypeInterior:
		return "Interior"
	default:
		return string(t)
	}
}

// round is half away from zero; every total here is non-negative.
func round(v float64) int {
	return int(math.Round(v))
}
