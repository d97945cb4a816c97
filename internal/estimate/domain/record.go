// Package domain holds the estimate record threaded through a chat
// conversation and the quote derived from it.
package domain

// Service is the service line a visitor asked about.
type Service string

const (
	ServiceNone     Service = ""
	ServiceWindow   Service = "window"
	ServiceSolar    Service = "solar"
	ServicePressure Service = "pressure"
	ServiceSoft     Service = "soft"
	ServiceLighting Service = "lighting"
	ServiceMultiple Service = "multiple"
)

// WindowType selects which side of the glass gets cleaned.
type WindowType string

const (
	WindowTypeNone     WindowType = ""
	WindowTypeExterior WindowType = "exterior"
	WindowTypeInterior WindowType = "interior"
	WindowTypeBoth     WindowType = "both"
)

// MaxSides is the number of property sides a wash can cover.
const MaxSides = 4

// Step is a position in the estimate decision tree.
type Step int

const (
	StepGreeting      Step = 0
	StepService       Step = 1
	StepStories       Step = 2
	StepWindowType    Step = 3
	StepPaneCount     Step = 4
	StepHardWater     Step = 5
	StepAddonSolar    Step = 6
	StepAddonPressure Step = 7
	StepAddonSoftWash Step = 8
	StepAddonLighting Step = 9
	StepSolarPanels   Step = 10
	StepSolarScreens  Step = 11
	StepPressureSides Step = 12
	StepSoftWashSides Step = 14
	StepName          Step = 16
	StepPhone         Step = 17
	StepAddress       Step = 18
	StepSubmitted     Step = 19
)

// Record accumulates everything a visitor tells the estimator. Nil pointers
// mean "not answered".
type Record struct {
	Service           Service    `json:"service,omitempty"`
	Stories           *int       `json:"stories"`
	WindowType        WindowType `json:"windowType,omitempty"`
	PaneCount         *int       `json:"paneCount"`
	SolarPanels       *int       `json:"solarPanels"`
	SolarScreens      *int       `json:"solarScreens"`
	PressureWashSides *int       `json:"pressureWashSides"`
	SoftWashSides     *int       `json:"softWashSides"`
	PermanentLighting bool       `json:"permanentLighting"`
	HardWaterSpots    bool       `json:"hardWaterSpots"`
	Name              *string    `json:"name"`
	Phone             *string    `json:"phone"`
	Address           *string    `json:"address"`
	Step              Step       `json:"step"`
}

// Snapshot returns a deep copy that shares no pointers with r.
func (r Record) Snapshot() Record {
	out := r
	out.Stories = cloneInt(r.Stories)
	out.PaneCount = cloneInt(r.PaneCount)
	out.SolarPanels = cloneInt(r.SolarPanels)
	out.SolarScreens = cloneInt(r.SolarScreens)
	out.PressureWashSides = cloneInt(r.PressureWashSides)
	out.SoftWashSides = cloneInt(r.SoftWashSides)
	out.Name = cloneString(r.Name)
	out.Phone = cloneString(r.Phone)
	out.Address = cloneString(r.Address)
	return out
}

// ClampSides limits a side count to 0..MaxSides.
func ClampSides(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxSides {
		return MaxSides
	}
	return n
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// Deref returns the pointed-to value or zero.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
