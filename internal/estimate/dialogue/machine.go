// Package dialogue implements the estimate chat's decision tree. Advance is
// pure: it computes the next record and reply and leaves every side effect,
// lead submission included, to the caller through Transition.Command.
package dialogue

import (
	"strings"

	"spartan_estimator/internal/estimate/domain"
	"spartan_estimator/internal/estimate/pricing"
)

// Command is a side effect the caller runs after applying a transition.
type Command int

const (
	CommandNone Command = iota
	CommandSubmitLead
)

// Transition is the outcome of one visitor message.
type Transition struct {
	Record  domain.Record
	Reply   string
	Command Command
	// Quoted is set when Reply carries a rendered price summary.
	Quoted bool
}

// Advance classifies text against the record's current step and returns the
// next record and bot reply. Unrecognized input returns the record unchanged
// with the step's retry prompt.
func Advance(r domain.Record, text string) Transition {
	rec := r.Snapshot()
	raw := strings.TrimSpace(text)
	msg := strings.ToLower(raw)

	switch rec.Step {
	case domain.StepGreeting:
		return greet(rec, msg)
	case domain.StepService:
		if m := classifyService(msg); m.OK {
			return selectService(rec, m.Value)
		}
		return stay(rec, serviceRetryPrompt)
	case domain.StepStories:
		return answerStories(rec, msg)
	case domain.StepWindowType:
		return answerWindowType(rec, msg)
	case domain.StepPaneCount:
		return answerPaneCount(rec, msg)
	case domain.StepHardWater:
		return answerHardWater(rec, msg)
	case domain.StepAddonSolar, domain.StepAddonPressure, domain.StepAddonSoftWash:
		return answerAddon(rec, msg)
	case domain.StepAddonLighting:
		rec.PermanentLighting = classifyYesNo(msg).Value
		rec.Step = domain.StepName
		return quoted(rec, lightingSummaryPrompt(rec))
	case domain.StepSolarPanels:
		if m := classifyCount(msg); m.OK {
			rec.SolarPanels = domain.IntPtr(m.Value)
			rec.Step = domain.StepSolarScreens
			return next(rec, solarPanelsPrompt(m.Value))
		}
		return stay(rec, solarPanelsRetry)
	case domain.StepSolarScreens:
		return answerSolarScreens(rec, msg)
	case domain.StepPressureSides:
		if m := classifySides(msg); m.OK {
			rec.PressureWashSides = domain.IntPtr(m.Value)
			rec.Step = domain.StepName
			return quoted(rec, pressureSidesPrompt(rec, m.Value))
		}
		return stay(rec, pressureRetry)
	case domain.StepSoftWashSides:
		if m := classifySides(msg); m.OK {
			rec.SoftWashSides = domain.IntPtr(m.Value)
			rec.Step = domain.StepName
			return quoted(rec, softWashSidesPrompt(rec, m.Value))
		}
		return stay(rec, softWashRetry)
	case domain.StepName:
		if m := classifyName(msg, raw); m.OK {
			rec.Name = domain.StringPtr(m.Value)
			rec.Step = domain.StepPhone
			return next(rec, namePrompt(m.Value))
		}
		return stay(rec, nameRetryPrompt)
	case domain.StepPhone:
		if m := classifyPhone(msg); m.OK {
			rec.Phone = domain.StringPtr(m.Value)
			rec.Step = domain.StepAddress
			return next(rec, phoneSavedPrompt)
		}
		return stay(rec, phoneRetryPrompt)
	case domain.StepAddress:
		if m := classifyAddress(msg, raw); m.OK {
			rec.Address = domain.StringPtr(m.Value)
			rec.Step = domain.StepSubmitted
			return Transition{Record: rec, Reply: SubmittingPrompt, Command: CommandSubmitLead}
		}
		return stay(rec, addressRetryPrompt)
	case domain.StepSubmitted:
		if classifyRestart(msg).OK {
			return next(domain.Record{}, freshStartPrompt)
		}
		return stay(rec, submittedPrompt)
	default:
		return stay(rec, unknownStepPrompt)
	}
}

// Greeting opens a fresh conversation.
func Greeting() Transition {
	return Advance(domain.Record{}, "")
}

// greet shows the service menu. After a restart the menu is already on
// screen, so a recognizable service choice is taken directly.
func greet(rec domain.Record, msg string) Transition {
	if msg != "" {
		if m := classifyService(msg); m.OK {
			return selectService(rec, m.Value)
		}
	}
	rec.Step = domain.StepService
	return next(rec, greetingPrompt)
}

func selectService(rec domain.Record, svc domain.Service) Transition {
	rec.Service = svc
	switch svc {
	case domain.ServiceWindow:
		rec.Step = domain.StepStories
		return next(rec, windowChosenPrompt)
	case domain.ServiceSolar:
		rec.Step = domain.StepSolarPanels
		return next(rec, solarChosenPrompt)
	case domain.ServicePressure:
		rec.Step = domain.StepPressureSides
		return next(rec, pressureChosenPrompt)
	case domain.ServiceSoft:
		rec.Step = domain.StepSoftWashSides
		return next(rec, softChosenPrompt)
	case domain.ServiceLighting:
		rec.PermanentLighting = true
		rec.Step = domain.StepName
		return next(rec, lightingChosenPrompt)
	default:
		rec.Service = domain.ServiceMultiple
		rec.Step = domain.StepStories
		return next(rec, multipleChosenPrompt)
	}
}

func answerStories(rec domain.Record, msg string) Transition {
	m := classifyStories(msg)
	if !m.OK {
		return stay(rec, storiesRetryPrompt)
	}
	rec.Stories = domain.IntPtr(m.Value)
	rec.Step = domain.StepWindowType
	return next(rec, storiesChosenPrompt(m.Value))
}

func answerWindowType(rec domain.Record, msg string) Transition {
	m := classifyWindowType(msg)
	if !m.OK {
		return stay(rec, windowTypeRetryPrompt)
	}
	rec.WindowType = m.Value
	rec.Step = domain.StepPaneCount
	return next(rec, windowTypeChosenPrompt(m.Value))
}

func answerPaneCount(rec domain.Record, msg string) Transition {
	m := classifyPaneCount(msg)
	if !m.OK {
		return stay(rec, paneRetryPrompt)
	}
	rec.Step = domain.StepHardWater
	if !m.Value.Known {
		return next(rec, paneUnknownPrompt)
	}
	rec.PaneCount = domain.IntPtr(m.Value.Count)
	return next(rec, paneCountPrompt(m.Value.Count))
}

func answerHardWater(rec domain.Record, msg string) Transition {
	rec.HardWaterSpots = classifyYesNo(msg).Value
	if rec.Service == domain.ServiceMultiple {
		rec.Step = domain.StepAddonSolar
		return next(rec, hardWaterLine(rec.HardWaterSpots)+"\n\n"+addonSolarAsk)
	}
	rec.Step = domain.StepName
	return quoted(rec, hardWaterSummaryPrompt(rec))
}

// answerAddon handles the solar, pressure and soft wash questions of the
// multiple-service path.
func answerAddon(rec domain.Record, msg string) Transition {
	m := classifyQuantityOrNone(msg)
	step := rec.Step
	if !m.OK {
		switch step {
		case domain.StepAddonSolar:
			return stay(rec, addonSolarRetry)
		case domain.StepAddonPressure:
			return stay(rec, addonPressureRetry)
		default:
			return stay(rec, addonSoftRetry)
		}
	}

	q := m.Value
	switch step {
	case domain.StepAddonSolar:
		rec.Step = domain.StepAddonPressure
		if q.None {
			return next(rec, addonSolarNone)
		}
		rec.SolarPanels = domain.IntPtr(q.N)
		return next(rec, addonSolarAddedPrompt(q.N))
	case domain.StepAddonPressure:
		rec.Step = domain.StepAddonSoftWash
		if q.None {
			return next(rec, addonPressureNone)
		}
		sides := domain.ClampSides(q.N)
		rec.PressureWashSides = domain.IntPtr(sides)
		return next(rec, addonPressureAddedPrompt(sides))
	default:
		rec.Step = domain.StepAddonLighting
		if q.None {
			return next(rec, addonSoftNone)
		}
		sides := domain.ClampSides(q.N)
		rec.SoftWashSides = domain.IntPtr(sides)
		return next(rec, addonSoftAddedPrompt(sides))
	}
}

func answerSolarScreens(rec domain.Record, msg string) Transition {
	m := classifyQuantityOrNone(msg)
	if !m.OK {
		return stay(rec, solarScreensRetry)
	}
	rec.Step = domain.StepName
	if m.Value.None {
		return quoted(rec, pricing.Summary(rec)+"\n\n"+readyToSchedule)
	}
	rec.SolarScreens = domain.IntPtr(m.Value.N)
	return quoted(rec, solarScreensPrompt(rec, m.Value.N))
}

func next(rec domain.Record, reply string) Transition {
	return Transition{Record: rec, Reply: reply}
}

// stay re-prompts without advancing.
func stay(rec domain.Record, reply string) Transition {
	return Transition{Record: rec, Reply: reply}
}

func quoted(rec domain.Record, reply string) Transition {
	return Transition{Record: rec, Reply: reply, Quoted: true}
}
