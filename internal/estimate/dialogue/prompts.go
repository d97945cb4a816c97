package dialogue

import (
	"fmt"
	"strings"

	"spartan_estimator/internal/estimate/domain"
	"spartan_estimator/internal/estimate/pricing"
)

// BusinessPhone is the call-in number quoted to visitors.
const BusinessPhone = "(702) 509-3854"

const serviceMenu = `1. **Window Cleaning**
2. **Solar Panel Cleaning**
3. **Pressure Washing**
4. **Soft Wash**
5. **Permanent Lighting**
6. **Multiple Services**`

const storiesMenu = `1. **1-Story**
2. **2-Story**
3. **3-Story**`

const greetingPrompt = `**LEONIDAS here, warrior.**

I'm the Spartan Estimator — I'll help you get a battle-ready quote for your property.

What service are you interested in today?

1. **Window Cleaning** (Interior/Exterior)
2. **Solar Panel Cleaning**
3. **Pressure Washing**
4. **Soft Wash**
5. **Permanent Lighting**
6. **Multiple Services**

Just type the number or tell me what you need.`

const (
	serviceRetryPrompt = "I didn't catch that, soldier. Please choose a service:\n\n" + serviceMenu

	windowChosenPrompt = "**Window cleaning — excellent choice, soldier.**\n\n" +
		"Let's assess your fortress. How many stories is your home?\n\n" + storiesMenu

	solarChosenPrompt = "**Solar panel cleaning — keep that energy flowing!**\n\n" +
		"How many solar panels does your property have? (Just give me a number)"

	pressureChosenPrompt = "**Pressure washing — we'll blast away the enemy dirt.**\n\n" +
		"How many sides of your property need pressure washing? (Front, back, left, right = 4 sides max)"

	softChosenPrompt = "**Soft wash — the gentle warrior's approach.**\n\n" +
		"Perfect for stucco, painted surfaces, and roofs. How many sides need soft washing?\n\n" +
		"(Each side is $200)"

	lightingChosenPrompt = `**Permanent lighting — illuminate your castle year-round!**

Our permanent lighting installations start at **$1,300** and vary based on:
- Linear footage of your roofline
- Number of peaks/valleys
- Controller features

Would you like to schedule a **free on-site estimate**? I'll need your contact info.

What's your name, warrior?`

	multipleChosenPrompt = "**A full battle plan — I respect that.**\n\n" +
		"Let's start with windows, then add the other services.\n\n" +
		"How many stories is your home?\n" + storiesMenu

	storiesRetryPrompt = "Please select the number of stories: **1**, **2**, or **3**"

	windowTypeRetryPrompt = "Please select: **1** (Exterior), **2** (Interior), or **3** (Both)"

	paneUnknownPrompt = `**No problem — we'll assess on-site.**

Do you have **hard water spots** on your windows? (Mineral deposits from sprinklers, often white/cloudy stains)

This requires special treatment and affects pricing.

**Yes** or **No**?`

	paneRetryPrompt = `Please enter a number of panes, or say "**not sure**" if you'd like an on-site assessment.`

	hardWaterYes = "**Hard water treatment added — we'll restore that glass to crystal clarity.**"
	hardWaterNo  = "**No hard water — your glass is in good shape.**"

	addonSolarAsk = `Now, any **solar panels** that need cleaning? If yes, how many? If not, just say "**no**".`

	addonSolarNone = "**No solar panels — moving on.**\n\n" +
		"Any **pressure washing** needed? (Driveways, patios, walkways, walls)\n\n" +
		`If yes, how many sides of your home? If not, say "**no**".`
	addonSolarRetry = `Please enter the number of solar panels, or say "**no**".`

	addonPressureNone = "**No pressure washing — got it.**\n\n" +
		"How about **soft wash**? Great for stucco, painted surfaces, and delicate materials.\n\n" +
		`How many sides? Or say "**no**".`
	addonPressureRetry = `Please enter the number of sides (1-4), or say "**no**".`

	addonSoftNone = "**No soft wash.**\n\n" +
		"Last one: Interested in **permanent lighting** installation? (Starts at $1,300)\n\n" +
		"**Yes** or **No**?"
	addonSoftRetry = `Please enter the number of sides, or say "**no**".`

	lightingYes = "**Permanent lighting — your fortress will shine!**"
	lightingNo  = "**No lighting — all good.**"

	solarPanelsRetry  = "Please enter the number of solar panels."
	solarScreensRetry = `Please enter the number of solar screens, or say "**no**".`
	pressureRetry     = "How many sides need pressure washing? (1-4)"
	softWashRetry     = "How many sides need soft washing? (1-4)"

	readyToSchedule = "Ready to schedule? What's your name?"

	nameRetryPrompt    = "Please provide your name so we can personalize your service."
	phoneSavedPrompt   = "**Phone number saved.**\n\nLast thing — what's the address for service? (Street, City, State)"
	phoneRetryPrompt   = "Please provide a valid phone number (10 digits)."
	addressRetryPrompt = "Please provide your service address."

	// SubmittingPrompt is shown while the lead submission is in flight.
	SubmittingPrompt = "**SUBMITTING YOUR REQUEST...**\n\nPlease wait while we log your information."

	freshStartPrompt = "**Fresh start, soldier!**\n\nWhat service are you interested in?\n\n" + serviceMenu

	submittedPrompt = "Your estimate request has been submitted! Call **" + BusinessPhone + "** for immediate assistance.\n\n" +
		`Type "**start over**" to get a new estimate.`

	unknownStepPrompt = `I'm not sure how to respond to that. Type "**start over**" to begin a new estimate, or call **` + BusinessPhone + `**.`

	// TooLongPrompt answers a message over MaxMessageLength characters.
	TooLongPrompt = "**Message too long.** Please keep your response under 500 characters."

	// SessionLimitPrompt answers once the transcript is full.
	SessionLimitPrompt = "**Session limit reached.** Please call **" + BusinessPhone + "** to continue."
)

func storiesChosenPrompt(stories int) string {
	return fmt.Sprintf(`**%d-story home — noted.**

Do you need:
1. **Exterior only** cleaning
2. **Interior only** cleaning
3. **Both interior AND exterior** (Full service)`, stories)
}

func windowTypeChosenPrompt(t domain.WindowType) string {
	label := "Full service"
	if t != domain.WindowTypeBoth {
		s := string(t)
		label = strings.ToUpper(s[:1]) + s[1:]
	}
	return fmt.Sprintf(`**%s cleaning — roger that.**

Now, here's where precision matters. Do you know approximately how many **window panes** your home has?

*A pane is each individual piece of glass. For example, a double-hung window has 2 panes. A large picture window is 1 pane.*

If you're not sure, just say "**not sure**" and I'll estimate based on your home's stories.`, label)
}

func paneCountPrompt(panes int) string {
	return fmt.Sprintf(`**%d panes — got it.**

Each pane is **$8 - $10** depending on accessibility and condition.

Do you have **hard water spots** on your windows? (Mineral deposits from sprinklers)

**Yes** or **No**?`, panes)
}

func hardWaterLine(yes bool) string {
	if yes {
		return hardWaterYes
	}
	return hardWaterNo
}

func hardWaterSummaryPrompt(r domain.Record) string {
	return hardWaterLine(r.HardWaterSpots) + "\n\n" +
		"Almost done, warrior. Let me calculate your estimate...\n\n" +
		pricing.Summary(r) + "\n\n" +
		"Would you like to **schedule a free on-site estimate**? I'll need your name and phone number to have our team reach out."
}

func addonSolarAddedPrompt(panels int) string {
	return fmt.Sprintf("**%d solar panels — added at $10 per panel.**\n\n", panels) +
		"Any **pressure washing** needed? (Driveways, patios, walkways, walls)\n\n" +
		`How many sides of your home? Or say "**no**".`
}

func addonPressureAddedPrompt(sides int) string {
	return fmt.Sprintf("**%d sides for pressure washing — locked in.**\n\n", sides) +
		`How about **soft wash**? How many sides? Or say "**no**".`
}

func addonSoftAddedPrompt(sides int) string {
	return fmt.Sprintf("**%d sides for soft wash at $200/side — added.**\n\n", sides) +
		"Last one: Interested in **permanent lighting**? (Starts at $1,300)\n\n" +
		"**Yes** or **No**?"
}

func lightingSummaryPrompt(r domain.Record) string {
	line := lightingNo
	if r.PermanentLighting {
		line = lightingYes
	}
	return line + "\n\nHere's your complete battle estimate:\n\n" +
		pricing.Summary(r) + "\n\n" +
		"Ready to **schedule your free on-site estimate**? What's your name, warrior?"
}

func solarPanelsPrompt(panels int) string {
	return fmt.Sprintf("**%d solar panels at $10 each = $%d**\n\n", panels, panels*10) +
		`Do you also have **solar screens** that need cleaning? If yes, how many? If not, say "**no**".`
}

func solarScreensPrompt(r domain.Record, screens int) string {
	return fmt.Sprintf("**%d solar screens at $10 each — added!**\n\n", screens) +
		pricing.Summary(r) + "\n\n" + readyToSchedule
}

func pressureSidesPrompt(r domain.Record, sides int) string {
	return fmt.Sprintf("**%d sides for pressure washing — $%d**\n\n", sides, pricing.PressureWashPrice(sides)) +
		pricing.Summary(r) + "\n\n" + readyToSchedule
}

func softWashSidesPrompt(r domain.Record, sides int) string {
	return fmt.Sprintf("**%d sides for soft wash — $%d**\n\n", sides, pricing.SoftWashPrice(sides)) +
		pricing.Summary(r) + "\n\n" + readyToSchedule
}

func namePrompt(name string) string {
	return fmt.Sprintf("**Welcome to the Spartan family, %s!**\n\nWhat's the best phone number to reach you?", name)
}

// Outcome renders the closing message for a settled lead submission. On
// failure the visitor still gets the quote computed from r.
func Outcome(r domain.Record, result domain.SubmissionResult) string {
	if result.Success {
		return fmt.Sprintf(`**MISSION COMPLETE!**

Your information has been logged:
- **Name:** %s
- **Phone:** %s
- **Address:** %s

**A Spartan warrior will contact you within 24 hours** to confirm your free on-site estimate.

For immediate assistance, call us directly at **%s**.

*"Clear Views, Cleaner Living"*

Anything else I can help you with?`,
			domain.Deref(r.Name), domain.Deref(r.Phone), domain.Deref(r.Address), BusinessPhone)
	}

	return "**We encountered an issue saving your information.**\n\n" +
		"Don't worry — please call us directly at **" + BusinessPhone + "** and we'll get you scheduled right away.\n\n" +
		"Your estimated quote:\n" + pricing.Summary(r)
}
