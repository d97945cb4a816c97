package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"spartan_estimator/internal/leads/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type leadNotificationEmailData struct {
	baseEmailData
	LeadID      string
	Name        string
	Phone       string
	PhoneE164   string
	Address     string
	Service     string
	Details     []string
	Estimate    string
	SubmittedAt string
	Source      string
}

func newLeadNotificationData(lead domain.Lead) leadNotificationEmailData {
	return leadNotificationEmailData{
		baseEmailData: baseEmailData{
			Title:   "New estimate request",
			Heading: "New estimate request from the Leonidas chat",
		},
		LeadID:      lead.ID,
		Name:        lead.Name,
		Phone:       lead.Phone,
		PhoneE164:   lead.PhoneE164,
		Address:     lead.Address,
		Service:     lead.ServiceLabel(),
		Details:     estimateDetails(lead.Estimate),
		Estimate:    formatRange(lead.EstimatedTotal),
		SubmittedAt: lead.SubmittedAt.UTC().Format(time.RFC1123),
		Source:      lead.Source,
	}
}

// estimateDetails lists the answered questions in chat order.
func estimateDetails(e domain.EstimateDetails) []string {
	var out []string
	addInt := func(label string, v *int) {
		if v != nil {
			out = append(out, fmt.Sprintf("%s: %d", label, *v))
		}
	}
	addInt("Stories", e.Stories)
	if e.WindowType != nil && *e.WindowType != "" {
		out = append(out, "Window cleaning: "+*e.WindowType)
	}
	addInt("Window panes", e.PaneCount)
	if e.HardWaterSpots {
		out = append(out, "Hard water spots: yes")
	}
	addInt("Solar panels", e.SolarPanels)
	addInt("Solar screens", e.SolarScreens)
	addInt("Pressure wash sides", e.PressureWashSides)
	addInt("Soft wash sides", e.SoftWashSides)
	if e.PermanentLighting {
		out = append(out, "Permanent lighting: yes")
	}
	return out
}

func formatRange(t domain.EstimatedTotal) string {
	if t.Min == 0 && t.Max == 0 {
		return "On-site estimate"
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("$%d - $%d", t.Min, t.Max)
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := htmltemplate.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderTextTemplate(name string, data any) (string, error) {
	tmpl, err := texttemplate.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse text template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute text template %s: %w", name, err)
	}
	return buf.String(), nil
}
