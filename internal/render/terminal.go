package render

import (
	"fmt"
	"strings"

	"visaverse-copilot/internal/catalog"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#83a598")
	colorHeader = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorWarn   = lipgloss.Color("#fabd2f")
	colorGood   = lipgloss.Color("#8ec07c")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleGood    = lipgloss.NewStyle().Foreground(colorGood)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			PaddingLeft(2).
			PaddingRight(2)
)

// Terminal renders v for a terminal. Collapsed sections show only their
// heading.
func Terminal(v *View) string {
	if !v.Found() {
		return styleBox.Render(styleWarn.Render(NotFoundMessage) + "\n\n" + styleDim.Render("[r] "+StartOverLabel))
	}

	rec := v.Record
	var b strings.Builder

	b.WriteString(styleGood.Render("✓ "+TitleReady) + "\n")
	b.WriteString(styleTitle.Render(fmt.Sprintf("%s %s %s", rec.Flag, rec.Country, rec.VisaType)) + "\n")
	b.WriteString(rec.Overview + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n\n",
		styleDim.Render("Processing:"), rec.ProcessingTime,
		styleDim.Render("Validity:"), rec.ValidityPeriod,
		styleDim.Render("Work:"), rec.WorkRights))

	if strings.TrimSpace(v.Roadmap) != "" {
		b.WriteString(styleBox.Render(styleTitle.Render(TitleRoadmap)+"\n\n"+RoadmapText(v.Roadmap)) + "\n\n")
	}

	for i, s := range Sections {
		marker := "▾"
		if !v.Expanded(s) {
			marker = "▸"
		}
		b.WriteString(styleHeading.Render(fmt.Sprintf("%s [%d] %s", marker, i+1, SectionTitle(s))) + "\n")
		if v.Expanded(s) {
			b.WriteString(sectionBody(rec, s))
		}
		b.WriteString("\n")
	}

	b.WriteString(styleDim.Render(Disclaimer))
	return b.String()
}

func sectionBody(rec catalog.CountryRecord, s Section) string {
	var b strings.Builder
	switch s {
	case SectionDocuments:
		for _, d := range rec.Documents {
			b.WriteString("  " + styleBold.Render(d.Category) + "\n")
			for _, item := range d.Items {
				b.WriteString("    ☐ " + item + "\n")
			}
		}
	case SectionTimeline:
		for _, st := range rec.Steps {
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", st.Step, styleBold.Render(st.Title), styleDim.Render("("+st.Timeframe+")")))
			b.WriteString("     " + st.Description + "\n")
		}
	case SectionCosts:
		for _, c := range rec.Costs {
			line := fmt.Sprintf("  %-34s %s", c.Item, c.Amount)
			if c.Note != "" {
				line += "  " + styleDim.Render(c.Note)
			}
			b.WriteString(line + "\n")
		}
	case SectionRisks:
		for _, r := range rec.CommonRejectionReasons {
			b.WriteString("  " + styleWarn.Render("!") + " " + r + "\n")
		}
	case SectionNextSteps:
		for _, t := range rec.Tips {
			b.WriteString("  → " + t + "\n")
		}
		b.WriteString("  " + styleDim.Render(TitleResources) + "\n")
		for _, l := range rec.OfficialLinks {
			b.WriteString(fmt.Sprintf("    %s  %s\n", l.Title, styleDim.Render(l.URL)))
		}
	}
	return b.String()
}

// RoadmapText converts the generated markdown to plain styled terminal text.
func RoadmapText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case headingRe.MatchString(trimmed):
			out = append(out, styleHeading.Render(headingRe.ReplaceAllString(trimmed, "$1")))
		case bulletRe.MatchString(line):
			out = append(out, "  • "+renderBold(bulletRe.ReplaceAllString(line, "$1")))
		default:
			out = append(out, renderBold(line))
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func renderBold(s string) string {
	return boldRe.ReplaceAllStringFunc(s, func(m string) string {
		return styleBold.Render(strings.Trim(m, "*"))
	})
}
