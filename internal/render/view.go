// Package render merges a destination's static record with a generated
// roadmap and renders the result as sanitized HTML or styled terminal text.
package render

import (
	"visaverse-copilot/internal/catalog"
)

// Section identifies a collapsible block of the results view.
type Section string

const (
	SectionDocuments Section = "documents"
	SectionTimeline  Section = "timeline"
	SectionCosts     Section = "costs"
	SectionRisks     Section = "risks"
	SectionNextSteps Section = "nextSteps"
)

// Sections lists the collapsible sections in display order.
var Sections = []Section{SectionDocuments, SectionTimeline, SectionCosts, SectionRisks, SectionNextSteps}

// Fixed copy of the results view.
const (
	TitleReady      = "Your roadmap is ready"
	TitleRoadmap    = "Your Personalized Roadmap"
	TitleDocuments  = "Required Documents"
	TitleTimeline   = "Step-by-Step Timeline"
	TitleCosts      = "Estimated Costs"
	TitleRisks      = "Common Rejection Risks"
	TitleNextSteps  = "Your Next Steps"
	TitleResources  = "Official Resources:"
	NotFoundMessage = "Country data not found."
	StartOverLabel  = "Start Over"
	Disclaimer      = "Disclaimer: This is an AI-generated guide for informational purposes only. Visa requirements change frequently. Always verify information with official government sources before making any decisions. This tool does not guarantee visa approval."
)

// SectionTitle returns the heading shown for s.
func SectionTitle(s Section) string {
	switch s {
	case SectionDocuments:
		return TitleDocuments
	case SectionTimeline:
		return TitleTimeline
	case SectionCosts:
		return TitleCosts
	case SectionRisks:
		return TitleRisks
	case SectionNextSteps:
		return TitleNextSteps
	}
	return string(s)
}

// View is the merged results state for one roadmap.
type View struct {
	Destination string
	Roadmap     string
	Record      catalog.CountryRecord

	found    bool
	expanded map[Section]bool
}

// NewView looks up destination. Every section starts expanded.
func NewView(destination, roadmap string) *View {
	rec, ok := catalog.Record(destination)
	v := &View{
		Destination: destination,
		Roadmap:     roadmap,
		Record:      rec,
		found:       ok,
		expanded:    make(map[Section]bool, len(Sections)),
	}
	for _, s := range Sections {
		v.expanded[s] = true
	}
	return v
}

// Found is false when the destination has no record; the view then only
// offers a reset.
func (v *View) Found() bool {
	return v.found
}

// Toggle flips one section without touching the others.
func (v *View) Toggle(s Section) {
	if _, ok := v.expanded[s]; !ok {
		return
	}
	v.expanded[s] = !v.expanded[s]
}

func (v *View) Expanded(s Section) bool {
	return v.expanded[s]
}

// CountryName is the record's display name, or "unknown".
func (v *View) CountryName() string {
	if !v.found || v.Record.Country == "" {
		return "unknown"
	}
	return v.Record.Country
}
