package incident

import (
	"fmt"
	"strings"
	"time"
)

// Recommended service lines.
const (
	ServiceFireDepartment = "Fire Department (URGENT)"
	ServiceEMS            = "Emergency Medical Services"
	ServicePolice         = "Police"
	ServiceHazmat         = "Hazmat Team"
)

// serviceRules is evaluated in order; a service is recommended when any
// of its keywords is present.
var serviceRules = []struct {
	service  string
	keywords []string
}{
	{ServiceFireDepartment, []string{KeywordFireHazard, KeywordSmoke}},
	{ServiceEMS, []string{KeywordInjuries, KeywordTrappedOccupants}},
	{ServicePolice, []string{KeywordVehicleCollision}},
	{ServiceHazmat, []string{KeywordFuelLeak}},
}

// ClassifySeverity returns HIGH when fire or trapped occupants were
// detected, MODERATE otherwise.
func ClassifySeverity(keywords KeywordSet) Severity {
	if keywords.Has(KeywordFireHazard) || keywords.Has(KeywordTrappedOccupants) {
		return SeverityHigh
	}
	return SeverityModerate
}

// RecommendServices returns the services implied by keywords, in fixed
// order, each at most once.
func RecommendServices(keywords KeywordSet) []string {
	var services []string
	for _, rule := range serviceRules {
		for _, kw := range rule.keywords {
			if keywords.Has(kw) {
				services = append(services, rule.service)
				break
			}
		}
	}
	return services
}

// ReportGenerator renders dispatch reports. Now is the clock used for the
// report timestamp; it defaults to time.Now.
type ReportGenerator struct {
	Now func() time.Time
}

// Generate renders the human-readable dispatch report.
func (g ReportGenerator) Generate(descriptions []string, keywords KeywordSet) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "EMERGENCY INCIDENT REPORT - SEVERITY: %s\n", ClassifySeverity(keywords))
	fmt.Fprintf(&sb, "Time of Report: %s\n", now().Format("15:04:05"))

	sb.WriteString("\nINITIAL ASSESSMENT:\n")
	for _, kw := range keywords.Sorted() {
		fmt.Fprintf(&sb, "- %s\n", kw)
	}

	sb.WriteString("\nDETAILED ANALYSIS:\n")
	for i, desc := range descriptions {
		fmt.Fprintf(&sb, "Frame %d: %s\n", i+1, desc)
	}

	sb.WriteString("\nRECOMMENDED SERVICES:\n")
	for _, s := range RecommendServices(keywords) {
		fmt.Fprintf(&sb, "- %s\n", s)
	}

	return sb.String()
}
