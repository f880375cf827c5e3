package incident

import "strings"

// HeaderSetVersion identifies the header literals below. Bump it whenever
// a literal changes, since the synthesis prompt and the parser must agree.
const HeaderSetVersion = 1

// Section header literals the synthesis model is instructed to emit.
const (
	HeaderVehicleDetails = "**Vehicle Details:**"
	HeaderCasualties     = "**Casualties and Trapped Persons:**"
	HeaderHazards        = "**Hazard Assessment:**"
	HeaderEnvironment    = "**Environmental Conditions:**"
	HeaderServices       = "**Emergency Services Required:**"
)

// section identifies one of the five analysis fields.
type section int

const (
	sectionNone section = iota
	sectionVehicleDetails
	sectionCasualties
	sectionHazards
	sectionEnvironment
	sectionServices
)

// sectionHeaders lists headers in the order they are requested.
var sectionHeaders = []struct {
	header  string
	section section
}{
	{HeaderVehicleDetails, sectionVehicleDetails},
	{HeaderCasualties, sectionCasualties},
	{HeaderHazards, sectionHazards},
	{HeaderEnvironment, sectionEnvironment},
	{HeaderServices, sectionServices},
}

// SectionHeaders returns the five header literals in prompt order.
func SectionHeaders() []string {
	out := make([]string, len(sectionHeaders))
	for i, h := range sectionHeaders {
		out[i] = h.header
	}
	return out
}

// bulletMarkers are the accepted leading bullet characters. "*" only
// counts when followed by whitespace so bold text is not read as a bullet.
var bulletMarkers = []string{"-", "* ", "*\t", "•"}

// FormatAnalysis parses a synthesis narrative into a StructuredAnalysis.
//
// Parsing is line oriented and never fails: lines before the first
// recognised header, non-bullet lines, and bullets that are empty or end
// in ":" are dropped. A narrative without headers yields five empty
// sections.
func FormatAnalysis(narrative string) StructuredAnalysis {
	analysis := newStructuredAnalysis()
	current := sectionNone

	for _, raw := range strings.Split(narrative, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if s, ok := matchHeader(line); ok {
			current = s
			continue
		}

		// Unrecognised bold headers and bold notes never change or join a section.
		if current == sectionNone || strings.HasPrefix(line, "**") {
			continue
		}

		item, ok := stripBullet(line)
		if !ok || item == "" || strings.HasSuffix(item, ":") {
			continue
		}
		analysis.append(current, item)
	}

	return analysis
}

// matchHeader reports which section a line opens, if any.
func matchHeader(line string) (section, bool) {
	for _, h := range sectionHeaders {
		if strings.Contains(line, h.header) {
			return h.section, true
		}
	}
	return sectionNone, false
}

// stripBullet removes a leading bullet marker and surrounding whitespace.
// ok is false when the line does not start with a marker.
func stripBullet(line string) (string, bool) {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(strings.TrimPrefix(line, m)), true
		}
	}
	return "", false
}

func (a *StructuredAnalysis) append(s section, item string) {
	switch s {
	case sectionVehicleDetails:
		a.VehicleDetails = append(a.VehicleDetails, item)
	case sectionCasualties:
		a.Casualties = append(a.Casualties, item)
	case sectionHazards:
		a.Hazards = append(a.Hazards, item)
	case sectionEnvironment:
		a.Environment = append(a.Environment, item)
	case sectionServices:
		a.Services = append(a.Services, item)
	}
}
