// Package incident implements the video-to-report pipeline: per-frame
// description, cross-frame synthesis, narrative parsing, keyword and
// severity derivation, and dispatch report rendering.
//
// The package performs no I/O of its own. Frame sampling and model
// inference are injected through the FrameSampler and inference.Client
// interfaces so the pipeline can be driven by ffmpeg + Bedrock in
// production and by fakes in tests.
package incident

import (
	"context"
	"sort"
)

// FramesPerVideo is the fixed number of frames sampled from each video.
const FramesPerVideo = 4

// Frame is one sampled still image.
type Frame struct {
	// ID is 1-based, in sampling order.
	ID int `json:"id"`

	// Image is the base64-encoded JPEG payload.
	Image string `json:"image"`

	// Timestamp is the elapsed playback position as MM:SS.
	Timestamp string `json:"timestamp"`
}

// FrameSampler selects representative frames from a local video file.
// Implemented by video.Sampler.
type FrameSampler interface {
	Sample(ctx context.Context, videoPath string) ([]Frame, error)
}

// StructuredAnalysis is the five-section parsed form of the synthesis
// narrative. Each section keeps bullets in order of appearance.
type StructuredAnalysis struct {
	VehicleDetails []string `json:"vehicleDetails"`
	Casualties     []string `json:"casualties"`
	Hazards        []string `json:"hazards"`
	Environment    []string `json:"environment"`
	Services       []string `json:"services"`
}

// newStructuredAnalysis returns an analysis with all sections non-nil so
// empty sections marshal as [] rather than null.
func newStructuredAnalysis() StructuredAnalysis {
	return StructuredAnalysis{
		VehicleDetails: []string{},
		Casualties:     []string{},
		Hazards:        []string{},
		Environment:    []string{},
		Services:       []string{},
	}
}

// IsEmpty reports whether no section captured any bullet.
func (a StructuredAnalysis) IsEmpty() bool {
	return len(a.VehicleDetails) == 0 &&
		len(a.Casualties) == 0 &&
		len(a.Hazards) == 0 &&
		len(a.Environment) == 0 &&
		len(a.Services) == 0
}

// Canonical hazard keywords.
const (
	KeywordFireHazard       = "Fire Hazard"
	KeywordSmoke            = "Smoke"
	KeywordTrappedOccupants = "Trapped Occupants"
	KeywordInjuries         = "Injuries"
	KeywordVehicleCollision = "Vehicle Collision"
	KeywordFuelLeak         = "Fuel Leak"
)

// KeywordSet is an unordered set of canonical hazard keywords.
type KeywordSet map[string]struct{}

// Has reports whether the set contains keyword.
func (k KeywordSet) Has(keyword string) bool {
	_, ok := k[keyword]
	return ok
}

// Sorted returns the keywords in lexical order. Set order carries no
// meaning; sorting only keeps logs and JSON stable.
func (k KeywordSet) Sorted() []string {
	out := make([]string, 0, len(k))
	for kw := range k {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// Severity is the coarse incident classification.
type Severity string

const (
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
)

// IncidentReport is the complete result of one pipeline run.
type IncidentReport struct {
	Frames     []Frame            `json:"frames"`
	Analysis   StructuredAnalysis `json:"analysis"`
	Keywords   []string           `json:"keywords"`
	Severity   Severity           `json:"severity"`
	Report     string             `json:"report"`
	FrameCount int                `json:"frame_count"`

	// Narrative is the raw synthesis output the analysis was parsed from.
	Narrative string `json:"-"`
}
