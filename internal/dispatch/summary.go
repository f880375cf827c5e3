// Package dispatch turns an incident analysis into something a responder
// can act on: a short spoken summary, an outbound voice call through VAPI,
// and an IncidentReported event on EventBridge.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/assets"
	"github.com/fpang/incident-dispatch/internal/inference"
)

// Location is a dispatch location with a human landmark.
type Location struct {
	Address     string `json:"address"`
	Landmark    string `json:"landmark"`
	Coordinates string `json:"coordinates"`
}

// MockLocations are the fixed Santa Clara locations used until the video
// carries real GPS data.
var MockLocations = []Location{
	{
		Address:     "500 El Camino Real, Santa Clara, CA 95053",
		Landmark:    "near Santa Clara University",
		Coordinates: "37.3496° N, 121.9390° W",
	},
	{
		Address:     "2200 Mission College Blvd, Santa Clara, CA 95054",
		Landmark:    "near Intel Headquarters",
		Coordinates: "37.3875° N, 121.9637° W",
	},
	{
		Address:     "4900 Marie P DeBartolo Way, Santa Clara, CA 95054",
		Landmark:    "near Levi's Stadium",
		Coordinates: "37.4033° N, 121.9694° W",
	},
}

// LocationPicker chooses the location reported for an incident.
type LocationPicker func() Location

// RandomLocation picks one of MockLocations uniformly.
func RandomLocation() Location {
	return MockLocations[rand.IntN(len(MockLocations))]
}

// Summary is a generated dispatch summary and the location it refers to.
type Summary struct {
	Text     string   `json:"text"`
	Location Location `json:"location"`
}

// SummaryGenerator produces short dispatch-style summaries with a text model.
type SummaryGenerator struct {
	model inference.Client
	pick  LocationPicker
}

// NewSummaryGenerator returns a generator backed by model. A nil pick uses
// RandomLocation.
func NewSummaryGenerator(model inference.Client, pick LocationPicker) *SummaryGenerator {
	if pick == nil {
		pick = RandomLocation
	}
	return &SummaryGenerator{model: model, pick: pick}
}

// Generate summarizes analysis in under 100 words for a dispatcher.
func (g *SummaryGenerator) Generate(ctx context.Context, analysis string) (*Summary, error) {
	if strings.TrimSpace(analysis) == "" {
		return nil, errors.New("incident analysis is required")
	}

	loc := g.pick()
	prompt := assets.RenderSummaryPrompt(assets.SummaryData{
		Address:     loc.Address,
		Landmark:    loc.Landmark,
		Coordinates: loc.Coordinates,
		Analysis:    analysis,
	})

	start := time.Now()
	text, err := g.model.Infer(ctx, inference.NewRequest(inference.TextPart(prompt)))
	if err != nil {
		return nil, fmt.Errorf("generate dispatch summary: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("generate dispatch summary: empty response")
	}

	log.Info().
		Str("address", loc.Address).
		Int("summaryLength", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Dispatch summary generated")
	return &Summary{Text: text, Location: loc}, nil
}
