package incident

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/assets"
	"github.com/fpang/incident-dispatch/internal/inference"
)

// IncidentSynthesizer merges per-frame descriptions into one narrative
// with the five fixed section headers.
type IncidentSynthesizer struct {
	model inference.Client
}

// NewIncidentSynthesizer returns a synthesizer backed by model.
func NewIncidentSynthesizer(model inference.Client) *IncidentSynthesizer {
	return &IncidentSynthesizer{model: model}
}

// BuildSynthesisPrompt returns the prompt sent for descriptions.
func BuildSynthesisPrompt(descriptions []string) string {
	return assets.RenderSynthesisPrompt(assets.SynthesisData{
		Observations: strings.Join(descriptions, " "),
		Headers:      SectionHeaders(),
	})
}

// Synthesize makes one inference call and returns the narrative unmodified.
func (s *IncidentSynthesizer) Synthesize(ctx context.Context, descriptions []string) (string, error) {
	start := time.Now()
	text, err := s.model.Infer(ctx, inference.NewRequest(
		inference.TextPart(BuildSynthesisPrompt(descriptions)),
	))
	if err != nil {
		return "", &InferenceError{Stage: StageSynthesis, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &InferenceError{Stage: StageSynthesis, Err: errors.New("empty narrative")}
	}

	log.Debug().
		Int("descriptions", len(descriptions)).
		Int("narrativeLength", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Incident narrative synthesized")
	return text, nil
}
