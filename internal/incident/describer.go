package incident

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/assets"
	"github.com/fpang/incident-dispatch/internal/inference"
)

// FrameDescriber asks a vision model what is visible in one frame.
type FrameDescriber struct {
	model inference.Client
}

// NewFrameDescriber returns a describer backed by model.
func NewFrameDescriber(model inference.Client) *FrameDescriber {
	return &FrameDescriber{model: model}
}

// Describe returns the model's raw description of frame. Any failure,
// including an undecodable frame or an empty reply, is an *InferenceError.
func (d *FrameDescriber) Describe(ctx context.Context, frame Frame) (string, error) {
	img, err := base64.StdEncoding.DecodeString(frame.Image)
	if err != nil {
		return "", &InferenceError{Stage: StageFrame, FrameID: frame.ID, Err: fmt.Errorf("decode frame image: %w", err)}
	}

	start := time.Now()
	text, err := d.model.Infer(ctx, inference.NewRequest(
		inference.TextPart(assets.FrameObservationPrompt),
		inference.ImagePart(img, "image/jpeg"),
	))
	if err != nil {
		return "", &InferenceError{Stage: StageFrame, FrameID: frame.ID, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &InferenceError{Stage: StageFrame, FrameID: frame.ID, Err: fmt.Errorf("empty description")}
	}

	log.Debug().
		Int("frameId", frame.ID).
		Str("timestamp", frame.Timestamp).
		Int("descriptionLength", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Frame described")
	return text, nil
}
