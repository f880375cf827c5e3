// Package inference provides vision-language model clients behind a single
// Client interface. Three backends are available: Amazon Bedrock (Converse
// API, the default), Google Gemini, and any OpenAI-compatible endpoint.
//
// Every backend makes exactly one attempt per call. Retries, if wanted,
// belong to the caller.
package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Part is one piece of a prompt: either text or an image.
type Part struct {
	Text string

	// Image holds raw encoded image bytes (not base64).
	Image []byte

	// MIMEType is the image MIME type, e.g. "image/jpeg".
	MIMEType string
}

// TextPart builds a text prompt part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an image prompt part.
func ImagePart(data []byte, mimeType string) Part {
	return Part{Image: data, MIMEType: mimeType}
}

// IsImage reports whether the part carries image data.
func (p Part) IsImage() bool {
	return len(p.Image) > 0
}

// Request is a single-turn user prompt plus sampling parameters.
type Request struct {
	Parts       []Part
	MaxTokens   int
	Temperature float32
	TopP        float32

	// System is an optional system instruction.
	System string
}

// Default sampling parameters.
const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.5
	DefaultTopP        = 0.9
)

// NewRequest returns a Request with the default sampling parameters.
func NewRequest(parts ...Part) Request {
	return Request{
		Parts:       parts,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}

// Validate checks that the request can be sent.
func (r Request) Validate() error {
	if len(r.Parts) == 0 {
		return errors.New("request has no parts")
	}
	for i, p := range r.Parts {
		if p.IsImage() && p.MIMEType == "" {
			return fmt.Errorf("part %d: image without MIME type", i)
		}
		if !p.IsImage() && strings.TrimSpace(p.Text) == "" {
			return fmt.Errorf("part %d: empty text", i)
		}
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("maxTokens must be positive, got %d", r.MaxTokens)
	}
	return nil
}

// Client performs one model inference call and returns the response text.
// Implementations are safe for concurrent use.
type Client interface {
	Infer(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Infer calls f(ctx, req).
func (f ClientFunc) Infer(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
