package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ContentGenerator is satisfied by (*genai.Client).Models.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient calls a Gemini model through google.golang.org/genai.
type GeminiClient struct {
	models  ContentGenerator
	modelID string
}

// Compile-time interface check.
var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a genai client for the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return NewGeminiClientFrom(client.Models, modelID), nil
}

// NewGeminiClientFrom wraps an existing content generator.
func NewGeminiClientFrom(models ContentGenerator, modelID string) *GeminiClient {
	return &GeminiClient{models: models, modelID: modelID}
}

// Infer sends req as one user turn. Images are sent as inline blobs.
func (c *GeminiClient) Infer(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Kind: KindBadRequest, Backend: BackendGemini, Model: c.modelID, Message: "invalid request", Err: err}
	}

	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsImage() {
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: p.MIMEType, Data: p.Image},
			})
			continue
		}
		parts = append(parts, &genai.Part{Text: p.Text})
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		Temperature:     genai.Ptr(req.Temperature),
		TopP:            genai.Ptr(req.TopP),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	log.Debug().
		Str("model", c.modelID).
		Int("parts", len(parts)).
		Msg("Sending Gemini request")

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.modelID, []*genai.Content{{Role: "user", Parts: parts}}, config)
	if err != nil {
		log.Error().Err(err).Str("model", c.modelID).Dur("elapsed", time.Since(start)).Msg("Gemini GenerateContent failed")
		return "", wrap(BackendGemini, c.modelID, fmt.Errorf("GenerateContent: %w", err))
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", wrap(BackendGemini, c.modelID, errEmptyResponse)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", wrap(BackendGemini, c.modelID, errEmptyResponse)
	}

	log.Debug().
		Str("model", c.modelID).
		Int("responseLength", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Gemini response received")
	return text, nil
}
