package inference

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient calls any OpenAI-compatible chat completions endpoint
// (OpenAI itself, or a local Ollama / vLLM server via OPENAI_BASE_URL).
type OpenAIClient struct {
	client  *openai.Client
	modelID string
}

// Compile-time interface check.
var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client. An empty baseURL uses the OpenAI API.
func NewOpenAIClient(apiKey, baseURL, modelID string) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		modelID: modelID,
	}
}

// Infer sends req as a single user message. Images are sent as base64
// data URLs.
func (c *OpenAIClient) Infer(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Kind: KindBadRequest, Backend: BackendOpenAI, Model: c.modelID, Message: "invalid request", Err: err}
	}

	parts := make([]openai.ChatMessagePart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsImage() {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Image),
					Detail: openai.ImageURLDetailAuto,
				},
			})
			continue
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: p.Text,
		})
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.modelID,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	log.Debug().
		Str("model", c.modelID).
		Int("parts", len(parts)).
		Msg("Sending chat completion request")

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		log.Error().Err(err).Str("model", c.modelID).Dur("elapsed", time.Since(start)).Msg("Chat completion failed")
		ie := wrap(BackendOpenAI, c.modelID, fmt.Errorf("CreateChatCompletion: %w", err))
		if code := openAIStatus(err); code != 0 {
			ie.Kind = classifyStatus(code)
		}
		return "", ie
	}
	if len(resp.Choices) == 0 {
		return "", wrap(BackendOpenAI, c.modelID, errEmptyResponse)
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", wrap(BackendOpenAI, c.modelID, errEmptyResponse)
	}

	log.Debug().
		Str("model", c.modelID).
		Int("responseLength", len(text)).
		Int("totalTokens", resp.Usage.TotalTokens).
		Dur("elapsed", time.Since(start)).
		Msg("Chat completion received")
	return text, nil
}

// openAIStatus extracts the HTTP status from go-openai error types.
func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
