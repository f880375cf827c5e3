package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/rs/zerolog/log"
)

// ConverseAPI is the subset of the Bedrock runtime client used here.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient calls a Bedrock model through the Converse API.
type BedrockClient struct {
	api     ConverseAPI
	modelID string
}

// Compile-time interface check.
var _ Client = (*BedrockClient)(nil)

// NewBedrockClient returns a client bound to modelID.
func NewBedrockClient(api ConverseAPI, modelID string) *BedrockClient {
	return &BedrockClient{api: api, modelID: modelID}
}

// Infer sends req as a single user message and returns the concatenated
// text blocks of the reply.
func (c *BedrockClient) Infer(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Kind: KindBadRequest, Backend: BackendBedrock, Model: c.modelID, Message: "invalid request", Err: err}
	}

	content, err := bedrockContent(req.Parts)
	if err != nil {
		return "", &Error{Kind: KindBadRequest, Backend: BackendBedrock, Model: c.modelID, Message: "invalid request", Err: err}
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: content,
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(req.MaxTokens)),
			Temperature: aws.Float32(req.Temperature),
			TopP:        aws.Float32(req.TopP),
		},
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}

	log.Debug().
		Str("modelId", c.modelID).
		Int("parts", len(req.Parts)).
		Int("maxTokens", req.MaxTokens).
		Msg("Sending Bedrock Converse request")

	start := time.Now()
	out, err := c.api.Converse(ctx, input, func(o *bedrockruntime.Options) {
		o.RetryMaxAttempts = 1
	})
	if err != nil {
		log.Error().Err(err).Str("modelId", c.modelID).Dur("elapsed", time.Since(start)).Msg("Bedrock Converse failed")
		return "", wrap(BackendBedrock, c.modelID, fmt.Errorf("Converse: %w", err))
	}

	text := converseText(out)
	if strings.TrimSpace(text) == "" {
		return "", wrap(BackendBedrock, c.modelID, errEmptyResponse)
	}

	log.Debug().
		Str("modelId", c.modelID).
		Int("responseLength", len(text)).
		Str("stopReason", string(out.StopReason)).
		Dur("elapsed", time.Since(start)).
		Msg("Bedrock Converse response received")
	return text, nil
}

// bedrockContent converts prompt parts to Converse content blocks.
func bedrockContent(parts []Part) ([]types.ContentBlock, error) {
	blocks := make([]types.ContentBlock, 0, len(parts))
	for _, p := range parts {
		if !p.IsImage() {
			blocks = append(blocks, &types.ContentBlockMemberText{Value: p.Text})
			continue
		}
		format, err := bedrockImageFormat(p.MIMEType)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, &types.ContentBlockMemberImage{
			Value: types.ImageBlock{
				Format: format,
				Source: &types.ImageSourceMemberBytes{Value: p.Image},
			},
		})
	}
	return blocks, nil
}

func bedrockImageFormat(mimeType string) (types.ImageFormat, error) {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return types.ImageFormatJpeg, nil
	case "image/png":
		return types.ImageFormatPng, nil
	case "image/gif":
		return types.ImageFormatGif, nil
	case "image/webp":
		return types.ImageFormatWebp, nil
	}
	return "", fmt.Errorf("unsupported image type for Bedrock: %s", mimeType)
}

// converseText joins every text block in the assistant message.
func converseText(out *bedrockruntime.ConverseOutput) string {
	if out == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}
