package cli

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/auth"
	"github.com/fpang/incident-dispatch/internal/inference"
)

// InferenceOptions select the backend for a CLI run.
type InferenceOptions struct {
	Backend string
	// Model overrides the vision model when set.
	Model string
	// Validate makes a minimal call before returning.
	Validate bool
}

// InitInference resolves credentials for the chosen backend and builds the
// instrumented clients. Bedrock uses the default AWS credential chain;
// Gemini and OpenAI keys come from the environment or GPG store.
func InitInference(ctx context.Context, opts InferenceOptions) (*inference.Clients, error) {
	cfg := inference.ConfigFromEnv(opts.Backend)
	if opts.Model != "" {
		cfg.VisionModel = opts.Model
	}

	switch cfg.Backend {
	case inference.BackendBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		cfg.AWS = &awsCfg
	case inference.BackendGemini:
		key, err := auth.GetAPIKey("GEMINI_API_KEY")
		if err != nil {
			return nil, &auth.ValidationError{Type: auth.ErrTypeNoKey, Message: "no Gemini API key", Err: err}
		}
		cfg.GeminiAPIKey = key
	case inference.BackendOpenAI:
		if cfg.OpenAIBaseURL == "" {
			key, err := auth.GetAPIKey("OPENAI_API_KEY")
			if err != nil {
				return nil, &auth.ValidationError{Type: auth.ErrTypeNoKey, Message: "no OpenAI API key", Err: err}
			}
			cfg.OpenAIAPIKey = key
		}
	}

	clients, err := inference.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", cfg.Backend).Str("model", cfg.VisionModel).Msg("Inference backend initialized")

	if opts.Validate {
		if err := auth.ValidateBackend(ctx, clients.Summary); err != nil {
			return nil, err
		}
	}
	return clients, nil
}
