package inference

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"
)

// Stage names used as the Stage metric dimension.
const (
	StageFrame     = "frame"
	StageSynthesis = "synthesis"
	StageSummary   = "summary"
)

// Config selects a backend and the credentials it needs.
type Config struct {
	Backend      string
	VisionModel  string
	SummaryModel string

	// AWS is required for the bedrock backend.
	AWS *aws.Config

	GeminiAPIKey string

	OpenAIAPIKey  string
	OpenAIBaseURL string
}

// ConfigFromEnv resolves models and API keys for backend from the
// environment. An empty backend uses GetBackend.
func ConfigFromEnv(backend string) Config {
	if backend == "" {
		backend = GetBackend()
	}
	return Config{
		Backend:       backend,
		VisionModel:   GetVisionModel(backend),
		SummaryModel:  GetSummaryModel(backend),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
}

// Clients are the instrumented model clients for each pipeline stage.
type Clients struct {
	Frame     Client
	Synthesis Client
	Summary   Client
}

// New builds instrumented clients for cfg.
func New(ctx context.Context, cfg Config) (*Clients, error) {
	if err := ValidateBackend(cfg.Backend); err != nil {
		return nil, err
	}

	var vision, summary Client
	switch cfg.Backend {
	case BackendBedrock:
		if cfg.AWS == nil {
			return nil, errors.New("bedrock backend requires AWS config")
		}
		api := bedrockruntime.NewFromConfig(*cfg.AWS)
		vision = NewBedrockClient(api, cfg.VisionModel)
		summary = NewBedrockClient(api, cfg.SummaryModel)

	case BackendGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("gemini backend requires GEMINI_API_KEY")
		}
		gemini, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.VisionModel)
		if err != nil {
			return nil, err
		}
		vision = gemini
		summary = NewGeminiClientFrom(gemini.models, cfg.SummaryModel)

	case BackendOpenAI:
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, errors.New("openai backend requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		vision = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.VisionModel)
		summary = NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.SummaryModel)
	}

	log.Debug().
		Str("backend", cfg.Backend).
		Str("visionModel", cfg.VisionModel).
		Str("summaryModel", cfg.SummaryModel).
		Msg("Inference clients created")

	return &Clients{
		Frame:     Instrument(vision, cfg.Backend, StageFrame),
		Synthesis: Instrument(vision, cfg.Backend, StageSynthesis),
		Summary:   Instrument(summary, cfg.Backend, StageSummary),
	}, nil
}
