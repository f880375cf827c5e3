package inference

import (
	"fmt"
	"os"
	"strings"
)

// Backend names accepted by INFERENCE_BACKEND and the --backend flag.
const (
	BackendBedrock = "bedrock"
	BackendGemini  = "gemini"
	BackendOpenAI  = "openai"
)

// Model IDs
//
// | Backend | Model ID                            | Use                      |
// |---------|-------------------------------------|--------------------------|
// | bedrock | us.meta.llama3-2-11b-instruct-v1:0  | frame + synthesis vision |
// | bedrock | us.meta.llama3-2-3b-instruct-v1:0   | dispatch summary (text)  |
// | gemini  | gemini-2.5-flash                    | vision + summary         |
// | openai  | gpt-4o-mini                         | vision + summary         |
const (
	ModelLlamaVision = "us.meta.llama3-2-11b-instruct-v1:0"
	ModelLlamaText   = "us.meta.llama3-2-3b-instruct-v1:0"
	ModelGeminiFlash = "gemini-2.5-flash"
	ModelOpenAIMini  = "gpt-4o-mini"
)

// DefaultBackend is used when INFERENCE_BACKEND is unset.
const DefaultBackend = BackendBedrock

// GetBackend returns the inference backend resolved from INFERENCE_BACKEND,
// falling back to DefaultBackend.
func GetBackend() string {
	if env := strings.ToLower(os.Getenv("INFERENCE_BACKEND")); env != "" {
		return env
	}
	return DefaultBackend
}

// ValidateBackend returns an error for unknown backend names.
func ValidateBackend(backend string) error {
	switch backend {
	case BackendBedrock, BackendGemini, BackendOpenAI:
		return nil
	}
	return fmt.Errorf("unknown inference backend %q (want %s, %s or %s)", backend, BackendBedrock, BackendGemini, BackendOpenAI)
}

// GetVisionModel returns the model used for frame description and
// synthesis. VISION_MODEL_ID overrides the backend default.
func GetVisionModel(backend string) string {
	if env := os.Getenv("VISION_MODEL_ID"); env != "" {
		return env
	}
	switch backend {
	case BackendGemini:
		return ModelGeminiFlash
	case BackendOpenAI:
		return ModelOpenAIMini
	}
	return ModelLlamaVision
}

// GetSummaryModel returns the model used for the dispatch summary.
// SUMMARY_MODEL_ID overrides the backend default.
func GetSummaryModel(backend string) string {
	if env := os.Getenv("SUMMARY_MODEL_ID"); env != "" {
		return env
	}
	switch backend {
	case BackendGemini:
		return ModelGeminiFlash
	case BackendOpenAI:
		return ModelOpenAIMini
	}
	return ModelLlamaText
}
