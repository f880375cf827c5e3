package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/metrics"
)

// ValidationError represents a specific type of credential validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeNoKey indicates no credential was found.
	ErrTypeNoKey ValidationErrorType = iota
	// ErrTypeInvalidKey indicates the credential is invalid or lacks model access.
	ErrTypeInvalidKey
	// ErrTypeNetworkError indicates a network connectivity issue.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unknown error occurred.
	ErrTypeUnknown
)

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateBackend verifies that client can reach its model by making a
// minimal text-only call. It returns nil if the call succeeds, or a
// ValidationError whose Type reflects the failure.
func ValidateBackend(ctx context.Context, client inference.Client) error {
	log.Debug().Msg("Validating inference backend credentials")

	req := inference.NewRequest(inference.TextPart("Reply with OK."))
	req.MaxTokens = 8

	start := time.Now()
	_, err := client.Infer(ctx, req)
	elapsed := time.Since(start)

	result := "success"
	var valErr *ValidationError
	if err != nil {
		valErr = classifyError(err)
		result = resultName(valErr.Type)
	}

	metrics.New(metrics.Namespace).
		Dimension("Result", result).
		Duration("BackendValidationMs", elapsed).
		Count("BackendValidationResult").
		Flush()

	log.Debug().
		Str("result", result).
		Dur("duration", elapsed).
		Msg("Backend validation result")

	if valErr != nil {
		return valErr
	}
	log.Info().Msg("Inference backend validated successfully")
	return nil
}

// classifyError maps an inference failure to a ValidationError.
func classifyError(err error) *ValidationError {
	switch inference.KindOf(err) {
	case inference.KindAuth:
		log.Error().Err(err).Msg("Invalid credentials")
		return &ValidationError{
			Type:    ErrTypeInvalidKey,
			Message: "credentials are invalid, expired, or lack model access",
			Err:     err,
		}
	case inference.KindQuota:
		log.Error().Err(err).Msg("Quota exceeded")
		return &ValidationError{
			Type:    ErrTypeQuotaExceeded,
			Message: "quota exceeded or rate limited",
			Err:     err,
		}
	case inference.KindNetwork:
		log.Error().Err(err).Msg("Network error during validation")
		return &ValidationError{
			Type:    ErrTypeNetworkError,
			Message: "network error - check your connection and region",
			Err:     err,
		}
	case inference.KindEmptyResponse:
		log.Warn().Msg("Validation returned empty response")
		return &ValidationError{
			Type:    ErrTypeUnknown,
			Message: "model returned an empty response",
			Err:     err,
		}
	default:
		log.Error().Err(err).Msg("Unknown error during validation")
		return &ValidationError{
			Type:    ErrTypeUnknown,
			Message: "failed to validate inference backend",
			Err:     err,
		}
	}
}

func resultName(t ValidationErrorType) string {
	switch t {
	case ErrTypeNoKey:
		return "no_key"
	case ErrTypeInvalidKey:
		return "invalid"
	case ErrTypeNetworkError:
		return "network_error"
	case ErrTypeQuotaExceeded:
		return "quota"
	}
	return "unknown"
}
