package inference

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/aws/smithy-go"
	"google.golang.org/genai"
)

// ErrorKind categorizes an inference failure for logging and metrics.
type ErrorKind int

const (
	// KindUnknown is any failure not otherwise classified.
	KindUnknown ErrorKind = iota
	// KindAuth indicates missing, invalid or unauthorized credentials.
	KindAuth
	// KindQuota indicates throttling or quota exhaustion.
	KindQuota
	// KindNetwork indicates connectivity failures, timeouts and 5xx.
	KindNetwork
	// KindBadRequest indicates a malformed request or unsupported input.
	KindBadRequest
	// KindEmptyResponse indicates the model returned no text.
	KindEmptyResponse
)

// String returns the metric-friendly name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindNetwork:
		return "network"
	case KindBadRequest:
		return "bad_request"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// Error is returned by every backend.
type Error struct {
	Kind    ErrorKind
	Backend string
	Model   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Backend + " " + e.Model + ": " + e.Message
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}

// errEmptyResponse is wrapped when a backend returns no text.
var errEmptyResponse = errors.New("model returned an empty response")

// classify maps a backend error to an ErrorKind. Typed errors from the AWS
// and Gemini SDKs are checked first, then common message patterns.
func classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, errEmptyResponse) {
		return KindEmptyResponse
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "UnrecognizedClientException", "ExpiredTokenException":
			return KindAuth
		case "ThrottlingException", "ServiceQuotaExceededException", "TooManyRequestsException":
			return KindQuota
		case "ValidationException", "ModelErrorException", "ResourceNotFoundException":
			return KindBadRequest
		case "ServiceUnavailableException", "InternalServerException", "ModelTimeoutException", "ModelNotReadyException":
			return KindNetwork
		}
	}

	var gErr *genai.APIError
	if errors.As(err, &gErr) {
		return classifyStatus(gErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "api key not valid") ||
		strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "permission denied"):
		return KindAuth
	case strings.Contains(lower, "quota") ||
		strings.Contains(lower, "resource exhausted") ||
		strings.Contains(lower, "rate limit"):
		return KindQuota
	case strings.Contains(lower, "connection") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "unreachable"):
		return KindNetwork
	}
	return KindUnknown
}

// classifyStatus maps an HTTP status code to an ErrorKind.
func classifyStatus(code int) ErrorKind {
	switch {
	case code == 401 || code == 403:
		return KindAuth
	case code == 429:
		return KindQuota
	case code == 400 || code == 404 || code == 413 || code == 422:
		return KindBadRequest
	case code >= 500:
		return KindNetwork
	}
	return KindUnknown
}

// wrap builds an *Error for a failed call.
func wrap(backend, model string, err error) *Error {
	return &Error{
		Kind:    classify(err),
		Backend: backend,
		Model:   model,
		Message: "inference failed",
		Err:     err,
	}
}
