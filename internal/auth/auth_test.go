package auth

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestGetAPIKeyFromEnv(t *testing.T) {
	const testKey = "test-api-key-12345"
	t.Setenv("GEMINI_API_KEY", testKey)

	key, err := GetAPIKey("GEMINI_API_KEY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != testKey {
		t.Errorf("expected key %q, got %q", testKey, key)
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	if _, err := GetAPIKey("OPENAI_API_KEY"); err == nil {
		t.Error("expected error when no API key source available")
	}
}

func TestGetCredentialPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := getCredentialPath("GEMINI_API_KEY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := filepath.Join(home, ".incident-dispatch", "gemini_api_key.gpg")
	if path != expected {
		t.Errorf("expected path %q, got %q", expected, path)
	}
}

func TestGetFromGPGFileNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := getFromGPG("GEMINI_API_KEY"); err == nil {
		t.Error("expected error when credentials file does not exist")
	}
}

func TestValidateBackend(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ValidationErrorType
		wantOK   bool
	}{
		{"success", nil, 0, true},
		{"auth", &inference.Error{Kind: inference.KindAuth, Message: "denied"}, ErrTypeInvalidKey, false},
		{"quota", &inference.Error{Kind: inference.KindQuota, Message: "throttled"}, ErrTypeQuotaExceeded, false},
		{"network", &inference.Error{Kind: inference.KindNetwork, Message: "timeout"}, ErrTypeNetworkError, false},
		{"empty", &inference.Error{Kind: inference.KindEmptyResponse, Message: "empty"}, ErrTypeUnknown, false},
		{"unclassified", errors.New("boom"), ErrTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotReq inference.Request
			client := inference.ClientFunc(func(ctx context.Context, req inference.Request) (string, error) {
				gotReq = req
				if tt.err != nil {
					return "", tt.err
				}
				return "OK", nil
			})

			err := ValidateBackend(context.Background(), client)

			if len(gotReq.Parts) != 1 || gotReq.Parts[0].IsImage() {
				t.Errorf("validation should send a single text part, got %+v", gotReq.Parts)
			}
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if valErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", valErr.Type, tt.wantType)
			}
			if !errors.Is(err, tt.err) {
				t.Error("cause should be preserved")
			}
		})
	}
}
