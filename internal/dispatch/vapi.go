package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/assets"
)

// DefaultVAPIBaseURL is the production VAPI endpoint.
const DefaultVAPIBaseURL = "https://api.vapi.ai"

// Assistant settings for outbound dispatch calls.
const (
	assistantProvider = "openai"
	assistantModel    = "gpt-3.5-turbo"
	assistantVoice    = "jennifer-playht"
)

// CallConfig configures outbound calls.
type CallConfig struct {
	AuthToken      string
	PhoneNumberID  string
	CustomerNumber string
	BaseURL        string
}

// Enabled reports whether every field needed to place a call is set.
func (c CallConfig) Enabled() bool {
	return c.AuthToken != "" && c.PhoneNumberID != "" && c.CustomerNumber != ""
}

// CallDetails is returned after a call is accepted by VAPI.
type CallDetails struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// CallError is returned when VAPI rejects a call request.
type CallError struct {
	StatusCode int
	Body       string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("failed to create call: HTTP %d: %s", e.StatusCode, e.Body)
}

// Caller places outbound voice calls.
type Caller interface {
	PlaceCall(ctx context.Context, firstMessage string) (*CallDetails, error)
}

// VAPIClient places outbound phone calls through the VAPI REST API.
type VAPIClient struct {
	cfg        CallConfig
	httpClient *http.Client
}

var _ Caller = (*VAPIClient)(nil)

// NewVAPIClient returns a client for cfg. A nil httpClient gets a default
// client with a 30 second timeout.
func NewVAPIClient(cfg CallConfig, httpClient *http.Client) *VAPIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultVAPIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &VAPIClient{cfg: cfg, httpClient: httpClient}
}

type callRequest struct {
	Assistant     callAssistant `json:"assistant"`
	PhoneNumberID string        `json:"phoneNumberId"`
	Customer      callCustomer  `json:"customer"`
}

type callAssistant struct {
	FirstMessage string    `json:"firstMessage"`
	Model        callModel `json:"model"`
	Voice        string    `json:"voice"`
}

type callModel struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Messages []callMessage `json:"messages"`
}

type callMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type callCustomer struct {
	Number string `json:"number"`
}

// PlaceCall asks VAPI to phone the configured customer number and open
// with firstMessage. VAPI answers 201 Created on success.
func (c *VAPIClient) PlaceCall(ctx context.Context, firstMessage string) (*CallDetails, error) {
	body, err := json.Marshal(callRequest{
		Assistant: callAssistant{
			FirstMessage: firstMessage,
			Model: callModel{
				Provider: assistantProvider,
				Model:    assistantModel,
				Messages: []callMessage{{Role: "system", Content: assets.DispatcherSystemPrompt}},
			},
			Voice: assistantVoice,
		},
		PhoneNumberID: c.cfg.PhoneNumberID,
		Customer:      callCustomer{Number: c.cfg.CustomerNumber},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal call request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/call/phone"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build call request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("VAPI call request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read VAPI response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", string(respBody)).
			Msg("VAPI rejected call")
		return nil, &CallError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if !json.Valid(respBody) {
		respBody = []byte("null")
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("Dispatch call placed")
	return &CallDetails{Status: "success", Response: respBody}, nil
}
