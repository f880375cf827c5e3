package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"
)

const (
	eventSource             = "incident-dispatch"
	detailTypeIncidentReady = "IncidentReported"
)

// IncidentReported is published after a video has been processed.
type IncidentReported struct {
	VideoKey    string   `json:"videoKey"`
	Severity    string   `json:"severity"`
	Keywords    []string `json:"keywords"`
	Services    []string `json:"services"`
	FrameCount  int      `json:"frameCount"`
	ArchiveKey  string   `json:"archiveKey,omitempty"`
	ProcessedAt string   `json:"processedAt"`
}

// EventPutter is the subset of *eventbridge.Client used by EventEmitter.
type EventPutter interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventEmitter publishes incident events to one event bus. An emitter
// with an empty bus name is disabled and Emit does nothing.
type EventEmitter struct {
	client  EventPutter
	busName string
}

// NewEventEmitter returns an emitter for busName.
func NewEventEmitter(client EventPutter, busName string) *EventEmitter {
	return &EventEmitter{client: client, busName: busName}
}

// Enabled reports whether events are published.
func (e *EventEmitter) Enabled() bool {
	return e != nil && e.client != nil && e.busName != ""
}

// Bus returns the event bus name, or "" when the emitter is disabled.
func (e *EventEmitter) Bus() string {
	if !e.Enabled() {
		return ""
	}
	return e.busName
}

// EmitIncidentReported publishes event. Partial failures reported by
// EventBridge are returned as errors.
func (e *EventEmitter) EmitIncidentReported(ctx context.Context, event IncidentReported) error {
	if !e.Enabled() {
		log.Debug().Str("videoKey", event.VideoKey).Msg("Event bus not configured, skipping IncidentReported")
		return nil
	}

	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal IncidentReported: %w", err)
	}

	result, err := e.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{
			{
				EventBusName: aws.String(e.busName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(detailTypeIncidentReady),
				Detail:       aws.String(string(detail)),
			},
		},
	})
	if err != nil {
		log.Error().Err(err).Str("videoKey", event.VideoKey).Msg("EventBridge PutEvents failed")
		return fmt.Errorf("PutEvents: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil || entry.ErrorMessage != nil {
				log.Error().
					Int("index", i).
					Str("errorCode", aws.ToString(entry.ErrorCode)).
					Str("errorMessage", aws.ToString(entry.ErrorMessage)).
					Str("videoKey", event.VideoKey).
					Msg("EventBridge PutEvents entry failed")
				return fmt.Errorf("PutEvents entry %d failed: %s - %s", i, aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			}
		}
	}

	log.Debug().Str("videoKey", event.VideoKey).Str("severity", event.Severity).Msg("IncidentReported emitted to EventBridge")
	return nil
}
