// Package store persists dispatcher-confirmed incidents.
//
// Two backends implement IncidentStore: DynamoStore for the deployed API
// (table EmergencyIncidents, one item per incident keyed by incident_id)
// and PostgresStore for running the API locally against a database.
package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultTableName is the DynamoDB table used when none is configured.
const DefaultTableName = "EmergencyIncidents"

// Incident is one saved incident record. The report and selected services
// are stored as submitted by the dashboard.
type Incident struct {
	IncidentID       string          `json:"incident_id" dynamodbav:"incident_id"`
	Timestamp        string          `json:"timestamp" dynamodbav:"timestamp"`
	IncidentReport   map[string]any  `json:"incident_report" dynamodbav:"incident_report"`
	SelectedServices map[string]bool `json:"selected_services" dynamodbav:"selected_services"`
	Notes            string          `json:"notes" dynamodbav:"notes"`
	CreatedAt        string          `json:"created_at" dynamodbav:"created_at"`
}

// IncidentStore saves and lists incidents. Implementations are safe for
// concurrent use.
type IncidentStore interface {
	// SaveIncident writes incident and returns its ID.
	SaveIncident(ctx context.Context, incident *Incident) (string, error)

	// ListIncidents returns every incident, most recent timestamp first.
	ListIncidents(ctx context.Context) ([]Incident, error)
}

// ValidationError describes a missing or malformed incident field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewIncident builds an Incident with a fresh UUID and a UTC creation time.
func NewIncident(timestamp string, report map[string]any, services map[string]bool, notes string, now time.Time) *Incident {
	if services == nil {
		services = map[string]bool{}
	}
	return &Incident{
		IncidentID:       uuid.New().String(),
		Timestamp:        timestamp,
		IncidentReport:   report,
		SelectedServices: services,
		Notes:            notes,
		CreatedAt:        now.UTC().Format(time.RFC3339),
	}
}

// Validate checks the fields every stored incident must have.
func (i *Incident) Validate() error {
	if i.Timestamp == "" {
		return &ValidationError{Field: "timestamp", Message: "is required"}
	}
	if len(i.IncidentReport) == 0 {
		return &ValidationError{Field: "incidentReport", Message: "is required"}
	}
	if i.IncidentID == "" {
		return &ValidationError{Field: "incident_id", Message: "is required"}
	}
	return nil
}

// sortByTimestampDesc orders incidents by timestamp, newest first.
// Timestamps are ISO-8601 strings, so lexical order is chronological.
func sortByTimestampDesc(incidents []Incident) {
	sort.SliceStable(incidents, func(a, b int) bool {
		return incidents[a].Timestamp > incidents[b].Timestamp
	})
}
