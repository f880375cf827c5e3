package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore implements IncidentStore on PostgreSQL. It is used by the
// local API server when DATABASE_URL is set.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ IncidentStore = (*PostgresStore)(nil)

// NewPostgresStore connects to connString and ensures the schema exists.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	log.Info().Msg("Postgres incident store ready")
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS incidents (
			incident_id TEXT PRIMARY KEY,
			"timestamp" TEXT NOT NULL,
			incident_report JSONB NOT NULL,
			selected_services JSONB NOT NULL DEFAULT '{}',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS incidents_timestamp_idx ON incidents ("timestamp" DESC);
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// Close releases all pooled connections.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SaveIncident validates and upserts incident.
func (s *PostgresStore) SaveIncident(ctx context.Context, incident *Incident) (string, error) {
	if err := incident.Validate(); err != nil {
		return "", err
	}
	createdAt, err := time.Parse(time.RFC3339, incident.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO incidents (incident_id, "timestamp", incident_report, selected_services, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (incident_id) DO UPDATE SET
			"timestamp" = EXCLUDED."timestamp",
			incident_report = EXCLUDED.incident_report,
			selected_services = EXCLUDED.selected_services,
			notes = EXCLUDED.notes
	`, incident.IncidentID, incident.Timestamp, incident.IncidentReport, incident.SelectedServices, incident.Notes, createdAt)
	if err != nil {
		return "", fmt.Errorf("insert incident %s: %w", incident.IncidentID, err)
	}

	log.Info().Str("incidentId", incident.IncidentID).Msg("Incident saved")
	return incident.IncidentID, nil
}

// ListIncidents returns all incidents, most recent timestamp first.
func (s *PostgresStore) ListIncidents(ctx context.Context) ([]Incident, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT incident_id, "timestamp", incident_report, selected_services, notes, created_at
		FROM incidents
		ORDER BY "timestamp" DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}

	incidents, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Incident, error) {
		var inc Incident
		var createdAt time.Time
		err := row.Scan(&inc.IncidentID, &inc.Timestamp, &inc.IncidentReport, &inc.SelectedServices, &inc.Notes, &createdAt)
		inc.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		return inc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan incidents: %w", err)
	}
	if incidents == nil {
		incidents = []Incident{}
	}
	return incidents, nil
}
