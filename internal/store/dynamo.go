package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog/log"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore implements IncidentStore on a DynamoDB table whose
// partition key is incident_id.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
}

// Compile-time interface check.
var _ IncidentStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	if tableName == "" {
		tableName = DefaultTableName
	}
	return &DynamoStore{client: client, tableName: tableName}
}

// SaveIncident validates and writes incident with full-item replacement.
func (s *DynamoStore) SaveIncident(ctx context.Context, incident *Incident) (string, error) {
	if err := incident.Validate(); err != nil {
		return "", err
	}

	item, err := attributevalue.MarshalMap(incident)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("PutItem incident_id=%s: %w", incident.IncidentID, err)
	}

	log.Info().Str("incidentId", incident.IncidentID).Str("table", s.tableName).Msg("Incident saved")
	return incident.IncidentID, nil
}

// ListIncidents scans the whole table, following pagination, and returns
// the incidents sorted by timestamp descending.
func (s *DynamoStore) ListIncidents(ctx context.Context) ([]Incident, error) {
	start := time.Now()
	incidents := []Incident{}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: &s.tableName,
	})
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("Scan %s: %w", s.tableName, err)
		}
		pages++

		var batch []Incident
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal scan page: %w", err)
		}
		incidents = append(incidents, batch...)
	}

	sortByTimestampDesc(incidents)

	log.Debug().
		Int("count", len(incidents)).
		Int("pages", pages).
		Dur("elapsed", time.Since(start)).
		Msg("Incidents scanned")
	return incidents, nil
}
