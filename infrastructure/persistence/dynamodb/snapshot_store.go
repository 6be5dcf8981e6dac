// Package dynamodb implements the snapshot store on a single DynamoDB
// table. Each workspace is one item holding the serialized snapshot, so
// reads and writes are single-item operations and the aggregate stays
// the consistency boundary.
package dynamodb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

const (
	entityType  = "WORKSPACE_SNAPSHOT"
	keyPrefix   = "WORKSPACE#"
	metadataKey = "SNAPSHOT"
)

// SnapshotStore persists workspace snapshots in DynamoDB. Every table
// call runs through a circuit breaker; while the breaker is open, calls
// fail immediately without reaching the table.
type SnapshotStore struct {
	client    *dynamodb.Client
	tableName string
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewSnapshotStore creates a store against the given table
func NewSnapshotStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *SnapshotStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dynamodb-snapshots",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("snapshot store circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &SnapshotStore{
		client:    client,
		tableName: tableName,
		breaker:   breaker,
		logger:    logger,
	}
}

// snapshotItem is the DynamoDB item structure for one workspace
type snapshotItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	WorkspaceID string `dynamodbav:"WorkspaceID"`
	Name        string `dynamodbav:"Name"`
	CardCount   int    `dynamodbav:"CardCount"`
	Payload     string `dynamodbav:"Payload"`
	Version     int    `dynamodbav:"Version"`
}

// Write persists a snapshot, replacing any previous one
func (s *SnapshotStore) Write(ctx context.Context, snap aggregates.WorkspaceSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to encode workspace snapshot")
	}

	item := snapshotItem{
		PK:          keyPrefix + snap.ID,
		SK:          metadataKey,
		EntityType:  entityType,
		WorkspaceID: snap.ID,
		Name:        snap.Name,
		CardCount:   len(snap.Cards),
		Payload:     string(payload),
		Version:     snap.Version,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to marshal snapshot item")
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      av,
		})
	})
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to put workspace snapshot")
	}

	s.logger.Debug("workspace snapshot written",
		zap.String("workspaceId", snap.ID),
		zap.Int("cards", len(snap.Cards)),
	)
	return nil
}

// Read loads the snapshot for a workspace id
func (s *SnapshotStore) Read(ctx context.Context, workspaceID string) (aggregates.WorkspaceSnapshot, error) {
	var snap aggregates.WorkspaceSnapshot

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: keyPrefix + workspaceID},
				"SK": &types.AttributeValueMemberS{Value: metadataKey},
			},
		})
	})
	if err != nil {
		return snap, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to get workspace snapshot")
	}
	result := out.(*dynamodb.GetItemOutput)
	if result.Item == nil {
		return snap, pkgerrors.NewNotFoundError("workspace snapshot", workspaceID)
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return snap, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to unmarshal snapshot item")
	}
	if err := json.Unmarshal([]byte(item.Payload), &snap); err != nil {
		return snap, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to decode workspace snapshot")
	}
	return snap, nil
}

// ListIDs returns the workspace ids with stored snapshots
func (s *SnapshotStore) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string

	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("EntityType = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: entityType},
		},
		ProjectionExpression: aws.String("WorkspaceID"),
	}
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		out, err := s.breaker.Execute(func() (interface{}, error) {
			return paginator.NextPage(ctx)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to scan workspace snapshots")
		}
		page := out.(*dynamodb.ScanOutput)
		for _, raw := range page.Items {
			var item struct {
				WorkspaceID string `dynamodbav:"WorkspaceID"`
			}
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("skipping malformed snapshot item", zap.Error(err))
				continue
			}
			ids = append(ids, item.WorkspaceID)
		}
	}
	return ids, nil
}

// Remove deletes a stored snapshot
func (s *SnapshotStore) Remove(ctx context.Context, workspaceID string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: keyPrefix + workspaceID},
				"SK": &types.AttributeValueMemberS{Value: metadataKey},
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to delete workspace snapshot")
	}
	return nil
}
