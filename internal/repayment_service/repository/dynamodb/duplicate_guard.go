package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

// TableAPI is the slice of *dynamodb.Client the guard needs.
type TableAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type processedItem struct {
	TransactionID string `dynamodbav:"transaction_id"`
	ProcessedAt   string `dynamodbav:"processed_at"`
	ExpiresAt     int64  `dynamodbav:"expires_at"` // table TTL attribute
}

// DuplicateGuard records transaction ids in a table keyed by transaction_id.
//
// Table requirements:
//   - PK: transaction_id (string)
//   - TTL attribute: expires_at
type DuplicateGuard struct {
	ddb       TableAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewDuplicateGuard(ddb TableAPI, tableName string, ttl time.Duration, logger *slog.Logger) *DuplicateGuard {
	return &DuplicateGuard{
		ddb:       ddb,
		tableName: tableName,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger.With("component", "duplicate_guard_dynamodb"),
	}
}

var _ domain.DuplicateGuard = (*DuplicateGuard)(nil)

func (g *DuplicateGuard) CheckAndMark(ctx context.Context, transactionID string) (bool, error) {
	now := g.now().UTC()
	av, err := attributevalue.MarshalMap(processedItem{
		TransactionID: transactionID,
		ProcessedAt:   now.Format(time.RFC3339),
		ExpiresAt:     now.Add(g.ttl).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshalling processed item: %w", err)
	}

	_, err = g.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(g.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "transaction_id",
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return true, nil
		}
		g.logger.ErrorContext(ctx, "Error marking transaction processed", "transaction_id", transactionID, "error", err)
		return false, fmt.Errorf("%w: dynamodb put: %w", domain.ErrResolverUnavailable, err)
	}
	return false, nil
}

func (g *DuplicateGuard) Release(ctx context.Context, transactionID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"transaction_id": transactionID})
	if err != nil {
		return fmt.Errorf("marshalling key: %w", err)
	}
	_, err = g.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(g.tableName),
		Key:       key,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Error releasing processed transaction", "transaction_id", transactionID, "error", err)
		return fmt.Errorf("%w: dynamodb delete: %w", domain.ErrResolverUnavailable, err)
	}
	return nil
}
