package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

const keyPrefix = "repayment:tx:"

// DuplicateGuard marks transaction ids with SET NX so that exactly one caller
// wins per id. Keys expire after ttl.
type DuplicateGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewDuplicateGuard(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *DuplicateGuard {
	return &DuplicateGuard{rdb: rdb, ttl: ttl, logger: logger.With("component", "duplicate_guard_redis")}
}

var _ domain.DuplicateGuard = (*DuplicateGuard)(nil)

func (g *DuplicateGuard) CheckAndMark(ctx context.Context, transactionID string) (bool, error) {
	set, err := g.rdb.SetNX(ctx, keyPrefix+transactionID, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		g.logger.ErrorContext(ctx, "Error marking transaction processed", "transaction_id", transactionID, "error", err)
		return false, fmt.Errorf("%w: redis setnx: %w", domain.ErrResolverUnavailable, err)
	}
	return !set, nil
}

func (g *DuplicateGuard) Release(ctx context.Context, transactionID string) error {
	if err := g.rdb.Del(ctx, keyPrefix+transactionID).Err(); err != nil {
		g.logger.ErrorContext(ctx, "Error releasing processed transaction", "transaction_id", transactionID, "error", err)
		return fmt.Errorf("%w: redis del: %w", domain.ErrResolverUnavailable, err)
	}
	return nil
}
