package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
	"github.com/mmoney/golang_services/internal/repayment_service/repository"
)

// PgProcessedTransactionRepository is a DuplicateGuard backed by a unique key
// on processed_transactions.transaction_id.
type PgProcessedTransactionRepository struct {
	db     repository.Querier
	logger *slog.Logger
}

func NewPgProcessedTransactionRepository(db repository.Querier, logger *slog.Logger) *PgProcessedTransactionRepository {
	return &PgProcessedTransactionRepository{db: db, logger: logger.With("component", "processed_transaction_repository_pg")}
}

var _ domain.DuplicateGuard = (*PgProcessedTransactionRepository)(nil)

func (r *PgProcessedTransactionRepository) CheckAndMark(ctx context.Context, transactionID string) (bool, error) {
	query := `
		INSERT INTO processed_transactions (transaction_id, processed_at)
		VALUES ($1, $2)
		ON CONFLICT (transaction_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, transactionID, time.Now().UTC())
	if err != nil {
		r.logger.ErrorContext(ctx, "Error marking transaction processed", "transaction_id", transactionID, "error", err)
		return false, fmt.Errorf("%w: marking transaction processed: %w", domain.ErrResolverUnavailable, err)
	}
	return tag.RowsAffected() == 0, nil
}

func (r *PgProcessedTransactionRepository) Release(ctx context.Context, transactionID string) error {
	query := `DELETE FROM processed_transactions WHERE transaction_id = $1`
	if _, err := r.db.Exec(ctx, query, transactionID); err != nil {
		r.logger.ErrorContext(ctx, "Error releasing processed transaction", "transaction_id", transactionID, "error", err)
		return fmt.Errorf("%w: releasing transaction: %w", domain.ErrResolverUnavailable, err)
	}
	return nil
}
