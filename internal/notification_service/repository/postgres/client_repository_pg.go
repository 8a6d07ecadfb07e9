package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/notification_service/domain"
	"github.com/mmoney/golang_services/internal/notification_service/repository"
)

// PgClientDirectory loads message recipients from the roster.
type PgClientDirectory struct {
	db     repository.Querier
	logger *slog.Logger
}

func NewPgClientDirectory(db repository.Querier, logger *slog.Logger) *PgClientDirectory {
	return &PgClientDirectory{db: db, logger: logger.With("component", "client_directory_pg")}
}

var _ domain.ClientDirectory = (*PgClientDirectory)(nil)

func (r *PgClientDirectory) GetClient(ctx context.Context, id int64) (*core_domain.Client, error) {
	query := `
		SELECT id, global_id, district_id, main_phone, COALESCE(mobile1, ''), COALESCE(mobile2, ''), account_number, status
		FROM clients WHERE id = $1
	`
	var c core_domain.Client
	var status string
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.GlobalID, &c.DistrictID, &c.MainPhone, &c.Mobile1, &c.Mobile2, &c.AccountNumber, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %d: %w", id, domain.ErrClientNotFound)
		}
		r.logger.ErrorContext(ctx, "Error loading client", "client_id", id, "error", err)
		return nil, fmt.Errorf("querying client: %w", err)
	}
	if c.Status, err = core_domain.ParseClientStatus(status); err != nil {
		return nil, err
	}
	return &c, nil
}
