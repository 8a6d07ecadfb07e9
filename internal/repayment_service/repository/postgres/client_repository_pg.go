package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/repayment_service/domain"
	"github.com/mmoney/golang_services/internal/repayment_service/repository"
)

const clientColumns = `id, global_id, district_id, main_phone, COALESCE(mobile1, ''), COALESCE(mobile2, ''), account_number, status`

// PgClientRepository resolves clients and season enrolments from the roster tables.
type PgClientRepository struct {
	db     repository.Querier
	logger *slog.Logger
}

func NewPgClientRepository(db repository.Querier, logger *slog.Logger) *PgClientRepository {
	return &PgClientRepository{db: db, logger: logger.With("component", "client_repository_pg")}
}

var _ domain.ClientResolver = (*PgClientRepository)(nil)

func (r *PgClientRepository) ByAccount(ctx context.Context, sanitizedAccount string) (*core_domain.Client, error) {
	r.logger.DebugContext(ctx, "Resolving client by account", "account", sanitizedAccount)
	query := `SELECT ` + clientColumns + ` FROM clients WHERE account_number = $1 LIMIT 1`

	client, err := scanClient(r.db.QueryRow(ctx, query, sanitizedAccount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error resolving client by account", "account", sanitizedAccount, "error", err)
		return nil, fmt.Errorf("%w: querying client by account: %w", domain.ErrResolverUnavailable, err)
	}
	return client, nil
}

func (r *PgClientRepository) ByPhone(ctx context.Context, number string) ([]core_domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE main_phone = $1 OR mobile1 = $1 OR mobile2 = $1
		ORDER BY id`
	rows, err := r.db.Query(ctx, query, number)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error resolving clients by phone", "phone_number", number, "error", err)
		return nil, fmt.Errorf("%w: querying clients by phone: %w", domain.ErrResolverUnavailable, err)
	}
	defer rows.Close()

	var clients []core_domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning client row: %w", domain.ErrResolverUnavailable, err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating client rows: %w", domain.ErrResolverUnavailable, err)
	}
	return clients, nil
}

func (r *PgClientRepository) Season(ctx context.Context, clientID int64, cycle string) (*core_domain.SeasonClient, error) {
	query := `SELECT id, client_id, cycle, created_at FROM season_clients WHERE client_id = $1 AND cycle = $2 LIMIT 1`

	var sc core_domain.SeasonClient
	err := r.db.QueryRow(ctx, query, clientID, cycle).Scan(&sc.ID, &sc.ClientID, &sc.Cycle, &sc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error resolving season", "client_id", clientID, "cycle", cycle, "error", err)
		return nil, fmt.Errorf("%w: querying season client: %w", domain.ErrResolverUnavailable, err)
	}
	return &sc, nil
}

func scanClient(row pgx.Row) (*core_domain.Client, error) {
	var c core_domain.Client
	var status string
	if err := row.Scan(&c.ID, &c.GlobalID, &c.DistrictID, &c.MainPhone, &c.Mobile1, &c.Mobile2, &c.AccountNumber, &status); err != nil {
		return nil, err
	}
	s, err := core_domain.ParseClientStatus(status)
	if err != nil {
		return nil, err
	}
	c.Status = s
	return &c, nil
}
