package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mmoney/golang_services/internal/notification_service/domain"
	"github.com/mmoney/golang_services/internal/notification_service/repository"
)

// PgLocalizationRepository reads districts, regions and scoped settings.
type PgLocalizationRepository struct {
	db     repository.Querier
	logger *slog.Logger
}

func NewPgLocalizationRepository(db repository.Querier, logger *slog.Logger) *PgLocalizationRepository {
	return &PgLocalizationRepository{db: db, logger: logger.With("component", "localization_repository_pg")}
}

var _ domain.LocalizationStore = (*PgLocalizationRepository)(nil)

func (r *PgLocalizationRepository) Ancestry(ctx context.Context, districtID int64) (*domain.Ancestry, error) {
	query := `
		SELECT d.id, r.id, r.country_id
		FROM districts d
		JOIN regions r ON r.id = d.region_id
		WHERE d.id = $1
	`
	var a domain.Ancestry
	err := r.db.QueryRow(ctx, query, districtID).Scan(&a.DistrictID, &a.RegionID, &a.CountryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error loading district ancestry", "district_id", districtID, "error", err)
		return nil, fmt.Errorf("querying district ancestry: %w", err)
	}
	return &a, nil
}

func (r *PgLocalizationRepository) Setting(ctx context.Context, scope domain.Scope, entityID int64, field string) (string, error) {
	query := `SELECT value FROM settings WHERE scope = $1 AND entity_id = $2 AND field = $3`
	var value string
	err := r.db.QueryRow(ctx, query, string(scope), entityID, field).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		r.logger.ErrorContext(ctx, "Error reading setting", "scope", scope, "entity_id", entityID, "field", field, "error", err)
		return "", fmt.Errorf("querying %s setting %s: %w", scope, field, err)
	}
	return value, nil
}
