package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
	"github.com/mmoney/golang_services/internal/repayment_service/repository"
)

type PgCountrySettingsRepository struct {
	db     repository.Querier
	logger *slog.Logger
}

func NewPgCountrySettingsRepository(db repository.Querier, logger *slog.Logger) *PgCountrySettingsRepository {
	return &PgCountrySettingsRepository{db: db, logger: logger.With("component", "country_settings_repository_pg")}
}

var _ domain.CountrySettingsProvider = (*PgCountrySettingsRepository)(nil)

// Get returns (nil, nil) when the country has no settings row.
func (r *PgCountrySettingsRepository) Get(ctx context.Context, countryID int) (*domain.CountrySettings, error) {
	query := `
		SELECT country_id, validation_enabled, COALESCE(currency, ''), COALESCE(current_cycle, ''), updated_at
		FROM country_settings WHERE country_id = $1
	`
	var s domain.CountrySettings
	err := r.db.QueryRow(ctx, query, countryID).Scan(&s.CountryID, &s.ValidationEnabled, &s.Currency, &s.CurrentCycle, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.DebugContext(ctx, "No settings for country", "country_id", countryID)
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error loading country settings", "country_id", countryID, "error", err)
		return nil, fmt.Errorf("%w: loading country settings: %w", domain.ErrResolverUnavailable, err)
	}
	return &s, nil
}
