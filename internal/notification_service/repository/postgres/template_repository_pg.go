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

type PgTemplateRepository struct {
	db     repository.Querier
	logger *slog.Logger
}

func NewPgTemplateRepository(db repository.Querier, logger *slog.Logger) *PgTemplateRepository {
	return &PgTemplateRepository{db: db, logger: logger.With("component", "template_repository_pg")}
}

var _ domain.TemplateRepository = (*PgTemplateRepository)(nil)

func (r *PgTemplateRepository) GetTemplate(ctx context.Context, id int64) (*domain.MessageTemplate, error) {
	query := `SELECT id, name, COALESCE(default_phrase, '') FROM message_templates WHERE id = $1`
	var t domain.MessageTemplate
	if err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.DefaultPhrase); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error loading template", "template_id", id, "error", err)
		return nil, fmt.Errorf("querying template: %w", err)
	}
	return &t, nil
}

func (r *PgTemplateRepository) GetTranslation(ctx context.Context, languageID, key string) (*domain.Translation, error) {
	query := `SELECT language_id, translation_key, phrase FROM translations WHERE language_id = $1 AND translation_key = $2`
	var tr domain.Translation
	if err := r.db.QueryRow(ctx, query, languageID, key).Scan(&tr.LanguageID, &tr.Key, &tr.Phrase); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "Error loading translation", "language_id", languageID, "key", key, "error", err)
		return nil, fmt.Errorf("querying translation: %w", err)
	}
	return &tr, nil
}
