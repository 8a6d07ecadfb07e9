package domain

import (
	"context"

	"github.com/mmoney/golang_services/internal/core_domain"
)

// LocalizationStore reads the locality hierarchy and its settings.
type LocalizationStore interface {
	// Ancestry returns (nil, nil) for an unknown district.
	Ancestry(ctx context.Context, districtID int64) (*Ancestry, error)
	// Setting returns "" when the entity defines no value for field.
	Setting(ctx context.Context, scope Scope, entityID int64, field string) (string, error)
}

// TemplateRepository returns (nil, nil) for absent templates and translations.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, id int64) (*MessageTemplate, error)
	GetTranslation(ctx context.Context, languageID, key string) (*Translation, error)
}

// SenderDirectory maps a delivery channel to its sender identity.
type SenderDirectory interface {
	SenderFor(channel string) (string, bool)
}

// ClientDirectory looks clients up by id for the HTTP surface.
type ClientDirectory interface {
	GetClient(ctx context.Context, id int64) (*core_domain.Client, error)
}
