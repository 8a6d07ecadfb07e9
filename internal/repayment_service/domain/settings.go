package domain

import (
	"context"
	"time"
)

// CountrySettings is the per-country configuration read by the pipeline.
type CountrySettings struct {
	CountryID         int       `json:"country_id"`
	ValidationEnabled bool      `json:"validation_enabled"`
	Currency          string    `json:"currency"`
	CurrentCycle      string    `json:"current_cycle"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CountrySettingsProvider returns (nil, nil) when a country has no settings record.
type CountrySettingsProvider interface {
	Get(ctx context.Context, countryID int) (*CountrySettings, error)
}
