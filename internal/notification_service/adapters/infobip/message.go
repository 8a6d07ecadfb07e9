package infobip

import (
	"context"
	"fmt"

	"github.com/mmoney/golang_services/internal/notification_service/domain"
)

// APIKeyField is the country setting holding the Infobip account key.
const APIKeyField = "InfobipCountryApiKey"

// SMS is the Infobip single-text message shape.
type SMS struct {
	From string   `json:"from"`
	To   []string `json:"to"`
	Text string   `json:"text"`
}

// Batch is the request body for several messages.
type Batch struct {
	Messages []SMS `json:"messages"`
}

// FromMessage converts a composed message. No delivery happens here.
func FromMessage(m domain.Message) SMS {
	to := make([]string, len(m.Recipients))
	copy(to, m.Recipients)
	return SMS{From: m.SenderID, To: to, Text: m.Text}
}

func FromMessages(ms []domain.Message) Batch {
	b := Batch{Messages: make([]SMS, 0, len(ms))}
	for _, m := range ms {
		b.Messages = append(b.Messages, FromMessage(m))
	}
	return b
}

// SettingReader is the part of domain.LocalizationStore used for credentials.
type SettingReader interface {
	Setting(ctx context.Context, scope domain.Scope, entityID int64, field string) (string, error)
}

// APIKeyForCountry returns the account key configured for a country, or ""
// when the country has none.
func APIKeyForCountry(ctx context.Context, settings SettingReader, countryID int64) (string, error) {
	key, err := settings.Setting(ctx, domain.ScopeCountry, countryID, APIKeyField)
	if err != nil {
		return "", fmt.Errorf("reading infobip api key for country %d: %w", countryID, err)
	}
	return key, nil
}
