package domain

import (
	"fmt"

	"github.com/mmoney/golang_services/internal/core_domain"
)

// LanguageField is the setting consulted at every level of the locality chain.
const LanguageField = "FieldLanguageID"

// MessageTemplate is a reusable message with a fallback phrase.
type MessageTemplate struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	DefaultPhrase string `json:"default_phrase"`
}

// TranslationKey is the key under which translations of the template are stored.
func (t MessageTemplate) TranslationKey() string {
	return TranslationKey(t.ID)
}

func TranslationKey(templateID int64) string {
	return fmt.Sprintf("messageTextTemplate-%d.", templateID)
}

// Translation is a phrase for a key in one language.
type Translation struct {
	LanguageID string `json:"language_id"`
	Key        string `json:"key"`
	Phrase     string `json:"phrase"`
}

// Message is a composed, provider-neutral text message.
type Message struct {
	Text       string   `json:"text"`
	SenderID   string   `json:"sender_id"`
	Recipients []string `json:"recipients"`
	Language   string   `json:"language"`
}

// ComposeRequest is one item of a batch.
type ComposeRequest struct {
	Client     core_domain.Client
	TemplateID int64
	Parameters map[string]string
}

// Scope identifies a level of the locality chain.
type Scope string

const (
	ScopeClient   Scope = "client"
	ScopeDistrict Scope = "district"
	ScopeRegion   Scope = "region"
	ScopeCountry  Scope = "country"
)

// Ancestry is the parent chain of a district.
type Ancestry struct {
	DistrictID int64
	RegionID   int64
	CountryID  int64
}
