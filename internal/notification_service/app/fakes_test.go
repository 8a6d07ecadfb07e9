package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/notification_service/domain"
)

const (
	englishTemplate = "Hello {{firstName}}. Last payment: KSh {{amount}}. Receipt number {{receiptId}}. Total paid KSh {{amountTotalPaid}}. Balance KSh {{amountRemaining}}."
	swahiliTemplate = "Jambo {{firstName}}. Malipo ya mwisho: KSh {{amount}}. Nambari ya risiti {{receiptId}}. Malipo kwa ujumla KSh {{amountTotalPaid}}. Malipo yaliyobaki KSh {{amountRemaining}}."
)

type settingKey struct {
	scope domain.Scope
	id    int64
}

// fakeLocalization mirrors a small Kenyan roster: district 1404 speaks
// Swahili, district 5404 inherits English from its region, country 800 has
// no language at all.
type fakeLocalization struct {
	districts map[int64]domain.Ancestry
	languages map[settingKey]string
}

func newFakeLocalization() *fakeLocalization {
	return &fakeLocalization{
		districts: map[int64]domain.Ancestry{
			1404: {DistrictID: 1404, RegionID: 14, CountryID: 404},
			5404: {DistrictID: 5404, RegionID: 54, CountryID: 404},
			8001: {DistrictID: 8001, RegionID: 80, CountryID: 800},
		},
		languages: map[settingKey]string{
			{domain.ScopeDistrict, 1404}: "sw",
			{domain.ScopeRegion, 54}:     "en",
			{domain.ScopeCountry, 404}:   "sw",
		},
	}
}

func (f *fakeLocalization) Ancestry(_ context.Context, districtID int64) (*domain.Ancestry, error) {
	a, ok := f.districts[districtID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeLocalization) Setting(_ context.Context, scope domain.Scope, id int64, field string) (string, error) {
	if field != domain.LanguageField {
		return "", nil
	}
	return f.languages[settingKey{scope, id}], nil
}

type fakeTemplates struct {
	templates    map[int64]domain.MessageTemplate
	translations map[string]map[string]string // language -> key -> phrase
}

func newFakeTemplates() *fakeTemplates {
	return &fakeTemplates{
		templates: map[int64]domain.MessageTemplate{
			1: {ID: 1, Name: "payment_receipt", DefaultPhrase: "Payment received: {{amount}}"},
			2: {ID: 2, Name: "reminder", DefaultPhrase: "Reminder for {{firstName}}"},
			3: {ID: 3, Name: "empty"},
		},
		translations: map[string]map[string]string{
			"en": {"messageTextTemplate-1.": englishTemplate},
			"sw": {"messageTextTemplate-1.": swahiliTemplate},
		},
	}
}

func (f *fakeTemplates) GetTemplate(_ context.Context, id int64) (*domain.MessageTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTemplates) GetTranslation(_ context.Context, languageID, key string) (*domain.Translation, error) {
	phrase, ok := f.translations[languageID][key]
	if !ok {
		return nil, nil
	}
	return &domain.Translation{LanguageID: languageID, Key: key, Phrase: phrase}, nil
}

type MockLocalizationStore struct {
	mock.Mock
}

func (m *MockLocalizationStore) Ancestry(ctx context.Context, districtID int64) (*domain.Ancestry, error) {
	args := m.Called(ctx, districtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ancestry), args.Error(1)
}

func (m *MockLocalizationStore) Setting(ctx context.Context, scope domain.Scope, entityID int64, field string) (string, error) {
	args := m.Called(ctx, scope, entityID, field)
	return args.String(0), args.Error(1)
}

func newTestComposer(store domain.LocalizationStore, templates domain.TemplateRepository) *Composer {
	return NewComposer(store, templates, StaticSenderDirectory{"sms": "65778"}, "sms", "en",
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func swahiliClient() core_domain.Client {
	return core_domain.Client{ID: 10, DistrictID: 1404, MainPhone: "254706822219", Status: core_domain.ClientStatusActive}
}

func englishClient() core_domain.Client {
	return core_domain.Client{ID: 20, DistrictID: 5404, Mobile1: "254711000111", Status: core_domain.ClientStatusActive}
}
