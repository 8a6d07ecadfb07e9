package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/notification_service/domain"
)

// DefaultLanguage ends every language resolution that finds nothing.
const DefaultLanguage = "en"

// Composer turns a client, a template and parameters into a Message.
type Composer struct {
	store           domain.LocalizationStore
	templates       domain.TemplateRepository
	senders         domain.SenderDirectory
	channel         string
	defaultLanguage string
	logger          *slog.Logger
}

func NewComposer(
	store domain.LocalizationStore,
	templates domain.TemplateRepository,
	senders domain.SenderDirectory,
	channel string,
	defaultLanguage string,
	logger *slog.Logger,
) *Composer {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	return &Composer{
		store:           store,
		templates:       templates,
		senders:         senders,
		channel:         channel,
		defaultLanguage: defaultLanguage,
		logger:          logger.With("component", "message_composer"),
	}
}

// ResolveLanguage walks client, district, region and country and returns the
// first language set on the way, or the default language.
func (c *Composer) ResolveLanguage(ctx context.Context, client core_domain.Client) (string, error) {
	lang, err := c.store.Setting(ctx, domain.ScopeClient, client.ID, domain.LanguageField)
	if err != nil {
		return "", fmt.Errorf("reading client language: %w", err)
	}
	if lang != "" {
		return lang, nil
	}

	anc, err := c.store.Ancestry(ctx, client.DistrictID)
	if err != nil {
		return "", fmt.Errorf("loading ancestry of district %d: %w", client.DistrictID, err)
	}
	if anc == nil {
		c.logger.DebugContext(ctx, "Unknown district, using default language", "district_id", client.DistrictID)
		return c.defaultLanguage, nil
	}

	chain := []struct {
		scope domain.Scope
		id    int64
	}{
		{domain.ScopeDistrict, anc.DistrictID},
		{domain.ScopeRegion, anc.RegionID},
		{domain.ScopeCountry, anc.CountryID},
	}
	for _, level := range chain {
		lang, err := c.store.Setting(ctx, level.scope, level.id, domain.LanguageField)
		if err != nil {
			return "", fmt.Errorf("reading %s language: %w", level.scope, err)
		}
		if lang != "" {
			return lang, nil
		}
	}
	return c.defaultLanguage, nil
}

// ResolveTemplate picks the phrase for language, falling back to the default
// language translation and then to the template's own default phrase.
func (c *Composer) ResolveTemplate(ctx context.Context, templateID int64, language string) (string, error) {
	tmpl, err := c.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return "", fmt.Errorf("loading template %d: %w", templateID, err)
	}
	if tmpl == nil {
		return "", fmt.Errorf("%w: template %d", domain.ErrMissingTemplate, templateID)
	}

	languages := []string{language}
	if language != c.defaultLanguage {
		languages = append(languages, c.defaultLanguage)
	}
	for _, lang := range languages {
		tr, err := c.templates.GetTranslation(ctx, lang, tmpl.TranslationKey())
		if err != nil {
			return "", fmt.Errorf("loading %s translation of template %d: %w", lang, templateID, err)
		}
		if tr != nil && tr.Phrase != "" {
			return tr.Phrase, nil
		}
	}

	if tmpl.DefaultPhrase != "" {
		return tmpl.DefaultPhrase, nil
	}
	return "", fmt.Errorf("%w: template %d has no phrase for %q", domain.ErrMissingTemplate, templateID, language)
}

// Compose builds the message for one client.
func (c *Composer) Compose(ctx context.Context, client core_domain.Client, templateID int64, params map[string]string) (domain.Message, error) {
	recipients := client.PhoneNumbers()
	if len(recipients) == 0 {
		composeCounter.WithLabelValues("", "no_recipient").Inc()
		return domain.Message{}, fmt.Errorf("client %d: %w", client.ID, domain.ErrNoRecipient)
	}

	lang, err := c.ResolveLanguage(ctx, client)
	if err != nil {
		composeCounter.WithLabelValues("", "error").Inc()
		return domain.Message{}, err
	}
	phrase, err := c.ResolveTemplate(ctx, templateID, lang)
	if err != nil {
		composeCounter.WithLabelValues(lang, "error").Inc()
		return domain.Message{}, err
	}

	sender, ok := c.senders.SenderFor(c.channel)
	if !ok || sender == "" {
		composeCounter.WithLabelValues(lang, "no_sender").Inc()
		return domain.Message{}, fmt.Errorf("channel %q: %w", c.channel, domain.ErrNoSender)
	}
	composeCounter.WithLabelValues(lang, "success").Inc()
	c.logger.DebugContext(ctx, "Composed message", "client_id", client.ID, "template_id", templateID, "language", lang)

	return domain.Message{
		Text:       Substitute(phrase, params),
		SenderID:   sender,
		Recipients: recipients[:1],
		Language:   lang,
	}, nil
}

// ComposeMany composes one message per request in input order. The first
// failure aborts the batch.
func (c *Composer) ComposeMany(ctx context.Context, reqs []domain.ComposeRequest) ([]domain.Message, error) {
	out := make([]domain.Message, 0, len(reqs))
	for i, req := range reqs {
		msg, err := c.Compose(ctx, req.Client, req.TemplateID, req.Parameters)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		out = append(out, msg)
	}
	batchSizeHist.Observe(float64(len(reqs)))
	return out, nil
}
