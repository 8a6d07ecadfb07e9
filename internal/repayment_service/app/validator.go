package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

// Validator runs the fixed rule chain over a normalized payment. It holds no
// state between calls; the duplicate guard is the only thing it writes to.
type Validator struct {
	resolver domain.ClientResolver
	guard    domain.DuplicateGuard
	settings domain.CountrySettingsProvider
	logger   *slog.Logger
}

func NewValidator(
	resolver domain.ClientResolver,
	guard domain.DuplicateGuard,
	settings domain.CountrySettingsProvider,
	logger *slog.Logger,
) *Validator {
	return &Validator{
		resolver: resolver,
		guard:    guard,
		settings: settings,
		logger:   logger.With("component", "payment_validator"),
	}
}

// Validate returns the first failing rule's outcome, or OutcomeValid. Errors
// are only returned for resolver failures or a payment that already carries
// an outcome. A resolver failure after the transaction id was marked releases
// the mark so the provider's retry is validated again.
func (v *Validator) Validate(ctx context.Context, p domain.Payment) (domain.Outcome, error) {
	if p.HasOutcome() {
		return domain.Outcome{}, domain.ErrOutcomeAlreadySet
	}
	logger := v.logger.With("transaction_id", p.TransactionID, "country_id", p.CountryID)

	seen, err := v.guard.CheckAndMark(ctx, p.TransactionID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if seen {
		logger.InfoContext(ctx, "Transaction already processed")
		return domain.NewOutcome(domain.OutcomeDuplicateTransaction), nil
	}

	outcome, err := v.evaluate(ctx, p, logger)
	if err != nil {
		if relErr := v.guard.Release(ctx, p.TransactionID); relErr != nil {
			logger.ErrorContext(ctx, "Failed to release transaction after validation error", "error", relErr)
			return domain.Outcome{}, errors.Join(err, relErr)
		}
		return domain.Outcome{}, err
	}
	return outcome, nil
}

func (v *Validator) evaluate(ctx context.Context, p domain.Payment, logger *slog.Logger) (domain.Outcome, error) {
	settings, err := v.settings.Get(ctx, p.CountryID)
	if err != nil {
		return domain.Outcome{}, err
	}
	if settings == nil || !settings.ValidationEnabled {
		logger.DebugContext(ctx, "Validation disabled for country, accepting payment")
		return domain.NewOutcome(domain.OutcomeValid), nil
	}

	if p.AccountSanitized == "" {
		return domain.NewOutcome(domain.OutcomeAccountNotFound), nil
	}
	client, err := v.resolver.ByAccount(ctx, p.AccountSanitized)
	if err != nil {
		return domain.Outcome{}, err
	}
	if client == nil {
		logger.InfoContext(ctx, "No client for account", "account", p.AccountSanitized)
		return domain.NewOutcome(domain.OutcomeAccountNotFound), nil
	}
	logger = logger.With("client_id", client.ID)

	if !client.IsActive() {
		logger.InfoContext(ctx, "Client not active", "status", client.Status)
		return domain.NewOutcome(domain.OutcomeClientInactive), nil
	}

	if !client.HasPhone(p.MobileNumber) {
		return domain.NewOutcome(domain.OutcomePhoneMismatch), nil
	}
	holders, err := v.resolver.ByPhone(ctx, p.MobileNumber)
	if err != nil {
		return domain.Outcome{}, err
	}
	if countActive(holders) > 1 {
		logger.WarnContext(ctx, "Phone number shared by several active clients", "holders", len(holders))
		return domain.NewOutcome(domain.OutcomeAmbiguousPhone), nil
	}

	if settings.CurrentCycle == "" {
		logger.WarnContext(ctx, "Validation enabled but no current cycle configured for country")
		return domain.NewOutcome(domain.OutcomeNoActiveSeason), nil
	}
	season, err := v.resolver.Season(ctx, client.ID, settings.CurrentCycle)
	if err != nil {
		return domain.Outcome{}, err
	}
	if season == nil {
		return domain.NewOutcome(domain.OutcomeNoActiveSeason), nil
	}

	if !p.Amount.IsPositive() || p.Currency != expectedCurrency(settings) {
		logger.InfoContext(ctx, "Amount or currency rejected", "amount", p.Amount.String(), "currency", p.Currency)
		return domain.NewOutcome(domain.OutcomeCurrencyMismatch), nil
	}

	return domain.NewOutcome(domain.OutcomeValid), nil
}

// countActive counts distinct active clients; one client listing the same
// number twice is not ambiguity.
func countActive(clients []core_domain.Client) int {
	ids := make(map[int64]struct{}, len(clients))
	for _, c := range clients {
		if c.IsActive() {
			ids[c.ID] = struct{}{}
		}
	}
	return len(ids)
}

func expectedCurrency(s *domain.CountrySettings) string {
	if s.Currency != "" {
		return s.Currency
	}
	if c, ok := core_domain.CountryByID(s.CountryID); ok {
		return c.Currency
	}
	return ""
}
