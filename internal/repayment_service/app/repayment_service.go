package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmoney/golang_services/internal/platform/messagebroker"
	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

// OutcomeSubjectPrefix is followed by the numeric outcome code.
const OutcomeSubjectPrefix = "repayments.validated."

// OutcomeEvent is published once per validated payment.
type OutcomeEvent struct {
	TransactionID string             `json:"transaction_id"`
	Provider      string             `json:"provider"`
	CountryID     int                `json:"country_id"`
	Account       string             `json:"account"`
	MobileNumber  string             `json:"mobile_number"`
	Amount        decimal.Decimal    `json:"amount"`
	Currency      string             `json:"currency"`
	Code          domain.OutcomeCode `json:"code"`
	Reason        string             `json:"reason"`
	ValidatedAt   time.Time          `json:"validated_at"`
}

// PaymentValidator is satisfied by *Validator.
type PaymentValidator interface {
	Validate(ctx context.Context, p domain.Payment) (domain.Outcome, error)
}

// RepaymentService normalizes, validates and announces provider notifications.
type RepaymentService struct {
	normalizer *Normalizer
	validator  PaymentValidator
	publisher  messagebroker.Publisher
	now        func() time.Time
	logger     *slog.Logger
}

// NewRepaymentService wires the service. publisher may be nil, in which case
// no events are emitted.
func NewRepaymentService(
	normalizer *Normalizer,
	validator PaymentValidator,
	publisher messagebroker.Publisher,
	logger *slog.Logger,
) *RepaymentService {
	return &RepaymentService{
		normalizer: normalizer,
		validator:  validator,
		publisher:  publisher,
		now:        time.Now,
		logger:     logger.With("service", "repayment_app"),
	}
}

// Process returns the payment with its outcome attached.
func (s *RepaymentService) Process(ctx context.Context, provider string, fields map[string]string) (domain.Payment, error) {
	start := time.Now()
	defer func() {
		validationDurationHist.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}()

	payment, err := s.normalizer.Normalize(provider, fields)
	if err != nil {
		paymentsFailedCounter.WithLabelValues(provider, "malformed").Inc()
		s.logger.WarnContext(ctx, "Rejected malformed payload", "provider", provider, "error", err)
		return domain.Payment{}, err
	}

	outcome, err := s.validator.Validate(ctx, payment)
	if err != nil {
		reason := "error"
		if errors.Is(err, domain.ErrResolverUnavailable) {
			reason = "resolver_unavailable"
		}
		paymentsFailedCounter.WithLabelValues(provider, reason).Inc()
		s.logger.ErrorContext(ctx, "Payment validation failed", "transaction_id", payment.TransactionID, "error", err)
		return domain.Payment{}, fmt.Errorf("validating transaction %s: %w", payment.TransactionID, err)
	}

	validated, err := payment.WithOutcome(outcome)
	if err != nil {
		return domain.Payment{}, err
	}
	paymentsValidatedCounter.WithLabelValues(provider, outcome.Reason).Inc()
	s.logger.InfoContext(ctx, "Payment validated",
		"transaction_id", validated.TransactionID,
		"provider", provider,
		"code", int(outcome.Code),
		"reason", outcome.Reason)

	s.publishOutcome(ctx, validated, outcome)
	return validated, nil
}

// publishOutcome is best effort. Broker errors are logged only.
func (s *RepaymentService) publishOutcome(ctx context.Context, p domain.Payment, o domain.Outcome) {
	if s.publisher == nil {
		return
	}
	event := OutcomeEvent{
		TransactionID: p.TransactionID,
		Provider:      p.Provider,
		CountryID:     p.CountryID,
		Account:       p.AccountSanitized,
		MobileNumber:  p.MobileNumber,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Code:          o.Code,
		Reason:        o.Reason,
		ValidatedAt:   s.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal outcome event", "transaction_id", p.TransactionID, "error", err)
		return
	}
	subject := fmt.Sprintf("%s%d", OutcomeSubjectPrefix, o.Code)
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish outcome event", "subject", subject, "error", err)
	}
}
