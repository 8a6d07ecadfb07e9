package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

func TestRepaymentService_Process(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fields := map[string]string{
		"transaction_id": "QHX81ZVB6P",
		"amount":         "500",
		"mobile":         "254710821667",
		"account":        "13559830",
		"country":        "KE",
	}

	t.Run("PublishesOutcome", func(t *testing.T) {
		validator := new(MockPaymentValidator)
		publisher := new(MockPublisher)
		svc := NewRepaymentService(newTestNormalizer(t), validator, publisher, logger)
		svc.now = func() time.Time { return fixedNow }

		validator.On("Validate", ctx, mock.MatchedBy(func(p domain.Payment) bool {
			return p.TransactionID == "QHX81ZVB6P" && p.AccountSanitized == "13559830"
		})).Return(domain.NewOutcome(domain.OutcomePhoneMismatch), nil).Once()

		var published OutcomeEvent
		publisher.On("Publish", ctx, "repayments.validated.5", mock.Anything).
			Run(func(args mock.Arguments) {
				require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &published))
			}).Return(nil).Once()

		p, err := svc.Process(ctx, "mpesa", fields)
		require.NoError(t, err)
		o, ok := p.Outcome()
		require.True(t, ok)
		assert.Equal(t, domain.OutcomePhoneMismatch, o.Code)

		assert.Equal(t, "QHX81ZVB6P", published.TransactionID)
		assert.Equal(t, domain.OutcomePhoneMismatch, published.Code)
		assert.Equal(t, "phone_mismatch", published.Reason)
		assert.True(t, fixedNow.Equal(published.ValidatedAt))
		validator.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("PublishFailureDoesNotFailRequest", func(t *testing.T) {
		validator := new(MockPaymentValidator)
		publisher := new(MockPublisher)
		svc := NewRepaymentService(newTestNormalizer(t), validator, publisher, logger)

		validator.On("Validate", ctx, mock.Anything).Return(domain.NewOutcome(domain.OutcomeValid), nil)
		publisher.On("Publish", ctx, "repayments.validated.1", mock.Anything).Return(errors.New("nats down"))

		p, err := svc.Process(ctx, "mpesa", fields)
		require.NoError(t, err)
		o, _ := p.Outcome()
		assert.True(t, o.Accepted())
	})

	t.Run("MalformedSkipsValidation", func(t *testing.T) {
		validator := new(MockPaymentValidator)
		svc := NewRepaymentService(newTestNormalizer(t), validator, nil, logger)

		_, err := svc.Process(ctx, "mpesa", map[string]string{"mobile": "254710821667", "country": "KE"})
		assert.ErrorIs(t, err, domain.ErrMalformedPayload)
		validator.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
	})

	t.Run("ResolverUnavailable", func(t *testing.T) {
		validator := new(MockPaymentValidator)
		publisher := new(MockPublisher)
		svc := NewRepaymentService(newTestNormalizer(t), validator, publisher, logger)

		storeErr := fmt.Errorf("%w: timeout", domain.ErrResolverUnavailable)
		validator.On("Validate", ctx, mock.Anything).Return(domain.Outcome{}, storeErr)

		_, err := svc.Process(ctx, "mpesa", fields)
		assert.ErrorIs(t, err, domain.ErrResolverUnavailable)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}
