package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

type MockClientResolver struct {
	mock.Mock
}

func (m *MockClientResolver) ByAccount(ctx context.Context, sanitizedAccount string) (*core_domain.Client, error) {
	args := m.Called(ctx, sanitizedAccount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core_domain.Client), args.Error(1)
}

func (m *MockClientResolver) ByPhone(ctx context.Context, number string) ([]core_domain.Client, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core_domain.Client), args.Error(1)
}

func (m *MockClientResolver) Season(ctx context.Context, clientID int64, cycle string) (*core_domain.SeasonClient, error) {
	args := m.Called(ctx, clientID, cycle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core_domain.SeasonClient), args.Error(1)
}

type MockDuplicateGuard struct {
	mock.Mock
}

func (m *MockDuplicateGuard) CheckAndMark(ctx context.Context, transactionID string) (bool, error) {
	args := m.Called(ctx, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDuplicateGuard) Release(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

type MockSettingsProvider struct {
	mock.Mock
}

func (m *MockSettingsProvider) Get(ctx context.Context, countryID int) (*domain.CountrySettings, error) {
	args := m.Called(ctx, countryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CountrySettings), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockPaymentValidator struct {
	mock.Mock
}

func (m *MockPaymentValidator) Validate(ctx context.Context, p domain.Payment) (domain.Outcome, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Outcome), args.Error(1)
}
