package domain

import (
	"context"

	"github.com/mmoney/golang_services/internal/core_domain"
)

// ClientResolver answers roster questions for the validation pipeline.
// Implementations return (nil, nil) when nothing matches and wrap store
// failures with ErrResolverUnavailable.
type ClientResolver interface {
	ByAccount(ctx context.Context, sanitizedAccount string) (*core_domain.Client, error)
	ByPhone(ctx context.Context, number string) ([]core_domain.Client, error)
	Season(ctx context.Context, clientID int64, cycle string) (*core_domain.SeasonClient, error)
}

// DuplicateGuard records processed transaction ids. CheckAndMark must be
// atomic: of two concurrent calls with the same id exactly one sees false.
// Release removes a mark whose validation did not complete, so the provider's
// retry is evaluated again. Releasing an unknown id is not an error.
type DuplicateGuard interface {
	CheckAndMark(ctx context.Context, transactionID string) (seen bool, err error)
	Release(ctx context.Context, transactionID string) error
}
