package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a canonical repayment notification, independent of the provider
// that sent it.
type Payment struct {
	TransactionID    string          `json:"transaction_id"`
	Amount           decimal.Decimal `json:"amount"`
	Timestamp        time.Time       `json:"timestamp"`
	MobileNumber     string          `json:"mobile_number"`
	AccountRaw       string          `json:"account_raw"`
	AccountSanitized string          `json:"account_sanitized"`
	Paybill          string          `json:"paybill,omitempty"`
	Status           string          `json:"status,omitempty"`
	Method           string          `json:"method,omitempty"`
	Type             string          `json:"type,omitempty"`
	Currency         string          `json:"currency,omitempty"`
	CountryID        int             `json:"country_id"`
	Provider         string          `json:"provider,omitempty"`

	outcome *Outcome
}

// Outcome returns the attached outcome, if any.
func (p Payment) Outcome() (Outcome, bool) {
	if p.outcome == nil {
		return Outcome{}, false
	}
	return *p.outcome, true
}

// HasOutcome reports whether an outcome has been attached.
func (p Payment) HasOutcome() bool { return p.outcome != nil }

// WithOutcome returns a copy of p carrying o. The receiver is never modified.
func (p Payment) WithOutcome(o Outcome) (Payment, error) {
	if p.outcome != nil {
		return p, ErrOutcomeAlreadySet
	}
	p.outcome = &o
	return p, nil
}
