package core_domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClientStatus is the roster status of a borrower.
type ClientStatus string

const (
	ClientStatusActive  ClientStatus = "active"
	ClientStatusDropped ClientStatus = "dropped"
)

// ParseClientStatus validates a status read from storage.
func ParseClientStatus(raw string) (ClientStatus, error) {
	switch s := ClientStatus(raw); s {
	case ClientStatusActive, ClientStatusDropped:
		return s, nil
	default:
		return "", fmt.Errorf("unknown client status %q", raw)
	}
}

// Client is a read-only snapshot of a borrower as seen by the roster.
type Client struct {
	ID            int64        `json:"id"`
	GlobalID      uuid.UUID    `json:"global_id"`
	DistrictID    int64        `json:"district_id"`
	MainPhone     string       `json:"main_phone"`
	Mobile1       string       `json:"mobile1,omitempty"`
	Mobile2       string       `json:"mobile2,omitempty"`
	AccountNumber string       `json:"account_number"`
	Status        ClientStatus `json:"status"`
}

// IsActive reports whether the client is currently enrolled.
func (c Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// PhoneNumbers returns the client's known numbers in priority order,
// skipping blanks.
func (c Client) PhoneNumbers() []string {
	out := make([]string, 0, 3)
	for _, n := range []string{c.MainPhone, c.Mobile1, c.Mobile2} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// HasPhone reports whether number equals one of the client's known numbers.
func (c Client) HasPhone(number string) bool {
	if number == "" {
		return false
	}
	for _, n := range c.PhoneNumbers() {
		if n == number {
			return true
		}
	}
	return false
}

// SeasonClient associates a client with a lending cycle.
type SeasonClient struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Cycle     string    `json:"cycle"`
	CreatedAt time.Time `json:"created_at"`
}
