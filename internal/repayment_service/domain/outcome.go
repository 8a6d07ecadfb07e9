package domain

// OutcomeCode is the integer verdict attached to a payment. 1 means accepted,
// anything greater is a rejection with a specific reason.
type OutcomeCode int

const (
	OutcomeValid                OutcomeCode = 1
	OutcomeDuplicateTransaction OutcomeCode = 2
	OutcomeAccountNotFound      OutcomeCode = 3
	OutcomeClientInactive       OutcomeCode = 4
	OutcomePhoneMismatch        OutcomeCode = 5
	OutcomeAmbiguousPhone       OutcomeCode = 6
	OutcomeNoActiveSeason       OutcomeCode = 7
	OutcomeCurrencyMismatch     OutcomeCode = 8
)

var outcomeReasons = map[OutcomeCode]string{
	OutcomeValid:                "valid",
	OutcomeDuplicateTransaction: "duplicate_transaction",
	OutcomeAccountNotFound:      "account_not_found",
	OutcomeClientInactive:       "client_inactive",
	OutcomePhoneMismatch:        "phone_mismatch",
	OutcomeAmbiguousPhone:       "ambiguous_phone",
	OutcomeNoActiveSeason:       "no_active_season",
	OutcomeCurrencyMismatch:     "currency_mismatch",
}

func (c OutcomeCode) String() string {
	if r, ok := outcomeReasons[c]; ok {
		return r
	}
	return "unknown"
}

// Outcome is a code plus its human readable reason.
type Outcome struct {
	Code   OutcomeCode `json:"code"`
	Reason string      `json:"reason"`
}

// NewOutcome builds an Outcome with the canonical reason for code.
func NewOutcome(code OutcomeCode) Outcome {
	return Outcome{Code: code, Reason: code.String()}
}

func (o Outcome) Accepted() bool { return o.Code == OutcomeValid }
