package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmoney/golang_services/internal/core_domain"
	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

// Canonical field names understood by the normalizer.
const (
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldTimestamp     = "timestamp"
	FieldMobile        = "mobile"
	FieldAccount       = "account"
	FieldPaybill       = "paybill"
	FieldStatus        = "status"
	FieldMethod        = "method"
	FieldType          = "type"
	FieldCurrency      = "currency"
	FieldCountry       = "country"
)

var canonicalFields = map[string]struct{}{
	FieldTransactionID: {}, FieldAmount: {}, FieldTimestamp: {}, FieldMobile: {},
	FieldAccount: {}, FieldPaybill: {}, FieldStatus: {}, FieldMethod: {},
	FieldType: {}, FieldCurrency: {}, FieldCountry: {},
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"20060102150405",
}

var phoneNoise = strings.NewReplacer(" ", "", "+", "", "-", "", "(", "", ")", "", ".", "")

// FieldAliases maps provider -> provider field name -> canonical field name.
type FieldAliases map[string]map[string]string

// ParseFieldAliases turns config pairs of the form "provider:field" = "canonical"
// into FieldAliases.
func ParseFieldAliases(pairs map[string]string) (FieldAliases, error) {
	out := make(FieldAliases)
	for key, canonical := range pairs {
		provider, field, ok := strings.Cut(key, ":")
		if !ok || provider == "" || field == "" {
			return nil, fmt.Errorf("alias %q must look like provider:field", key)
		}
		if _, known := canonicalFields[canonical]; !known {
			return nil, fmt.Errorf("alias %q targets unknown field %q", key, canonical)
		}
		if out[provider] == nil {
			out[provider] = make(map[string]string)
		}
		out[provider][field] = canonical
	}
	return out, nil
}

// Normalizer converts provider field maps into canonical payments.
type Normalizer struct {
	aliases FieldAliases
	now     func() time.Time
}

func NewNormalizer(aliases FieldAliases, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	if aliases == nil {
		aliases = FieldAliases{}
	}
	return &Normalizer{aliases: aliases, now: now}
}

// Normalize builds a Payment from fields sent by provider. Every failure wraps
// domain.ErrMalformedPayload.
func (n *Normalizer) Normalize(provider string, fields map[string]string) (domain.Payment, error) {
	canon := n.canonicalize(provider, fields)

	amountRaw := canon[FieldAmount]
	if amountRaw == "" {
		return domain.Payment{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedPayload, FieldAmount)
	}
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("%w: amount %q: %v", domain.ErrMalformedPayload, amountRaw, err)
	}

	mobile := phoneNoise.Replace(canon[FieldMobile])
	if mobile == "" {
		return domain.Payment{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedPayload, FieldMobile)
	}

	countryRaw := canon[FieldCountry]
	if countryRaw == "" {
		return domain.Payment{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedPayload, FieldCountry)
	}
	country, ok := core_domain.LookupCountry(countryRaw)
	if !ok {
		return domain.Payment{}, fmt.Errorf("%w: unknown country %q", domain.ErrMalformedPayload, countryRaw)
	}

	ts, err := n.parseTimestamp(canon[FieldTimestamp])
	if err != nil {
		return domain.Payment{}, err
	}

	txID := canon[FieldTransactionID]
	if txID == "" {
		txID = uuid.NewString()
	}

	currency := strings.ToUpper(canon[FieldCurrency])
	if currency == "" {
		currency = country.Currency
	}

	return domain.Payment{
		TransactionID:    txID,
		Amount:           amount,
		Timestamp:        ts,
		MobileNumber:     mobile,
		AccountRaw:       canon[FieldAccount],
		AccountSanitized: domain.SanitizeAccount(canon[FieldAccount]),
		Paybill:          canon[FieldPaybill],
		Status:           canon[FieldStatus],
		Method:           canon[FieldMethod],
		Type:             canon[FieldType],
		Currency:         currency,
		CountryID:        country.ID,
		Provider:         provider,
	}, nil
}

// canonicalize renames aliased fields and trims values. A canonical field sent
// directly wins over an alias of it.
func (n *Normalizer) canonicalize(provider string, fields map[string]string) map[string]string {
	aliases := n.aliases[provider]
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if _, ok := canonicalFields[k]; ok {
			out[k] = strings.TrimSpace(v)
		}
	}
	for k, v := range fields {
		target, ok := aliases[k]
		if !ok {
			continue
		}
		if _, set := out[target]; !set {
			out[target] = strings.TrimSpace(v)
		}
	}
	return out
}

func (n *Normalizer) parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return n.now().UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", domain.ErrMalformedPayload, raw)
}
