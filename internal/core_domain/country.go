package core_domain

import (
	"strconv"
	"strings"
)

// Country is an entry of the static country table.
type Country struct {
	ID       int    // ISO 3166-1 numeric code, used as the internal country id
	Code     string // ISO 3166-1 alpha-2
	Currency string // ISO 4217
}

var countries = []Country{
	{ID: 404, Code: "KE", Currency: "KES"},
	{ID: 646, Code: "RW", Currency: "RWF"},
	{ID: 800, Code: "UG", Currency: "UGX"},
	{ID: 834, Code: "TZ", Currency: "TZS"},
	{ID: 454, Code: "MW", Currency: "MWK"},
	{ID: 108, Code: "BI", Currency: "BIF"},
	{ID: 894, Code: "ZM", Currency: "ZMW"},
	{ID: 231, Code: "ET", Currency: "ETB"},
	{ID: 566, Code: "NG", Currency: "NGN"},
}

// LookupCountry accepts an alpha-2 code ("KE") or a numeric id ("404").
func LookupCountry(code string) (Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Country{}, false
	}
	if id, err := strconv.Atoi(code); err == nil {
		return CountryByID(id)
	}
	for _, c := range countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// CountryByID finds a country by its internal id.
func CountryByID(id int) (Country, bool) {
	for _, c := range countries {
		if c.ID == id {
			return c, true
		}
	}
	return Country{}, false
}
