// Package currency derives the budget currency from a target country and
// holds the list of countries offered on the profile form.
package currency

import (
	"strings"

	"golang.org/x/text/currency"
)

// Default is used for every country without an explicit mapping.
var Default = currency.INR

// byCountry is keyed by lower-cased country name.
var byCountry = map[string]currency.Unit{
	"united states of america": currency.USD,
	"united states":            currency.USD,
	"usa":                      currency.USD,
	"germany":                  currency.EUR,
	"canada":                   currency.CAD,
	"australia":                currency.AUD,
	"india":                    currency.INR,
}

// ForCountry returns the ISO 4217 code for the country's budget currency.
func ForCountry(country string) string {
	return Lookup(country).String()
}

// Lookup returns the currency unit for the country, or Default.
func Lookup(country string) currency.Unit {
	if u, ok := byCountry[strings.ToLower(strings.TrimSpace(country))]; ok {
		return u
	}
	return Default
}
