package geolib

import (
	"sort"
	"strings"

	"github.com/pariz/gountries"
)

var countryCodeQuery = gountries.New()

// CountryDetails is a subset of country data which is used to backfill
// records if provider has not returned them.
type CountryDetails struct {
	Alpha2     string
	CommonName string
	Currency   string
	Languages  string
}

// NormalizeAlpha2Code returns a normalized 2-letter ISO3166 code.
// Normalized code is uppercased with some additional mapping. For
// example, some services return ZZ as 'unknown' country. This function
// returns "" instead. Some of them still return UK for Great Britain.
// This correctly maps UK to GB.
//
// So, whenever you want to use 2-letter ISO3166 code and it is coming
// from unknown source, it is recommended to normalize it with this
// function.
func NormalizeAlpha2Code(alpha2 string) string {
	alpha2 = strings.ToUpper(strings.TrimSpace(alpha2))

	if len(alpha2) != 2 {
		return ""
	}

	switch alpha2 {
	case "ZZ", "AP", "EU", "XX":
		return ""
	case "YU":
		return "CS"
	case "FX":
		return "FR"
	case "UK":
		return "GB"
	default:
		return alpha2
	}
}

// Alpha3ToAlpha2 maps 3-letter string of ISO3166 to 2-letter one.
func Alpha3ToAlpha2(alpha3 string) string {
	alpha3 = strings.ToUpper(strings.TrimSpace(alpha3))

	return NormalizeAlpha2Code(countryCodeQuery.Alpha3ToAlpha2[alpha3])
}

// LookupCountry returns details for the country with a given 2-letter
// code. Second value is false if country is unknown.
func LookupCountry(alpha2 string) (CountryDetails, bool) {
	alpha2 = NormalizeAlpha2Code(alpha2)
	if alpha2 == "" {
		return CountryDetails{}, false
	}

	country, err := countryCodeQuery.FindCountryByAlpha(alpha2)
	if err != nil {
		return CountryDetails{}, false
	}

	rv := CountryDetails{
		Alpha2:     alpha2,
		CommonName: country.Name.BaseLang.Common,
	}

	if len(country.Currencies) > 0 {
		rv.Currency = country.Currencies[0]
	}

	languages := make([]string, 0, len(country.Languages))

	for _, v := range country.Languages {
		languages = append(languages, v)
	}

	sort.Strings(languages)

	rv.Languages = strings.Join(languages, ", ")

	return rv, true
}
