package research

import "strings"

// LocationDefaults are the business defaults for a country or US state.
type LocationDefaults struct {
	Currency string
	TaxRate  float64 // percent
	Language string
	Timezone string
}

type stateDefaults struct {
	taxRate  float64
	timezone string
}

// usStates holds combined lodging tax rates (percent) and the primary
// timezone for each of the 50 states.
var usStates = map[string]stateDefaults{
	"AL": {13.5, "America/Chicago"},
	"AK": {12.0, "America/Anchorage"},
	"AZ": {12.6, "America/Phoenix"},
	"AR": {13.5, "America/Chicago"},
	"CA": {10.5, "America/Los_Angeles"},
	"CO": {10.8, "America/Denver"},
	"CT": {15.0, "America/New_York"},
	"DE": {8.0, "America/New_York"},
	"FL": {13.0, "America/New_York"},
	"GA": {13.0, "America/New_York"},
	"HI": {17.96, "Pacific/Honolulu"},
	"ID": {8.0, "America/Boise"},
	"IL": {17.5, "America/Chicago"},
	"IN": {12.0, "America/Indiana/Indianapolis"},
	"IA": {12.0, "America/Chicago"},
	"KS": {12.5, "America/Chicago"},
	"KY": {13.0, "America/New_York"},
	"LA": {15.0, "America/Chicago"},
	"ME": {9.0, "America/New_York"},
	"MD": {11.5, "America/New_York"},
	"MA": {11.7, "America/New_York"},
	"MI": {12.0, "America/Detroit"},
	"MN": {13.4, "America/Chicago"},
	"MS": {10.0, "America/Chicago"},
	"MO": {13.0, "America/Chicago"},
	"MT": {8.0, "America/Denver"},
	"NE": {12.5, "America/Chicago"},
	"NV": {13.0, "America/Los_Angeles"},
	"NH": {8.5, "America/New_York"},
	"NJ": {14.6, "America/New_York"},
	"NM": {12.0, "America/Denver"},
	"NY": {14.8, "America/New_York"},
	"NC": {12.8, "America/New_York"},
	"ND": {10.0, "America/Chicago"},
	"OH": {14.3, "America/New_York"},
	"OK": {13.0, "America/Chicago"},
	"OR": {11.5, "America/Los_Angeles"},
	"PA": {11.0, "America/New_York"},
	"RI": {13.0, "America/New_York"},
	"SC": {11.0, "America/New_York"},
	"SD": {9.5, "America/Chicago"},
	"TN": {15.0, "America/Chicago"},
	"TX": {15.0, "America/Chicago"},
	"UT": {12.0, "America/Denver"},
	"VT": {10.0, "America/New_York"},
	"VA": {13.0, "America/New_York"},
	"WA": {15.6, "America/Los_Angeles"},
	"WV": {12.0, "America/New_York"},
	"WI": {12.0, "America/Chicago"},
	"WY": {9.0, "America/Denver"},
}

// countries holds country-level defaults. The US entry is the fallback for
// unknown or missing state codes; its timezone is left empty so the
// timezone fallback stays explicit.
var countries = map[string]LocationDefaults{
	"US": {Currency: "USD", TaxRate: 10.0, Language: "en"},
	"GB": {Currency: "GBP", TaxRate: 20.0, Language: "en", Timezone: "Europe/London"},
	"CA": {Currency: "CAD", TaxRate: 13.0, Language: "en", Timezone: "America/Toronto"},
	"AU": {Currency: "AUD", TaxRate: 10.0, Language: "en", Timezone: "Australia/Sydney"},
	"FR": {Currency: "EUR", TaxRate: 20.0, Language: "fr", Timezone: "Europe/Paris"},
	"DE": {Currency: "EUR", TaxRate: 19.0, Language: "de", Timezone: "Europe/Berlin"},
	"ES": {Currency: "EUR", TaxRate: 21.0, Language: "es", Timezone: "Europe/Madrid"},
	"MX": {Currency: "MXN", TaxRate: 16.0, Language: "es", Timezone: "America/Mexico_City"},
}

var countryAliases = map[string]string{
	"USA":            "US",
	"UNITED STATES":  "US",
	"UK":             "GB",
	"UNITED KINGDOM": "GB",
	"CANADA":         "CA",
	"AUSTRALIA":      "AU",
	"FRANCE":         "FR",
	"GERMANY":        "DE",
	"SPAIN":          "ES",
	"MEXICO":         "MX",
}

// LookupLocation returns defaults for country and, in the US, state. The
// boolean is false when the country is unknown.
func LookupLocation(country, state string) (LocationDefaults, bool) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if code == "" {
		code = "US"
	}
	if alias, ok := countryAliases[code]; ok {
		code = alias
	}

	d, ok := countries[code]
	if !ok {
		return LocationDefaults{}, false
	}
	if code == "US" {
		if s, ok := usStates[strings.ToUpper(strings.TrimSpace(state))]; ok {
			d.TaxRate = s.taxRate
			d.Timezone = s.timezone
		}
	}
	return d, true
}

// StateCount returns the number of US states in the table.
func StateCount() int { return len(usStates) }
