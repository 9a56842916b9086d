// Package location parses free-text job locations ("City, State, Country")
// into structured parts and maintains the country alias tables used by
// the filter builder.
//
// The raw column is free text scraped from many job boards, so parsing is
// position-based and deliberately ambiguity-tolerant: callers must accept
// an absent country or state.
package location

import (
	"sort"
	"strings"
)

// Parts is the structured form of one raw location string. Empty fields
// mean the segment was absent or could not be resolved. Country, when set,
// is the canonical display name ("United States", not "US").
type Parts struct {
	City    string
	State   string
	Country string
}

var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

var canadaProvinces = map[string]bool{
	"AB": true, "BC": true, "MB": true, "NB": true, "NL": true, "NS": true,
	"NT": true, "NU": true, "ON": true, "PE": true, "QC": true, "SK": true,
	"YT": true,
}

var isoByCountry = map[string]string{
	"United States":  "US",
	"Canada":         "CA",
	"United Kingdom": "GB",
	"Germany":        "DE",
	"Netherlands":    "NL",
}

var countryByISO = map[string]string{
	"US": "United States",
	"CA": "Canada",
	"GB": "United Kingdom",
	"DE": "Germany",
	"NL": "Netherlands",
}

// Parse splits a raw comma-separated location into Parts.
//
// With three or more segments the last two decide state and country: a
// trailing "CA" preceded by a Canadian province code means Canada, a
// trailing US state code means United States, anything else is resolved
// through the alias tables (unresolvable two-letter tokens yield no
// country). With exactly two segments the second is a tentative state; if
// country inference on it does not say United States the guess is
// discarded as having been a country name.
func Parse(raw string) Parts {
	segs := strings.Split(raw, ",")
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}
	if len(segs) < 2 {
		return Parts{}
	}

	city := segs[0]
	var state, country string

	if len(segs) >= 3 {
		last := strings.ToUpper(segs[len(segs)-1])
		prev := strings.ToUpper(segs[len(segs)-2])
		switch {
		case last == "CA" && canadaProvinces[prev]:
			state = segs[len(segs)-2]
			country = "Canada"
		case IsUSState(last):
			state = segs[len(segs)-1]
			country = "United States"
		default:
			state = segs[len(segs)-2]
			country = NormalizeCountryToken(segs[len(segs)-1])
		}
	} else {
		// State-code lookup runs before country-name lookup here, so
		// "Remote, CA" resolves CA as California, not Canada. Preserved
		// as-is: the disambiguation intent is not recoverable from the
		// input alone.
		state = segs[1]
		country = InferCountryFromState(state)
		if country != "" && country != "United States" {
			state = ""
		}
	}

	return Parts{City: city, State: state, Country: country}
}

// NormalizeCountryToken maps a raw trailing segment to a canonical country
// name. Unknown two-letter tokens are ambiguous and map to ""; longer
// unknown tokens pass through verbatim.
func NormalizeCountryToken(token string) string {
	if token == "" {
		return ""
	}
	switch upper := strings.ToUpper(token); upper {
	case "US", "USA", "UNITED STATES":
		return "United States"
	case "UK", "GB", "UNITED KINGDOM":
		return "United Kingdom"
	case "CA", "CANADA":
		return "Canada"
	case "DE", "GERMANY":
		return "Germany"
	case "NL", "NE", "NETHERLANDS":
		return "Netherlands"
	default:
		if len(upper) == 2 {
			return ""
		}
		return token
	}
}

// InferCountryFromState guesses a country from a bare state segment.
func InferCountryFromState(state string) string {
	if state == "" {
		return ""
	}
	upper := strings.ToUpper(state)
	if IsUSState(upper) {
		return "United States"
	}
	switch upper {
	case "UK", "GB", "UNITED KINGDOM":
		return "United Kingdom"
	case "CANADA":
		return "Canada"
	case "GERMANY":
		return "Germany"
	case "NETHERLANDS":
		return "Netherlands"
	}
	return ""
}

// IsUSState reports whether code is one of the 50 state codes or DC.
func IsUSState(code string) bool {
	_, ok := usStates[strings.ToUpper(code)]
	return ok
}

// USStateCodes returns all US state codes plus DC in sorted order.
func USStateCodes() []string {
	codes := make([]string, 0, len(usStates))
	for code := range usStates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CountryAliases returns the raw-text tokens accepted as a trailing
// country segment for a canonical country name.
func CountryAliases(country string) []string {
	switch country {
	case "United States":
		return []string{"United States", "US", "USA"}
	case "United Kingdom":
		return []string{"United Kingdom", "UK", "GB"}
	case "Canada":
		return []string{"Canada", "CA"}
	case "Germany":
		return []string{"Germany", "DE"}
	case "Netherlands":
		return []string{"Netherlands", "NL", "NE"}
	default:
		return []string{country}
	}
}

// ISOCode maps a canonical country name to its external ISO encoding.
func ISOCode(country string) (string, bool) {
	code, ok := isoByCountry[country]
	return code, ok
}

// FromISO maps an external ISO code to the canonical country name.
func FromISO(code string) (string, bool) {
	country, ok := countryByISO[strings.ToUpper(code)]
	return country, ok
}
