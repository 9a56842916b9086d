package location_test

import (
	"testing"

	"github.com/AlexFilippov-it/scanrole-api/internal/location"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want location.Parts
	}{
		{
			name: "city state country",
			raw:  "Austin, TX, US",
			want: location.Parts{City: "Austin", State: "TX", Country: "United States"},
		},
		{
			name: "canadian province with trailing CA",
			raw:  "Toronto, ON, CA",
			want: location.Parts{City: "Toronto", State: "ON", Country: "Canada"},
		},
		{
			name: "trailing us state code without country",
			raw:  "Remote, Austin, TX",
			want: location.Parts{City: "Remote", State: "TX", Country: "United States"},
		},
		{
			// Two-segment parse checks state codes before country names,
			// so the trailing CA resolves as California and the state
			// guess survives. Documented behavior, not an oversight.
			name: "ambiguous two-segment CA",
			raw:  "Remote, CA",
			want: location.Parts{City: "Remote", State: "CA", Country: "United States"},
		},
		{
			name: "two segments with country name",
			raw:  "Berlin, Germany",
			want: location.Parts{City: "Berlin", State: "", Country: "Germany"},
		},
		{
			name: "two segments with unknown token keeps state guess",
			raw:  "Remote, Anywhere",
			want: location.Parts{City: "Remote", State: "Anywhere", Country: ""},
		},
		{
			name: "uk alias",
			raw:  "London, England, UK",
			want: location.Parts{City: "London", State: "England", Country: "United Kingdom"},
		},
		{
			name: "long country token passes through",
			raw:  "Sydney, NSW, Australia",
			want: location.Parts{City: "Sydney", State: "NSW", Country: "Australia"},
		},
		{
			name: "unresolvable two-letter country is ambiguous",
			raw:  "Zagreb, Region, HR",
			want: location.Parts{City: "Zagreb", State: "Region", Country: ""},
		},
		{
			name: "single segment",
			raw:  "Remote",
			want: location.Parts{},
		},
		{
			name: "empty",
			raw:  "",
			want: location.Parts{},
		},
		{
			name: "whitespace and case tolerated",
			raw:  " Vancouver ,  bc , ca ",
			want: location.Parts{City: "Vancouver", State: "bc", Country: "Canada"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := location.Parse(tc.raw)
			if got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeCountryToken(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"US", "United States"},
		{"usa", "United States"},
		{"United States", "United States"},
		{"GB", "United Kingdom"},
		{"uk", "United Kingdom"},
		{"CA", "Canada"},
		{"DE", "Germany"},
		{"NE", "Netherlands"},
		{"ZZ", ""},
		{"Atlantis", "Atlantis"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := location.NormalizeCountryToken(tc.token); got != tc.want {
			t.Errorf("NormalizeCountryToken(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestInferCountryFromState(t *testing.T) {
	cases := []struct {
		state string
		want  string
	}{
		{"TX", "United States"},
		{"dc", "United States"},
		{"UK", "United Kingdom"},
		{"Canada", "Canada"},
		{"Germany", "Germany"},
		{"ON", ""}, // bare province codes do not imply Canada
		{"", ""},
	}
	for _, tc := range cases {
		if got := location.InferCountryFromState(tc.state); got != tc.want {
			t.Errorf("InferCountryFromState(%q) = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestUSStateCodes(t *testing.T) {
	codes := location.USStateCodes()
	if len(codes) != 51 {
		t.Fatalf("USStateCodes() returned %d codes, want 51 (50 states + DC)", len(codes))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("USStateCodes() not sorted at %d: %q >= %q", i, codes[i-1], codes[i])
		}
	}
}

func TestISORoundTrip(t *testing.T) {
	for _, country := range []string{"United States", "Canada", "United Kingdom", "Germany", "Netherlands"} {
		code, ok := location.ISOCode(country)
		if !ok {
			t.Fatalf("ISOCode(%q) missing", country)
		}
		back, ok := location.FromISO(code)
		if !ok || back != country {
			t.Errorf("FromISO(%q) = %q, %v; want %q", code, back, ok, country)
		}
	}
}
