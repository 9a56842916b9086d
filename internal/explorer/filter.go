package explorer

import (
	"fmt"
	"strings"

	"github.com/AlexFilippov-it/scanrole-api/internal/location"
)

// appendLocationFilter extends a WHERE clause under construction with the
// location predicates for (country, state) and returns the updated SQL and
// parameter list. Placeholders continue from len(params); values are always
// bound, never concatenated.
//
// The raw location column encodes state and country as trailing comma
// segments, so a state matches as ", XX" at end-of-string or ", XX, "
// mid-string, and a country as any of its alias tokens in trailing
// position. With only country = United States the US-detection signal is a
// trailing state code, since many US rows carry no country token. With
// only country = Canada, locations ending in ", CA" are explicitly
// excluded: that trailing code means California in this dataset, and the
// Canada filter must not be satisfied by it. This is a data-quality
// workaround, not a general rule; do not generalize it.
func appendLocationFilter(sql string, params []any, country, state string) (string, []any) {
	next := func(v any) string {
		params = append(params, v)
		return fmt.Sprintf("$%d", len(params))
	}

	var aliases []string
	if country != "" {
		aliases = location.CountryAliases(country)
	}

	if state != "" {
		sql += fmt.Sprintf(" AND (location LIKE %s OR location LIKE %s)",
			next("%, "+state), next("%, "+state+", %"))
		if len(aliases) > 0 {
			conds := make([]string, 0, len(aliases))
			for _, alias := range aliases {
				conds = append(conds, "location LIKE "+next("%, "+alias))
			}
			sql += " AND (" + strings.Join(conds, " OR ") + ")"
		}
		return sql, params
	}

	if country == "" {
		return sql, params
	}

	if country == "United States" {
		codes := location.USStateCodes()
		conds := make([]string, 0, len(codes))
		for _, code := range codes {
			conds = append(conds, "location LIKE "+next("%, "+code))
		}
		sql += " AND (" + strings.Join(conds, " OR ") + ")"
		return sql, params
	}

	conds := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		conds = append(conds, "location LIKE "+next("%, "+alias))
	}
	sql += " AND (" + strings.Join(conds, " OR ") + ")"

	if country == "Canada" {
		sql += fmt.Sprintf(" AND location NOT LIKE %s AND location NOT LIKE %s",
			next("%, CA"), next("%, CA, %"))
	}
	return sql, params
}
