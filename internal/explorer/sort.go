package explorer

import (
	"sort"
	"strings"
)

// SortKey enumerates the accepted primary sort columns.
type SortKey string

const (
	SortJobsCount      SortKey = "jobs_count"
	SortJobsDeltaPct   SortKey = "jobs_delta_pct"
	SortAvgSalary      SortKey = "avg_salary"
	SortSalaryDeltaPct SortKey = "salary_delta_pct"
	SortRemotePct      SortKey = "remote_pct"
	SortRemoteDeltaPP  SortKey = "remote_delta_pp"
	SortRole           SortKey = "role"
	SortCountry        SortKey = "country"
	SortState          SortKey = "state"
)

// SortDir is the requested direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

var sortKeys = map[string]SortKey{
	"jobs_count":       SortJobsCount,
	"jobs_delta_pct":   SortJobsDeltaPct,
	"avg_salary":       SortAvgSalary,
	"salary_delta_pct": SortSalaryDeltaPct,
	"remote_pct":       SortRemotePct,
	"remote_delta_pp":  SortRemoteDeltaPP,
	"role":             SortRole,
	"country":          SortCountry,
	"state":            SortState,
}

// NormalizeSort maps both historical sort parameter shapes onto one
// canonical (key, direction) pair: the structured sort_by/sort_dir pair
// wins when sort_by is recognized, otherwise the legacy single token
// ("avg_salary_desc", "role_asc", ...) is split and resolved. Anything
// unrecognized falls back to jobs-count-descending.
func NormalizeSort(legacy, sortBy, sortDir string) (SortKey, SortDir) {
	if key, ok := sortKeys[strings.ToLower(strings.TrimSpace(sortBy))]; ok {
		dir := SortDesc
		if strings.EqualFold(strings.TrimSpace(sortDir), string(SortAsc)) {
			dir = SortAsc
		}
		return key, dir
	}

	token := strings.ToLower(strings.TrimSpace(legacy))
	dir := SortDesc
	switch {
	case strings.HasSuffix(token, "_desc"):
		token = strings.TrimSuffix(token, "_desc")
	case strings.HasSuffix(token, "_asc"):
		token = strings.TrimSuffix(token, "_asc")
		dir = SortAsc
	}
	if key, ok := sortKeys[token]; ok {
		return key, dir
	}

	return SortJobsCount, SortDesc
}

// sortRows orders rows deterministically: a stable baseline by
// (role, country, state) ascending first, then a stable pass on the
// requested key. Nil values in the primary column sort after all non-nil
// values regardless of direction.
func sortRows(rows []RoleMetricRow, key SortKey, dir SortDir) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		ac, bc := strDeref(a.Country), strDeref(b.Country)
		if ac != bc {
			return ac < bc
		}
		return strDeref(a.State) < strDeref(b.State)
	})

	switch key {
	case SortRole, SortCountry, SortState:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := stringSortValue(&rows[i], key), stringSortValue(&rows[j], key)
			if a == b {
				return false
			}
			if dir == SortAsc {
				return a < b
			}
			return a > b
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := numericSortValue(&rows[i], key), numericSortValue(&rows[j], key)
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			case *a == *b:
				return false
			}
			if dir == SortAsc {
				return *a < *b
			}
			return *a > *b
		})
	}
}

func stringSortValue(r *RoleMetricRow, key SortKey) string {
	switch key {
	case SortCountry:
		return strDeref(r.Country)
	case SortState:
		return strDeref(r.State)
	default:
		return r.Role
	}
}

func numericSortValue(r *RoleMetricRow, key SortKey) *float64 {
	switch key {
	case SortJobsDeltaPct:
		return r.JobsDeltaPct
	case SortAvgSalary:
		return r.SalaryCurrent
	case SortSalaryDeltaPct:
		return r.SalaryDeltaPct
	case SortRemotePct:
		return r.RemoteCurrent
	case SortRemoteDeltaPP:
		v := r.RemoteDeltaPP
		return &v
	default:
		v := float64(r.JobsCurrent)
		return &v
	}
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
