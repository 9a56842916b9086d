package explorer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlexFilippov-it/scanrole-api/internal/location"
)

// Service runs the read-only aggregate queries against the wide postings
// table. It is transport-agnostic; the HTTP layer lives in handler.go.
type Service struct {
	pool  *pgxpool.Pool
	table string
}

// NewService binds a Service to a connection pool and table. The table
// identifier is validated at config load; it cannot be a bind parameter.
func NewService(pool *pgxpool.Pool, table string) *Service {
	return &Service{pool: pool, table: table}
}

// Roles returns the distinct normalized roles, ascending with "Other"
// last.
func (s *Service) Roles(ctx context.Context) ([]string, error) {
	sql := fmt.Sprintf(
		"SELECT DISTINCT normalized_role FROM %s WHERE normalized_role IS NOT NULL AND normalized_role <> ''",
		s.table)

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("roles query: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("roles scan: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles rows: %w", err)
	}

	sort.Slice(roles, func(i, j int) bool {
		oi, oj := roles[i] == "Other", roles[j] == "Other"
		if oi != oj {
			return oj
		}
		return roles[i] < roles[j]
	})
	return roles, nil
}

// distinctLocations feeds the countries/states derivations.
func (s *Service) distinctLocations(ctx context.Context) ([]string, error) {
	sql := fmt.Sprintf(
		"SELECT DISTINCT location FROM %s WHERE location IS NOT NULL AND location <> ''",
		s.table)

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("locations query: %w", err)
	}
	defer rows.Close()

	locations := make([]string, 0)
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("locations scan: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("locations rows: %w", err)
	}
	return locations, nil
}

// supportedCountries is the closed set the explorer exposes; other
// countries appear in the raw data but have too little coverage.
var supportedCountries = []string{"Canada", "United Kingdom", "United States"}

// Countries derives the canonical country names present in the data,
// restricted to the supported set, sorted ascending.
func (s *Service) Countries(ctx context.Context) ([]string, error) {
	locations, err := s.distinctLocations(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, loc := range locations {
		parts := location.Parse(loc)
		switch {
		case parts.Country != "":
			seen[parts.Country] = true
		case parts.State != "" && location.IsUSState(parts.State):
			seen["United States"] = true
		}
	}

	countries := make([]string, 0, len(supportedCountries))
	for _, c := range supportedCountries {
		if seen[c] {
			countries = append(countries, c)
		}
	}
	sort.Strings(countries)
	return countries, nil
}

// StatesByCountry derives the state values observed for a canonical
// country name, sorted ascending. For the United States a bare state code
// with no country token counts, since many US rows omit the country.
func (s *Service) StatesByCountry(ctx context.Context, country string) ([]string, error) {
	if country == "" {
		return []string{}, nil
	}

	locations, err := s.distinctLocations(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, loc := range locations {
		parts := location.Parse(loc)
		if parts.State == "" {
			continue
		}
		switch {
		case country == "United States" && parts.Country == "" && location.IsUSState(parts.State):
			seen[parts.State] = true
		case parts.Country == country:
			seen[parts.State] = true
		}
	}

	states := make([]string, 0, len(seen))
	for state := range seen {
		states = append(states, state)
	}
	sort.Strings(states)
	return states, nil
}

// RoleEndDates returns, per role matching the filter, the most recent
// observed post date. Roles never posted under the filter are absent.
func (s *Service) RoleEndDates(ctx context.Context, f Filter) (map[string]time.Time, error) {
	sql := fmt.Sprintf(
		"SELECT normalized_role, MAX(date_posted) AS end_date FROM %s WHERE date_posted IS NOT NULL",
		s.table)
	params := []any{}
	sql, params = appendLocationFilter(sql, params, f.Country, f.State)
	if f.Role != "" {
		params = append(params, f.Role)
		sql += fmt.Sprintf(" AND normalized_role = $%d", len(params))
	}
	sql += " GROUP BY normalized_role"

	rows, err := s.pool.Query(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("role end dates query: %w", err)
	}
	defer rows.Close()

	endDates := make(map[string]time.Time)
	for rows.Next() {
		var role *string
		var endDate *time.Time
		if err := rows.Scan(&role, &endDate); err != nil {
			return nil, fmt.Errorf("role end dates scan: %w", err)
		}
		if role == nil || *role == "" || endDate == nil {
			continue
		}
		endDates[*role] = *endDate
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("role end dates rows: %w", err)
	}
	return endDates, nil
}

// Metrics computes all aggregates for one role over [start, end] inclusive
// in a single pass. A window with no matching rows yields zero counts and
// nil averages, not an error.
func (s *Service) Metrics(ctx context.Context, role string, start, end time.Time, f Filter) (WindowMetrics, error) {
	sql := fmt.Sprintf(`SELECT COUNT(*) AS jobs_count,
 AVG(CASE WHEN min_amount IS NOT NULL AND max_amount IS NOT NULL THEN (min_amount + max_amount) / 2.0
      WHEN min_amount IS NOT NULL THEN min_amount
      WHEN max_amount IS NOT NULL THEN max_amount
      ELSE NULL END) AS avg_salary,
 AVG(CASE WHEN is_remote IS NULL THEN NULL WHEN is_remote THEN 1.0 ELSE 0.0 END) AS remote_share,
 AVG(role_confidence) AS avg_confidence,
 COUNT(*) FILTER (WHERE seniority = 'Junior') AS junior_count,
 COUNT(*) FILTER (WHERE seniority = 'Mid') AS mid_count,
 COUNT(*) FILTER (WHERE seniority = 'Senior') AS senior_count,
 COUNT(*) FILTER (WHERE seniority = 'Staff') AS staff_count,
 COUNT(*) FILTER (WHERE seniority = 'Principal') AS principal_count
 FROM %s WHERE normalized_role = $1 AND date_posted BETWEEN $2 AND $3`, s.table)
	params := []any{role, start, end}
	sql, params = appendLocationFilter(sql, params, f.Country, f.State)

	var (
		m         WindowMetrics
		jobsCount int64
		junior    int64
		mid       int64
		senior    int64
		staff     int64
		principal int64
	)
	err := s.pool.QueryRow(ctx, sql, params...).Scan(
		&jobsCount, &m.AvgSalary, &m.RemoteShare, &m.AvgConfidence,
		&junior, &mid, &senior, &staff, &principal,
	)
	if err != nil {
		return WindowMetrics{}, fmt.Errorf("metrics query: %w", err)
	}

	m.JobsCount = int(jobsCount)
	m.JuniorCount = int(junior)
	m.MidCount = int(mid)
	m.SeniorCount = int(senior)
	m.StaffCount = int(staff)
	m.PrincipalCount = int(principal)
	return m, nil
}

// LastUpdate returns the maximum post date across all rows matching the
// location filter, independent of any single role's end date.
func (s *Service) LastUpdate(ctx context.Context, f Filter) (*time.Time, error) {
	sql := fmt.Sprintf("SELECT MAX(date_posted) AS last_update FROM %s WHERE date_posted IS NOT NULL", s.table)
	params := []any{}
	sql, params = appendLocationFilter(sql, params, f.Country, f.State)

	var lastUpdate *time.Time
	if err := s.pool.QueryRow(ctx, sql, params...).Scan(&lastUpdate); err != nil {
		return nil, fmt.Errorf("last update query: %w", err)
	}
	return lastUpdate, nil
}
