// Package explorer implements the role-explorer pipeline: per-role
// period-over-period metrics aggregation, delta computation, sorting and
// pagination, plus the meta endpoints derived from the same table.
package explorer

import (
	"context"
	"time"
)

// Filter restricts queries by canonical country name, raw state code and
// exact role. Empty fields mean "no restriction".
type Filter struct {
	Country string
	State   string
	Role    string
}

// WindowMetrics are the single-pass aggregates for one role over one date
// window. Nil means no row contributed to that average.
type WindowMetrics struct {
	JobsCount     int
	AvgSalary     *float64
	RemoteShare   *float64
	AvgConfidence *float64

	JuniorCount    int
	MidCount       int
	SeniorCount    int
	StaffCount     int
	PrincipalCount int
}

// RoleMetricRow is one role's assembled metrics as returned to the client.
// Built once per role per request, never persisted.
type RoleMetricRow struct {
	Role    string  `json:"role"`
	Country *string `json:"country"`
	State   *string `json:"state"`

	JobsCurrent  int      `json:"jobs_current"`
	JobsPrev     int      `json:"jobs_prev"`
	JobsDeltaPct *float64 `json:"jobs_delta_pct"`
	JobsTrend    Trend    `json:"jobs_trend"`

	SalaryCurrent  *float64 `json:"salary_current"`
	SalaryPrev     *float64 `json:"salary_prev"`
	SalaryDeltaPct *float64 `json:"salary_delta_pct"`
	SalaryTrend    Trend    `json:"salary_trend"`

	// Remote values are percentages (0-100), not raw shares.
	RemoteCurrent *float64 `json:"remote_current"`
	RemotePrev    *float64 `json:"remote_prev"`
	RemoteDeltaPP float64  `json:"remote_delta_pp"`
	RemoteTrend   Trend    `json:"remote_trend"`

	ConfidenceCurrent *float64       `json:"confidence_current"`
	SeniorityCounts   map[string]int `json:"seniority_counts"`
}

// Datastore is the read-only query surface the HTTP layer depends on.
// Implemented by Service against Postgres; stubbed in tests.
type Datastore interface {
	Roles(ctx context.Context) ([]string, error)
	Countries(ctx context.Context) ([]string, error)
	StatesByCountry(ctx context.Context, country string) ([]string, error)
	RoleEndDates(ctx context.Context, f Filter) (map[string]time.Time, error)
	Metrics(ctx context.Context, role string, start, end time.Time, f Filter) (WindowMetrics, error)
	LastUpdate(ctx context.Context, f Filter) (*time.Time, error)
}
