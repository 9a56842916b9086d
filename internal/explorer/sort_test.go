package explorer

import (
	"testing"
)

func TestNormalizeSort(t *testing.T) {
	cases := []struct {
		name     string
		legacy   string
		sortBy   string
		sortDir  string
		wantKey  SortKey
		wantDir  SortDir
	}{
		{"structured pair", "", "avg_salary", "asc", SortAvgSalary, SortAsc},
		{"structured defaults to desc", "", "remote_pct", "", SortRemotePct, SortDesc},
		{"structured wins over legacy", "role_asc", "jobs_delta_pct", "desc", SortJobsDeltaPct, SortDesc},
		{"legacy jobs_count_desc", "jobs_count_desc", "", "", SortJobsCount, SortDesc},
		{"legacy avg_salary_desc", "avg_salary_desc", "", "", SortAvgSalary, SortDesc},
		{"legacy role_asc", "role_asc", "", "", SortRole, SortAsc},
		{"legacy salary_delta_pct_desc", "salary_delta_pct_desc", "", "", SortSalaryDeltaPct, SortDesc},
		{"unknown legacy falls back", "bogus_desc", "", "", SortJobsCount, SortDesc},
		{"unknown structured falls back", "", "bogus", "asc", SortJobsCount, SortDesc},
		{"empty everything falls back", "", "", "", SortJobsCount, SortDesc},
		{"case insensitive", "", "AVG_SALARY", "ASC", SortAvgSalary, SortAsc},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, dir := NormalizeSort(tc.legacy, tc.sortBy, tc.sortDir)
			if key != tc.wantKey || dir != tc.wantDir {
				t.Errorf("NormalizeSort(%q, %q, %q) = (%q, %q), want (%q, %q)",
					tc.legacy, tc.sortBy, tc.sortDir, key, dir, tc.wantKey, tc.wantDir)
			}
		})
	}
}

func row(role string, salary *float64, jobs int) RoleMetricRow {
	return RoleMetricRow{Role: role, SalaryCurrent: salary, JobsCurrent: jobs}
}

func f(v float64) *float64 { return &v }

func roleOrder(rows []RoleMetricRow) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Role
	}
	return names
}

func assertOrder(t *testing.T, rows []RoleMetricRow, want ...string) {
	t.Helper()
	got := roleOrder(rows)
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortRowsNilAlwaysLast(t *testing.T) {
	build := func() []RoleMetricRow {
		return []RoleMetricRow{
			row("NoSalary", nil, 1),
			row("High", f(200000), 2),
			row("Low", f(50000), 3),
		}
	}

	rows := build()
	sortRows(rows, SortAvgSalary, SortDesc)
	assertOrder(t, rows, "High", "Low", "NoSalary")

	rows = build()
	sortRows(rows, SortAvgSalary, SortAsc)
	assertOrder(t, rows, "Low", "High", "NoSalary")
}

func TestSortRowsBaselineTieBreak(t *testing.T) {
	rows := []RoleMetricRow{
		row("Zeta", f(100), 5),
		row("Alpha", f(100), 5),
		row("Mid", f(100), 5),
	}
	sortRows(rows, SortAvgSalary, SortDesc)
	// Equal primary values keep the (role, country, state) baseline.
	assertOrder(t, rows, "Alpha", "Mid", "Zeta")
}

func TestSortRowsStringKey(t *testing.T) {
	rows := []RoleMetricRow{
		row("B", nil, 0),
		row("C", nil, 0),
		row("A", nil, 0),
	}
	sortRows(rows, SortRole, SortDesc)
	assertOrder(t, rows, "C", "B", "A")

	sortRows(rows, SortRole, SortAsc)
	assertOrder(t, rows, "A", "B", "C")
}

func TestSortRowsJobsCountDefault(t *testing.T) {
	rows := []RoleMetricRow{
		row("Few", nil, 2),
		row("Many", nil, 9),
		row("Some", nil, 5),
	}
	sortRows(rows, SortJobsCount, SortDesc)
	assertOrder(t, rows, "Many", "Some", "Few")
}
