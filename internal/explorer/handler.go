package explorer

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/AlexFilippov-it/scanrole-api/internal/httpapi"
	"github.com/AlexFilippov-it/scanrole-api/internal/location"
)

var allowedPeriods = []int{7, 30, 90}

const defaultPageSize = 25

var allowedPageSizes = map[int]bool{10: true, 25: true, 50: true, 100: true}

// Handler serves the explorer and meta endpoints. It depends on Datastore,
// not on the pool, so tests can run against a stub.
type Handler struct {
	store Datastore
	log   zerolog.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(store Datastore, logger zerolog.Logger) *Handler {
	return &Handler{store: store, log: logger.With().Str("component", "explorer").Logger()}
}

// RegisterPublic mounts the unauthenticated routes.
func (h *Handler) RegisterPublic(r *mux.Router) {
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/meta/periods", h.metaPeriods).Methods(http.MethodGet)
}

// Register mounts the scope-protected routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/meta/countries", h.metaCountries).Methods(http.MethodGet)
	r.HandleFunc("/meta/states", h.metaStates).Methods(http.MethodGet)
	r.HandleFunc("/meta/roles", h.metaRoles).Methods(http.MethodGet)
	r.HandleFunc("/role-explorer", h.roleExplorer).Methods(http.MethodGet)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) metaPeriods(w http.ResponseWriter, _ *http.Request) {
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": allowedPeriods})
}

func (h *Handler) metaRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.Roles(r.Context())
	if err != nil {
		h.serverError(w, err, "meta roles")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": roles})
}

// metaCountries renders the supported countries as ISO codes; canonical
// names stay internal.
func (h *Handler) metaCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.store.Countries(r.Context())
	if err != nil {
		h.serverError(w, err, "meta countries")
		return
	}

	codes := make([]string, 0, len(countries))
	for _, country := range countries {
		if code, ok := location.ISOCode(country); ok {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": codes})
}

func (h *Handler) metaStates(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("country")
	if len(raw) < 2 {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeValidation, "Invalid country")
		return
	}

	states, err := h.store.StatesByCountry(r.Context(), resolveCountry(raw))
	if err != nil {
		h.serverError(w, err, "meta states")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": states})
}

type explorerResponse struct {
	AsOfDate       *string         `json:"as_of_date"`
	Total          int             `json:"total"`
	Items          []RoleMetricRow `json:"items"`
	AppliedSortBy  string          `json:"applied_sort_by"`
	AppliedSortDir string          `json:"applied_sort_dir"`
}

// roleExplorer drives the pipeline: validate → resolve roles → per-role
// windows → aggregate current and previous → assemble → filter → sort →
// paginate.
func (h *Handler) roleExplorer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	periodDays, ok := parseIntParam(q.Get("period_days"), 30)
	if !ok || !validPeriod(periodDays) {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeValidation, "Invalid period_days")
		return
	}
	page, ok := parseIntParam(q.Get("page"), 1)
	if !ok || page < 1 {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeValidation, "Invalid page")
		return
	}
	pageSize, ok := parseIntParam(q.Get("page_size"), defaultPageSize)
	if !ok {
		httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeValidation, "Invalid page_size")
		return
	}
	if !allowedPageSizes[pageSize] {
		pageSize = defaultPageSize
	}

	filter := Filter{State: q.Get("state"), Role: q.Get("role")}
	if raw := q.Get("country"); raw != "" {
		filter.Country = resolveCountry(raw)
	}

	sortKey, sortDir := NormalizeSort(q.Get("sort"), q.Get("sort_by"), q.Get("sort_dir"))

	ctx := r.Context()
	endDates, err := h.store.RoleEndDates(ctx, filter)
	if err != nil {
		h.serverError(w, err, "role end dates")
		return
	}
	if len(endDates) == 0 {
		httpapi.WriteJSON(w, http.StatusOK, explorerResponse{
			AsOfDate:       nil,
			Total:          0,
			Items:          []RoleMetricRow{},
			AppliedSortBy:  string(sortKey),
			AppliedSortDir: string(sortDir),
		})
		return
	}

	roleNames := make([]string, 0, len(endDates))
	for name := range endDates {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)

	rows := make([]RoleMetricRow, 0, len(roleNames))
	for _, roleName := range roleNames {
		endDay := endDates[roleName]

		curStart := endDay.AddDate(0, 0, -(periodDays - 1))
		prevEnd := endDay.AddDate(0, 0, -periodDays)
		prevStart := endDay.AddDate(0, 0, -(periodDays*2 - 1))

		current, err := h.store.Metrics(ctx, roleName, curStart, endDay, filter)
		if err != nil {
			h.serverError(w, err, "current window metrics")
			return
		}
		previous, err := h.store.Metrics(ctx, roleName, prevStart, prevEnd, filter)
		if err != nil {
			h.serverError(w, err, "previous window metrics")
			return
		}

		rows = append(rows, assembleRow(roleName, filter, current, previous))
	}

	// "Other" is a catch-all bucket; hide it unless it was asked for by
	// name.
	if filter.Role != "Other" {
		kept := rows[:0]
		for _, row := range rows {
			if row.Role != "Other" {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	sortRows(rows, sortKey, sortDir)

	total := len(rows)
	offset := (page - 1) * pageSize
	items := []RoleMetricRow{}
	if offset < total {
		end := offset + pageSize
		if end > total {
			end = total
		}
		items = rows[offset:end]
	}

	lastUpdate, err := h.store.LastUpdate(ctx, filter)
	if err != nil {
		h.serverError(w, err, "last update")
		return
	}
	var asOf *string
	if lastUpdate != nil {
		formatted := lastUpdate.Format("2006-01-02")
		asOf = &formatted
	}

	httpapi.WriteJSON(w, http.StatusOK, explorerResponse{
		AsOfDate:       asOf,
		Total:          total,
		Items:          items,
		AppliedSortBy:  string(sortKey),
		AppliedSortDir: string(sortDir),
	})
}

// assembleRow folds the two windows into one response row. Deltas run over
// zero-defaulted values while the current/prev fields stay null when no
// data exists; remote shares become percentages before delta computation
// so the delta is in percentage points.
func assembleRow(roleName string, f Filter, current, previous WindowMetrics) RoleMetricRow {
	_, jobsPct, jobsTrend := ComputeDelta(float64(current.JobsCount), float64(previous.JobsCount))
	_, salaryPct, salaryTrend := ComputeDelta(orZero(current.AvgSalary), orZero(previous.AvgSalary))

	remoteCurrent := scaleShare(current.RemoteShare)
	remotePrev := scaleShare(previous.RemoteShare)
	remoteAbs, _, remoteTrend := ComputeDelta(orZero(remoteCurrent), orZero(remotePrev))

	return RoleMetricRow{
		Role:    roleName,
		Country: optional(f.Country),
		State:   optional(f.State),

		JobsCurrent:  current.JobsCount,
		JobsPrev:     previous.JobsCount,
		JobsDeltaPct: jobsPct,
		JobsTrend:    jobsTrend,

		SalaryCurrent:  current.AvgSalary,
		SalaryPrev:     previous.AvgSalary,
		SalaryDeltaPct: salaryPct,
		SalaryTrend:    salaryTrend,

		RemoteCurrent: remoteCurrent,
		RemotePrev:    remotePrev,
		RemoteDeltaPP: remoteAbs,
		RemoteTrend:   remoteTrend,

		ConfidenceCurrent: current.AvgConfidence,
		SeniorityCounts: map[string]int{
			"Junior":    current.JuniorCount,
			"Mid":       current.MidCount,
			"Senior":    current.SeniorCount,
			"Staff":     current.StaffCount,
			"Principal": current.PrincipalCount,
		},
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error, op string) {
	h.log.Error().Err(err).Str("op", op).Msg("request failed")
	httpapi.WriteError(w, http.StatusInternalServerError, httpapi.CodeServerError, "Internal server error")
}

// resolveCountry accepts both the external ISO encoding and country names,
// yielding the canonical display name used internally. Unresolvable input
// passes through so the filter simply matches nothing.
func resolveCountry(raw string) string {
	if country, ok := location.FromISO(raw); ok {
		return country
	}
	if country := location.NormalizeCountryToken(raw); country != "" {
		return country
	}
	return raw
}

func parseIntParam(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func validPeriod(days int) bool {
	for _, p := range allowedPeriods {
		if p == days {
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func scaleShare(share *float64) *float64 {
	if share == nil {
		return nil
	}
	pct := *share * 100
	return &pct
}
