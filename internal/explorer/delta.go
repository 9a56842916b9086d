package explorer

// Trend is the qualitative direction of a delta.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// ComputeDelta returns the absolute change, percentage change and trend
// between a current and previous window value. deltaPct is nil when the
// percentage is undefined (previous 0, current nonzero) and exactly 0 when
// both values are 0. Used identically for job counts, salary and remote
// share; previous is never negative.
func ComputeDelta(current, previous float64) (deltaAbs float64, deltaPct *float64, trend Trend) {
	deltaAbs = current - previous

	switch {
	case previous > 0:
		pct := deltaAbs / previous * 100
		deltaPct = &pct
	case previous == 0 && current == 0:
		zero := 0.0
		deltaPct = &zero
	}

	switch {
	case deltaAbs > 0:
		trend = TrendUp
	case deltaAbs < 0:
		trend = TrendDown
	default:
		trend = TrendFlat
	}
	return deltaAbs, deltaPct, trend
}
