package domain

// PopularityRow tracks fairness accounting for a single cycle (§3). It is
// disposable once the cycle closes and is owned exclusively by the
// Fairness Filter (single-writer, §5).
type PopularityRow struct {
	ProfileID         string `json:"profile_id" db:"profile_id"`
	MatchCycleID      string `json:"match_cycle_id" db:"match_cycle_id"`
	Top3Appearances   int    `json:"top_3_appearances" db:"top_3_appearances"`
}
