// Package fairness implements the Fairness Filter (§4.4): the popularity
// cap that keeps any one candidate from crowding out other profiles'
// Top-3 lists, and the Gold/Silver/Bronze rank-tier labels attached after
// filtering.
package fairness

import (
	"sort"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/scorer"
)

// DefaultCap is the popularity cap applied when config doesn't override it
// (§4.4: "CAP is configurable", default 5).
const DefaultCap = 5

// Ranked is one Scored pair with its final, cap-aware rank and tier
// attached — the shape the cycle orchestrator persists as a MatchSuggestion.
type Ranked struct {
	scorer.Scored
	Rank         int
	RankTier     domain.RankTier
	DroppedByCap bool
}

// Filter enforces the popularity cap: no candidate may occupy a Top-3 slot
// (rank <= 3) for more than Cap distinct targets in one cycle. The counter
// is exclusively owned by Apply — the "single-writer" resource §5 calls
// out — so it must never be shared across concurrent cycle runs.
type Filter struct {
	Cap int
}

// New builds a Filter, defaulting Cap to DefaultCap when cap <= 0.
func New(cap int) *Filter {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Filter{Cap: cap}
}

// Apply implements §4.4's policy: iterate in order of decreasing final
// score (the same global order §5's merge-sort produces), tracking each
// target's own rank as it goes. A pair whose target-relative rank is <= 3
// only keeps its Top-3 status if the candidate's cycle-scoped counter
// hasn't hit Cap yet; once it has, the pair is retained in the output (at
// its original position — §4.4 doesn't shrink a target's list, it only
// revokes the Top-3 badge) but downgraded one tier so it no longer counts
// against the cap or reads as a featured match.
func (f *Filter) Apply(scored []scorer.Scored) []Ranked {
	ordered := make([]scorer.Scored, len(scored))
	copy(ordered, scored)
	sort.SliceStable(ordered, func(i, j int) bool { return scorer.Less(ordered[i], ordered[j]) })

	targetRank := make(map[string]int, len(ordered))
	rank := make([]int, len(ordered))
	for i, s := range ordered {
		targetRank[s.TargetProfileID]++
		rank[i] = targetRank[s.TargetProfileID]
	}

	top3 := make(map[string]int)
	out := make([]Ranked, len(ordered))
	for i, s := range ordered {
		tier := domain.RankTierFor(rank[i])
		dropped := false
		if rank[i] <= 3 {
			if top3[s.CandidateProfileID] >= f.Cap {
				tier = domain.RankSilver
				dropped = true
			} else {
				top3[s.CandidateProfileID]++
			}
		}
		out[i] = Ranked{Scored: s, Rank: rank[i], RankTier: tier, DroppedByCap: dropped}
	}
	return out
}

// PopularityRows aggregates the cycle's top3(candidate) counters into the
// persisted §3 Popularity Row shape — one row per candidate that actually
// consumed a Top-3 slot.
func PopularityRows(cycleID string, ranked []Ranked) []domain.PopularityRow {
	counts := make(map[string]int)
	for _, r := range ranked {
		if r.Rank <= 3 && r.RankTier == domain.RankGold {
			counts[r.CandidateProfileID]++
		}
	}
	rows := make([]domain.PopularityRow, 0, len(counts))
	for id, n := range counts {
		rows = append(rows, domain.PopularityRow{ProfileID: id, MatchCycleID: cycleID, Top3Appearances: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProfileID < rows[j].ProfileID })
	return rows
}
