package fairness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/fairness"
	"github.com/coffeeisafruit/jv-matcher/internal/scorer"
)

func scored(target, candidate string, hm float64, trust domain.TrustLevel) scorer.Scored {
	return scorer.Scored{
		TargetProfileID:    target,
		CandidateProfileID: candidate,
		ScoreAB:            hm,
		ScoreBA:            hm,
		HarmonicMean:       hm,
		Trust:              trust,
	}
}

func TestApply_CapDropsExcessTop3Occupancy(t *testing.T) {
	// "star" candidate C would land in the Top-3 for four different
	// targets; with a cap of 2 only the two highest-scoring targets keep
	// C flagged Gold, the rest are downgraded but still returned.
	var pairs []scorer.Scored
	targets := []string{"t1", "t2", "t3", "t4"}
	scores := []float64{0.95, 0.90, 0.85, 0.80}
	for i, tgt := range targets {
		pairs = append(pairs, scored(tgt, "star", scores[i], domain.TrustGold))
	}

	f := fairness.New(2)
	out := f.Apply(pairs)
	require.Len(t, out, 4)

	golds := 0
	for _, r := range out {
		if r.RankTier == domain.RankGold {
			golds++
		}
	}
	assert.Equal(t, 2, golds)

	byTarget := make(map[string]fairness.Ranked)
	for _, r := range out {
		byTarget[r.TargetProfileID] = r
	}
	assert.Equal(t, domain.RankGold, byTarget["t1"].RankTier)
	assert.Equal(t, domain.RankGold, byTarget["t2"].RankTier)
	assert.Equal(t, domain.RankSilver, byTarget["t3"].RankTier)
	assert.Equal(t, domain.RankSilver, byTarget["t4"].RankTier)
	assert.Equal(t, 1, byTarget["t3"].Rank)
}

func TestApply_RanksBeyondThreeAreUnaffectedByCap(t *testing.T) {
	pairs := []scorer.Scored{
		scored("t1", "a", 0.9, domain.TrustGold),
		scored("t1", "b", 0.8, domain.TrustGold),
		scored("t1", "c", 0.7, domain.TrustGold),
		scored("t1", "d", 0.6, domain.TrustGold),
	}
	out := fairness.New(1).Apply(pairs)
	require.Len(t, out, 4)
	for _, r := range out {
		if r.CandidateProfileID == "d" {
			assert.Equal(t, domain.RankSilver, r.RankTier)
			assert.Equal(t, 4, r.Rank)
		}
	}
}

func TestPopularityRows_OnlyCountsRetainedGoldOccupancy(t *testing.T) {
	pairs := []scorer.Scored{
		scored("t1", "star", 0.95, domain.TrustGold),
		scored("t2", "star", 0.90, domain.TrustGold),
		scored("t3", "star", 0.85, domain.TrustGold),
	}
	f := fairness.New(2)
	ranked := f.Apply(pairs)
	rows := fairness.PopularityRows("cycle-1", ranked)
	require.Len(t, rows, 1)
	assert.Equal(t, "star", rows[0].ProfileID)
	assert.Equal(t, 2, rows[0].Top3Appearances)
}
