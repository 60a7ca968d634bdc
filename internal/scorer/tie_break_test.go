package scorer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/scorer"
)

func TestHarmonic_ZeroEitherSideKillsTheMean(t *testing.T) {
	assert.Equal(t, 0.0, scorer.Harmonic(0, 0.9))
	assert.Equal(t, 0.0, scorer.Harmonic(0.9, 0))
	assert.Equal(t, 0.0, scorer.Harmonic(0, 0))
}

func TestHarmonic_EqualScoresReturnsThatScore(t *testing.T) {
	assert.InDelta(t, 0.6, scorer.Harmonic(0.6, 0.6), 0.0001)
}

func TestHarmonic_IsSymmetric(t *testing.T) {
	assert.Equal(t, scorer.Harmonic(0.3, 0.9), scorer.Harmonic(0.9, 0.3))
}

func TestHarmonic_NeverExceedsTwiceTheMinimum(t *testing.T) {
	sab, sba := 0.2, 0.8
	hm := scorer.Harmonic(sab, sba)
	assert.LessOrEqual(t, hm, 2*min(sab, sba))
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func scoredWith(target, candidate string, hm float64, trust domain.TrustLevel, active *time.Time) scorer.Scored {
	return scorer.Scored{
		TargetProfileID: target, CandidateProfileID: candidate,
		ScoreAB: hm, ScoreBA: hm, HarmonicMean: hm, Trust: trust,
		CandidateLastActive: active,
	}
}

func TestLess_OrdersByFinalScoreDescending(t *testing.T) {
	high := scoredWith("T", "high", 0.9, domain.TrustPlatinum, nil)
	low := scoredWith("T", "low", 0.1, domain.TrustPlatinum, nil)
	assert.True(t, scorer.Less(high, low))
	assert.False(t, scorer.Less(low, high))
}

func TestLess_TiesBrokenByHigherTrustFirst(t *testing.T) {
	// Equal finalScore (100*HM*trust.Weight()) via different HM/trust combos:
	// Platinum (weight 1.0) at HM=0.3 and Gold (weight 0.5) at HM=0.6 both give 30.
	platinum := scoredWith("T", "platinum", 0.3, domain.TrustPlatinum, nil)
	gold := scoredWith("T", "gold", 0.6, domain.TrustGold, nil)
	assert.True(t, scorer.Less(platinum, gold))
	assert.False(t, scorer.Less(gold, platinum))
}

func TestLess_TiesBrokenBySmallerReciprocalAsymmetry(t *testing.T) {
	symmetric := scorer.Scored{TargetProfileID: "T", CandidateProfileID: "sym", HarmonicMean: 0.6, Trust: domain.TrustPlatinum, ScoreAB: 0.6, ScoreBA: 0.6}
	asymmetric := scorer.Scored{TargetProfileID: "T", CandidateProfileID: "asym", HarmonicMean: 0.6, Trust: domain.TrustPlatinum, ScoreAB: 0.9, ScoreBA: 0.436}
	assert.True(t, scorer.Less(symmetric, asymmetric))
}

func TestLess_TiesBrokenByMoreRecentCandidateActivity(t *testing.T) {
	recent := now
	stale := now.AddDate(0, 0, -30)
	a := scoredWith("T", "recent", 0.5, domain.TrustPlatinum, &recent)
	b := scoredWith("T", "stale", 0.5, domain.TrustPlatinum, &stale)
	assert.True(t, scorer.Less(a, b))
}

func TestLess_FinalTieBreakIsLexicographicCandidateID(t *testing.T) {
	a := scoredWith("T", "aaa", 0.5, domain.TrustPlatinum, nil)
	b := scoredWith("T", "zzz", 0.5, domain.TrustPlatinum, nil)
	assert.True(t, scorer.Less(a, b))
	assert.False(t, scorer.Less(b, a))
}

func TestScoredWith_KeepsTargetAndCandidateIDsAsGiven(t *testing.T) {
	s := scoredWith("A", "A", 0.9, domain.TrustPlatinum, nil)
	assert.Equal(t, s.TargetProfileID, s.CandidateProfileID)
}
