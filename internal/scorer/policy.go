// Package scorer implements the reciprocal directional scoring at the heart
// of the pipeline (§4.3): Intent/Synergy/Momentum/Context, the harmonic-mean
// combination, the trust modifier, and the sharded worker pool that scores
// every eligible ordered pair in a cycle (§5).
package scorer

import (
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/assembler"
	"github.com/coffeeisafruit/jv-matcher/internal/oracle"
)

// SimilarityLookup resolves a pre-batched oracle answer for a text pair. It
// exists so ScoringPolicy implementations stay pure functions with no I/O:
// the caller (Scorer) is responsible for collecting every comparison a
// shard needs, issuing one Similarity.SimilarityBatch call, and handing
// back a lookup — which is what lets the ≥32-pairs-per-call requirement
// (§5) live at the orchestration layer instead of inside scoring logic.
type SimilarityLookup interface {
	Get(a, b string) (float64, bool)
}

type mapLookup map[string]float64

func lookupKey(a, b string) string { return a + "\x00" + b }

func (m mapLookup) Get(a, b string) (float64, bool) {
	v, ok := m[lookupKey(a, b)]
	return v, ok
}

// Components is the diagnostic breakdown of one directional score, carried
// through to reason-string building and to the E1-E6 style test fixtures.
type Components struct {
	Intent   float64
	Synergy  float64
	Momentum float64
	Context  float64

	NicheScore     float64
	NicheTier      NicheTier
	ScaleModifier  float64
	IntentMatched  bool
	StrongestNeed  string
	StrongestOffer string
	SharedEvents   int
}

// DirectionalResult is one direction's (A->B) scoring output.
type DirectionalResult struct {
	Score      float64
	Components Components
}

// ScoringPolicy is the abstraction the Design Notes call for (§9: "the
// scorer's weights and the semantic oracle are abstractable behind a
// single scoring_policy interface so a later learned ranker can replace
// the rule-based one without touching the Fairness Filter or the data
// model"). RulePolicy below is the only implementation this pipeline ships,
// but Scorer depends only on this interface.
type ScoringPolicy interface {
	// RequiredComparisons lists every (text_a, text_b) pair this policy
	// needs resolved via the oracle to score A->B, so the caller can batch
	// them across an entire shard before calling Score.
	RequiredComparisons(a, b assembler.FeatureBundle) []oracle.Pair
	// Score computes the A->B directional result using a lookup already
	// populated with every pair RequiredComparisons asked for.
	Score(a, b assembler.FeatureBundle, sim SimilarityLookup, now time.Time) DirectionalResult
}

// RulePolicy is the §4.3 rule-based scoring policy.
type RulePolicy struct {
	// IntentThreshold is the semantic-match cutoff for Intent (§4.3): the
	// caller wires this to config's semantic_match_threshold (default 0.65)
	// when a real oracle is active, or intent_fallback_threshold (default
	// 0.30) when scoring falls back to pure Jaccard — the two thresholds
	// the spec gives are for two different similarity scales, not
	// interchangeable defaults.
	IntentThreshold float64
	// NicheIdenticalThreshold and NicheAdjacentThreshold bound the
	// niche-relationship buckets in the niche_score table (§4.3): >= the
	// former is "Identical", within [NicheAdjacentThreshold,
	// NicheIdenticalThreshold) is "client-adjacent", below is "unrelated".
	NicheIdenticalThreshold float64
	NicheAdjacentThreshold  float64
}

// NewRulePolicy builds a RulePolicy with the spec's documented default
// niche buckets (0.85 identical, 0.40 adjacent) and the given Intent
// threshold, chosen by the caller based on which oracle backend is live.
func NewRulePolicy(intentThreshold float64) *RulePolicy {
	return &RulePolicy{
		IntentThreshold:         intentThreshold,
		NicheIdenticalThreshold: 0.85,
		NicheAdjacentThreshold:  0.40,
	}
}

func (p *RulePolicy) RequiredComparisons(a, b assembler.FeatureBundle) []oracle.Pair {
	var pairs []oracle.Pair
	for _, need := range a.Needs {
		for _, offer := range b.Offers {
			pairs = append(pairs, oracle.Pair{A: need, B: offer})
		}
	}
	if a.Niche != "" && b.Niche != "" && a.Niche != b.Niche {
		pairs = append(pairs, oracle.Pair{A: a.Niche, B: b.Niche})
	}
	return pairs
}

func (p *RulePolicy) Score(a, b assembler.FeatureBundle, sim SimilarityLookup, now time.Time) DirectionalResult {
	intent, matched, need, offer := p.intent(a, b, sim)
	synergy, nicheScore, tier := p.synergy(a, b, sim)
	momentum := Momentum(b, now)
	ctx, shared := Context(a, b)
	scale := scaleModifier(a, b)

	s := 0.45*intent + 0.25*synergy + 0.20*momentum + 0.10*ctx
	return DirectionalResult{
		Score: clamp01(s),
		Components: Components{
			Intent: intent, Synergy: synergy, Momentum: momentum, Context: ctx,
			NicheScore: nicheScore, NicheTier: tier, ScaleModifier: scale,
			IntentMatched: matched, StrongestNeed: need, StrongestOffer: offer,
			SharedEvents: shared,
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
