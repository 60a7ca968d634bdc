package scorer

import (
	"math"
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/assembler"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

// NicheTier labels which bucket of the niche_score table (§4.3) a pair
// landed in, for the reason-string builder.
type NicheTier string

const (
	NicheTierIdentical   NicheTier = "identical"
	NicheTierDifferent   NicheTier = "different"
	NicheTierCompetitor  NicheTier = "competitor"
	NicheTierAdjacent    NicheTier = "adjacent"
	NicheTierUnrelated   NicheTier = "unrelated"
	NicheTierServiceOnly NicheTier = "service_provider"
)

// intent implements §4.3's Intent(A,B): does A need what B offers. Returns
// the {0,1} score plus the strongest matching (need, offer) pair for the
// reason string, per the "cite the strongest matching pair" instruction.
func (p *RulePolicy) intent(a, b assembler.FeatureBundle, sim SimilarityLookup) (score float64, matched bool, bestNeed, bestOffer string) {
	if len(a.Needs) == 0 || len(b.Offers) == 0 {
		return 0, false, "", ""
	}
	best := -1.0
	for _, need := range a.Needs {
		for _, offer := range b.Offers {
			s, ok := sim.Get(need, offer)
			if !ok {
				continue
			}
			if s > best {
				best, bestNeed, bestOffer = s, need, offer
			}
		}
	}
	if best >= p.IntentThreshold {
		return 1, true, bestNeed, bestOffer
	}
	return 0, false, "", ""
}

// synergy implements §4.3's Synergy(A,B) = niche_score * scale_modifier.
func (p *RulePolicy) synergy(a, b assembler.FeatureBundle, sim SimilarityLookup) (synergy, nicheScore float64, tier NicheTier) {
	nicheScore, tier = p.nicheScore(a, b, sim)
	scale := scaleModifier(a, b)
	return clamp01(nicheScore * scale), nicheScore, tier
}

// nicheScore implements the niche_score table (§4.3), taking the maximum
// across A's selected preferences when more than one is set.
func (p *RulePolicy) nicheScore(a, b assembler.FeatureBundle, sim SimilarityLookup) (float64, NicheTier) {
	rel := p.nicheRelationshipFor(a.Niche, b.Niche, sim)

	best := 0.0
	bestTier := NicheTierUnrelated
	for pref := range a.Preferences {
		var score float64
		var tier NicheTier
		switch pref {
		case domain.PreferencePeerBundle:
			if rel == nicheIdentical {
				score, tier = 1.0, NicheTierIdentical
			} else {
				score, tier = 0.2, NicheTierDifferent
			}
		case domain.PreferenceReferralUpstream, domain.PreferenceReferralDownstream:
			switch rel {
			case nicheIdentical:
				score, tier = 0.1, NicheTierCompetitor
			case nicheAdjacent:
				score, tier = 0.9, NicheTierAdjacent
			default:
				score, tier = 0.3, NicheTierUnrelated
			}
		case domain.PreferenceServiceProvider:
			score, tier = 0.7, NicheTierServiceOnly
		default:
			continue
		}
		if score > best {
			best, bestTier = score, tier
		}
	}
	if a.Preferences.IsEmpty() {
		if rel == nicheIdentical {
			return 1.0, NicheTierIdentical
		}
		return 0.2, NicheTierDifferent
	}
	return best, bestTier
}

type nicheRelation int

const (
	nicheUnrelated nicheRelation = iota
	nicheAdjacent
	nicheIdentical
)

// nicheRelationshipFor classifies niche(A) vs niche(B): identical if
// normalized-equal or semantic similarity >= NicheIdenticalThreshold,
// client-adjacent within [NicheAdjacentThreshold, NicheIdenticalThreshold),
// unrelated below that.
func (p *RulePolicy) nicheRelationshipFor(nicheA, nicheB string, sim SimilarityLookup) nicheRelation {
	if nicheA != "" && nicheA == nicheB {
		return nicheIdentical
	}
	if nicheA == "" || nicheB == "" {
		return nicheUnrelated
	}
	s, ok := sim.Get(nicheA, nicheB)
	if !ok {
		return nicheUnrelated
	}
	switch {
	case s >= p.NicheIdenticalThreshold:
		return nicheIdentical
	case s >= p.NicheAdjacentThreshold:
		return nicheAdjacent
	default:
		return nicheUnrelated
	}
}

// scaleModifier implements §4.3's scale_modifier over reach(A), reach(B).
func scaleModifier(a, b assembler.FeatureBundle) float64 {
	if a.Preferences.IsServiceProviderOnly() {
		return 1.0
	}
	if a.Reach == 0 || b.Reach == 0 {
		return 0.8
	}
	lo, hi := float64(a.Reach), float64(b.Reach)
	if lo > hi {
		lo, hi = hi, lo
	}
	r := lo / hi
	switch {
	case r > 0.5:
		return 1.0
	case r < 0.1:
		return 0.5
	default:
		return 0.5 + (r-0.1)*(0.5/0.4)
	}
}

// Momentum implements §4.3: exponential decay on B's activity, 0.5 if
// last_active_at is unknown.
func Momentum(b assembler.FeatureBundle, now time.Time) float64 {
	if b.LastActiveAt == nil {
		return 0.5
	}
	days := now.Sub(*b.LastActiveAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return clamp01(math.Exp(-0.02 * days))
}

// Context implements §4.3's shared-event bonus, returning both the clamped
// score and the raw shared-event count for the reason string.
func Context(a, b assembler.FeatureBundle) (float64, int) {
	shared := 0
	for e := range a.Events {
		if _, ok := b.Events[e]; ok {
			shared++
		}
	}
	return clamp01(0.25 * float64(shared)), shared
}
