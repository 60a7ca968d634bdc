package assembler

import "github.com/coffeeisafruit/jv-matcher/internal/domain"

// BeginnerReachThreshold is the reach(P) below which a candidate counts as a
// "beginner" for the purposes of the no_beginners anti-persona (§4.3 edge
// case (b) names the class but not the cutoff; chosen well below
// SleepingGiantReachThreshold so the two classifications don't collide).
const BeginnerReachThreshold = 250

// Excludes reports whether a's opt-outs (class-based anti_personas plus the
// supplemented manual_exclusions) rule out matching with b. The Scorer calls
// this in both directions: the pair is dropped entirely if either side
// excludes the other.
func Excludes(a, b FeatureBundle) bool {
	if b.Profile != nil {
		if _, ok := a.ManualExclusions[b.Profile.ID]; ok {
			return true
		}
	}
	if a.AntiPersonas.Has(domain.AntiPersonaNoBeginners) && isBeginner(b) {
		return true
	}
	if a.AntiPersonas.Has(domain.AntiPersonaNoServiceProviders) && b.Preferences.Has(domain.PreferenceServiceProvider) {
		return true
	}
	if a.AntiPersonas.Has(domain.AntiPersonaNoCompetitors) && isCompetitor(a, b) {
		return true
	}
	return false
}

func isBeginner(b FeatureBundle) bool {
	return b.Reach < BeginnerReachThreshold
}

func isCompetitor(a, b FeatureBundle) bool {
	return a.Niche != "" && a.Niche == b.Niche
}
