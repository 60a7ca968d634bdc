// Package freshness classifies a profile's trust level from data
// provenance and recency (§4.5): a pure function with no I/O, so a cycle
// run can call it once per profile without touching storage again.
package freshness

import (
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

const window = 30 * 24 * time.Hour

// SleepingGiantReachThreshold is the reach above which an inactive,
// non-Platinum profile is worth flagging for re-engagement (§4.5).
const SleepingGiantReachThreshold = 5000

// Classify derives a profile's TrustLevel from its latest confirmed intake
// (nil if none) and its own activity timestamp, per §4.5:
//   - Platinum if a confirmed intake exists within the last 30 days.
//   - Bronze if last_active_at is within the last 30 days and there is no
//     recent confirmed intake.
//   - Legacy otherwise.
//
// Note this is a coarser three-way split than trust_source(P) in §4.2,
// which also recognizes Gold ("profile fields populated but no recent
// intake"); Classify implements the freshness-only 4.5 view, while
// internal/assembler.TrustSource implements the full four-way §4.2 rule
// that the scorer actually consumes.
func Classify(p *domain.Profile, latestConfirmed *domain.IntakeSubmission, now time.Time) domain.TrustLevel {
	if latestConfirmed.IsPlatinumQualifying(now) {
		return domain.TrustPlatinum
	}
	if p != nil && p.LastActiveAt != nil && !p.LastActiveAt.Before(now.Add(-window)) && !p.LastActiveAt.After(now) {
		return domain.TrustBronze
	}
	return domain.TrustLegacy
}

// IsSleepingGiant reports whether a profile has meaningful reach but has
// gone quiet: high reach, and not Platinum or actively Bronze (§4.5).
func IsSleepingGiant(p *domain.Profile, trust domain.TrustLevel) bool {
	if p == nil {
		return false
	}
	if trust == domain.TrustPlatinum || trust == domain.TrustBronze {
		return false
	}
	return p.Reach() > SleepingGiantReachThreshold
}
