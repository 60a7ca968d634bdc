package scorer

import (
	"fmt"
	"strings"

	"github.com/coffeeisafruit/jv-matcher/internal/assembler"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

// Reason builds the human-readable match_reason string (§4.3): present
// clauses joined by ". ", in the order the spec lists them.
func Reason(a, b assembler.FeatureBundle, c Components) string {
	var clauses []string

	if c.IntentMatched && c.StrongestNeed != "" && c.StrongestOffer != "" {
		clauses = append(clauses, fmt.Sprintf("You need %s and they offer %s", c.StrongestNeed, c.StrongestOffer))
	}

	// Only these three niche_score tiers get a reason clause (§4.3); the
	// remaining tiers (different/unrelated/service_provider) are unremarkable
	// enough that the spec doesn't name a phrase for them.
	switch c.NicheTier {
	case NicheTierIdentical:
		clauses = append(clauses, "Strong business alignment")
	case NicheTierAdjacent:
		clauses = append(clauses, "Complementary referral fit")
	case NicheTierCompetitor:
		clauses = append(clauses, "Competitor — low recommendation")
	}

	switch {
	case c.Momentum > 0.8:
		clauses = append(clauses, "Very active recently")
	case c.Momentum < 0.3:
		clauses = append(clauses, "Less active")
	}

	if c.Context > 0 {
		n := c.SharedEvents
		unit := "event"
		if n != 1 {
			unit = "events"
		}
		clauses = append(clauses, fmt.Sprintf("Attended %d shared %s", n, unit))
	}

	if a.TrustSource == domain.TrustPlatinum {
		clauses = append(clauses, "✅ Verified intent")
	}

	if c.NicheTier == NicheTierAdjacent {
		if cat, ok := assembler.SharedCategory(a, b); ok {
			clauses = append(clauses, fmt.Sprintf("Cross-promotion opportunity in %s", strings.ReplaceAll(cat, "_", " ")))
		}
	}

	return strings.Join(clauses, ". ")
}
