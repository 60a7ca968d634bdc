package scorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coffeeisafruit/jv-matcher/internal/assembler"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/scorer"
)

func TestReason_IntentMatchCitesStrongestPair(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{IntentMatched: true, StrongestNeed: "video editor", StrongestOffer: "video production"}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "You need video editor and they offer video production")
}

func TestReason_IdenticalNicheAddsStrongAlignmentClause(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{NicheTier: scorer.NicheTierIdentical}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "Strong business alignment")
}

func TestReason_CompetitorTierAddsLowRecommendationClause(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{NicheTier: scorer.NicheTierCompetitor}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "Competitor")
}

func TestReason_UnnamedNicheTiersAddNoClause(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{NicheTier: scorer.NicheTierDifferent, Momentum: 0.5}

	got := scorer.Reason(a, b, c)
	assert.Equal(t, "", got)
}

func TestReason_HighMomentumAddsActivityClause(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{Momentum: 0.95}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "Very active recently")
}

func TestReason_LowMomentumAddsLessActiveClause(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{Momentum: 0.1}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "Less active")
}

func TestReason_SharedEventsUsesSingularForOne(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{Context: 0.25, SharedEvents: 1}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "Attended 1 shared event")
}

func TestReason_SharedEventsUsesPluralForMultiple(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{Context: 0.5, SharedEvents: 2}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "Attended 2 shared events")
}

func TestReason_PlatinumTrustAddsVerifiedIntentClause(t *testing.T) {
	a := assembler.FeatureBundle{Profile: &domain.Profile{ID: "A"}, TrustSource: domain.TrustPlatinum}
	b := assembler.FeatureBundle{Profile: &domain.Profile{ID: "B"}}
	c := scorer.Components{}

	got := scorer.Reason(a, b, c)
	assert.Contains(t, got, "Verified intent")
}

func TestReason_SharedCategoryAddsCrossPromotionClause(t *testing.T) {
	a := assembler.Assemble(&domain.Profile{ID: "A", Offering: "health coaching for wellness"}, nil, now)
	b := assembler.Assemble(&domain.Profile{ID: "B", Seeking: "wellness partnerships"}, nil, now)

	got := scorer.Reason(a, b, scorer.Components{NicheTier: scorer.NicheTierAdjacent})
	assert.Contains(t, got, "Cross-promotion opportunity in health")
}

func TestReason_SharedCategoryOmittedWhenNicheTierIsNotAdjacent(t *testing.T) {
	a := assembler.Assemble(&domain.Profile{ID: "A", Offering: "health coaching for wellness"}, nil, now)
	b := assembler.Assemble(&domain.Profile{ID: "B", Seeking: "wellness partnerships"}, nil, now)

	got := scorer.Reason(a, b, scorer.Components{NicheTier: scorer.NicheTierIdentical})
	assert.NotContains(t, got, "Cross-promotion opportunity")
}
