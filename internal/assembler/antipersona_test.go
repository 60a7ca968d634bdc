package assembler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coffeeisafruit/jv-matcher/internal/assembler"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

func bundleWithReach(id string, reach int) assembler.FeatureBundle {
	return assembler.FeatureBundle{
		Profile: &domain.Profile{ID: id}, Reach: reach,
		Preferences: domain.NewPreferenceSet(domain.PreferencePeerBundle),
	}
}

func TestExcludes_NoBeginnersRejectsLowReachCandidate(t *testing.T) {
	a := bundleWithReach("A", 10000)
	a.AntiPersonas = domain.NewAntiPersonaSet(domain.AntiPersonaNoBeginners)
	b := bundleWithReach("B", 50)

	assert.True(t, assembler.Excludes(a, b))
}

func TestExcludes_NoBeginnersAllowsHighReachCandidate(t *testing.T) {
	a := bundleWithReach("A", 10000)
	a.AntiPersonas = domain.NewAntiPersonaSet(domain.AntiPersonaNoBeginners)
	b := bundleWithReach("B", 10000)

	assert.False(t, assembler.Excludes(a, b))
}

func TestExcludes_NoServiceProvidersRejectsServiceProviderCandidate(t *testing.T) {
	a := bundleWithReach("A", 10000)
	a.AntiPersonas = domain.NewAntiPersonaSet(domain.AntiPersonaNoServiceProviders)
	b := bundleWithReach("B", 10000)
	b.Preferences = domain.NewPreferenceSet(domain.PreferenceServiceProvider)

	assert.True(t, assembler.Excludes(a, b))
}

func TestExcludes_NoCompetitorsRejectsSameNiche(t *testing.T) {
	a := bundleWithReach("A", 10000)
	a.Niche = "health & wellness"
	a.AntiPersonas = domain.NewAntiPersonaSet(domain.AntiPersonaNoCompetitors)
	b := bundleWithReach("B", 10000)
	b.Niche = "health & wellness"

	assert.True(t, assembler.Excludes(a, b))
}

func TestExcludes_NoCompetitorsAllowsDifferentNiche(t *testing.T) {
	a := bundleWithReach("A", 10000)
	a.Niche = "health & wellness"
	a.AntiPersonas = domain.NewAntiPersonaSet(domain.AntiPersonaNoCompetitors)
	b := bundleWithReach("B", 10000)
	b.Niche = "finance"

	assert.False(t, assembler.Excludes(a, b))
}

func TestExcludes_ManualExclusionBlocksSpecificProfile(t *testing.T) {
	a := bundleWithReach("A", 10000)
	a.ManualExclusions = map[string]struct{}{"B": {}}
	b := bundleWithReach("B", 10000)

	assert.True(t, assembler.Excludes(a, b))
}

func TestExcludes_NoClassesConfiguredAllowsEverything(t *testing.T) {
	a := bundleWithReach("A", 10000)
	b := bundleWithReach("B", 10)

	assert.False(t, assembler.Excludes(a, b))
}
