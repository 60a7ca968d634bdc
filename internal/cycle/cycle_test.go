package cycle_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeeisafruit/jv-matcher/internal/config"
	"github.com/coffeeisafruit/jv-matcher/internal/cycle"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

type fakeProfiles struct{ profiles []*domain.Profile }

func (f *fakeProfiles) LoadAll(ctx context.Context) ([]*domain.Profile, error) { return f.profiles, nil }
func (f *fakeProfiles) LoadByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	return f.profiles, nil
}
func (f *fakeProfiles) Save(ctx context.Context, profiles []*domain.Profile) error { return nil }
func (f *fakeProfiles) SaveHistory(ctx context.Context, entries []domain.FieldHistoryEntry) error {
	return nil
}

type fakeIntakes struct{ history map[string][]domain.IntakeSubmission }

func (f *fakeIntakes) LoadHistory(ctx context.Context, ids []string) (map[string][]domain.IntakeSubmission, error) {
	return f.history, nil
}
func (f *fakeIntakes) Save(ctx context.Context, intake *domain.IntakeSubmission) error { return nil }

type fakeSuggestions struct{ saved []domain.MatchSuggestion }

func (f *fakeSuggestions) SaveCycle(ctx context.Context, cycleID string, s []domain.MatchSuggestion) error {
	f.saved = append(f.saved, s...)
	return nil
}
func (f *fakeSuggestions) LoadForProfile(ctx context.Context, profileID string) ([]domain.MatchSuggestion, error) {
	return nil, nil
}

type fakePopularity struct{ saved []domain.PopularityRow }

func (f *fakePopularity) SaveCycle(ctx context.Context, cycleID string, rows []domain.PopularityRow) error {
	f.saved = append(f.saved, rows...)
	return nil
}

func strptr(s string) *string { return &s }

func peerProfile(id, niche string, reach int, active time.Time) *domain.Profile {
	return &domain.Profile{
		ID: id, DisplayName: id, Niche: niche, Audience: "founders",
		ListSize: reach, SocialReach: 0, LastActiveAt: &active,
		Offering: "video editing services.", Seeking: "video editor.",
	}
}

func confirmedIntake(profileID, eventID string, confirmedAt time.Time) domain.IntakeSubmission {
	return domain.IntakeSubmission{
		ID: profileID + "-" + eventID, ProfileID: profileID, EventID: eventID,
		VerifiedOffers:  []string{"video editor"},
		VerifiedNeeds:   []string{"video editor"},
		MatchPreference: domain.NewPreferenceSet(domain.PreferencePeerBundle),
		ConfirmedAt:     &confirmedAt,
	}
}

func TestRunCycle_EmitsReciprocalPairAndPersists(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	profiles := []*domain.Profile{
		peerProfile("A", "health & wellness", 10000, now),
		peerProfile("B", "health & wellness", 9000, now),
	}
	history := map[string][]domain.IntakeSubmission{
		"A": {confirmedIntake("A", "evtA", now.Add(-time.Hour))},
		"B": {confirmedIntake("B", "evtB", now.Add(-time.Hour))},
	}

	suggestions := &fakeSuggestions{}
	popularity := &fakePopularity{}
	runner := cycle.NewRunner(
		&fakeProfiles{profiles: profiles},
		&fakeIntakes{history: history},
		suggestions,
		popularity,
		nil,
		func() time.Time { return now },
		nil, nil,
	)

	cfg := config.MatchingConfig{
		TopK: 20, PopularityCap: 5, ExpiryDays: 7,
		IntentFallbackThreshold: 0.30, SemanticMatchThreshold: 0.65,
	}
	report, err := runner.RunCycle(context.Background(), "cycle-1", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ProfilesScored)
	assert.Equal(t, 1, report.PairsConsidered)
	assert.Equal(t, 2, report.PairsEmitted)
	assert.Equal(t, 0, report.Orphans)

	require.Len(t, suggestions.saved, 2)
	for _, s := range suggestions.saved {
		assert.NotEqual(t, s.TargetProfileID, s.CandidateProfileID)
		assert.InDelta(t, 90.0, s.HarmonicMean, 1.0)
		assert.Equal(t, domain.TrustPlatinum, s.TrustLevel)
		assert.Equal(t, "cycle-1", s.CycleID)
		assert.NotEmpty(t, s.ConfigSnapshot)
	}
}

func TestRunCycle_CompetitorPreferencePenalizesNicheScore(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	profiles := []*domain.Profile{
		peerProfile("A", "health & wellness", 10000, now),
		peerProfile("B", "health & wellness", 9000, now),
	}
	referralIntake := func(profileID, eventID string, confirmedAt time.Time) domain.IntakeSubmission {
		i := confirmedIntake(profileID, eventID, confirmedAt)
		i.MatchPreference = domain.NewPreferenceSet(domain.PreferenceReferralUpstream)
		return i
	}
	history := map[string][]domain.IntakeSubmission{
		"A": {referralIntake("A", "evtA", now.Add(-time.Hour))},
		"B": {referralIntake("B", "evtB", now.Add(-time.Hour))},
	}

	suggestions := &fakeSuggestions{}
	runner := cycle.NewRunner(
		&fakeProfiles{profiles: profiles},
		&fakeIntakes{history: history},
		suggestions, &fakePopularity{}, nil,
		func() time.Time { return now }, nil, nil,
	)

	cfg := config.MatchingConfig{
		TopK: 20, PopularityCap: 5, ExpiryDays: 7,
		IntentFallbackThreshold: 0.30, SemanticMatchThreshold: 0.65,
	}
	_, err := runner.RunCycle(context.Background(), "cycle-competitor", cfg)
	require.NoError(t, err)

	require.Len(t, suggestions.saved, 2)
	for _, s := range suggestions.saved {
		assert.InDelta(t, 67.5, s.HarmonicMean, 3.0)
		assert.Contains(t, s.MatchReason, "Competitor")
	}
}

func TestRunCycle_ScaleAsymmetryPenalizesLopsidedReach(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	profiles := []*domain.Profile{
		peerProfile("A", "health & wellness", 100000, now),
		peerProfile("B", "health & wellness", 500, now),
	}
	history := map[string][]domain.IntakeSubmission{
		"A": {confirmedIntake("A", "evtA", now.Add(-time.Hour))},
		"B": {confirmedIntake("B", "evtB", now.Add(-time.Hour))},
	}

	suggestions := &fakeSuggestions{}
	runner := cycle.NewRunner(
		&fakeProfiles{profiles: profiles},
		&fakeIntakes{history: history},
		suggestions, &fakePopularity{}, nil,
		func() time.Time { return now }, nil, nil,
	)

	cfg := config.MatchingConfig{
		TopK: 20, PopularityCap: 5, ExpiryDays: 7,
		IntentFallbackThreshold: 0.30, SemanticMatchThreshold: 0.65,
	}
	_, err := runner.RunCycle(context.Background(), "cycle-scale", cfg)
	require.NoError(t, err)

	require.Len(t, suggestions.saved, 2)
	for _, s := range suggestions.saved {
		assert.InDelta(t, 77.5, s.HarmonicMean, 3.0)
	}
}

func TestRunCycle_LopsidedIntentPullsHarmonicMeanDown(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	profiles := []*domain.Profile{
		peerProfile("A", "health & wellness", 10000, now),
		peerProfile("B", "health & wellness", 9000, now),
	}
	// A needs what B offers, but B needs something A does not offer, so
	// Intent_AB=1 and Intent_BA=0 — the harmonic mean should punish the
	// asymmetry far harder than the arithmetic mean would.
	aIntake := confirmedIntake("A", "evtA", now.Add(-time.Hour))
	bIntake := domain.IntakeSubmission{
		ID: "B-evtB", ProfileID: "B", EventID: "evtB",
		VerifiedOffers:  []string{"video editor"},
		VerifiedNeeds:   []string{"legal counsel"},
		MatchPreference: domain.NewPreferenceSet(domain.PreferencePeerBundle),
		ConfirmedAt:     ptrTime(now.Add(-time.Hour)),
	}
	history := map[string][]domain.IntakeSubmission{
		"A": {aIntake},
		"B": {bIntake},
	}

	suggestions := &fakeSuggestions{}
	runner := cycle.NewRunner(
		&fakeProfiles{profiles: profiles},
		&fakeIntakes{history: history},
		suggestions, &fakePopularity{}, nil,
		func() time.Time { return now }, nil, nil,
	)

	cfg := config.MatchingConfig{
		TopK: 20, PopularityCap: 5, ExpiryDays: 7,
		IntentFallbackThreshold: 0.30, SemanticMatchThreshold: 0.65,
	}
	_, err := runner.RunCycle(context.Background(), "cycle-lopsided", cfg)
	require.NoError(t, err)
	require.Len(t, suggestions.saved, 2)

	var abIntent, baIntent float64
	for _, s := range suggestions.saved {
		if s.TargetProfileID == "A" {
			abIntent = s.HarmonicMean
		} else {
			baIntent = s.HarmonicMean
		}
	}
	assert.Equal(t, abIntent, baIntent, "both rows of a pair share one harmonic mean")
	// A perfectly reciprocal peer pair with these bundles scores HM=90
	// (TestRunCycle_EmitsReciprocalPairAndPersists); killing Intent_BA alone
	// must still pull the harmonic mean well below that ceiling.
	assert.Less(t, abIntent, 75.0, "harmonic mean must punish the asymmetric direction")
}

func TestRunCycle_MissingActivityAndReachUseFiniteDefaults(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	profiles := []*domain.Profile{
		{ID: "A", DisplayName: "A", Niche: "health & wellness", Offering: "video editing services.", Seeking: "video editor."},
		{ID: "B", DisplayName: "B", Niche: "health & wellness", Offering: "video editing services.", Seeking: "video editor."},
	}
	history := map[string][]domain.IntakeSubmission{
		"A": {confirmedIntake("A", "evtA", now.Add(-time.Hour))},
		"B": {confirmedIntake("B", "evtB", now.Add(-time.Hour))},
	}

	suggestions := &fakeSuggestions{}
	runner := cycle.NewRunner(
		&fakeProfiles{profiles: profiles},
		&fakeIntakes{history: history},
		suggestions, &fakePopularity{}, nil,
		func() time.Time { return now }, nil, nil,
	)

	cfg := config.MatchingConfig{
		TopK: 20, PopularityCap: 5, ExpiryDays: 7,
		IntentFallbackThreshold: 0.30, SemanticMatchThreshold: 0.65,
	}
	_, err := runner.RunCycle(context.Background(), "cycle-defaults", cfg)
	require.NoError(t, err)
	require.Len(t, suggestions.saved, 2)
	for _, s := range suggestions.saved {
		assert.False(t, math.IsNaN(s.HarmonicMean))
		assert.False(t, math.IsInf(s.HarmonicMean, 0))
		assert.GreaterOrEqual(t, s.HarmonicMean, 0.0)
		assert.LessOrEqual(t, s.HarmonicMean, 100.0)
	}
}

func TestRunCycle_PopularityCapLimitsTop3OccupancyAcrossTenTargets(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	// One breakout candidate "star" plus ten targets that would all rank
	// star in their Top-3; with the default cap of 5, only 5 keep it Gold.
	profiles := []*domain.Profile{peerProfile("star", "health & wellness", 10000, now)}
	history := map[string][]domain.IntakeSubmission{
		"star": {confirmedIntake("star", "evt-star", now.Add(-time.Hour))},
	}
	for i := 0; i < 10; i++ {
		id := strptr(string(rune('A' + i)))
		profiles = append(profiles, peerProfile(*id, "health & wellness", 9000-i*10, now))
		history[*id] = []domain.IntakeSubmission{confirmedIntake(*id, "evt-"+*id, now.Add(-time.Hour))}
	}

	suggestions := &fakeSuggestions{}
	popularity := &fakePopularity{}
	runner := cycle.NewRunner(
		&fakeProfiles{profiles: profiles},
		&fakeIntakes{history: history},
		suggestions, popularity, nil,
		func() time.Time { return now }, nil, nil,
	)

	cfg := config.MatchingConfig{
		TopK: 20, PopularityCap: 5, ExpiryDays: 7,
		IntentFallbackThreshold: 0.30, SemanticMatchThreshold: 0.65,
	}
	_, err := runner.RunCycle(context.Background(), "cycle-popularity", cfg)
	require.NoError(t, err)

	goldForStar := 0
	for _, s := range suggestions.saved {
		if s.CandidateProfileID == "star" && s.RankTier == domain.RankGold && s.Rank <= 3 {
			goldForStar++
		}
	}
	assert.LessOrEqual(t, goldForStar, 5)

	for _, row := range popularity.saved {
		if row.ProfileID == "star" {
			assert.LessOrEqual(t, row.Top3Appearances, 5)
		}
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestRunCycle_NoProfilesIsAnEmptyCycleNotAnError(t *testing.T) {
	runner := cycle.NewRunner(
		&fakeProfiles{}, &fakeIntakes{history: map[string][]domain.IntakeSubmission{}},
		&fakeSuggestions{}, &fakePopularity{}, nil,
		func() time.Time { return time.Now() }, nil, nil,
	)
	report, err := runner.RunCycle(context.Background(), "cycle-empty", config.MatchingConfig{
		TopK: 20, PopularityCap: 5, ExpiryDays: 7, IntentFallbackThreshold: 0.3, SemanticMatchThreshold: 0.65,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ProfilesScored)
	assert.Equal(t, 0, report.PairsEmitted)
}
