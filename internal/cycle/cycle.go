// Package cycle orchestrates one run of the pipeline (§5, §6): Feature
// Assembler, Scorer, and Fairness Filter, run sequentially, against
// profiles and intakes a collaborator already made available. Entity
// resolution is a separate, ingestion-triggered step (see
// internal/resolver) — §6 lists only load_profiles/load_intakes as
// run_cycle's inputs, not a raw candidate-record feed.
package cycle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/apperr"
	"github.com/coffeeisafruit/jv-matcher/internal/assembler"
	"github.com/coffeeisafruit/jv-matcher/internal/config"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/fairness"
	"github.com/coffeeisafruit/jv-matcher/internal/logger"
	"github.com/coffeeisafruit/jv-matcher/internal/metrics"
	"github.com/coffeeisafruit/jv-matcher/internal/oracle"
	"github.com/coffeeisafruit/jv-matcher/internal/repository"
	"github.com/coffeeisafruit/jv-matcher/internal/scorer"
)

// CycleReport summarizes one run_cycle invocation (§6). It carries no Errors
// field: per §7, invariant violations are always fatal to the cycle, so a
// CycleReport is only ever returned for a run that completed cleanly.
type CycleReport struct {
	CycleID            string
	ProfilesScored     int
	PairsConsidered    int
	PairsEmitted       int
	PairsDroppedByFair int
	Orphans            int
}

// Runner ties the storage collaborators, the oracle, and the scoring
// stages together into one runnable cycle.
type Runner struct {
	Profiles    repository.ProfileRepository
	Intakes     repository.IntakeRepository
	Suggestions repository.MatchSuggestionRepository
	Popularity  repository.PopularityRepository
	Oracle      oracle.Similarity
	Now         func() time.Time
	Log         logger.Logger
	Metrics     *metrics.Metrics
	Shards      int
}

// NewRunner wires a Runner from its collaborators, defaulting Now to
// time.Now and Shards to 4 when unset — the caller supplies a frozen clock
// in tests for determinism (§6, Testable Property 6).
func NewRunner(
	profiles repository.ProfileRepository,
	intakes repository.IntakeRepository,
	suggestions repository.MatchSuggestionRepository,
	popularity repository.PopularityRepository,
	sim oracle.Similarity,
	now func() time.Time,
	log logger.Logger,
	m *metrics.Metrics,
) *Runner {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if m == nil {
		m = metrics.NewNoOp()
	}
	return &Runner{
		Profiles: profiles, Intakes: intakes, Suggestions: suggestions, Popularity: popularity,
		Oracle: sim, Now: now, Log: log, Metrics: m, Shards: 4,
	}
}

// RunCycle implements §6's run_cycle(cycle_id, config) -> CycleReport.
func (r *Runner) RunCycle(ctx context.Context, cycleID string, cfg config.MatchingConfig) (*CycleReport, error) {
	report := &CycleReport{CycleID: cycleID}

	profiles, err := r.Profiles.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assembleStart := time.Now()
	bundles, ids, err := r.buildBundles(ctx, profiles)
	r.Metrics.ObserveStage("assemble", time.Since(assembleStart))
	if err != nil {
		return nil, err
	}
	report.ProfilesScored = len(bundles)
	r.Metrics.ProfilesScored.Add(float64(len(bundles)))

	scoreStart := time.Now()
	scored, err := r.scoreAll(ctx, bundles, cfg)
	r.Metrics.ObserveStage("score", time.Since(scoreStart))
	if err != nil {
		// Cancellation or an oracle/invariant failure: discard partial
		// Scorer output entirely rather than persist a partial cycle (§5).
		return nil, err
	}
	report.PairsConsidered = len(scored) / 2

	if err := verifyInvariants(scored, r.Now()); err != nil {
		return nil, err
	}

	fairStart := time.Now()
	kept := topKPerTarget(scored, cfg.TopK)
	ranked := fairness.New(cfg.PopularityCap).Apply(kept)
	r.Metrics.ObserveStage("fair", time.Since(fairStart))

	suggestions, dropped, orphans := buildSuggestions(cycleID, ranked, ids, cfg, r.Now())
	report.PairsEmitted = len(suggestions)
	report.PairsDroppedByFair = dropped
	report.Orphans = orphans
	r.Metrics.PairsEmitted.Add(float64(len(suggestions)))
	r.Metrics.PairsDroppedFair.Add(float64(dropped))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.Suggestions.SaveCycle(ctx, cycleID, suggestions); err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageWriteFailed, "save cycle suggestions", err, r.Now())
	}
	if err := r.Popularity.SaveCycle(ctx, cycleID, fairness.PopularityRows(cycleID, ranked)); err != nil {
		return nil, apperr.Wrap(apperr.CodeStorageWriteFailed, "save popularity rows", err, r.Now())
	}

	return report, nil
}

// RunForProfile implements §6's run_for_profile(profile_id): an on-demand
// refresh scoped to one profile's outgoing candidate list, sharing the
// same Assemble/Score/Fairness pipeline as a full cycle but against just
// that profile plus every other profile it could pair with.
func (r *Runner) RunForProfile(ctx context.Context, profileID string, cfg config.MatchingConfig) ([]domain.MatchSuggestion, error) {
	profiles, err := r.Profiles.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	bundles, ids, err := r.buildBundles(ctx, profiles)
	if err != nil {
		return nil, err
	}
	if _, ok := bundles[profileID]; !ok {
		return nil, apperr.New(apperr.CodeDataMissingField, "profile not found: "+profileID, r.Now())
	}

	scored, err := r.scoreAll(ctx, bundles, cfg)
	if err != nil {
		return nil, err
	}
	if err := verifyInvariants(scored, r.Now()); err != nil {
		return nil, err
	}

	var mine []scorer.Scored
	for _, s := range scored {
		if s.TargetProfileID == profileID {
			mine = append(mine, s)
		}
	}
	kept := topKPerTarget(mine, cfg.TopK)
	ranked := fairness.New(cfg.PopularityCap).Apply(kept)

	cycleID := "refresh-" + profileID
	suggestions, _, _ := buildSuggestions(cycleID, ranked, ids, cfg, r.Now())
	return suggestions, nil
}

func (r *Runner) buildBundles(ctx context.Context, profiles []*domain.Profile) (map[string]assembler.FeatureBundle, []string, error) {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	history, err := r.Intakes.LoadHistory(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load intake history: %w", err)
	}

	now := r.Now()
	bundles := make(map[string]assembler.FeatureBundle, len(profiles))
	for _, p := range profiles {
		bundles[p.ID] = assembler.Assemble(p, history[p.ID], now)
	}
	return bundles, ids, nil
}

// scoreAll picks the Intent threshold based on whether the oracle is live
// (semantic_match_threshold) or scoring is falling back to pure Jaccard
// (intent_fallback_threshold) — the two thresholds in §6's config are for
// different similarity scales, per policy.go's doc comment.
func (r *Runner) scoreAll(ctx context.Context, bundles map[string]assembler.FeatureBundle, cfg config.MatchingConfig) ([]scorer.Scored, error) {
	threshold := cfg.SemanticMatchThreshold
	sim := r.Oracle
	if sim == nil {
		threshold = cfg.IntentFallbackThreshold
		sim = oracle.NewJaccard(nil)
	}
	policy := scorer.NewRulePolicy(threshold)
	s := scorer.New(policy, sim, r.Shards, r.Metrics, r.Log)
	return s.ScoreAll(ctx, bundles, r.Now())
}

// verifyInvariants implements §7's fatal invariant-violation traps: these
// must never trip in a correct implementation, so tripping one aborts the
// whole cycle rather than skipping a record.
func verifyInvariants(scored []scorer.Scored, now time.Time) error {
	for _, s := range scored {
		if s.TargetProfileID == s.CandidateProfileID {
			return apperr.New(apperr.CodeInvariantSelfMatch, "self-pair emitted: "+s.TargetProfileID, now)
		}
		if s.HarmonicMean < 0 || s.HarmonicMean > 1 {
			return apperr.New(apperr.CodeInvariantHarmonicRange, "harmonic mean out of range", now)
		}
	}
	return nil
}

// topKPerTarget truncates each target's F-sorted candidate list to k,
// preserving the deterministic global order.
func topKPerTarget(scored []scorer.Scored, k int) []scorer.Scored {
	ordered := make([]scorer.Scored, len(scored))
	copy(ordered, scored)
	sort.SliceStable(ordered, func(i, j int) bool { return scorer.Less(ordered[i], ordered[j]) })

	counts := make(map[string]int, len(ordered))
	out := make([]scorer.Scored, 0, len(ordered))
	for _, s := range ordered {
		if k > 0 && counts[s.TargetProfileID] >= k {
			continue
		}
		counts[s.TargetProfileID]++
		out = append(out, s)
	}
	return out
}

// buildSuggestions converts the fairness-annotated internal [0,1]-scale
// results into persisted 0-100-scale MatchSuggestion rows, embedding the
// config snapshot for reproducibility (§6) and computing orphans (profiles
// present in the cycle with zero emitted suggestions as a target).
func buildSuggestions(cycleID string, ranked []fairness.Ranked, allTargets []string, cfg config.MatchingConfig, now time.Time) ([]domain.MatchSuggestion, int, int) {
	snapshot, _ := json.Marshal(cfg)
	expiry := now.AddDate(0, 0, cfg.ExpiryDays)

	haveTarget := make(map[string]bool, len(allTargets))
	dropped := 0
	out := make([]domain.MatchSuggestion, 0, len(ranked))
	for _, r := range ranked {
		if r.DroppedByCap {
			dropped++
		}
		haveTarget[r.TargetProfileID] = true
		out = append(out, domain.MatchSuggestion{
			ID:                 cycleID + ":" + r.TargetProfileID + ":" + r.CandidateProfileID,
			TargetProfileID:    r.TargetProfileID,
			CandidateProfileID: r.CandidateProfileID,
			ScoreAB:            r.ScoreAB * 100,
			ScoreBA:            r.ScoreBA * 100,
			HarmonicMean:       r.HarmonicMean * 100,
			ScaleSymmetryScore: r.ScaleSymmetryScore,
			TrustLevel:         r.Trust,
			MatchReason:        r.Reason,
			Status:             domain.StatusPending,
			Rank:               r.Rank,
			RankTier:           r.RankTier,
			CycleID:            cycleID,
			ConfigSnapshot:     snapshot,
			ExpiresAt:          expiry,
			SuggestedAt:        now,
		})
	}

	orphans := 0
	for _, id := range allTargets {
		if !haveTarget[id] {
			orphans++
		}
	}
	return out, dropped, orphans
}
