package scorer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/assembler"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/logger"
	"github.com/coffeeisafruit/jv-matcher/internal/metrics"
	"github.com/coffeeisafruit/jv-matcher/internal/oracle"
)

// Scorer runs the §4.3 pairwise scoring stage: for every eligible unordered
// pair {A,B} it computes both directional scores, combines them, and emits
// one Scored row per direction (target=A candidate=B, and target=B
// candidate=A).
type Scorer struct {
	Policy  ScoringPolicy
	Oracle  oracle.Similarity
	Shards  int
	Metrics *metrics.Metrics
	Log     logger.Logger
}

// New builds a Scorer. shards <= 0 defaults to 1 (no parallelism, useful in
// tests for deterministic ordering without depending on goroutine timing).
func New(policy ScoringPolicy, sim oracle.Similarity, shards int, m *metrics.Metrics, log logger.Logger) *Scorer {
	if shards <= 0 {
		shards = 1
	}
	if m == nil {
		m = metrics.NewNoOp()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Scorer{Policy: policy, Oracle: sim, Shards: shards, Metrics: m, Log: log}
}

// ScoreAll scores every eligible pair among bundles (§4.3, §5). Profiles are
// sharded by target id across Shards workers; each worker reads the shared,
// immutable bundle map and writes to its own buffer, merged append-only
// once every worker finishes (§5: "writes ... go to per-shard buffers and
// are merged append-only").
func (s *Scorer) ScoreAll(ctx context.Context, bundles map[string]assembler.FeatureBundle, now time.Time) ([]Scored, error) {
	ids := make([]string, 0, len(bundles))
	for id := range bundles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	shardBuckets := make([][]string, s.Shards)
	for i, id := range ids {
		shardBuckets[i%s.Shards] = append(shardBuckets[i%s.Shards], id)
	}

	results := make([][]Scored, s.Shards)
	errs := make([]error, s.Shards)
	var wg sync.WaitGroup
	for shardIdx, targets := range shardBuckets {
		if len(targets) == 0 {
			continue
		}
		wg.Add(1)
		go func(shardIdx int, targets []string) {
			defer wg.Done()
			out, err := s.scoreShard(ctx, targets, ids, bundles, now)
			results[shardIdx] = out
			errs[shardIdx] = err
		}(shardIdx, targets)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var all []Scored
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// scoreShard scores every ordered pair whose target lies in this shard.
// Pairs are only visited once per unordered {target,other}: the shard that
// owns the lower-sorted id of the pair computes both directions and emits
// two Scored rows, so peer shards never race on the same pair.
func (s *Scorer) scoreShard(ctx context.Context, targets []string, allIDs []string, bundles map[string]assembler.FeatureBundle, now time.Time) ([]Scored, error) {
	targetSet := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		targetSet[t] = struct{}{}
	}

	type pairKey struct{ a, b string }
	var toScore []pairKey
	for _, a := range allIDs {
		bundleA := bundles[a]
		for _, b := range allIDs {
			if a >= b {
				continue
			}
			_, aOwnsPair := targetSet[a]
			if !aOwnsPair {
				continue
			}
			bundleB := bundles[b]
			if excludedByAntiPersona(bundleA, bundleB) {
				continue
			}
			toScore = append(toScore, pairKey{a, b})
		}
	}

	if len(toScore) == 0 {
		return nil, nil
	}

	var reqs []oracle.Pair
	for _, pk := range toScore {
		bundleA, bundleB := bundles[pk.a], bundles[pk.b]
		reqs = append(reqs, s.Policy.RequiredComparisons(bundleA, bundleB)...)
		reqs = append(reqs, s.Policy.RequiredComparisons(bundleB, bundleA)...)
	}
	lookup, err := s.resolveBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}

	out := make([]Scored, 0, len(toScore)*2)
	for _, pk := range toScore {
		bundleA, bundleB := bundles[pk.a], bundles[pk.b]
		resAB := s.Policy.Score(bundleA, bundleB, lookup, now)
		resBA := s.Policy.Score(bundleB, bundleA, lookup, now)

		hm := Harmonic(resAB.Score, resBA.Score)
		trust := domain.MinTrust(bundleA.TrustSource, bundleB.TrustSource)

		out = append(out,
			Scored{
				TargetProfileID: pk.a, CandidateProfileID: pk.b,
				ScoreAB: resAB.Score, ScoreBA: resBA.Score, HarmonicMean: hm,
				ScaleSymmetryScore:  resAB.Components.ScaleModifier,
				Trust:               trust,
				Reason:              Reason(bundleA, bundleB, resAB.Components),
				CandidateLastActive: bundleB.LastActiveAt,
			},
			Scored{
				TargetProfileID: pk.b, CandidateProfileID: pk.a,
				ScoreAB: resBA.Score, ScoreBA: resAB.Score, HarmonicMean: hm,
				ScaleSymmetryScore:  resBA.Components.ScaleModifier,
				Trust:               trust,
				Reason:              Reason(bundleB, bundleA, resBA.Components),
				CandidateLastActive: bundleA.LastActiveAt,
			},
		)
		s.Metrics.PairsConsidered.Add(2)
	}
	return out, nil
}

// resolveBatch dedups requests and issues every unique pair in a single
// SimilarityBatch call (§5), returning a lookup keyed by the exact (a, b)
// text pair.
func (s *Scorer) resolveBatch(ctx context.Context, reqs []oracle.Pair) (SimilarityLookup, error) {
	seen := make(map[string]oracle.Pair)
	for _, r := range reqs {
		seen[lookupKey(r.A, r.B)] = r
	}
	if len(seen) == 0 {
		return mapLookup{}, nil
	}

	unique := make([]oracle.Pair, 0, len(seen))
	for _, p := range seen {
		unique = append(unique, p)
	}

	scores, err := s.Oracle.SimilarityBatch(ctx, unique)
	if err != nil {
		return nil, err
	}

	out := make(mapLookup, len(unique))
	for i, p := range unique {
		out[lookupKey(p.A, p.B)] = scores[i]
	}
	return out, nil
}

// excludedByAntiPersona implements §4.3(b): either party in the other's
// anti-persona set excludes the pair entirely, in both directions.
func excludedByAntiPersona(a, b assembler.FeatureBundle) bool {
	return assembler.Excludes(a, b) || assembler.Excludes(b, a)
}
