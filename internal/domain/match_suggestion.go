package domain

import (
	"encoding/json"
	"time"
)

// SuggestionStatus is the lifecycle state of a MatchSuggestion (§3).
// Transitions are monotone: pending -> viewed -> contacted -> (connected | dismissed).
type SuggestionStatus string

const (
	StatusPending    SuggestionStatus = "pending"
	StatusViewed     SuggestionStatus = "viewed"
	StatusContacted  SuggestionStatus = "contacted"
	StatusConnected  SuggestionStatus = "connected"
	StatusDismissed  SuggestionStatus = "dismissed"
)

var statusOrder = map[SuggestionStatus]int{
	StatusPending:   0,
	StatusViewed:    1,
	StatusContacted: 2,
	StatusConnected: 3,
	StatusDismissed: 3,
}

// CanTransitionTo enforces the monotone lifecycle: pending -> viewed ->
// contacted -> (connected | dismissed). Same-state transitions are no-ops
// and rejected to keep callers explicit about intent.
func (s SuggestionStatus) CanTransitionTo(next SuggestionStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	if s == StatusContacted && (next == StatusConnected || next == StatusDismissed) {
		return true
	}
	return to == from+1
}

// RankTier is the fairness-filter rank-tier label (§4.4).
type RankTier string

const (
	RankGold   RankTier = "Gold"
	RankSilver RankTier = "Silver"
	RankBronze RankTier = "Bronze"
)

// RankTierFor computes the Gold(1-3)/Silver(4-8)/Bronze(9+) label for a
// 1-indexed rank within a target's candidate list.
func RankTierFor(rank int) RankTier {
	switch {
	case rank <= 3:
		return RankGold
	case rank <= 8:
		return RankSilver
	default:
		return RankBronze
	}
}

// MatchSuggestion is the pipeline's output record (§3).
type MatchSuggestion struct {
	ID                 string           `json:"id" db:"id"`
	TargetProfileID    string           `json:"target_profile_id" db:"target_profile_id"`
	CandidateProfileID string           `json:"candidate_profile_id" db:"candidate_profile_id"`
	ScoreAB            float64          `json:"score_ab" db:"score_ab"`
	ScoreBA            float64          `json:"score_ba" db:"score_ba"`
	HarmonicMean       float64          `json:"harmonic_mean" db:"harmonic_mean"`
	ScaleSymmetryScore float64          `json:"scale_symmetry_score" db:"scale_symmetry_score"`
	TrustLevel         TrustLevel       `json:"trust_level" db:"trust_level"`
	MatchReason        string           `json:"match_reason" db:"match_reason"`
	Status             SuggestionStatus `json:"status" db:"status"`
	Rank               int              `json:"rank" db:"rank"`
	RankTier           RankTier         `json:"rank_tier" db:"rank_tier"`
	CycleID            string           `json:"cycle_id" db:"cycle_id"`
	ConfigSnapshot     json.RawMessage  `json:"config_snapshot" db:"config_snapshot"`
	ExpiresAt          time.Time        `json:"expires_at" db:"expires_at"`
	SuggestedAt        time.Time        `json:"suggested_at" db:"suggested_at"`
}
