package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/repository"
)

type matchSuggestionRepository struct {
	db *sqlx.DB
}

// NewMatchSuggestionRepository grounds §7's requirement that a cycle's
// suggestion set roll back together on failure: SaveCycle runs inside a
// single transaction.
func NewMatchSuggestionRepository(db *sqlx.DB) repository.MatchSuggestionRepository {
	return &matchSuggestionRepository{db: db}
}

func (r *matchSuggestionRepository) SaveCycle(ctx context.Context, cycleID string, suggestions []domain.MatchSuggestion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin match suggestion tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_suggestions WHERE cycle_id = $1`, cycleID); err != nil {
		return fmt.Errorf("clear stale suggestions for cycle %s: %w", cycleID, err)
	}

	query := `
		INSERT INTO match_suggestions (
			id, target_profile_id, candidate_profile_id, score_ab, score_ba,
			harmonic_mean, scale_symmetry_score, trust_level, match_reason,
			status, rank, rank_tier, cycle_id, config_snapshot, expires_at, suggested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	for _, s := range suggestions {
		_, err := tx.ExecContext(ctx, query,
			s.ID, s.TargetProfileID, s.CandidateProfileID, s.ScoreAB, s.ScoreBA,
			s.HarmonicMean, s.ScaleSymmetryScore, s.TrustLevel, s.MatchReason,
			s.Status, s.Rank, s.RankTier, s.CycleID, []byte(s.ConfigSnapshot), s.ExpiresAt, s.SuggestedAt,
		)
		if err != nil {
			return fmt.Errorf("save suggestion %s: %w", s.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match suggestion tx: %w", err)
	}
	return nil
}

func (r *matchSuggestionRepository) LoadForProfile(ctx context.Context, profileID string) ([]domain.MatchSuggestion, error) {
	var suggestions []domain.MatchSuggestion
	query := `
		SELECT * FROM match_suggestions
		WHERE target_profile_id = $1
		ORDER BY rank ASC
	`
	if err := r.db.SelectContext(ctx, &suggestions, query, profileID); err != nil {
		return nil, fmt.Errorf("load suggestions for %s: %w", profileID, err)
	}
	return suggestions, nil
}
