package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/repository"
)

type popularityRepository struct {
	db *sqlx.DB
}

// NewPopularityRepository grounds the Fairness Filter's disposable,
// cycle-scoped bookkeeping (§3, §5: single-writer).
func NewPopularityRepository(db *sqlx.DB) repository.PopularityRepository {
	return &popularityRepository{db: db}
}

func (r *popularityRepository) SaveCycle(ctx context.Context, cycleID string, rows []domain.PopularityRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin popularity tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM popularity_rows WHERE match_cycle_id = $1`, cycleID); err != nil {
		return fmt.Errorf("clear stale popularity rows for cycle %s: %w", cycleID, err)
	}

	query := `
		INSERT INTO popularity_rows (profile_id, match_cycle_id, top_3_appearances)
		VALUES ($1, $2, $3)
	`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, query, row.ProfileID, row.MatchCycleID, row.Top3Appearances); err != nil {
			return fmt.Errorf("save popularity row for %s: %w", row.ProfileID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit popularity tx: %w", err)
	}
	return nil
}
