package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/repository"
)

type reviewQueueRepository struct {
	db *sqlx.DB
}

// NewReviewQueueRepository grounds §4.1's Tier-4 fuzzy-match staging on sqlx.
func NewReviewQueueRepository(db *sqlx.DB) repository.ReviewQueueRepository {
	return &reviewQueueRepository{db: db}
}

func (r *reviewQueueRepository) Save(ctx context.Context, entries []domain.ReviewQueueEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review queue tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO review_queue_entries (
			id, left_record_id, right_record_id, left_name, right_name,
			similarity, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, query,
			e.ID, e.LeftRecordID, e.RightRecordID, e.LeftName, e.RightName,
			e.Similarity, e.Status, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("save review queue entry %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review queue tx: %w", err)
	}
	return nil
}
