// Package repository defines the storage-facing interfaces the pipeline
// stages depend on (§6: "Inputs the core consumes from collaborators").
// Concrete implementations live in internal/repository/postgres; every
// interface here is small enough that a test double is a few lines of Go.
package repository

import (
	"context"
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

// ProfileRepository is the canonical profile store: load_profiles() plus
// the writes the Resolver produces (new/merged profiles, field-history
// entries for conflicting merges).
type ProfileRepository interface {
	LoadAll(ctx context.Context) ([]*domain.Profile, error)
	LoadByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error)
	Save(ctx context.Context, profiles []*domain.Profile) error
	SaveHistory(ctx context.Context, entries []domain.FieldHistoryEntry) error
}

// IntakeRepository is load_intakes(profile_ids): the confirmed-intake
// history the Feature Assembler folds into offers/needs/preferences.
type IntakeRepository interface {
	LoadHistory(ctx context.Context, profileIDs []string) (map[string][]domain.IntakeSubmission, error)
	Save(ctx context.Context, intake *domain.IntakeSubmission) error
}

// MatchSuggestionRepository persists one cycle's ranked output
// transactionally: §7's storage-error handling requires the whole cycle's
// suggestion set to roll back together on failure.
type MatchSuggestionRepository interface {
	SaveCycle(ctx context.Context, cycleID string, suggestions []domain.MatchSuggestion) error
	LoadForProfile(ctx context.Context, profileID string) ([]domain.MatchSuggestion, error)
}

// PopularityRepository persists the cycle-scoped Popularity Rows the
// Fairness Filter produces. Rows are disposable once a cycle closes;
// implementations must never let a new cycle mutate a prior cycle's rows.
type PopularityRepository interface {
	SaveCycle(ctx context.Context, cycleID string, rows []domain.PopularityRow) error
}

// ReviewQueueRepository persists Tier-4 fuzzy resolver hits and
// tier-2 ambiguous-match errors staged for a human operator (§4.1, §7).
type ReviewQueueRepository interface {
	Save(ctx context.Context, entries []domain.ReviewQueueEntry) error
}

// CandidateRecordSource is the raw ingestion feed the Entity Resolver
// consumes (CSV rows, transcript-derived speaker records) — kept distinct
// from ProfileRepository since resolution is triggered by ingestion
// events, not by a cycle run (§6 lists only load_profiles/load_intakes as
// run_cycle's inputs).
type CandidateRecordSource interface {
	Pending(ctx context.Context) ([]domain.CandidateRecord, error)
	MarkResolved(ctx context.Context, sourceIDs []string, resolvedAt time.Time) error
}
