package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/repository"
)

type candidateRecordSource struct {
	db *sqlx.DB
}

// NewCandidateRecordSource grounds the raw ingestion feed the resolver
// consumes (§4.1) on a staging table: directory rows and transcript-derived
// speaker records land here before resolution picks them up.
func NewCandidateRecordSource(db *sqlx.DB) repository.CandidateRecordSource {
	return &candidateRecordSource{db: db}
}

type candidateRecordRow struct {
	SourceID       string     `db:"source_id"`
	Name           string     `db:"name"`
	Email          *string    `db:"email"`
	Company        *string    `db:"company"`
	Website        *string    `db:"website"`
	Niche          string     `db:"niche"`
	Audience       string     `db:"audience"`
	ListSize       int        `db:"list_size"`
	SocialReach    int        `db:"social_reach"`
	LastActiveAt   *time.Time `db:"last_active_at"`
	Offering       string     `db:"offering"`
	Seeking        string     `db:"seeking"`
	WhatYouDo      string     `db:"what_you_do"`
	FromTranscript bool       `db:"from_transcript"`
	ObservedAt     time.Time  `db:"observed_at"`
}

func (s *candidateRecordSource) Pending(ctx context.Context) ([]domain.CandidateRecord, error) {
	var rows []candidateRecordRow
	query := `
		SELECT source_id, name, email, company, website, niche, audience,
		       list_size, social_reach, last_active_at, offering, seeking,
		       what_you_do, from_transcript, observed_at
		FROM candidate_records
		WHERE resolved_at IS NULL
		ORDER BY observed_at ASC
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load pending candidate records: %w", err)
	}
	out := make([]domain.CandidateRecord, len(rows))
	for i, r := range rows {
		out[i] = domain.CandidateRecord{
			SourceID:       r.SourceID,
			Name:           r.Name,
			Email:          r.Email,
			Company:        r.Company,
			Website:        r.Website,
			Niche:          r.Niche,
			Audience:       r.Audience,
			ListSize:       r.ListSize,
			SocialReach:    r.SocialReach,
			LastActiveAt:   r.LastActiveAt,
			Offering:       r.Offering,
			Seeking:        r.Seeking,
			WhatYouDo:      r.WhatYouDo,
			FromTranscript: r.FromTranscript,
			ObservedAt:     r.ObservedAt,
		}
	}
	return out, nil
}

// MarkResolved stamps resolved_at on every drained record so the next
// Pending call never re-offers it to the resolver.
func (s *candidateRecordSource) MarkResolved(ctx context.Context, sourceIDs []string, resolvedAt time.Time) error {
	if len(sourceIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(
		`UPDATE candidate_records SET resolved_at = ? WHERE source_id IN (?)`,
		resolvedAt, sourceIDs,
	)
	if err != nil {
		return fmt.Errorf("build mark-resolved query: %w", err)
	}
	query = s.db.Rebind(query)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark candidate records resolved: %w", err)
	}
	return nil
}
