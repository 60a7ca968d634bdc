package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/repository"
)

type intakeRepository struct {
	db *sqlx.DB
}

// NewIntakeRepository grounds load_intakes(profile_ids) (§6) on sqlx.
func NewIntakeRepository(db *sqlx.DB) repository.IntakeRepository {
	return &intakeRepository{db: db}
}

type intakeRow struct {
	ID               string         `db:"id"`
	ProfileID        string         `db:"profile_id"`
	EventID          string         `db:"event_id"`
	EventName        string         `db:"event_name"`
	EventDate        *time.Time     `db:"event_date"`
	VerifiedOffers   pq.StringArray `db:"verified_offers"`
	VerifiedNeeds    pq.StringArray `db:"verified_needs"`
	MatchPreference  pq.StringArray `db:"match_preference"`
	AntiPersonas     pq.StringArray `db:"anti_personas"`
	ManualExclusions pq.StringArray `db:"manual_exclusions"`
	SuggestedOffers  pq.StringArray `db:"suggested_offers"`
	SuggestedNeeds   pq.StringArray `db:"suggested_needs"`
	ConfirmedAt      *time.Time     `db:"confirmed_at"`
}

func (r *intakeRepository) LoadHistory(ctx context.Context, profileIDs []string) (map[string][]domain.IntakeSubmission, error) {
	result := make(map[string][]domain.IntakeSubmission, len(profileIDs))
	if len(profileIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`
		SELECT id, profile_id, event_id, event_name, event_date,
		       verified_offers, verified_needs, match_preference, anti_personas,
		       manual_exclusions, suggested_offers, suggested_needs, confirmed_at
		FROM intake_submissions
		WHERE profile_id IN (?)
		ORDER BY confirmed_at ASC NULLS LAST
	`, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("build intake lookup: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []intakeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load intake history: %w", err)
	}
	for _, row := range rows {
		submission := domain.IntakeSubmission{
			ID:               row.ID,
			ProfileID:        row.ProfileID,
			EventID:          row.EventID,
			EventName:        row.EventName,
			VerifiedOffers:   []string(row.VerifiedOffers),
			VerifiedNeeds:    []string(row.VerifiedNeeds),
			ManualExclusions: []string(row.ManualExclusions),
			SuggestedOffers:  []string(row.SuggestedOffers),
			SuggestedNeeds:   []string(row.SuggestedNeeds),
		}
		submission.MatchPreference = preferenceSetFrom(row.MatchPreference)
		submission.AntiPersonas = antiPersonaSetFrom(row.AntiPersonas)
		submission.EventDate = timeValue(row.EventDate)
		submission.ConfirmedAt = row.ConfirmedAt
		result[row.ProfileID] = append(result[row.ProfileID], submission)
	}
	return result, nil
}

func (r *intakeRepository) Save(ctx context.Context, intake *domain.IntakeSubmission) error {
	query := `
		INSERT INTO intake_submissions (
			id, profile_id, event_id, event_name, event_date,
			verified_offers, verified_needs, match_preference, anti_personas,
			manual_exclusions, suggested_offers, suggested_needs, confirmed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (profile_id, event_id) DO UPDATE SET
			verified_offers = EXCLUDED.verified_offers,
			verified_needs = EXCLUDED.verified_needs,
			match_preference = EXCLUDED.match_preference,
			anti_personas = EXCLUDED.anti_personas,
			manual_exclusions = EXCLUDED.manual_exclusions,
			suggested_offers = EXCLUDED.suggested_offers,
			suggested_needs = EXCLUDED.suggested_needs,
			confirmed_at = EXCLUDED.confirmed_at
	`
	_, err := r.db.ExecContext(ctx, query,
		intake.ID, intake.ProfileID, intake.EventID, intake.EventName, intake.EventDate,
		pq.Array(intake.VerifiedOffers), pq.Array(intake.VerifiedNeeds),
		pq.Array(preferencesToStrings(intake.MatchPreference)),
		pq.Array(antiPersonasToStrings(intake.AntiPersonas)),
		pq.Array(intake.ManualExclusions), pq.Array(intake.SuggestedOffers), pq.Array(intake.SuggestedNeeds),
		intake.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("save intake %s/%s: %w", intake.ProfileID, intake.EventID, err)
	}
	return nil
}
