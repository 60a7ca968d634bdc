package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/repository"
)

type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository grounds load_profiles() / Save / SaveHistory (§6, §4.1) on sqlx.
func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) LoadAll(ctx context.Context) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	query := `SELECT * FROM profiles ORDER BY id`
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) LoadByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM profiles WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build profile lookup: %w", err)
	}
	query = r.db.Rebind(query)
	var profiles []*domain.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("load profiles by id: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) Save(ctx context.Context, profiles []*domain.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile save tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO profiles (
			id, display_name, email, company, website, niche, audience,
			list_size, social_reach, last_active_at, offering, seeking,
			what_you_do, transcript_only, created_at, updated_at
		)
		VALUES (
			:id, :display_name, :email, :company, :website, :niche, :audience,
			:list_size, :social_reach, :last_active_at, :offering, :seeking,
			:what_you_do, :transcript_only, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			company = EXCLUDED.company,
			website = EXCLUDED.website,
			niche = EXCLUDED.niche,
			audience = EXCLUDED.audience,
			list_size = EXCLUDED.list_size,
			social_reach = EXCLUDED.social_reach,
			last_active_at = EXCLUDED.last_active_at,
			offering = EXCLUDED.offering,
			seeking = EXCLUDED.seeking,
			what_you_do = EXCLUDED.what_you_do,
			transcript_only = EXCLUDED.transcript_only,
			updated_at = EXCLUDED.updated_at
	`
	for _, p := range profiles {
		if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
			return fmt.Errorf("save profile %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile save tx: %w", err)
	}
	return nil
}

func (r *profileRepository) SaveHistory(ctx context.Context, entries []domain.FieldHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin field history tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO profile_field_history (profile_id, field, old_value, new_value, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query, e.ProfileID, e.Field, e.OldValue, e.NewValue, e.RecordedAt); err != nil {
			return fmt.Errorf("save field history for %s.%s: %w", e.ProfileID, e.Field, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit field history tx: %w", err)
	}
	return nil
}
