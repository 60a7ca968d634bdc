package domain

import "time"

// IntakeSubmission is a verified per-event declaration of intent (§3).
// At most one intake exists per (ProfileID, EventID) pair; the latest
// confirmed intake wins when several exist across events.
type IntakeSubmission struct {
	ID                string            `json:"id" db:"id"`
	ProfileID         string            `json:"profile_id" db:"profile_id"`
	EventID           string            `json:"event_id" db:"event_id"`
	EventName         string            `json:"event_name" db:"event_name"`
	EventDate         time.Time         `json:"event_date" db:"event_date"`
	VerifiedOffers    []string          `json:"verified_offers" db:"verified_offers"`
	VerifiedNeeds     []string          `json:"verified_needs" db:"verified_needs"`
	MatchPreference   PreferenceSet     `json:"match_preference" db:"-"`
	AntiPersonas      AntiPersonaSet    `json:"anti_personas" db:"-"`
	ManualExclusions  []string          `json:"manual_exclusions" db:"manual_exclusions"`
	SuggestedOffers   []string          `json:"suggested_offers" db:"suggested_offers"`
	SuggestedNeeds    []string          `json:"suggested_needs" db:"suggested_needs"`
	ConfirmedAt       *time.Time        `json:"confirmed_at" db:"confirmed_at"`
}

// maxVerifiedItems caps verified_offers/verified_needs at two entries (§3).
const maxVerifiedItems = 2

// Clamp truncates VerifiedOffers/VerifiedNeeds to the two-item maximum the
// data model allows, defensively, in case a collaborator over-supplies.
func (i *IntakeSubmission) Clamp() {
	if len(i.VerifiedOffers) > maxVerifiedItems {
		i.VerifiedOffers = i.VerifiedOffers[:maxVerifiedItems]
	}
	if len(i.VerifiedNeeds) > maxVerifiedItems {
		i.VerifiedNeeds = i.VerifiedNeeds[:maxVerifiedItems]
	}
}

// IsPlatinumQualifying reports whether the intake counts as Platinum-grade
// evidence at scoring time: confirmed, and within 30 days of `now` (§3).
func (i *IntakeSubmission) IsPlatinumQualifying(now time.Time) bool {
	if i == nil || i.ConfirmedAt == nil {
		return false
	}
	return now.Sub(*i.ConfirmedAt) <= 30*24*time.Hour && !i.ConfirmedAt.After(now)
}
