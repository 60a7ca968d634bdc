// Package assembler builds the per-profile feature bundle the scorer reads
// (§4.2): the latest verified intake (Platinum), profile fields (Gold), and
// inferred transcript signals (Bronze) are folded into one read-only view.
package assembler

import (
	"sort"
	"strings"
	"time"

	"github.com/coffeeisafruit/jv-matcher/internal/domain"
)

const platinumWindow = 30 * 24 * time.Hour

// FeatureBundle is the immutable, read-only view the Scorer consumes for one
// profile (§5: "the feature bundle table is constructed once per cycle and
// held immutable for the duration").
type FeatureBundle struct {
	Profile      *domain.Profile
	Offers       []string
	Needs        []string
	Preferences  domain.PreferenceSet
	AntiPersonas domain.AntiPersonaSet
	// ManualExclusions is the supplemented manual_exclusions field (SPEC_FULL
	// §"Connections/opt-outs as an anti-persona source"): profile ids this
	// profile always wants excluded, checked alongside AntiPersonas.
	ManualExclusions map[string]struct{}
	Niche            string
	Audience     string
	Reach        int
	LastActiveAt *time.Time
	Events       map[string]struct{}
	TrustSource  domain.TrustLevel
	Categories   map[string]struct{}
}

// Assemble builds one profile's FeatureBundle from its confirmed intake
// history (§4.2). intakeHistory need not be sorted; Assemble picks the
// latest confirmed intake itself and folds every attended event id into
// events(P).
func Assemble(p *domain.Profile, intakeHistory []domain.IntakeSubmission, now time.Time) FeatureBundle {
	latest := latestConfirmed(intakeHistory)

	b := FeatureBundle{
		Profile:      p,
		Niche:        normalizeField(p.Niche),
		Audience:     normalizeField(p.Audience),
		Reach:        p.Reach(),
		LastActiveAt: p.LastActiveAt,
		Events:       eventsAttended(intakeHistory),
		TrustSource:  TrustSource(p, latest, now),
	}
	b.Offers = offers(p, latest, now)
	b.Needs = needs(p, latest, now)
	b.Preferences = preferences(latest)
	b.AntiPersonas = antiPersonas(latest)
	b.ManualExclusions = manualExclusions(latest)
	b.Categories = categoriesFor(b.Offers, b.Needs, p.WhatYouDo, p.Niche)
	return b
}

func latestConfirmed(history []domain.IntakeSubmission) *domain.IntakeSubmission {
	var latest *domain.IntakeSubmission
	for i := range history {
		in := &history[i]
		if in.ConfirmedAt == nil {
			continue
		}
		if latest == nil || in.ConfirmedAt.After(*latest.ConfirmedAt) {
			latest = in
		}
	}
	return latest
}

// offers implements §4.2's offers(P): verified intake wins if confirmed
// within the Platinum window; otherwise the profile's free-text offering,
// split on sentence boundaries; otherwise empty. AI-suggested fields
// (Bronze) never reach this function — the boundary the Design Notes call
// out explicitly.
func offers(p *domain.Profile, latest *domain.IntakeSubmission, now time.Time) []string {
	if latest.IsPlatinumQualifying(now) && len(latest.VerifiedOffers) > 0 {
		return dedupNonEmpty(latest.VerifiedOffers)
	}
	return splitSentences(p.Offering)
}

// needs mirrors offers for verified_needs / the profile's seeking field.
func needs(p *domain.Profile, latest *domain.IntakeSubmission, now time.Time) []string {
	if latest.IsPlatinumQualifying(now) && len(latest.VerifiedNeeds) > 0 {
		return dedupNonEmpty(latest.VerifiedNeeds)
	}
	return splitSentences(p.Seeking)
}

// preferences implements §4.2: intake's match_preference set, or
// {Peer_Bundle} by default when empty or absent.
func preferences(latest *domain.IntakeSubmission) domain.PreferenceSet {
	if latest != nil && !latest.MatchPreference.IsEmpty() {
		return latest.MatchPreference
	}
	return domain.NewPreferenceSet(domain.PreferencePeerBundle)
}

// antiPersonas implements §4.2: intake's anti_personas set, or empty.
func antiPersonas(latest *domain.IntakeSubmission) domain.AntiPersonaSet {
	if latest != nil {
		return latest.AntiPersonas
	}
	return domain.NewAntiPersonaSet()
}

// manualExclusions implements the supplemented manual_exclusions field: a
// set of profile ids this profile always wants excluded from its matches,
// checked alongside AntiPersonas in the Scorer's exclusion step.
func manualExclusions(latest *domain.IntakeSubmission) map[string]struct{} {
	if latest == nil || len(latest.ManualExclusions) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(latest.ManualExclusions))
	for _, id := range latest.ManualExclusions {
		out[id] = struct{}{}
	}
	return out
}

// eventsAttended implements events(P): the set of event ids the profile
// has ever submitted an intake for, confirmed or not — attendance, not
// verification, is what's being recorded here.
func eventsAttended(history []domain.IntakeSubmission) map[string]struct{} {
	out := make(map[string]struct{}, len(history))
	for _, in := range history {
		if in.EventID != "" {
			out[in.EventID] = struct{}{}
		}
	}
	return out
}

// TrustSource implements §4.2's four-way trust_source(P):
//   - Platinum: confirmed intake within the last 30 days.
//   - Gold: profile fields are populated (niche/offering/seeking/what_you_do) but no
//     recent confirmed intake, and the profile isn't transcript-only.
//   - Bronze: only transcript-inferred fields (TranscriptOnly).
//   - Legacy: otherwise.
func TrustSource(p *domain.Profile, latest *domain.IntakeSubmission, now time.Time) domain.TrustLevel {
	if latest.IsPlatinumQualifying(now) {
		return domain.TrustPlatinum
	}
	if p != nil && p.TranscriptOnly {
		return domain.TrustBronze
	}
	if p != nil && profileFieldsPopulated(p) {
		return domain.TrustGold
	}
	return domain.TrustLegacy
}

func profileFieldsPopulated(p *domain.Profile) bool {
	return p.Niche != "" || p.Offering != "" || p.Seeking != "" || p.WhatYouDo != ""
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// splitSentences breaks free text on sentence-ending punctuation, trims and
// drops empties, the fallback path for offers()/needs() when no verified
// intake is available.
func splitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupNonEmpty(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SortedEvents returns a deterministic slice view of a bundle's event set,
// used by reason-string building and tests.
func SortedEvents(events map[string]struct{}) []string {
	out := make([]string, 0, len(events))
	for e := range events {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
