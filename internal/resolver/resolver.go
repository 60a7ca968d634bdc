// Package resolver implements the entity-resolution cascade of spec §4.1:
// fusing directory rows and transcript-derived speaker records into a
// canonical Profile set via an email -> name+company -> fuzzy-name cascade.
package resolver

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/coffeeisafruit/jv-matcher/internal/apperr"
	"github.com/coffeeisafruit/jv-matcher/internal/domain"
	"github.com/coffeeisafruit/jv-matcher/internal/logger"
)

// FuzzyThreshold is the minimum similarity ratio for Tier 4 (§4.1).
const FuzzyThreshold = 0.80

// Result is everything the resolver produces from one batch of records.
type Result struct {
	Profiles    []*domain.Profile
	ReviewQueue []domain.ReviewQueueEntry
	History     []domain.FieldHistoryEntry
	Errors      []*apperr.StandardError
}

// Resolver fuses candidate records into canonical profiles.
type Resolver struct {
	now func() time.Time
	log logger.Logger
}

// New builds a Resolver. now is the caller-supplied wall clock (§6), so
// resolution stays deterministic under test.
func New(now func() time.Time, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Resolver{now: now, log: log}
}

type cluster struct {
	profile       *domain.Profile
	emailNorm     string
	nameNorm      string
	companyNorm   string
	hasCompany    bool
	lastMergedAt  time.Time
}

// Resolve runs the tiered matching cascade over records, in the order given,
// against an empty starting profile set. See ResolveAgainst for resolving
// against profiles already on file.
func (r *Resolver) Resolve(records []domain.CandidateRecord) *Result {
	return r.ResolveAgainst(nil, records)
}

// ResolveAgainst runs the cascade against a pre-existing profile set (loaded
// from storage) plus the batch's own newly-created profiles. Seeding from
// storage is what makes Tier-2 ambiguity (§4.1) reachable in practice: two
// already-persisted profiles sharing a normalized name and company is
// legacy dirty data, not something this pipeline would itself introduce,
// since a single pass never creates two clusters under the same key.
//
// Callers should supply records ordered oldest-observed-first for the
// "newer overwrites null, conflicts append to history" merge rule to line
// up with real-world recency.
func (r *Resolver) ResolveAgainst(existing []*domain.Profile, records []domain.CandidateRecord) *Result {
	res := &Result{}
	clusters := make([]*cluster, 0, len(existing)+len(records))
	for _, p := range existing {
		clusters = append(clusters, clusterFromProfile(p))
	}

	for _, rec := range records {
		if rec.Name == "" {
			res.Errors = append(res.Errors, apperr.New(
				apperr.CodeDataMissingField, "candidate record missing name", r.now(),
			).WithMetadata(map[string]interface{}{"source_id": rec.SourceID}))
			continue
		}
		if rec.ListSize < 0 || rec.SocialReach < 0 {
			res.Errors = append(res.Errors, apperr.New(
				apperr.CodeDataNegativeReach, "candidate record has negative reach", r.now(),
			).WithMetadata(map[string]interface{}{"source_id": rec.SourceID}))
			continue
		}

		nameNorm := NormalizeName(rec.Name)
		var emailNorm string
		if rec.Email != nil {
			emailNorm = NormalizeEmail(*rec.Email)
		}
		var companyNorm string
		hasCompany := rec.Company != nil && *rec.Company != ""
		if hasCompany {
			companyNorm = NormalizeCompany(*rec.Company)
		}

		if emailNorm != "" {
			if hit := findByEmail(clusters, emailNorm); hit != nil {
				r.mergeInto(hit, rec, res)
				continue
			}
		}

		if hasCompany {
			matches := findByNameAndCompany(clusters, nameNorm, companyNorm)
			if len(matches) > 1 {
				for _, m := range matches {
					res.ReviewQueue = append(res.ReviewQueue, domain.ReviewQueueEntry{
						ID:            uuid.NewString(),
						LeftRecordID:  m.profile.ID,
						RightRecordID: rec.SourceID,
						LeftName:      m.profile.DisplayName,
						RightName:     rec.Name,
						Similarity:    SimilarityRatio(nameNorm, m.nameNorm),
						Status:        domain.ReviewPending,
						CreatedAt:     r.now(),
					})
				}
				res.Errors = append(res.Errors, apperr.New(
					apperr.CodeResolutionAmbiguous,
					fmt.Sprintf("ambiguous tier-2 match for %q at %q", rec.Name, *rec.Company),
					r.now(),
				).WithMetadata(map[string]interface{}{"source_id": rec.SourceID}))
				continue
			}
			if len(matches) == 1 {
				r.mergeInto(matches[0], rec, res)
				continue
			}
			// Tier 3, company present on the incoming record but absent on
			// the candidate cluster: still "absent on either side".
			if hit := findByNameClusterHasNoCompany(clusters, nameNorm); hit != nil {
				r.mergeInto(hit, rec, res)
				continue
			}
		} else {
			if hit := findByNameNoCompany(clusters, nameNorm); hit != nil {
				r.mergeInto(hit, rec, res)
				continue
			}
		}

		if hit, sim := findByFuzzyName(clusters, nameNorm); hit != nil {
			res.ReviewQueue = append(res.ReviewQueue, domain.ReviewQueueEntry{
				ID:            uuid.NewString(),
				LeftRecordID:  hit.profile.ID,
				RightRecordID: rec.SourceID,
				LeftName:      hit.profile.DisplayName,
				RightName:     rec.Name,
				Similarity:    sim,
				Status:        domain.ReviewPending,
				CreatedAt:     r.now(),
			})
			res.Errors = append(res.Errors, apperr.New(
				apperr.CodeResolutionFuzzyStage,
				fmt.Sprintf("fuzzy match staged for review: %q ~ %q (%.2f)", rec.Name, hit.profile.DisplayName, sim),
				r.now(),
			).WithMetadata(map[string]interface{}{"source_id": rec.SourceID}))
			continue
		}

		c := &cluster{
			profile:      newProfile(rec, r.now()),
			emailNorm:    emailNorm,
			nameNorm:     nameNorm,
			companyNorm:  companyNorm,
			hasCompany:   hasCompany,
			lastMergedAt: rec.ObservedAt,
		}
		clusters = append(clusters, c)
	}

	res.Profiles = make([]*domain.Profile, 0, len(clusters))
	for _, c := range clusters {
		res.Profiles = append(res.Profiles, c.profile)
	}
	sort.Slice(res.Profiles, func(i, j int) bool { return res.Profiles[i].ID < res.Profiles[j].ID })
	return res
}

func findByEmail(clusters []*cluster, emailNorm string) *cluster {
	for _, c := range clusters {
		if c.emailNorm != "" && c.emailNorm == emailNorm {
			return c
		}
	}
	return nil
}

func findByNameAndCompany(clusters []*cluster, nameNorm, companyNorm string) []*cluster {
	var out []*cluster
	for _, c := range clusters {
		if c.hasCompany && c.nameNorm == nameNorm && c.companyNorm == companyNorm {
			out = append(out, c)
		}
	}
	return out
}

// findByNameNoCompany implements Tier 3 when the incoming record itself has
// no company: an exact normalized name match qualifies regardless of what
// the candidate cluster carries, since the incoming side already has no
// company value to conflict with.
func findByNameNoCompany(clusters []*cluster, nameNorm string) *cluster {
	for _, c := range clusters {
		if c.nameNorm == nameNorm {
			return c
		}
	}
	return nil
}

// findByNameClusterHasNoCompany implements Tier 3 the other direction: the
// incoming record has a company, so only clusters that themselves lack one
// still satisfy "company absent on either side".
func findByNameClusterHasNoCompany(clusters []*cluster, nameNorm string) *cluster {
	for _, c := range clusters {
		if c.nameNorm == nameNorm && !c.hasCompany {
			return c
		}
	}
	return nil
}

func findByFuzzyName(clusters []*cluster, nameNorm string) (*cluster, float64) {
	var best *cluster
	bestSim := 0.0
	for _, c := range clusters {
		sim := SimilarityRatio(nameNorm, c.nameNorm)
		if sim >= FuzzyThreshold && sim > bestSim {
			best, bestSim = c, sim
		}
	}
	return best, bestSim
}

func clusterFromProfile(p *domain.Profile) *cluster {
	c := &cluster{profile: p, nameNorm: NormalizeName(p.DisplayName)}
	if p.Email != nil && *p.Email != "" {
		c.emailNorm = NormalizeEmail(*p.Email)
	}
	if p.Company != nil && *p.Company != "" {
		c.hasCompany = true
		c.companyNorm = NormalizeCompany(*p.Company)
	}
	c.lastMergedAt = p.UpdatedAt
	return c
}

func newProfile(rec domain.CandidateRecord, now time.Time) *domain.Profile {
	return &domain.Profile{
		ID:           uuid.NewString(),
		DisplayName:  rec.Name,
		Email:        rec.Email,
		Company:      rec.Company,
		Website:      rec.Website,
		Niche:        rec.Niche,
		Audience:     rec.Audience,
		ListSize:     rec.ListSize,
		SocialReach:  rec.SocialReach,
		LastActiveAt: rec.LastActiveAt,
		Offering:     rec.Offering,
		Seeking:      rec.Seeking,
		WhatYouDo:    rec.WhatYouDo,
		TranscriptOnly: rec.FromTranscript,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// mergeInto applies §4.1's merge rule: newer non-null fields fill older
// null fields; conflicting non-null values are kept on the older (existing)
// record, with the newer value appended to the history log.
func (r *Resolver) mergeInto(c *cluster, rec domain.CandidateRecord, res *Result) {
	p := c.profile
	now := r.now()

	if rec.Email != nil && *rec.Email != "" {
		if p.Email == nil || *p.Email == "" {
			p.Email = rec.Email
		} else if *p.Email != *rec.Email {
			res.History = append(res.History, domain.FieldHistoryEntry{
				ProfileID: p.ID, Field: "email", OldValue: *p.Email, NewValue: *rec.Email, RecordedAt: now,
			})
		}
	}
	mergeStringPtrField(p, rec, res, now)

	if rec.Niche != "" {
		mergePlainString("niche", &p.Niche, rec.Niche, p.ID, res, now)
	}
	if rec.Audience != "" {
		mergePlainString("audience", &p.Audience, rec.Audience, p.ID, res, now)
	}
	if rec.Offering != "" {
		mergePlainString("offering", &p.Offering, rec.Offering, p.ID, res, now)
	}
	if rec.Seeking != "" {
		mergePlainString("seeking", &p.Seeking, rec.Seeking, p.ID, res, now)
	}
	if rec.WhatYouDo != "" {
		mergePlainString("what_you_do", &p.WhatYouDo, rec.WhatYouDo, p.ID, res, now)
	}
	if p.ListSize == 0 && rec.ListSize > 0 {
		p.ListSize = rec.ListSize
	}
	if p.SocialReach == 0 && rec.SocialReach > 0 {
		p.SocialReach = rec.SocialReach
	}
	if rec.LastActiveAt != nil && (p.LastActiveAt == nil || rec.LastActiveAt.After(*p.LastActiveAt)) {
		p.LastActiveAt = rec.LastActiveAt
	}
	if !rec.FromTranscript {
		p.TranscriptOnly = false
	}
	p.UpdatedAt = now
	c.lastMergedAt = now
}

func mergeStringPtrField(p *domain.Profile, rec domain.CandidateRecord, res *Result, now time.Time) {
	if rec.Company != nil && *rec.Company != "" {
		if p.Company == nil || *p.Company == "" {
			p.Company = rec.Company
		} else if *p.Company != *rec.Company {
			res.History = append(res.History, domain.FieldHistoryEntry{
				ProfileID: p.ID, Field: "company", OldValue: *p.Company, NewValue: *rec.Company, RecordedAt: now,
			})
		}
	}
	if rec.Website != nil && *rec.Website != "" {
		if p.Website == nil || *p.Website == "" {
			p.Website = rec.Website
		} else if *p.Website != *rec.Website {
			res.History = append(res.History, domain.FieldHistoryEntry{
				ProfileID: p.ID, Field: "website", OldValue: *p.Website, NewValue: *rec.Website, RecordedAt: now,
			})
		}
	}
}

func mergePlainString(field string, old *string, newVal string, profileID string, res *Result, now time.Time) {
	if *old == "" {
		*old = newVal
		return
	}
	if *old != newVal {
		res.History = append(res.History, domain.FieldHistoryEntry{
			ProfileID: profileID, Field: field, OldValue: *old, NewValue: newVal, RecordedAt: now,
		})
	}
}
