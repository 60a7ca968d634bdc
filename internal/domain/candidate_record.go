package domain

import "time"

// CandidateRecord is a raw input record the resolver fuses into canonical
// Profiles (§4.1): a CSV directory row or a transcript-derived speaker
// record. Only Name is required.
type CandidateRecord struct {
	SourceID     string
	Name         string
	Email        *string
	Company      *string
	Website      *string
	Niche        string
	Audience     string
	ListSize     int
	SocialReach  int
	LastActiveAt *time.Time
	Offering     string
	Seeking      string
	WhatYouDo    string
	FromTranscript bool
	ObservedAt   time.Time
}

// FieldHistoryEntry records a conflicting non-null value that lost a merge,
// per §4.1: "conflicting non-null values are kept on the older record and
// the newer value is appended to a history log rather than silently
// overwriting."
type FieldHistoryEntry struct {
	ProfileID  string
	Field      string
	OldValue   string
	NewValue   string
	RecordedAt time.Time
}
