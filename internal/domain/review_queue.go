package domain

import "time"

// ReviewStatus is the state of a staged resolver conflict (§4.1, and
// the review-queue supplement carried over from directory_service.py's
// create_match_suggestion/update_match_status pattern).
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewQueueEntry is a Tier-4 fuzzy resolver hit, or one candidate of an
// ambiguous tier-2 match, staged for a human operator (an external
// collaborator, §4.1's failure semantics) rather than auto-merged.
type ReviewQueueEntry struct {
	ID              string       `json:"id" db:"id"`
	LeftRecordID    string       `json:"left_record_id" db:"left_record_id"`
	RightRecordID   string       `json:"right_record_id" db:"right_record_id"`
	LeftName        string       `json:"left_name" db:"left_name"`
	RightName       string       `json:"right_name" db:"right_name"`
	Similarity      float64      `json:"similarity" db:"similarity"`
	Status          ReviewStatus `json:"status" db:"status"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}
