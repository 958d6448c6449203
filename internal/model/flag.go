package model

import "time"

// ReviewStatus tracks the manual follow-up on a misinformation flag.
// The flag itself is a heuristic marker, not a falsehood determination;
// a human confirms or dismisses it here.
type ReviewStatus string

const (
	// ReviewPending means nobody has looked at the flag yet.
	ReviewPending ReviewStatus = "PENDING"
	// ReviewConfirmed means a reviewer agreed the record is suspect.
	ReviewConfirmed ReviewStatus = "CONFIRMED"
	// ReviewDismissed means a reviewer cleared the record.
	ReviewDismissed ReviewStatus = "DISMISSED"
)

// FlagReview is the review-queue entry for one flagged record.
type FlagReview struct {
	ReviewedAt time.Time
	RecordID   string
	Status     ReviewStatus
	Notes      string
}

// Open reports whether the review still needs attention.
func (f *FlagReview) Open() bool {
	return f.Status == ReviewPending
}
