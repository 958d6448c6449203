package tui

import "github.com/mkamanzi/farepulse/internal/model"

// flagItem pairs an open review with the classified record it points at.
type flagItem struct {
	review model.FlagReview
	record model.ClassifiedRecord
}

// flagsLoadedMsg carries the review queue loaded from the store.
type flagsLoadedMsg struct {
	err   error
	items []flagItem
}

// resolvedMsg reports the outcome of one review decision.
type resolvedMsg struct {
	err      error
	recordID string
	status   model.ReviewStatus
}
