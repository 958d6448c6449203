package model

import "time"

// SourceResult records what a single source contributed to a collection run.
type SourceResult struct {
	Source    Source
	Fetched   int
	Stored    int
	Duplicate int
	Err       string
}

// Failed reports whether the source produced an error instead of records.
func (r *SourceResult) Failed() bool {
	return r.Err != ""
}

// CollectionRun is the audit trail of one collector execution.
type CollectionRun struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Since      time.Time
	Results    []SourceResult
}

// TotalStored sums the newly stored records across all sources.
func (r *CollectionRun) TotalStored() int {
	total := 0
	for _, res := range r.Results {
		total += res.Stored
	}
	return total
}

// AllFailed reports whether every requested source failed, which is the
// condition for a non-zero exit from the run command.
func (r *CollectionRun) AllFailed() bool {
	if len(r.Results) == 0 {
		return true
	}
	for _, res := range r.Results {
		if !res.Failed() {
			return false
		}
	}
	return true
}
