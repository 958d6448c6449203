package collector

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkamanzi/farepulse/internal/model"
)

// Normalize settles the fields a raw fetch leaves open: it trims text and
// drops records with none, assigns IDs where the upstream offered no stable
// one, detects the language, stamps the collection time and derives the
// dedup hash. Source-provided values are kept.
func Normalize(records []model.Record, collectedAt time.Time) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		rec.RawText = strings.TrimSpace(rec.RawText)
		if !rec.IsClassifiable() {
			continue
		}

		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if rec.Language == "" {
			rec.Language = DetectLanguage(rec.RawText)
		}
		if rec.CollectedAt.IsZero() {
			rec.CollectedAt = collectedAt
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = collectedAt
		}
		rec.Hash = rec.GenerateHash()

		out = append(out, rec)
	}
	return out
}

// dedupe drops records whose hash was already seen, keeping first
// occurrence order. Returns the survivors and the number dropped.
func dedupe(records []model.Record, seen map[string]bool) ([]model.Record, int) {
	out := make([]model.Record, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if seen[rec.Hash] {
			dropped++
			continue
		}
		seen[rec.Hash] = true
		out = append(out, rec)
	}
	return out, dropped
}
