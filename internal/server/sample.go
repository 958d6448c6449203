package server

import (
	"fmt"
	"time"

	"github.com/mkamanzi/farepulse/internal/classify"
	"github.com/mkamanzi/farepulse/internal/collector"
	"github.com/mkamanzi/farepulse/internal/model"
)

// sampleRows is the built-in demo commentary: a week of plausible
// transport chatter across sources and languages, including one post
// the classifier flags for review.
var sampleRows = []struct {
	text    string
	source  model.Source
	daysAgo int
}{
	{"Rwanda transport fares are too high for daily commuters.", model.SourceNews, 6},
	{"RURA has done a great job regulating bus fares.", model.SourceNews, 6},
	{"Kigali bus service improved significantly this year.", model.SourceSocial, 5},
	{"Public transport in Rwanda needs more investment.", model.SourceNews, 5},
	{"Ubus uri mwiza cyane kuri iki gihe. Ndishimye.", model.SourceSocial, 4},
	{"Les tarifs des transports au Rwanda semblent équitables.", model.SourceNews, 4},
	{"Distance-based fare system is fair for all passengers.", model.SourceSurvey, 3},
	{"Long routes are very expensive for low-income people.", model.SourceSocial, 3},
	{"New buses on Kigali-Musanze route are comfortable.", model.SourceNews, 2},
	{"Transport operators are complaining about fuel costs.", model.SourceSurvey, 2},
	{"RURA should enforce distance-based fares strictly.", model.SourceSocial, 1},
	{"Tap-to-pay on Kigali buses is a great innovation.", model.SourceNews, 1},
	{"Heard the new tap cards secretly double your fare. Total scam!", model.SourceSocial, 0},
	{"Birahenze cyane! Ntibyiza na gato.", model.SourceSocial, 0},
}

// SampleRecords classifies the built-in demo rows through the real
// lexicon so demo output always matches what live collection would
// produce. The records carry sample IDs and are never persisted.
func SampleRecords() []model.ClassifiedRecord {
	lex := classify.New(classify.Config{})
	base := time.Now().UTC().Truncate(time.Hour)

	out := make([]model.ClassifiedRecord, 0, len(sampleRows))
	for i, row := range sampleRows {
		ts := base.AddDate(0, 0, -row.daysAgo).Add(-time.Duration(i%8) * time.Hour)

		rec := model.Record{
			ID:          fmt.Sprintf("sample-%03d", i+1),
			Source:      row.source,
			AuthorID:    "demo-user",
			RawText:     row.text,
			Language:    collector.DetectLanguage(row.text),
			Timestamp:   ts,
			CollectedAt: ts,
		}
		if row.source == model.SourceNews {
			rec.Title = row.text
			rec.URL = "https://example.com"
		}
		rec.Hash = rec.GenerateHash()

		verdict := lex.Classify(rec)
		verdict.ClassifiedAt = ts
		out = append(out, verdict)
	}
	return out
}
