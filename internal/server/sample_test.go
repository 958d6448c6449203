package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/classify"
	"github.com/mkamanzi/farepulse/internal/model"
)

func TestSampleRecords(t *testing.T) {
	records := SampleRecords()
	require.Len(t, records, len(sampleRows))

	seen := make(map[string]bool)
	bySource := make(map[model.Source]int)
	byLanguage := make(map[model.Language]int)
	flagged := 0

	for _, rec := range records {
		assert.False(t, seen[rec.Record.ID], "duplicate sample ID %s", rec.Record.ID)
		seen[rec.Record.ID] = true

		assert.NotEmpty(t, rec.Record.Hash)
		assert.Equal(t, classify.Version, rec.ModelVersion)
		assert.False(t, rec.Record.Timestamp.After(time.Now()), "sample %s is in the future", rec.Record.ID)
		assert.Equal(t, rec.Record.Timestamp, rec.ClassifiedAt)

		bySource[rec.Record.Source]++
		byLanguage[rec.Record.Language]++
		if rec.Misinfo {
			flagged++
		}
	}

	assert.Equal(t, 6, bySource[model.SourceNews])
	assert.Equal(t, 6, bySource[model.SourceSocial])
	assert.Equal(t, 2, bySource[model.SourceSurvey])

	// The pack covers all three supported languages
	assert.NotZero(t, byLanguage[model.LanguageKinyarwanda])
	assert.NotZero(t, byLanguage[model.LanguageFrench])
	assert.NotZero(t, byLanguage[model.LanguageEnglish])

	assert.Equal(t, 1, flagged, "exactly one sample should land in the review queue")
}

func TestSampleRecords_NewsRowsCarryLinks(t *testing.T) {
	for _, rec := range SampleRecords() {
		if rec.Record.Source != model.SourceNews {
			continue
		}
		assert.NotEmpty(t, rec.Record.Title)
		assert.NotEmpty(t, rec.Record.URL)
	}
}
