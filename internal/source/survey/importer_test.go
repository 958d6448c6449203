package survey

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImporter_Fetch(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "q3.csv",
		"respondent_id,submitted_at,route,comment,language\n"+
			"r-101,2025-08-12 08:30:00,Nyabugogo-Remera,Fares doubled with no warning,en\n"+
			"r-102,2025-08-13,Kigali-Musanze,Les tarifs semblent équitables,fr\n"+
			"r-103,2025-08-01,Downtown loop,Too old to count,en\n"+
			"r-104,2025-08-12,City center,,en\n")

	importer := NewImporter(Config{Paths: []string{filepath.Join(dir, "*.csv")}})
	assert.Equal(t, model.SourceSurvey, importer.Source())

	since := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	records, err := importer.Fetch(context.Background(), since)
	require.NoError(t, err)

	// Two usable rows: the stale row and the empty comment are dropped.
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, model.SourceSurvey, first.Source)
	assert.Equal(t, "r-101", first.AuthorID)
	assert.Equal(t, "Fares doubled with no warning", first.RawText)
	assert.Equal(t, model.LanguageEnglish, first.Language)
	assert.WithinDuration(t, time.Date(2025, 8, 12, 8, 30, 0, 0, time.UTC), first.Timestamp, time.Second)

	second := records[1]
	assert.Equal(t, "Les tarifs semblent équitables", second.RawText)
	assert.Equal(t, model.LanguageFrench, second.Language)
}

func TestImporter_Fetch_HeaderVariants(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "alt.csv",
		"Date,Participant,Feedback\n"+
			"2025-08-12,p9,Buses run on time now\n")

	importer := NewImporter(Config{Paths: []string{filepath.Join(dir, "alt.csv")}})
	records, err := importer.Fetch(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "p9", records[0].AuthorID)
	assert.Equal(t, "Buses run on time now", records[0].RawText)
}

func TestImporter_Fetch_UndatedRowsLandAtImportTime(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "undated.csv",
		"comment\n"+
			"No date column at all in this export\n")

	importer := NewImporter(Config{Paths: []string{dir}})
	records, err := importer.Fetch(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.WithinDuration(t, time.Now().UTC(), records[0].Timestamp, 5*time.Second)
	assert.Empty(t, records[0].Language)
}

func TestImporter_Fetch_SkipsUnusableFiles(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "good.csv",
		"comment,date\nService is worth the price,2025-08-12\n")
	writeExport(t, dir, "headerless.csv",
		"colA,colB\n1,2\n")

	importer := NewImporter(Config{Paths: []string{filepath.Join(dir, "*.csv")}})
	records, err := importer.Fetch(context.Background(), time.Time{})
	require.NoError(t, err)
	// The file without a comment column is skipped, not fatal.
	require.Len(t, records, 1)
	assert.Equal(t, "Service is worth the price", records[0].RawText)
}

func TestImporter_Fetch_NoExports(t *testing.T) {
	dir := t.TempDir()
	importer := NewImporter(Config{Paths: []string{filepath.Join(dir, "*.csv")}})

	_, err := importer.Fetch(context.Background(), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSourceUnavailable)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{name: "rfc3339", raw: "2025-08-12T08:30:00Z", want: time.Date(2025, 8, 12, 8, 30, 0, 0, time.UTC), ok: true},
		{name: "date only", raw: "2025-08-12", want: time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "european", raw: "12/08/2025 08:30", want: time.Date(2025, 8, 12, 8, 30, 0, 0, time.UTC), ok: true},
		{name: "garbage", raw: "next tuesday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTime(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.WithinDuration(t, tt.want, got, time.Second)
			}
		})
	}
}
