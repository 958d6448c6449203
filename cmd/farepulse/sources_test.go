package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/source/newsscrape"
	"github.com/mkamanzi/farepulse/internal/source/rss"
)

func TestDescribeSurveyPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	assert.Equal(t, "2 file(s)", describeSurveyPattern(filepath.Join(dir, "*.csv")))
	assert.Equal(t, "1 file(s)", describeSurveyPattern(filepath.Join(dir, "a.csv")))
	assert.Equal(t, "no files match", describeSurveyPattern(filepath.Join(dir, "*.xlsx")))

	// A bare directory counts the csv exports inside it.
	assert.Equal(t, "2 file(s)", describeSurveyPattern(dir))
}

func TestSocialRows_WithoutCredentials(t *testing.T) {
	clearSourceEnv(t)

	rows := socialRows(context.Background(), false)
	require.Len(t, rows, 1)
	assert.Equal(t, "social", rows[0].source)
	assert.Contains(t, rows[0].status, "no credentials")
}

func TestSocialRows_Configured(t *testing.T) {
	clearSourceEnv(t)
	viper.Set("sources.social.client_id", "id")
	viper.Set("sources.social.client_secret", "secret")

	rows := socialRows(context.Background(), false)
	require.Len(t, rows, 1)
	assert.Equal(t, "configured", rows[0].status)
}

func TestNewsRows_Defaults(t *testing.T) {
	clearSourceEnv(t)

	rows := newsRows(context.Background(), false)
	require.Len(t, rows, len(rss.DefaultFeeds)+len(newsscrape.DefaultListings))
	for _, row := range rows {
		assert.Equal(t, "news", row.source)
		assert.Equal(t, "configured", row.status)
		assert.NotEmpty(t, row.target)
	}
}

func TestSurveyRows_NoPaths(t *testing.T) {
	clearSourceEnv(t)

	rows := surveyRows()
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].status, "no paths configured")
}

func TestSurveyRows_CountsFiles(t *testing.T) {
	clearSourceEnv(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "survey.csv"), []byte("x"), 0o600))
	viper.Set("sources.survey.paths", []string{filepath.Join(dir, "*.csv")})

	rows := surveyRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "1 file(s)", rows[0].status)
}
