package sheets

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: false,
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         time.Second,
			},
			wantErr: false,
		},
		{
			name: "missing auth",
			config: Config{
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:      "test-client",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         time.Second,
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "invalid batch size",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     0,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
		{
			name: "negative retry attempts",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: -1,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name: "negative retry delay",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         -time.Second,
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
		{
			name: "zero retries is valid",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      0,
				RetryDelay:         0,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	// Save original env vars
	originalVars := map[string]string{
		"GOOGLE_SHEETS_CLIENT_ID":            os.Getenv("GOOGLE_SHEETS_CLIENT_ID"),
		"GOOGLE_SHEETS_CLIENT_SECRET":        os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"),
		"GOOGLE_SHEETS_REFRESH_TOKEN":        os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"),
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH": os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"),
		"GOOGLE_SHEETS_SPREADSHEET_ID":       os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		"GOOGLE_SHEETS_SPREADSHEET_NAME":     os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"),
	}

	// Restore env vars after test
	defer func() {
		for key, value := range originalVars {
			if value == "" {
				_ = os.Unsetenv(key)
			} else {
				_ = os.Setenv(key, value)
			}
		}
	}()

	tests := []struct {
		envVars map[string]string
		check   func(t *testing.T, c *Config)
		name    string
		wantErr bool
	}{
		{
			name: "oauth credentials",
			envVars: map[string]string{
				"GOOGLE_SHEETS_CLIENT_ID":        "test-client",
				"GOOGLE_SHEETS_CLIENT_SECRET":    "test-secret",
				"GOOGLE_SHEETS_REFRESH_TOKEN":    "test-token",
				"GOOGLE_SHEETS_SPREADSHEET_ID":   "test-id",
				"GOOGLE_SHEETS_SPREADSHEET_NAME": "Test Sheet",
			},
			wantErr: false,
			check: func(t *testing.T, c *Config) {
				t.Helper()
				assert.Equal(t, "test-client", c.ClientID)
				assert.Equal(t, "test-secret", c.ClientSecret)
				assert.Equal(t, "test-token", c.RefreshToken)
				assert.Equal(t, "test-id", c.SpreadsheetID)
				assert.Equal(t, "Test Sheet", c.SpreadsheetName)
			},
		},
		{
			name: "service account path",
			envVars: map[string]string{
				"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH": "/path/to/key.json",
			},
			wantErr: false,
			check: func(t *testing.T, c *Config) {
				t.Helper()
				assert.Equal(t, "/path/to/key.json", c.ServiceAccountPath)
				assert.Equal(t, "Transport Sentiment Report", c.SpreadsheetName) // Default name
			},
		},
		{
			name:    "missing credentials",
			envVars: map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear all env vars
			for key := range originalVars {
				_ = os.Unsetenv(key)
			}

			// Set test env vars
			for key, value := range tt.envVars {
				_ = os.Setenv(key, value)
			}

			config := DefaultConfig()
			err := config.LoadFromEnv()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.check != nil {
					tt.check(t, &config)
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.True(t, config.EnableFormatting)
	assert.Equal(t, "Africa/Kigali", config.TimeZone)
	assert.Equal(t, 1000, config.BatchSize)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
}

func TestWriter_prepareReportData(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	writer := &Writer{
		config: DefaultConfig(),
		logger: logger,
	}

	records := []model.ClassifiedRecord{
		{
			Record: model.Record{
				ID:        "rec-001",
				Source:    model.SourceSocial,
				Language:  "en",
				Timestamp: time.Date(2025, 8, 5, 12, 0, 0, 0, time.UTC),
				RawText:   "The new routes are great",
			},
			Sentiment:    model.SentimentPositive,
			Confidence:   0.8,
			Topics:       []string{"routes"},
			ModelVersion: "test/1",
		},
		{
			Record: model.Record{
				ID:        "rec-002",
				Source:    model.SourceSocial,
				Language:  "en",
				Timestamp: time.Date(2025, 8, 10, 9, 0, 0, 0, time.UTC),
				RawText:   "Tap-card fares are a scam",
			},
			Sentiment:    model.SentimentNegative,
			Confidence:   0.85,
			Topics:       []string{"fraud", "fares", "payment"},
			Misinfo:      true,
			ModelVersion: "test/1",
		},
	}

	summary := &service.ReportSummary{
		DateRange: service.DateRange{
			Start: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
		},
		BySentiment: map[model.Sentiment]int{
			model.SentimentPositive: 1,
			model.SentimentNeutral:  0,
			model.SentimentNegative: 2,
		},
		BySource: map[model.Source]int{
			model.SourceSocial: 2,
			model.SourceNews:   1,
		},
		TopTopics:    []model.TopicCount{{Topic: "fares", Count: 2}},
		TotalRecords: 3,
		FlagCount:    1,
	}

	values, detailRow := writer.prepareReportData(records, summary)

	assert.Greater(t, len(values), 15, "should have title, summary, breakdowns and records")

	// Check title row
	assert.Equal(t, "Transport Sentiment Report", values[0][0])
	assert.Contains(t, values[0][1], "Aug 1, 2025")
	assert.Contains(t, values[0][1], "Aug 14, 2025")

	sections := map[string]int{
		"Summary":             -1,
		"Sentiment Breakdown": -1,
		"Source Breakdown":    -1,
		"Top Topics":          -1,
		"Record Details":      -1,
	}
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if label, ok := row[0].(string); ok {
			if _, want := sections[label]; want {
				sections[label] = i
			}
		}
	}
	for label, idx := range sections {
		require.NotEqual(t, -1, idx, "should have %s section", label)
	}

	// Detail header follows the Record Details label
	require.Equal(t, sections["Record Details"]+1, detailRow)
	assert.Equal(t, "Date", values[detailRow][0])
	assert.Equal(t, "Confidence", values[detailRow][4])

	// Sentiment rows carry their share of the total
	sentimentRow := values[sections["Sentiment Breakdown"]+2]
	assert.Equal(t, "positive", sentimentRow[0])
	assert.Equal(t, 1, sentimentRow[1])
	assert.Equal(t, "33%", sentimentRow[2])

	// Busiest source first
	sourceRow := values[sections["Source Breakdown"]+2]
	assert.Equal(t, "social", sourceRow[0])
	assert.Equal(t, 2, sourceRow[1])

	// Records sorted newest first
	recordRow := values[detailRow+1]
	assert.Equal(t, "2025-08-10 09:00", recordRow[0])
	assert.Equal(t, "social", recordRow[1])
	assert.Equal(t, "negative", recordRow[3])
	assert.Equal(t, "0.85", recordRow[4])
	assert.Equal(t, "fares, fraud, payment", recordRow[5])
	assert.Equal(t, "yes", recordRow[6])
	assert.Equal(t, "Tap-card fares are a scam", recordRow[7])
}

func TestShare(t *testing.T) {
	assert.Equal(t, "33%", share(1, 3))
	assert.Equal(t, "100%", share(4, 4))
	assert.Equal(t, "0%", share(0, 7))
	assert.Equal(t, "0%", share(0, 0))
}
