package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// Write implements the ReportWriter interface.
func (w *Writer) Write(ctx context.Context, records []model.ClassifiedRecord, summary *service.ReportSummary) error {
	w.logger.Info("starting report upload",
		"records", len(records),
		"date_range", fmt.Sprintf("%s to %s", summary.DateRange.Start.Format("2006-01-02"), summary.DateRange.End.Format("2006-01-02")))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	// The report replaces whatever the sheet held before
	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values, detailRow := w.prepareReportData(records, summary)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)

	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, len(values), detailRow)
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic, the data is already in place
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report upload completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		// Verify the spreadsheet exists and is accessible
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: "Records",
				},
			},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

// clearSheet clears all data from the sheet.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareReportData lays the report out as sheet rows: a title, summary
// and breakdown sections, then one row per classified record. It returns
// the rows plus the index of the record detail header row.
func (w *Writer) prepareReportData(records []model.ClassifiedRecord, summary *service.ReportSummary) ([][]any, int) {
	estimatedRows := 20 + len(summary.BySource) + len(summary.TopTopics) + len(records)
	values := make([][]any, 0, estimatedRows)

	values = append(values,
		[]any{
			"Transport Sentiment Report",
			fmt.Sprintf("%s - %s", summary.DateRange.Start.Format("Jan 2, 2006"), summary.DateRange.End.Format("Jan 2, 2006")),
		},
		[]any{}, // Empty row
		[]any{"Summary"},
		[]any{"Total records", summary.TotalRecords},
		[]any{"Flagged for review", summary.FlagCount},
		[]any{}, // Empty row
		[]any{"Sentiment Breakdown"},
		[]any{"Sentiment", "Count", "Share"},
	)

	for _, s := range model.AllSentiments() {
		count := summary.BySentiment[s]
		values = append(values, []any{
			string(s),
			count,
			share(count, summary.TotalRecords),
		})
	}

	// Sources, busiest first
	sources := make([]model.Source, 0, len(summary.BySource))
	for src := range summary.BySource {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool {
		if summary.BySource[sources[i]] != summary.BySource[sources[j]] {
			return summary.BySource[sources[i]] > summary.BySource[sources[j]]
		}
		return sources[i] < sources[j]
	})

	values = append(values,
		[]any{}, // Empty row
		[]any{"Source Breakdown"},
		[]any{"Source", "Count"},
	)
	for _, src := range sources {
		values = append(values, []any{
			string(src),
			summary.BySource[src],
		})
	}

	values = append(values,
		[]any{}, // Empty row
		[]any{"Top Topics"},
		[]any{"Topic", "Count"},
	)
	for _, tc := range summary.TopTopics {
		values = append(values, []any{
			tc.Topic,
			tc.Count,
		})
	}

	values = append(values,
		[]any{}, // Empty row
		[]any{}, // Empty row
		[]any{"Record Details"},
	)
	detailRow := len(values)
	values = append(values, []any{
		"Date",
		"Source",
		"Language",
		"Sentiment",
		"Confidence",
		"Topics",
		"Flagged",
		"Text",
	})

	// Newest records first
	sort.Slice(records, func(i, j int) bool {
		return records[i].Record.Timestamp.After(records[j].Record.Timestamp)
	})

	for i := range records {
		rec := &records[i]
		flagged := ""
		if rec.Misinfo {
			flagged = "yes"
		}
		values = append(values, []any{
			rec.Record.Timestamp.Format("2006-01-02 15:04"),
			string(rec.Record.Source),
			string(rec.Record.Language),
			string(rec.Sentiment),
			fmt.Sprintf("%.2f", rec.Confidence),
			strings.Join(rec.SortedTopics(), ", "),
			flagged,
			rec.Record.RawText,
		})
	}

	return values, detailRow
}

// share renders a count as a whole-number percentage of the total.
func share(count, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", count*100/total)
}

// writeData writes the data to the spreadsheet.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting applies formatting to the spreadsheet: a large bold
// title, bold section labels, a numeric confidence column and frozen
// header rows.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, totalRows, detailRow int) error {
	requests := []*sheets.Request{
		// Format title row
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   2,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold:     true,
							FontSize: 16,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		// Bold the section label column down to the record details
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    2,
					EndRowIndex:      int64(detailRow + 1),
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold: true,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		// Confidence column as a two-decimal number
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    int64(detailRow + 1),
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 4,
					EndColumnIndex:   5,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "NUMBER",
							Pattern: "0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		// Auto-resize columns
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   8,
				},
			},
		},
		// Freeze the title rows
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 2,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}
