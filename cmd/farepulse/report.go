package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/report"
	"github.com/mkamanzi/farepulse/internal/service"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a sentiment report from classified records",
		Long: `Aggregate classified records into a sentiment report and write it to
disk as CSV, JSON and a self-contained HTML page.

Examples:
  farepulse report                          # last 7 days, all formats, into ./reports
  farepulse report --window week            # weekly buckets in the HTML trend
  farepulse report --format html --out /tmp # only the HTML page`,
		RunE: runReport,
	}

	// Flags
	cmd.Flags().String("since", "", "report on records published at or after this date (YYYY-MM-DD, default 7 days back)")
	cmd.Flags().String("window", "day", "trend bucket size (hour, day, week)")
	cmd.Flags().String("out", "reports", "directory to write report files into")
	cmd.Flags().String("format", "", "write a single format (csv, json, html; default all)")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("report.since", cmd.Flags().Lookup("since"))
	_ = viper.BindPFlag("report.window", cmd.Flags().Lookup("window"))
	_ = viper.BindPFlag("report.out", cmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	since, err := parseSince(viper.GetString("report.since"))
	if err != nil {
		return err
	}
	window, err := parseWindow(viper.GetString("report.window"))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	records, err := store.GetClassifiedRecords(ctx, service.RecordFilter{Since: &since})
	if err != nil {
		return fmt.Errorf("loading classified records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println(cli.FormatWarning("No classified records in range. Run 'farepulse collect' and 'farepulse classify' first."))
		return nil
	}

	fmt.Println(report.RenderSummary(records))

	written, err := writeReports(records, window, viper.GetString("report.out"), viper.GetString("report.format"))
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Println(cli.FormatSuccess("Wrote " + path))
	}
	return nil
}

// writeReports renders the requested formats into outDir and returns the
// paths it created. An empty format selects all of them. Shared by report
// and run.
func writeReports(records []model.ClassifiedRecord, window model.Window, outDir, format string) ([]string, error) {
	renderers := map[string]func(io.Writer) error{
		"csv":  func(w io.Writer) error { return report.WriteCSV(w, records) },
		"json": func(w io.Writer) error { return report.WriteJSON(w, records) },
		"html": func(w io.Writer) error { return report.RenderHTML(w, records, window) },
	}

	formats := []string{"csv", "json", "html"}
	if format != "" {
		if _, ok := renderers[format]; !ok {
			return nil, fmt.Errorf("unknown format %q, want csv, json or html", format)
		}
		formats = []string{format}
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(outDir, "sentiment_report."+f)
		if err := writeReportFile(path, renderers[f]); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeReportFile(path string, render func(io.Writer) error) error {
	file, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
