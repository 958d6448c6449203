package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/config"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/report"
	"github.com/mkamanzi/farepulse/internal/service"
	"github.com/mkamanzi/farepulse/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export classified records as CSV, JSON or to Google Sheets",
		Long: `Dump classified records in a machine-readable format, or push the
report to a shared Google Sheets spreadsheet.

Sheets export needs credentials; run 'farepulse auth sheets' once to
set them up.

Examples:
  farepulse export                          # CSV on stdout
  farepulse export --format json --out records.json
  farepulse export --sheets                 # push to the configured spreadsheet`,
		RunE: runExport,
	}

	// Flags
	cmd.Flags().String("since", "", "export records published at or after this date (YYYY-MM-DD, default 7 days back)")
	cmd.Flags().String("format", "csv", "output format (csv, json)")
	cmd.Flags().String("out", "", "file to write to (default stdout)")
	cmd.Flags().Bool("sheets", false, "push the report to Google Sheets instead")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("export.since", cmd.Flags().Lookup("since"))
	_ = viper.BindPFlag("export.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("export.out", cmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("export.sheets", cmd.Flags().Lookup("sheets"))

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	since, err := parseSince(viper.GetString("export.since"))
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

	if viper.GetBool("export.sheets") {
		return exportToSheets(cmd, records)
	}
	return exportToFile(records, viper.GetString("export.format"), viper.GetString("export.out"))
}

func exportToFile(records []model.ClassifiedRecord, format, out string) error {
	var write func(io.Writer) error
	switch format {
	case "csv":
		write = func(w io.Writer) error { return report.WriteCSV(w, records) }
	case "json":
		write = func(w io.Writer) error { return report.WriteJSON(w, records) }
	default:
		return fmt.Errorf("unknown format %q, want csv or json", format)
	}

	if out == "" {
		return write(os.Stdout)
	}

	if err := writeReportFile(out, write); err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d records to %s", len(records), out)))
	return nil
}

func exportToSheets(cmd *cobra.Command, records []model.ClassifiedRecord) error {
	ctx := cmd.Context()

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("sheets not configured: %w (run 'farepulse auth sheets')", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}

	summary := report.Summarize(records, report.DefaultTopTopics)
	if err := writer.Write(ctx, records, summary); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Uploaded %d records to Google Sheets", len(records))))
	return nil
}
