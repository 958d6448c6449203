package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/report"
	"github.com/mkamanzi/farepulse/internal/service"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, classify and report in one pass",
		Long: `Run the whole pipeline: fetch fresh records from the configured
sources, classify everything that has no verdict yet, then write the
sentiment report.

Individual sources failing does not abort the run; the command only
fails when every requested source failed.

Examples:
  farepulse run                        # the daily invocation
  farepulse run --since 2025-08-01     # backfill after downtime
  farepulse run --sources news --window week`,
		RunE: runPipeline,
	}

	// Flags
	cmd.Flags().String("since", "", "collect records published at or after this date (YYYY-MM-DD, default 7 days back)")
	cmd.Flags().StringSlice("sources", nil, "sources to collect from (social, news, survey)")
	cmd.Flags().String("window", "day", "trend bucket size for the report (hour, day, week)")
	cmd.Flags().String("out", "reports", "directory to write report files into")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("run.since", cmd.Flags().Lookup("since"))
	_ = viper.BindPFlag("run.sources", cmd.Flags().Lookup("sources"))
	_ = viper.BindPFlag("run.window", cmd.Flags().Lookup("window"))
	_ = viper.BindPFlag("run.out", cmd.Flags().Lookup("out"))

	return cmd
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	since, err := parseSince(viper.GetString("run.since"))
	if err != nil {
		return err
	}
	window, err := parseWindow(viper.GetString("run.window"))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	// Stage 1: collect.
	run, err := executeCollection(ctx, store, since, viper.GetStringSlice("run.sources"))
	if err != nil {
		return err
	}
	printRunSummary(run)

	// Stage 2: classify. Runs even when collection stored nothing new,
	// so a backlog from an earlier crash still gets processed.
	stats, err := executeClassification(ctx, store)
	if err != nil {
		return err
	}
	printClassifyStats(stats)

	// Stage 3: report.
	records, err := store.GetClassifiedRecords(ctx, service.RecordFilter{Since: &since})
	if err != nil {
		return fmt.Errorf("loading classified records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println(cli.FormatWarning("No classified records in range, skipping the report."))
	} else {
		fmt.Println(report.RenderSummary(records))
		written, err := writeReports(records, window, viper.GetString("run.out"), "")
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Println(cli.FormatSuccess("Wrote " + path))
		}
	}

	if run.AllFailed() {
		return fmt.Errorf("collection failed: every requested source failed")
	}
	return nil
}
