package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/collector"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

func collectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect records from the configured sources",
		Long: `Fetch fresh records from social media, news outlets and survey
exports, drop duplicates and store the rest.

A source failing is normal (rate limits, outages) and does not abort the
run; the command only fails when every requested source failed.

Examples:
  farepulse collect                       # all configured sources, last 7 days
  farepulse collect --since 2025-08-01    # reach further back
  farepulse collect --sources news,survey # only some sources`,
		RunE: runCollect,
	}

	// Flags
	cmd.Flags().String("since", "", "collect records published at or after this date (YYYY-MM-DD, default 7 days back)")
	cmd.Flags().StringSlice("sources", nil, "sources to collect from (social, news, survey)")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("collect.since", cmd.Flags().Lookup("since"))
	_ = viper.BindPFlag("collect.sources", cmd.Flags().Lookup("sources"))

	return cmd
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	since, err := parseSince(viper.GetString("collect.since"))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	run, err := executeCollection(ctx, store, since, viper.GetStringSlice("collect.sources"))
	if err != nil {
		return err
	}

	printRunSummary(run)

	if run.AllFailed() {
		return fmt.Errorf("collection failed: every requested source failed")
	}
	return nil
}

// executeCollection builds the requested collectors and runs one
// collection pass. Shared by collect and run.
func executeCollection(ctx context.Context, store service.Store, since time.Time, sources []string) (*model.CollectionRun, error) {
	requested, explicit := resolveSources(sources)

	collectors, err := buildCollectors(requested, explicit)
	if err != nil {
		return nil, err
	}

	runner := collector.NewRunner(store, collectors, collector.Config{
		Timeout: viper.GetDuration("collect.timeout"),
		Retry:   retryOptions(),
	})
	return runner.Run(ctx, since)
}

func printRunSummary(run *model.CollectionRun) {
	fmt.Println(cli.FormatTitle("Collection summary"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", "SOURCE", "FETCHED", "NEW", "DUPLICATE", "STATUS")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 7), strings.Repeat("-", 7),
		strings.Repeat("-", 5), strings.Repeat("-", 9), strings.Repeat("-", 6))

	for _, res := range run.Results {
		status := cli.SuccessStyle.Render("ok")
		if res.Failed() {
			status = cli.ErrorStyle.Render(res.Err)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			res.Source, res.Fetched, res.Stored, res.Duplicate, status)
	}
	_ = w.Flush()

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Stored %d new records", run.TotalStored())))
}
