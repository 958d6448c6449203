package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkamanzi/farepulse/internal/classify"
	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/engine"
	"github.com/mkamanzi/farepulse/internal/service"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify stored records",
		Long: `Run the sentiment lexicon over every stored record that has no
verdict yet. Each record gets a sentiment, a confidence, topic tags and
a misinformation flag.

Classification is deterministic for a given lexicon version, so
re-running is always safe.`,
		RunE: runClassify,
	}
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	stats, err := executeClassification(ctx, store)
	if err != nil {
		return err
	}

	printClassifyStats(stats)
	return nil
}

// executeClassification runs the lexicon over the unclassified backlog.
// Shared by classify and run.
func executeClassification(ctx context.Context, store service.Store) (service.CompletionStats, error) {
	lexicon := classify.New(classify.Config{})
	eng := engine.NewWithConfig(store, lexicon, engine.Config{ProgressWriter: os.Stderr})

	stats, err := eng.ClassifyRecords(ctx)
	if err != nil {
		return stats, fmt.Errorf("classification failed: %w", err)
	}
	return stats, nil
}

func printClassifyStats(stats service.CompletionStats) {
	content := fmt.Sprintf(`Records processed: %d
Classified: %d
Skipped (no usable text): %d
Flagged for review: %d
Duration: %s`,
		stats.TotalRecords, stats.Classified, stats.Skipped, stats.Flagged,
		stats.Duration.Round(time.Millisecond))

	fmt.Println(cli.RenderBox("Classification", content))

	if stats.Flagged > 0 {
		fmt.Println(cli.FormatWarning(
			fmt.Sprintf("%d records flagged as possible misinformation. Review with: farepulse flags review", stats.Flagged)))
	}
}
