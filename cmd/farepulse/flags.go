package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
	"github.com/mkamanzi/farepulse/internal/tui"
)

func flagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Manage the misinformation review queue",
		Long: `Records the classifier flags as possible misinformation land in a
review queue. List the queue, work through it interactively, or
resolve a single record directly.`,
	}

	cmd.AddCommand(flagsListCmd())
	cmd.AddCommand(flagsReviewCmd())
	cmd.AddCommand(flagsResolveCmd())

	return cmd
}

func flagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open flags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			reviews, err := store.GetOpenFlagReviews(ctx)
			if err != nil {
				return fmt.Errorf("loading review queue: %w", err)
			}
			if len(reviews) == 0 {
				fmt.Println(cli.FormatSuccess("Review queue is clear"))
				return nil
			}

			// Join with classifications for source, confidence and text.
			flagged, err := store.GetClassifiedRecords(ctx, service.RecordFilter{FlaggedOnly: true})
			if err != nil {
				return fmt.Errorf("loading flagged records: %w", err)
			}
			byID := make(map[string]model.ClassifiedRecord, len(flagged))
			for _, rec := range flagged {
				byID[rec.Record.ID] = rec
			}

			fmt.Println(cli.FormatTitle(cli.FlagIcon + " Open flags"))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", "RECORD", "SOURCE", "PUBLISHED", "CONFIDENCE", "EXCERPT")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 6), strings.Repeat("-", 6),
				strings.Repeat("-", 9), strings.Repeat("-", 10), strings.Repeat("-", 7))

			for _, review := range reviews {
				rec, ok := byID[review.RecordID]
				if !ok {
					// Reclassified clean since the flag was raised.
					fmt.Fprintf(w, "%s\t-\t-\t-\t%s\n", review.RecordID, "(no longer flagged)")
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
					rec.Record.ID, rec.Record.Source,
					rec.Record.Timestamp.Format("2006-01-02"),
					rec.Confidence, excerpt(rec.Record.RawText, 60))
			}
			_ = w.Flush()

			fmt.Println()
			fmt.Println("Resolve with 'farepulse flags review' or 'farepulse flags resolve <record-id>'.")
			return nil
		},
	}
}

func flagsReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Work through open flags interactively",
		Long: `Open the review queue in a terminal UI. For each flagged record you
see the full text and classification, then confirm the flag or dismiss
it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			return tui.Run(ctx, store)
		},
	}
}

func flagsResolveCmd() *cobra.Command {
	var (
		statusValue string
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "resolve <record-id>",
		Short: "Resolve one flag without the interactive queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recordID := args[0]

			status, err := parseReviewStatus(statusValue)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStore(store)

			if err := store.ResolveFlagReview(ctx, recordID, status, notes); err != nil {
				return fmt.Errorf("resolving flag on %s: %w", recordID, err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked %s as %s", recordID, strings.ToLower(string(status)))))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusValue, "status", "", "verdict (confirmed, dismissed)")
	cmd.Flags().StringVar(&notes, "notes", "", "reviewer notes to keep with the verdict")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func parseReviewStatus(raw string) (model.ReviewStatus, error) {
	switch strings.ToLower(raw) {
	case "confirmed":
		return model.ReviewConfirmed, nil
	case "dismissed":
		return model.ReviewDismissed, nil
	default:
		return "", fmt.Errorf("unknown status %q, want confirmed or dismissed", raw)
	}
}

// excerpt folds whitespace and trims text for one table cell.
func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
