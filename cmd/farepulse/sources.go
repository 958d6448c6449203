package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/cli"
	"github.com/mkamanzi/farepulse/internal/source/newsscrape"
	"github.com/mkamanzi/farepulse/internal/source/rss"
)

const probeTimeout = 10 * time.Second

func sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Show configured sources and check their reachability",
		Long: `Show what each collection source would use on the next run: the
Reddit credentials, the news feeds and listing pages, and the survey
export paths.

With --check the news endpoints are probed over the network and the
survey paths are checked on disk, so a broken feed URL shows up here
instead of in tomorrow's collection log.`,
		RunE: runSources,
	}

	cmd.Flags().Bool("check", false, "probe each source before reporting")

	return cmd
}

// sourceRow is one line of the sources table.
type sourceRow struct {
	source string
	kind   string
	target string
	status string
}

func runSources(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	check, _ := cmd.Flags().GetBool("check")

	rows := socialRows(ctx, check)
	rows = append(rows, newsRows(ctx, check)...)
	rows = append(rows, surveyRows()...)

	fmt.Println(cli.FormatTitle("Collection sources"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", "SOURCE", "KIND", "TARGET", "STATUS")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 6), strings.Repeat("-", 4),
		strings.Repeat("-", 6), strings.Repeat("-", 6))
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.source, row.kind, row.target, row.status)
	}
	_ = w.Flush()

	if !check {
		fmt.Println()
		fmt.Println("Run with --check to probe feeds and paths.")
	}
	return nil
}

func socialRows(ctx context.Context, check bool) []sourceRow {
	cfg := redditConfig()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return []sourceRow{{
			source: "social",
			kind:   "reddit",
			target: "reddit.com",
			status: "no credentials (set sources.social.* or REDDIT_CLIENT_ID/SECRET)",
		}}
	}

	status := "configured"
	if check {
		status = probeURL(ctx, "https://www.reddit.com/api/v1/access_token")
	}
	return []sourceRow{{source: "social", kind: "reddit", target: "reddit.com", status: status}}
}

func newsRows(ctx context.Context, check bool) []sourceRow {
	feeds := viper.GetStringSlice("sources.news.feeds")
	if len(feeds) == 0 {
		feeds = rss.DefaultFeeds
	}
	listings := viper.GetStringSlice("sources.news.listings")
	if len(listings) == 0 {
		listings = newsscrape.DefaultListings
	}

	var rows []sourceRow
	for _, feed := range feeds {
		status := "configured"
		if check {
			status = probeURL(ctx, feed)
		}
		rows = append(rows, sourceRow{source: "news", kind: "feed", target: feed, status: status})
	}
	for _, listing := range listings {
		status := "configured"
		if check {
			status = probeURL(ctx, listing)
		}
		rows = append(rows, sourceRow{source: "news", kind: "listing", target: listing, status: status})
	}
	return rows
}

func surveyRows() []sourceRow {
	paths := surveyPaths()
	if len(paths) == 0 {
		return []sourceRow{{
			source: "survey",
			kind:   "csv",
			target: "-",
			status: "no paths configured (set sources.survey.paths)",
		}}
	}

	rows := make([]sourceRow, 0, len(paths))
	for _, pattern := range paths {
		rows = append(rows, sourceRow{
			source: "survey",
			kind:   "csv",
			target: pattern,
			status: describeSurveyPattern(pattern),
		})
	}
	return rows
}

// describeSurveyPattern counts the export files a path, directory or
// glob would pick up, mirroring the importer's expansion rules.
func describeSurveyPattern(pattern string) string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Sprintf("invalid pattern: %v", err)
	}
	if len(matches) == 0 {
		if _, err := os.Stat(pattern); err == nil {
			matches = []string{pattern}
		} else {
			return "no files match"
		}
	}

	files := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.IsDir() {
			inDir, _ := filepath.Glob(filepath.Join(match, "*.csv"))
			files += len(inDir)
			continue
		}
		files++
	}
	if files == 0 {
		return "no files match"
	}
	return fmt.Sprintf("%d file(s)", files)
}

// probeURL reports whether the endpoint answers at all. Any HTTP
// response counts, auth errors included; the point is reachability,
// not a valid payload.
func probeURL(ctx context.Context, rawURL string) string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return cli.ErrorStyle.Render(fmt.Sprintf("unreachable: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return cli.ErrorStyle.Render(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	return cli.SuccessStyle.Render(fmt.Sprintf("ok (HTTP %d)", resp.StatusCode))
}
