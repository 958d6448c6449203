// Package rss collects news coverage from Google News search feeds and the
// RSS feeds of Rwandan outlets.
package rss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

// DefaultKeywords drive the Google News searches.
var DefaultKeywords = []string{
	"Rwanda transport fare",
	"Kigali bus fare",
	"RURA Rwanda transport",
	"Rwanda public transport",
}

// DefaultFeeds are outlet feeds polled directly, no search involved.
var DefaultFeeds = []string{
	"https://www.newtimes.co.rw/rss.xml",
	"https://www.ktpress.rw/feed/",
}

const defaultSearchURL = "https://news.google.com/rss/search"

// Config tunes the feed collector.
type Config struct {
	SearchURL   string
	Keywords    []string
	DirectFeeds []string
	MaxItems    int
}

// Collector polls search feeds and direct feeds and normalizes their
// entries into records.
type Collector struct {
	parser    *gofeed.Parser
	searchURL string
	keywords  []string
	feeds     []string
	maxItems  int
}

// NewCollector creates a feed collector.
func NewCollector(cfg Config) *Collector {
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	if cfg.DirectFeeds == nil {
		cfg.DirectFeeds = DefaultFeeds
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 50
	}

	parser := gofeed.NewParser()
	parser.UserAgent = "farepulse/1.0 (transport sentiment monitor)"
	parser.Client = &http.Client{Timeout: 20 * time.Second}

	return &Collector{
		parser:    parser,
		searchURL: cfg.SearchURL,
		keywords:  cfg.Keywords,
		feeds:     cfg.DirectFeeds,
		maxItems:  cfg.MaxItems,
	}
}

// Source identifies this collector's records.
func (c *Collector) Source() model.Source {
	return model.SourceNews
}

// Fetch polls one search feed per keyword plus every direct feed. A feed
// that fails is logged and skipped; the fetch only fails when every feed
// does.
func (c *Collector) Fetch(ctx context.Context, since time.Time) ([]model.Record, error) {
	feedURLs := make([]string, 0, len(c.keywords)+len(c.feeds))
	for _, keyword := range c.keywords {
		q := url.Values{}
		q.Set("q", keyword)
		q.Set("hl", "en-RW")
		q.Set("gl", "RW")
		q.Set("ceid", "RW:en")
		feedURLs = append(feedURLs, c.searchURL+"?"+q.Encode())
	}
	feedURLs = append(feedURLs, c.feeds...)

	var records []model.Record
	var lastErr error
	failed := 0

	for _, feedURL := range feedURLs {
		found, err := c.parseFeed(ctx, feedURL, since)
		if err != nil {
			slog.Warn("Feed poll failed", "feed", feedURL, "error", err)
			lastErr = err
			failed++
			continue
		}
		records = append(records, found...)
	}

	if failed == len(feedURLs) && lastErr != nil {
		return nil, fmt.Errorf("all feeds failed: %w", lastErr)
	}

	slog.Debug("Feed fetch complete", "feeds", len(feedURLs), "records", len(records))
	return records, nil
}

func (c *Collector) parseFeed(ctx context.Context, feedURL string, since time.Time) ([]model.Record, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, classifyFeedError(err)
	}

	var records []model.Record
	for i, item := range feed.Items {
		if i >= c.maxItems {
			break
		}

		published := itemTime(item)
		if published.Before(since) {
			continue
		}

		summary := stripHTML(item.Description)
		text := strings.TrimSpace(item.Title)
		if summary != "" {
			text = text + ". " + summary
		}
		if text == "" {
			continue
		}

		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}

		records = append(records, model.Record{
			Source:    model.SourceNews,
			AuthorID:  author,
			RawText:   text,
			Title:     item.Title,
			URL:       item.Link,
			Timestamp: published,
		})
	}

	return records, nil
}

// itemTime picks the best available publication time. Feeds without dates
// still produce records; they land at poll time.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Now().UTC()
}

// classifyFeedError maps transport failures onto the shared error kinds.
func classifyFeedError(err error) error {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("feed throttled the request: %w", common.ErrRateLimited)
		case httpErr.StatusCode >= 500:
			return fmt.Errorf("feed server error (status %d): %w", httpErr.StatusCode, common.ErrSourceUnavailable)
		default:
			return fmt.Errorf("feed error (status %d): %w", httpErr.StatusCode, err)
		}
	}
	return fmt.Errorf("feed unreachable: %w: %w", common.ErrSourceUnavailable, err)
}

// stripHTML flattens feed summaries to plain text. Google News wraps its
// summaries in anchors and font tags that would otherwise pollute scoring.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var parts []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			if text := strings.TrimSpace(tokenizer.Token().Data); text != "" {
				parts = append(parts, text)
			}
		}
	}
}
