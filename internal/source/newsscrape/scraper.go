// Package newsscrape collects articles from outlet search pages that
// publish no feed, by walking their listing markup directly.
package newsscrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

// DefaultListings are the outlet search pages crawled for transport
// coverage.
var DefaultListings = []string{
	"https://www.newtimes.co.rw/search/node/transport",
	"https://www.ktpress.rw/search/?q=transport",
}

// Outlets block generic clients; a browser agent gets the real page.
const defaultAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodyBytes = 5 * 1024 * 1024

// Config tunes the scraper.
type Config struct {
	UserAgent   string
	Listings    []string
	MaxArticles int
}

// Scraper walks outlet listing pages, follows each article link and
// extracts its paragraph text.
type Scraper struct {
	httpClient  *http.Client
	userAgent   string
	listings    []string
	maxArticles int
}

// NewScraper creates a listing-page scraper.
func NewScraper(cfg Config) *Scraper {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultAgent
	}
	if len(cfg.Listings) == 0 {
		cfg.Listings = DefaultListings
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 20
	}

	return &Scraper{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		userAgent:   cfg.UserAgent,
		listings:    cfg.Listings,
		maxArticles: cfg.MaxArticles,
	}
}

// Source identifies this collector's records.
func (s *Scraper) Source() model.Source {
	return model.SourceNews
}

// Fetch crawls every listing page. Scraped pages carry no publication
// date, so records land at poll time and the since filter cannot exclude
// them. A listing that fails is logged and skipped; the fetch only fails
// when every listing does.
func (s *Scraper) Fetch(ctx context.Context, _ time.Time) ([]model.Record, error) {
	var records []model.Record
	var lastErr error
	failed := 0

	for _, listing := range s.listings {
		found, err := s.crawlListing(ctx, listing)
		if err != nil {
			slog.Warn("Listing crawl failed", "listing", listing, "error", err)
			lastErr = err
			failed++
			continue
		}
		records = append(records, found...)
	}

	if failed == len(s.listings) && lastErr != nil {
		return nil, fmt.Errorf("all listings failed: %w", lastErr)
	}

	slog.Debug("Scrape complete", "listings", len(s.listings), "articles", len(records))
	return records, nil
}

func (s *Scraper) crawlListing(ctx context.Context, listing string) ([]model.Record, error) {
	doc, err := s.fetchDocument(ctx, listing)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(listing)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}

	articles := findAll(doc, "article")
	if len(articles) > s.maxArticles {
		articles = articles[:s.maxArticles]
	}

	polledAt := time.Now().UTC()
	var records []model.Record
	for _, art := range articles {
		title := "No title"
		if h2 := findFirst(art, "h2"); h2 != nil {
			title = strings.TrimSpace(textContent(h2))
		}

		link := listing
		if a := findFirst(art, "a"); a != nil {
			if href := attr(a, "href"); href != "" {
				link = resolveLink(base, href)
			}
		}

		text := title
		if body := s.fetchArticleBody(ctx, link); body != "" {
			text = title + ". " + body
		}

		records = append(records, model.Record{
			Source:    model.SourceNews,
			RawText:   text,
			Title:     title,
			URL:       link,
			Timestamp: polledAt,
		})
	}

	return records, nil
}

// fetchArticleBody joins the paragraph text of one article page.
// Body fetches are best-effort; a failed page still yields its headline.
func (s *Scraper) fetchArticleBody(ctx context.Context, link string) string {
	doc, err := s.fetchDocument(ctx, link)
	if err != nil {
		slog.Debug("Article body fetch failed", "url", link, "error", err)
		return ""
	}

	var parts []string
	for _, p := range findAll(doc, "p") {
		if text := strings.TrimSpace(textContent(p)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func (s *Scraper) fetchDocument(ctx context.Context, rawURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page unreachable: %w: %w", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("outlet throttled the request: %w", common.ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("outlet server error (status %d): %w", resp.StatusCode, common.ErrSourceUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("outlet returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}

// findAll returns every element with the given tag, in document order.
func findAll(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

// findFirst returns the first element with the given tag, or nil.
func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// textContent joins the text nodes under n, skipping script and style.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
