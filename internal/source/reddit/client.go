// Package reddit collects public posts and comments from the Reddit search
// API using an application-only OAuth2 grant.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

// DefaultKeywords are the search phrases that surface Rwandan transport
// commentary. Overridable through config.
var DefaultKeywords = []string{
	"Rwanda transport",
	"Kigali bus",
	"RURA transport",
	"distance fare Rwanda",
	"Rwanda public transport",
	"Kigali fare",
	"Rwanda bus fare",
}

const (
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token" //nolint:gosec // OAuth endpoint, not a credential
	defaultAPIURL   = "https://oauth.reddit.com"
	defaultAgent    = "farepulse/1.0 (transport sentiment monitor)"

	// Reddit caps search pages at 100 entries.
	searchPageLimit = 100
)

// Config holds the credentials and tuning knobs for the Reddit collector.
type Config struct {
	ClientID        string
	ClientSecret    string
	UserAgent       string
	TokenURL        string
	APIURL          string
	Keywords        []string
	MaxPosts        int
	CommentsPerPost int
}

// Client fetches posts and their top comments for each configured keyword.
type Client struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
	keywords   []string
	maxPosts   int
	comments   int
}

// NewClient creates a Reddit client with an application-only token source.
// The token refreshes itself; callers only see the finished records.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: reddit client_id and client_secret are required "+
			"(free script app at https://www.reddit.com/prefs/apps)", common.ErrMissingConfig)
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultAgent
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	if cfg.MaxPosts <= 0 {
		cfg.MaxPosts = 200
	}
	if cfg.CommentsPerPost <= 0 {
		cfg.CommentsPerPost = 10
	}

	grant := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// Reddit rejects clients without a distinctive User-Agent, including on
	// the token endpoint, so the agent rides on the base transport.
	base := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &userAgentTransport{
			agent: cfg.UserAgent,
			base:  http.DefaultTransport,
		},
	}
	authCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &Client{
		httpClient: grant.Client(authCtx),
		apiURL:     cfg.APIURL,
		userAgent:  cfg.UserAgent,
		keywords:   cfg.Keywords,
		maxPosts:   cfg.MaxPosts,
		comments:   cfg.CommentsPerPost,
	}, nil
}

// Source identifies this collector's records.
func (c *Client) Source() model.Source {
	return model.SourceSocial
}

// Fetch returns posts and top comments matching the configured keywords,
// published at or after since. A keyword that fails is logged and skipped;
// the fetch only fails when every keyword does.
func (c *Client) Fetch(ctx context.Context, since time.Time) ([]model.Record, error) {
	var records []model.Record
	var lastErr error
	failed := 0

	for _, keyword := range c.keywords {
		found, err := c.search(ctx, keyword, since)
		if err != nil {
			slog.Warn("Reddit keyword search failed", "keyword", keyword, "error", err)
			lastErr = err
			failed++
			continue
		}
		records = append(records, found...)
	}

	if failed == len(c.keywords) && lastErr != nil {
		return nil, fmt.Errorf("all reddit searches failed: %w", lastErr)
	}

	slog.Debug("Reddit fetch complete", "records", len(records))
	return records, nil
}

func (c *Client) search(ctx context.Context, keyword string, since time.Time) ([]model.Record, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("sort", "new")
	q.Set("type", "link")
	q.Set("limit", fmt.Sprintf("%d", searchPageLimit))
	q.Set("raw_json", "1")

	var listing thingListing
	if err := c.getJSON(ctx, c.apiURL+"/search?"+q.Encode(), &listing); err != nil {
		return nil, err
	}

	var records []model.Record
	for _, child := range listing.Data.Children {
		if len(records) >= c.maxPosts {
			break
		}

		post := child.Data
		created := time.Unix(int64(post.CreatedUTC), 0).UTC()
		if created.Before(since) {
			continue
		}

		text := post.Title
		if post.SelfText != "" {
			text = post.Title + ". " + post.SelfText
		}

		records = append(records, model.Record{
			ID:        "reddit-" + post.ID,
			Source:    model.SourceSocial,
			AuthorID:  post.Author,
			RawText:   text,
			Title:     post.Title,
			URL:       "https://reddit.com" + post.Permalink,
			Timestamp: created,
		})

		comments, err := c.fetchComments(ctx, post.ID, post.Permalink, since)
		if err != nil {
			// Comments are best-effort; the post itself already counts.
			slog.Debug("Comment fetch failed", "post", post.ID, "error", err)
			continue
		}
		records = append(records, comments...)
	}

	return records, nil
}

func (c *Client) fetchComments(ctx context.Context, postID, permalink string, since time.Time) ([]model.Record, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", c.comments))
	q.Set("depth", "1")
	q.Set("sort", "top")
	q.Set("raw_json", "1")

	// The comments endpoint returns two listings: the post, then the tree.
	var listings []thingListing
	if err := c.getJSON(ctx, c.apiURL+"/comments/"+postID+"?"+q.Encode(), &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var records []model.Record
	for _, child := range listings[1].Data.Children {
		if len(records) >= c.comments {
			break
		}
		if child.Kind != "t1" {
			continue
		}

		comment := child.Data
		if comment.Body == "" || comment.Body == "[deleted]" || comment.Body == "[removed]" {
			continue
		}

		created := time.Unix(int64(comment.CreatedUTC), 0).UTC()
		if created.Before(since) {
			continue
		}

		records = append(records, model.Record{
			ID:        "reddit-comment-" + comment.ID,
			Source:    model.SourceSocial,
			AuthorID:  comment.Author,
			RawText:   comment.Body,
			URL:       "https://reddit.com" + permalink,
			Timestamp: created,
		})
	}

	return records, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reddit request failed: %w: %w", common.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode reddit response: %w", err)
	}
	return nil
}

// classifyStatus maps Reddit HTTP failures onto the shared error kinds so
// the retry layer can pick a backoff policy.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("reddit throttled the request: %w", common.ErrRateLimited)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("reddit rejected credentials (status %d): %w", status, common.ErrSourceUnavailable)
	case status >= 500:
		return fmt.Errorf("reddit server error (status %d): %w", status, common.ErrSourceUnavailable)
	default:
		return fmt.Errorf("reddit API error: status %d", status)
	}
}

// Reddit listing types. Only the fields the collector reads are mapped.
type thingListing struct {
	Data struct {
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

type thingData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

// userAgentTransport stamps every outbound request with the configured agent.
type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(clone)
}
