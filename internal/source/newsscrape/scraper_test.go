package newsscrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/common"
	"github.com/mkamanzi/farepulse/internal/model"
)

const listingHTML = `<!DOCTYPE html>
<html><body>
<article>
  <h2>Fares review announced</h2>
  <a href="/news/fares-review">Read more</a>
</article>
<article>
  <h2>Operators push back</h2>
  <a href="/news/pushback">Read more</a>
</article>
</body></html>`

const articleHTML = `<!DOCTYPE html>
<html><body>
<script>analytics();</script>
<p>The regulator opened a review of distance based fares.</p>
<p>Operators have two weeks to respond.</p>
</body></html>`

func TestScraper_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(listingHTML))
	})
	mux.HandleFunc("/news/fares-review", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	})
	// /news/pushback is not routed: its body fetch 404s and the headline
	// stands alone.
	server := httptest.NewServer(mux)
	defer server.Close()

	scraper := NewScraper(Config{Listings: []string{server.URL + "/search"}})
	assert.Equal(t, model.SourceNews, scraper.Source())

	records, err := scraper.Fetch(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, model.SourceNews, first.Source)
	assert.Equal(t, "Fares review announced", first.Title)
	assert.Equal(t, server.URL+"/news/fares-review", first.URL)
	assert.Equal(t,
		"Fares review announced. The regulator opened a review of distance based fares. Operators have two weeks to respond.",
		first.RawText)
	assert.WithinDuration(t, time.Now().UTC(), first.Timestamp, 5*time.Second)

	second := records[1]
	assert.Equal(t, "Operators push back", second.Title)
	assert.Equal(t, server.URL+"/news/pushback", second.URL)
	assert.Equal(t, "Operators push back", second.RawText)
}

func TestScraper_Fetch_MaxArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	scraper := NewScraper(Config{
		Listings:    []string{server.URL + "/search"},
		MaxArticles: 1,
	})

	records, err := scraper.Fetch(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestScraper_Fetch_AllListingsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := NewScraper(Config{Listings: []string{server.URL + "/search"}})

	_, err := scraper.Fetch(context.Background(), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSourceUnavailable)
}

func TestScraper_Fetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	scraper := NewScraper(Config{Listings: []string{server.URL + "/search"}})

	_, err := scraper.Fetch(context.Background(), time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimited)
}

func TestScraper_Fetch_PartialListingFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/good", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	})
	mux.HandleFunc("/bad", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	scraper := NewScraper(Config{
		Listings: []string{server.URL + "/bad", server.URL + "/good"},
	})

	records, err := scraper.Fetch(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestResolveLink(t *testing.T) {
	base, err := url.Parse("https://outlet.test/search/?q=transport")
	require.NoError(t, err)

	tests := []struct {
		name string
		href string
		want string
	}{
		{name: "relative path", href: "/news/a1", want: "https://outlet.test/news/a1"},
		{name: "absolute link untouched", href: "https://other.test/b2", want: "https://other.test/b2"},
		{name: "garbage falls back to base", href: "://bad", want: "https://outlet.test/search/?q=transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveLink(base, tt.href))
		})
	}
}
