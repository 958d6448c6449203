package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/config"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
	"github.com/mkamanzi/farepulse/internal/source/newsscrape"
	"github.com/mkamanzi/farepulse/internal/source/reddit"
	"github.com/mkamanzi/farepulse/internal/source/rss"
	"github.com/mkamanzi/farepulse/internal/source/survey"
)

// resolveSources returns the source names a collection should cover and
// whether the user picked them explicitly. Explicit selection comes
// from the --sources flag or the sources.enabled config key; otherwise
// every known source is attempted.
func resolveSources(flagValue []string) ([]string, bool) {
	if len(flagValue) > 0 {
		return flagValue, true
	}
	if configured := viper.GetStringSlice("sources.enabled"); len(configured) > 0 {
		return configured, true
	}

	names := make([]string, 0, len(model.AllSources()))
	for _, s := range model.AllSources() {
		names = append(names, string(s))
	}
	return names, false
}

// buildCollectors constructs the collectors for the requested sources.
// An unbuildable source is an error under explicit selection and a
// logged skip otherwise, so an unconfigured install still collects
// what it can.
func buildCollectors(names []string, explicit bool) ([]service.Collector, error) {
	var collectors []service.Collector

	for _, name := range names {
		built, err := buildSource(name)
		if err != nil {
			if explicit {
				return nil, err
			}
			slog.Warn("Source skipped", "source", name, "reason", err)
			continue
		}
		collectors = append(collectors, built...)
	}

	if len(collectors) == 0 {
		return nil, fmt.Errorf("no sources available; configure credentials or pass --sources")
	}
	return collectors, nil
}

// buildSource maps one source name to its collectors. News gets two:
// the feed poller and the listing-page scraper.
func buildSource(name string) ([]service.Collector, error) {
	switch model.Source(name) {
	case model.SourceSocial:
		client, err := reddit.NewClient(redditConfig())
		if err != nil {
			return nil, err
		}
		return []service.Collector{client}, nil

	case model.SourceNews:
		feeds := rss.NewCollector(rss.Config{
			Keywords:    viper.GetStringSlice("sources.news.keywords"),
			DirectFeeds: viper.GetStringSlice("sources.news.feeds"),
			MaxItems:    viper.GetInt("sources.news.max_items"),
		})
		scraper := newsscrape.NewScraper(newsscrape.Config{
			Listings:    viper.GetStringSlice("sources.news.listings"),
			MaxArticles: viper.GetInt("sources.news.max_articles"),
		})
		return []service.Collector{feeds, scraper}, nil

	case model.SourceSurvey:
		paths := surveyPaths()
		if len(paths) == 0 {
			return nil, fmt.Errorf("no survey exports configured; set sources.survey.paths")
		}
		return []service.Collector{survey.NewImporter(survey.Config{Paths: paths})}, nil

	default:
		return nil, fmt.Errorf("unknown source %q (valid: social, news, survey)", name)
	}
}

func redditConfig() reddit.Config {
	cfg := reddit.Config{
		ClientID:        viper.GetString("sources.social.client_id"),
		ClientSecret:    viper.GetString("sources.social.client_secret"),
		Keywords:        viper.GetStringSlice("sources.social.keywords"),
		MaxPosts:        viper.GetInt("sources.social.max_posts"),
		CommentsPerPost: viper.GetInt("sources.social.comments_per_post"),
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("REDDIT_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
	}
	return cfg
}

func surveyPaths() []string {
	paths := viper.GetStringSlice("sources.survey.paths")
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, config.ExpandPath(p))
	}
	return out
}

func retryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}
