package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/config"
	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
	"github.com/mkamanzi/farepulse/internal/storage"
)

// defaultSinceDays is how far back collection reaches when --since is
// not given.
const defaultSinceDays = 7

// initStorage opens the configured database and brings the schema up
// to date.
func initStorage(ctx context.Context) (service.Store, error) {
	store, err := storage.NewSQLiteStore(databasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		closeStore(store)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func databasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/farepulse/farepulse.db"
	}
	return config.ExpandPath(dbPath)
}

func closeStore(store service.Store) {
	if err := store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// parseSince interprets a --since value. Empty means a week back.
func parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC().AddDate(0, 0, -defaultSinceDays), nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid since value %q, want YYYY-MM-DD or RFC3339", raw)
}

// parseWindow interprets a --window value.
func parseWindow(raw string) (model.Window, error) {
	window, ok := model.ParseWindow(raw)
	if !ok {
		return "", fmt.Errorf("unknown window %q, want hour, day or week", raw)
	}
	return window, nil
}
