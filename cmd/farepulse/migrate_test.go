package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestRunMigrate(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("database.path", filepath.Join(t.TempDir(), "farepulse.db"))

	cmd := migrateCmd()
	cmd.SetContext(context.Background())

	require.NoError(t, runMigrate(cmd, nil))

	// Re-running against an up-to-date schema is a no-op.
	require.NoError(t, runMigrate(cmd, nil))

	// Status-only reports without touching the schema.
	require.NoError(t, cmd.Flags().Set("status", "true"))
	require.NoError(t, runMigrate(cmd, nil))
}
