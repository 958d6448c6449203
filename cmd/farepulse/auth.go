package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services like Google Sheets.`,
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a Google consent URL to open in your browser
2. Wait for the redirect with the authorization code
3. Save the refresh token to your config file

You'll need to run this once before 'farepulse export --sheets'.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Get OAuth2 config
	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	// Override with flags if provided
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	// Check for environment variables as fallback
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}

	tokenFile, err := sheetsTokenFile()
	if err != nil {
		return err
	}

	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	config := sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	}

	token, err := sheets.AuthenticateOAuth2Interactive(ctx, config)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	// Update config file with refresh token
	viper.Set("sheets.refresh_token", token.RefreshToken)

	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		slog.Info("Please add this to your config.yaml manually:")
		slog.Info(fmt.Sprintf("sheets:\n  refresh_token: %q", token.RefreshToken))
		slog.Info(fmt.Sprintf("or export GOOGLE_SHEETS_REFRESH_TOKEN=%q", token.RefreshToken))
	} else {
		slog.Info("Updated config file with refresh token")
		slog.Info("✅ Authentication successful!")
	}

	slog.Info("📊 Google Sheets is now configured and ready to use.")
	slog.Info("Run 'farepulse export --sheets' to upload a report.")

	return nil
}

func sheetsTokenFile() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "farepulse", "sheets-token.json"), nil
}

func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".config", "farepulse", "config.yaml")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}

	return viper.WriteConfigAs(configFile)
}
