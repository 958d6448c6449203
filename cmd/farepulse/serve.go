package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamanzi/farepulse/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sentiment dashboard",
		Long: `Start the HTTP dashboard with the sentiment summary, trend chart
and record browser, plus a JSON API and Prometheus metrics under the
same address.

With --demo (or an empty database) the dashboard serves a built-in
sample dataset, which is handy for trying the UI before wiring up any
sources.

Examples:
  farepulse serve                 # http://localhost:8050
  farepulse serve --addr :9000
  farepulse serve --demo          # built-in sample data`,
		RunE: runServe,
	}

	// Flags
	cmd.Flags().String("addr", ":8050", "address to listen on")
	cmd.Flags().String("window", "day", "trend bucket size (hour, day, week)")
	cmd.Flags().Bool("demo", false, "serve built-in sample data")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.window", cmd.Flags().Lookup("window"))
	_ = viper.BindPFlag("serve.demo", cmd.Flags().Lookup("demo"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	window, err := parseWindow(viper.GetString("serve.window"))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStore(store)

	config := server.DefaultConfig()
	config.Addr = viper.GetString("serve.addr")
	config.Window = window
	config.Demo = viper.GetBool("serve.demo")

	return server.New(store, config).Start(ctx)
}
