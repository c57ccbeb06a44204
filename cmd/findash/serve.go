package main

import (
	"github.com/danielvsantos/finance-dashboard/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics query API over HTTP",
		Long: `Start an HTTP server exposing the read side: GET /api/analytics
for cached aggregates, GET /api/rate-gaps for the missing-rate report,
and GET /health. The server shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return err
	}

	srv := server.New(store, server.Config{
		Addr:             viper.GetString("server.addr"),
		TargetCurrencies: targetCurrencies(nil),
	})

	return srv.Run(cmd.Context())
}
