package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/common"
	"github.com/danielvsantos/finance-dashboard/internal/rates"
	"github.com/danielvsantos/finance-dashboard/internal/storage"
	"github.com/spf13/viper"
)

// openStorage opens the configured SQLite database, falling back to the
// default path under the user's data directory.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "findash", "findash.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// targetCurrencies resolves the configured target currency set, with the
// command flag taking precedence over config.
func targetCurrencies(flagValue []string) []string {
	if len(flagValue) > 0 {
		return flagValue
	}
	if configured := viper.GetStringSlice("analytics.target_currencies"); len(configured) > 0 {
		return configured
	}
	return nil
}

// resolverConfig builds the rate resolver configuration from viper.
func resolverConfig() rates.Config {
	config := rates.DefaultConfig()
	if throttle := viper.GetDuration("rates.throttle"); throttle > 0 {
		config.Throttle = throttle
	}
	return config
}

// rateClient builds the external rate provider client from configuration.
func rateClient() (*rates.Client, error) {
	client, err := rates.NewClient(
		viper.GetString("rates.base_url"),
		viper.GetString("rates.api_key"),
	)
	if err != nil {
		return nil, common.NewUserError(
			"rate provider is not configured; set rates.api_key in the config file or FINDASH_RATES_API_KEY", err)
	}
	return client, nil
}

// formatDuration renders elapsed run time for the aggregate summary.
func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
