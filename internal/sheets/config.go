// Package sheets provides Google Sheets API integration for report export.
package sheets

import (
	"fmt"
	"os"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/common"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TimeZone:      "UTC",
		BatchSize:     1000,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv loads the configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	c.ClientID = os.Getenv("FINDASH_SHEETS_CLIENT_ID")
	c.ClientSecret = os.Getenv("FINDASH_SHEETS_CLIENT_SECRET")
	c.RefreshToken = os.Getenv("FINDASH_SHEETS_REFRESH_TOKEN")

	// Service account path is the alternative to OAuth2
	c.ServiceAccountPath = os.Getenv("FINDASH_SHEETS_SERVICE_ACCOUNT_PATH")

	c.SpreadsheetID = os.Getenv("FINDASH_SHEETS_SPREADSHEET_ID")
	c.SpreadsheetName = os.Getenv("FINDASH_SHEETS_SPREADSHEET_NAME")

	if c.SpreadsheetName == "" {
		c.SpreadsheetName = "P&L Report"
	}

	return c.Validate()
}

// Validate checks that at least one authentication method is configured.
func (c *Config) Validate() error {
	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return fmt.Errorf("%w: Google Sheets needs either a service account path or OAuth2 credentials", common.ErrMissingConfig)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	return nil
}
