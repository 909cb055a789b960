// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"time"
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string         // API key for authentication
	BaseURL          string         // Base URL for the API (e.g., "https://api.twelvedata.com")
	Location         *time.Location // reference timezone for "today"
}
