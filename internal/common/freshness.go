// Package common provides shared utilities for Milhas
package common

import "time"

// Freshness TTLs for scraped data
const (
	FreshnessQuotes        = 1 * time.Hour
	FreshnessOpportunities = 30 * time.Minute
)

// DefaultUserAgent is sent with every scrape request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) MilhasApp/1.0"

// IsFresh returns true if the given timestamp is within the TTL at now.
func IsFresh(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
