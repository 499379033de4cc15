// Package interfaces defines service contracts for Milhas
package interfaces

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher retrieves and parses a single HTML page
type PageFetcher interface {
	// FetchDocument issues one GET and returns the parsed document.
	// Non-2xx responses, timeouts and network failures are errors.
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// GeminiClient provides AI text generation
type GeminiClient interface {
	// GenerateContent generates text from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// Model returns the configured model name
	Model() string
}
