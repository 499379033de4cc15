// Package opportunity scans a news page for promotional loyalty headlines
package opportunity

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/milhas/internal/cache"
	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/interfaces"
	"github.com/bobmcallan/milhas/internal/models"
)

const cacheKey = "opportunities"

const (
	// MaxOpportunities is the most headlines ever returned.
	MaxOpportunities = 5
	// maxCandidates bounds how many headings are inspected per page.
	maxCandidates = 10
)

// Keywords mark a headline as promotional. Matching is case-insensitive
// substring; accented and plain spellings are both listed.
var Keywords = []string{
	"bônus", "bonus", "100%", "compra",
	"transferência", "transferencia", "transfer",
	"livelo", "esfera", "tudoazul", "latam", "smiles",
}

// Service implements OpportunityService.
type Service struct {
	fetcher interfaces.PageFetcher
	cache   cache.Store
	logger  *common.Logger
	url     string
	ttl     time.Duration
	mu      sync.Mutex
}

// NewService creates a new opportunity service.
// A ttl <= 0 uses common.FreshnessOpportunities.
func NewService(fetcher interfaces.PageFetcher, store cache.Store, url string, ttl time.Duration, logger *common.Logger) *Service {
	if ttl <= 0 {
		ttl = common.FreshnessOpportunities
	}
	return &Service{
		fetcher: fetcher,
		cache:   store,
		logger:  logger,
		url:     url,
		ttl:     ttl,
	}
}

// GetOpportunities returns up to MaxOpportunities headlines. Source failures
// yield an empty list which is not cached, so the next call retries.
func (s *Service) GetOpportunities(ctx context.Context) []models.Opportunity {
	if ops, ok := s.cached(ctx); ok {
		return ops
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ops, ok := s.cached(ctx); ok {
		return ops
	}

	doc, err := s.fetcher.FetchDocument(ctx, s.url)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", s.url).Msg("Opportunity source unavailable")
		return []models.Opportunity{}
	}

	ops := ExtractOpportunities(doc, s.url)
	if err := cache.SetJSON(ctx, s.cache, cacheKey, ops, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache opportunities")
	}

	s.logger.Info().Int("count", len(ops)).Msg("Opportunities refreshed")
	return ops
}

func (s *Service) cached(ctx context.Context) ([]models.Opportunity, bool) {
	ops, found, err := cache.GetJSON[[]models.Opportunity](ctx, s.cache, cacheKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Opportunity cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	if ops == nil {
		ops = []models.Opportunity{}
	}
	return ops, true
}

// ExtractOpportunities collects keyword-matching h2/h3 headlines in document
// order, deduplicated by link. Relative links resolve against pageURL.
func ExtractOpportunities(doc *goquery.Document, pageURL string) []models.Opportunity {
	base, _ := url.Parse(pageURL)
	out := []models.Opportunity{}
	seen := map[string]bool{}

	headings := doc.Find("h2, h3")
	if headings.Length() > maxCandidates {
		headings = headings.Slice(0, maxCandidates)
	}

	headings.Each(func(_ int, h *goquery.Selection) {
		if len(out) >= MaxOpportunities {
			return
		}
		title := strings.Join(strings.Fields(h.Text()), " ")
		if title == "" || !IsPromotional(title) {
			return
		}
		link := resolveLink(headlineHref(h), base)
		if seen[link] {
			return
		}
		seen[link] = true
		out = append(out, models.Opportunity{Title: title, Link: link})
	})

	return out
}

// IsPromotional reports whether a title contains any keyword.
func IsPromotional(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// headlineHref is the heading's own anchor, else the first anchor in its
// parent container.
func headlineHref(h *goquery.Selection) string {
	if href, ok := h.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if href, ok := h.Parent().Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

func resolveLink(href string, base *url.URL) string {
	if href == "" || href == models.PlaceholderLink {
		return models.PlaceholderLink
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil || ref.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
