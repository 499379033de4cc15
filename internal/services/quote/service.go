// Package quote provides market quotes per loyalty program, scraped from a
// reference page with a cached and static fallback
package quote

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/milhas/internal/cache"
	"github.com/bobmcallan/milhas/internal/common"
	"github.com/bobmcallan/milhas/internal/interfaces"
	"github.com/bobmcallan/milhas/internal/models"
)

// Cache keys. The last-known entry never expires and seeds the base values
// when the source cannot be read.
const (
	cacheKey     = "quotes"
	lastKnownKey = "quotes:last_known"
)

// FallbackQuotes is the terminal safety net: one fixed price per program.
var FallbackQuotes = models.Quotes{
	models.ProgramSmiles:    17.60,
	models.ProgramLatamPass: 23.20,
	models.ProgramTudoAzul:  19.80,
}

// programToken maps a label substring to a program.
type programToken struct {
	token   string
	program string
}

// programTokens is ordered; the first token found in a label wins.
var programTokens = []programToken{
	{token: "smiles", program: models.ProgramSmiles},
	{token: "latam", program: models.ProgramLatamPass},
	{token: "azul", program: models.ProgramTudoAzul},
}

// Service implements QuoteService.
type Service struct {
	fetcher interfaces.PageFetcher
	cache   cache.Store
	logger  *common.Logger
	url     string
	ttl     time.Duration
	mu      sync.Mutex // serialises refreshes so a miss triggers one fetch
}

// NewService creates a new quote service.
// A ttl <= 0 uses common.FreshnessQuotes.
func NewService(fetcher interfaces.PageFetcher, store cache.Store, url string, ttl time.Duration, logger *common.Logger) *Service {
	if ttl <= 0 {
		ttl = common.FreshnessQuotes
	}
	return &Service{
		fetcher: fetcher,
		cache:   store,
		logger:  logger,
		url:     url,
		ttl:     ttl,
	}
}

// GetQuotes returns the quote table. A fresh cache entry is returned without
// touching the network; otherwise the source page is scraped once and any
// program it does not yield keeps its last-known or fallback price.
//
// The refresh ignores cancellation of ctx and is bounded by the fetcher's
// own timeout, so a caller that goes away cannot leave the fallback table
// cached in place of the real source.
func (s *Service) GetQuotes(ctx context.Context) models.Quotes {
	ctx = context.WithoutCancel(ctx)

	if q, ok := s.cached(ctx, cacheKey); ok {
		return q
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.cached(ctx, cacheKey); ok {
		return q
	}

	result := s.baseline(ctx)

	parsed, err := s.scrape(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", s.url).Msg("Quote source unavailable, serving previous values")
	}
	for program, price := range parsed {
		result[program] = price
	}

	if err := cache.SetJSON(ctx, s.cache, lastKnownKey, result, 0); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to store last-known quotes")
	}
	if err := cache.SetJSON(ctx, s.cache, cacheKey, result, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache quotes")
	}

	s.logger.Info().Int("parsed", len(parsed)).Int("programs", len(result)).Msg("Quotes refreshed")
	return result
}

func (s *Service) cached(ctx context.Context, key string) (models.Quotes, bool) {
	q, found, err := cache.GetJSON[models.Quotes](ctx, s.cache, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Quote cache read failed")
		return nil, false
	}
	if !found || len(q) == 0 {
		return nil, false
	}
	return q, true
}

// baseline is the fallback table overlaid with the last values served.
func (s *Service) baseline(ctx context.Context) models.Quotes {
	base := FallbackQuotes.Clone()
	if last, ok := s.cached(ctx, lastKnownKey); ok {
		for program, price := range last {
			base[program] = price
		}
	}
	return base
}

// scrape fetches the source page and extracts prices from it.
func (s *Service) scrape(ctx context.Context) (models.Quotes, error) {
	doc, err := s.fetcher.FetchDocument(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return ParseQuotes(doc, s.logger), nil
}

// ParseQuotes extracts program prices from every relevant table in the
// document. Later rows for the same program overwrite earlier ones.
func ParseQuotes(doc *goquery.Document, logger *common.Logger) models.Quotes {
	out := models.Quotes{}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if !isRelevant(table.Text()) {
			return
		}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return
			}
			label := strings.TrimSpace(cells.Eq(0).Text())
			program, ok := matchProgram(label)
			if !ok {
				return
			}
			raw := strings.TrimSpace(cells.Eq(1).Text())
			price, ok := ParsePrice(raw)
			if !ok {
				logger.Debug().Str("program", program).Str("cell", raw).Msg("Unparseable price cell skipped")
				return
			}
			out[program] = price
		})
	})

	return out
}

func isRelevant(text string) bool {
	lower := strings.ToLower(text)
	for _, pt := range programTokens {
		if strings.Contains(lower, pt.token) {
			return true
		}
	}
	return false
}

func matchProgram(label string) (string, bool) {
	lower := strings.ToLower(label)
	for _, pt := range programTokens {
		if strings.Contains(lower, pt.token) {
			return pt.program, true
		}
	}
	return "", false
}
