package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"price-tracker/internal/fetcher"
	"price-tracker/internal/scrape"
	"price-tracker/internal/storage"
)

// Drop records a strict price decrease between the most recent prior
// observation and today's for the same identity.
type Drop struct {
	ProductName string
	Site        string
	OldPrice    decimal.Decimal
	NewPrice    decimal.Decimal
	URL         string
}

// Result aggregates one run: the observations recorded this run in URL
// processing order, the detected drops, and the count of skipped URLs.
type Result struct {
	Summary []storage.Observation
	Drops   []Drop
	Skipped int
}

// Service orchestrates fetching, extraction, persistence, and drop detection.
type Service struct {
	urls       []string
	fetcher    fetcher.PageFetcher
	dispatcher *scrape.Dispatcher
	store      storage.HistoryStore
	logger     zerolog.Logger

	now func() time.Time
}

// New constructs the tracking service.
func New(urls []string, pages fetcher.PageFetcher, dispatcher *scrape.Dispatcher, store storage.HistoryStore, logger zerolog.Logger) *Service {
	return &Service{
		urls:       urls,
		fetcher:    pages,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger.With().Str("component", "tracker").Logger(),
		now:        time.Now,
	}
}

// Run processes the configured URLs strictly in order. Per-URL failures
// (fetch errors, unsupported sites, unparseable prices) are logged and
// skipped; only a history load or final save failure aborts the run.
// Drop detection compares against the table snapshot loaded at run
// start, never against rows written earlier in the same run.
func (s *Service) Run(ctx context.Context) (Result, error) {
	baseline, err := s.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load history: %w", err)
	}

	working := baseline
	today := dateOnly(s.now().UTC())
	seen := make(map[string]struct{}, len(s.urls))

	var result Result
	for _, url := range s.urls {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		obs, ok := s.observe(ctx, url, today, seen)
		if !ok {
			result.Skipped++
			continue
		}

		prior, hasPrior := baseline.LatestPrior(obs.ProductID)

		working = working.Append(obs)
		result.Summary = append(result.Summary, obs)

		if hasPrior && obs.Price.LessThan(prior) {
			result.Drops = append(result.Drops, Drop{
				ProductName: obs.ProductName,
				Site:        obs.Site,
				OldPrice:    prior,
				NewPrice:    obs.Price,
				URL:         url,
			})
			s.logger.Info().
				Str("product", obs.ProductName).
				Str("old_price", prior.String()).
				Str("new_price", obs.Price.String()).
				Msg("price drop detected")
		}
	}

	if err := s.store.Save(working); err != nil {
		return Result{}, fmt.Errorf("save history: %w", err)
	}

	s.logger.Info().
		Int("tracked", len(result.Summary)).
		Int("drops", len(result.Drops)).
		Int("skipped", result.Skipped).
		Msg("tracking run completed")

	return result, nil
}

// observe runs the per-URL pipeline. A false return is a soft failure,
// already logged.
func (s *Service) observe(ctx context.Context, url string, today time.Time, seen map[string]struct{}) (storage.Observation, bool) {
	content, err := s.fetcher.FetchPage(ctx, url)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("fetch failed, skipping")
		return storage.Observation{}, false
	}

	adapter, err := s.dispatcher.ForURL(url)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("unsupported site, skipping")
		return storage.Observation{}, false
	}

	extracted, err := adapter.Extract(content)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("extraction failed, skipping")
		return storage.Observation{}, false
	}

	price, ok := scrape.NormalizePrice(extracted.RawPrice)
	if !ok {
		s.logger.Warn().Str("url", url).Str("raw_price", extracted.RawPrice).Msg("no parseable price, skipping")
		return storage.Observation{}, false
	}

	id := scrape.DeriveID(url)
	if _, dup := seen[id]; dup {
		s.logger.Warn().Str("url", url).Str("product_id", id).Msg("identity already observed this run, skipping")
		return storage.Observation{}, false
	}
	seen[id] = struct{}{}

	return storage.Observation{
		ProductID:   id,
		ProductName: extracted.Name,
		Site:        string(adapter.Site()),
		Date:        today,
		Price:       price,
	}, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
