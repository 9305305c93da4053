package pagination

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// WarmConfig holds warmer configuration.
type WarmConfig struct {
	// MaxConcurrency is the maximum number of parallel page loads.
	MaxConcurrency int
	// Timeout per page wait.
	Timeout time.Duration
}

// DefaultWarmConfig returns a conservative configuration for the public API.
func DefaultWarmConfig() WarmConfig {
	return WarmConfig{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher waits for a page to be present in the query cache.
type PageFetcher interface {
	Fetch(ctx context.Context, key cache.QueryKey) (*client.CharacterPage, error)
}

// Warmer preloads a leading range of pages into the query cache.
type Warmer struct {
	fetcher PageFetcher
	config  WarmConfig
}

// NewWarmer creates a new warmer.
func NewWarmer(fetcher PageFetcher, config WarmConfig) *Warmer {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Warmer{
		fetcher: fetcher,
		config:  config,
	}
}

// Warm loads pages 1..pages (capped at the page count reported by page 1).
// Failures of individual pages are logged and skipped; only a failure of
// page 1 or cancellation of ctx is returned. It returns the number of pages
// that are Ready afterwards.
func (w *Warmer) Warm(ctx context.Context, pages int) (int, error) {
	if pages < 1 {
		return 0, nil
	}
	start := time.Now()

	firstCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	first, err := w.fetcher.Fetch(firstCtx, cache.NewQueryKey(1))
	cancel()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch first page: %w", err)
	}

	limit := pages
	if first.TotalPages < limit {
		limit = first.TotalPages
	}

	log.Info().
		Int("requested", pages).
		Int("total_pages", first.TotalPages).
		Int("warming", limit).
		Msg("Starting cache warmup")

	warmed := int64(1)
	if limit <= 1 {
		return int(warmed), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.MaxConcurrency)

	for page := 2; page <= limit; page++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			pageCtx, cancel := context.WithTimeout(gctx, w.config.Timeout)
			defer cancel()

			if _, err := w.fetcher.Fetch(pageCtx, cache.NewQueryKey(page)); err != nil {
				log.Warn().
					Err(err).
					Int("page", page).
					Msg("Warmup page failed")
				return nil
			}

			if n := atomic.AddInt64(&warmed, 1); n%10 == 0 {
				log.Info().
					Int64("warmed", n).
					Int("total", limit).
					Msg("Warmup progress")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(atomic.LoadInt64(&warmed)), fmt.Errorf("warmup interrupted: %w", err)
	}

	log.Info().
		Int64("pages", atomic.LoadInt64(&warmed)).
		Dur("duration", time.Since(start)).
		Msg("Warmup complete")

	return int(atomic.LoadInt64(&warmed)), nil
}
