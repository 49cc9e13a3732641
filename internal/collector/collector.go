package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/domain"
	"pricescout/internal/monitoring"
	"pricescout/internal/render"
	"pricescout/internal/source"
	"pricescout/internal/storage"
)

// Collector fans a search query out over one or many sources, each on
// its own rendered page, and merges the results. A failing source
// contributes nothing and never aborts its siblings.
type Collector struct {
	registry *source.Registry
	renderer render.Renderer
	cache    *storage.RedisStore // optional, nil disables caching
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	maxItems int
	cacheTTL time.Duration
}

// Result is the merged outcome of one fan-out. Products are concatenated
// in the order the source keys were given; Errors maps failed source
// keys to a human-readable reason.
type Result struct {
	Products []domain.Product
	Errors   map[string]string
}

func New(reg *source.Registry, r render.Renderer, cache *storage.RedisStore, m *monitoring.Metrics, l *zap.Logger, maxItems int, cacheTTL time.Duration) *Collector {
	return &Collector{
		registry: reg,
		renderer: r,
		cache:    cache,
		metrics:  m,
		logger:   l,
		maxItems: maxItems,
		cacheTTL: cacheTTL,
	}
}

// CollectAll runs the query against every registered source.
func (c *Collector) CollectAll(ctx context.Context, query string) Result {
	return c.Collect(ctx, c.registry.Keys(), query)
}

// Collect runs the query against the given sources concurrently and
// merges successful results in key order.
func (c *Collector) Collect(ctx context.Context, keys []string, query string) Result {
	type sourceResult struct {
		products []domain.Product
		err      error
	}

	results := make([]sourceResult, len(keys))
	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			products, err := c.collectOne(ctx, key, query)
			results[i] = sourceResult{products: products, err: err}
		}(i, key)
	}
	wg.Wait()

	merged := Result{Errors: make(map[string]string)}
	for i, key := range keys {
		if results[i].err != nil {
			merged.Errors[key] = results[i].err.Error()
			continue
		}
		merged.Products = append(merged.Products, results[i].products...)
	}
	return merged
}

func (c *Collector) collectOne(ctx context.Context, key, query string) ([]domain.Product, error) {
	cfg, err := c.registry.Get(key)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if products, ok, err := c.cache.GetCachedResults(ctx, key, query); err == nil && ok {
			c.metrics.IncScrapes(key, "cached")
			return products, nil
		}
	}

	start := time.Now()
	htmlContent, err := c.renderer.Render(ctx, cfg.BuildSearchURL(query), cfg.ReadySelector)
	if err != nil {
		c.logger.Warn("render failed", zap.String("source", key), zap.Error(err))
		c.metrics.IncScrapes(key, "failed")
		return nil, err
	}

	products, dropped, err := source.Extract(cfg, htmlContent, c.maxItems)
	c.metrics.ObserveScrapeDuration(key, time.Since(start).Seconds())
	if err != nil {
		c.metrics.IncScrapes(key, "failed")
		return nil, err
	}
	for i := 0; i < dropped; i++ {
		c.metrics.IncCardsDropped(key)
	}
	c.metrics.IncScrapes(key, "ok")
	c.logger.Info("source scraped",
		zap.String("source", key),
		zap.String("query", query),
		zap.Int("products", len(products)),
		zap.Int("dropped", dropped))

	if c.cache != nil && len(products) > 0 {
		if err := c.cache.CacheResults(ctx, key, query, products, c.cacheTTL); err != nil {
			c.logger.Warn("failed to cache results", zap.String("source", key), zap.Error(err))
		}
	}
	return products, nil
}
