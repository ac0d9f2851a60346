package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"vehicle-storefront/models"
	"vehicle-storefront/storage"
	"vehicle-storefront/utils"
)

// CatalogResult is what one filter yielded.
type CatalogResult struct {
	Filter models.ListingFilter
	Items  []*models.VehicleSummary
	Pages  int
	Err    error
}

// Catalog drains several listing filters through their own loaders. At most
// concurrency filters run at once and page fetches across all of them are
// spaced by the rate limit.
type Catalog struct {
	source      storage.VehicleSource
	validator   *Validator
	logger      *utils.Logger
	cfg         LoaderConfig
	concurrency int
	rateLimitMs int
	maxPages    int
}

// NewCatalog creates a Catalog. maxPages <= 0 means no page limit.
func NewCatalog(source storage.VehicleSource, validator *Validator, logger *utils.Logger,
	cfg LoaderConfig, concurrency, rateLimitMs, maxPages int) *Catalog {
	return &Catalog{
		source:      source,
		validator:   validator,
		logger:      logger,
		cfg:         cfg,
		concurrency: concurrency,
		rateLimitMs: rateLimitMs,
		maxPages:    maxPages,
	}
}

// Collect loads every filter until its list is exhausted, the page limit is
// reached or a page fails. Results keep the order of filters.
func (c *Catalog) Collect(ctx context.Context, filters []models.ListingFilter) []CatalogResult {
	results := make([]CatalogResult, len(filters))
	limiter := c.limiter()

	var g errgroup.Group
	g.SetLimit(max(c.concurrency, 1))
	for i, f := range filters {
		i, f := i, f
		g.Go(func() error {
			results[i] = c.drain(ctx, limiter, f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Catalog) limiter() *rate.Limiter {
	if c.rateLimitMs <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(c.rateLimitMs)*time.Millisecond), 1)
}

func (c *Catalog) drain(ctx context.Context, limiter *rate.Limiter, filter models.ListingFilter) CatalogResult {
	res := CatalogResult{Filter: filter}
	loader := NewLoader(c.source, c.validator, c.logger, filter, c.cfg)

	err := limiter.Wait(ctx)
	if err == nil {
		err = loader.Refresh(ctx)
		res.Pages = 1
	}
	for err == nil {
		if c.maxPages > 0 && res.Pages >= c.maxPages {
			break
		}
		if _, hasMore := loader.Status(); !hasMore {
			break
		}
		if err = limiter.Wait(ctx); err != nil {
			break
		}
		err = loader.LoadMore(ctx)
		res.Pages++
	}

	st := loader.State()
	res.Items = st.Items
	res.Err = err
	if err != nil {
		c.logger.Warn("[catalog] %s stopped after %d pages: %v", filter, res.Pages, err)
	} else {
		c.logger.Info("[catalog] %s: %d listings in %d pages", filter, len(res.Items), res.Pages)
	}
	return res
}

// MergeUnique flattens results in order, keeping the first occurrence of
// each listing id.
func MergeUnique(results []CatalogResult) []*models.VehicleSummary {
	seen := utils.NewIDSet()
	var out []*models.VehicleSummary
	for _, r := range results {
		for _, v := range r.Items {
			if seen.Add(v.ID) {
				out = append(out, v)
			}
		}
	}
	return out
}
