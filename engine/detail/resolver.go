package detail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/usedlot/carsearch/engine/domain"
	"github.com/usedlot/carsearch/pkg/metrics"
	"github.com/usedlot/carsearch/pkg/resilience"
)

// Fetcher is the expensive external detail-fetch collaborator.
type Fetcher interface {
	FetchDetails(ctx context.Context, listingID string) (Payload, error)
}

// Cache stores resolved attribute records under listing IDs. The host owns
// the implementation and its time-to-live. A stored nil is a valid entry:
// it records that the listing carries no attributes.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.VehicleAttributes, bool)
	Set(ctx context.Context, key string, attrs *domain.VehicleAttributes)
}

// Resolver fetches and normalizes vehicle attributes, at most once per
// listing within the cache TTL. Fetch failures surface as errors to the
// caller, which treats them as "details unavailable" rather than fatal.
type Resolver struct {
	fetcher Fetcher
	cache   Cache
	breaker *resilience.Breaker
	logger  *slog.Logger

	fetchOK   *metrics.Counter
	fetchErr  *metrics.Counter
	cacheHits *metrics.Counter
}

// Options configures optional Resolver collaborators. Any field may be nil.
type Options struct {
	Cache   Cache
	Breaker *resilience.Breaker
	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// NewResolver creates a Resolver around the given fetcher.
func NewResolver(fetcher Fetcher, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		fetcher: fetcher,
		cache:   opts.Cache,
		breaker: opts.Breaker,
		logger:  logger,
	}
	if opts.Metrics != nil {
		r.fetchOK = opts.Metrics.Counter(metrics.WithLabels("detail_fetch_total", "result", "ok"), "Detail fetches by result")
		r.fetchErr = opts.Metrics.Counter(metrics.WithLabels("detail_fetch_total", "result", "error"), "Detail fetches by result")
		r.cacheHits = opts.Metrics.Counter("detail_cache_hits_total", "Detail cache hits")
	}
	return r
}

// Resolve returns the normalized attributes for a listing, or (nil, nil)
// when the listing has no attribute block. The result, including the nil
// case, is cached so a relaxation re-pass never refetches.
func (r *Resolver) Resolve(ctx context.Context, listingID string) (*domain.VehicleAttributes, error) {
	if r.cache != nil {
		if attrs, ok := r.cache.Get(ctx, listingID); ok {
			if r.cacheHits != nil {
				r.cacheHits.Inc()
			}
			return attrs, nil
		}
	}

	var payload Payload
	fetch := func(ctx context.Context) error {
		var err error
		payload, err = r.fetcher.FetchDetails(ctx, listingID)
		return err
	}

	var err error
	if r.breaker != nil {
		err = r.breaker.Call(ctx, fetch)
	} else {
		err = fetch(ctx)
	}
	if err != nil {
		if r.fetchErr != nil {
			r.fetchErr.Inc()
		}
		return nil, fmt.Errorf("detail: fetch %s: %w", listingID, err)
	}
	if r.fetchOK != nil {
		r.fetchOK.Inc()
	}

	attrs := payload.Attributes()
	if attrs == nil {
		r.logger.Debug("listing has no vehicle attributes", "listing_id", listingID)
	}
	if r.cache != nil {
		r.cache.Set(ctx, listingID, attrs)
	}
	return attrs, nil
}
