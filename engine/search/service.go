// Package search orchestrates a full relevance-filtered listing search:
// fetch raw results, evaluate each against the effective constraints, and
// relax once if strict filtering eliminated everything.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/usedlot/carsearch/engine/domain"
	"github.com/usedlot/carsearch/engine/keyword"
	"github.com/usedlot/carsearch/engine/match"
	"github.com/usedlot/carsearch/pkg/fn"
	"github.com/usedlot/carsearch/pkg/metrics"
)

// ListingSource produces raw marketplace results for a criteria set. The
// results are unfiltered; relevance is this package's job.
type ListingSource interface {
	Listings(ctx context.Context, c domain.Criteria) ([]domain.Listing, error)
}

// Event describes one completed search, published to interested consumers.
type Event struct {
	ID          string        `json:"id"`
	Query       string        `json:"query"`
	Make        string        `json:"make,omitempty"`
	Model       string        `json:"model,omitempty"`
	Year        int           `json:"year,omitempty"`
	Pass        string        `json:"pass"`
	RawCount    int           `json:"raw_count"`
	ResultCount int           `json:"result_count"`
	Duration    time.Duration `json:"duration"`
	At          time.Time     `json:"at"`
}

// EventSink receives search-completed events. Delivery is best effort.
type EventSink interface {
	SearchCompleted(ctx context.Context, ev Event)
}

// Options configures optional Service collaborators. Any field may be zero.
type Options struct {
	Workers int
	Logger  *slog.Logger
	Metrics *metrics.Registry
	Sink    EventSink
}

// Service runs searches end to end. It is safe for concurrent use.
type Service struct {
	source    ListingSource
	extractor keyword.Extractor
	eval      *match.Evaluator
	workers   int
	logger    *slog.Logger
	sink      EventSink
	tracer    trace.Tracer

	searches *metrics.Counter
	relaxed  *metrics.Counter
	accepted *metrics.Counter
	rejected *metrics.Counter
	duration *metrics.Histogram
}

// New creates a search Service.
func New(source ListingSource, extractor keyword.Extractor, eval *match.Evaluator, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	s := &Service{
		source:    source,
		extractor: extractor,
		eval:      eval,
		workers:   workers,
		logger:    logger,
		sink:      opts.Sink,
		tracer:    otel.Tracer("carsearch/search"),
	}
	if opts.Metrics != nil {
		s.searches = opts.Metrics.Counter("searches_total", "Searches executed")
		s.relaxed = opts.Metrics.Counter("search_relaxed_total", "Searches that fell back to relaxed criteria")
		s.accepted = opts.Metrics.Counter("listings_accepted_total", "Listings accepted by the relevance filter")
		s.rejected = opts.Metrics.Counter("listings_rejected_total", "Listings rejected by the relevance filter")
		s.duration = opts.Metrics.Histogram("search_duration_seconds", "End-to-end search latency", nil)
	}
	return s
}

// Search fetches raw listings and filters them down to relevant vehicles.
// An empty result set is a normal outcome, not an error. Raw ordering is
// preserved in the returned set.
func (s *Service) Search(ctx context.Context, c domain.Criteria) (domain.ResultSet, error) {
	if err := domain.ValidateCriteria(c); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "search",
		trace.WithAttributes(attribute.String("search.query", c.Query)))
	defer span.End()

	start := time.Now()
	if s.searches != nil {
		s.searches.Inc()
	}

	raw, err := s.source.Listings(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("search: fetch listings: %w", err)
	}

	eff := match.EffectiveFrom(c, s.extractor)
	results := s.filter(ctx, raw, eff, "strict")
	pass := "strict"

	if len(results) == 0 && len(raw) > 0 {
		// Strict constraints eliminated everything. Retry once with year
		// and mileage cleared; make/model stay binding.
		relaxedCrit := c.Relaxed()
		relaxedEff := match.EffectiveFrom(relaxedCrit, s.extractor)
		results = s.filter(ctx, raw, relaxedEff, "relaxed")
		pass = "relaxed"
		if s.relaxed != nil {
			s.relaxed.Inc()
		}
		s.logger.Info("strict pass empty, relaxed year and mileage",
			"query", c.Query, "raw", len(raw), "relaxed_results", len(results))
	}

	elapsed := time.Since(start)
	if s.duration != nil {
		s.duration.Observe(elapsed.Seconds())
	}
	span.SetAttributes(
		attribute.Int("search.raw_count", len(raw)),
		attribute.Int("search.result_count", len(results)),
		attribute.String("search.pass", pass),
	)
	s.logger.Info("search completed",
		"query", c.Query, "pass", pass,
		"raw", len(raw), "results", len(results), "duration", elapsed)

	if s.sink != nil {
		s.sink.SearchCompleted(ctx, Event{
			ID:          uuid.NewString(),
			Query:       c.Query,
			Make:        eff.Make,
			Model:       eff.Model,
			Year:        c.Year,
			Pass:        pass,
			RawCount:    len(raw),
			ResultCount: len(results),
			Duration:    elapsed,
			At:          time.Now().UTC(),
		})
	}
	return results, nil
}

// filter evaluates every raw listing concurrently and keeps accepted ones in
// their original order.
func (s *Service) filter(ctx context.Context, raw []domain.Listing, eff match.Effective, pass string) domain.ResultSet {
	ctx, span := s.tracer.Start(ctx, "search.filter."+pass,
		trace.WithAttributes(attribute.Int("search.candidates", len(raw))))
	defer span.End()

	listings := make([]*domain.Listing, len(raw))
	for i := range raw {
		listings[i] = &raw[i]
	}

	verdicts := fn.ParMap(listings, s.workers, func(l *domain.Listing) bool {
		return s.eval.Evaluate(ctx, l, eff)
	})

	results := make(domain.ResultSet, 0, len(listings))
	for i, ok := range verdicts {
		if ok {
			results = append(results, listings[i])
			if s.accepted != nil {
				s.accepted.Inc()
			}
		} else if s.rejected != nil {
			s.rejected.Inc()
		}
	}
	return results
}
