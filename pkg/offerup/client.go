// Package offerup is the marketplace HTTP client. It serves as both the raw
// listing source and the per-listing detail fetcher for the search engine.
package offerup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/usedlot/carsearch/engine/detail"
	"github.com/usedlot/carsearch/engine/domain"
	"github.com/usedlot/carsearch/pkg/fn"
)

// Nationwide search fallback: geographic center of the contiguous US
// (Lebanon, Kansas) with the widest pickup radius the feed accepts.
const (
	NationwideLat    = 39.8283
	NationwideLon    = -98.5795
	NationwideRadius = 500

	DefaultLimit          = 50
	DefaultPickupDistance = 50
)

// Client talks to an OfferUp-style listings API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   fn.RetryOpts
	logger  *slog.Logger
}

// ClientOpts configures a Client. Zero fields get defaults.
type ClientOpts struct {
	Timeout time.Duration
	// RPS caps outbound requests per second. Zero means 5.
	RPS    float64
	Burst  int
	Retry  fn.RetryOpts
	Logger *slog.Logger
}

// NewClient creates a marketplace client for the given base URL.
func NewClient(baseURL string, opts ClientOpts) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = fn.DefaultRetry
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		retry:   opts.Retry,
		logger:  logger,
	}
}

// searchRequest is the upstream feed's search body.
type searchRequest struct {
	Query          string   `json:"query"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	State          string   `json:"state,omitempty"`
	City           string   `json:"city,omitempty"`
	Limit          int      `json:"limit"`
	PickupDistance int      `json:"pickupDistance"`
	PriceMin       *int     `json:"priceMin,omitempty"`
	PriceMax       *int     `json:"priceMax,omitempty"`
	Sort           string   `json:"sort,omitempty"`
	Delivery       string   `json:"delivery,omitempty"`
	Conditions     []string `json:"conditions,omitempty"`
}

// rawListing is one search-feed result entry.
type rawListing struct {
	ListingID     string `json:"listingId"`
	Title         string `json:"title"`
	Price         string `json:"price"`
	LocationName  string `json:"locationName"`
	ListingURL    string `json:"listingUrl"`
	ConditionText string `json:"conditionText"`
	Image         struct {
		URL string `json:"url"`
	} `json:"image"`
}

type searchResponse struct {
	Listings []rawListing `json:"listings"`
}

// buildRequest maps search criteria onto the feed's body, applying the
// nationwide fallback when no location was given.
func buildRequest(c domain.Criteria) searchRequest {
	req := searchRequest{
		Query:          c.Query,
		Limit:          c.Limit,
		PickupDistance: c.PickupDistance,
		PriceMin:       c.PriceMin,
		PriceMax:       c.PriceMax,
		Sort:           string(c.Sort),
		Delivery:       string(c.Delivery),
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.PickupDistance <= 0 {
		req.PickupDistance = DefaultPickupDistance
	}
	for _, cond := range c.Conditions {
		req.Conditions = append(req.Conditions, string(cond))
	}

	switch {
	case c.Lat != nil && c.Lon != nil:
		req.Lat = *c.Lat
		req.Lon = *c.Lon
	case c.State != "":
		req.State = c.State
		req.City = c.City
	default:
		req.Lat = NationwideLat
		req.Lon = NationwideLon
		req.PickupDistance = NationwideRadius
	}
	return req
}

// Listings fetches raw search results for the criteria. No relevance
// filtering happens here.
func (c *Client) Listings(ctx context.Context, crit domain.Criteria) ([]domain.Listing, error) {
	body, err := json.Marshal(buildRequest(crit))
	if err != nil {
		return nil, fmt.Errorf("offerup: encode search request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/search", body)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(resp, &sr); err != nil {
		return nil, fmt.Errorf("offerup: decode search response: %w", err)
	}
	c.logger.Debug("search feed returned", "count", len(sr.Listings))

	return fn.Map(sr.Listings, func(r rawListing) domain.Listing {
		return domain.Listing{
			ID:            r.ListingID,
			Title:         r.Title,
			Price:         r.Price,
			LocationName:  r.LocationName,
			ListingURL:    r.ListingURL,
			ConditionText: r.ConditionText,
			ImageURL:      r.Image.URL,
		}
	}), nil
}

// FetchDetails retrieves the full detail payload for one listing.
func (c *Client) FetchDetails(ctx context.Context, listingID string) (detail.Payload, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/listing/"+listingID, nil)
	if err != nil {
		return detail.Payload{}, err
	}
	var p detail.Payload
	if err := json.Unmarshal(resp, &p); err != nil {
		return detail.Payload{}, fmt.Errorf("offerup: decode detail payload: %w", err)
	}
	return p, nil
}

// do executes one rate-limited, retried request and returns the body.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	result := fn.Retry(ctx, c.retry, func(ctx context.Context) fn.Result[[]byte] {
		if err := c.limiter.Wait(ctx); err != nil {
			return fn.Err[[]byte](err)
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
		if err != nil {
			return fn.Err[[]byte](err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fn.Errf[[]byte]("offerup: %s %s: %v", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fn.Err[[]byte](err)
		}
		if resp.StatusCode != http.StatusOK {
			return fn.Errf[[]byte]("offerup: %s %s: status %d", method, path, resp.StatusCode)
		}
		return fn.Ok(data)
	})
	return result.Unwrap()
}
