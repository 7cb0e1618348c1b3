// Package server exposes the search engine over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/usedlot/carsearch/engine/detail"
	"github.com/usedlot/carsearch/engine/domain"
	"github.com/usedlot/carsearch/engine/search"
	"github.com/usedlot/carsearch/pkg/metrics"
	"github.com/usedlot/carsearch/pkg/mid"
)

// Searcher runs a relevance-filtered search.
type Searcher interface {
	Search(ctx context.Context, c domain.Criteria) (domain.ResultSet, error)
}

// assert the engine satisfies the handler-facing interface.
var _ Searcher = (*search.Service)(nil)

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	searcher   Searcher
	details    detail.Fetcher
	logger     *slog.Logger
	registry   *metrics.Registry
	corsOrigin string
}

// Options configures the Server. Details and Registry may be nil; the
// corresponding routes then respond 404 and an empty metrics page.
type Options struct {
	Details  detail.Fetcher
	Logger   *slog.Logger
	Registry *metrics.Registry
	// CORSOrigin enables the CORS middleware when non-empty.
	CORSOrigin string
}

// New creates a Server.
func New(searcher Searcher, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		searcher:   searcher,
		details:    opts.Details,
		logger:     logger,
		registry:   opts.Registry,
		corsOrigin: opts.CORSOrigin,
	}
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/cars/search", s.handleSearchGet).Methods(http.MethodGet)
	api.HandleFunc("/cars/search", s.handleSearchPost).Methods(http.MethodPost)
	api.HandleFunc("/cars/{listingID}", s.handleDetails).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.registry != nil {
		r.Handle("/metrics", s.registry.Handler()).Methods(http.MethodGet)
	}

	mw := []mid.Middleware{
		mid.RequestID(),
		mid.Recover(s.logger),
		mid.Logger(s.logger),
		mid.OTel("carsearch"),
	}
	if s.corsOrigin != "" {
		mw = append(mw, mid.CORS(s.corsOrigin))
	}
	return mid.Chain(r, mw...)
}

// NewHTTPServer returns a configured http.Server for the given address.
func NewHTTPServer(addr string, searcher Searcher, opts Options) *http.Server {
	s := New(searcher, opts)
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
