package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks CandidateSource,StreetFinder,Catalog,StreetCache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"mxaddress/internal/address/metrics"
	"mxaddress/internal/address/models"
	"mxaddress/internal/address/streetcache"
	dErrors "mxaddress/pkg/domain-errors"
	"mxaddress/pkg/requestcontext"
)

// CandidateSource returns real address points for a municipality. An empty
// result means no data; the error is reserved for cancellation.
type CandidateSource interface {
	Candidates(ctx context.Context, state, municipality string) ([]models.RawStreetCandidate, error)
}

// StreetFinder returns the named roads of a neighborhood. An error means the
// lookup did not complete and its result must not be cached.
type StreetFinder interface {
	NeighborhoodStreets(ctx context.Context, state, municipality, neighborhood string) ([]models.StreetSegment, error)
}

// Catalog is the postal reference index.
type Catalog interface {
	Load(ctx context.Context) error
	Lookup(state, municipality string) []models.PostalEntry
}

// StreetCache stores neighborhood street lists.
type StreetCache interface {
	Get(ctx context.Context, key streetcache.Key) ([]models.StreetSegment, bool, error)
	Set(ctx context.Context, key streetcache.Key, segments []models.StreetSegment) error
}

// Service resolves plausible Mexican addresses for a state and municipality.
type Service struct {
	candidates CandidateSource
	catalog    Catalog
	streets    StreetFinder

	streetCache StreetCache
	lookups     singleflight.Group
	rand        *randomSource
	strategies  []strategy

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStreetCache replaces the default in-memory street cache.
func WithStreetCache(cache StreetCache) Option {
	return func(s *Service) {
		s.streetCache = cache
	}
}

// WithSeed makes every random choice reproducible for a given call order.
// Zero keeps the default non-deterministic source.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.rand = newRandomSource(seed)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New creates a Service. All three collaborators are required.
func New(candidates CandidateSource, catalog Catalog, streets StreetFinder, opts ...Option) (*Service, error) {
	if candidates == nil {
		return nil, errors.New("candidate source is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if streets == nil {
		return nil, errors.New("street finder is required")
	}

	s := &Service{
		candidates:  candidates,
		catalog:     catalog,
		streets:     streets,
		streetCache: streetcache.NewMemoryCache(),
		rand:        newRandomSource(0),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:      otel.Tracer("mxaddress/internal/address/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.strategies = []strategy{
		&realStrategy{svc: s},
		&fallbackStrategy{svc: s},
	}
	return s, nil
}

// Resolve produces an address for state and municipality. With allowFallback
// it always succeeds, degrading to catalog-only or synthetic data. Without
// it, only a real cross-referenced address is accepted and a
// *models.NoAddressDataError is returned when none can be built.
func (s *Service) Resolve(ctx context.Context, state, municipality string, allowFallback bool) (*models.ResolvedAddress, error) {
	start := time.Now()
	defer s.metrics.ObserveResolve(start)

	state = strings.TrimSpace(state)
	municipality = strings.TrimSpace(municipality)
	if state == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "state is required")
	}
	if municipality == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "municipality is required")
	}

	ctx, span := s.tracer.Start(ctx, "address.Resolve", trace.WithAttributes(
		attribute.String("address.state", state),
		attribute.String("address.municipality", municipality),
		attribute.Bool("address.allow_fallback", allowFallback),
	))
	defer span.End()

	chain := s.strategies
	if !allowFallback {
		chain = chain[:1]
	}

	req := request{state: state, municipality: municipality}
	for _, st := range chain {
		addr, tier, ok := st.resolve(ctx, req)
		if !ok {
			continue
		}
		span.SetAttributes(attribute.String("address.tier", string(tier)))
		s.metrics.IncrementResolution(string(tier))
		s.logger.InfoContext(ctx, "address resolved",
			"request_id", requestcontext.RequestID(ctx),
			"state", state,
			"municipality", municipality,
			"tier", tier,
			"postal_code", addr.PostalCode,
		)
		return addr, nil
	}

	s.metrics.IncrementStrictFailure()
	err := &models.NoAddressDataError{State: state, Municipality: municipality}
	span.SetStatus(codes.Error, "no address data")
	s.logger.InfoContext(ctx, "no real address data",
		"request_id", requestcontext.RequestID(ctx),
		"state", state,
		"municipality", municipality,
	)
	return nil, err
}

// ensureCatalog loads the catalog on first use. A failure is logged and
// reported so callers can treat the catalog as empty.
func (s *Service) ensureCatalog(ctx context.Context) error {
	if err := s.catalog.Load(ctx); err != nil {
		s.logger.ErrorContext(ctx, "postal catalog unavailable", "error", err)
		return err
	}
	return nil
}

// entriesFor returns the catalog entries for a key, or nil when the catalog
// cannot be loaded.
func (s *Service) entriesFor(ctx context.Context, state, municipality string) []models.PostalEntry {
	if err := s.ensureCatalog(ctx); err != nil {
		return nil
	}
	return s.catalog.Lookup(state, municipality)
}

// neighborhoodStreets returns the cached roads of a neighborhood, querying
// the street finder on a miss. Concurrent misses for one key share a query.
func (s *Service) neighborhoodStreets(ctx context.Context, state, municipality, neighborhood string) []models.StreetSegment {
	key := streetcache.NewKey(state, municipality, neighborhood)

	segments, ok, err := s.streetCache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "street cache read failed", "key", key.String(), "error", err)
	}
	if ok {
		s.metrics.IncrementStreetCacheHit()
		return segments
	}
	s.metrics.IncrementStreetCacheMiss()

	// The shared lookup runs detached from any one caller so a cancelled
	// request does not fail the others waiting on the same key. Provider
	// timeouts bound it.
	lookupCtx := context.WithoutCancel(ctx)
	ch := s.lookups.DoChan(key.String(), func() (any, error) {
		found, err := s.streets.NeighborhoodStreets(lookupCtx, state, municipality, neighborhood)
		if err != nil {
			return nil, err
		}
		if err := s.streetCache.Set(lookupCtx, key, found); err != nil {
			s.logger.WarnContext(lookupCtx, "street cache write failed", "key", key.String(), "error", err)
		}
		return found, nil
	})

	select {
	case <-ctx.Done():
		s.logger.DebugContext(ctx, "neighborhood street lookup abandoned", "key", key.String(), "error", ctx.Err())
		return nil
	case res := <-ch:
		if res.Err != nil {
			s.logger.DebugContext(ctx, "neighborhood street lookup failed", "key", key.String(), "error", res.Err)
			return nil
		}
		found, _ := res.Val.([]models.StreetSegment)
		return found
	}
}
