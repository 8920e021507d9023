// Package geo fetches real street data for Mexican municipalities from
// OpenStreetMap: Nominatim for place bounding boxes and Overpass for tagged
// address points and named roads.
package geo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"mxaddress/internal/address/classify"
	"mxaddress/internal/address/keys"
	"mxaddress/internal/address/metrics"
	"mxaddress/internal/address/models"
	"mxaddress/pkg/platform/circuit"
)

const (
	DefaultNominatimURL  = "https://nominatim.openstreetmap.org"
	DefaultUserAgent     = "mxaddress/1.0"
	DefaultTimeout       = 180 * time.Second
	DefaultRetries       = 2
	DefaultMaxCandidates = 3000
)

// DefaultOverpassEndpoints are the public mirrors, in preference order.
var DefaultOverpassEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://lz4.overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
}

// neighborhoodTags are checked in order; the first present value wins.
var neighborhoodTags = []string{
	"addr:suburb",
	"addr:neighbourhood",
	"addr:district",
	"addr:quarter",
	"addr:locality",
}

// Config holds upstream settings. Zero values take the defaults above.
type Config struct {
	NominatimURL      string
	OverpassEndpoints []string
	UserAgent         string
	Timeout           time.Duration
	Retries           int
	MaxCandidates     int
	// NominatimRate is the allowed requests per second; zero or negative
	// disables pacing.
	NominatimRate float64
	// BreakerThreshold is the consecutive failures that open an endpoint circuit.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// StreetSource resolves municipalities and neighborhoods to real street data.
// Upstream failures never surface as errors: callers get an empty result and
// fall back. The returned error is reserved for context cancellation.
type StreetSource struct {
	cfg       Config
	nominatim *nominatim
	overpass  *overpass
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures a StreetSource.
type Option func(*StreetSource)

func WithLogger(logger *slog.Logger) Option {
	return func(s *StreetSource) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *StreetSource) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *StreetSource) {
		s.tracer = tracer
	}
}

// WithHTTPClient replaces the HTTP client used for both providers.
func WithHTTPClient(client *http.Client) Option {
	return func(s *StreetSource) {
		s.nominatim.client = client
		s.overpass.client = client
	}
}

// New creates a StreetSource.
func New(cfg Config, opts ...Option) *StreetSource {
	cfg = withDefaults(cfg)

	limit := rate.Inf
	if cfg.NominatimRate > 0 {
		limit = rate.Limit(cfg.NominatimRate)
	}
	client := &http.Client{Timeout: cfg.Timeout}

	s := &StreetSource{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer("mxaddress/internal/address/geo"),
	}
	s.nominatim = &nominatim{
		baseURL:   cfg.NominatimURL,
		userAgent: cfg.UserAgent,
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		src:       s,
	}
	endpoints := make([]overpassEndpoint, 0, len(cfg.OverpassEndpoints))
	for _, u := range cfg.OverpassEndpoints {
		endpoints = append(endpoints, overpassEndpoint{
			url: u,
			breaker: circuit.New(u,
				circuit.WithFailureThreshold(cfg.BreakerThreshold),
				circuit.WithCooldown(cfg.BreakerCooldown),
			),
		})
	}
	s.overpass = &overpass{
		endpoints: endpoints,
		retries:   cfg.Retries,
		userAgent: cfg.UserAgent,
		client:    client,
		src:       s,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func withDefaults(cfg Config) Config {
	if cfg.NominatimURL == "" {
		cfg.NominatimURL = DefaultNominatimURL
	}
	if len(cfg.OverpassEndpoints) == 0 {
		cfg.OverpassEndpoints = DefaultOverpassEndpoints
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = 3
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = time.Minute
	}
	return cfg
}

// Candidates returns up to MaxCandidates address points for a municipality.
// Each has a street name, a house number and a 5-digit postal code.
func (s *StreetSource) Candidates(ctx context.Context, state, municipality string) ([]models.RawStreetCandidate, error) {
	ctx, span := s.tracer.Start(ctx, "geo.Candidates", trace.WithAttributes(
		attribute.String("address.state", state),
		attribute.String("address.municipality", municipality),
	))
	defer span.End()

	place := fmt.Sprintf("%s, %s, Mexico", keys.ProviderMunicipality(municipality), keys.ProviderState(state))
	box, err := s.nominatim.geocode(ctx, place)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.WarnContext(ctx, "municipality geocode failed", "place", place, "error", err)
		return nil, nil
	}

	elements, err := s.overpass.query(ctx, addressNodesQuery(box, s.timeoutSeconds(), s.cfg.MaxCandidates))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.WarnContext(ctx, "address point query failed", "place", place, "error", err)
		return nil, nil
	}

	candidates := make([]models.RawStreetCandidate, 0, min(len(elements), s.cfg.MaxCandidates))
	for _, el := range elements {
		c, ok := candidateFromTags(el.Tags)
		if !ok {
			continue
		}
		candidates = append(candidates, c)
		if len(candidates) >= s.cfg.MaxCandidates {
			break
		}
	}

	span.SetAttributes(attribute.Int("geo.candidates", len(candidates)))
	s.logger.DebugContext(ctx, "address points fetched",
		"place", place,
		"elements", len(elements),
		"candidates", len(candidates),
	)
	return candidates, nil
}

func candidateFromTags(tags map[string]string) (models.RawStreetCandidate, bool) {
	street := strings.ToUpper(strings.TrimSpace(tags["addr:street"]))
	number := strings.TrimSpace(tags["addr:housenumber"])
	if street == "" || number == "" {
		return models.RawStreetCandidate{}, false
	}
	code, ok := keys.PostalCode(tags["addr:postcode"])
	if !ok {
		return models.RawStreetCandidate{}, false
	}

	var neighborhood string
	for _, tag := range neighborhoodTags {
		if v := strings.TrimSpace(tags[tag]); v != "" {
			neighborhood = strings.ToUpper(v)
			break
		}
	}

	return models.RawStreetCandidate{
		StreetName:   street,
		HouseNumber:  number,
		Unit:         strings.ToUpper(strings.TrimSpace(tags["addr:unit"])),
		PostalCode:   code,
		Neighborhood: neighborhood,
	}, true
}

// NeighborhoodStreets returns the named drivable roads of a neighborhood.
// When the neighborhood does not geocode the municipality is used instead.
// A place that does not geocode yields no roads and no error; provider
// outages are returned as errors so callers can avoid caching them.
func (s *StreetSource) NeighborhoodStreets(ctx context.Context, state, municipality, neighborhood string) ([]models.StreetSegment, error) {
	ctx, span := s.tracer.Start(ctx, "geo.NeighborhoodStreets", trace.WithAttributes(
		attribute.String("address.state", state),
		attribute.String("address.municipality", municipality),
		attribute.String("address.neighborhood", neighborhood),
	))
	defer span.End()

	muniPlace := fmt.Sprintf("%s, %s, Mexico", keys.ProviderMunicipality(municipality), keys.ProviderState(state))
	place := fmt.Sprintf("%s, %s", neighborhood, muniPlace)

	box, err := s.nominatim.geocode(ctx, place)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.DebugContext(ctx, "neighborhood geocode failed, trying municipality", "place", place, "error", err)

		box, err = s.nominatim.geocode(ctx, muniPlace)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.WarnContext(ctx, "municipality geocode failed", "place", muniPlace, "error", err)
			if IsRetryable(err) {
				return nil, fmt.Errorf("geocode %s: %w", muniPlace, err)
			}
			return nil, nil
		}
	}

	elements, err := s.overpass.query(ctx, namedRoadsQuery(box, s.timeoutSeconds()))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.WarnContext(ctx, "road network query failed", "place", place, "error", err)
		return nil, fmt.Errorf("road network query: %w", err)
	}

	type seenKey struct {
		name string
		typ  models.StreetType
	}
	seen := make(map[seenKey]struct{})
	var segments []models.StreetSegment
	for _, el := range elements {
		name := firstName(el.Tags["name"])
		if name == "" {
			continue
		}
		seg := models.StreetSegment{
			Name: keys.Normalize(name),
			Type: classify.StreetTypeForHighway(el.Tags["highway"]),
		}
		k := seenKey{seg.Name, seg.Type}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		segments = append(segments, seg)
	}

	span.SetAttributes(attribute.Int("geo.segments", len(segments)))
	return segments, nil
}

// firstName returns the first non-empty value of a ";"-separated OSM name.
func firstName(raw string) string {
	for _, part := range strings.Split(raw, ";") {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return ""
}

func (s *StreetSource) timeoutSeconds() int {
	return max(1, int(s.cfg.Timeout/time.Second))
}
