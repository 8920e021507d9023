package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"mxaddress/internal/address/metrics"
	"mxaddress/internal/address/models"
	"mxaddress/pkg/platform/sentinel"
)

// =============================================================================
// Street Source Test Suite
// =============================================================================
// Nominatim and the Overpass mirrors are faked with httptest servers. The
// tests verify tag extraction and mirror failover. Address point failures
// degrade to empty results; road network outages are reported so they are
// not cached.

type fakeUpstream struct {
	mu       sync.Mutex
	server   *httptest.Server
	places   map[string]string // query -> boundingbox JSON array, absent = no match
	overpass func(w http.ResponseWriter, query string)
	searches []string
	queries  []string
	agents   []string
}

func newFakeUpstream() *fakeUpstream {
	f := &fakeUpstream{places: map[string]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.agents = append(f.agents, r.Header.Get("User-Agent"))
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/search":
		q := r.URL.Query().Get("q")
		f.mu.Lock()
		f.searches = append(f.searches, q)
		box, ok := f.places[q]
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprintf(w, `[{"display_name":%q,"boundingbox":%s}]`, q, box)
	case strings.HasPrefix(r.URL.Path, "/mirror"):
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Path+" "+r.PostForm.Get("data"))
		handler := f.overpass
		f.mu.Unlock()
		handler(w, r.URL.Path)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeUpstream) queriesTo(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.queries {
		if strings.HasPrefix(q, path+" ") {
			n++
		}
	}
	return n
}

type StreetSourceSuite struct {
	suite.Suite
	ctx      context.Context
	upstream *fakeUpstream
	metrics  *metrics.Metrics
	source   *StreetSource
}

func TestStreetSourceSuite(t *testing.T) {
	suite.Run(t, new(StreetSourceSuite))
}

func (s *StreetSourceSuite) SetupTest() {
	s.ctx = context.Background()
	s.upstream = newFakeUpstream()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.source = s.newSource(Config{MaxCandidates: 10})
}

func (s *StreetSourceSuite) TearDownTest() {
	s.upstream.server.Close()
}

// reset swaps in a fresh upstream and source for a sub-test.
func (s *StreetSourceSuite) reset() {
	s.TearDownTest()
	s.SetupTest()
}

func (s *StreetSourceSuite) newSource(cfg Config) *StreetSource {
	cfg.NominatimURL = s.upstream.server.URL
	cfg.OverpassEndpoints = []string{
		s.upstream.server.URL + "/mirror1",
		s.upstream.server.URL + "/mirror2",
	}
	cfg.UserAgent = "mxaddress-test/1.0"
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return New(cfg, WithMetrics(s.metrics))
}

const reynosaBox = `["25.9","26.2","-98.5","-98.1"]`

func elementsJSON(tags ...string) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = fmt.Sprintf(`{"type":"node","id":%d,"tags":%s}`, i+1, t)
	}
	return `{"elements":[` + strings.Join(parts, ",") + `]}`
}

// =============================================================================
// Candidates
// =============================================================================

func (s *StreetSourceSuite) TestCandidates() {
	s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
	s.upstream.overpass = func(w http.ResponseWriter, _ string) {
		fmt.Fprint(w, elementsJSON(
			`{"addr:street":" Hidalgo ","addr:housenumber":"123","addr:postcode":"88500"}`,
			`{"addr:street":"Morelos","addr:housenumber":"45","addr:postcode":"8850","addr:neighbourhood":"Centro","addr:district":"Norte","addr:unit":"b"}`,
			`{"addr:street":"Juárez","addr:housenumber":"9","addr:postcode":"88630","addr:suburb":"Las Fuentes","addr:locality":"X"}`,
			`{"addr:street":"Allende","addr:housenumber":"7","addr:postcode":"C.P. 88500"}`,
			`{"addr:street":"Matamoros","addr:housenumber":"8","addr:postcode":"C.P.88630"}`,
			`{"addr:street":"Sin CP","addr:housenumber":"1"}`,
			`{"addr:street":"CP largo","addr:housenumber":"1","addr:postcode":"885001"}`,
			`{"addr:housenumber":"1","addr:postcode":"88500"}`,
		))
	}

	got, err := s.source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
	s.Require().NoError(err)

	s.Run("keeps complete elements with normalized fields and labelled postcodes", func() {
		s.Equal([]models.RawStreetCandidate{
			{StreetName: "HIDALGO", HouseNumber: "123", PostalCode: "88500"},
			{StreetName: "MORELOS", HouseNumber: "45", Unit: "B", PostalCode: "08850", Neighborhood: "CENTRO"},
			{StreetName: "JUÁREZ", HouseNumber: "9", PostalCode: "88630", Neighborhood: "LAS FUENTES"},
			{StreetName: "ALLENDE", HouseNumber: "7", PostalCode: "88500"},
			{StreetName: "MATAMOROS", HouseNumber: "8", PostalCode: "88630"},
		}, got)
	})

	s.Run("query is bounded to the box and the country", func() {
		s.Require().Len(s.upstream.queries, 1)
		q := s.upstream.queries[0]
		s.Contains(q, `area["ISO3166-1"="MX"][admin_level=2]`)
		s.Contains(q, `node["addr:street"]["addr:housenumber"](area.mx)(25.9000000,-98.5000000,26.2000000,-98.1000000)`)
		s.Contains(q, "out tags 10;")
	})

	s.Run("requests carry the user agent", func() {
		for _, ua := range s.upstream.agents {
			s.Equal("mxaddress-test/1.0", ua)
		}
	})

	s.Run("successful requests are counted", func() {
		s.Equal(1.0, testutil.ToFloat64(s.metrics.ProviderRequests.WithLabelValues("nominatim", "ok")))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.ProviderRequests.WithLabelValues("overpass", "ok")))
	})
}

func (s *StreetSourceSuite) TestCandidatesCap() {
	source := s.newSource(Config{MaxCandidates: 2})
	s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
	s.upstream.overpass = func(w http.ResponseWriter, _ string) {
		tag := `{"addr:street":"Hidalgo","addr:housenumber":"1","addr:postcode":"88500"}`
		fmt.Fprint(w, elementsJSON(tag, tag, tag, tag))
	}

	got, err := source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
	s.NoError(err)
	s.Len(got, 2)
}

func (s *StreetSourceSuite) TestCandidatesProviderSpelling() {
	s.upstream.places["Cuauhtémoc, Ciudad de México, Mexico"] = `["19.4","19.5","-99.2","-99.1"]`
	s.upstream.overpass = func(w http.ResponseWriter, _ string) {
		fmt.Fprint(w, elementsJSON())
	}

	got, err := s.source.Candidates(s.ctx, "CDMX", "CUAUHTÉMOC")
	s.NoError(err)
	s.Empty(got)
	s.Equal([]string{"Cuauhtémoc, Ciudad de México, Mexico"}, s.upstream.searches)
	s.Len(s.upstream.queries, 1, "geocoded place must reach overpass")
}

func (s *StreetSourceSuite) TestCandidatesDegradeToEmpty() {
	s.Run("unknown municipality", func() {
		got, err := s.source.Candidates(s.ctx, "TAMAULIPAS", "ATLANTIS")
		s.NoError(err)
		s.Empty(got)
		s.Empty(s.upstream.queries)
	})

	s.Run("every mirror fails", func() {
		s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		got, err := s.source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
		s.NoError(err)
		s.Empty(got)
		s.Equal(2, s.upstream.queriesTo("/mirror1"))
		s.Equal(2, s.upstream.queriesTo("/mirror2"))
	})
}

func (s *StreetSourceSuite) TestCandidatesCancelled() {
	s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.source.Candidates(ctx, "TAMAULIPAS", "REYNOSA")
	s.True(errors.Is(err, context.Canceled))
}

// =============================================================================
// Overpass failover
// =============================================================================

func (s *StreetSourceSuite) TestOverpassFailover() {
	ok := elementsJSON(`{"addr:street":"Hidalgo","addr:housenumber":"1","addr:postcode":"88500"}`)

	s.Run("retryable failure moves to the next mirror after retries", func() {
		s.reset()
		s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, path string) {
			if path == "/mirror1" {
				w.WriteHeader(http.StatusGatewayTimeout)
				return
			}
			fmt.Fprint(w, ok)
		}

		got, err := s.source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
		s.NoError(err)
		s.Len(got, 1)
		s.Equal(2, s.upstream.queriesTo("/mirror1"))
		s.Equal(1, s.upstream.queriesTo("/mirror2"))
		s.Equal(2.0, testutil.ToFloat64(s.metrics.ProviderRequests.WithLabelValues("overpass", "timeout")))
	})

	s.Run("rejected query is not retried on the same mirror", func() {
		s.reset()
		s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, path string) {
			if path == "/mirror1" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, ok)
		}

		got, err := s.source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
		s.NoError(err)
		s.Len(got, 1)
		s.Equal(1, s.upstream.queriesTo("/mirror1"))
	})

	s.Run("malformed body counts as bad data", func() {
		s.reset()
		s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, path string) {
			if path == "/mirror1" {
				fmt.Fprint(w, `<html>busy</html>`)
				return
			}
			fmt.Fprint(w, ok)
		}

		got, err := s.source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
		s.NoError(err)
		s.Len(got, 1)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.ProviderRequests.WithLabelValues("overpass", "bad_data")))
	})

	s.Run("open circuit skips a failing mirror on later calls", func() {
		s.reset()
		source := s.newSource(Config{BreakerThreshold: 2, BreakerCooldown: time.Hour})
		s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, path string) {
			if path == "/mirror1" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, ok)
		}

		_, err := source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
		s.NoError(err)
		s.Equal(2, s.upstream.queriesTo("/mirror1"))

		_, err = source.Candidates(s.ctx, "TAMAULIPAS", "REYNOSA")
		s.NoError(err)
		s.Equal(2, s.upstream.queriesTo("/mirror1"), "open mirror must not be called")
		s.Equal(2, s.upstream.queriesTo("/mirror2"))
	})

	s.Run("exhausted mirrors report unavailable", func() {
		s.reset()
		s.upstream.overpass = func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_, err := s.source.overpass.query(s.ctx, "[out:json];node;out;")
		s.ErrorIs(err, ErrAllProvidersFailed)
		s.ErrorIs(err, sentinel.ErrUnavailable)
	})
}

// =============================================================================
// Neighborhood streets
// =============================================================================

func (s *StreetSourceSuite) TestNeighborhoodStreets() {
	roads := elementsJSON(
		`{"highway":"residential","name":"Calle Hidalgo"}`,
		`{"highway":"primary","name":"Boulevard Morelos;Carretera 40"}`,
		`{"highway":"residential","name":"calle hidalgo"}`,
		`{"highway":"primary","name":"Calle Hidalgo"}`,
		`{"highway":"residential","name":" ; "}`,
	)

	s.Run("neighborhood roads are named typed and deduplicated", func() {
		s.upstream.places["Rodriguez, Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, _ string) {
			fmt.Fprint(w, roads)
		}

		got, err := s.source.NeighborhoodStreets(s.ctx, "TAMAULIPAS", "REYNOSA", "Rodriguez")
		s.Require().NoError(err)
		s.Equal([]models.StreetSegment{
			{Name: "CALLE HIDALGO", Type: models.StreetTypeCalle},
			{Name: "BOULEVARD MORELOS", Type: models.StreetTypeAvenida},
			{Name: "CALLE HIDALGO", Type: models.StreetTypeAvenida},
		}, got)
		s.Contains(s.upstream.queries[0], `way["highway"~"^(motorway|trunk|primary|secondary|tertiary|unclassified|residential|living_street)(_link)?$"]["name"](area.mx)`)
	})

	s.Run("unknown neighborhood falls back to the municipality", func() {
		s.reset()
		s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, _ string) {
			fmt.Fprint(w, roads)
		}

		got, err := s.source.NeighborhoodStreets(s.ctx, "TAMAULIPAS", "REYNOSA", "COLONIA 17")
		s.NoError(err)
		s.NotEmpty(got)
		s.Equal([]string{
			"COLONIA 17, Reynosa, Tamaulipas, Mexico",
			"Reynosa, Tamaulipas, Mexico",
		}, s.upstream.searches)
	})

	s.Run("nothing geocodes", func() {
		s.reset()
		got, err := s.source.NeighborhoodStreets(s.ctx, "TAMAULIPAS", "ATLANTIS", "CENTRO")
		s.NoError(err)
		s.Empty(got)
	})

	s.Run("road network outage is reported", func() {
		s.reset()
		s.upstream.places["Reynosa, Tamaulipas, Mexico"] = reynosaBox
		s.upstream.overpass = func(w http.ResponseWriter, _ string) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		got, err := s.source.NeighborhoodStreets(s.ctx, "TAMAULIPAS", "REYNOSA", "CENTRO")
		s.ErrorIs(err, ErrAllProvidersFailed)
		s.Empty(got)
	})
}

// =============================================================================
// Error taxonomy
// =============================================================================

func (s *StreetSourceSuite) TestProviderErrors() {
	s.True(IsRetryable(statusError("overpass", http.StatusTooManyRequests)))
	s.True(IsRetryable(statusError("overpass", http.StatusBadGateway)))
	s.False(IsRetryable(statusError("overpass", http.StatusBadRequest)))
	s.Equal(ErrorNotFound, GetCategory(statusError("nominatim", http.StatusNotFound)))
	s.Equal(ErrorTimeout, GetCategory(transportError("overpass", context.DeadlineExceeded)))
	s.Equal(ErrorInternal, GetCategory(errors.New("plain")))

	_, err := parseBoundingBox([]string{"26.2", "25.9", "-98.5", "-98.1"})
	s.Equal(ErrorBadData, GetCategory(err))
}
