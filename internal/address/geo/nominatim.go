package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const nominatimProvider = "nominatim"

// BoundingBox is a WGS84 box.
type BoundingBox struct {
	South, West, North, East float64
}

// nominatim geocodes place names to bounding boxes using the /search API.
type nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	src       *StreetSource
}

type nominatimPlace struct {
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"`
}

// geocode returns the bounding box of the best match for query in Mexico.
func (n *nominatim) geocode(ctx context.Context, query string) (BoundingBox, error) {
	ctx, span := n.src.tracer.Start(ctx, "nominatim.geocode")
	defer span.End()
	span.SetAttributes(attribute.String("geo.query", query))

	box, err := n.search(ctx, query)
	n.src.metrics.IncrementProviderRequest(nominatimProvider, outcome(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode failed")
	}
	return box, err
}

func (n *nominatim) search(ctx context.Context, query string) (BoundingBox, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return BoundingBox{}, fmt.Errorf("nominatim rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("countrycodes", "mx")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(n.baseURL, "/")+"/search?"+params.Encode(), nil)
	if err != nil {
		return BoundingBox{}, NewProviderError(ErrorInternal, nominatimProvider, "build request", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return BoundingBox{}, transportError(nominatimProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return BoundingBox{}, statusError(nominatimProvider, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return BoundingBox{}, NewProviderError(ErrorBadData, nominatimProvider, "decode response", err)
	}
	if len(places) == 0 {
		return BoundingBox{}, NewProviderError(ErrorNotFound, nominatimProvider, fmt.Sprintf("no match for %q", query), nil)
	}
	return parseBoundingBox(places[0].BoundingBox)
}

// parseBoundingBox reads Nominatim's [south, north, west, east] string array.
func parseBoundingBox(raw []string) (BoundingBox, error) {
	if len(raw) != 4 {
		return BoundingBox{}, NewProviderError(ErrorBadData, nominatimProvider, fmt.Sprintf("bounding box has %d values", len(raw)), nil)
	}
	vals := make([]float64, 4)
	for i, s := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return BoundingBox{}, NewProviderError(ErrorBadData, nominatimProvider, "bounding box value", err)
		}
		vals[i] = v
	}
	box := BoundingBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}
	if box.South > box.North || box.West > box.East {
		return BoundingBox{}, NewProviderError(ErrorBadData, nominatimProvider, "inverted bounding box", nil)
	}
	return box, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(GetCategory(err))
}
