package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"mxaddress/pkg/platform/circuit"
)

const overpassProvider = "overpass"

// mexicoArea selects the country boundary so a bounding box that crosses the
// border never returns foreign elements.
const mexicoArea = `area["ISO3166-1"="MX"][admin_level=2]->.mx;`

type overpassEndpoint struct {
	url     string
	breaker *circuit.Breaker
}

// overpass posts Overpass QL to an ordered list of mirrors. Each mirror gets
// up to retries attempts; the first successful response wins.
type overpass struct {
	endpoints []overpassEndpoint
	retries   int
	userAgent string
	client    *http.Client
	src       *StreetSource
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Tags map[string]string `json:"tags"`
}

func (o *overpass) query(ctx context.Context, ql string) ([]overpassElement, error) {
	ctx, span := o.src.tracer.Start(ctx, "overpass.query")
	defer span.End()

	if len(o.endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	var lastErr error
	for _, ep := range o.endpoints {
		if !ep.breaker.Allow() {
			o.src.logger.DebugContext(ctx, "overpass endpoint skipped, circuit open", "endpoint", ep.url)
			continue
		}
		for attempt := 1; attempt <= o.retries; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			elements, err := o.post(ctx, ep.url, ql)
			o.src.metrics.IncrementProviderRequest(overpassProvider, outcome(err))
			if err == nil {
				if _, change := ep.breaker.RecordSuccess(); change.Closed {
					o.src.logger.InfoContext(ctx, "overpass endpoint recovered", "endpoint", ep.url)
				}
				span.SetAttributes(
					attribute.String("overpass.endpoint", ep.url),
					attribute.Int("overpass.elements", len(elements)),
				)
				return elements, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			lastErr = err
			o.src.logger.WarnContext(ctx, "overpass request failed",
				"endpoint", ep.url,
				"attempt", attempt,
				"category", GetCategory(err),
				"error", err,
			)
			if _, change := ep.breaker.RecordFailure(); change.Opened {
				o.src.logger.WarnContext(ctx, "overpass endpoint circuit opened", "endpoint", ep.url)
			}
			if !IsRetryable(err) || ep.breaker.IsOpen() {
				break
			}
		}
	}

	err := fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
	if lastErr == nil {
		err = fmt.Errorf("%w: every endpoint circuit is open", ErrAllProvidersFailed)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "all overpass endpoints failed")
	return nil, err
}

func (o *overpass) post(ctx context.Context, endpoint, ql string) ([]overpassElement, error) {
	form := url.Values{}
	form.Set("data", ql)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, NewProviderError(ErrorInternal, overpassProvider, "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", o.userAgent)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, transportError(overpassProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, statusError(overpassProvider, resp.StatusCode)
	}

	var out overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, NewProviderError(ErrorBadData, overpassProvider, "decode response", err)
	}
	return out.Elements, nil
}

// addressNodesQuery selects address points carrying both a street and a
// house number inside box and inside Mexico.
func addressNodesQuery(box BoundingBox, timeoutSeconds, limit int) string {
	return fmt.Sprintf(`[out:json][timeout:%d];
%s
node["addr:street"]["addr:housenumber"](area.mx)(%s);
out tags %d;`, timeoutSeconds, mexicoArea, bbox(box), limit)
}

// driveNetwork matches the highway values of the public drivable road network.
const driveNetwork = `^(motorway|trunk|primary|secondary|tertiary|unclassified|residential|living_street)(_link)?$`

// namedRoadsQuery selects named drivable roads inside box and inside Mexico.
func namedRoadsQuery(box BoundingBox, timeoutSeconds int) string {
	return fmt.Sprintf(`[out:json][timeout:%d];
%s
way["highway"~"%s"]["name"](area.mx)(%s);
out tags;`, timeoutSeconds, mexicoArea, driveNetwork, bbox(box))
}

func bbox(b BoundingBox) string {
	return fmt.Sprintf("%.7f,%.7f,%.7f,%.7f", b.South, b.West, b.North, b.East)
}
