package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-trip-day-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-day-planner/config"
	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

var (
	ErrEmptyPlaceName = errors.New("place name is empty")
	ErrTimeout        = errors.New("geocoder timed out")
)

const (
	defaultBaseURL     = "https://nominatim.openstreetmap.org"
	defaultUserAgent   = "trip_day_planner/1.0"
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
	defaultCacheTTL    = 24 * time.Hour
)

// Geocoder resolves a free text place name. A nil result with a nil error means
// the place is unknown.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (*types.GeocodeResult, error)
}

var _ Geocoder = (*NominatimClient)(nil)

// NominatimClient talks to an OpenStreetMap Nominatim instance. Results,
// including misses, are cached per normalized name; errors are not.
type NominatimClient struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	retryDelay  time.Duration
	limiter     *rate.Limiter
	cache       *cache.Cache
	group       singleflight.Group
	logger      *slog.Logger
}

// NewNominatimClient applies defaults for unset fields. A zero RequestsPerSecond disables pacing.
func NewNominatimClient(cfg config.GeocoderConfig, logger *slog.Logger) *NominatimClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &NominatimClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		limiter:     rate.NewLimiter(limit, 1),
		cache:       cache.New(ttl, 2*ttl),
		logger:      logger,
	}
}

func (c *NominatimClient) Geocode(ctx context.Context, place string) (*types.GeocodeResult, error) {
	ctx, span := otel.Tracer("Geocoder").Start(ctx, "Geocode", trace.WithAttributes(
		attribute.String("place", place),
	))
	defer span.End()

	key := cacheKey(place)
	if key == "" {
		return nil, ErrEmptyPlaceName
	}
	m := metrics.Get()

	if v, ok := c.cache.Get(key); ok {
		m.GeocodeCacheHitsTotal.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return clone(v.(*types.GeocodeResult)), nil
	}

	// Shared lookups outlive the caller that started them; each caller still
	// stops waiting when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		res, err := c.lookup(context.WithoutCancel(ctx), strings.TrimSpace(place))
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, res)
		return res, nil
	})
	var (
		v   any
		err error
	)
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case out := <-ch:
		v, err = out.Val, out.Err
		span.SetAttributes(attribute.Bool("singleflight.shared", out.Shared))
	}
	if err != nil {
		m.GeocodeRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "error")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocode failed")
		c.logger.WarnContext(ctx, "Geocoding failed", slog.String("place", place), slog.Any("error", err))
		return nil, err
	}

	res := v.(*types.GeocodeResult)
	result := "found"
	if res == nil {
		result = "not_found"
	}
	m.GeocodeRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	c.logger.DebugContext(ctx, "Geocoded place", slog.String("place", place), slog.String("result", result))
	return clone(res), nil
}

func (c *NominatimClient) lookup(ctx context.Context, place string) (*types.GeocodeResult, error) {
	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("geocoder rate limiter: %w", err)
		}

		res, err := c.search(ctx, place)
		if err == nil {
			return res, nil
		}
		if !isTimeout(err) {
			return nil, err
		}
		if attempt >= c.maxAttempts {
			return nil, fmt.Errorf("%w after %d attempts: %w", ErrTimeout, attempt, err)
		}

		c.logger.DebugContext(ctx, "Geocoder timed out, retrying",
			slog.String("place", place), slog.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("nominatim returned status %d: %s", e.code, e.body)
}

func (e *statusError) Timeout() bool {
	return e.code == http.StatusGatewayTimeout || e.code == http.StatusRequestTimeout
}

func (c *NominatimClient) search(ctx context.Context, place string) (*types.GeocodeResult, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var places []nominatimPlace
	if err = json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", places[0].Lon, err)
	}
	return &types.GeocodeResult{Latitude: lat, Longitude: lon, Address: places[0].DisplayName}, nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func cacheKey(place string) string {
	return strings.ToLower(strings.Join(strings.Fields(place), " "))
}

func clone(r *types.GeocodeResult) *types.GeocodeResult {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
