package metrics

import (
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "TripDayPlanner"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ClusterRequestsTotal      metric.Int64Counter
	ClusterDurationSeconds    metric.Float64Histogram
	GeocodeRequestsTotal      metric.Int64Counter
	GeocodeCacheHitsTotal     metric.Int64Counter
	LLMRequestsTotal          metric.Int64Counter
	LLMRequestDurationSeconds metric.Float64Histogram
	DbQueryDurationSeconds    metric.Float64Histogram
	DbQueryErrorsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	initErr    error
	once       sync.Once
)

// InitAppMetrics creates the instruments on the global MeterProvider once.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics() error {
	once.Do(func() {
		appMetrics, initErr = newAppMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return initErr
}

// Get returns the instruments, initializing them against whatever provider is
// installed. Instruments that failed to build fall back to no-ops.
func Get() *AppMetrics {
	if err := InitAppMetrics(); err != nil || appMetrics == nil {
		return noopMetrics
	}
	return appMetrics
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var errs []error
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		errs = append(errs, err)
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	m.ClusterRequestsTotal = counter("itinerary_cluster_requests_total", "Total number of day clustering runs", "{request}")
	m.ClusterDurationSeconds = histogram("itinerary_cluster_duration_seconds", "Duration of day clustering runs in seconds")
	m.GeocodeRequestsTotal = counter("geocode_requests_total", "Total number of geocoding lookups by result", "{request}")
	m.GeocodeCacheHitsTotal = counter("geocode_cache_hits_total", "Total number of geocoding lookups served from cache", "{hit}")
	m.LLMRequestsTotal = counter("llm_requests_total", "Total number of LLM calls by operation and status", "{request}")
	m.LLMRequestDurationSeconds = histogram("llm_request_duration_seconds", "Duration of LLM calls in seconds")
	m.DbQueryDurationSeconds = histogram("db_query_duration_seconds", "Duration of database queries in seconds")
	m.DbQueryErrorsTotal = counter("db_query_errors_total", "Total number of database query errors", "{error}")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

var noopMetrics = func() *AppMetrics {
	m, _ := newAppMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}()
