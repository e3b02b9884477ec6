package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts holds options for creating metrics
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an OTel counter for easier use
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter metric
func NewCounter(opts MetricOpts) (*Counter, error) {
	meter := GetMeter()
	counter, err := meter.Int64Counter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

// Add increments the counter by the given value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Gauge wraps an OTel gauge for easier use
type Gauge struct {
	gauge metric.Int64Gauge
}

// NewGauge creates a new gauge metric
func NewGauge(opts MetricOpts) (*Gauge, error) {
	meter := GetMeter()
	gauge, err := meter.Int64Gauge(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Gauge{gauge: gauge}, nil
}

// Record sets the gauge to the given value
func (g *Gauge) Record(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	g.gauge.Record(ctx, value, metric.WithAttributes(attrs...))
}

// Histogram wraps an OTel histogram for easier use
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new histogram metric
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	meter := GetMeter()
	histogram, err := meter.Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Record records a value in the histogram
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// NewHistogramWithBuckets creates a new histogram with custom bucket boundaries
func NewHistogramWithBuckets(opts MetricOpts, boundaries []float64) (*Histogram, error) {
	meter := GetMeter()
	histogram, err := meter.Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
		metric.WithExplicitBucketBoundaries(boundaries...),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Common metric attribute keys
const (
	AttrServiceName   = "service.name"
	AttrEnvironment   = "environment"
	AttrMethod        = "http.method"
	AttrPath          = "http.path"
	AttrStatusCode    = "http.status_code"
	AttrErrorType     = "error.type"
	AttrCountyID      = "county.id"
	AttrDealID        = "deal.id"
	AttrUserID        = "user.id"
	AttrVoucherStatus = "voucher.status"
	AttrDealStatus    = "deal.status"
)

// Helper functions for common attributes
func ServiceAttr(name string) attribute.KeyValue {
	return attribute.String(AttrServiceName, name)
}

func EnvironmentAttr(env string) attribute.KeyValue {
	return attribute.String(AttrEnvironment, env)
}

func MethodAttr(method string) attribute.KeyValue {
	return attribute.String(AttrMethod, method)
}

func PathAttr(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

func StatusCodeAttr(code int) attribute.KeyValue {
	return attribute.Int(AttrStatusCode, code)
}

func ErrorTypeAttr(errType string) attribute.KeyValue {
	return attribute.String(AttrErrorType, errType)
}

func CountyIDAttr(countyID string) attribute.KeyValue {
	return attribute.String(AttrCountyID, countyID)
}

func DealIDAttr(dealID string) attribute.KeyValue {
	return attribute.String(AttrDealID, dealID)
}

func UserIDAttr(userID string) attribute.KeyValue {
	return attribute.String(AttrUserID, userID)
}

func VoucherStatusAttr(status string) attribute.KeyValue {
	return attribute.String(AttrVoucherStatus, status)
}

func DealStatusAttr(status string) attribute.KeyValue {
	return attribute.String(AttrDealStatus, status)
}
