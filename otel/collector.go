// collector.go: OpenTelemetry implementation of rcuht.MetricsCollector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package otel

import (
	"context"
	"errors"

	"github.com/agilira/rcuht"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements rcuht.MetricsCollector using OpenTelemetry.
//
// Thread-safety: Safe for concurrent use by multiple goroutines.
// Attribute sets are built once so recording does not allocate them.
type OTelMetricsCollector struct {
	insertLatency metric.Int64Histogram
	removeLatency metric.Int64Histogram
	readLatency   metric.Int64Histogram
	gracePeriod   metric.Int64Histogram
	ops           metric.Int64Counter
	deferredFrees metric.Int64Counter

	hit, miss metric.MeasurementOption

	// ops attributes indexed by [op][hit]
	opAttrs [3][2]metric.MeasurementOption
}

// Options for configuring OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/rcuht"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

const (
	opInsert = iota
	opRemove
	opRead
)

// NewOTelMetricsCollector creates a new OpenTelemetry metrics collector.
// Returns an error if provider is nil or an instrument cannot be created.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{
		MeterName: "github.com/agilira/rcuht",
	}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	if c.insertLatency, err = latencyHistogram(meter, "rcuht_insert_latency_ns", "Latency of Insert operations in nanoseconds"); err != nil {
		return nil, err
	}
	if c.removeLatency, err = latencyHistogram(meter, "rcuht_remove_latency_ns", "Latency of Remove operations in nanoseconds"); err != nil {
		return nil, err
	}
	if c.readLatency, err = latencyHistogram(meter, "rcuht_read_latency_ns", "Latency of Read operations in nanoseconds"); err != nil {
		return nil, err
	}
	if c.gracePeriod, err = latencyHistogram(meter, "rcuht_grace_period_ns", "Duration of grace periods in nanoseconds"); err != nil {
		return nil, err
	}

	c.ops, err = meter.Int64Counter(
		"rcuht_ops_total",
		metric.WithDescription("Total number of strategy operations"),
	)
	if err != nil {
		return nil, err
	}

	c.deferredFrees, err = meter.Int64Counter(
		"rcuht_deferred_frees_total",
		metric.WithDescription("Total number of entries freed by the deferred reclaimer"),
	)
	if err != nil {
		return nil, err
	}

	c.hit = metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", "hit")))
	c.miss = metric.WithAttributeSet(attribute.NewSet(attribute.String("outcome", "miss")))
	for op, name := range []string{"insert", "remove", "read"} {
		for h, outcome := range []string{"miss", "hit"} {
			c.opAttrs[op][h] = metric.WithAttributeSet(attribute.NewSet(
				attribute.String("op", name),
				attribute.String("outcome", outcome),
			))
		}
	}

	return c, nil
}

func latencyHistogram(meter metric.Meter, name, desc string) (metric.Int64Histogram, error) {
	return meter.Int64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ns"))
}

func (c *OTelMetricsCollector) outcome(hit bool) metric.MeasurementOption {
	if hit {
		return c.hit
	}
	return c.miss
}

func (c *OTelMetricsCollector) countOp(ctx context.Context, op int, hit bool) {
	h := 0
	if hit {
		h = 1
	}
	c.ops.Add(ctx, 1, c.opAttrs[op][h])
}

// RecordInsert records an Insert latency and whether it stored.
func (c *OTelMetricsCollector) RecordInsert(latencyNs int64, stored bool) {
	ctx := context.Background()
	c.insertLatency.Record(ctx, latencyNs, c.outcome(stored))
	c.countOp(ctx, opInsert, stored)
}

// RecordRemove records a Remove latency and whether the key was found.
func (c *OTelMetricsCollector) RecordRemove(latencyNs int64, found bool) {
	ctx := context.Background()
	c.removeLatency.Record(ctx, latencyNs, c.outcome(found))
	c.countOp(ctx, opRemove, found)
}

// RecordRead records a Read latency and whether the key was found.
func (c *OTelMetricsCollector) RecordRead(latencyNs int64, found bool) {
	ctx := context.Background()
	c.readLatency.Record(ctx, latencyNs, c.outcome(found))
	c.countOp(ctx, opRead, found)
}

// RecordGracePeriod records the duration of one grace period.
func (c *OTelMetricsCollector) RecordGracePeriod(latencyNs int64) {
	c.gracePeriod.Record(context.Background(), latencyNs)
}

// RecordDeferredFree records n entries freed by the deferred reclaimer.
func (c *OTelMetricsCollector) RecordDeferredFree(n int) {
	c.deferredFrees.Add(context.Background(), int64(n))
}

// Compile-time interface check
var _ rcuht.MetricsCollector = (*OTelMetricsCollector)(nil)
