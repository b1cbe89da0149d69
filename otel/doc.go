// Package otel provides OpenTelemetry integration for rcuht benchmark metrics.
//
// # Overview
//
// This package implements the rcuht.MetricsCollector interface using
// OpenTelemetry. Per-operation latencies become histograms, found/missed
// outcomes become counters, and the reclaimer reports grace-period
// durations and deferred frees.
//
// # Quick Start
//
//	reader := metric.NewManualReader()
//	provider := metric.NewMeterProvider(metric.WithReader(reader))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := rcuhtotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	coord, err := rcuht.NewCoordinator(rcuht.Config{
//	    Strategy:         rcuht.StrategyGracePeriod,
//	    MetricsCollector: collector,
//	})
//
// # Metrics Exposed
//
//   - rcuht_insert_latency_ns, rcuht_remove_latency_ns, rcuht_read_latency_ns:
//     operation latency histograms, attribute "outcome" = hit|miss
//   - rcuht_ops_total: operation counter, attributes "op" and "outcome"
//   - rcuht_grace_period_ns: grace-period duration histogram
//   - rcuht_deferred_frees_total: entries freed by the deferred reclaimer
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel
