// metrics.go: OpenTelemetry metrics rendered as a terminal table
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/agilira/rcuht"
	rcuhtotel "github.com/agilira/rcuht/otel"
)

// metricsSink collects benchmark metrics in memory for a one-shot summary.
type metricsSink struct {
	reader    *sdkmetric.ManualReader
	provider  *sdkmetric.MeterProvider
	collector rcuht.MetricsCollector
}

func newMetricsSink() (*metricsSink, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	collector, err := rcuhtotel.NewOTelMetricsCollector(provider)
	if err != nil {
		return nil, fmt.Errorf("failed creating metrics collector: %w", err)
	}

	return &metricsSink{reader: reader, provider: provider, collector: collector}, nil
}

// Summary collects every metric and renders one row per instrument.
func (m *metricsSink) Summary(ctx context.Context) (string, error) {
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return "", fmt.Errorf("failed collecting metrics: %w", err)
	}

	return renderTable([]string{"Metric", "Count", "Sum", "Mean"}, summarizeMetrics(rm)), nil
}

func (m *metricsSink) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// summarizeMetrics flattens int64 histograms and sums into table rows,
// sorted by metric name.
func summarizeMetrics(rm metricdata.ResourceMetrics) [][]string {
	var rows [][]string

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Histogram[int64]:
				var count uint64
				var sum int64
				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}
				mean := "-"
				if count > 0 {
					mean = strconv.FormatInt(sum/int64(count), 10) //nolint:gosec // counts fit in int64
				}
				rows = append(rows, []string{m.Name, strconv.FormatUint(count, 10), strconv.FormatInt(sum, 10), mean})

			case metricdata.Sum[int64]:
				var sum int64
				for _, dp := range data.DataPoints {
					sum += dp.Value
				}
				rows = append(rows, []string{m.Name, "-", strconv.FormatInt(sum, 10), "-"})
			}
		}
	}

	slices.SortFunc(rows, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})

	return rows
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String()
}
