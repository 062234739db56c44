package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"errors"
	"io"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type MetricsExporterType string

const (
	NoneMetricsExporter       MetricsExporterType = "none"
	StdoutMetricsExporter     MetricsExporterType = "stdout"
	PrometheusMetricsExporter MetricsExporterType = "prometheus"
)

var ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter")

func ParseMetricsExporterType(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case NoneMetricsExporter, StdoutMetricsExporter, PrometheusMetricsExporter:
		return t, nil
	case "":
		return NoneMetricsExporter, nil
	default:
	}
	return NoneMetricsExporter, ErrUnknownMetricsExporter
}

// NewConsoleMetricsExporter serves for test/dev environment.
// The metrics are written into w every interval and once more when the
// provider shuts down.
func NewConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration) (*metric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithoutTimestamps(),
	)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp, nil
}

// NewPrometheusMetricsExporter serves for the product environment and
// fetch stats metrics by HTTP. A nil registerer means the prometheus
// default one.
func NewPrometheusMetricsExporter(registerer promclient.Registerer) (*metric.MeterProvider, error) {
	opts := make([]prometheus.Option, 0, 1)
	if registerer != nil {
		opts = append(opts, prometheus.WithRegisterer(registerer))
	}
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp, nil
}

// NewMeterProvider builds the provider of typ, nil for none.
func NewMeterProvider(typ MetricsExporterType, w io.Writer) (*metric.MeterProvider, error) {
	switch typ {
	case StdoutMetricsExporter:
		return NewConsoleMetricsExporter(w, 10*time.Second, 5*time.Second)
	case PrometheusMetricsExporter:
		return NewPrometheusMetricsExporter(nil)
	case NoneMetricsExporter:
		return nil, nil
	default:
	}
	return nil, ErrUnknownMetricsExporter
}
