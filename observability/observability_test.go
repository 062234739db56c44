package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xrbtree/lib/tree"
)

func newChurnedTree(t *testing.T) tree.RBTree[int, int] {
	t.Helper()
	rbtree := tree.NewOrderedRBTree[int]()
	for _, key := range lo.Range(32) {
		require.NoError(t, rbtree.Insert(tree.NewRBNode(key)))
	}
	for _, key := range lo.Range(8) {
		_, err := rbtree.Remove(key * 3)
		require.NoError(t, err)
	}
	return rbtree
}

func collectInt64(t *testing.T, rm metricdata.ResourceMetrics) map[string]int64 {
	t.Helper()
	res := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Gauge[int64]:
				require.Len(t, data.DataPoints, 1)
				res[m.Name] = data.DataPoints[0].Value
			case metricdata.Sum[int64]:
				require.Len(t, data.DataPoints, 1)
				require.True(t, data.IsMonotonic)
				res[m.Name] = data.DataPoints[0].Value
				name, ok := data.DataPoints[0].Attributes.Value(attribute.Key("rbtree.name"))
				require.True(t, ok)
				require.Equal(t, "ints", name.AsString())
			default:
			}
		}
	}
	return res
}

func TestRegisterRBTreeMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		require.NoError(t, mp.Shutdown(context.Background()))
	}()

	rbtree := newChurnedTree(t)
	reg, err := RegisterRBTreeMetrics(mp.Meter("xrbtree/test"), "ints", rbtree)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	got := collectInt64(t, rm)
	stats := rbtree.Stats()
	require.Equal(t, int64(24), got["rbtree.size"])
	require.Equal(t, stats.Inserts, got["rbtree.inserts"])
	require.Equal(t, stats.Removes, got["rbtree.removes"])
	require.Equal(t, stats.Rotations, got["rbtree.rotations"])
	require.Equal(t, stats.InsertRecolors, got["rbtree.insert.recolors"])
	require.Equal(t, stats.RemoveRebalances, got["rbtree.remove.rebalances"])
	require.Equal(t, int64(0), got["rbtree.replaces"])

	// Observed on each collection.
	require.NoError(t, rbtree.Insert(tree.NewRBNode(100)))
	rm = metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Equal(t, int64(25), collectInt64(t, rm)["rbtree.size"])

	require.NoError(t, reg.Unregister())

	_, err = RegisterRBTreeMetrics(mp.Meter("xrbtree/test"), "nil", nil)
	require.ErrorIs(t, err, errNilRBTreeStatsSource)
}

func TestConsoleMetricsExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	mp, err := NewConsoleMetricsExporter(buf, time.Hour, time.Second)
	require.NoError(t, err)

	_, err = RegisterRBTreeMetrics(mp.Meter("xrbtree/test"), "ints", newChurnedTree(t))
	require.NoError(t, err)
	// Shutdown exports the pending metrics.
	require.NoError(t, mp.Shutdown(context.Background()))
	require.Contains(t, buf.String(), "rbtree.size")
	require.Contains(t, buf.String(), "rbtree.rotations")
}

func TestPrometheusMetricsExporter(t *testing.T) {
	registry := promclient.NewRegistry()
	mp, err := NewPrometheusMetricsExporter(registry)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, mp.Shutdown(context.Background()))
	}()

	_, err = RegisterRBTreeMetrics(mp.Meter("xrbtree/test"), "ints", newChurnedTree(t))
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := lo.Map(families, func(mf *dto.MetricFamily, _ int) string {
		return mf.GetName()
	})
	require.Contains(t, names, "rbtree_size")
	require.Contains(t, names, "rbtree_inserts_total")
	size, ok := lo.Find(families, func(mf *dto.MetricFamily) bool {
		return mf.GetName() == "rbtree_size"
	})
	require.True(t, ok)
	require.Equal(t, float64(24), size.GetMetric()[0].GetGauge().GetValue())
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ctx, cancel := context.WithCancel(context.Background())
	shutdown := make(chan struct{})
	require.NoError(t, InitAppStats(ctx, mp, " ", func(ctx context.Context) error {
		defer close(shutdown)
		return mp.Shutdown(ctx)
	}))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	scope, ok := lo.Find(rm.ScopeMetrics, func(sm metricdata.ScopeMetrics) bool {
		return sm.Scope.Name == "xrbtree/app/default"
	})
	require.True(t, ok)
	names := lo.Map(scope.Metrics, func(m metricdata.Metrics, _ int) string {
		return m.Name
	})
	require.ElementsMatch(t, []string{"app.core.goroutines", "app.core.processes"}, names)

	cancel()
	select {
	case <-shutdown:
	case <-time.After(5 * time.Second):
		require.Fail(t, "shutdown callback is not invoked")
	}
}

func TestParseMetricsExporterType(t *testing.T) {
	testcases := []struct {
		name     string
		input    string
		expected MetricsExporterType
		hasErr   bool
	}{
		{name: "empty", input: "", expected: NoneMetricsExporter},
		{name: "none", input: "none", expected: NoneMetricsExporter},
		{name: "stdout", input: " Stdout ", expected: StdoutMetricsExporter},
		{name: "prometheus", input: "PROMETHEUS", expected: PrometheusMetricsExporter},
		{name: "unknown", input: "statsd", expected: NoneMetricsExporter, hasErr: true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			typ, err := ParseMetricsExporterType(tc.input)
			if tc.hasErr {
				require.ErrorIs(tt, err, ErrUnknownMetricsExporter)
			} else {
				require.NoError(tt, err)
			}
			require.Equal(tt, tc.expected, typ)
		})
	}

	mp, err := NewMeterProvider(NoneMetricsExporter, nil)
	require.NoError(t, err)
	require.Nil(t, mp)
	_, err = NewMeterProvider(MetricsExporterType("statsd"), nil)
	require.ErrorIs(t, err, ErrUnknownMetricsExporter)
}
