package observability

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xrbtree/lib/tree"
)

var errNilRBTreeStatsSource = errors.New("[observability] nil rbtree stats source")

// RBTreeStatsSource is satisfied by any tree.RBTree.
type RBTreeStatsSource interface {
	ID() uint64
	Stats() tree.RBTreeStats
}

type rbTreeInstruments struct {
	size             metric.Int64ObservableGauge
	inserts          metric.Int64ObservableCounter
	replaces         metric.Int64ObservableCounter
	removes          metric.Int64ObservableCounter
	rotations        metric.Int64ObservableCounter
	insertRecolors   metric.Int64ObservableCounter
	removeRebalances metric.Int64ObservableCounter
}

func newRBTreeInstruments(meter metric.Meter) *rbTreeInstruments {
	counter := func(name, desc string) metric.Int64ObservableCounter {
		return lo.Must[metric.Int64ObservableCounter](meter.Int64ObservableCounter(
			name,
			metric.WithDescription(desc),
		))
	}
	return &rbTreeInstruments{
		size: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"rbtree.size",
			metric.WithDescription("The number of linked nodes."),
		)),
		inserts:          counter("rbtree.inserts", "The number of linked nodes in total."),
		replaces:         counter("rbtree.replaces", "The number of replaced nodes in total."),
		removes:          counter("rbtree.removes", "The number of unlinked nodes in total."),
		rotations:        counter("rbtree.rotations", "The number of rotations in total."),
		insertRecolors:   counter("rbtree.insert.recolors", "The number of red uncle recolors by insertion."),
		removeRebalances: counter("rbtree.remove.rebalances", "The number of double black fixups by removal."),
	}
}

func (ins *rbTreeInstruments) observables() []metric.Observable {
	return []metric.Observable{
		ins.size,
		ins.inserts,
		ins.replaces,
		ins.removes,
		ins.rotations,
		ins.insertRecolors,
		ins.removeRebalances,
	}
}

// RegisterRBTreeMetrics exports the stats of src as observable instruments.
// The stats are read on every collection, call Unregister on the returned
// registration before the tree is released.
func RegisterRBTreeMetrics(meter metric.Meter, name string, src RBTreeStatsSource) (metric.Registration, error) {
	if src == nil {
		return nil, errNilRBTreeStatsSource
	}
	ins := newRBTreeInstruments(meter)
	attrs := metric.WithAttributes(
		attribute.String("rbtree.name", name),
		attribute.Int64("rbtree.id", int64(src.ID())),
	)
	return meter.RegisterCallback(func(ctx context.Context, ob metric.Observer) error {
		stats := src.Stats()
		ob.ObserveInt64(ins.size, stats.Len, attrs)
		ob.ObserveInt64(ins.inserts, stats.Inserts, attrs)
		ob.ObserveInt64(ins.replaces, stats.Replaces, attrs)
		ob.ObserveInt64(ins.removes, stats.Removes, attrs)
		ob.ObserveInt64(ins.rotations, stats.Rotations, attrs)
		ob.ObserveInt64(ins.insertRecolors, stats.InsertRecolors, attrs)
		ob.ObserveInt64(ins.removeRebalances, stats.RemoveRebalances, attrs)
		return nil
	}, ins.observables()...)
}
