// Package prom exports workspace arena metrics to Prometheus.
//
//	obs, err := prom.NewObserver(prometheus.DefaultRegisterer, "trainer")
//	ws, err := nucleus.New(nucleus.WithMetricsObserver(obs))
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/nucleus"
)

// Observer implements nucleus.MetricsObserver with Prometheus collectors.
type Observer struct {
	committedBytes prometheus.Gauge
	commitBytes    prometheus.Counter
	commits        prometheus.Counter
	resets         prometheus.Counter
	resetBytes     prometheus.Histogram
	destroys       prometheus.Counter
}

var _ nucleus.MetricsObserver = (*Observer)(nil)

// NewObserver creates an Observer and registers its collectors with reg.
// namespace prefixes every metric name and may be empty.
func NewObserver(reg prometheus.Registerer, namespace string) (*Observer, error) {
	o := &Observer{
		committedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arena_committed_bytes",
			Help:      "Bytes currently committed by the workspace arena",
		}),
		commitBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arena_commit_bytes_total",
			Help:      "Total bytes committed by the workspace arena",
		}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arena_commits_total",
			Help:      "Total commit operations",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arena_resets_total",
			Help:      "Total workspace resets",
		}),
		resetBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "arena_reset_offset_bytes",
			Help:      "Arena offset discarded per reset, i.e. memory used per step",
			Buckets:   prometheus.ExponentialBuckets(1<<16, 4, 10),
		}),
		destroys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arena_destroys_total",
			Help:      "Total arenas destroyed",
		}),
	}

	for _, c := range []prometheus.Collector{
		o.committedBytes, o.commitBytes, o.commits, o.resets, o.resetBytes, o.destroys,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnCommit implements nucleus.MetricsObserver.
func (o *Observer) OnCommit(bytes, total int) {
	o.commits.Inc()
	o.commitBytes.Add(float64(bytes))
	o.committedBytes.Set(float64(total))
}

// OnReset implements nucleus.MetricsObserver.
func (o *Observer) OnReset(offset int) {
	o.resets.Inc()
	o.resetBytes.Observe(float64(offset))
}

// OnDestroy implements nucleus.MetricsObserver.
func (o *Observer) OnDestroy(int) {
	o.destroys.Inc()
	o.committedBytes.Set(0)
}
