// Package metrics exposes buffer, journal and pool counters through a
// Prometheus registry.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/core"
	"github.com/slyt3/Gyre/internal/journal"
	"github.com/slyt3/Gyre/internal/pool"
)

const namespace = "gyre"

// BufferSource reports buffer state. *core.Engine satisfies it.
type BufferSource interface {
	State() core.State
}

// JournalSource reports journal worker counters. *journal.Worker satisfies it.
type JournalSource interface {
	Stats() (processed, dropped uint64)
	QueueDepth() (int, int)
	BlockedSubmits() uint64
	LatencyMetrics() journal.LatencySnapshot
}

// Registry owns a private Prometheus registry and implements core.Observer.
type Registry struct {
	reg    *prometheus.Registry
	pushes *prometheus.CounterVec
	pulls  *prometheus.CounterVec
}

// New creates a registry with the operation counters and record pool
// metrics registered.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		pushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "push_total",
				Help:      "Push operations by outcome (ok, full)",
			},
			[]string{"outcome"},
		),
		pulls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pull_total",
				Help:      "Pull operations by outcome (ok, empty)",
			},
			[]string{"outcome"},
		),
	}

	r.reg.MustRegister(
		r.pushes,
		r.pulls,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "record_hits_total",
			Help:      "Records served from the pool",
		}, func() float64 { return float64(pool.GetMetrics().RecordHits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "record_misses_total",
			Help:      "Records allocated because the pool was empty",
		}, func() float64 { return float64(pool.GetMetrics().RecordMisses) }),
	)
	return r
}

// ObservePush counts a push outcome.
func (r *Registry) ObservePush(outcome string) {
	r.pushes.WithLabelValues(outcome).Inc()
}

// ObservePull counts a pull outcome.
func (r *Registry) ObservePull(outcome string) {
	r.pulls.WithLabelValues(outcome).Inc()
}

// RegisterBuffer adds depth and capacity gauges read from src at scrape time.
func (r *Registry) RegisterBuffer(src BufferSource) error {
	if err := assert.NotNil(src, "buffer source"); err != nil {
		return err
	}
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "depth",
			Help:      "Values currently held in the buffer",
		}, func() float64 { return float64(src.State().Len) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "buffer",
			Name:      "capacity",
			Help:      "Fixed buffer capacity",
		}, func() float64 { return float64(src.State().Capacity) }),
	}
	return r.register(collectors)
}

// RegisterJournal adds the journal worker counters, queue gauges and the
// processing latency histogram.
func (r *Registry) RegisterJournal(src JournalSource) error {
	if err := assert.NotNil(src, "journal source"); err != nil {
		return err
	}
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "records_processed_total",
			Help:      "Records chained and written to the journal",
		}, func() float64 {
			processed, _ := src.Stats()
			return float64(processed)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "records_dropped_total",
			Help:      "Records dropped due to backpressure or shutdown",
		}, func() float64 {
			_, dropped := src.Stats()
			return float64(dropped)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "blocked_submits_total",
			Help:      "Wait rounds spent by submitters on a full queue",
		}, func() float64 { return float64(src.BlockedSubmits()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "queue_depth",
			Help:      "Records waiting in the journal queue",
		}, func() float64 {
			depth, _ := src.QueueDepth()
			return float64(depth)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "queue_capacity",
			Help:      "Journal queue capacity",
		}, func() float64 {
			_, capacity := src.QueueDepth()
			return float64(capacity)
		}),
		newLatencyCollector(src),
	}
	return r.register(collectors)
}

// Gatherer returns the underlying registry for scraping or tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) register(collectors []prometheus.Collector) error {
	for _, c := range collectors {
		if err := r.reg.Register(c); err != nil {
			return fmt.Errorf("registering collector: %w", err)
		}
	}
	return nil
}

// latencyCollector turns the worker's atomic histogram into a const
// histogram on every scrape.
type latencyCollector struct {
	src  JournalSource
	desc *prometheus.Desc
}

func newLatencyCollector(src JournalSource) *latencyCollector {
	return &latencyCollector{
		src: src,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "journal", "record_latency_seconds"),
			"Time to chain and store one journal record",
			nil, nil,
		),
	}
}

func (c *latencyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *latencyCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.src.LatencyMetrics()

	// Last bucket is +Inf and implied by the count.
	buckets := make(map[float64]uint64, len(snap.BoundsNs)-1)
	var cumulative uint64
	for i := 0; i < len(snap.BoundsNs)-1; i++ {
		cumulative += snap.Counts[i]
		buckets[float64(snap.BoundsNs[i])/1e9] = cumulative
	}
	count := snap.Count
	if count < cumulative {
		count = cumulative
	}
	ch <- prometheus.MustNewConstHistogram(c.desc, count, float64(snap.SumNs)/1e9, buckets)
}
