// Package prom exports cache.Metrics as Prometheus collectors.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/memstore/cache"
)

// Adapter implements cache.Metrics on top of Prometheus counters and gauges.
// All Prometheus metric types are goroutine-safe, and so is Adapter.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  *prometheus.CounterVec
	entries prometheus.Gauge
	weight  prometheus.Gauge
}

var _ cache.Metrics = (*Adapter)(nil)

// New registers the session store collectors with reg.
//   - reg:         registry (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to every metric (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}

	a := &Adapter{
		hits:   counter("hits_total", "Session lookups that found a live record"),
		misses: counter("misses_total", "Session lookups that found nothing or an expired record"),
		evicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Records removed from the store, by reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		entries: gauge("entries", "Resident session records"),
		weight:  gauge("weight", "Total weight of resident session records"),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.entries, a.weight)
	return a
}

func (a *Adapter) Hit()  { a.hits.Inc() }
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict counts a removal under its reason label (see cache.EvictReason.String).
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

func (a *Adapter) Size(entries int, weight int64) {
	a.entries.Set(float64(entries))
	a.weight.Set(float64(weight))
}
