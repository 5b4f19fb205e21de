// Package metrics holds the Prometheus collectors recorded by the website
// prober and batch orchestrator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

const namespace = "finder"

// Checker groups the collectors updated while probing websites.
// A nil *Checker is valid and records nothing.
type Checker struct {
	probes    *prometheus.CounterVec
	duration  prometheus.Histogram
	inFlight  prometheus.Gauge
	deadRatio prometheus.Gauge
}

// NewChecker creates the checker collectors and registers them with reg.
// A nil registerer leaves the collectors unregistered.
func NewChecker(reg prometheus.Registerer) (*Checker, error) {
	c := &Checker{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checker",
			Name:      "probes_total",
			Help:      "Number of resolved website probes by status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checker",
			Name:      "probe_duration_seconds",
			Help:      "Wall-clock time spent resolving a website probe, retries included.",
			Buckets:   DefaultBuckets,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "checker",
			Name:      "probes_in_flight",
			Help:      "Number of website probes currently holding an admission slot.",
		}),
		deadRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "checker",
			Name:      "last_batch_dead_ratio",
			Help:      "Share of dead websites in the most recently completed batch.",
		}),
	}

	if reg == nil {
		return c, nil
	}

	for _, col := range []prometheus.Collector{c.probes, c.duration, c.inFlight, c.deadRatio} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveProbe records one resolved probe.
func (c *Checker) ObserveProbe(status string, seconds float64) {
	if c == nil {
		return
	}
	c.probes.WithLabelValues(status).Inc()
	c.duration.Observe(seconds)
}

// ProbeStarted increments the in-flight gauge.
func (c *Checker) ProbeStarted() {
	if c == nil {
		return
	}
	c.inFlight.Inc()
}

// ProbeFinished decrements the in-flight gauge.
func (c *Checker) ProbeFinished() {
	if c == nil {
		return
	}
	c.inFlight.Dec()
}

// BatchFinished records the dead ratio of a completed batch.
func (c *Checker) BatchFinished(checked, dead int) {
	if c == nil || checked == 0 {
		return
	}
	c.deadRatio.Set(float64(dead) / float64(checked))
}

// Probes exposes the probe counter, mainly for assertions.
func (c *Checker) Probes() *prometheus.CounterVec { return c.probes }

// InFlight exposes the in-flight gauge, mainly for assertions.
func (c *Checker) InFlight() prometheus.Gauge { return c.inFlight }

// DeadRatio exposes the dead ratio gauge, mainly for assertions.
func (c *Checker) DeadRatio() prometheus.Gauge { return c.deadRatio }
