// Package observability bundles the Prometheus metrics the daemon exports
// and the handler that serves them.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the dishwatch metrics, registered against a single
// registerer so tests can use an isolated registry.
type Collector struct {
	gatherer prometheus.Gatherer

	LinkUp            prometheus.Gauge
	VisibleSatellites prometheus.Gauge
	HandoverSeconds   prometheus.Gauge

	MonitorCycles    prometheus.Counter
	RecoveryAttempts *prometheus.CounterVec
	TLERefreshes     *prometheus.CounterVec
	LedgerSize       prometheus.Gauge
}

// NewCollector registers the dishwatch metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		LinkUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dishwatch_link_up",
			Help: "1 when the satellite link is up, 0 when it is down.",
		}),
		VisibleSatellites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dishwatch_visible_satellites",
			Help: "Number of constellation satellites currently above the horizon.",
		}),
		HandoverSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dishwatch_handover_seconds",
			Help: "Seconds until the next scheduled handover boundary.",
		}),
		MonitorCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dishwatch_monitor_cycles_total",
			Help: "Completed monitor cycles.",
		}),
		RecoveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dishwatch_recovery_attempts_total",
			Help: "Recovery sessions run, labeled by terminal outcome.",
		}, []string{"outcome"}),
		TLERefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dishwatch_tle_refreshes_total",
			Help: "Orbital element refresh attempts, labeled by result.",
		}, []string{"result"}),
		LedgerSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dishwatch_ledger_records",
			Help: "Access points remembered in the connection ledger.",
		}),
	}

	collectors := []prometheus.Collector{
		c.LinkUp, c.VisibleSatellites, c.HandoverSeconds,
		c.MonitorCycles, c.RecoveryAttempts, c.TLERefreshes, c.LedgerSize,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
