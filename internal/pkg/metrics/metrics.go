/*
Package metrics defines the Prometheus instrumentation for the pairing server.

All metrics are registered against an injected Registerer so tests can use an
isolated registry per instance.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pairing server.
type Metrics struct {
	QueueDepth       prometheus.Gauge
	ActiveSessions   prometheus.Gauge
	OpenConnections  prometheus.Gauge
	PairingsTotal    prometheus.Counter
	MessagesTotal    prometheus.Counter
	PartnerLeftTotal prometheus.Counter
	QueuePurgedTotal prometheus.Counter
}

// New creates all metrics and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blahbluh_queue_depth",
			Help: "Number of users currently waiting for a partner",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blahbluh_active_sessions",
			Help: "Number of active chat sessions",
		}),
		OpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blahbluh_open_connections",
			Help: "Number of open WebSocket connections across all users",
		}),
		PairingsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "blahbluh_pairings_total",
			Help: "Total chat sessions created by the pairing engine",
		}),
		MessagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "blahbluh_messages_total",
			Help: "Total chat messages relayed",
		}),
		PartnerLeftTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "blahbluh_partner_left_total",
			Help: "Total partner-left notifications sent",
		}),
		QueuePurgedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "blahbluh_queue_purged_total",
			Help: "Total offline entries purged from the waiting queue",
		}),
	}
}
