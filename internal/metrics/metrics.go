// Package metrics exposes broker counters on the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatserver_active_connections",
		Help: "Currently open websocket connections.",
	})
	MessagesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatserver_messages_persisted_total",
		Help: "Chat messages durably stored.",
	})
	MessagesFannedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatserver_messages_fanned_out_total",
		Help: "Per-recipient deliveries of persisted messages.",
	})
	FanoutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatserver_fanout_failures_total",
		Help: "Recipient pushes that failed and triggered cleanup.",
	})
	JoinsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatserver_joins_rejected_total",
		Help: "Join requests refused for a bad or unknown room id.",
	})
)
