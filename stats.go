package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the relay. Registered on the default registry;
// expose them by mounting promhttp.Handler() in the server binary.
var (
	statActiveConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "relay_active_connections",
		Help: "Number of open websocket connections by kind.",
	}, []string{"kind"})

	statUpgradesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_upgrades_rejected_total",
		Help: "Connection upgrades rejected before reaching Open, by reason.",
	}, []string{"reason"})

	statMessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_relayed_total",
		Help: "Inbound topic messages fanned out on a topic channel.",
	})

	statMessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_appended_total",
		Help: "Messages durably appended to a topic log.",
	})

	statRealtimeBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_realtime_broadcasts_total",
		Help: "Snapshot notifications published on the global channel.",
	})
)
