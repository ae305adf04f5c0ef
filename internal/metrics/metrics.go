// Package metrics declares the Prometheus instruments for the meeting
// backend. Declared close to the domain it describes, matching the
// corpus's convention of namespace/subsystem/name metric grouping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks current duplex connections (Gauge).
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "relaymeet",
		Subsystem: "ws",
		Name:      "connections_active",
		Help:      "Current number of active duplex connections",
	})

	// ActiveRooms tracks current rooms in the registry (Gauge).
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "relaymeet",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// RoomParticipants tracks participant count per room (GaugeVec).
	RoomParticipants = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "relaymeet",
		Subsystem: "room",
		Name:      "participants_count",
		Help:      "Number of participants in each room",
	}, []string{"room_code"})

	// WSEvents tracks inbound duplex events processed (CounterVec).
	WSEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaymeet",
		Subsystem: "ws",
		Name:      "events_total",
		Help:      "Total duplex events processed",
	}, []string{"event", "status"})

	// ChatMessages tracks chat records appended (Counter).
	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relaymeet",
		Subsystem: "chat",
		Name:      "messages_total",
		Help:      "Total chat messages appended across all rooms",
	})

	// UploadBytesReceived tracks total bytes ingested by the upload manager (Counter).
	UploadBytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relaymeet",
		Subsystem: "upload",
		Name:      "bytes_received_total",
		Help:      "Total bytes received across all chunked uploads",
	})

	// UploadSessionsActive tracks in-flight upload sessions (Gauge).
	UploadSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "relaymeet",
		Subsystem: "upload",
		Name:      "sessions_active",
		Help:      "Current number of in-flight upload sessions",
	})

	// UploadErrors tracks aborted uploads by reason (CounterVec).
	UploadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relaymeet",
		Subsystem: "upload",
		Name:      "errors_total",
		Help:      "Total upload sessions aborted, labeled by reason",
	}, []string{"reason"})
)
