package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scribe_rooms_active",
		Help: "Rooms currently held in memory.",
	})
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scribe_connections_active",
		Help: "Open websocket connections.",
	})
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_events_total",
		Help: "Inbound client events by type.",
	}, []string{"type"})
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_frames_dropped_total",
		Help: "Outbound frames dropped because a send buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
