package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edirne_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edirne_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	moderationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edirne_moderation_decisions_total",
			Help: "Moderation decisions by kind, action and outcome",
		},
		[]string{"kind", "action", "outcome"},
	)

	uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edirne_uploads_total",
			Help: "Image uploads by outcome",
		},
		[]string{"outcome"},
	)

	pendingItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edirne_pending_items",
			Help: "Suggestions awaiting review per kind",
		},
		[]string{"kind"},
	)
)

// TrackRequest records one served HTTP request.
func TrackRequest(route, method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// TrackDecision records an approve or reject attempt. outcome is "ok",
// "warning", "not_found", "invalid" or "error".
func TrackDecision(kind, action, outcome string) {
	moderationDecisions.WithLabelValues(kind, action, outcome).Inc()
}

func TrackUpload(outcome string) {
	uploads.WithLabelValues(outcome).Inc()
}

func SetPending(kind string, n int) {
	pendingItems.WithLabelValues(kind).Set(float64(n))
}
