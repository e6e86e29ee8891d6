package whatsapp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo_router",
			Name:      "whatsapp_send_requests_total",
			Help:      "Total send API calls, by outcome and HTTP status.",
		},
		[]string{"outcome", "status_code"}, // outcome: success, rejected, transport_error
	)

	sendRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promo_router",
			Name:      "whatsapp_send_request_duration_seconds",
			Help:      "Duration of send API calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)
