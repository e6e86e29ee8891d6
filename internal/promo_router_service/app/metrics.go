package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	inboundMessagesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo_router",
			Name:      "inbound_messages_total",
			Help:      "Total webhook deliveries seen by the router, by outcome.",
		},
		[]string{"outcome"}, // "routed", "no_message"
	)

	intentsClassifiedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo_router",
			Name:      "intents_classified_total",
			Help:      "Total inbound messages by classified intent.",
		},
		[]string{"intent"},
	)

	repliesSentCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo_router",
			Name:      "replies_total",
			Help:      "Total outbound customer replies, by purpose and outcome.",
		},
		[]string{"purpose", "outcome"}, // outcome: "sent", "failed"
	)

	promotionLookupsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo_router",
			Name:      "promotion_lookups_total",
			Help:      "Total promotion lookups, by record source and outcome.",
		},
		[]string{"source", "outcome"}, // outcome: "found", "not_found", "error"
	)

	promotionLookupDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promo_router",
			Name:      "promotion_lookup_duration_seconds",
			Help:      "Duration of record store fetch plus scan.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	escalationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo_router",
			Name:      "escalations_total",
			Help:      "Total operator escalations, by outcome.",
		},
		[]string{"outcome"}, // "sent", "send_failed", "disabled"
	)
)
