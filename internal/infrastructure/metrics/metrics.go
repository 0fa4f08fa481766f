package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Provider webhook deliveries by outcome",
	}, []string{"outcome"})

	OrdersIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_ingested_total",
		Help: "Orders created from provider checkout events",
	})

	OrdersIngestedAmountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_ingested_amount_total",
		Help: "Total amount of ingested orders in minor units",
	})

	PlatformFeesCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "platform_fees_collected_total",
		Help: "Platform fees collected in minor units",
	})

	DeliveryCutsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "delivery_cuts_collected_total",
		Help: "Platform delivery cuts collected in minor units",
	})

	CollectionRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collection_runs_total",
		Help: "Completed fee collection runs",
	})

	InvariantViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_invariant_violations_total",
		Help: "Rejected writes that would have broken a sum invariant",
	}, []string{"kind"})

	DispatchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payout_dispatch_failures_total",
		Help: "External transfer calls that did not confirm success",
	})

	OutboxPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events relayed to the broker",
	})

	ReconciliationDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconciliation_degraded_responses_total",
		Help: "Read requests served empty because of an internal failure",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
