package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openbooks",
			Name:      "orders_total",
			Help:      "Total number of accepted instructions.",
		},
		[]string{"kind"}, // limit/market/stop/cancel
	)

	MatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "openbooks",
		Name:      "matches_total",
		Help:      "Total number of match records.",
	})

	MatchedQtyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "openbooks",
		Name:      "matched_qty_total",
		Help:      "Total matched quantity.",
	})

	StopsTriggeredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "openbooks",
		Name:      "stops_triggered_total",
		Help:      "Total number of stop orders promoted to market orders.",
	})

	RejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openbooks",
			Name:      "rejects_total",
			Help:      "Total number of rejected instructions.",
		},
		[]string{"reason"},
	)

	MailboxFullTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "openbooks",
		Name:      "mailbox_full_total",
		Help:      "Total number of TryEnqueue calls refused by a full mailbox.",
	})

	EventsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "openbooks",
		Name:      "events_dropped_total",
		Help:      "Total number of events dropped by a full event bus.",
	})

	RestingOrders = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "openbooks",
			Name:      "resting_orders",
			Help:      "Resting heap entries per side (lazy-cancelled entries included).",
		},
		[]string{"side"},
	)

	BatchApplySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "openbooks",
		Name:      "batch_apply_seconds",
		Help:      "Actor batch apply latency",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15), // 10us ~ 160ms
	})
)

var registerOnce sync.Once

// MustRegister 注册到默认 registry，多次调用只注册一次
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			OrdersTotal, MatchesTotal, MatchedQtyTotal, StopsTriggeredTotal,
			RejectsTotal, MailboxFullTotal, EventsDroppedTotal, RestingOrders,
			BatchApplySeconds,
		)
	})
}
