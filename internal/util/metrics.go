package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_created_total",
		Help: "Total number of order lines created or incremented",
	})

	OrdersUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_updated_total",
		Help: "Total number of order line quantity updates",
	})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_deleted_total",
		Help: "Total number of order lines deleted",
	})

	TransfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_order_transfers_total",
		Help: "Total number of completed table-to-table order transfers",
	})

	TransfersFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_order_transfers_failed_total",
		Help: "Total number of rolled-back order transfers",
	})

	PaymentsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_payments_settled_total",
		Help: "Total number of settled payments",
	}, []string{"payment_type"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_events_published_total",
		Help: "Total number of events broadcast to subscribers",
	}, []string{"event"})

	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_events_dropped_total",
		Help: "Total number of events dropped for slow subscribers",
	})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pos_connected_clients",
		Help: "Number of currently connected realtime clients",
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
