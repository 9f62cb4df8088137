// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BillsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoizo_bills_saved_total",
			Help: "Sales and purchase bills created or replaced.",
		},
		[]string{"kind"},
	)

	DayBookSaves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invoizo_daybook_saves_total",
			Help: "Book-keeping day saves.",
		},
	)

	NotificationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoizo_notifications_generated_total",
			Help: "Notifications appended by the overdue check, by title.",
		},
		[]string{"type"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
