// Package metrics holds the Prometheus collectors shared by the API and the worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "courtbooking"

var (
	Drafts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "drafts_total",
		Help:      "Draft creation attempts by result.",
	}, []string{"result"})

	ReservationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_events_total",
		Help:      "Reservation lifecycle events by type.",
	}, []string{"type"})

	PaymentProviderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_provider_errors_total",
		Help:      "Failed payment redirect requests.",
	})

	HTTPRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)

func ObserveRequest(method, route string, code int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
