package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metastor",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "metastor",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "metastor",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metastor",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Wallet login attempts by outcome",
		},
		[]string{"outcome"},
	)

	quotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metastor",
			Subsystem: "subscription",
			Name:      "quotes_total",
			Help:      "Subscription quotes issued by tier and period",
		},
		[]string{"tier", "period"},
	)

	confirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metastor",
			Subsystem: "payment",
			Name:      "confirmations_total",
			Help:      "Transaction confirmation waits by outcome",
		},
		[]string{"outcome"},
	)

	confirmationPolls = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "metastor",
			Subsystem: "payment",
			Name:      "confirmation_polls",
			Help:      "Ledger status polls per confirmation wait",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 31},
		},
	)

	uploadAdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metastor",
			Subsystem: "storage",
			Name:      "upload_admissions_total",
			Help:      "Upload admission decisions",
		},
		[]string{"decision", "tier"},
	)

	uploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "metastor",
			Subsystem: "storage",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes accepted into the blob store",
		},
	)

	oraclePrice = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "metastor",
			Subsystem: "oracle",
			Name:      "price",
			Help:      "Last native token price returned by the oracle",
		},
	)
)

// Middleware records request count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		code := wrapped.Status()
		if code == 0 {
			code = http.StatusOK
		}
		status := strconv.Itoa(code)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordLogin(outcome string) {
	loginsTotal.WithLabelValues(outcome).Inc()
}

func RecordQuote(tier, period string) {
	quotesTotal.WithLabelValues(tier, period).Inc()
}

func RecordUploadAdmission(decision, tier string) {
	uploadAdmissionsTotal.WithLabelValues(decision, tier).Inc()
}

func RecordUploadedBytes(n int64) {
	uploadedBytesTotal.Add(float64(n))
}

func SetOraclePrice(price float64) {
	oraclePrice.Set(price)
}

// ConfirmationObserver plugs the payment poller into the registry.
type ConfirmationObserver struct{}

func (ConfirmationObserver) ObserveConfirmation(outcome string, polls int) {
	confirmationsTotal.WithLabelValues(outcome).Inc()
	confirmationPolls.Observe(float64(polls))
}
