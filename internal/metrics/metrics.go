package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractify_extractions_total",
			Help: "Conversations run through field extraction",
		},
		[]string{"method"}, // regex, hybrid
	)

	FieldsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractify_fields_found_total",
			Help: "Fields resolved to a value other than NA",
		},
		[]string{"field", "source"}, // source: regex, llm, scenario
	)

	LLMErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractify_llm_errors_total",
			Help: "LLM extraction failures",
		},
		[]string{"stage"}, // call, parse
	)

	LLMCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extractify_llm_call_duration_seconds",
			Help:    "LLM completion latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extractify_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)
)

func RecordExtraction(method string) {
	ExtractionsTotal.WithLabelValues(method).Inc()
}

func RecordFieldFound(field, source string) {
	FieldsFound.WithLabelValues(field, source).Inc()
}

func RecordLLMError(stage string) {
	LLMErrors.WithLabelValues(stage).Inc()
}

func RecordLLMCall(d time.Duration) {
	LLMCallDuration.Observe(d.Seconds())
}

// Middleware records request latency labelled by the matched chi route
// pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
