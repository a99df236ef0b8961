package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	turnsTotal           *prometheus.CounterVec
	turnDuration         *prometheus.HistogramVec
	guardrailBlocksTotal *prometheus.CounterVec
	refinementsTotal     *prometheus.CounterVec
	circuitBreaksTotal   *prometheus.CounterVec
	retrievedChunks      *prometheus.HistogramVec
	llmTokensTotal       *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zpa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zpa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "zpa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zpa",
			Subsystem: "turn",
			Name:      "completed_total",
			Help:      "Total completed turns by outcome.",
		},
		[]string{"service", "outcome"},
	)
	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zpa",
			Subsystem: "turn",
			Name:      "duration_seconds",
			Help:      "Turn execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	guardrailBlocksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zpa",
			Subsystem: "turn",
			Name:      "guardrail_blocks_total",
			Help:      "Total inputs rejected by the guardrail.",
		},
		[]string{"service"},
	)
	refinementsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zpa",
			Subsystem: "turn",
			Name:      "refinements_total",
			Help:      "Total turns that entered the refinement path.",
		},
		[]string{"service"},
	)
	circuitBreaksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zpa",
			Subsystem: "turn",
			Name:      "circuit_breaks_total",
			Help:      "Total turns terminated by the quality circuit breaker.",
		},
		[]string{"service"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zpa",
			Subsystem: "retrieval",
			Name:      "fused_chunks",
			Help:      "Distribution of fused candidates injected per turn.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zpa",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Token usage by direction as reported by the provider.",
		},
		[]string{"service", "direction", "model"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		turnsTotal,
		turnDuration,
		guardrailBlocksTotal,
		refinementsTotal,
		circuitBreaksTotal,
		retrievedChunks,
		llmTokensTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		turnsTotal:           turnsTotal,
		turnDuration:         turnDuration,
		guardrailBlocksTotal: guardrailBlocksTotal,
		refinementsTotal:     refinementsTotal,
		circuitBreaksTotal:   circuitBreaksTotal,
		retrievedChunks:      retrievedChunks,
		llmTokensTotal:       llmTokensTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "/v1/sessions/") {
		return "/v1/sessions/{session_id}/history"
	}
	return path
}

func (m *HTTPServerMetrics) RecordTurn(service, outcome string, retrievedCount int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.turnsTotal.WithLabelValues(service, outcome).Inc()
	m.turnDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.retrievedChunks.WithLabelValues(service).Observe(float64(retrievedCount))
}

func (m *HTTPServerMetrics) RecordGuardrailBlock(service string) {
	m.guardrailBlocksTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordRefinement(service string) {
	m.refinementsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordCircuitBreak(service string) {
	m.circuitBreaksTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordTokenUsage(service, model string, inputTokens, outputTokens int) {
	if model == "" {
		model = "unknown"
	}
	if inputTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "in", model).Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "out", model).Add(float64(outputTokens))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
