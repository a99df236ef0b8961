// Package httpadapter exposes the conversational engine over HTTP.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/observability/metrics"
)

const defaultHistoryLimit = 50

type Router struct {
	turns     ports.TurnRunner
	history   ports.HistoryReader
	analytics ports.AnalyticsReader
	metrics   *metrics.HTTPServerMetrics
	service   string
	logger    *slog.Logger
}

func NewRouter(
	turns ports.TurnRunner,
	history ports.HistoryReader,
	analytics ports.AnalyticsReader,
	serverMetrics *metrics.HTTPServerMetrics,
	service string,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		turns:     turns,
		history:   history,
		analytics: analytics,
		metrics:   serverMetrics,
		service:   service,
		logger:    logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/sessions/", rt.sessionHistory)
	mux.HandleFunc("/v1/analytics", rt.analyticsSummary)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(rt.logger, handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		UserID    string `json:"user_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.UserID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id and user_id are required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	stream, err := newSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	start := time.Now()
	result := rt.turns.RunTurn(r.Context(), domain.TurnRequest{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Input:     req.Message,
	}, stream.SendDelta)
	stream.Done()

	rt.recordTurn(result, time.Since(start))
}

func (rt *Router) recordTurn(result *domain.TurnResult, elapsed time.Duration) {
	if result == nil || rt.metrics == nil {
		return
	}
	rt.metrics.RecordTurn(rt.service, string(result.Outcome), result.RetrievedCount, elapsed)
	if result.Outcome == domain.OutcomeBlocked {
		rt.metrics.RecordGuardrailBlock(rt.service)
	}
	if result.RefinementAttempts > 0 {
		rt.metrics.RecordRefinement(rt.service)
	}
	if result.CircuitBreakerTriggered {
		rt.metrics.RecordCircuitBreak(rt.service)
	}
	if result.Usage != nil {
		rt.metrics.RecordTokenUsage(rt.service, "", result.Usage.InputTokens, result.Usage.OutputTokens)
	}
}

func (rt *Router) sessionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	sessionID, ok := strings.CutSuffix(rest, "/history")
	if !ok || sessionID == "" || strings.Contains(sessionID, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	turns, err := rt.history.LoadHistory(r.Context(), sessionID, userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
	})
}

func (rt *Router) analyticsSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	summary, err := rt.analytics.AnalyticsSummary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
