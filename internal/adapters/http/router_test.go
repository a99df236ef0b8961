package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

type fakeRunner struct {
	chunks []string
	result *domain.TurnResult
	req    domain.TurnRequest
}

func (f *fakeRunner) RunTurn(_ context.Context, req domain.TurnRequest, emit ports.ChunkEmitter) *domain.TurnResult {
	f.req = req
	for _, chunk := range f.chunks {
		_ = emit(chunk)
	}
	if f.result != nil {
		return f.result
	}
	return &domain.TurnResult{Outcome: domain.OutcomeAccepted}
}

type fakeHistory struct {
	turns []domain.Turn
	err   error
	limit int
}

func (f *fakeHistory) LoadHistory(_ context.Context, _, _ string, limit int) ([]domain.Turn, error) {
	f.limit = limit
	return f.turns, f.err
}

type fakeAnalytics struct {
	summary domain.AnalyticsSummary
	err     error
}

func (f *fakeAnalytics) AnalyticsSummary(context.Context) (domain.AnalyticsSummary, error) {
	return f.summary, f.err
}

func newTestRouter(runner *fakeRunner, history *fakeHistory, analytics *fakeAnalytics) http.Handler {
	if runner == nil {
		runner = &fakeRunner{}
	}
	if history == nil {
		history = &fakeHistory{}
	}
	if analytics == nil {
		analytics = &fakeAnalytics{}
	}
	return NewRouter(runner, history, analytics, nil, "api", nil).Handler()
}

func TestChatStreamsSSEAndTerminates(t *testing.T) {
	runner := &fakeRunner{chunks: []string{"Hello ", "world"}}
	handler := newTestRouter(runner, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"session_id": "s-1", "user_id": "u-1", "message": "hi there friend"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data: {"delta":"Hello "}`) {
		t.Fatalf("expected first delta event, got %q", body)
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]") {
		t.Fatalf("expected [DONE] terminator, got %q", body)
	}
	if runner.req.SessionID != "s-1" || runner.req.Input != "hi there friend" {
		t.Fatalf("unexpected turn request: %+v", runner.req)
	}
}

func TestChatRejectsMissingFields(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"session_id": "s-1", "message": "no user"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatRejectsWrongMethod(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestSessionHistoryEndpoint(t *testing.T) {
	history := &fakeHistory{turns: []domain.Turn{
		{Role: domain.RoleUser, Content: "question"},
		{Role: domain.RoleModel, Content: "answer"},
	}}
	handler := newTestRouter(nil, history, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s-1/history?user_id=u-1&limit=5", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if history.limit != 5 {
		t.Fatalf("expected limit forwarded, got %d", history.limit)
	}
	if !strings.Contains(rec.Body.String(), `"answer"`) {
		t.Fatalf("expected turns in response, got %s", rec.Body.String())
	}
}

func TestSessionHistoryRequiresUserID(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s-1/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSessionHistoryUnknownPathIs404(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/s-1/other", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	analytics := &fakeAnalytics{summary: domain.AnalyticsSummary{TotalSessions: 3, TotalTurns: 17}}
	handler := newTestRouter(nil, nil, analytics)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_turns":17`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnalyticsEndpointPropagatesFailure(t *testing.T) {
	analytics := &fakeAnalytics{err: errors.New("db down")}
	handler := newTestRouter(nil, nil, analytics)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
