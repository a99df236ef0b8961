package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Session is a transient view over a persisted conversation. The orchestrator
// holds it only for the duration of one request.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	LastActive time.Time `json:"last_active"`
}

// Turn is immutable after persistence.
type Turn struct {
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Metadata  TurnMetadata `json:"metadata"`
}

type TurnMetadata struct {
	Score                   *int        `json:"score,omitempty"`
	Feedback                string      `json:"feedback,omitempty"`
	TokenUsage              *TokenUsage `json:"token_usage,omitempty"`
	CircuitBreakerTriggered bool        `json:"circuit_breaker_triggered,omitempty"`
	RefinementAttempts      int         `json:"refinement_attempts,omitempty"`
	Error                   string      `json:"error,omitempty"`
}

type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type TurnRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Input     string `json:"input"`
}

type TurnOutcome string

const (
	OutcomeBlocked       TurnOutcome = "blocked"
	OutcomeAccepted      TurnOutcome = "accepted"
	OutcomeRefined       TurnOutcome = "refined"
	OutcomeCircuitBroken TurnOutcome = "circuit_broken"
	OutcomeFailed        TurnOutcome = "failed"
)

// TurnResult summarizes one completed turn for callers and observability.
// Delivered is exactly the text that was emitted to the stream.
type TurnResult struct {
	Outcome                 TurnOutcome `json:"outcome"`
	Delivered               string      `json:"delivered"`
	Score                   int         `json:"score"`
	Feedback                string      `json:"feedback,omitempty"`
	Usage                   *TokenUsage `json:"usage,omitempty"`
	RetrievedCount          int         `json:"retrieved_count"`
	RefinementAttempts      int         `json:"refinement_attempts"`
	CircuitBreakerTriggered bool        `json:"circuit_breaker_triggered"`
}

// AnalyticsSummary aggregates persisted counters for the analytics endpoint.
type AnalyticsSummary struct {
	TotalSessions int `json:"total_sessions"`
	TotalTurns    int `json:"total_turns"`
}
