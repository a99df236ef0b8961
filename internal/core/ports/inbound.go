package ports

import (
	"context"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

// ChunkEmitter receives answer text fragments strictly in arrival order.
// A non-nil return aborts the stream (caller disconnect).
type ChunkEmitter func(chunk string) error

// TurnRunner is the sole inbound entry point for conversational turns.
type TurnRunner interface {
	RunTurn(ctx context.Context, req domain.TurnRequest, emit ChunkEmitter) *domain.TurnResult
}

// HistoryReader exposes persisted conversation history to the transport.
type HistoryReader interface {
	LoadHistory(ctx context.Context, sessionID, userID string, limit int) ([]domain.Turn, error)
}

// AnalyticsReader exposes aggregate usage counters to the transport.
type AnalyticsReader interface {
	AnalyticsSummary(ctx context.Context) (domain.AnalyticsSummary, error)
}
