package ports

import (
	"context"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
)

// CompletionService is the generic LLM contract. Generate returns the full
// text in one call; Stream delivers deltas and a terminal usage event through
// the callback, in arrival order, until the stream ends or ctx is canceled.
type CompletionService interface {
	Generate(ctx context.Context, prompt string, opts domain.GenerationOptions) (string, error)
	Stream(ctx context.Context, prompt string, opts domain.GenerationOptions, onEvent func(domain.StreamEvent) error) error
}

// LexicalIndex is ranked keyword search over the chunked corpus.
type LexicalIndex interface {
	Search(ctx context.Context, query string, limit int) ([]domain.CandidateDocument, error)
}

// VectorIndex is nearest-neighbor search over the embeddings index built by
// the out-of-scope ingestion collaborator.
type VectorIndex interface {
	Search(ctx context.Context, query string, limit int) ([]domain.CandidateDocument, error)
}

// Embedder builds the query vector consumed by the vector index.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SessionStore is the persistence collaborator. All calls are best-effort
// from the orchestrator's point of view: failures are logged and swallowed.
type SessionStore interface {
	CreateOrTouchSession(ctx context.Context, sessionID, userID string) error
	AppendTurn(ctx context.Context, sessionID, userID string, turn domain.Turn) error
	LoadHistory(ctx context.Context, sessionID, userID string, limit int) ([]domain.Turn, error)
	LogTokenUsage(ctx context.Context, userID, sessionID, model string, usage domain.TokenUsage) error
	AnalyticsSummary(ctx context.Context) (domain.AnalyticsSummary, error)
}

// MemoryProfileStore persists the long-lived per-user memory profile.
type MemoryProfileStore interface {
	Load(ctx context.Context, userID string) (domain.MemoryProfile, error)
	Save(ctx context.Context, userID string, profile domain.MemoryProfile) error
}

// MemoryTaskHandler processes one dispatched background memory task.
// Exactly one of the task fields is set per invocation.
type MemoryTaskHandler interface {
	HandleConsolidation(ctx context.Context, task domain.ConsolidationTask) error
	HandleExtraction(ctx context.Context, task domain.ExtractionTask) error
}

// MemoryTaskQueue dispatches background memory work. Publishing is
// fire-and-forget from the turn's perspective; Subscribe blocks until ctx is
// done.
type MemoryTaskQueue interface {
	PublishConsolidation(ctx context.Context, task domain.ConsolidationTask) error
	PublishExtraction(ctx context.Context, task domain.ExtractionTask) error
	SubscribeMemoryTasks(ctx context.Context, handler MemoryTaskHandler) error
}
