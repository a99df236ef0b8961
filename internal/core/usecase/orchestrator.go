package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

const (
	// CircuitBreakerMessage is the fixed reply when the refined answer still
	// fails evaluation. A designed terminal outcome, not an error.
	CircuitBreakerMessage = "\n\n⚠️ Quality assurance could not validate this answer. " +
		"Please rephrase the request and try again."

	generationFailedNote = "\n\n⚠️ Generation was interrupted by an internal error. " +
		"The partial answer above may be incomplete."

	refinementFailedNote = "\n\n⚠️ A refinement pass failed; the original answer above stands."
)

// OrchestratorConfig carries the per-turn tunables.
type OrchestratorConfig struct {
	ModelName        string
	HistoryLoadLimit int
	MaxWindow        int
	RerankCandidates int
	RerankTopN       int
}

func (c OrchestratorConfig) normalize() OrchestratorConfig {
	out := c
	if out.HistoryLoadLimit <= 0 {
		out.HistoryLoadLimit = 50
	}
	if out.MaxWindow <= 0 {
		out.MaxWindow = DefaultMaxWindow
	}
	if out.RerankCandidates <= 0 {
		out.RerankCandidates = 10
	}
	if out.RerankTopN <= 0 {
		out.RerankTopN = 3
	}
	return out
}

// Orchestrator drives one conversational turn through the state machine
// Validating → {Analyzing ∥ Retrieving} → ContextBuilding → Generating →
// Evaluating → (Accepted | Refining → Evaluating₂ → (Accepted |
// CircuitBroken)) → Persisting. One instance serves one request at a time;
// it holds no cross-request mutable state.
type Orchestrator struct {
	guardrail  *Guardrail
	classifier *IntentClassifier
	retriever  *HybridRetriever
	reranker   *Reranker
	judge      *QualityOracle
	memory     *SessionMemory
	sessions   ports.SessionStore
	llm        ports.CompletionService
	cfg        OrchestratorConfig
	logger     *slog.Logger
}

func NewOrchestrator(
	guardrail *Guardrail,
	classifier *IntentClassifier,
	retriever *HybridRetriever,
	reranker *Reranker,
	judge *QualityOracle,
	memory *SessionMemory,
	sessions ports.SessionStore,
	llm ports.CompletionService,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		guardrail:  guardrail,
		classifier: classifier,
		retriever:  retriever,
		reranker:   reranker,
		judge:      judge,
		memory:     memory,
		sessions:   sessions,
		llm:        llm,
		cfg:        cfg.normalize(),
		logger:     logger,
	}
}

// turnState accumulates everything the guaranteed persistence step needs.
type turnState struct {
	req       domain.TurnRequest
	result    *domain.TurnResult
	delivered strings.Builder
	errNote   string
}

// emitTo forwards a fragment to the caller and records it as delivered text.
func (s *turnState) emitTo(emit ports.ChunkEmitter, chunk string) error {
	if chunk == "" {
		return nil
	}
	s.delivered.WriteString(chunk)
	return emit(chunk)
}

// RunTurn processes one user turn end to end. It never returns nil and never
// panics the caller with recoverable collaborator failures; the returned
// result describes what was actually delivered.
func (o *Orchestrator) RunTurn(ctx context.Context, req domain.TurnRequest, emit ports.ChunkEmitter) *domain.TurnResult {
	state := &turnState{
		req:    req,
		result: &domain.TurnResult{Outcome: domain.OutcomeFailed},
	}
	input := strings.TrimSpace(req.Input)

	// Validating: terminal rejection, nothing reaches the model.
	if input == "" || !o.guardrail.Allow(input) {
		_ = state.emitTo(emit, SafetyMessage)
		state.result.Outcome = domain.OutcomeBlocked
		state.result.Delivered = state.delivered.String()
		o.logger.Info("turn blocked by guardrail", "session_id", req.SessionID)
		return state.result
	}

	o.bestEffort("create or touch session",
		o.sessions.CreateOrTouchSession(ctx, req.SessionID, req.UserID))

	history := o.memory.LoadHistory(ctx, req.SessionID, req.UserID, o.cfg.HistoryLoadLimit)
	active, pruned := PruneHistory(history, o.cfg.MaxWindow)
	if len(pruned) > 0 {
		o.memory.DispatchConsolidation(ctx, req.SessionID, req.UserID, pruned)
	}

	// Analyzing ∥ Retrieving: both start as soon as validation passes.
	analysisCh := make(chan domain.AnalysisResult, 1)
	go func() {
		analysisCh <- o.classifier.Classify(ctx, input)
	}()
	retrievalCh := make(chan []domain.CandidateDocument, 1)
	go func() {
		retrievalCh <- o.retrieveAndRerank(ctx, input)
	}()

	// The classification result gates the persona/strategy decision, so it
	// is awaited first.
	analysis := <-analysisCh
	// The retrieval task is always drained to completion, even when its
	// result is about to be discarded for Simple complexity.
	candidates := <-retrievalCh
	var docs []domain.CandidateDocument
	if analysis.Complexity != domain.ComplexitySimple {
		docs = candidates
	}
	state.result.RetrievedCount = len(docs)

	// ContextBuilding.
	prompt := assemblePrompt(
		buildSystemInjection(personaFor(analysis.Nature)),
		o.memory.ContextInjection(ctx, req.UserID),
		formatHistory(active),
		formatRetrievedContext(docs),
		input,
	)

	// The user turn is logged before generation begins; the model turn is
	// persisted on every exit path below, including mid-generation failure.
	o.bestEffort("append user turn", o.sessions.AppendTurn(ctx, req.SessionID, req.UserID, domain.Turn{
		Role:      domain.RoleUser,
		Content:   input,
		Timestamp: time.Now().UTC(),
	}))
	defer o.persistModelTurn(ctx, state)

	// Generating: chunks stream to the caller in arrival order; usage events
	// are intercepted, logged and never forwarded as text.
	var generated strings.Builder
	genErr := o.llm.Stream(ctx, prompt, domain.DefaultGenerationOptions(), func(ev domain.StreamEvent) error {
		if ev.Usage != nil {
			state.result.Usage = ev.Usage
			o.bestEffort("log token usage",
				o.sessions.LogTokenUsage(ctx, req.UserID, req.SessionID, o.cfg.ModelName, *ev.Usage))
			return nil
		}
		generated.WriteString(ev.Delta)
		return state.emitTo(emit, ev.Delta)
	})
	if genErr != nil {
		o.logger.Error("generation stream failed", "session_id", req.SessionID, "error", genErr)
		state.errNote = genErr.Error()
		_ = state.emitTo(emit, generationFailedNote)
		state.result.Outcome = domain.OutcomeFailed
		state.result.Delivered = state.delivered.String()
		return state.result
	}

	// Evaluating: the full accumulated text, never a partial buffer.
	evaluation := o.judge.Evaluate(ctx, input, generated.String())
	state.result.Score = evaluation.Score
	state.result.Feedback = evaluation.Feedback
	state.result.Outcome = domain.OutcomeAccepted

	if evaluation.ShouldRefine() {
		o.refine(ctx, state, emit, input, evaluation)
	}

	o.memory.DispatchExtraction(ctx, req.SessionID, req.UserID, input, generated.String())

	state.result.Delivered = state.delivered.String()
	return state.result
}

// refine performs the single bounded refinement pass. The refined text is
// fully buffered and released all-or-nothing: either it re-evaluates at or
// above the threshold, or the caller gets only the fixed breaker message.
func (o *Orchestrator) refine(ctx context.Context, state *turnState, emit ports.ChunkEmitter, input string, first domain.EvaluationResult) {
	state.result.RefinementAttempts = 1
	_ = state.emitTo(emit, fmt.Sprintf(
		"\n\n[quality assurance detected issues (score: %d), refining...]\n\n", first.Score))

	prompt := fmt.Sprintf(`--- [SELF-CORRECTION PROTOCOL] ---
Analyze your previous answer to the request below. The quality judge rejected
it (score: %d).
CRITICAL FEEDBACK: %s

[ORIGINAL REQUEST]
%s

TASK: rewrite the answer, fixing the reported problems. Return only the
rewritten answer.`, first.Score, first.Feedback, input)

	refined, err := o.llm.Generate(ctx, prompt, domain.DefaultGenerationOptions())
	if err != nil {
		o.logger.Warn("refinement call failed", "error", err)
		_ = state.emitTo(emit, refinementFailedNote)
		return
	}

	second := o.judge.Evaluate(ctx, input, refined)
	state.result.Score = second.Score
	state.result.Feedback = second.Feedback

	if second.Score >= domain.RefinementThreshold {
		_ = state.emitTo(emit, refined)
		_ = state.emitTo(emit, fmt.Sprintf("\n\n---\n[quality panel: refined answer, score %d/100]", second.Score))
		state.result.Outcome = domain.OutcomeRefined
		return
	}

	_ = state.emitTo(emit, CircuitBreakerMessage)
	state.result.Outcome = domain.OutcomeCircuitBroken
	state.result.CircuitBreakerTriggered = true
}

func (o *Orchestrator) retrieveAndRerank(ctx context.Context, query string) []domain.CandidateDocument {
	fused := o.retriever.Retrieve(ctx, query)
	if len(fused) == 0 {
		return nil
	}
	head := fused
	if len(head) > o.cfg.RerankCandidates {
		head = head[:o.cfg.RerankCandidates]
	}
	return o.reranker.Rerank(ctx, query, head, o.cfg.RerankTopN)
}

// persistModelTurn is the guaranteed Persisting step: whatever text was
// actually delivered is logged regardless of which path the turn took.
func (o *Orchestrator) persistModelTurn(ctx context.Context, state *turnState) {
	delivered := state.delivered.String()
	if delivered == "" {
		return
	}

	meta := domain.TurnMetadata{
		Feedback:                state.result.Feedback,
		TokenUsage:              state.result.Usage,
		CircuitBreakerTriggered: state.result.CircuitBreakerTriggered,
		RefinementAttempts:      state.result.RefinementAttempts,
		Error:                   state.errNote,
	}
	if state.result.Outcome != domain.OutcomeFailed && state.result.Outcome != domain.OutcomeBlocked {
		score := state.result.Score
		meta.Score = &score
	}

	persistCtx := context.WithoutCancel(ctx)
	o.bestEffort("append model turn", o.sessions.AppendTurn(persistCtx, state.req.SessionID, state.req.UserID, domain.Turn{
		Role:      domain.RoleModel,
		Content:   delivered,
		Timestamp: time.Now().UTC(),
		Metadata:  meta,
	}))
}

func (o *Orchestrator) bestEffort(operation string, err error) {
	if err != nil {
		o.logger.Warn("persistence step failed", "operation", operation, "error", err)
	}
}

// LoadHistory satisfies ports.HistoryReader for the transport layer.
func (o *Orchestrator) LoadHistory(ctx context.Context, sessionID, userID string, limit int) ([]domain.Turn, error) {
	return o.sessions.LoadHistory(ctx, sessionID, userID, limit)
}

// AnalyticsSummary satisfies ports.AnalyticsReader.
func (o *Orchestrator) AnalyticsSummary(ctx context.Context) (domain.AnalyticsSummary, error) {
	return o.sessions.AnalyticsSummary(ctx)
}
