package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

const (
	// DefaultMaxWindow bounds the active history window passed to generation.
	DefaultMaxWindow = 20
	// minExtractionInputLen skips entity extraction for trivially short inputs.
	minExtractionInputLen = 10
)

// PruneHistory is a pure function: it returns the bounded active window and
// the oldest turns that fell out of it. The input slice is never mutated.
func PruneHistory(history []domain.Turn, maxWindow int) (active, pruned []domain.Turn) {
	if maxWindow <= 0 {
		maxWindow = DefaultMaxWindow
	}
	if len(history) <= maxWindow {
		return history, nil
	}
	cut := len(history) - maxWindow
	return history[cut:], history[:cut]
}

// SessionMemory owns the long-lived MemoryProfile and the background
// consolidation/extraction pipeline. The hot path only reads the profile and
// publishes tasks; the heavy lifting happens in the worker.
type SessionMemory struct {
	store    ports.SessionStore
	profiles ports.MemoryProfileStore
	queue    ports.MemoryTaskQueue
	llm      ports.CompletionService
	logger   *slog.Logger
}

func NewSessionMemory(
	store ports.SessionStore,
	profiles ports.MemoryProfileStore,
	queue ports.MemoryTaskQueue,
	llm ports.CompletionService,
	logger *slog.Logger,
) *SessionMemory {
	return &SessionMemory{
		store:    store,
		profiles: profiles,
		queue:    queue,
		llm:      llm,
		logger:   logger,
	}
}

// LoadHistory returns the most recent turns in chronological order. Failure
// degrades to an empty history, never an error.
func (m *SessionMemory) LoadHistory(ctx context.Context, sessionID, userID string, limit int) []domain.Turn {
	turns, err := m.store.LoadHistory(ctx, sessionID, userID, limit)
	if err != nil {
		m.logger.Warn("history load failed, starting with empty window",
			"session_id", sessionID, "error", err)
		return nil
	}
	return turns
}

// DispatchConsolidation hands pruned turns to the background summarizer.
// Publishing is best-effort; a failure only costs memory quality.
func (m *SessionMemory) DispatchConsolidation(ctx context.Context, sessionID, userID string, pruned []domain.Turn) {
	if len(pruned) == 0 {
		return
	}
	task := domain.ConsolidationTask{UserID: userID, SessionID: sessionID, Turns: pruned}
	if err := m.queue.PublishConsolidation(context.WithoutCancel(ctx), task); err != nil {
		m.logger.Warn("consolidation dispatch failed", "session_id", sessionID, "error", err)
	}
}

// DispatchExtraction hands one completed interaction to the background fact
// extractor. Trivially short inputs are skipped entirely.
func (m *SessionMemory) DispatchExtraction(ctx context.Context, sessionID, userID, userInput, modelOutput string) {
	if utf8.RuneCountInString(userInput) < minExtractionInputLen {
		return
	}
	task := domain.ExtractionTask{
		UserID:      userID,
		SessionID:   sessionID,
		UserInput:   userInput,
		ModelOutput: modelOutput,
	}
	if err := m.queue.PublishExtraction(context.WithoutCancel(ctx), task); err != nil {
		m.logger.Warn("extraction dispatch failed", "session_id", sessionID, "error", err)
	}
}

// ContextInjection formats user facts and the master summary into an
// injectable context block. Empty profile yields an empty string.
func (m *SessionMemory) ContextInjection(ctx context.Context, userID string) string {
	profile, err := m.profiles.Load(ctx, userID)
	if err != nil {
		m.logger.Warn("memory profile load failed", "user_id", userID, "error", err)
		return ""
	}
	if profile.IsEmpty() {
		return ""
	}

	var b strings.Builder
	if len(profile.UserFacts) > 0 {
		b.WriteString("--- [SEMANTIC MEMORY: USER PROFILE] ---\n")
		keys := make([]string, 0, len(profile.UserFacts))
		for k := range profile.UserFacts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, profile.UserFacts[k])
		}
		b.WriteString("\n")
	}
	if profile.MasterSummary != "" {
		fmt.Fprintf(&b, "--- [SEMANTIC MEMORY: MASTER SUMMARY] ---\n%s\n\n", profile.MasterSummary)
	}
	return b.String()
}

// HandleConsolidation rewrites the running master summary to absorb the
// pruned turns. Best-effort: on any failure the prior summary stays intact.
func (m *SessionMemory) HandleConsolidation(ctx context.Context, task domain.ConsolidationTask) error {
	if len(task.Turns) == 0 {
		return nil
	}

	profile, err := m.profiles.Load(ctx, task.UserID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	var transcript strings.Builder
	for _, turn := range task.Turns {
		fmt.Fprintf(&transcript, "%s: %s\n", turn.Role, turn.Content)
	}

	prompt := fmt.Sprintf(`TASK: semantic compression (master summary update).

CURRENT MASTER SUMMARY:
%s

NEWLY ARCHIVED MESSAGES:
%s

INSTRUCTION:
Rewrite the master summary to absorb the vital information above.
- Keep important facts, decisions, names and preferences.
- Discard greetings and pleasantries.
- Produce one dense paragraph of plain text.

NEW MASTER SUMMARY:`, profile.MasterSummary, transcript.String())

	summary, err := m.llm.Generate(ctx, prompt, domain.DefaultGenerationOptions())
	if err != nil {
		return fmt.Errorf("consolidation generation: %w", err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil
	}

	profile.MasterSummary = summary
	if err := m.profiles.Save(ctx, task.UserID, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	m.logger.Info("master summary updated", "user_id", task.UserID, "absorbed_turns", len(task.Turns))
	return nil
}

// HandleExtraction asks the completion service whether new durable user
// facts appeared in the interaction and persists the profile if it changed.
func (m *SessionMemory) HandleExtraction(ctx context.Context, task domain.ExtractionTask) error {
	if utf8.RuneCountInString(task.UserInput) < minExtractionInputLen {
		return nil
	}

	profile, err := m.profiles.Load(ctx, task.UserID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	current, err := json.Marshal(profile.UserFacts)
	if err != nil {
		return fmt.Errorf("marshal facts: %w", err)
	}

	prompt := fmt.Sprintf(`TASK: entity and fact extraction (user profile).

CURRENT USER PROFILE (JSON object of string facts):
%s

RECENT INTERACTION:
User: %s
AI: %s

INSTRUCTION:
If the interaction reveals NEW durable facts about the user (name, project,
stack, preferences), return the updated JSON object. If nothing new appeared,
return the original object unchanged. Return ONLY valid JSON.`,
		string(current), task.UserInput, task.ModelOutput)

	opts := domain.GenerationOptions{Temperature: 0, JSONFormat: true}
	raw, err := m.llm.Generate(ctx, prompt, opts)
	if err != nil {
		return fmt.Errorf("extraction generation: %w", err)
	}

	var updated map[string]string
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &updated); err != nil {
		return fmt.Errorf("parse extracted facts: %w", err)
	}
	if reflect.DeepEqual(updated, profile.UserFacts) || (len(updated) == 0 && len(profile.UserFacts) == 0) {
		return nil
	}

	profile.UserFacts = updated
	if err := m.profiles.Save(ctx, task.UserID, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	m.logger.Info("user profile updated", "user_id", task.UserID, "facts", len(updated))
	return nil
}
