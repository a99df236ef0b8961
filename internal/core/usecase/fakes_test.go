package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLLM scripts completion behavior per test. Generate replies are consumed
// in order; an empty script returns an error.
type fakeLLM struct {
	mu        sync.Mutex
	replies   []string
	errs      []error
	prompts   []string
	options   []domain.GenerationOptions
	streamFn  func(prompt string, onEvent func(domain.StreamEvent) error) error
	streamed  int
	generated int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts domain.GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.options = append(f.options, opts)
	idx := f.generated
	f.generated++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.replies) {
		return f.replies[idx], nil
	}
	return "", errors.New("no scripted reply")
}

func (f *fakeLLM) Stream(_ context.Context, prompt string, _ domain.GenerationOptions, onEvent func(domain.StreamEvent) error) error {
	f.mu.Lock()
	f.streamed++
	f.prompts = append(f.prompts, prompt)
	streamFn := f.streamFn
	f.mu.Unlock()
	if streamFn == nil {
		return errors.New("no scripted stream")
	}
	return streamFn(prompt, onEvent)
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generated + f.streamed
}

type fakeIndex struct {
	docs []domain.CandidateDocument
	err  error
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ int) ([]domain.CandidateDocument, error) {
	return f.docs, f.err
}

// fakeSessionStore records every persistence call.
type fakeSessionStore struct {
	mu           sync.Mutex
	sessions     []string
	turns        []domain.Turn
	usage        []domain.TokenUsage
	history      []domain.Turn
	historyErr   error
	appendErr    error
	analytics    domain.AnalyticsSummary
	analyticsErr error
}

func (f *fakeSessionStore) CreateOrTouchSession(_ context.Context, sessionID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, sessionID)
	return nil
}

func (f *fakeSessionStore) AppendTurn(_ context.Context, _, _ string, turn domain.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeSessionStore) LoadHistory(_ context.Context, _, _ string, _ int) ([]domain.Turn, error) {
	return f.history, f.historyErr
}

func (f *fakeSessionStore) LogTokenUsage(_ context.Context, _, _, _ string, usage domain.TokenUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage = append(f.usage, usage)
	return nil
}

func (f *fakeSessionStore) AnalyticsSummary(_ context.Context) (domain.AnalyticsSummary, error) {
	return f.analytics, f.analyticsErr
}

func (f *fakeSessionStore) persistedTurns() []domain.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Turn, len(f.turns))
	copy(out, f.turns)
	return out
}

type fakeProfileStore struct {
	mu      sync.Mutex
	profile domain.MemoryProfile
	loadErr error
	saveErr error
	saved   int
}

func (f *fakeProfileStore) Load(_ context.Context, _ string) (domain.MemoryProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, f.loadErr
}

func (f *fakeProfileStore) Save(_ context.Context, _ string, profile domain.MemoryProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.profile = profile
	f.saved++
	return nil
}

type fakeQueue struct {
	mu             sync.Mutex
	consolidations []domain.ConsolidationTask
	extractions    []domain.ExtractionTask
	publishErr     error
}

func (f *fakeQueue) PublishConsolidation(_ context.Context, task domain.ConsolidationTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.consolidations = append(f.consolidations, task)
	return nil
}

func (f *fakeQueue) PublishExtraction(_ context.Context, task domain.ExtractionTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.extractions = append(f.extractions, task)
	return nil
}

func (f *fakeQueue) SubscribeMemoryTasks(ctx context.Context, _ ports.MemoryTaskHandler) error {
	<-ctx.Done()
	return ctx.Err()
}
