package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/config"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/usecase"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/index/bm25"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/llm/ollama"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/queue/nats"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/repository/postgres"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/resilience"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue        *nats.Queue
	Orchestrator *usecase.Orchestrator
	Memory       *usecase.SessionMemory

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	sessions := postgres.NewSessionRepository(db)
	profiles := postgres.NewMemoryRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSConsolidateSubject, cfg.NATSExtractSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llm := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.WithExecutor(executor))

	chunks, err := bm25.LoadCorpus(cfg.CorpusDir)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	lexical := bm25.NewIndex(chunks, logger)

	qdrantClient := qdrant.NewClient(cfg.QdrantURL, cfg.QdrantCollection, qdrant.WithExecutor(executor))
	var vector ports.VectorIndex = qdrant.NewSearchIndex(llm, qdrantClient)

	guardrail := usecase.NewGuardrail()
	classifier := usecase.NewIntentClassifier(llm, logger)
	retriever := usecase.NewHybridRetriever(lexical, vector, cfg.SearchTopK, cfg.FusionRRFK, logger)
	reranker := usecase.NewReranker(llm, logger)
	judge := usecase.NewQualityOracle(llm, logger)
	memory := usecase.NewSessionMemory(sessions, profiles, queue, llm, logger)

	orchestrator := usecase.NewOrchestrator(
		guardrail,
		classifier,
		retriever,
		reranker,
		judge,
		memory,
		sessions,
		llm,
		usecase.OrchestratorConfig{
			ModelName:        cfg.OllamaGenModel,
			HistoryLoadLimit: cfg.HistoryLoadLimit,
			MaxWindow:        cfg.MaxHistoryWindow,
			RerankCandidates: cfg.RerankCandidates,
			RerankTopN:       cfg.RerankTopN,
		},
		logger,
	)

	return &App{
		Config:       cfg,
		Queue:        queue,
		Orchestrator: orchestrator,
		Memory:       memory,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
