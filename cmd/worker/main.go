package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/bootstrap"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/config"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/observability/logging"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	handler := &instrumentedHandler{inner: app.Memory, metrics: workerMetrics}

	logger.Info("worker subscribed",
		"consolidate_subject", cfg.NATSConsolidateSubject,
		"extract_subject", cfg.NATSExtractSubject,
	)
	if err := app.Queue.SubscribeMemoryTasks(ctx, handler); err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

// instrumentedHandler wraps the memory task handler with per-task metrics.
type instrumentedHandler struct {
	inner   ports.MemoryTaskHandler
	metrics *metrics.WorkerMetrics
}

func (h *instrumentedHandler) HandleConsolidation(ctx context.Context, task domain.ConsolidationTask) error {
	taskCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	h.metrics.StartTask()
	start := time.Now()
	err := h.inner.HandleConsolidation(taskCtx, task)
	h.metrics.FinishTask(serviceName, "consolidation", time.Since(start), err)
	return err
}

func (h *instrumentedHandler) HandleExtraction(ctx context.Context, task domain.ExtractionTask) error {
	taskCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	h.metrics.StartTask()
	start := time.Now()
	err := h.inner.HandleExtraction(taskCtx, task)
	h.metrics.FinishTask(serviceName, "extraction", time.Since(start), err)
	return err
}
