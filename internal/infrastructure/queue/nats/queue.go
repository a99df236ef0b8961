// Package nats dispatches background memory tasks between the api and
// worker processes.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/domain"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/core/ports"
	"github.com/stuartfsi05/Zenith-Prompt-Architect-Engine/internal/infrastructure/resilience"
)

const workerQueueGroup = "memory-workers"

type Queue struct {
	conn               *nats.Conn
	consolidateSubject string
	extractSubject     string
	executor           *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, consolidateSubject, extractSubject string) (*Queue, error) {
	return NewWithOptions(url, consolidateSubject, extractSubject, Options{})
}

func NewWithOptions(url, consolidateSubject, extractSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("zenith-prompt-architect"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:               conn,
		consolidateSubject: consolidateSubject,
		extractSubject:     extractSubject,
		executor:           options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishConsolidation(ctx context.Context, task domain.ConsolidationTask) error {
	return q.publish(ctx, q.consolidateSubject, task)
}

func (q *Queue) PublishExtraction(ctx context.Context, task domain.ExtractionTask) error {
	return q.publish(ctx, q.extractSubject, task)
}

func (q *Queue) publish(ctx context.Context, subject string, task any) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeMemoryTasks consumes both task subjects in one queue group so a
// task is handled by exactly one worker instance. Blocks until ctx is done,
// then drains.
func (q *Queue) SubscribeMemoryTasks(ctx context.Context, handler ports.MemoryTaskHandler) error {
	consolidateSub, err := q.conn.QueueSubscribe(q.consolidateSubject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		var task domain.ConsolidationTask
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			log.Printf("decode consolidation task: %v", err)
			return
		}
		if err := handler.HandleConsolidation(ctx, task); err != nil {
			log.Printf("consolidation handler error for user=%s: %v", task.UserID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", q.consolidateSubject, err)
	}

	extractSub, err := q.conn.QueueSubscribe(q.extractSubject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		var task domain.ExtractionTask
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			log.Printf("decode extraction task: %v", err)
			return
		}
		if err := handler.HandleExtraction(ctx, task); err != nil {
			log.Printf("extraction handler error for user=%s: %v", task.UserID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", q.extractSubject, err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := consolidateSub.Drain(); err != nil {
		return fmt.Errorf("nats drain consolidation subscription: %w", err)
	}
	if err := extractSub.Drain(); err != nil {
		return fmt.Errorf("nats drain extraction subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
