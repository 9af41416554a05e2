// Package main is the entry point for the stockgrid background worker.
// It drains the movement-fact outbox, parks undeliverable messages in the
// dead letter table, and prunes expired idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockgrid/internal/infrastructure/storage/postgres"
	"stockgrid/pkg/config"
	"stockgrid/pkg/logger"
)

const (
	outboxPollInterval = 500 * time.Millisecond
	outboxBatchSize    = 100
	housekeepInterval  = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting stockgrid worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	idempotency := postgres.NewIdempotencyStore(txm, 24*time.Hour)

	handler := &logHandler{log: log.WithComponent("outbox")}
	relay := postgres.NewOutboxRelay(pool.Unwrap(), outboxBatchSize, handler)

	worker := &worker{
		relay:       relay,
		idempotency: idempotency,
		log:         log.WithComponent("worker"),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

type worker struct {
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	log         *logger.Logger
}

func (w *worker) run(ctx context.Context) {
	poll := time.NewTicker(outboxPollInterval)
	defer poll.Stop()

	housekeep := time.NewTicker(housekeepInterval)
	defer housekeep.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-poll.C:
			delivered, err := w.relay.ProcessBatch(ctx)
			if err != nil {
				w.log.Errorw("outbox batch failed", "error", err)
				continue
			}
			if delivered > 0 {
				w.log.Debugw("outbox batch delivered", "count", delivered)
			}

		case <-housekeep.C:
			w.housekeep(ctx)
		}
	}
}

func (w *worker) housekeep(ctx context.Context) {
	if moved, err := w.relay.MoveToDLQ(ctx); err != nil {
		w.log.Errorw("dead letter sweep failed", "error", err)
	} else if moved > 0 {
		w.log.Warnw("moved exhausted outbox messages to dead letter table", "count", moved)
	}

	if removed, err := w.idempotency.CleanupExpired(ctx); err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
	} else if removed > 0 {
		w.log.Infow("cleaned up expired idempotency keys", "count", removed)
	}
}

// logHandler is the default delivery target: it writes each movement fact
// to the structured log. Swap in a real broker handler when one exists.
type logHandler struct {
	log *logger.Logger
}

func (h *logHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("movement fact",
		"message_id", msg.ID,
		"event_type", msg.EventType,
		"movement_id", msg.MovementID,
		"payload", string(msg.Payload),
	)
	return nil
}
