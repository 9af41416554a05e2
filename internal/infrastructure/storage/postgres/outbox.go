package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/ledger"
	"stockgrid/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const outboxMaxRetries = 5

// OutboxMessage is one row of the sys_outbox table.
type OutboxMessage struct {
	ID          id.ID        `db:"id"`
	EventType   string       `db:"event_type"` // e.g. "MovementRecorded"
	MovementID  id.ID        `db:"movement_id"`
	Payload     []byte       `db:"payload"` // JSON-encoded fact
	Status      OutboxStatus `db:"status"`
	RetryCount  int          `db:"retry_count"`
	LastError   *string      `db:"last_error"`
	NextRetryAt *time.Time   `db:"next_retry_at"`
	CreatedAt   time.Time    `db:"created_at"`
	PublishedAt *time.Time   `db:"published_at"`
}

// OutboxSink implements ledger.Sink by staging movement facts in the
// sys_outbox table; the relay worker delivers them to downstream
// consumers. When the calling context carries a transaction the row
// commits with it, otherwise it is a plain best-effort insert.
type OutboxSink struct {
	txm *TxManager
}

// NewOutboxSink creates an outbox-backed movement fact sink.
func NewOutboxSink(txm *TxManager) *OutboxSink {
	return &OutboxSink{txm: txm}
}

// Publish stages one movement fact for delivery.
func (s *OutboxSink) Publish(ctx context.Context, fact ledger.MovementRecorded) error {
	payload, err := json.Marshal(fact)
	if err != nil {
		return fmt.Errorf("marshal movement fact: %w", err)
	}

	querier := s.txm.GetQuerier(ctx)
	_, err = querier.Exec(ctx, `
		INSERT INTO sys_outbox (id, event_type, movement_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id.New(), "MovementRecorded", fact.MovementID, payload, OutboxStatusPending, time.Now().UTC())
	if err != nil {
		return ClassifyError(fmt.Errorf("insert outbox message: %w", err))
	}

	return nil
}

var _ ledger.Sink = (*OutboxSink)(nil)

// OutboxHandler delivers staged messages to their destination.
type OutboxHandler interface {
	// Handle processes a message and returns error if delivery failed
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay drains pending messages. Each batch runs in one
// transaction so the SKIP LOCKED row locks are held until the status
// updates commit; concurrent relay instances then never pick up the
// same batch. Delivery stays at-least-once: a crash between handling
// and commit redelivers the batch.
type OutboxRelay struct {
	pool      *pgxpool.Pool
	batchSize int
	handler   OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(pool *pgxpool.Pool, batchSize int, handler OutboxHandler) *OutboxRelay {
	return &OutboxRelay{
		pool:      pool,
		batchSize: batchSize,
		handler:   handler,
	}
}

// ProcessBatch fetches and processes pending messages.
// Returns number of delivered messages.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, ClassifyError(fmt.Errorf("begin relay tx: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, event_type, movement_id, payload, status,
		       retry_count, last_error, next_retry_at, created_at, published_at
		FROM sys_outbox
		WHERE status = $1
		  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, OutboxStatusPending, r.batchSize)
	if err != nil {
		return 0, ClassifyError(fmt.Errorf("fetch outbox messages: %w", err))
	}
	defer rows.Close()

	var messages []*OutboxMessage
	for rows.Next() {
		var msg OutboxMessage
		err := rows.Scan(
			&msg.ID, &msg.EventType, &msg.MovementID, &msg.Payload, &msg.Status,
			&msg.RetryCount, &msg.LastError, &msg.NextRetryAt,
			&msg.CreatedAt, &msg.PublishedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox messages: %w", err)
	}

	processed := 0
	for _, msg := range messages {
		if err := r.processMessage(ctx, tx, msg); err != nil {
			logger.Warn(ctx, "outbox delivery failed",
				"message_id", msg.ID,
				"movement_id", msg.MovementID,
				"retry_count", msg.RetryCount,
				"error", err,
			)
			continue
		}
		processed++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, ClassifyError(fmt.Errorf("commit relay tx: %w", err))
	}

	return processed, nil
}

// processMessage handles a single outbox message inside the batch
// transaction.
func (r *OutboxRelay) processMessage(ctx context.Context, q Querier, msg *OutboxMessage) error {
	err := r.handler.Handle(ctx, msg)

	if err != nil {
		// Linear backoff per retry; the message parks as failed once the
		// retry budget is spent.
		nextRetry := time.Now().Add(time.Duration(msg.RetryCount+1) * time.Minute)
		errStr := err.Error()

		_, updateErr := q.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = CASE WHEN retry_count >= $3 THEN $4 ELSE status END
			WHERE id = $5
		`, errStr, nextRetry, outboxMaxRetries, OutboxStatusFailed, msg.ID)

		if updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	now := time.Now().UTC()
	_, err = q.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, OutboxStatusPublished, now, msg.ID)

	return err
}

// MoveToDLQ moves exhausted messages to the dead letter table so the
// pending index stays small.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1 AND retry_count >= $2
			RETURNING id, event_type, movement_id, payload, retry_count, last_error, created_at
		)
		INSERT INTO sys_outbox_dlq (id, event_type, movement_id, payload, retry_count, failure_reason, created_at, failed_at)
		SELECT id, event_type, movement_id, payload, retry_count, last_error, created_at, NOW() FROM moved
	`, OutboxStatusFailed, outboxMaxRetries)

	if err != nil {
		return 0, ClassifyError(fmt.Errorf("move to DLQ: %w", err))
	}

	return result.RowsAffected(), nil
}
