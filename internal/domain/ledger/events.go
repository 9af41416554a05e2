package ledger

import (
	"context"
	"time"

	"stockgrid/internal/core/id"
	"stockgrid/pkg/logger"
)

// MovementRecorded is the fact published after a movement commits.
// It carries everything a consumer needs without a second read.
type MovementRecorded struct {
	MovementID   id.ID        `json:"movementId"`
	Kind         MovementKind `json:"kind"`
	ItemID       id.ID        `json:"itemId"`
	Quantity     int64        `json:"quantity"`
	SourceSiteID *id.ID       `json:"sourceSiteId,omitempty"`
	DestSiteID   *id.ID       `json:"destSiteId,omitempty"`
	ActorID      string       `json:"actorId"`
	Reason       *string      `json:"reason,omitempty"`
	At           time.Time    `json:"at"`
}

// Sink consumes movement facts. Delivery is best-effort and happens after
// the movement's transaction commits; a sink failure is logged by the
// engine and never surfaces to the caller.
type Sink interface {
	Publish(ctx context.Context, fact MovementRecorded) error
}

// LogSink writes movement facts to the structured log. It is the default
// sink when no outbox is configured.
type LogSink struct{}

// Publish implements Sink.
func (LogSink) Publish(ctx context.Context, fact MovementRecorded) error {
	logger.Info(ctx, "movement recorded",
		"movement_id", fact.MovementID,
		"kind", fact.Kind,
		"item_id", fact.ItemID,
		"quantity", fact.Quantity,
		"actor_id", fact.ActorID,
	)
	return nil
}

func factFromRecord(rec *MovementRecord) MovementRecorded {
	return MovementRecorded{
		MovementID:   rec.ID,
		Kind:         rec.Kind,
		ItemID:       rec.ItemID,
		Quantity:     rec.Quantity,
		SourceSiteID: rec.SourceSiteID,
		DestSiteID:   rec.DestSiteID,
		ActorID:      rec.ActorID,
		Reason:       rec.Reason,
		At:           rec.CreatedAt,
	}
}
