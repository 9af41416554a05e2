package ledger

import (
	"context"
	"fmt"
	"time"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/core/tx"
	"stockgrid/pkg/logger"
)

const (
	// maxAttempts bounds internal retries on serialization conflicts.
	maxAttempts = 3
	// retryBackoff is the base delay between attempts, scaled linearly.
	retryBackoff = 25 * time.Millisecond
)

// Engine validates movement requests against current state, computes the
// resulting level changes, and applies level update plus journal append as
// one atomic unit.
//
// The read-check-write sequence for issues and transfers runs entirely
// inside one transaction with row locks on the affected (item, site)
// pair(s), so two concurrent issues can never drive a level negative.
// Movements touching disjoint pairs proceed fully concurrently.
type Engine struct {
	items   ItemReader
	sites   SiteReader
	stock   StockRepository
	journal JournalRepository
	txm     tx.Manager
	sink    Sink
}

// NewEngine creates a movement engine. A nil sink falls back to LogSink.
func NewEngine(
	items ItemReader,
	sites SiteReader,
	stock StockRepository,
	journal JournalRepository,
	txm tx.Manager,
	sink Sink,
) *Engine {
	if sink == nil {
		sink = LogSink{}
	}
	return &Engine{
		items:   items,
		sites:   sites,
		stock:   stock,
		journal: journal,
		txm:     txm,
		sink:    sink,
	}
}

// Record applies a single movement and returns the inserted journal row.
//
// All domain rejections (not found, archived, invalid quantity, equal
// sites, insufficient stock) are deterministic functions of the request and
// current state: they are returned before any write lands, so a rejected
// call leaves both the levels and the journal untouched no matter how often
// it is retried. Serialization conflicts are retried internally a bounded
// number of times before surfacing as CONCURRENCY_CONFLICT.
func (e *Engine) Record(ctx context.Context, req MovementRequest) (*MovementRecord, error) {
	if !req.kind.Valid() {
		return nil, apperror.NewValidation("movement request is not initialized")
	}

	itemRef, err := e.items.GetRef(ctx, req.itemID)
	if err != nil {
		return nil, err
	}
	if itemRef.Archived {
		return nil, apperror.NewItemArchived(req.itemID)
	}

	if req.source != nil {
		if err := e.sites.Exists(ctx, *req.source); err != nil {
			return nil, err
		}
	}
	if req.dest != nil {
		if err := e.sites.Exists(ctx, *req.dest); err != nil {
			return nil, err
		}
	}

	var rec *MovementRecord
	for attempt := 1; ; attempt++ {
		rec, err = e.apply(ctx, req)
		if err == nil {
			break
		}
		if !apperror.IsConcurrencyConflict(err) || attempt >= maxAttempts {
			return nil, err
		}

		logger.Debug(ctx, "movement conflicted, retrying",
			"attempt", attempt,
			"item_id", req.itemID,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	// The movement is durably committed; sink delivery is best-effort.
	if err := e.sink.Publish(ctx, factFromRecord(rec)); err != nil {
		logger.Warn(ctx, "movement fact publish failed",
			"movement_id", rec.ID,
			"error", err,
		)
	}

	return rec, nil
}

// apply runs one transactional attempt: lock the affected row(s), check,
// write the new level(s), append the journal row.
func (e *Engine) apply(ctx context.Context, req MovementRequest) (*MovementRecord, error) {
	var rec *MovementRecord

	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var (
			signedQty int64
			reason    = req.reason
			err       error
		)

		switch req.kind {
		case KindReceipt:
			if _, err = e.stock.GetForUpdate(ctx, req.itemID, *req.dest); err != nil {
				return err
			}
			if err = e.stock.ApplyDelta(ctx, req.itemID, *req.dest, req.quantity); err != nil {
				return fmt.Errorf("apply receipt: %w", err)
			}
			signedQty = req.quantity

		case KindIssue:
			lvl, err := e.stock.GetForUpdate(ctx, req.itemID, *req.source)
			if err != nil {
				return err
			}
			if lvl.Quantity < req.quantity {
				return apperror.NewInsufficientStock(lvl.Quantity, req.quantity).
					WithDetail("item_id", req.itemID).
					WithDetail("site_id", *req.source)
			}
			if err = e.stock.ApplyDelta(ctx, req.itemID, *req.source, -req.quantity); err != nil {
				return fmt.Errorf("apply issue: %w", err)
			}
			signedQty = -req.quantity

		case KindCorrection:
			lvl, err := e.stock.GetForUpdate(ctx, req.itemID, *req.dest)
			if err != nil {
				return err
			}
			if err = e.stock.Set(ctx, req.itemID, *req.dest, req.quantity); err != nil {
				return fmt.Errorf("apply correction: %w", err)
			}
			signedQty = req.quantity - lvl.Quantity
			if reason == nil {
				text := fmt.Sprintf("corrected from %d to %d", lvl.Quantity, req.quantity)
				reason = &text
			}

		case KindTransfer:
			srcLvl, err := e.lockTransferRows(ctx, req)
			if err != nil {
				return err
			}
			if srcLvl.Quantity < req.quantity {
				return apperror.NewInsufficientStock(srcLvl.Quantity, req.quantity).
					WithDetail("item_id", req.itemID).
					WithDetail("site_id", *req.source)
			}
			if err = e.stock.ApplyDelta(ctx, req.itemID, *req.source, -req.quantity); err != nil {
				return fmt.Errorf("apply transfer out: %w", err)
			}
			if err = e.stock.ApplyDelta(ctx, req.itemID, *req.dest, req.quantity); err != nil {
				return fmt.Errorf("apply transfer in: %w", err)
			}
			signedQty = req.quantity
		}

		rec = &MovementRecord{
			ID:           id.New(),
			Kind:         req.kind,
			ItemID:       req.itemID,
			SourceSiteID: req.source,
			DestSiteID:   req.dest,
			Quantity:     signedQty,
			ActorID:      req.actorID,
			Reason:       reason,
			CreatedAt:    time.Now().UTC(),
		}
		if req.kind == KindReceipt {
			rec.UnitCost = req.unitCost
		}

		if err = e.journal.Insert(ctx, rec); err != nil {
			return fmt.Errorf("append journal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// lockTransferRows acquires row locks on both sides of a transfer in
// ascending site-ID order, so two opposite-direction transfers cannot
// deadlock. Returns the source level.
func (e *Engine) lockTransferRows(ctx context.Context, req MovementRequest) (StockLevel, error) {
	src, dst := *req.source, *req.dest

	if id.Less(src, dst) {
		srcLvl, err := e.stock.GetForUpdate(ctx, req.itemID, src)
		if err != nil {
			return StockLevel{}, err
		}
		if _, err := e.stock.GetForUpdate(ctx, req.itemID, dst); err != nil {
			return StockLevel{}, err
		}
		return srcLvl, nil
	}

	if _, err := e.stock.GetForUpdate(ctx, req.itemID, dst); err != nil {
		return StockLevel{}, err
	}
	return e.stock.GetForUpdate(ctx, req.itemID, src)
}
