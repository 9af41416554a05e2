package ledger

import (
	"context"
	"time"

	"stockgrid/internal/core/id"
)

// StockRepository reads and writes per-site stock levels. Write methods
// must compose inside the movement engine's transaction: implementations
// use the transaction carried in ctx and never open their own.
type StockRepository interface {
	// Get returns the current level, treating an absent row as quantity 0.
	Get(ctx context.Context, itemID, siteID id.ID) (StockLevel, error)

	// GetForUpdate returns the level with a row lock held for the remainder
	// of the surrounding transaction. Absent rows report quantity 0; the
	// subsequent upsert creates them.
	GetForUpdate(ctx context.Context, itemID, siteID id.ID) (StockLevel, error)

	// ApplyDelta upserts quantity += delta for the (item, site) pair,
	// creating the row at delta if absent.
	ApplyDelta(ctx context.Context, itemID, siteID id.ID, delta int64) error

	// Set upserts the absolute quantity for the (item, site) pair.
	Set(ctx context.Context, itemID, siteID id.ID, quantity int64) error

	// ListBySite returns levels at one site.
	ListBySite(ctx context.Context, siteID id.ID, excludeZero bool) ([]StockLevel, error)

	// ListByItem returns levels for one item across sites.
	ListByItem(ctx context.Context, itemID id.ID) ([]StockLevel, error)

	// ListBelowReorderPoint returns levels at or below their item's
	// reorder threshold.
	ListBelowReorderPoint(ctx context.Context, siteID *id.ID) ([]LowStockRow, error)
}

// LowStockRow is a stock level joined with its item's reorder threshold.
type LowStockRow struct {
	ItemID       id.ID  `db:"item_id" json:"itemId"`
	ItemCode     string `db:"item_code" json:"itemCode"`
	SiteID       id.ID  `db:"site_id" json:"siteId"`
	Quantity     int64  `db:"quantity" json:"quantity"`
	ReorderPoint int64  `db:"reorder_point" json:"reorderPoint"`
}

// JournalFilter narrows journal queries.
type JournalFilter struct {
	ItemID   *id.ID
	SiteID   *id.ID
	Kind     *MovementKind
	ActorID  *string
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// JournalRepository appends to and reads the movement journal.
//
// The interface deliberately exposes no update or delete operation: journal
// rows are immutable once inserted. Compensating movements, not edits, are
// the way to correct mistakes.
type JournalRepository interface {
	// Insert appends one record inside the surrounding transaction. The
	// record's ID and CreatedAt must already be assigned by the engine.
	Insert(ctx context.Context, rec *MovementRecord) error

	// GetByID retrieves one record.
	GetByID(ctx context.Context, recordID id.ID) (*MovementRecord, error)

	// List retrieves records matching the filter, newest first.
	List(ctx context.Context, filter JournalFilter) ([]*MovementRecord, error)
}

// ItemRef is the engine's read-only view of a catalog item.
type ItemRef struct {
	ID       id.ID
	Code     string
	Archived bool
}

// ItemReader resolves items for movement validation.
type ItemReader interface {
	// GetRef returns the item or a NOT_FOUND apperror.
	GetRef(ctx context.Context, itemID id.ID) (ItemRef, error)
}

// SiteReader resolves sites for movement validation.
type SiteReader interface {
	// Exists returns nil when the site exists, a NOT_FOUND apperror otherwise.
	Exists(ctx context.Context, siteID id.ID) error
}
