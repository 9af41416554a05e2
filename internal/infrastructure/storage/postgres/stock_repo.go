package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/ledger"
)

const stockLevelsTable = "stock_levels"

// StockRepo implements ledger.StockRepository on top of the stock_levels
// table. Rows are created lazily: GetForUpdate inserts a zero row before
// locking it, and ApplyDelta and Set upsert. A rejected movement rolls its
// transaction back, so no row from a failed attempt ever persists.
type StockRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock level repository.
func NewStockRepo(txm *TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the current level for an (item, site) pair. A missing row
// reads as a zero level, which is indistinguishable from an explicit zero
// on purpose.
func (r *StockRepo) Get(ctx context.Context, itemID, siteID id.ID) (ledger.StockLevel, error) {
	var lvl ledger.StockLevel

	q := r.builder.Select(
		"item_id", "site_id", "quantity", "last_movement_at", "updated_at",
	).From(stockLevelsTable).
		Where(squirrel.Eq{
			"item_id": itemID,
			"site_id": siteID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return lvl, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &lvl, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ledger.StockLevel{ItemID: itemID, SiteID: siteID}, nil
		}
		return lvl, ClassifyError(fmt.Errorf("get level: %w", err))
	}

	return lvl, nil
}

// GetForUpdate returns the level with a pessimistic row lock held until
// the surrounding transaction ends. Must be called inside a transaction.
// An absent row is inserted at zero first so the lock always lands on a
// real row; locking nothing would let a read-then-set caller race
// concurrent row creation between its read and its write.
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID, siteID id.ID) (ledger.StockLevel, error) {
	var lvl ledger.StockLevel

	querier := r.txm.GetQuerier(ctx)

	ensure := `
		INSERT INTO stock_levels (item_id, site_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, 0, now(), now())
		ON CONFLICT (item_id, site_id) DO NOTHING
	`
	if _, err := querier.Exec(ctx, ensure, itemID, siteID); err != nil {
		return lvl, ClassifyError(fmt.Errorf("ensure level row: %w", err))
	}

	sql := `
		SELECT item_id, site_id, quantity, last_movement_at, updated_at
		FROM stock_levels
		WHERE item_id = $1 AND site_id = $2
		FOR UPDATE
	`
	if err := pgxscan.Get(ctx, querier, &lvl, sql, itemID, siteID); err != nil {
		return lvl, ClassifyError(fmt.Errorf("get level for update: %w", err))
	}

	return lvl, nil
}

// ApplyDelta adjusts the level by a signed delta, creating the row when
// absent. The quantity >= 0 table constraint rejects any write that would
// go negative, regardless of what the caller checked.
func (r *StockRepo) ApplyDelta(ctx context.Context, itemID, siteID id.ID, delta int64) error {
	sql := `
		INSERT INTO stock_levels (item_id, site_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (item_id, site_id) DO UPDATE
		SET quantity         = stock_levels.quantity + EXCLUDED.quantity,
		    last_movement_at = now(),
		    updated_at       = now()
	`

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, itemID, siteID, delta); err != nil {
		return ClassifyError(fmt.Errorf("apply delta: %w", err))
	}
	return nil
}

// Set writes an absolute quantity, creating the row when absent.
func (r *StockRepo) Set(ctx context.Context, itemID, siteID id.ID, quantity int64) error {
	sql := `
		INSERT INTO stock_levels (item_id, site_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (item_id, site_id) DO UPDATE
		SET quantity         = EXCLUDED.quantity,
		    last_movement_at = now(),
		    updated_at       = now()
	`

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, itemID, siteID, quantity); err != nil {
		return ClassifyError(fmt.Errorf("set level: %w", err))
	}
	return nil
}

// ListBySite returns levels held at one site.
func (r *StockRepo) ListBySite(ctx context.Context, siteID id.ID, excludeZero bool) ([]ledger.StockLevel, error) {
	q := r.builder.Select(
		"item_id", "site_id", "quantity", "last_movement_at", "updated_at",
	).From(stockLevelsTable).
		Where(squirrel.Eq{"site_id": siteID})

	if excludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	q = q.OrderBy("item_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var levels []ledger.StockLevel
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &levels, sql, args...); err != nil {
		return nil, ClassifyError(fmt.Errorf("select levels: %w", err))
	}

	return levels, nil
}

// ListByItem returns non-zero levels of one item across all sites.
func (r *StockRepo) ListByItem(ctx context.Context, itemID id.ID) ([]ledger.StockLevel, error) {
	q := r.builder.Select(
		"item_id", "site_id", "quantity", "last_movement_at", "updated_at",
	).From(stockLevelsTable).
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.NotEq{"quantity": int64(0)}).
		OrderBy("site_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var levels []ledger.StockLevel
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &levels, sql, args...); err != nil {
		return nil, ClassifyError(fmt.Errorf("select levels: %w", err))
	}

	return levels, nil
}

// ListBelowReorderPoint returns per-site levels of active items at or
// below the item's reorder point, optionally limited to one site.
func (r *StockRepo) ListBelowReorderPoint(ctx context.Context, siteID *id.ID) ([]ledger.LowStockRow, error) {
	q := r.builder.Select(
		"sl.item_id",
		"i.code AS item_code",
		"sl.site_id",
		"sl.quantity",
		"i.reorder_point",
	).From(stockLevelsTable + " sl").
		Join("items i ON i.id = sl.item_id").
		Where("sl.quantity <= i.reorder_point").
		Where(squirrel.Eq{"i.archived": false}).
		Where(squirrel.Gt{"i.reorder_point": int64(0)})

	if siteID != nil {
		q = q.Where(squirrel.Eq{"sl.site_id": *siteID})
	}

	q = q.OrderBy("i.code", "sl.site_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []ledger.LowStockRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, ClassifyError(fmt.Errorf("select low stock: %w", err))
	}

	return rows, nil
}

// Ensure interface compliance.
var _ ledger.StockRepository = (*StockRepo)(nil)
