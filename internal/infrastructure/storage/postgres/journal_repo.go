package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/ledger"
)

const movementJournalTable = "movement_journal"

var journalColumns = []string{
	"id", "kind", "item_id", "source_site_id", "dest_site_id",
	"quantity", "unit_cost", "actor_id", "reason", "created_at",
}

// JournalRepo implements ledger.JournalRepository. It only ever inserts
// and reads; there is no UPDATE or DELETE against movement_journal
// anywhere in this package.
type JournalRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewJournalRepo creates a new movement journal repository.
func NewJournalRepo(txm *TxManager) *JournalRepo {
	return &JournalRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert appends one journal record.
func (r *JournalRepo) Insert(ctx context.Context, rec *ledger.MovementRecord) error {
	q := r.builder.Insert(movementJournalTable).
		Columns(journalColumns...).
		Values(
			rec.ID, rec.Kind, rec.ItemID, rec.SourceSiteID, rec.DestSiteID,
			rec.Quantity, rec.UnitCost, rec.ActorID, rec.Reason, rec.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return ClassifyError(fmt.Errorf("insert movement: %w", err))
	}

	return nil
}

// GetByID retrieves one journal record.
func (r *JournalRepo) GetByID(ctx context.Context, recordID id.ID) (*ledger.MovementRecord, error) {
	q := r.builder.Select(journalColumns...).
		From(movementJournalTable).
		Where(squirrel.Eq{"id": recordID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec ledger.MovementRecord
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", recordID)
		}
		return nil, ClassifyError(fmt.Errorf("get movement: %w", err))
	}

	return &rec, nil
}

// List retrieves journal records matching the filter, newest first.
// A site filter matches either side of the movement, so transfer history
// shows up when filtering by source or by destination.
func (r *JournalRepo) List(ctx context.Context, filter ledger.JournalFilter) ([]*ledger.MovementRecord, error) {
	q := r.builder.Select(journalColumns...).From(movementJournalTable)

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}

	if filter.SiteID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"source_site_id": *filter.SiteID},
			squirrel.Eq{"dest_site_id": *filter.SiteID},
		})
	}

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.ActorID != nil {
		q = q.Where(squirrel.Eq{"actor_id": *filter.ActorID})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*ledger.MovementRecord
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, ClassifyError(fmt.Errorf("select movements: %w", err))
	}

	return records, nil
}

// Ensure interface compliance.
var _ ledger.JournalRepository = (*JournalRepo)(nil)
