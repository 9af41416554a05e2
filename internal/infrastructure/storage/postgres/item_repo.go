package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/catalog/item"
	"stockgrid/internal/domain/ledger"
)

const itemsTable = "items"

var itemColumns = []string{
	"id", "code", "name", "reorder_point", "archived",
	"description", "created_at", "updated_at",
}

// ItemRepo implements item.Repository and, through GetRef, the movement
// engine's ledger.ItemReader.
type ItemRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewItemRepo creates a new item catalog repository.
func NewItemRepo(txm *TxManager) *ItemRepo {
	return &ItemRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new item.
func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			it.ID, it.Code, it.Name, it.ReorderPoint, it.Archived,
			it.Description, it.CreatedAt, it.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if IsUniqueViolation(err, "items_code_key") {
			return apperror.NewDuplicate("item", "code", it.Code)
		}
		return ClassifyError(fmt.Errorf("insert item: %w", err))
	}

	return nil
}

// Update rewrites the mutable fields of an item.
func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	q := r.builder.Update(itemsTable).
		Set("code", it.Code).
		Set("name", it.Name).
		Set("reorder_point", it.ReorderPoint).
		Set("description", it.Description).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": it.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if IsUniqueViolation(err, "items_code_key") {
			return apperror.NewDuplicate("item", "code", it.Code)
		}
		return ClassifyError(fmt.Errorf("update item: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("item", it.ID)
	}

	return nil
}

// GetByID retrieves an item by ID.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	return r.getOne(ctx, squirrel.Eq{"id": itemID}, itemID)
}

// GetByCode retrieves an item by its unique code.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*item.Item, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *ItemRepo) getOne(ctx context.Context, where squirrel.Eq, ref any) (*item.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it item.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", ref)
		}
		return nil, ClassifyError(fmt.Errorf("get item: %w", err))
	}

	return &it, nil
}

// List retrieves items matching the filter, ordered by code.
func (r *ItemRepo) List(ctx context.Context, filter item.ListFilter) ([]*item.Item, error) {
	q := r.builder.Select(itemColumns...).From(itemsTable)

	if !filter.IncludeArchived {
		q = q.Where(squirrel.Eq{"archived": false})
	}

	q = q.OrderBy("code")

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

	var items []*item.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, ClassifyError(fmt.Errorf("select items: %w", err))
	}

	return items, nil
}

// SetArchived flips the archived flag.
func (r *ItemRepo) SetArchived(ctx context.Context, itemID id.ID, archived bool) error {
	q := r.builder.Update(itemsTable).
		Set("archived", archived).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return ClassifyError(fmt.Errorf("set archived: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID)
	}

	return nil
}

// GetRef returns the minimal view the movement engine validates against.
func (r *ItemRepo) GetRef(ctx context.Context, itemID id.ID) (ledger.ItemRef, error) {
	q := r.builder.Select("id", "code", "archived").
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return ledger.ItemRef{}, fmt.Errorf("build query: %w", err)
	}

	var ref ledger.ItemRef
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&ref.ID, &ref.Code, &ref.Archived); err != nil {
		if pgxscan.NotFound(err) {
			return ledger.ItemRef{}, apperror.NewNotFound("item", itemID)
		}
		return ledger.ItemRef{}, ClassifyError(fmt.Errorf("get item ref: %w", err))
	}

	return ref, nil
}

// Ensure interface compliance.
var (
	_ item.Repository   = (*ItemRepo)(nil)
	_ ledger.ItemReader = (*ItemRepo)(nil)
)
