package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/catalog/site"
	"stockgrid/internal/domain/ledger"
)

const sitesTable = "sites"

var siteColumns = []string{
	"id", "code", "name", "active", "address", "created_at", "updated_at",
}

// SiteRepo implements site.Repository and the movement engine's
// ledger.SiteReader.
type SiteRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSiteRepo creates a new site registry repository.
func NewSiteRepo(txm *TxManager) *SiteRepo {
	return &SiteRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new site.
func (r *SiteRepo) Create(ctx context.Context, st *site.Site) error {
	q := r.builder.Insert(sitesTable).
		Columns(siteColumns...).
		Values(
			st.ID, st.Code, st.Name, st.Active, st.Address,
			st.CreatedAt, st.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if IsUniqueViolation(err, "sites_code_key") {
			return apperror.NewDuplicate("site", "code", st.Code)
		}
		return ClassifyError(fmt.Errorf("insert site: %w", err))
	}

	return nil
}

// Update rewrites the mutable fields of a site.
func (r *SiteRepo) Update(ctx context.Context, st *site.Site) error {
	q := r.builder.Update(sitesTable).
		Set("code", st.Code).
		Set("name", st.Name).
		Set("address", st.Address).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": st.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if IsUniqueViolation(err, "sites_code_key") {
			return apperror.NewDuplicate("site", "code", st.Code)
		}
		return ClassifyError(fmt.Errorf("update site: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("site", st.ID)
	}

	return nil
}

// GetByID retrieves a site by ID.
func (r *SiteRepo) GetByID(ctx context.Context, siteID id.ID) (*site.Site, error) {
	return r.getOne(ctx, squirrel.Eq{"id": siteID}, siteID)
}

// GetByCode retrieves a site by its unique code.
func (r *SiteRepo) GetByCode(ctx context.Context, code string) (*site.Site, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *SiteRepo) getOne(ctx context.Context, where squirrel.Eq, ref any) (*site.Site, error) {
	q := r.builder.Select(siteColumns...).
		From(sitesTable).
		Where(where).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var st site.Site
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &st, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("site", ref)
		}
		return nil, ClassifyError(fmt.Errorf("get site: %w", err))
	}

	return &st, nil
}

// List retrieves sites matching the filter, ordered by code.
func (r *SiteRepo) List(ctx context.Context, filter site.ListFilter) ([]*site.Site, error) {
	q := r.builder.Select(siteColumns...).From(sitesTable)

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"active": true})
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

	var sites []*site.Site
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sites, sql, args...); err != nil {
		return nil, ClassifyError(fmt.Errorf("select sites: %w", err))
	}

	return sites, nil
}

// SetActive flips the active flag.
func (r *SiteRepo) SetActive(ctx context.Context, siteID id.ID, active bool) error {
	q := r.builder.Update(sitesTable).
		Set("active", active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": siteID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return ClassifyError(fmt.Errorf("set active: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("site", siteID)
	}

	return nil
}

// Exists reports whether the site is known. Inactive sites pass: the
// ledger keeps accepting history for locations being wound down.
func (r *SiteRepo) Exists(ctx context.Context, siteID id.ID) error {
	sql := `SELECT 1 FROM sites WHERE id = $1`

	var one int
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, siteID).Scan(&one); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound("site", siteID)
		}
		return ClassifyError(fmt.Errorf("check site: %w", err))
	}

	return nil
}

// Ensure interface compliance.
var (
	_ site.Repository   = (*SiteRepo)(nil)
	_ ledger.SiteReader = (*SiteRepo)(nil)
)
