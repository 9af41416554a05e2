package item

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/audit"
)

type fakeRepo struct {
	items map[id.ID]*Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Item)}
}

func (r *fakeRepo) Create(_ context.Context, it *Item) error {
	r.items[it.ID] = it
	return nil
}

func (r *fakeRepo) Update(_ context.Context, it *Item) error {
	if _, ok := r.items[it.ID]; !ok {
		return apperror.NewNotFound("item", it.ID)
	}
	r.items[it.ID] = it
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, itemID id.ID) (*Item, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	cp := *it
	return &cp, nil
}

func (r *fakeRepo) GetByCode(_ context.Context, code string) (*Item, error) {
	for _, it := range r.items {
		if it.Code == code {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("item", code)
}

func (r *fakeRepo) List(_ context.Context, filter ListFilter) ([]*Item, error) {
	out := make([]*Item, 0, len(r.items))
	for _, it := range r.items {
		if it.Archived && !filter.IncludeArchived {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) SetArchived(_ context.Context, itemID id.ID, archived bool) error {
	it, ok := r.items[itemID]
	if !ok {
		return apperror.NewNotFound("item", itemID)
	}
	it.Archived = archived
	return nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (a *recordingAudit) Record(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) last(t *testing.T) audit.Entry {
	t.Helper()
	require.NotEmpty(t, a.entries)
	return a.entries[len(a.entries)-1]
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	rec := &recordingAudit{}
	svc := NewService(repo, rec)
	ctx := context.Background()

	it := New("SKU-001", "Widget")
	require.NoError(t, svc.Create(ctx, it))

	stored, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-001", stored.Code)

	entry := rec.last(t)
	assert.Equal(t, audit.ActionCreate, entry.Action)
	assert.Equal(t, "item", entry.EntityType)
	assert.Equal(t, it.ID, entry.EntityID)
}

func TestService_Create_DuplicateCode(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, audit.Nop{})
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, New("SKU-001", "Widget")))

	err := svc.Create(ctx, New("SKU-001", "Widget Mk2"))
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))
	assert.Len(t, repo.items, 1)
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newFakeRepo(), audit.Nop{})
	ctx := context.Background()

	err := svc.Create(ctx, New("", "Widget"))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	err = svc.Create(ctx, New("SKU-001", ""))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	bad := New("SKU-002", "Widget")
	bad.ReorderPoint = -1
	err = svc.Create(ctx, bad)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_Archive(t *testing.T) {
	repo := newFakeRepo()
	rec := &recordingAudit{}
	svc := NewService(repo, rec)
	ctx := context.Background()

	it := New("SKU-001", "Widget")
	require.NoError(t, svc.Create(ctx, it))

	require.NoError(t, svc.Archive(ctx, it.ID))
	stored, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, stored.Archived)
	assert.Equal(t, audit.ActionArchive, rec.last(t).Action)

	// Archiving an archived item is a no-op and records nothing.
	before := len(rec.entries)
	require.NoError(t, svc.Archive(ctx, it.ID))
	assert.Len(t, rec.entries, before)
}

func TestService_Archive_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), audit.Nop{})

	err := svc.Archive(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Restore(t *testing.T) {
	repo := newFakeRepo()
	rec := &recordingAudit{}
	svc := NewService(repo, rec)
	ctx := context.Background()

	it := New("SKU-001", "Widget")
	require.NoError(t, svc.Create(ctx, it))
	require.NoError(t, svc.Archive(ctx, it.ID))

	require.NoError(t, svc.Restore(ctx, it.ID))
	stored, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.False(t, stored.Archived)
	assert.Equal(t, audit.ActionRestore, rec.last(t).Action)

	before := len(rec.entries)
	require.NoError(t, svc.Restore(ctx, it.ID))
	assert.Len(t, rec.entries, before)
}

func TestService_List_ExcludesArchivedByDefault(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, audit.Nop{})
	ctx := context.Background()

	active := New("SKU-001", "Widget")
	archived := New("SKU-002", "Old Widget")
	require.NoError(t, svc.Create(ctx, active))
	require.NoError(t, svc.Create(ctx, archived))
	require.NoError(t, svc.Archive(ctx, archived.ID))

	items, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, active.ID, items[0].ID)

	items, err = svc.List(ctx, ListFilter{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
