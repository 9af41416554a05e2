package item

import (
	"context"

	"stockgrid/internal/core/id"
)

// ListFilter narrows item listings.
type ListFilter struct {
	IncludeArchived bool
	Limit           int
	Offset          int
}

// Repository defines Item persistence.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	GetByCode(ctx context.Context, code string) (*Item, error)
	List(ctx context.Context, filter ListFilter) ([]*Item, error)

	// SetArchived flips the archived flag; archived items reject movements.
	SetArchived(ctx context.Context, itemID id.ID, archived bool) error
}
