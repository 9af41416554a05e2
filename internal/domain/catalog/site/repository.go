package site

import (
	"context"

	"stockgrid/internal/core/id"
)

// ListFilter narrows site listings.
type ListFilter struct {
	IncludeInactive bool
	Limit           int
	Offset          int
}

// Repository defines Site persistence.
type Repository interface {
	Create(ctx context.Context, st *Site) error
	Update(ctx context.Context, st *Site) error
	GetByID(ctx context.Context, siteID id.ID) (*Site, error)
	GetByCode(ctx context.Context, code string) (*Site, error)
	List(ctx context.Context, filter ListFilter) ([]*Site, error)
	SetActive(ctx context.Context, siteID id.ID, active bool) error
}
