// Package item provides the Item catalog.
// Items are the trackable goods whose quantities the ledger follows.
package item

import (
	"context"
	"time"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
)

// Item represents a trackable catalog entry.
// The movement engine consumes items read-only; mutation happens only
// through the catalog service.
type Item struct {
	ID id.ID `db:"id" json:"id"`

	// Code is the unique reference code (SKU)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// ReorderPoint is the threshold below which stock is considered low
	ReorderPoint int64 `db:"reorder_point" json:"reorderPoint"`

	// Archived items reject new movements
	Archived bool `db:"archived" json:"archived"`

	// Description is optional free text
	Description *string `db:"description" json:"description,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new Item with generated ID.
func New(code, name string) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks item invariants.
func (i *Item) Validate(ctx context.Context) error {
	if i.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if i.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if i.ReorderPoint < 0 {
		return apperror.NewValidation("reorder point cannot be negative").
			WithDetail("field", "reorderPoint")
	}
	return nil
}

// Active reports whether the item can accept new movements.
func (i *Item) Active() bool {
	return !i.Archived
}
