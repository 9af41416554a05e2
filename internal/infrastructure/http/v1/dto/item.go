package dto

import (
	"time"

	"stockgrid/internal/domain/catalog/item"
)

// ItemResponse is one catalog item on the wire.
type ItemResponse struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	ReorderPoint int64     `json:"reorderPoint"`
	Archived     bool      `json:"archived"`
	Description  *string   `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromItem converts an item to its wire form.
func FromItem(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:           it.ID.String(),
		Code:         it.Code,
		Name:         it.Name,
		ReorderPoint: it.ReorderPoint,
		Archived:     it.Archived,
		Description:  it.Description,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}

// FromItems converts a slice of items.
func FromItems(items []*item.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, FromItem(it))
	}
	return out
}

// CreateItemRequest for creating items.
type CreateItemRequest struct {
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	ReorderPoint int64   `json:"reorderPoint" binding:"omitempty,min=0"`
	Description  *string `json:"description"`
}

// UpdateItemRequest for updating items. Nil fields keep current values.
type UpdateItemRequest struct {
	Code         *string `json:"code"`
	Name         *string `json:"name"`
	ReorderPoint *int64  `json:"reorderPoint"`
	Description  *string `json:"description"`
}

// ItemListQuery filters GET /items.
type ItemListQuery struct {
	PaginationRequest
	IncludeArchived bool `form:"includeArchived"`
}
