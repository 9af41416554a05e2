package handlers

import (
	"github.com/gin-gonic/gin"

	"stockgrid/internal/domain/catalog/item"
	"stockgrid/internal/infrastructure/http/v1/dto"
)

// ItemHandler exposes the item catalog.
type ItemHandler struct {
	*BaseHandler
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	return &ItemHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it := item.New(req.Code, req.Name)
	it.ReorderPoint = req.ReorderPoint
	it.Description = req.Description

	if err := h.service.Create(c.Request.Context(), it); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromItem(it))
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	it, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(it))
}

// List handles GET /items.
func (h *ItemHandler) List(c *gin.Context) {
	var query dto.ItemListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	items, err := h.service.List(c.Request.Context(), item.ListFilter{
		IncludeArchived: query.IncludeArchived,
		Limit:           query.Limit,
		Offset:          query.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromItems(items),
		Count:  len(items),
		Limit:  query.Limit,
		Offset: query.Offset,
	})
}

// Update handles PUT /items/:id.
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	it, err := h.service.GetByID(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Code != nil {
		it.Code = *req.Code
	}
	if req.Name != nil {
		it.Name = *req.Name
	}
	if req.ReorderPoint != nil {
		it.ReorderPoint = *req.ReorderPoint
	}
	if req.Description != nil {
		it.Description = req.Description
	}

	if err := h.service.Update(ctx, it); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(it))
}

// Archive handles POST /items/:id/archive.
func (h *ItemHandler) Archive(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Archive(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "item archived")
}

// Restore handles POST /items/:id/restore.
func (h *ItemHandler) Restore(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Restore(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "item restored")
}
