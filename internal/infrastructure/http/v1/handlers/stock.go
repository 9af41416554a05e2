package handlers

import (
	"github.com/gin-gonic/gin"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/ledger"
	"stockgrid/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes stock level queries.
type StockHandler struct {
	*BaseHandler
	stock ledger.StockRepository
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, stock ledger.StockRepository) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		stock:       stock,
	}
}

// Levels handles GET /stock/levels, listing by item or by site.
func (h *StockHandler) Levels(c *gin.Context) {
	var query dto.StockQuery
	if !h.BindQuery(c, &query) {
		return
	}

	ctx := c.Request.Context()

	switch {
	case query.ItemID != "" && query.SiteID != "":
		itemID, err := id.Parse(query.ItemID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid item id").WithDetail("field", "itemId"))
			return
		}
		siteID, err := id.Parse(query.SiteID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid site id").WithDetail("field", "siteId"))
			return
		}
		lvl, err := h.stock.Get(ctx, itemID, siteID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.FromStockLevel(lvl))

	case query.ItemID != "":
		itemID, err := id.Parse(query.ItemID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid item id").WithDetail("field", "itemId"))
			return
		}
		levels, err := h.stock.ListByItem(ctx, itemID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.ListResponse{Items: dto.FromStockLevels(levels), Count: len(levels)})

	case query.SiteID != "":
		siteID, err := id.Parse(query.SiteID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid site id").WithDetail("field", "siteId"))
			return
		}
		levels, err := h.stock.ListBySite(ctx, siteID, query.ExcludeZero)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.ListResponse{Items: dto.FromStockLevels(levels), Count: len(levels)})

	default:
		h.Error(c, apperror.NewValidation("itemId or siteId is required"))
	}
}

// Low handles GET /stock/low, the reorder report.
func (h *StockHandler) Low(c *gin.Context) {
	var query dto.LowStockQuery
	if !h.BindQuery(c, &query) {
		return
	}

	var siteID *id.ID
	if query.SiteID != "" {
		parsed, err := id.Parse(query.SiteID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid site id").WithDetail("field", "siteId"))
			return
		}
		siteID = &parsed
	}

	rows, err := h.stock.ListBelowReorderPoint(c.Request.Context(), siteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: dto.FromLowStockRows(rows), Count: len(rows)})
}
