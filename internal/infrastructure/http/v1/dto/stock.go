package dto

import (
	"time"

	"stockgrid/internal/domain/ledger"
)

// StockLevelResponse is one (item, site) level on the wire.
type StockLevelResponse struct {
	ItemID         string    `json:"itemId"`
	SiteID         string    `json:"siteId"`
	Quantity       int64     `json:"quantity"`
	LastMovementAt time.Time `json:"lastMovementAt"`
}

// FromStockLevel converts a level to its wire form.
func FromStockLevel(lvl ledger.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ItemID:         lvl.ItemID.String(),
		SiteID:         lvl.SiteID.String(),
		Quantity:       lvl.Quantity,
		LastMovementAt: lvl.LastMovementAt,
	}
}

// FromStockLevels converts a slice of levels.
func FromStockLevels(levels []ledger.StockLevel) []StockLevelResponse {
	out := make([]StockLevelResponse, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, FromStockLevel(lvl))
	}
	return out
}

// StockQuery filters GET /stock/levels. Exactly one of itemId or siteId
// must be set.
type StockQuery struct {
	ItemID      string `form:"itemId" binding:"omitempty,uuid"`
	SiteID      string `form:"siteId" binding:"omitempty,uuid"`
	ExcludeZero bool   `form:"excludeZero"`
}

// LowStockQuery filters GET /stock/low.
type LowStockQuery struct {
	SiteID string `form:"siteId" binding:"omitempty,uuid"`
}

// LowStockResponse is one low-stock report row.
type LowStockResponse struct {
	ItemID       string `json:"itemId"`
	ItemCode     string `json:"itemCode"`
	SiteID       string `json:"siteId"`
	Quantity     int64  `json:"quantity"`
	ReorderPoint int64  `json:"reorderPoint"`
}

// FromLowStockRows converts low-stock report rows.
func FromLowStockRows(rows []ledger.LowStockRow) []LowStockResponse {
	out := make([]LowStockResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, LowStockResponse{
			ItemID:       row.ItemID.String(),
			ItemCode:     row.ItemCode,
			SiteID:       row.SiteID.String(),
			Quantity:     row.Quantity,
			ReorderPoint: row.ReorderPoint,
		})
	}
	return out
}
