package handlers

import (
	"github.com/gin-gonic/gin"

	"stockgrid/internal/domain/ledger"
	"stockgrid/internal/infrastructure/http/v1/dto"
)

// MovementHandler exposes the movement engine and journal queries.
type MovementHandler struct {
	*BaseHandler
	engine  *ledger.Engine
	journal ledger.JournalRepository
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, engine *ledger.Engine, journal ledger.JournalRepository) *MovementHandler {
	return &MovementHandler{
		BaseHandler: base,
		engine:      engine,
		journal:     journal,
	}
}

// Record handles POST /movements.
func (h *MovementHandler) Record(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	domainReq, err := req.ToDomain(h.ActorID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	rec, err := h.engine.Record(c.Request.Context(), domainReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMovementRecord(rec))
}

// Get handles GET /movements/:id.
func (h *MovementHandler) Get(c *gin.Context) {
	recordID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	rec, err := h.journal.GetByID(c.Request.Context(), recordID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromMovementRecord(rec))
}

// List handles GET /movements.
func (h *MovementHandler) List(c *gin.Context) {
	var query dto.JournalQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	records, err := h.journal.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromMovementRecords(records),
		Count:  len(records),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
