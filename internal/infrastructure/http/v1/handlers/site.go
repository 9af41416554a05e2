package handlers

import (
	"github.com/gin-gonic/gin"

	"stockgrid/internal/domain/catalog/site"
	"stockgrid/internal/infrastructure/http/v1/dto"
)

// SiteHandler exposes the storage site registry.
type SiteHandler struct {
	*BaseHandler
	service *site.Service
}

// NewSiteHandler creates a new site handler.
func NewSiteHandler(base *BaseHandler, service *site.Service) *SiteHandler {
	return &SiteHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sites.
func (h *SiteHandler) Create(c *gin.Context) {
	var req dto.CreateSiteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	st := site.New(req.Code, req.Name)
	st.Address = req.Address

	if err := h.service.Create(c.Request.Context(), st); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSite(st))
}

// Get handles GET /sites/:id.
func (h *SiteHandler) Get(c *gin.Context) {
	siteID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	st, err := h.service.GetByID(c.Request.Context(), siteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSite(st))
}

// List handles GET /sites.
func (h *SiteHandler) List(c *gin.Context) {
	var query dto.SiteListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	sites, err := h.service.List(c.Request.Context(), site.ListFilter{
		IncludeInactive: query.IncludeInactive,
		Limit:           query.Limit,
		Offset:          query.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:  dto.FromSites(sites),
		Count:  len(sites),
		Limit:  query.Limit,
		Offset: query.Offset,
	})
}

// Update handles PUT /sites/:id.
func (h *SiteHandler) Update(c *gin.Context) {
	siteID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSiteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	st, err := h.service.GetByID(ctx, siteID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Code != nil {
		st.Code = *req.Code
	}
	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Address != nil {
		st.Address = req.Address
	}

	if err := h.service.Update(ctx, st); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSite(st))
}

// Deactivate handles POST /sites/:id/deactivate.
func (h *SiteHandler) Deactivate(c *gin.Context) {
	siteID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), siteID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "site deactivated")
}

// Activate handles POST /sites/:id/activate.
func (h *SiteHandler) Activate(c *gin.Context) {
	siteID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Activate(c.Request.Context(), siteID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "site activated")
}
