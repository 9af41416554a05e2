package dto

import (
	"time"

	"stockgrid/internal/domain/catalog/site"
)

// SiteResponse is one storage site on the wire.
type SiteResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromSite converts a site to its wire form.
func FromSite(st *site.Site) SiteResponse {
	return SiteResponse{
		ID:        st.ID.String(),
		Code:      st.Code,
		Name:      st.Name,
		Active:    st.Active,
		Address:   st.Address,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}

// FromSites converts a slice of sites.
func FromSites(sites []*site.Site) []SiteResponse {
	out := make([]SiteResponse, 0, len(sites))
	for _, st := range sites {
		out = append(out, FromSite(st))
	}
	return out
}

// CreateSiteRequest for creating sites.
type CreateSiteRequest struct {
	Code    string  `json:"code" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

// UpdateSiteRequest for updating sites. Nil fields keep current values.
type UpdateSiteRequest struct {
	Code    *string `json:"code"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// SiteListQuery filters GET /sites.
type SiteListQuery struct {
	PaginationRequest
	IncludeInactive bool `form:"includeInactive"`
}
