package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/ledger"
)

// RecordMovementRequest is the body of POST /movements. Which site fields
// are required depends on the kind: receipts and corrections take a
// destination, issues take a source, transfers take both.
type RecordMovementRequest struct {
	Kind         string  `json:"kind" binding:"required"`
	ItemID       string  `json:"itemId" binding:"required,uuid"`
	SourceSiteID *string `json:"sourceSiteId" binding:"omitempty,uuid"`
	DestSiteID   *string `json:"destSiteId" binding:"omitempty,uuid"`
	Quantity     int64   `json:"quantity"`
	Reason       string  `json:"reason"`
	UnitCost     *string `json:"unitCost"`
}

// ToDomain validates the shape for the requested kind and builds the
// movement request.
func (r *RecordMovementRequest) ToDomain(actorID string) (ledger.MovementRequest, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return ledger.MovementRequest{}, apperror.NewValidation("invalid item id").
			WithDetail("field", "itemId")
	}

	var req ledger.MovementRequest
	switch ledger.MovementKind(r.Kind) {
	case ledger.KindReceipt:
		dest, err := r.requireSite(r.DestSiteID, "destSiteId")
		if err != nil {
			return ledger.MovementRequest{}, err
		}
		req, err = ledger.NewReceipt(itemID, dest, r.Quantity, actorID)
		if err != nil {
			return ledger.MovementRequest{}, err
		}
		if r.UnitCost != nil {
			cost, err := decimal.NewFromString(*r.UnitCost)
			if err != nil {
				return ledger.MovementRequest{}, apperror.NewValidation("invalid unit cost").
					WithDetail("field", "unitCost")
			}
			req = req.WithUnitCost(cost)
		}

	case ledger.KindIssue:
		source, err := r.requireSite(r.SourceSiteID, "sourceSiteId")
		if err != nil {
			return ledger.MovementRequest{}, err
		}
		req, err = ledger.NewIssue(itemID, source, r.Quantity, actorID)
		if err != nil {
			return ledger.MovementRequest{}, err
		}

	case ledger.KindCorrection:
		dest, err := r.requireSite(r.DestSiteID, "destSiteId")
		if err != nil {
			return ledger.MovementRequest{}, err
		}
		req, err = ledger.NewCorrection(itemID, dest, r.Quantity, actorID)
		if err != nil {
			return ledger.MovementRequest{}, err
		}

	case ledger.KindTransfer:
		source, err := r.requireSite(r.SourceSiteID, "sourceSiteId")
		if err != nil {
			return ledger.MovementRequest{}, err
		}
		dest, err := r.requireSite(r.DestSiteID, "destSiteId")
		if err != nil {
			return ledger.MovementRequest{}, err
		}
		req, err = ledger.NewTransfer(itemID, source, dest, r.Quantity, actorID)
		if err != nil {
			return ledger.MovementRequest{}, err
		}

	default:
		return ledger.MovementRequest{}, apperror.NewValidation("unknown movement kind").
			WithDetail("field", "kind").
			WithDetail("kind", r.Kind)
	}

	return req.WithReason(r.Reason), nil
}

func (r *RecordMovementRequest) requireSite(raw *string, field string) (id.ID, error) {
	if raw == nil {
		return id.Nil(), apperror.NewValidation(field + " is required for this kind").
			WithDetail("field", field)
	}
	siteID, err := id.Parse(*raw)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid site id").
			WithDetail("field", field)
	}
	return siteID, nil
}

// MovementResponse is one journal record on the wire.
type MovementResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	ItemID       string    `json:"itemId"`
	SourceSiteID *string   `json:"sourceSiteId,omitempty"`
	DestSiteID   *string   `json:"destSiteId,omitempty"`
	Quantity     int64     `json:"quantity"`
	UnitCost     *string   `json:"unitCost,omitempty"`
	ActorID      string    `json:"actorId"`
	Reason       *string   `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FromMovementRecord converts a journal record to its wire form.
func FromMovementRecord(rec *ledger.MovementRecord) MovementResponse {
	resp := MovementResponse{
		ID:        rec.ID.String(),
		Kind:      string(rec.Kind),
		ItemID:    rec.ItemID.String(),
		Quantity:  rec.Quantity,
		ActorID:   rec.ActorID,
		Reason:    rec.Reason,
		CreatedAt: rec.CreatedAt,
	}
	if rec.SourceSiteID != nil {
		s := rec.SourceSiteID.String()
		resp.SourceSiteID = &s
	}
	if rec.DestSiteID != nil {
		s := rec.DestSiteID.String()
		resp.DestSiteID = &s
	}
	if rec.UnitCost != nil {
		s := rec.UnitCost.String()
		resp.UnitCost = &s
	}
	return resp
}

// FromMovementRecords converts a slice of journal records.
func FromMovementRecords(recs []*ledger.MovementRecord) []MovementResponse {
	out := make([]MovementResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromMovementRecord(rec))
	}
	return out
}

// JournalQuery filters GET /movements.
type JournalQuery struct {
	PaginationRequest
	ItemID  string `form:"itemId" binding:"omitempty,uuid"`
	SiteID  string `form:"siteId" binding:"omitempty,uuid"`
	Kind    string `form:"kind"`
	ActorID string `form:"actorId"`
	From    string `form:"from"` // RFC 3339
	To      string `form:"to"`
}

// ToFilter converts query parameters to a journal filter.
func (q *JournalQuery) ToFilter() (ledger.JournalFilter, error) {
	q.Defaults()
	filter := ledger.JournalFilter{
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if q.ItemID != "" {
		itemID, err := id.Parse(q.ItemID)
		if err != nil {
			return filter, apperror.NewValidation("invalid item id").WithDetail("field", "itemId")
		}
		filter.ItemID = &itemID
	}
	if q.SiteID != "" {
		siteID, err := id.Parse(q.SiteID)
		if err != nil {
			return filter, apperror.NewValidation("invalid site id").WithDetail("field", "siteId")
		}
		filter.SiteID = &siteID
	}
	if q.Kind != "" {
		kind := ledger.MovementKind(q.Kind)
		if !kind.Valid() {
			return filter, apperror.NewValidation("unknown movement kind").WithDetail("field", "kind")
		}
		filter.Kind = &kind
	}
	if q.ActorID != "" {
		filter.ActorID = &q.ActorID
	}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return filter, apperror.NewValidation("invalid from date").WithDetail("field", "from")
		}
		filter.FromDate = &from
	}
	if q.To != "" {
		to, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return filter, apperror.NewValidation("invalid to date").WithDetail("field", "to")
		}
		filter.ToDate = &to
	}

	return filter, nil
}
