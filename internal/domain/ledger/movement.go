// Package ledger provides the stock ledger and movement engine.
// It owns the two core structures: per-site stock levels (the mutable
// projection) and the append-only movement journal (the source of truth).
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
)

// MovementKind defines the four supported movement operations.
type MovementKind string

const (
	// KindReceipt adds quantity at the destination site
	KindReceipt MovementKind = "RECEIPT"
	// KindIssue removes quantity from the source site
	KindIssue MovementKind = "ISSUE"
	// KindCorrection sets the destination site's quantity to an absolute value
	KindCorrection MovementKind = "CORRECTION"
	// KindTransfer moves quantity from the source site to the destination site
	KindTransfer MovementKind = "TRANSFER"
)

// Valid reports whether k is one of the four movement kinds.
func (k MovementKind) Valid() bool {
	switch k {
	case KindReceipt, KindIssue, KindCorrection, KindTransfer:
		return true
	}
	return false
}

// StockLevel is the mutable projection: how much of one item is at one
// site right now. Rows are created lazily on first movement and never
// deleted; a zero row is valid and distinct from "no row".
type StockLevel struct {
	ItemID id.ID `db:"item_id" json:"itemId"`
	SiteID id.ID `db:"site_id" json:"siteId"`

	// Quantity is always >= 0
	Quantity int64 `db:"quantity" json:"quantity"`

	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// MovementRecord is one immutable journal row. Records are created exactly
// once per successful engine invocation and never mutated or deleted;
// mistakes are compensated by recording a new movement.
//
// Quantity is stored signed: +Q for receipts and transfers, -Q for issues,
// and the delta from previous to new value for corrections. Folding the
// signed quantities of all records touching an (item, site) pair in
// creation order reproduces the current StockLevel.
type MovementRecord struct {
	ID   id.ID        `db:"id" json:"id"`
	Kind MovementKind `db:"kind" json:"kind"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	// SourceSiteID is set for issue and transfer
	SourceSiteID *id.ID `db:"source_site_id" json:"sourceSiteId,omitempty"`

	// DestSiteID is set for receipt, correction, and transfer
	DestSiteID *id.ID `db:"dest_site_id" json:"destSiteId,omitempty"`

	Quantity int64 `db:"quantity" json:"quantity"`

	// UnitCost optionally values receipts for later reporting
	UnitCost *decimal.Decimal `db:"unit_cost" json:"unitCost,omitempty"`

	ActorID string  `db:"actor_id" json:"actorId"`
	Reason  *string `db:"reason" json:"reason,omitempty"`

	// CreatedAt is server-assigned at insert time
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MovementRequest is a validated movement command. Requests are built only
// through the per-kind constructors below, which enforce the site-parameter
// shape each kind requires; the zero value is not a usable request.
type MovementRequest struct {
	kind     MovementKind
	itemID   id.ID
	quantity int64
	source   *id.ID
	dest     *id.ID
	actorID  string
	reason   *string
	unitCost *decimal.Decimal
}

// NewReceipt builds a request that adds qty of item at dest.
func NewReceipt(itemID, destSiteID id.ID, qty int64, actorID string) (MovementRequest, error) {
	if qty <= 0 {
		return MovementRequest{}, apperror.NewInvalidQuantity(qty)
	}
	if err := requireIDs(itemID, destSiteID, actorID); err != nil {
		return MovementRequest{}, err
	}
	return MovementRequest{
		kind:     KindReceipt,
		itemID:   itemID,
		quantity: qty,
		dest:     &destSiteID,
		actorID:  actorID,
	}, nil
}

// NewIssue builds a request that removes qty of item from source.
func NewIssue(itemID, sourceSiteID id.ID, qty int64, actorID string) (MovementRequest, error) {
	if qty <= 0 {
		return MovementRequest{}, apperror.NewInvalidQuantity(qty)
	}
	if err := requireIDs(itemID, sourceSiteID, actorID); err != nil {
		return MovementRequest{}, err
	}
	return MovementRequest{
		kind:     KindIssue,
		itemID:   itemID,
		quantity: qty,
		source:   &sourceSiteID,
		actorID:  actorID,
	}, nil
}

// NewCorrection builds a request that sets the level of item at dest to
// the absolute value qty. Unlike the other kinds a correction target of
// zero is legal; negative targets are not.
func NewCorrection(itemID, destSiteID id.ID, qty int64, actorID string) (MovementRequest, error) {
	if qty < 0 {
		return MovementRequest{}, apperror.NewInvalidQuantity(qty)
	}
	if err := requireIDs(itemID, destSiteID, actorID); err != nil {
		return MovementRequest{}, err
	}
	return MovementRequest{
		kind:     KindCorrection,
		itemID:   itemID,
		quantity: qty,
		dest:     &destSiteID,
		actorID:  actorID,
	}, nil
}

// NewTransfer builds a request that moves qty of item from source to dest.
func NewTransfer(itemID, sourceSiteID, destSiteID id.ID, qty int64, actorID string) (MovementRequest, error) {
	if qty <= 0 {
		return MovementRequest{}, apperror.NewInvalidQuantity(qty)
	}
	if err := requireIDs(itemID, sourceSiteID, actorID); err != nil {
		return MovementRequest{}, err
	}
	if id.IsNil(destSiteID) {
		return MovementRequest{}, apperror.NewValidation("destination site is required").
			WithDetail("field", "destSiteId")
	}
	if sourceSiteID == destSiteID {
		return MovementRequest{}, apperror.NewEqualSites(sourceSiteID)
	}
	return MovementRequest{
		kind:     KindTransfer,
		itemID:   itemID,
		quantity: qty,
		source:   &sourceSiteID,
		dest:     &destSiteID,
		actorID:  actorID,
	}, nil
}

// WithReason attaches optional human-readable reason text.
func (r MovementRequest) WithReason(reason string) MovementRequest {
	if reason != "" {
		r.reason = &reason
	}
	return r
}

// WithUnitCost attaches an optional per-unit cost. Only meaningful for
// receipts; other kinds ignore it.
func (r MovementRequest) WithUnitCost(cost decimal.Decimal) MovementRequest {
	r.unitCost = &cost
	return r
}

// Kind returns the movement kind.
func (r MovementRequest) Kind() MovementKind { return r.kind }

// ItemID returns the referenced item.
func (r MovementRequest) ItemID() id.ID { return r.itemID }

// Quantity returns the requested magnitude (or absolute target for corrections).
func (r MovementRequest) Quantity() int64 { return r.quantity }

// SourceSiteID returns the source site, nil unless issue or transfer.
func (r MovementRequest) SourceSiteID() *id.ID { return r.source }

// DestSiteID returns the destination site, nil unless receipt, correction, or transfer.
func (r MovementRequest) DestSiteID() *id.ID { return r.dest }

// ActorID returns the acting identity.
func (r MovementRequest) ActorID() string { return r.actorID }

func requireIDs(itemID, siteID id.ID, actorID string) error {
	if id.IsNil(itemID) {
		return apperror.NewValidation("item is required").WithDetail("field", "itemId")
	}
	if id.IsNil(siteID) {
		return apperror.NewValidation("site is required").WithDetail("field", "siteId")
	}
	if actorID == "" {
		return apperror.NewValidation("actor is required").WithDetail("field", "actorId")
	}
	return nil
}
