package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
	"stockgrid/internal/domain/ledger"
)

func strptr(s string) *string { return &s }

func TestRecordMovementRequest_ToDomain(t *testing.T) {
	itemID := id.New().String()
	siteA := id.New().String()
	siteB := id.New().String()

	tests := []struct {
		name     string
		req      RecordMovementRequest
		wantKind ledger.MovementKind
		wantCode string
	}{
		{
			name: "receipt",
			req: RecordMovementRequest{
				Kind: "RECEIPT", ItemID: itemID, DestSiteID: strptr(siteA), Quantity: 10,
			},
			wantKind: ledger.KindReceipt,
		},
		{
			name: "receipt with unit cost",
			req: RecordMovementRequest{
				Kind: "RECEIPT", ItemID: itemID, DestSiteID: strptr(siteA),
				Quantity: 10, UnitCost: strptr("4.60"),
			},
			wantKind: ledger.KindReceipt,
		},
		{
			name: "issue",
			req: RecordMovementRequest{
				Kind: "ISSUE", ItemID: itemID, SourceSiteID: strptr(siteA), Quantity: 3,
			},
			wantKind: ledger.KindIssue,
		},
		{
			name: "correction to zero",
			req: RecordMovementRequest{
				Kind: "CORRECTION", ItemID: itemID, DestSiteID: strptr(siteA), Quantity: 0,
			},
			wantKind: ledger.KindCorrection,
		},
		{
			name: "transfer",
			req: RecordMovementRequest{
				Kind: "TRANSFER", ItemID: itemID,
				SourceSiteID: strptr(siteA), DestSiteID: strptr(siteB), Quantity: 5,
			},
			wantKind: ledger.KindTransfer,
		},
		{
			name:     "unknown kind",
			req:      RecordMovementRequest{Kind: "TELEPORT", ItemID: itemID, Quantity: 1},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "receipt missing destination",
			req: RecordMovementRequest{
				Kind: "RECEIPT", ItemID: itemID, Quantity: 10,
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "issue missing source",
			req: RecordMovementRequest{
				Kind: "ISSUE", ItemID: itemID, DestSiteID: strptr(siteA), Quantity: 3,
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "transfer to same site",
			req: RecordMovementRequest{
				Kind: "TRANSFER", ItemID: itemID,
				SourceSiteID: strptr(siteA), DestSiteID: strptr(siteA), Quantity: 5,
			},
			wantCode: apperror.CodeEqualSites,
		},
		{
			name: "zero quantity receipt",
			req: RecordMovementRequest{
				Kind: "RECEIPT", ItemID: itemID, DestSiteID: strptr(siteA), Quantity: 0,
			},
			wantCode: apperror.CodeInvalidQuantity,
		},
		{
			name: "bad unit cost",
			req: RecordMovementRequest{
				Kind: "RECEIPT", ItemID: itemID, DestSiteID: strptr(siteA),
				Quantity: 10, UnitCost: strptr("not-a-number"),
			},
			wantCode: apperror.CodeValidation,
		},
		{
			name: "bad item id",
			req: RecordMovementRequest{
				Kind: "RECEIPT", ItemID: "abc", DestSiteID: strptr(siteA), Quantity: 10,
			},
			wantCode: apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domainReq, err := tt.req.ToDomain("user-1")

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperror.IsCode(err, tt.wantCode),
					"want code %s, got %v", tt.wantCode, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, domainReq.Kind())
			assert.Equal(t, "user-1", domainReq.ActorID())
		})
	}
}

func TestRecordMovementRequest_ReasonAttached(t *testing.T) {
	req := RecordMovementRequest{
		Kind:       "RECEIPT",
		ItemID:     id.New().String(),
		DestSiteID: strptr(id.New().String()),
		Quantity:   5,
		Reason:     "initial stock",
	}

	domainReq, err := req.ToDomain("user-1")
	require.NoError(t, err)
	assert.Equal(t, ledger.KindReceipt, domainReq.Kind())
	assert.EqualValues(t, 5, domainReq.Quantity())
}

func TestJournalQuery_ToFilter(t *testing.T) {
	itemID := id.New()

	q := JournalQuery{
		ItemID: itemID.String(),
		Kind:   "ISSUE",
		From:   "2026-01-01T00:00:00Z",
	}

	filter, err := q.ToFilter()
	require.NoError(t, err)
	require.NotNil(t, filter.ItemID)
	assert.Equal(t, itemID, *filter.ItemID)
	require.NotNil(t, filter.Kind)
	assert.Equal(t, ledger.KindIssue, *filter.Kind)
	require.NotNil(t, filter.FromDate)
	assert.Equal(t, 50, filter.Limit)
	assert.Nil(t, filter.SiteID)
	assert.Nil(t, filter.ToDate)
}

func TestJournalQuery_ToFilter_BadKind(t *testing.T) {
	q := JournalQuery{Kind: "TELEPORT"}

	_, err := q.ToFilter()
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
