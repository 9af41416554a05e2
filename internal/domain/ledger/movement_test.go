package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockgrid/internal/core/apperror"
	"stockgrid/internal/core/id"
)

func TestNewReceipt_Validation(t *testing.T) {
	item, site := id.New(), id.New()

	req, err := NewReceipt(item, site, 10, "actor")
	require.NoError(t, err)
	assert.Equal(t, KindReceipt, req.Kind())
	assert.Equal(t, item, req.ItemID())
	require.NotNil(t, req.DestSiteID())
	assert.Equal(t, site, *req.DestSiteID())
	assert.Nil(t, req.SourceSiteID())
	assert.Equal(t, int64(10), req.Quantity())

	_, err = NewReceipt(item, site, 0, "actor")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))

	_, err = NewReceipt(item, site, -3, "actor")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))

	_, err = NewReceipt(id.Nil(), site, 5, "actor")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestNewIssue_Validation(t *testing.T) {
	item, site := id.New(), id.New()

	req, err := NewIssue(item, site, 4, "actor")
	require.NoError(t, err)
	assert.Equal(t, KindIssue, req.Kind())
	require.NotNil(t, req.SourceSiteID())
	assert.Equal(t, site, *req.SourceSiteID())
	assert.Nil(t, req.DestSiteID())

	_, err = NewIssue(item, site, 0, "actor")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
}

func TestNewCorrection_ZeroIsLegal(t *testing.T) {
	item, site := id.New(), id.New()

	req, err := NewCorrection(item, site, 0, "actor")
	require.NoError(t, err)
	assert.Equal(t, KindCorrection, req.Kind())
	assert.Equal(t, int64(0), req.Quantity())

	_, err = NewCorrection(item, site, -1, "actor")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
}

func TestNewTransfer_Validation(t *testing.T) {
	item, s1, s2 := id.New(), id.New(), id.New()

	req, err := NewTransfer(item, s1, s2, 6, "actor")
	require.NoError(t, err)
	assert.Equal(t, KindTransfer, req.Kind())
	require.NotNil(t, req.SourceSiteID())
	require.NotNil(t, req.DestSiteID())

	_, err = NewTransfer(item, s1, s1, 6, "actor")
	assert.True(t, apperror.IsCode(err, apperror.CodeEqualSites))

	_, err = NewTransfer(item, s1, s2, 0, "actor")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
}

func TestMovementRequest_Options(t *testing.T) {
	item, site := id.New(), id.New()

	cost := decimal.NewFromFloat(12.50)
	req, err := NewReceipt(item, site, 3, "actor")
	require.NoError(t, err)
	req = req.WithReason("initial load").WithUnitCost(cost)

	assert.Equal(t, "actor", req.ActorID())
}

func TestMovementKind_Valid(t *testing.T) {
	for _, k := range []MovementKind{KindReceipt, KindIssue, KindCorrection, KindTransfer} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, MovementKind("").Valid())
	assert.False(t, MovementKind("split").Valid())
}
