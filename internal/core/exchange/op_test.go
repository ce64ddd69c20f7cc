package exchange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSONDispatch(t *testing.T) {
	op, err := FromJSON([]byte(`{
		"OperationType": "OfferCreate",
		"Account": "alice",
		"Asset": "gallery",
		"AssetID": "42",
		"Price": 1000
	}`))
	require.NoError(t, err)

	create, ok := op.(*OfferCreate)
	require.True(t, ok)
	assert.Equal(t, "alice", create.Account)
	assert.Equal(t, uint64(1000), create.Price)

	op, err = FromJSON([]byte(`{
		"OperationType": "OfferAccept",
		"Account": "bob",
		"Asset": "gallery",
		"AssetID": "42",
		"Payment": 1000
	}`))
	require.NoError(t, err)
	accept, ok := op.(*OfferAccept)
	require.True(t, ok)
	assert.Equal(t, uint64(1000), accept.Payment)

	op, err = FromJSON([]byte(`{
		"OperationType": "OfferCancel",
		"Account": "alice",
		"Asset": "gallery",
		"AssetID": "42"
	}`))
	require.NoError(t, err)
	_, ok = op.(*OfferCancel)
	assert.True(t, ok)
}

func TestFromJSONUnknownType(t *testing.T) {
	_, err := FromJSON([]byte(`{"OperationType": "Payment"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOperationType))

	_, err = FromJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestResultFromValidation(t *testing.T) {
	op := NewOfferCreate("alice", "gallery", "42", 0)
	err := op.Validate()
	require.Error(t, err)
	assert.Equal(t, TemBAD_PRICE, resultFromValidation(err))

	op2 := NewOfferCreate("", "gallery", "42", 1)
	require.Error(t, op2.Validate())
	assert.Equal(t, TemBAD_ACCOUNT, resultFromValidation(op2.Validate()))

	op3 := NewOfferCancel("alice", "", "42")
	require.Error(t, op3.Validate())
	assert.Equal(t, TemBAD_ASSET, resultFromValidation(op3.Validate()))

	assert.Equal(t, TemMALFORMED, resultFromValidation(errors.New("something else")))
}

func TestResultCategories(t *testing.T) {
	assert.True(t, TesSUCCESS.IsSuccess())
	assert.False(t, TecNO_LISTING.IsSuccess())

	for _, r := range []Result{TecNO_LISTING, TecWRONG_PAYMENT, TecNOT_OWNER, TecNOT_LISTING_OWNER, TecASSET_TRANSFER, TecVALUE_TRANSFER, TecREENTRANT} {
		assert.True(t, r.IsTec(), r.String())
		assert.False(t, r.IsTem(), r.String())
		assert.False(t, r.IsTef(), r.String())
	}
	for _, r := range []Result{TemMALFORMED, TemBAD_PRICE, TemBAD_ACCOUNT, TemBAD_ASSET, TemUNKNOWN} {
		assert.True(t, r.IsTem(), r.String())
	}
	for _, r := range []Result{TefINTERNAL, TefSTORE} {
		assert.True(t, r.IsTef(), r.String())
	}

	// Every named code has a name and a message.
	for _, r := range []Result{TesSUCCESS, TecNO_LISTING, TecWRONG_PAYMENT, TecNOT_OWNER, TecNOT_LISTING_OWNER, TecASSET_TRANSFER, TecVALUE_TRANSFER, TecREENTRANT, TefINTERNAL, TefSTORE, TemMALFORMED, TemBAD_PRICE, TemBAD_ACCOUNT, TemBAD_ASSET, TemUNKNOWN} {
		assert.NotEqual(t, "unknown", r.String())
		assert.NotEmpty(t, r.Message())
	}
}

func TestOfferZeroSentinel(t *testing.T) {
	var zero Offer
	assert.False(t, zero.IsActive())
	assert.Empty(t, zero.Seller)

	assert.True(t, Offer{Price: 1}.IsActive())
}
