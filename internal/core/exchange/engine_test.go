package exchange_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexch/marketd/internal/core/exchange"
	"github.com/openexch/marketd/internal/events"
	"github.com/openexch/marketd/internal/storage"
	jtx "github.com/openexch/marketd/internal/testing"
)

func TestListAndReadBack(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")

	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	offer := env.GetOffer("gallery", "42")
	assert.True(t, offer.IsActive())
	assert.Equal(t, "alice", offer.Seller)
	assert.Equal(t, uint64(1000), offer.Price)

	// A never-listed slot reads as the zero sentinel.
	assert.Equal(t, exchange.Offer{}, env.GetOffer("gallery", "999"))
}

func TestListValidation(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")

	// Zero price is the absence sentinel and can never be listed.
	env.List("alice", "gallery", "42", 0).RequireCode(t, "temBAD_PRICE")

	env.List("", "gallery", "42", 1000).RequireCode(t, "temBAD_ACCOUNT")
	env.List("alice", "", "42", 1000).RequireCode(t, "temBAD_ASSET")
	env.List("alice", "gallery", "", 1000).RequireCode(t, "temBAD_ASSET")

	// Nothing was written.
	assert.False(t, env.GetOffer("gallery", "42").IsActive())
	assert.Empty(t, env.Events())
}

func TestListRequiresCurrentOwnership(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")

	env.List("bob", "gallery", "42", 1000).RequireCode(t, "tecNOT_OWNER")

	// An asset the registry has never heard of cannot be listed either.
	env.List("alice", "gallery", "404", 1000).RequireCode(t, "tecNOT_OWNER")

	assert.False(t, env.GetOffer("gallery", "42").IsActive())
}

func TestRelistReplacesOffer(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")

	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)
	env.List("alice", "gallery", "42", 2500).RequireSuccess(t)

	offer := env.GetOffer("gallery", "42")
	assert.Equal(t, uint64(2500), offer.Price)

	// Both listings emitted their own event.
	assert.Equal(t, []events.Type{events.TypeListed, events.TypeListed}, env.EventTypes())
}

func TestCancelAuthorization(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	// Only the recorded seller may cancel.
	env.Cancel("bob", "gallery", "42").RequireCode(t, "tecNOT_LISTING_OWNER")
	assert.True(t, env.GetOffer("gallery", "42").IsActive())

	env.Cancel("alice", "gallery", "42").RequireSuccess(t)
	assert.False(t, env.GetOffer("gallery", "42").IsActive())

	// Canceling an absent offer reports the same authorization failure: the
	// sentinel's null seller never matches a validated caller.
	env.Cancel("alice", "gallery", "42").RequireCode(t, "tecNOT_LISTING_OWNER")

	assert.Equal(t, []events.Type{events.TypeListed, events.TypeCanceled}, env.EventTypes())
}

func TestBuyAbsentOffer(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")

	env.Buy("bob", "gallery", "42", 1000).RequireCode(t, "tecNO_LISTING")
}

func TestBuyExactPaymentOnly(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	// 999 is rejected and changes nothing.
	env.Buy("bob", "gallery", "42", 999).RequireCode(t, "tecWRONG_PAYMENT")
	assert.True(t, env.GetOffer("gallery", "42").IsActive())
	assert.Equal(t, "alice", env.OwnerOf("gallery", "42"))
	assert.Equal(t, uint64(0), env.Bank.Balance("alice"))

	// Overpayment is rejected just the same.
	env.Buy("bob", "gallery", "42", 1001).RequireCode(t, "tecWRONG_PAYMENT")

	// The retry with the exact price succeeds.
	env.Buy("bob", "gallery", "42", 1000).RequireSuccess(t)
	assert.False(t, env.GetOffer("gallery", "42").IsActive())
	assert.Equal(t, "bob", env.OwnerOf("gallery", "42"))
	assert.Equal(t, uint64(1000), env.Bank.Balance("alice"))

	assert.Equal(t, []events.Type{events.TypeListed, events.TypeSold}, env.EventTypes())
}

func TestBuyTwice(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	env.Buy("bob", "gallery", "42", 1000).RequireSuccess(t)

	// The slot is cleared; a second buy finds nothing.
	env.Buy("carol", "gallery", "42", 1000).RequireCode(t, "tecNO_LISTING")
	assert.Equal(t, "bob", env.OwnerOf("gallery", "42"))
	assert.Equal(t, uint64(1000), env.Bank.Balance("alice"))
}

func TestBuyRollbackOnAssetTransferFailure(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	env.Registry.FailTransfer = true
	env.Buy("bob", "gallery", "42", 1000).RequireCode(t, "tecASSET_TRANSFER")

	// The whole operation rolled back: offer restored, no payment, no event.
	assert.True(t, env.GetOffer("gallery", "42").IsActive())
	assert.Equal(t, "alice", env.OwnerOf("gallery", "42"))
	assert.Equal(t, uint64(0), env.Bank.Balance("alice"))
	assert.Equal(t, []events.Type{events.TypeListed}, env.EventTypes())

	// The offer survives and is buyable once the registry recovers.
	env.Registry.FailTransfer = false
	env.Buy("bob", "gallery", "42", 1000).RequireSuccess(t)
}

func TestBuyRollbackOnPaymentFailure(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	// The seller cannot receive value. The asset transfer has already
	// happened by the time the payment fails, so the buy must hand the asset
	// back and restore the offer.
	env.Bank.Rejecting["alice"] = true
	env.Buy("bob", "gallery", "42", 1000).RequireCode(t, "tecVALUE_TRANSFER")

	assert.True(t, env.GetOffer("gallery", "42").IsActive())
	assert.Equal(t, "alice", env.OwnerOf("gallery", "42"))
	assert.Equal(t, uint64(0), env.Bank.Balance("alice"))
	assert.Equal(t, []events.Type{events.TypeListed}, env.EventTypes())
}

func TestReentrantCallbackRejected(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	var nested exchange.ApplyResult
	var observed exchange.Offer
	env.Registry.TransferHook = func(ctx context.Context, asset, assetID, from, to string) {
		// A collaborator that calls back into the exchange mid-operation
		// must be rejected, and must already observe the cleared slot.
		observed = env.Engine.GetOffer(asset, assetID)
		nested = env.Engine.Submit(ctx, exchange.NewOfferCreate(from, asset, assetID, 9999))
	}

	env.Buy("bob", "gallery", "42", 1000).RequireSuccess(t)

	assert.Equal(t, exchange.TecREENTRANT, nested.Result)
	assert.False(t, nested.Applied)
	assert.False(t, observed.IsActive(), "offer must be cleared before external transfers run")

	// The outer buy completed normally despite the rejected callback.
	assert.Equal(t, "bob", env.OwnerOf("gallery", "42"))
	assert.Equal(t, uint64(1000), env.Bank.Balance("alice"))
}

func TestReentrantCancelDuringPayment(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "42", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)

	var nested exchange.ApplyResult
	env.Bank.SendHook = func(ctx context.Context, to string, amount uint64) {
		nested = env.Engine.Submit(ctx, exchange.NewOfferCancel(to, "gallery", "42"))
	}

	env.Buy("bob", "gallery", "42", 1000).RequireSuccess(t)
	assert.Equal(t, exchange.TecREENTRANT, nested.Result)
}

func TestEventOrderingAndSequence(t *testing.T) {
	env := jtx.NewTestEnv(t)
	env.Mint("gallery", "1", "alice")
	env.Mint("gallery", "2", "alice")

	env.List("alice", "gallery", "1", 100).RequireSuccess(t)
	env.Cancel("alice", "gallery", "1").RequireSuccess(t)
	env.List("alice", "gallery", "2", 200).RequireSuccess(t)
	env.Buy("bob", "gallery", "2", 200).RequireSuccess(t)

	evs := env.Events()
	require.Len(t, evs, 4)
	assert.Equal(t, []events.Type{
		events.TypeListed, events.TypeCanceled, events.TypeListed, events.TypeSold,
	}, env.EventTypes())

	// Publisher sequence numbers are strictly increasing.
	for i := 1; i < len(evs); i++ {
		assert.Greater(t, evs[i].Seq, evs[i-1].Seq)
	}

	sold := evs[3]
	assert.Equal(t, "bob", sold.Buyer)
	assert.Equal(t, "alice", sold.Seller)
	assert.Equal(t, uint64(200), sold.Price)
}

func TestOfferBookSurvivesRestart(t *testing.T) {
	backend := storage.NewMemory()

	env := jtx.NewTestEnv(t, jtx.WithStore(storage.NewOfferStore(backend)))
	env.Mint("gallery", "42", "alice")
	env.Mint("gallery", "7", "alice")
	env.List("alice", "gallery", "42", 1000).RequireSuccess(t)
	env.List("alice", "gallery", "7", 500).RequireSuccess(t)
	env.Cancel("alice", "gallery", "7").RequireSuccess(t)

	// A fresh engine over the same backend rebuilds the book.
	reg := env.Registry
	engine, err := exchange.NewEngine(reg, env.Bank, exchange.WithStore(storage.NewOfferStore(backend)))
	require.NoError(t, err)

	assert.Equal(t, 1, engine.ActiveOffers())
	offer := engine.GetOffer("gallery", "42")
	assert.Equal(t, "alice", offer.Seller)
	assert.Equal(t, uint64(1000), offer.Price)
	assert.False(t, engine.GetOffer("gallery", "7").IsActive())
}

// failingStore rejects every commit.
type failingStore struct{}

func (failingStore) Load() (map[exchange.Key]exchange.Offer, error) { return nil, nil }
func (failingStore) Commit([]exchange.Change) error                 { return errors.New("disk full") }

func TestStoreCommitFailureRollsBack(t *testing.T) {
	env := jtx.NewTestEnv(t, jtx.WithStore(failingStore{}))
	env.Mint("gallery", "42", "alice")

	env.List("alice", "gallery", "42", 1000).RequireCode(t, "tefSTORE")

	// The book change was undone and nothing was published.
	assert.False(t, env.GetOffer("gallery", "42").IsActive())
	assert.Empty(t, env.Events())
}
