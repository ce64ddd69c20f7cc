package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexch/marketd/internal/core/registry/memory"
)

func newBareEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(memory.NewAssetRegistry(), memory.NewBank())
	require.NoError(t, err)
	return e
}

func TestStateTableWritesThrough(t *testing.T) {
	e := newBareEngine(t)
	view := newStateTable(e)

	offer := Offer{Seller: "alice", Asset: "gallery", AssetID: "42", Price: 1000}
	view.Set(offer)

	// The live book sees the write immediately, before any commit.
	assert.Equal(t, offer, e.GetOffer("gallery", "42"))

	view.Clear(offer.Key())
	assert.False(t, e.GetOffer("gallery", "42").IsActive())
}

func TestStateTableRollback(t *testing.T) {
	e := newBareEngine(t)
	existing := Offer{Seller: "alice", Asset: "gallery", AssetID: "1", Price: 500}
	e.writeOffer(existing.Key(), existing)

	view := newStateTable(e)
	view.Set(Offer{Seller: "alice", Asset: "gallery", AssetID: "1", Price: 900})
	view.Set(Offer{Seller: "bob", Asset: "gallery", AssetID: "2", Price: 700})
	view.Clear(Key{Asset: "gallery", AssetID: "1"})

	view.Rollback()

	// The pre-existing offer is restored and the new slot is gone.
	assert.Equal(t, existing, e.GetOffer("gallery", "1"))
	assert.False(t, e.GetOffer("gallery", "2").IsActive())
}

func TestStateTableChanges(t *testing.T) {
	e := newBareEngine(t)
	existing := Offer{Seller: "alice", Asset: "gallery", AssetID: "1", Price: 500}
	e.writeOffer(existing.Key(), existing)

	view := newStateTable(e)

	// Touch-and-restore nets out to nothing.
	view.Clear(existing.Key())
	view.Set(existing)

	updated := Offer{Seller: "bob", Asset: "gallery", AssetID: "2", Price: 700}
	view.Set(updated)

	changes := view.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, updated, changes[0].Offer)
	assert.False(t, changes[0].Delete)
}

func TestStateTableChangeRecordsDelete(t *testing.T) {
	e := newBareEngine(t)
	existing := Offer{Seller: "alice", Asset: "gallery", AssetID: "1", Price: 500}
	e.writeOffer(existing.Key(), existing)

	view := newStateTable(e)
	view.Clear(existing.Key())

	changes := view.Changes()
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Delete)
	assert.Equal(t, existing.Key(), changes[0].Key)
}

func TestReentrancyGuard(t *testing.T) {
	var g reentrancyGuard

	release, ok := g.acquire()
	require.True(t, ok)

	_, ok = g.acquire()
	assert.False(t, ok, "second acquire while held must fail")

	release()

	release2, ok := g.acquire()
	assert.True(t, ok, "guard must be reusable after release")
	release2()
}
