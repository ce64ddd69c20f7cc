package exchange

// stateTable gives an operation read/write access to the offer book while
// tracking every modification so the whole operation can be undone.
//
// Writes go through to the live book immediately. That ordering matters for
// the buy path: the offer slot is cleared before the external transfer calls
// run, so anything those calls trigger observes "no active listing" rather
// than a stale offer. If a later step fails, rollback restores the originals
// and the operation leaves no trace.
type stateTable struct {
	engine *Engine
	undo   []undoEntry
}

type undoEntry struct {
	key     Key
	offer   Offer
	existed bool
}

// Change describes one committed slot mutation, in apply order. The offer
// store persists a successful operation as one atomic batch of these.
type Change struct {
	Key    Key
	Offer  Offer
	Delete bool
}

func newStateTable(e *Engine) *stateTable {
	return &stateTable{engine: e}
}

// Read returns the offer at the key. A missing slot reads as the zero
// sentinel, same as a cleared one.
func (t *stateTable) Read(k Key) Offer {
	return t.engine.readOffer(k)
}

// Set writes an offer into its slot, unconditionally replacing any prior
// entry there.
func (t *stateTable) Set(o Offer) {
	t.record(o.Key())
	t.engine.writeOffer(o.Key(), o)
}

// Clear resets the slot to the zero sentinel.
func (t *stateTable) Clear(k Key) {
	t.record(k)
	t.engine.deleteOffer(k)
}

// record captures the original slot state the first time it is touched.
func (t *stateTable) record(k Key) {
	for _, u := range t.undo {
		if u.key == k {
			return
		}
	}
	orig, existed := t.engine.peekOffer(k)
	t.undo = append(t.undo, undoEntry{key: k, offer: orig, existed: existed})
}

// Rollback restores every touched slot to its original state, in reverse
// order of first touch.
func (t *stateTable) Rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		u := t.undo[i]
		if u.existed {
			t.engine.writeOffer(u.key, u.offer)
		} else {
			t.engine.deleteOffer(u.key)
		}
	}
	t.undo = nil
}

// Changes returns the net slot mutations for persistence. A touched slot
// whose final state equals its original contributes nothing.
func (t *stateTable) Changes() []Change {
	changes := make([]Change, 0, len(t.undo))
	for _, u := range t.undo {
		cur, exists := t.engine.peekOffer(u.key)
		if exists == u.existed && cur == u.offer {
			continue
		}
		if exists {
			changes = append(changes, Change{Key: u.key, Offer: cur})
		} else {
			changes = append(changes, Change{Key: u.key, Delete: true})
		}
	}
	return changes
}
