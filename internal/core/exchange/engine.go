package exchange

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/openexch/marketd/internal/core/registry"
	"github.com/openexch/marketd/internal/events"
)

// OfferStore persists the offer book. Load rebuilds the book at startup;
// Commit durably applies the net changes of one operation as a single atomic
// batch. The engine is the store's only writer.
type OfferStore interface {
	Load() (map[Key]Offer, error)
	Commit(changes []Change) error
}

// ApplyResult is the outcome of submitting an operation.
type ApplyResult struct {
	// Result is the operation result code.
	Result Result

	// Applied indicates whether the operation committed.
	Applied bool

	// Message is a human-readable result message.
	Message string
}

// Engine is the exchange ledger. It exclusively owns the offer book; all
// reads and writes go through Submit and GetOffer. The injected asset
// registry and value channel are the only external capabilities it touches.
//
// Submit is not safe for concurrent use: callers serialize operations
// through Service. The reentrancy guard is not a substitute for that
// serialization; it exists to reject nested invocations triggered by
// collaborator callbacks.
type Engine struct {
	registry  registry.AssetRegistry
	bank      registry.ValueChannel
	store     OfferStore
	publisher *events.Publisher

	guard reentrancyGuard

	// stateMu protects the offer map itself, so GetOffer can run from any
	// goroutine while an operation is in flight. It is taken per map access,
	// never across a collaborator call.
	stateMu sync.RWMutex
	offers  map[Key]Offer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStore attaches a persistent offer store. The book is rebuilt from the
// store when the engine is created.
func WithStore(store OfferStore) EngineOption {
	return func(e *Engine) { e.store = store }
}

// WithPublisher attaches an event publisher for Listed/Sold/Canceled
// notifications.
func WithPublisher(p *events.Publisher) EngineOption {
	return func(e *Engine) { e.publisher = p }
}

// NewEngine creates an exchange engine backed by the given collaborators.
func NewEngine(reg registry.AssetRegistry, bank registry.ValueChannel, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		registry: reg,
		bank:     bank,
		offers:   make(map[Key]Offer),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store != nil {
		offers, err := e.store.Load()
		if err != nil {
			return nil, fmt.Errorf("loading offer book: %w", err)
		}
		if offers != nil {
			e.offers = offers
		}
		if len(offers) > 0 {
			log.Printf("exchange: loaded %d active offers from store", len(offers))
		}
	}
	return e, nil
}

// Submit validates and applies one operation as a single atomic unit of
// work. Either every effect commits (book mutation, collaborator transfers,
// persistence, notifications) or none survive.
func (e *Engine) Submit(ctx context.Context, op Operation) ApplyResult {
	release, ok := e.guard.acquire()
	if !ok {
		return ApplyResult{Result: TecREENTRANT, Message: TecREENTRANT.Message()}
	}
	defer release()

	if err := op.Validate(); err != nil {
		r := resultFromValidation(err)
		return ApplyResult{Result: r, Message: err.Error()}
	}

	view := newStateTable(e)
	actx := &ApplyContext{
		Ctx:      ctx,
		View:     view,
		Caller:   op.GetCommon().Account,
		Registry: e.registry,
		Bank:     e.bank,
	}

	res := op.Apply(actx)
	if !res.IsSuccess() {
		view.Rollback()
		return ApplyResult{Result: res, Message: res.Message()}
	}

	changes := view.Changes()
	if e.store != nil && len(changes) > 0 {
		if err := e.store.Commit(changes); err != nil {
			view.Rollback()
			log.Printf("exchange: store commit failed for %s: %v", op.OpType(), err)
			return ApplyResult{Result: TefSTORE, Message: TefSTORE.Message()}
		}
	}

	if e.publisher != nil {
		for _, ev := range actx.pending {
			e.publisher.Publish(ev)
		}
	}

	return ApplyResult{Result: TesSUCCESS, Applied: true, Message: TesSUCCESS.Message()}
}

// GetOffer returns the offer at (asset, assetID). A key with no active offer
// returns the zero sentinel, exactly as a cleared slot does. GetOffer is not
// guarded: a collaborator callback may legitimately read the book mid-
// operation and must observe the already-applied effects.
func (e *Engine) GetOffer(asset, assetID string) Offer {
	return e.readOffer(Key{Asset: asset, AssetID: assetID})
}

// ActiveOffers returns the number of active offers in the book.
func (e *Engine) ActiveOffers() int {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return len(e.offers)
}

// Offers returns a snapshot of every active offer. Order is unspecified.
func (e *Engine) Offers() []Offer {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	out := make([]Offer, 0, len(e.offers))
	for _, o := range e.offers {
		out = append(out, o)
	}
	return out
}

func (e *Engine) readOffer(k Key) Offer {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.offers[k]
}

func (e *Engine) peekOffer(k Key) (Offer, bool) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	o, ok := e.offers[k]
	return o, ok
}

func (e *Engine) writeOffer(k Key, o Offer) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.offers[k] = o
}

func (e *Engine) deleteOffer(k Key) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	delete(e.offers, k)
}
