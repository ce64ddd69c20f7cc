// Package testing provides a test environment for exercising the exchange
// ledger end to end: in-memory collaborators, an engine with a publisher, and
// helpers for submitting operations and asserting results.
package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/openexch/marketd/internal/core/exchange"
	"github.com/openexch/marketd/internal/core/registry/memory"
	"github.com/openexch/marketd/internal/events"
)

// TestEnv manages a test exchange environment. It wires the engine to
// in-memory collaborators whose hooks allow failure injection and reentrancy
// simulation.
type TestEnv struct {
	t *testing.T

	// Registry is the in-memory asset registry.
	Registry *memory.AssetRegistry

	// Bank is the in-memory value channel.
	Bank *memory.Bank

	// Publisher receives the engine's committed events.
	Publisher *events.Publisher

	// Engine is the exchange ledger under test.
	Engine *exchange.Engine

	mu       sync.Mutex
	eventCh  <-chan events.Event
	captured []events.Event
}

// EnvOption configures a TestEnv before the engine is built.
type EnvOption func(*envConfig)

type envConfig struct {
	store exchange.OfferStore
}

// WithStore backs the engine with an offer store.
func WithStore(store exchange.OfferStore) EnvOption {
	return func(c *envConfig) { c.store = store }
}

// NewTestEnv creates a test environment with empty collaborators.
func NewTestEnv(t *testing.T, opts ...EnvOption) *TestEnv {
	t.Helper()

	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	env := &TestEnv{
		t:         t,
		Registry:  memory.NewAssetRegistry(),
		Bank:      memory.NewBank(),
		Publisher: events.NewPublisher(),
	}

	engineOpts := []exchange.EngineOption{exchange.WithPublisher(env.Publisher)}
	if cfg.store != nil {
		engineOpts = append(engineOpts, exchange.WithStore(cfg.store))
	}

	engine, err := exchange.NewEngine(env.Registry, env.Bank, engineOpts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	env.Engine = engine

	// Capture every published event for ordering assertions. Publish fills
	// the subscription buffer before Submit returns, so draining it at
	// assertion time is deterministic.
	ch, cancel := env.Publisher.Subscribe()
	env.eventCh = ch
	t.Cleanup(cancel)

	return env
}

// Mint records owner as the holder of (asset, assetID) in the registry.
func (env *TestEnv) Mint(asset, assetID, owner string) {
	env.Registry.Mint(asset, assetID, owner)
}

// OwnerOf returns the current registry holder of the asset.
func (env *TestEnv) OwnerOf(asset, assetID string) string {
	owner, err := env.Registry.OwnerOf(context.Background(), asset, assetID)
	if err != nil {
		return ""
	}
	return owner
}

// Submit applies one operation and returns its result.
func (env *TestEnv) Submit(op exchange.Operation) TxResult {
	env.t.Helper()
	res := env.Engine.Submit(context.Background(), op)
	return TxResult{
		Code:    res.Result.String(),
		Success: res.Applied,
		Message: res.Message,
	}
}

// List submits an OfferCreate.
func (env *TestEnv) List(account, asset, assetID string, price uint64) TxResult {
	env.t.Helper()
	return env.Submit(exchange.NewOfferCreate(account, asset, assetID, price))
}

// Buy submits an OfferAccept.
func (env *TestEnv) Buy(account, asset, assetID string, payment uint64) TxResult {
	env.t.Helper()
	return env.Submit(exchange.NewOfferAccept(account, asset, assetID, payment))
}

// Cancel submits an OfferCancel.
func (env *TestEnv) Cancel(account, asset, assetID string) TxResult {
	env.t.Helper()
	return env.Submit(exchange.NewOfferCancel(account, asset, assetID))
}

// GetOffer reads an offer slot directly, the way an external caller would.
func (env *TestEnv) GetOffer(asset, assetID string) exchange.Offer {
	return env.Engine.GetOffer(asset, assetID)
}

// Events returns every event published so far, in publish order.
func (env *TestEnv) Events() []events.Event {
	env.mu.Lock()
	defer env.mu.Unlock()

	for {
		select {
		case ev, ok := <-env.eventCh:
			if !ok {
				goto done
			}
			env.captured = append(env.captured, ev)
		default:
			goto done
		}
	}
done:
	out := make([]events.Event, len(env.captured))
	copy(out, env.captured)
	return out
}

// EventTypes returns just the captured event types, in publish order.
func (env *TestEnv) EventTypes() []events.Type {
	evs := env.Events()
	types := make([]events.Type, len(evs))
	for i, ev := range evs {
		types[i] = ev.Type
	}
	return types
}
