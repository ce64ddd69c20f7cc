package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/openexch/marketd/internal/core/registry"
)

// AssetRegistry is an in-memory registry.AssetRegistry used in standalone
// mode and in tests. Hooks allow tests to inject failures and to simulate a
// registry that calls back into the exchange during Transfer.
type AssetRegistry struct {
	mu     sync.Mutex
	owners map[assetKey]string

	// FailTransfer makes every Transfer report failure without moving
	// ownership.
	FailTransfer bool

	// TransferHook, if set, runs at the start of Transfer, before ownership
	// moves. Used to simulate a counterpart that re-enters the exchange.
	TransferHook func(ctx context.Context, asset, assetID, from, to string)
}

type assetKey struct {
	asset   string
	assetID string
}

// NewAssetRegistry creates an empty in-memory registry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{owners: make(map[assetKey]string)}
}

// Mint records owner as the holder of (asset, assetID). Test setup helper;
// a real registry mints through its own channels.
func (r *AssetRegistry) Mint(asset, assetID, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[assetKey{asset, assetID}] = owner
}

// OwnerOf returns the recorded holder of the asset.
func (r *AssetRegistry) OwnerOf(ctx context.Context, asset, assetID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[assetKey{asset, assetID}]
	if !ok {
		return "", registry.ErrUnknownAsset
	}
	return owner, nil
}

// Transfer moves the asset from one holder to another, enforcing that from
// currently holds it.
func (r *AssetRegistry) Transfer(ctx context.Context, asset, assetID, from, to string) error {
	if r.TransferHook != nil {
		r.TransferHook(ctx, asset, assetID, from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailTransfer {
		return fmt.Errorf("transfer of %s/%s rejected", asset, assetID)
	}

	key := assetKey{asset, assetID}
	owner, ok := r.owners[key]
	if !ok {
		return registry.ErrUnknownAsset
	}
	if owner != from {
		return registry.ErrNotHolder
	}

	r.owners[key] = to
	return nil
}
