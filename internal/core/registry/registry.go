package registry

import (
	"context"
	"errors"
)

// Common errors surfaced by registry implementations.
var (
	ErrUnknownAsset = errors.New("unknown asset")
	ErrNotHolder    = errors.New("account does not hold the asset")
)

// AssetRegistry is the external ownership oracle for unique assets. The
// exchange ledger treats it as ground truth: ownership is queried fresh at
// listing time and never cached, and the registry's own Transfer call is the
// only authority on whether a transfer can happen.
//
// Implementations may invoke back into the exchange ledger from Transfer
// (a remote registry can trigger arbitrary callbacks); the ledger's
// reentrancy guard is the defense against that.
type AssetRegistry interface {
	// OwnerOf returns the current owner of the asset identified by
	// (asset, assetID). Returns ErrUnknownAsset if the registry has no
	// record of the asset.
	OwnerOf(ctx context.Context, asset, assetID string) (string, error)

	// Transfer moves the asset from one account to another. The registry
	// enforces that from currently holds the asset; any failure leaves
	// ownership unchanged.
	Transfer(ctx context.Context, asset, assetID, from, to string) error
}

// ValueChannel moves native-currency value between accounts. Amounts are in
// the smallest indivisible denomination. Send either fully succeeds or fully
// fails; there is no partial delivery.
type ValueChannel interface {
	Send(ctx context.Context, to string, amount uint64) error
}
