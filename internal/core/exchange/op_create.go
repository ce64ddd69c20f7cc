package exchange

import (
	"errors"

	"github.com/openexch/marketd/internal/events"
)

// OfferCreate lists an asset for sale at a fixed price. Re-listing an
// already-listed asset replaces the prior offer outright.
type OfferCreate struct {
	Common

	// Asset is the collection the asset belongs to (required).
	Asset string `json:"Asset"`

	// AssetID identifies the asset within the collection (required).
	AssetID string `json:"AssetID"`

	// Price is the asking price in the smallest denomination (required,
	// must be positive).
	Price uint64 `json:"Price"`
}

// NewOfferCreate creates a new OfferCreate operation.
func NewOfferCreate(account, asset, assetID string, price uint64) *OfferCreate {
	return &OfferCreate{
		Common:  Common{Account: account, OperationType: string(TypeOfferCreate)},
		Asset:   asset,
		AssetID: assetID,
		Price:   price,
	}
}

// OpType returns the operation type.
func (o *OfferCreate) OpType() Type {
	return TypeOfferCreate
}

// GetCommon returns the common operation fields.
func (o *OfferCreate) GetCommon() *Common {
	return &o.Common
}

// Validate checks that the OfferCreate operation is well formed.
func (o *OfferCreate) Validate() error {
	if err := o.Common.Validate(); err != nil {
		return err
	}
	if o.Asset == "" || o.AssetID == "" {
		return errors.New("temBAD_ASSET: Asset and AssetID are required")
	}

	// A zero price is the sentinel for "no offer" and can never be listed.
	if o.Price == 0 {
		return errors.New("temBAD_PRICE: Price must be greater than zero")
	}
	return nil
}

// Apply writes the offer into its slot after verifying current ownership
// against the asset registry. Ownership is queried fresh on every listing,
// never from a cache.
func (o *OfferCreate) Apply(ctx *ApplyContext) Result {
	owner, err := ctx.Registry.OwnerOf(ctx.Ctx, o.Asset, o.AssetID)
	if err != nil {
		// Ownership that cannot be verified counts as not owned.
		return TecNOT_OWNER
	}
	if owner != ctx.Caller {
		return TecNOT_OWNER
	}

	ctx.View.Set(Offer{
		Seller:  ctx.Caller,
		Asset:   o.Asset,
		AssetID: o.AssetID,
		Price:   o.Price,
	})

	ctx.Emit(events.Listed(ctx.Caller, o.Asset, o.AssetID, o.Price))
	return TesSUCCESS
}
