package exchange

import (
	"errors"

	"github.com/openexch/marketd/internal/events"
)

// OfferCancel withdraws an active offer. Only the recorded seller may cancel.
type OfferCancel struct {
	Common

	// Asset is the collection the asset belongs to (required).
	Asset string `json:"Asset"`

	// AssetID identifies the asset within the collection (required).
	AssetID string `json:"AssetID"`
}

// NewOfferCancel creates a new OfferCancel operation.
func NewOfferCancel(account, asset, assetID string) *OfferCancel {
	return &OfferCancel{
		Common:  Common{Account: account, OperationType: string(TypeOfferCancel)},
		Asset:   asset,
		AssetID: assetID,
	}
}

// OpType returns the operation type.
func (o *OfferCancel) OpType() Type {
	return TypeOfferCancel
}

// GetCommon returns the common operation fields.
func (o *OfferCancel) GetCommon() *Common {
	return &o.Common
}

// Validate checks that the OfferCancel operation is well formed.
func (o *OfferCancel) Validate() error {
	if err := o.Common.Validate(); err != nil {
		return err
	}
	if o.Asset == "" || o.AssetID == "" {
		return errors.New("temBAD_ASSET: Asset and AssetID are required")
	}
	return nil
}

// Apply clears the offer slot. The seller check doubles as the existence
// check: the zero sentinel's seller is the null identity, which can never
// equal a validated caller.
func (o *OfferCancel) Apply(ctx *ApplyContext) Result {
	key := Key{Asset: o.Asset, AssetID: o.AssetID}

	offer := ctx.View.Read(key)
	if offer.Seller != ctx.Caller {
		return TecNOT_LISTING_OWNER
	}

	ctx.View.Clear(key)

	ctx.Emit(events.Canceled(offer.Seller, o.Asset, o.AssetID))
	return TesSUCCESS
}
