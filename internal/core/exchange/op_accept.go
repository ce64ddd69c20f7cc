package exchange

import (
	"errors"

	"github.com/openexch/marketd/internal/events"
)

// OfferAccept buys a listed asset. The attached payment must equal the offer
// price exactly; no overpayment or underpayment is tolerated.
type OfferAccept struct {
	Common

	// Asset is the collection the asset belongs to (required).
	Asset string `json:"Asset"`

	// AssetID identifies the asset within the collection (required).
	AssetID string `json:"AssetID"`

	// Payment is the attached value in the smallest denomination.
	Payment uint64 `json:"Payment"`
}

// NewOfferAccept creates a new OfferAccept operation.
func NewOfferAccept(account, asset, assetID string, payment uint64) *OfferAccept {
	return &OfferAccept{
		Common:  Common{Account: account, OperationType: string(TypeOfferAccept)},
		Asset:   asset,
		AssetID: assetID,
		Payment: payment,
	}
}

// OpType returns the operation type.
func (o *OfferAccept) OpType() Type {
	return TypeOfferAccept
}

// GetCommon returns the common operation fields.
func (o *OfferAccept) GetCommon() *Common {
	return &o.Common
}

// Validate checks that the OfferAccept operation is well formed. Whether the
// payment matches the price is a state check, not a validation check: it
// depends on the live offer.
func (o *OfferAccept) Validate() error {
	if err := o.Common.Validate(); err != nil {
		return err
	}
	if o.Asset == "" || o.AssetID == "" {
		return errors.New("temBAD_ASSET: Asset and AssetID are required")
	}
	return nil
}

// Apply completes the sale in strict checks-effects-interactions order:
// validate against the live offer, clear the slot, then instruct the
// registry and value channel. The slot is cleared before the external calls
// run so that anything they trigger observes no active listing; the engine
// rolls the clear back if either transfer fails.
func (o *OfferAccept) Apply(ctx *ApplyContext) Result {
	key := Key{Asset: o.Asset, AssetID: o.AssetID}

	offer := ctx.View.Read(key)
	if !offer.IsActive() {
		return TecNO_LISTING
	}
	if o.Payment != offer.Price {
		return TecWRONG_PAYMENT
	}

	ctx.View.Clear(key)

	// Seller ownership is not re-verified here. If the seller no longer
	// holds the asset, the registry's own transfer enforcement surfaces it.
	if err := ctx.Registry.Transfer(ctx.Ctx, o.Asset, o.AssetID, offer.Seller, ctx.Caller); err != nil {
		return TecASSET_TRANSFER
	}

	if err := ctx.Bank.Send(ctx.Ctx, offer.Seller, o.Payment); err != nil {
		// The asset already moved; hand it back so a payment failure leaves
		// no partial effect. A registry that accepts a transfer and then
		// refuses its inverse is broken beyond what a result code can say.
		if rerr := ctx.Registry.Transfer(ctx.Ctx, o.Asset, o.AssetID, ctx.Caller, offer.Seller); rerr != nil {
			return TefINTERNAL
		}
		return TecVALUE_TRANSFER
	}

	ctx.Emit(events.Sold(ctx.Caller, offer.Seller, o.Asset, o.AssetID, offer.Price))
	return TesSUCCESS
}
