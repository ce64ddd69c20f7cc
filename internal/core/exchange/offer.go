package exchange

// Offer is the persistent record of an active fixed-price sale. A zero-valued
// Offer is the canonical "absent" representation: a slot that was never
// listed and a slot that was cleared are indistinguishable.
type Offer struct {
	// Seller is the account that owned the asset when the offer was listed.
	// The null identity (empty string) only ever appears in the zero sentinel.
	Seller string `json:"seller"`

	// Asset identifies the external collection the asset belongs to.
	Asset string `json:"asset"`

	// AssetID identifies the asset within its collection.
	AssetID string `json:"asset_id"`

	// Price is the exact amount a buyer must pay, in the smallest
	// indivisible denomination of the native currency.
	Price uint64 `json:"price"`
}

// IsActive reports whether the slot holds a live listing. An offer is active
// iff its price is non-zero.
func (o Offer) IsActive() bool {
	return o.Price > 0
}

// Key returns the slot key of the offer.
func (o Offer) Key() Key {
	return Key{Asset: o.Asset, AssetID: o.AssetID}
}

// Key identifies an offer slot. At most one active offer exists per key.
type Key struct {
	Asset   string
	AssetID string
}

func (k Key) String() string {
	return k.Asset + "/" + k.AssetID
}
