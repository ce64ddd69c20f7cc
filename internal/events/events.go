package events

import "time"

// Type identifies the kind of exchange notification.
type Type string

const (
	// TypeListed is emitted when an offer is written to the book.
	TypeListed Type = "listed"

	// TypeSold is emitted when an offer completes: asset moved to the buyer
	// and payment moved to the seller.
	TypeSold Type = "sold"

	// TypeCanceled is emitted when the seller withdraws an offer.
	TypeCanceled Type = "canceled"
)

// Event is a one-way notification emitted by the exchange ledger after an
// operation commits. Events are ordered per operation; consumers must not
// feed them back into ledger state.
type Event struct {
	Type Type `json:"type"`

	// Seq is a monotonically increasing publisher sequence number.
	Seq uint64 `json:"seq"`

	Seller  string `json:"seller"`
	Buyer   string `json:"buyer,omitempty"`
	Asset   string `json:"asset"`
	AssetID string `json:"asset_id"`

	// Price is zero for canceled events (the withdrawn price is not part of
	// the notification surface).
	Price uint64 `json:"price,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Listed builds a Listed event.
func Listed(seller, asset, assetID string, price uint64) Event {
	return Event{
		Type:      TypeListed,
		Seller:    seller,
		Asset:     asset,
		AssetID:   assetID,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
}

// Sold builds a Sold event.
func Sold(buyer, seller, asset, assetID string, price uint64) Event {
	return Event{
		Type:      TypeSold,
		Seller:    seller,
		Buyer:     buyer,
		Asset:     asset,
		AssetID:   assetID,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
}

// Canceled builds a Canceled event.
func Canceled(seller, asset, assetID string) Event {
	return Event{
		Type:      TypeCanceled,
		Seller:    seller,
		Asset:     asset,
		AssetID:   assetID,
		Timestamp: time.Now().UTC(),
	}
}
