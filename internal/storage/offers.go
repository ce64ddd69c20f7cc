package storage

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/openexch/marketd/internal/core/exchange"
)

// offerKeyPrefix namespaces offer records so the backend keyspace can grow
// other record kinds later without a migration.
const offerKeyPrefix = 'o'

// offerRecordVersion is the codec version written into every value. Readers
// reject versions they do not know.
const offerRecordVersion = 1

// OfferStore persists the offer book in a key-value Backend. One record per
// active offer; clearing an offer deletes its record. It implements
// exchange.OfferStore.
type OfferStore struct {
	backend Backend
}

// NewOfferStore creates an offer store over the backend.
func NewOfferStore(backend Backend) *OfferStore {
	return &OfferStore{backend: backend}
}

// Load scans the backend and rebuilds the offer book.
func (s *OfferStore) Load() (map[exchange.Key]exchange.Offer, error) {
	offers := make(map[exchange.Key]exchange.Offer)

	err := s.backend.ForEach(func(key, value []byte) error {
		if len(key) == 0 || key[0] != offerKeyPrefix {
			return nil
		}
		offer, err := decodeOffer(value)
		if err != nil {
			return fmt.Errorf("decoding offer record %x: %w", key, err)
		}
		offers[offer.Key()] = offer
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("storage: loaded %d offers from %s", len(offers), s.backend.Name())
	return offers, nil
}

// Commit applies the net changes of one operation as a single atomic batch.
func (s *OfferStore) Commit(changes []exchange.Change) error {
	batch := new(Batch)
	for _, c := range changes {
		if c.Delete {
			batch.Delete(encodeOfferKey(c.Key))
			continue
		}
		batch.Put(encodeOfferKey(c.Key), encodeOffer(c.Offer))
	}
	return s.backend.ApplyBatch(batch)
}

// Close closes the underlying backend.
func (s *OfferStore) Close() error {
	return s.backend.Close()
}

// encodeOfferKey builds the backend key for an offer slot: the prefix byte
// followed by the length-prefixed asset so that (a, bc) and (ab, c) cannot
// collide.
func encodeOfferKey(k exchange.Key) []byte {
	buf := make([]byte, 0, 1+binary.MaxVarintLen64+len(k.Asset)+len(k.AssetID))
	buf = append(buf, offerKeyPrefix)
	buf = appendString(buf, k.Asset)
	buf = append(buf, k.AssetID...)
	return buf
}

// encodeOffer serializes an offer: version byte, three length-prefixed
// strings, then the price as a uvarint.
func encodeOffer(o exchange.Offer) []byte {
	buf := make([]byte, 0, 1+len(o.Seller)+len(o.Asset)+len(o.AssetID)+4*binary.MaxVarintLen64)
	buf = append(buf, offerRecordVersion)
	buf = appendString(buf, o.Seller)
	buf = appendString(buf, o.Asset)
	buf = appendString(buf, o.AssetID)
	buf = binary.AppendUvarint(buf, o.Price)
	return buf
}

func decodeOffer(data []byte) (exchange.Offer, error) {
	if len(data) == 0 {
		return exchange.Offer{}, fmt.Errorf("empty record")
	}
	if data[0] != offerRecordVersion {
		return exchange.Offer{}, fmt.Errorf("unknown record version %d", data[0])
	}
	data = data[1:]

	var o exchange.Offer
	var err error
	if o.Seller, data, err = readString(data); err != nil {
		return exchange.Offer{}, fmt.Errorf("seller: %w", err)
	}
	if o.Asset, data, err = readString(data); err != nil {
		return exchange.Offer{}, fmt.Errorf("asset: %w", err)
	}
	if o.AssetID, data, err = readString(data); err != nil {
		return exchange.Offer{}, fmt.Errorf("asset id: %w", err)
	}

	price, n := binary.Uvarint(data)
	if n <= 0 {
		return exchange.Offer{}, fmt.Errorf("truncated price")
	}
	o.Price = price
	return o, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func readString(data []byte) (string, []byte, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return "", nil, fmt.Errorf("truncated length")
	}
	data = data[n:]
	if uint64(len(data)) < length {
		return "", nil, fmt.Errorf("truncated string")
	}
	return string(data[:length]), data[length:], nil
}
