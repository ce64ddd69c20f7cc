package storage

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Pebble is the default persistent Backend.
type Pebble struct {
	db   *pebble.DB
	path string
}

// OpenPebble opens (or creates) a PebbleDB at path.
func OpenPebble(path string) (*Pebble, error) {
	if path == "" {
		return nil, fmt.Errorf("pebble backend requires a path")
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble at %s: %w", path, err)
	}
	return &Pebble{db: db, path: path}, nil
}

// Name identifies the backend.
func (p *Pebble) Name() string {
	return fmt.Sprintf("pebble(%s)", p.path)
}

// ApplyBatch applies the batch as one synced pebble batch.
func (p *Pebble) ApplyBatch(batch *Batch) error {
	b := p.db.NewBatch()
	defer b.Close()

	for _, op := range batch.ops {
		var err error
		if op.delete {
			err = b.Delete(op.key, nil)
		} else {
			err = b.Set(op.key, op.value, nil)
		}
		if err != nil {
			return err
		}
	}
	return p.db.Apply(b, pebble.Sync)
}

// ForEach iterates the full keyspace in key order.
func (p *Pebble) ForEach(fn func(key, value []byte) error) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close closes the database.
func (p *Pebble) Close() error {
	return p.db.Close()
}
