package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB is an alternate persistent Backend, selected by configuration for
// deployments that prefer goleveldb's footprint over pebble's.
type LevelDB struct {
	db   *leveldb.DB
	path string
}

// OpenLevelDB opens (or creates) a LevelDB at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	if path == "" {
		return nil, fmt.Errorf("leveldb backend requires a path")
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: db, path: path}, nil
}

// Name identifies the backend.
func (l *LevelDB) Name() string {
	return fmt.Sprintf("leveldb(%s)", l.path)
}

// ApplyBatch applies the batch as one synced leveldb write.
func (l *LevelDB) ApplyBatch(batch *Batch) error {
	b := new(leveldb.Batch)
	for _, op := range batch.ops {
		if op.delete {
			b.Delete(op.key)
		} else {
			b.Put(op.key, op.value)
		}
	}
	return l.db.Write(b, &opt.WriteOptions{Sync: true})
}

// ForEach iterates the full keyspace in key order.
func (l *LevelDB) ForEach(fn func(key, value []byte) error) error {
	iter := l.db.NewIterator(nil, nil)
	defer iter.Release()

	for iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close closes the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}
