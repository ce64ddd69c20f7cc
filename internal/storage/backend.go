package storage

import "fmt"

// Backend is a minimal key-value store abstraction. The offer store needs
// exactly three things from it: atomic batch writes, a full scan at startup,
// and a clean shutdown.
type Backend interface {
	// Name identifies the backend for logging.
	Name() string

	// ApplyBatch applies all writes in the batch atomically: either every
	// put and delete is durable, or none are.
	ApplyBatch(batch *Batch) error

	// ForEach calls fn for every key/value pair. Iteration stops at the
	// first error, which is returned.
	ForEach(fn func(key, value []byte) error) error

	// Close releases the backend's resources.
	Close() error
}

// Batch collects writes to be applied atomically.
type Batch struct {
	ops []batchOp
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// Put queues a write.
func (b *Batch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: key, value: value})
}

// Delete queues a deletion.
func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: key, delete: true})
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Config selects and locates a backend.
type Config struct {
	// Type is the backend type: "pebble", "leveldb" or "memory".
	Type string

	// Path is the on-disk location for persistent backends.
	Path string
}

// Open creates the backend named by the config.
func Open(cfg Config) (Backend, error) {
	switch cfg.Type {
	case "pebble":
		return OpenPebble(cfg.Path)
	case "leveldb":
		return OpenLevelDB(cfg.Path)
	case "memory", "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Type)
	}
}
