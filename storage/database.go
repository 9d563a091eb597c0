// Package storage implements journal persistence: a per-namespace
// append-only log segment plus a snapshot file, with snapshot-on-
// threshold compaction.
//
// The Reader/Writer/Batch split generalizes a generic KV database
// contract to a file-backed store whose keys are journal namespaces and
// whose values are length-prefixed fact envelopes.
package storage

// Reader reads raw segment/snapshot bytes keyed by namespace.
type Reader interface {
	Has(key string) (bool, error)
	Get(key string) ([]byte, error)
}

// Writer appends or replaces raw bytes keyed by namespace.
type Writer interface {
	Put(key string, value []byte) error
	Delete(key string) error
}

// Batch accumulates writes for atomic commit.
type Batch interface {
	Put(key string, value []byte) error
	Delete(key string) error
	Size() int
	Write() error
	Reset()
}

// Database is the full read/write/batch surface a backing store must
// provide.
type Database interface {
	Reader
	Writer
	NewBatch() Batch
	Close() error
}
