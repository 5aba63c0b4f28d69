// Package engine defines the contract the core (path, txbuf, graph) consumes
// from an ordered key-value store, and adapts github.com/dacapoday/smol's
// kv package, depended on as an external module, to it.
package engine

// KV is an ordered key-value store with prefix/range scans and atomic
// commit/rollback of everything written since it was obtained.
type KV interface {
	// Get returns the value for key, or found=false if it has no value.
	Get(key []byte) (val []byte, found bool, err error)

	// Put upserts a key-value pair.
	Put(key, val []byte) error

	// Delete removes a key. A no-op if the key is absent.
	Delete(key []byte) error

	// Range returns an iterator over [lo, hi) in ascending key order. The
	// iterator reflects writes already issued through this KV, not writes
	// issued concurrently through a different KV over the same store.
	Range(lo, hi []byte) Iterator

	// Commit durably and atomically applies every Put/Delete issued through
	// this KV since it was obtained.
	Commit() error

	// Rollback discards every Put/Delete issued through this KV since it was
	// obtained.
	Rollback() error
}

// Iterator is a forward cursor over a key range. Callers must call Close when
// done with it.
type Iterator interface {
	// Next advances to the next entry, returning false at the end of the
	// range or on error; use Err to tell the two apart.
	Next() bool
	Key() []byte
	Val() []byte
	Err() error
	Close()
}
