// Package txbuf implements the buffered write overlay that sits between the
// Graph View and an engine.KV: pending writes and tombstones with
// read-your-writes semantics, atomic flush on commit, and no-op discard on
// abort.
package txbuf

import (
	"bytes"

	"github.com/dacapoday/jdb/engine"
	"github.com/dacapoday/smol/btree"
)

// Buffer is an in-memory overlay over an engine.KV. The zero value is not
// usable; construct with New.
type Buffer struct {
	kv      engine.KV
	pending btree.BTree
	ranges  rangeSet
}

// New wraps kv with a fresh, empty write buffer.
func New(kv engine.KV) *Buffer {
	return &Buffer{kv: kv}
}

// Read resolves key against pending writes first, then the underlying
// engine, honouring any range tombstone recorded since the last commit.
func (b *Buffer) Read(key []byte) (val []byte, found bool, err error) {
	if v, ok := b.pending.Get(key); ok {
		return v, len(v) > 0, nil
	}
	if b.ranges.covers(key) {
		return nil, false, nil
	}
	return b.kv.Get(key)
}

// Write buffers an upsert. val must be non-empty; callers needing to record
// "no value" use Erase instead — an empty byte slice is indistinguishable
// from a tombstone in this buffer, matching the underlying engine's own
// nil-means-deleted convention.
func (b *Buffer) Write(key, val []byte) {
	b.pending.Set(key, val)
}

// Erase buffers the deletion of a single key.
func (b *Buffer) Erase(key []byte) {
	b.pending.Set(key, nil)
}

// EraseRange buffers the deletion of every key in [lo, hi), present or not
// yet written. Any pending entries inside the range are superseded.
func (b *Buffer) EraseRange(lo, hi []byte) {
	b.ranges.add(lo, hi)

	var inRange [][]byte
	it := b.pending.Iter()
	if it.Seek(lo) {
		for it.Valid() && bytes.Compare(it.Key(), hi) < 0 {
			inRange = append(inRange, append([]byte(nil), it.Key()...))
			if !it.Next() {
				break
			}
		}
	}
	for _, key := range inRange {
		b.pending.Set(key, nil)
	}
}

// Scan returns a cursor merge-iterating pending writes, range tombstones and
// the underlying engine over [lo, hi) in strictly ascending key order, with
// no duplicate keys even when both sides hold the same key. The caller must
// Close the cursor.
func (b *Buffer) Scan(lo, hi []byte) *Cursor {
	return &Cursor{
		buf:       b,
		lo:        lo,
		hi:        hi,
		pendingIt: b.pending.Iter(),
		engineIt:  b.kv.Range(lo, hi),
	}
}

// Commit flushes pending writes and tombstones to the engine in ascending
// key order, then commits the engine transaction. On success the buffer is
// reset to empty. On failure the buffer is left untouched so the caller can
// retry or abort.
func (b *Buffer) Commit() error {
	for _, r := range b.ranges.list {
		toDelete, err := b.collectRangeSurvivors(r)
		if err != nil {
			return err
		}
		for _, key := range toDelete {
			if err := b.kv.Delete(key); err != nil {
				return err
			}
		}
	}

	var flushErr error
	b.pending.Items(func(key, val []byte) bool {
		if len(val) == 0 {
			flushErr = b.kv.Delete(key)
		} else {
			flushErr = b.kv.Put(key, val)
		}
		return flushErr == nil
	})
	if flushErr != nil {
		return flushErr
	}

	if err := b.kv.Commit(); err != nil {
		return err
	}
	b.Reset()
	return nil
}

// collectRangeSurvivors returns the engine keys in r not already accounted
// for by an explicit pending write (which Commit's Items flush handles).
func (b *Buffer) collectRangeSurvivors(r byteRange) ([][]byte, error) {
	it := b.kv.Range(r.lo, r.hi)
	defer it.Close()

	var keys [][]byte
	for it.Next() {
		key := it.Key()
		if v, ok := b.pending.Get(key); ok && len(v) > 0 {
			continue
		}
		keys = append(keys, append([]byte(nil), key...))
	}
	return keys, it.Err()
}

// Abort discards all pending writes and tombstones. Nothing reached the
// engine's data, but its transaction is rolled back so the snapshot it holds
// is released.
func (b *Buffer) Abort() {
	b.Reset()
	b.kv.Rollback()
}

// Reset clears pending state without touching the engine.
func (b *Buffer) Reset() {
	b.pending.Reset()
	b.ranges.reset()
}
