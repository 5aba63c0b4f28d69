package engine

import (
	"bytes"

	"github.com/dacapoday/smol/kv"
)

// FromDB adapts a freshly begun transaction on a smol-backed key-value store
// to the KV contract. The returned KV is good for exactly one logical
// transaction: call Commit or Rollback once, then discard it.
func FromDB[F kv.File](db *kv.KV[F]) KV {
	return &dbKV[F]{tx: db.Begin()}
}

type dbKV[F kv.File] struct {
	tx *kv.Tx[kv.Iter[F]]
}

// Get reports found on a nil/non-nil distinction rather than length: the
// transaction's snapshot returns nil for an absent key but a non-nil empty
// slice for a key stored with an empty payload, so records whose defined
// payload is empty (object container markers) still read as present.
// Deleted keys are physically removed by the B+ tree writer and never
// surface as empty values.
func (e *dbKV[F]) Get(key []byte) (val []byte, found bool, err error) {
	val, err = e.tx.Get(key)
	if err != nil {
		return nil, false, err
	}
	return val, val != nil, nil
}

func (e *dbKV[F]) Put(key, val []byte) error {
	e.tx.Set(key, val)
	return nil
}

func (e *dbKV[F]) Delete(key []byte) error {
	e.tx.Set(key, nil)
	return nil
}

func (e *dbKV[F]) Range(lo, hi []byte) Iterator {
	return &rangeIter[F]{tx: e.tx, lo: lo, hi: hi}
}

func (e *dbKV[F]) Commit() error {
	return e.tx.Commit()
}

func (e *dbKV[F]) Rollback() error {
	e.tx.Rollback()
	return nil
}

// rangeIter bounds a kv.Tx snapshot+pending iterator to a half-open key
// range. The underlying iterator is created lazily on the first Next call so
// that Range itself never touches the store.
type rangeIter[F kv.File] struct {
	tx      *kv.Tx[kv.Iter[F]]
	it      kv.TxIter[kv.Iter[F]]
	lo, hi  []byte
	started bool
	loaded  bool
	valid   bool
}

func (r *rangeIter[F]) ensure() {
	if !r.loaded {
		r.it = r.tx.Iter()
		r.loaded = true
	}
}

func (r *rangeIter[F]) Next() bool {
	r.ensure()
	if !r.started {
		r.started = true
		r.valid = r.it.Seek(r.lo)
	} else {
		r.valid = r.it.Next()
	}
	if r.valid && r.hi != nil && bytes.Compare(r.it.Key(), r.hi) >= 0 {
		r.valid = false
	}
	return r.valid
}

func (r *rangeIter[F]) Key() []byte { return r.it.Key() }
func (r *rangeIter[F]) Val() []byte { return r.it.Val() }
func (r *rangeIter[F]) Err() error  { return r.it.Error() }
func (r *rangeIter[F]) Close() {
	if r.loaded {
		r.it.Close()
	}
}
