package graph

import (
	"fmt"

	"github.com/dacapoday/jdb/path"
	"github.com/dacapoday/jdb/txbuf"
)

// Iterator is a lazy, forward-only walk over a container's direct children,
// in the codec's total key order (insertion order is not recorded by the
// store). Callers must call Close when done, and must not mutate the
// underlying store through a different handle while iterating.
type Iterator struct {
	v   *View
	cur *txbuf.Cursor

	step    Step
	err     error
	done    bool
	checked bool

	// arrIdx/arrLen drive array iteration, which walks the index space
	// directly rather than range-scanning (object iteration scans).
	arr      bool
	arrIdx   uint64
	arrLen   uint64
	arrValid bool
}

// Step is one yielded (key-or-index, value) pair. For an object it carries
// Key; for an array it carries Index. Val is either a decoded scalar or a
// *View for a nested container.
type Step struct {
	Key   string
	Index uint64
	Val   any
}

// Iterate returns a fresh Iterator over v's direct children. For an object
// it range-scans the container's key span and peels one child step at a
// time; for an array it walks 0..Length()-1 by direct index lookup, since
// array children sort by byte order of their decimal index in a raw scan
// but must be yielded in numeric order.
func (v *View) Iterate() *Iterator {
	if v.kind == ArrayKind {
		return &Iterator{v: v, arr: true}
	}
	lo, hi := path.ContainerRange(v.path, path.Object)
	return &Iterator{v: v, cur: v.buf.Scan(lo, hi)}
}

// Next advances to the next child, returning false at the end or on error;
// use Err to tell the two apart.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if !it.checked {
		it.checked = true
		if err := it.v.checkAlive(); err != nil {
			it.err = err
			it.done = true
			return false
		}
	}
	if it.arr {
		return it.nextArray()
	}
	return it.nextObject()
}

func (it *Iterator) nextArray() bool {
	if !it.arrValid {
		n, err := it.v.arrayLength()
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		it.arrLen = n
		it.arrValid = true
	}
	if it.arrIdx >= it.arrLen {
		it.done = true
		return false
	}
	idx := it.arrIdx
	it.arrIdx++
	val, err := it.v.Get(path.Index(idx))
	if err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.step = Step{Index: idx, Val: val}
	return true
}

func (it *Iterator) nextObject() bool {
	for it.cur.Next() {
		key, remainder, ok := path.DecodeChild(it.v.path, it.cur.Key())
		if !ok {
			it.err = fmt.Errorf("%w: undecodable child key", ErrCorruption)
			it.done = true
			return false
		}
		// Only the first record of each (possibly multi-record) child
		// subtree marks the start of a new child; skip descendant records
		// by checking whether this key is exactly the child's own marker
		// (remainder consumed the whole rest of the key bar the kind byte).
		if len(remainder) != 1 {
			continue
		}
		childPath := it.v.path.Child(key)
		val, err := it.v.resolveChild(childPath, path.RecordKind(remainder[0]))
		if err != nil {
			it.err = err
			it.done = true
			return false
		}
		it.step = Step{Key: key.Key, Val: val}
		return true
	}
	it.done = true
	if err := it.cur.Err(); err != nil {
		it.err = err
	}
	return false
}

// Current returns the (key/index, value) pair produced by the most recent
// successful Next.
func (it *Iterator) Current() Step { return it.step }

// ObjectEntry is a convenience wrapper over Current for object iteration.
func (it *Iterator) ObjectEntry() (key string, val any, err error) {
	s := it.step
	return s.Key, s.Val, nil
}

// ArrayEntry is a convenience wrapper over Current for array iteration.
func (it *Iterator) ArrayEntry() (index uint64, val any, err error) {
	s := it.step
	return s.Index, s.Val, nil
}

// Err reports the first error encountered, if any.
func (it *Iterator) Err() error { return it.err }

// Close releases the underlying range scan, if any (array iteration holds
// no scan to release).
func (it *Iterator) Close() {
	if it.cur != nil {
		it.cur.Close()
	}
}

// resolveChild decodes the value stored at childPath given its observed
// record kind, for use by object iteration which already knows the kind
// from the scanned key's suffix rather than having to re-probe it.
func (v *View) resolveChild(childPath path.Path, kind path.RecordKind) (any, error) {
	switch kind {
	case path.Scalar:
		raw, found, err := v.buf.Read(path.Encode(childPath, path.Scalar))
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: child vanished mid-scan", ErrCorruption)
		}
		return decodeScalar(raw)
	case path.Object:
		return &View{buf: v.buf, path: childPath, kind: ObjectKind}, nil
	case path.Array:
		return &View{buf: v.buf, path: childPath, kind: ArrayKind}, nil
	default:
		return nil, fmt.Errorf("%w: unknown record kind", ErrCorruption)
	}
}
