// Package graph implements the live object/array handles that translate
// member access, assignment, deletion, and iteration into Path Codec keys
// and Buffered Store operations, enforcing the JSON value algebra on every
// access.
package graph

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dacapoday/jdb/path"
	"github.com/dacapoday/jdb/txbuf"
)

// Kind distinguishes the two container shapes a View can hold.
type Kind uint8

const (
	ObjectKind Kind = iota
	ArrayKind
)

func (k Kind) recordKind() path.RecordKind {
	if k == ArrayKind {
		return path.Array
	}
	return path.Object
}

// objectMarker is the payload written for an object container marker. The
// record's defined payload is empty, but the write path through the pending
// btree collapses a nil value and a zero-length value into the same
// "tombstone" state (see txbuf.Buffer.Write), so a literal empty payload
// would make the marker indistinguishable from a deletion the moment it
// reaches the engine. The marker carries one placeholder byte instead; its
// content is never interpreted, and the read path accepts a genuinely empty
// payload as present too (see engine.dbKV.Get). This is a deliberate
// write-side deviation from the defined record format; DESIGN.md covers the
// compatibility consequences.
var objectMarker = []byte{0}

// View is a live handle (buf, path, kind) to a container. It owns no data:
// every operation resolves fresh against buf, so a View remains valid across
// sibling mutations but reports ErrStaleView if its own path is torn down.
type View struct {
	buf  *txbuf.Buffer
	path path.Path
	kind Kind
}

// Root returns a live view of the top-level container. A store that already
// has a root marker (object or array) returns a view of whichever kind is
// actually there. A store with nothing in it yet returns an object-kind view
// whose marker is only written on its first mutation; until then, reads
// through it fail with ErrMissingKey ("missing root").
func Root(buf *txbuf.Buffer) (*View, error) {
	for _, kind := range []Kind{ObjectKind, ArrayKind} {
		if _, found, err := buf.Read(path.Encode(nil, kind.recordKind())); err != nil {
			return nil, err
		} else if found {
			return &View{buf: buf, path: nil, kind: kind}, nil
		}
	}
	return &View{buf: buf, path: nil, kind: ObjectKind}, nil
}

// Path returns the steps from the root to this view.
func (v *View) Path() path.Path { return v.path }

// Kind returns whether this view is an object or an array.
func (v *View) Kind() Kind { return v.kind }

// checkAlive confirms this view's own marker record is still present and
// still of the view's kind, per the live-view contract: a view whose
// underlying path was removed by another operation is stale.
func (v *View) checkAlive() error {
	_, found, err := v.buf.Read(path.Encode(v.path, v.kind.recordKind()))
	if err != nil {
		return err
	}
	if !found {
		return v.missingSelf()
	}
	return nil
}

// missingSelf reports the right error kind for a view whose own marker is
// gone: the root was simply never written (missing key), whereas any other
// path must have been torn down by a sibling operation (stale view).
func (v *View) missingSelf() error {
	if len(v.path) == 0 {
		return fmt.Errorf("%w: missing root", ErrMissingKey)
	}
	return fmt.Errorf("%w: path no longer present", ErrStaleView)
}

// checkStep rejects a step whose kind cannot address this container:
// indexing an object with an integer, or an array with a key.
func (v *View) checkStep(step path.Step) error {
	if v.kind == ArrayKind && step.Kind != path.IndexStepKind {
		return fmt.Errorf("%w: array requires an index step", ErrTypeMismatch)
	}
	if v.kind == ObjectKind && step.Kind != path.KeyStepKind {
		return fmt.Errorf("%w: object requires a key step", ErrTypeMismatch)
	}
	return nil
}

// mutable gates every mutating operation: the root's marker is created
// lazily on its first write, while a non-root view must still be backed by
// the marker the assignment that produced it wrote.
func (v *View) mutable() error {
	if len(v.path) > 0 {
		return v.checkAlive()
	}
	_, found, err := v.buf.Read(path.Encode(v.path, v.kind.recordKind()))
	if err != nil {
		return err
	}
	if !found {
		if v.kind == ArrayKind {
			v.setArrayLength(0)
		} else {
			v.buf.Write(path.Encode(v.path, path.Object), objectMarker)
		}
	}
	return nil
}

// arrayLength reads the current length off this view's own array marker.
// Callers must already know v.kind == ArrayKind.
func (v *View) arrayLength() (uint64, error) {
	raw, found, err := v.buf.Read(path.Encode(v.path, path.Array))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, v.missingSelf()
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad array length marker: %v", ErrCorruption, err)
	}
	return n, nil
}

func (v *View) setArrayLength(n uint64) {
	v.buf.Write(path.Encode(v.path, path.Array), []byte(strconv.FormatUint(n, 10)))
}

// Length reports the number of direct children: for an object, the count of
// distinct child steps found by scanning the container's key range; for an
// array, the length recorded on its own marker.
func (v *View) Length() (int, error) {
	if v.kind == ArrayKind {
		n, err := v.arrayLength()
		return int(n), err
	}
	if err := v.checkAlive(); err != nil {
		return 0, err
	}
	count := 0
	lo, hi := path.ContainerRange(v.path, path.Object)
	cur := v.buf.Scan(lo, hi)
	defer cur.Close()
	var lastPrefix []byte
	for cur.Next() {
		_, remainder, ok := path.DecodeChild(v.path, cur.Key())
		if !ok {
			return 0, fmt.Errorf("%w: undecodable child key", ErrCorruption)
		}
		stepKeyLen := len(cur.Key()) - len(remainder)
		childPrefix := cur.Key()[:stepKeyLen]
		if lastPrefix == nil || !bytes.Equal(childPrefix, lastPrefix) {
			count++
			lastPrefix = append(lastPrefix[:0], childPrefix...)
		}
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// childKind reports which single record exists at a direct child step, or
// ok=false if none does.
func (v *View) childKind(step path.Step) (kind path.RecordKind, ok bool, err error) {
	child := v.path.Child(step)
	if _, found, err := v.buf.Read(path.Encode(child, path.Scalar)); err != nil {
		return 0, false, err
	} else if found {
		return path.Scalar, true, nil
	}
	if _, found, err := v.buf.Read(path.Encode(child, path.Object)); err != nil {
		return 0, false, err
	} else if found {
		return path.Object, true, nil
	}
	if _, found, err := v.buf.Read(path.Encode(child, path.Array)); err != nil {
		return 0, false, err
	} else if found {
		return path.Array, true, nil
	}
	return 0, false, nil
}

// Contains reports whether a direct child exists at step.
func (v *View) Contains(step path.Step) (bool, error) {
	if err := v.checkStep(step); err != nil {
		return false, err
	}
	if v.kind == ArrayKind {
		n, err := v.arrayLength()
		if err != nil {
			return false, err
		}
		return step.Index < n, nil
	}
	if err := v.checkAlive(); err != nil {
		return false, err
	}
	_, ok, err := v.childKind(step)
	return ok, err
}

// Get resolves step against this view: a scalar child decodes to its Go
// value (nil, bool, float64, or string); a container child returns a fresh
// *View rooted at path+step. A step with no record at all fails with
// ErrMissingKey.
func (v *View) Get(step path.Step) (any, error) {
	if err := v.checkStep(step); err != nil {
		return nil, err
	}
	if err := v.checkAlive(); err != nil {
		return nil, err
	}
	kind, ok, err := v.childKind(step)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrMissingKey, step)
	}
	child := v.path.Child(step)
	switch kind {
	case path.Scalar:
		raw, found, err := v.buf.Read(path.Encode(child, path.Scalar))
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %v", ErrMissingKey, step)
		}
		return decodeScalar(raw)
	case path.Object:
		return &View{buf: v.buf, path: child, kind: ObjectKind}, nil
	default:
		return &View{buf: v.buf, path: child, kind: ArrayKind}, nil
	}
}

// Delete removes the direct child at step. A scalar child is erased
// outright; a container child has its entire subtree range tombstoned and
// its own marker erased. Deleting a non-existent key step is ErrMissingKey;
// an array index at or past the length is ErrOutOfRange. For an array
// step, the tail is renamed down by one position and the length
// marker decremented, preserving the contiguous-index invariant; deleting
// elsewhere in an array is therefore O(tail), matching insertion.
func (v *View) Delete(step path.Step) error {
	if err := v.checkStep(step); err != nil {
		return err
	}
	if v.kind == ArrayKind {
		return v.RemoveAt(step.Index)
	}
	if err := v.checkAlive(); err != nil {
		return err
	}
	kind, ok, err := v.childKind(step)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %v", ErrMissingKey, step)
	}
	return v.teardown(v.path.Child(step), kind)
}

// teardown erases whatever record(s) currently occupy childPath, given its
// observed record kind.
func (v *View) teardown(childPath path.Path, kind path.RecordKind) error {
	switch kind {
	case path.Scalar:
		v.buf.Erase(path.Encode(childPath, path.Scalar))
	case path.Object, path.Array:
		lo, hi := path.ContainerRange(childPath, kind)
		v.buf.EraseRange(lo, hi)
		v.buf.Erase(path.Encode(childPath, kind))
	}
	return nil
}
