package graph

import (
	"fmt"
	"strconv"

	"github.com/dacapoday/jdb/path"
)

// Set assigns value at step, replacing whatever (if anything) currently
// lives there. value may be nil, bool, float64, string, map[string]any,
// []any, or *View (any other type is ErrInvalidValue); a *View is deep-
// copied at the moment of assignment, so the source and the new subtree are
// independent afterward and no cycle can form.
//
// For an array view, step must be an index step no greater than the
// current length: step == length appends a new element, step < length
// replaces in place, and step > length is ErrOutOfRange (sparse arrays are
// not supported).
func (v *View) Set(step path.Step, value any) error {
	if err := v.checkStep(step); err != nil {
		return err
	}
	if err := v.mutable(); err != nil {
		return err
	}
	if v.kind == ArrayKind {
		n, err := v.arrayLength()
		if err != nil {
			return err
		}
		if step.Index > n {
			return fmt.Errorf("%w: index %d > length %d", ErrOutOfRange, step.Index, n)
		}
		if err := v.assign(v.path.Child(step), value); err != nil {
			return err
		}
		if step.Index == n {
			v.setArrayLength(n + 1)
		}
		return nil
	}
	return v.assign(v.path.Child(step), value)
}

// assign tears down whatever currently occupies childPath and writes value
// there, recursing for containers. It does not touch any array length
// marker; callers that need the parent's length updated do that themselves.
func (v *View) assign(childPath path.Path, value any) error {
	existingKind, found, err := v.probe(childPath)
	if err != nil {
		return err
	}
	if found {
		if err := v.teardown(childPath, existingKind); err != nil {
			return err
		}
	}

	switch val := value.(type) {
	case *View:
		return v.assignView(childPath, val)
	case map[string]any:
		return v.assignObject(childPath, val)
	case []any:
		return v.assignArray(childPath, val)
	default:
		if !isScalar(value) {
			return fmt.Errorf("%w: %T", ErrInvalidValue, value)
		}
		raw, err := encodeScalar(value)
		if err != nil {
			return err
		}
		v.buf.Write(path.Encode(childPath, path.Scalar), raw)
		return nil
	}
}

// probe is like childKind but addressed directly by the child's own full
// path rather than by step-from-v, for use once recursion has already
// descended past v.
func (v *View) probe(childPath path.Path) (kind path.RecordKind, ok bool, err error) {
	if _, found, err := v.buf.Read(path.Encode(childPath, path.Scalar)); err != nil {
		return 0, false, err
	} else if found {
		return path.Scalar, true, nil
	}
	if _, found, err := v.buf.Read(path.Encode(childPath, path.Object)); err != nil {
		return 0, false, err
	} else if found {
		return path.Object, true, nil
	}
	if _, found, err := v.buf.Read(path.Encode(childPath, path.Array)); err != nil {
		return 0, false, err
	} else if found {
		return path.Array, true, nil
	}
	return 0, false, nil
}

func (v *View) assignObject(childPath path.Path, obj map[string]any) error {
	v.buf.Write(path.Encode(childPath, path.Object), objectMarker)
	child := &View{buf: v.buf, path: childPath, kind: ObjectKind}
	for key, val := range obj {
		if err := child.assign(childPath.Child(path.Key(key)), val); err != nil {
			return err
		}
	}
	return nil
}

func (v *View) assignArray(childPath path.Path, arr []any) error {
	v.buf.Write(path.Encode(childPath, path.Array), []byte(lenBytes(len(arr))))
	child := &View{buf: v.buf, path: childPath, kind: ArrayKind}
	for i, val := range arr {
		if err := child.assign(childPath.Child(path.Index(uint64(i))), val); err != nil {
			return err
		}
	}
	return nil
}

// assignView deep-copies src's current contents into childPath. src may be
// backed by the same or a different store; either way the copy reads src
// fresh and writes a wholly new, independent subtree.
func (v *View) assignView(childPath path.Path, src *View) error {
	if err := src.checkAlive(); err != nil {
		return err
	}
	if src.kind == ObjectKind {
		v.buf.Write(path.Encode(childPath, path.Object), objectMarker)
		dst := &View{buf: v.buf, path: childPath, kind: ObjectKind}
		it := src.Iterate()
		for it.Next() {
			key, val, err := it.ObjectEntry()
			if err != nil {
				return err
			}
			if err := dst.assignCopy(childPath.Child(path.Key(key)), val); err != nil {
				return err
			}
		}
		return it.Err()
	}

	n, err := src.arrayLength()
	if err != nil {
		return err
	}
	v.buf.Write(path.Encode(childPath, path.Array), []byte(lenBytes(int(n))))
	dst := &View{buf: v.buf, path: childPath, kind: ArrayKind}
	it := src.Iterate()
	for it.Next() {
		idx, val, err := it.ArrayEntry()
		if err != nil {
			return err
		}
		if err := dst.assignCopy(childPath.Child(path.Index(idx)), val); err != nil {
			return err
		}
	}
	return it.Err()
}

// assignCopy writes val (a scalar or a *View obtained from Iterate, never a
// map/slice literal) at childPath, recursing through assignView for nested
// containers. It assumes childPath is freshly allocated (no teardown
// needed).
func (v *View) assignCopy(childPath path.Path, val any) error {
	if src, ok := val.(*View); ok {
		return v.assignView(childPath, src)
	}
	raw, err := encodeScalar(val)
	if err != nil {
		return err
	}
	v.buf.Write(path.Encode(childPath, path.Scalar), raw)
	return nil
}

func lenBytes(n int) string {
	return strconv.FormatUint(uint64(n), 10)
}
