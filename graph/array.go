package graph

import (
	"fmt"

	"github.com/dacapoday/jdb/path"
)

// Append writes value as the new last element, equivalent to
// Set(Index(Length), value).
func (v *View) Append(value any) error {
	if v.kind != ArrayKind {
		return fmt.Errorf("%w: append requires an array view", ErrTypeMismatch)
	}
	n, err := v.arrayLength()
	if err != nil {
		return err
	}
	return v.Set(path.Index(n), value)
}

// assignAt writes value at an array index directly, bypassing the
// length bound check in Set. Callers are responsible for the length
// marker; used internally by InsertAt/RemoveAt while shuffling the tail.
func (v *View) assignAt(index uint64, value any) error {
	return v.assign(v.path.Child(path.Index(index)), value)
}

// InsertAt makes room at index by renaming every element from index to
// Length-1 up by one position (each a deep-copy-and-erase, per the array
// mutation policy), then writes value at index and grows the length marker.
// index may equal the current length (equivalent to Append).
func (v *View) InsertAt(index uint64, value any) error {
	if v.kind != ArrayKind {
		return fmt.Errorf("%w: insert requires an array view", ErrTypeMismatch)
	}
	n, err := v.arrayLength()
	if err != nil {
		return err
	}
	if index > n {
		return fmt.Errorf("%w: index %d > length %d", ErrOutOfRange, index, n)
	}
	for j := n; j > index; j-- {
		val, err := v.Get(path.Index(j - 1))
		if err != nil {
			return err
		}
		if err := v.assignAt(j, val); err != nil {
			return err
		}
	}
	if err := v.assignAt(index, value); err != nil {
		return err
	}
	v.setArrayLength(n + 1)
	return nil
}

// RemoveAt closes the gap at index by renaming every element from index+1
// to Length-1 down by one position, then erasing the vacated last slot and
// shrinking the length marker.
func (v *View) RemoveAt(index uint64) error {
	if v.kind != ArrayKind {
		return fmt.Errorf("%w: remove requires an array view", ErrTypeMismatch)
	}
	n, err := v.arrayLength()
	if err != nil {
		return err
	}
	if index >= n {
		return fmt.Errorf("%w: index %d >= length %d", ErrOutOfRange, index, n)
	}
	for j := index; j+1 < n; j++ {
		val, err := v.Get(path.Index(j + 1))
		if err != nil {
			return err
		}
		if err := v.assignAt(j, val); err != nil {
			return err
		}
	}
	lastStep := path.Index(n - 1)
	kind, ok, err := v.childKind(lastStep)
	if err != nil {
		return err
	}
	if ok {
		if err := v.teardown(v.path.Child(lastStep), kind); err != nil {
			return err
		}
	}
	v.setArrayLength(n - 1)
	return nil
}
