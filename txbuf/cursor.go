package txbuf

import (
	"bytes"

	"github.com/dacapoday/jdb/engine"
	"github.com/dacapoday/smol/btree"
)

// Cursor merge-iterates a Buffer's pending writes with its underlying
// engine over a fixed range, pending entries overriding engine entries and
// tombstones (single-key or range) suppressing them.
type Cursor struct {
	buf    *Buffer
	lo, hi []byte

	pendingIt btree.Iter
	engineIt  engine.Iterator

	started      bool
	pendingValid bool
	engineValid  bool

	key, val []byte
	err      error
}

// Next advances to the next surviving key. Returns false at the end of the
// range or on error; use Err to tell the two apart.
func (c *Cursor) Next() bool {
	if !c.started {
		c.started = true
		c.pendingValid = c.pendingIt.Seek(c.lo)
		c.engineValid = c.engineIt.Next()
	}

	for {
		if c.pendingValid && bytes.Compare(c.pendingIt.Key(), c.hi) >= 0 {
			c.pendingValid = false
		}
		if !c.pendingValid && !c.engineValid {
			return false
		}

		usePending := c.pendingValid && (!c.engineValid || bytes.Compare(c.pendingIt.Key(), c.engineIt.Key()) <= 0)

		if usePending {
			key := append([]byte(nil), c.pendingIt.Key()...)
			val := c.pendingIt.Val()

			sameAsEngine := c.engineValid && bytes.Equal(key, c.engineIt.Key())
			c.pendingValid = c.pendingIt.Next()
			if sameAsEngine {
				c.engineValid = c.engineIt.Next()
			}

			if len(val) == 0 {
				continue
			}
			c.key, c.val = key, append([]byte(nil), val...)
			return true
		}

		key := append([]byte(nil), c.engineIt.Key()...)
		if c.buf.ranges.covers(key) {
			c.engineValid = c.engineIt.Next()
			continue
		}
		val := append([]byte(nil), c.engineIt.Val()...)
		c.engineValid = c.engineIt.Next()
		c.key, c.val = key, val
		return true
	}
}

func (c *Cursor) Key() []byte { return c.key }
func (c *Cursor) Val() []byte { return c.val }

func (c *Cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.engineIt.Err()
}

func (c *Cursor) Close() {
	c.engineIt.Close()
}
