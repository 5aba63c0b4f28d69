package txbuf

import (
	"bytes"
	"testing"

	"github.com/dacapoday/jdb/engine"
	"github.com/dacapoday/smol/kv"
	"github.com/dacapoday/smol/mem"
)

func newTestDB(t *testing.T) *kv.KV[*mem.File] {
	t.Helper()
	var file mem.File
	db := new(kv.KV[*mem.File])
	if err := db.Load(&file); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestReadYourWrites verifies a pending Write is visible to Read before any
// commit reaches the underlying engine.
func TestReadYourWrites(t *testing.T) {
	db := newTestDB(t)
	buf := New(engine.FromDB(db))

	buf.Write([]byte("k"), []byte("v1"))
	val, found, err := buf.Read([]byte("k"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !found || !bytes.Equal(val, []byte("v1")) {
		t.Fatalf("Read = (%q, %v), want (v1, true)", val, found)
	}
	t.Logf("✓ read-your-writes: k=%q", val)
}

// TestEraseHidesEngineValue verifies a pending Erase masks a value already
// committed to the engine, without touching the engine until Commit.
func TestEraseHidesEngineValue(t *testing.T) {
	db := newTestDB(t)

	buf := New(engine.FromDB(db))
	buf.Write([]byte("k"), []byte("v1"))
	if err := buf.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	buf2 := New(engine.FromDB(db))
	buf2.Erase([]byte("k"))
	_, found, err := buf2.Read([]byte("k"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if found {
		t.Errorf("Read found=true after Erase, want false")
	}

	raw, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("db.Get: %v", err)
	}
	if len(raw) == 0 {
		t.Errorf("engine value erased before Commit")
	}
	t.Logf("✓ erase hides without committing")
}

// TestEraseRangeCoversUncommittedAndCommitted verifies EraseRange masks both
// a key already committed to the engine and a key only pending in this same
// buffer, and that Commit durably removes the committed one.
func TestEraseRangeCoversUncommittedAndCommitted(t *testing.T) {
	db := newTestDB(t)

	seed := New(engine.FromDB(db))
	seed.Write([]byte("a"), []byte("1"))
	seed.Write([]byte("c"), []byte("3"))
	if err := seed.Commit(); err != nil {
		t.Fatalf("Commit seed: %v", err)
	}

	buf := New(engine.FromDB(db))
	buf.Write([]byte("b"), []byte("2"))
	buf.EraseRange([]byte("a"), []byte("z"))

	for _, k := range []string{"a", "b", "c"} {
		if _, found, _ := buf.Read([]byte(k)); found {
			t.Errorf("Read(%q) found=true after EraseRange, want false", k)
		}
	}

	if err := buf.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for _, k := range []string{"a", "b", "c"} {
		raw, err := db.Get([]byte(k))
		if err != nil {
			t.Fatalf("db.Get(%q): %v", k, err)
		}
		if len(raw) != 0 {
			t.Errorf("db still has %q = %q after range erase commit", k, raw)
		}
	}
	t.Logf("✓ erase range covers both committed and pending keys")
}

// TestScanMergesEngineAndPending verifies Scan yields ascending, deduplicated
// keys across both the engine and the pending overlay, with pending values
// winning over the engine's own.
func TestScanMergesEngineAndPending(t *testing.T) {
	db := newTestDB(t)

	seed := New(engine.FromDB(db))
	seed.Write([]byte("a"), []byte("1"))
	seed.Write([]byte("b"), []byte("2"))
	if err := seed.Commit(); err != nil {
		t.Fatalf("Commit seed: %v", err)
	}

	buf := New(engine.FromDB(db))
	buf.Write([]byte("b"), []byte("overridden"))
	buf.Write([]byte("c"), []byte("3"))

	cur := buf.Scan([]byte("a"), []byte("z"))
	defer cur.Close()

	var got []string
	for cur.Next() {
		got = append(got, string(cur.Key())+"="+string(cur.Val()))
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"a=1", "b=overridden", "c=3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	t.Logf("✓ scan merges engine and pending: %v", got)
}

// TestAbortDiscardsPending verifies Abort leaves the engine untouched: an
// overwrite of a committed key and a new key, both pending, never reach it.
func TestAbortDiscardsPending(t *testing.T) {
	db := newTestDB(t)

	seed := New(engine.FromDB(db))
	seed.Write([]byte("a"), []byte("1"))
	if err := seed.Commit(); err != nil {
		t.Fatalf("Commit seed: %v", err)
	}

	buf := New(engine.FromDB(db))
	buf.Write([]byte("a"), []byte("2"))
	buf.Write([]byte("b"), []byte("new"))
	buf.Abort()

	raw, err := db.Get([]byte("a"))
	if err != nil {
		t.Fatalf("db.Get: %v", err)
	}
	if !bytes.Equal(raw, []byte("1")) {
		t.Errorf("db a = %q after abort, want unchanged 1", raw)
	}
	raw, err = db.Get([]byte("b"))
	if err != nil {
		t.Fatalf("db.Get: %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("db b = %q after abort, want absent", raw)
	}
	t.Logf("✓ abort discards pending writes")
}
