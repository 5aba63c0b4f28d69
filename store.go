package jdb

import (
	"errors"
	"fmt"

	"github.com/dacapoday/jdb/engine"
	"github.com/dacapoday/jdb/graph"
	"github.com/dacapoday/jdb/txbuf"
	"github.com/dacapoday/smol/kv"
	"go.uber.org/zap"
)

// Error sentinels returned by Store and graph.View operations through it.
// These are the same values graph returns; jdb re-exports them so callers
// never need to import graph just to call errors.Is.
var (
	ErrMissingKey   = graph.ErrMissingKey
	ErrTypeMismatch = graph.ErrTypeMismatch
	ErrOutOfRange   = graph.ErrOutOfRange
	ErrInvalidValue = graph.ErrInvalidValue
	ErrStaleView    = graph.ErrStaleView
	ErrCorruption   = graph.ErrCorruption
)

// Store is a single-process, single-writer handle onto a path-encoded JSON
// graph persisted in a kv.DB file. The zero value is not usable; construct
// with Open.
type Store struct {
	db      *kv.DB
	path    string
	log     *zap.SugaredLogger
	corrupt bool
}

// Option configures a Store at Open time.
type Option func(*openConfig)

type openConfig struct {
	logger *zap.SugaredLogger
}

// WithLogger attaches a logger to the Store. A nil logger (or no WithLogger
// option at all) leaves the Store logging to a no-op sugared logger, so
// logging calls are always safe.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *openConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open creates or opens the JSON graph store at path, applying opts in
// order. The file is created with kv's own block specification (magic code
// "DICT", 16KiB blocks, no checkpoint retention) if it doesn't already
// exist.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := openConfig{
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := kv.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jdb: open %q: %w", path, err)
	}

	s := &Store{db: db, path: path, log: cfg.logger}
	s.log.Infow("store opened", "path", path)
	return s, nil
}

// root obtains a fresh graph.View over the top-level container, bound to a
// new per-call engine transaction. Callers must Commit or Abort the
// returned buf to release it; Root hands buf to the returned View, whose
// Commit and Abort do this.
func (s *Store) root() (*graph.View, *txbuf.Buffer, error) {
	if s.corrupt {
		return nil, nil, ErrCorruption
	}
	buf := txbuf.New(engine.FromDB(s.db))
	view, err := graph.Root(buf)
	if err != nil {
		return nil, nil, s.observe(err)
	}
	return view, buf, nil
}

// observe latches the Store into a read-only corrupt state on ErrCorruption,
// per the "read-only until next successful commit" contract. It is applied
// to errors from Root and View.Commit only; errors returned by graph
// operations made through a View reach the caller without engaging the
// latch.
func (s *Store) observe(err error) error {
	if errors.Is(err, ErrCorruption) {
		s.corrupt = true
		s.log.Errorw("store corruption observed", "path", s.path, "error", err)
	}
	return err
}

// View is a snapshot of the top-level container taken under one implicit
// transaction; Commit persists every change made through it, Abort discards
// them. A View obtained this way is exactly the graph.View type used
// throughout the graph package, so every Get/Set/Delete/Append/Iterate
// method documented there applies directly.
type View struct {
	*graph.View

	store *Store
	buf   *txbuf.Buffer
	done  bool
}

// Root opens a transaction and returns a live View of the top-level
// container (object or array, whichever the store already holds). A
// brand-new store has no root yet: reads through the View fail with
// ErrMissingKey until the first write creates the root container. The
// caller must call Commit or Abort on the returned View exactly once.
func (s *Store) Root() (*View, error) {
	view, buf, err := s.root()
	if err != nil {
		return nil, err
	}
	return &View{View: view, store: s, buf: buf}, nil
}

// Commit persists every write issued through this View's graph operations.
// A successful commit also releases the store's corruption latch, so a View
// obtained before corruption was observed can carry a repair through.
func (v *View) Commit() error {
	if v.done {
		return nil
	}
	v.done = true
	if err := v.buf.Commit(); err != nil {
		return v.store.observe(fmt.Errorf("jdb: commit: %w", err))
	}
	if v.store.corrupt {
		v.store.corrupt = false
		v.store.log.Infow("store corruption latch cleared by commit", "path", v.store.path)
	}
	return nil
}

// Abort discards every write issued through this View's graph operations.
func (v *View) Abort() {
	if v.done {
		return
	}
	v.done = true
	v.buf.Abort()
}

// Close releases the underlying file. Any View obtained from the Store and
// not yet committed or aborted should be finished first.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("jdb: close %q: %w", s.path, err)
	}
	return nil
}

// Transact runs fn against a fresh View of the root, committing on a nil
// return and aborting otherwise. A panic inside fn aborts the view and is
// re-panicked after unwinding, so the store is never left with a dangling
// transaction.
func (s *Store) Transact(fn func(v *View) error) (err error) {
	view, err := s.Root()
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			view.Abort()
			panic(p)
		}
	}()

	if err = fn(view); err != nil {
		view.Abort()
		return err
	}
	return view.Commit()
}
