// Package store holds the loaded transaction records as an immutable
// snapshot. Readers take the current snapshot and keep using it for the
// whole query; a reload installs a new snapshot without touching the old one.
package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vanshika/txinsights/internal/domain"
)

// Loader is the source of record sequences.
type Loader interface {
	Load(ctx context.Context) ([]domain.Transaction, error)
	Describe() string
}

// Observer is notified of snapshot swaps and failed loads.
type Observer interface {
	SnapshotLoaded(records int)
	LoadFailed()
}

// Snapshot is an immutable, ordered view of transaction records.
type Snapshot struct {
	records  []domain.Transaction
	loadedAt time.Time
	source   string
}

// NewSnapshot copies records into a new snapshot.
func NewSnapshot(records []domain.Transaction, source string, loadedAt time.Time) *Snapshot {
	return &Snapshot{
		records:  append([]domain.Transaction(nil), records...),
		loadedAt: loadedAt,
		source:   source,
	}
}

// Len returns the number of records. A nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of the records in load order.
func (s *Snapshot) Records() []domain.Transaction {
	if s == nil {
		return nil
	}
	return append([]domain.Transaction(nil), s.records...)
}

// LoadedAt returns when the snapshot was installed.
func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}

// Source describes where the records came from.
func (s *Snapshot) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Store owns the current snapshot.
type Store struct {
	loader   Loader
	logger   *slog.Logger
	observer Observer
	nowFn    func() time.Time

	current atomic.Pointer[Snapshot]
	// reloads are serialised so two operators cannot interleave swaps
	reloadMu sync.Mutex
}

// Option customises a Store.
type Option func(*Store)

// WithObserver reports loads to obs.
func WithObserver(obs Observer) Option {
	return func(s *Store) { s.observer = obs }
}

// WithClock overrides the time source (used primarily in tests).
func WithClock(nowFn func() time.Time) Option {
	return func(s *Store) {
		if nowFn != nil {
			s.nowFn = nowFn
		}
	}
}

// New returns a Store holding an empty snapshot until Load is called.
func New(loader Loader, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		loader: loader,
		logger: logger,
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(NewSnapshot(nil, "", time.Time{}))
	return s
}

// NewStatic returns a Store that always serves records. Reload is a no-op
// returning the same records.
func NewStatic(records []domain.Transaction) *Store {
	s := &Store{nowFn: time.Now, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	s.loader = staticLoader(records)
	s.current.Store(NewSnapshot(records, "static", s.nowFn()))
	return s
}

// Current returns the snapshot in effect right now.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Load performs the initial load. A failing loader leaves the store with an
// empty snapshot and is only logged: queries then answer as for empty input.
func (s *Store) Load(ctx context.Context) *Snapshot {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	records, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("loading transactions failed, serving empty data set",
			"source", s.loader.Describe(), "error", err)
		s.notifyFailed()
		records = nil
	}
	return s.swap(records)
}

// Reload replaces the snapshot with a fresh load. On failure the previous
// snapshot stays in place and the error is returned.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	records, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Warn("reloading transactions failed, keeping previous snapshot",
			"source", s.loader.Describe(), "error", err, "records", s.Current().Len())
		s.notifyFailed()
		return s.Current(), err
	}
	return s.swap(records), nil
}

func (s *Store) swap(records []domain.Transaction) *Snapshot {
	snap := NewSnapshot(records, s.loader.Describe(), s.nowFn())
	s.current.Store(snap)
	s.logger.Info("transaction snapshot installed", "source", snap.Source(), "records", snap.Len())
	if s.observer != nil {
		s.observer.SnapshotLoaded(snap.Len())
	}
	return snap
}

func (s *Store) notifyFailed() {
	if s.observer != nil {
		s.observer.LoadFailed()
	}
}

type staticLoader []domain.Transaction

func (l staticLoader) Load(context.Context) ([]domain.Transaction, error) { return l, nil }

func (l staticLoader) Describe() string { return "static" }
