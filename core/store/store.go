package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var NowFunc = time.Now // mockable

// State is the load state of a Store.
type State int

const (
	StateLoading State = iota // nothing loaded yet
	StateEmpty                // loaded, no records
	StateReady                // loaded, at least one record
	StateFailed               // last load failed
)

var stateNames = [...]string{"loading", "empty", "loaded", "error"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown store state %q", b)
}

// Snapshot is an immutable view of a Store at a point in time.
type Snapshot[T any] struct {
	State    State
	Items    []T
	Err      error
	LoadedAt time.Time
}

type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Store caches the last list returned by its fetch function.
// Every Refresh replaces the whole list; records are never patched in place.
// Concurrent Refresh calls share one fetch.
type Store[T any] struct {
	fetch FetchFunc[T]
	group singleflight.Group

	mu     sync.RWMutex
	snap   Snapshot[T]
	subs   map[int]func(Snapshot[T])
	nextID int
}

func New[T any](fetch FetchFunc[T]) *Store[T] {
	return &Store[T]{
		fetch: fetch,
		subs:  make(map[int]func(Snapshot[T])),
	}
}

// Snapshot returns the current state of the store.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copySnapshot()
}

// Loaded reports whether at least one fetch succeeded.
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.snap.LoadedAt.IsZero()
}

// Refresh refetches the list and notifies subscribers.
// On failure the previous items are kept and the state becomes StateFailed.
// The shared fetch does not stop when a caller gives up: that caller gets ctx.Err() and the current snapshot.
func (s *Store[T]) Refresh(ctx context.Context) (Snapshot[T], error) {
	ch := s.group.DoChan("refresh", func() (interface{}, error) {
		items, err := s.fetch(context.WithoutCancel(ctx))

		s.mu.Lock()
		if err != nil {
			s.snap.State = StateFailed
			s.snap.Err = err
		} else {
			s.snap = Snapshot[T]{State: stateOf(items), Items: items, LoadedAt: NowFunc()}
		}
		snap := s.copySnapshot()
		subs := make([]func(Snapshot[T]), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
		s.mu.Unlock()

		for _, fn := range subs {
			fn(snap)
		}
		return snap, err
	})

	select {
	case res := <-ch:
		return res.Val.(Snapshot[T]), res.Err
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Subscribe registers fn to be called after every Refresh. The returned func unsubscribes.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store[T]) copySnapshot() Snapshot[T] {
	snap := s.snap
	if s.snap.Items != nil {
		snap.Items = make([]T, len(s.snap.Items))
		copy(snap.Items, s.snap.Items)
	}
	return snap
}

func stateOf[T any](items []T) State {
	if len(items) == 0 {
		return StateEmpty
	}
	return StateReady
}
