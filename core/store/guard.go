package store

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrInFlight is returned when a write on the same record is already running.
var ErrInFlight = errors.New("a request for this record is already in progress")

// Guard prevents double submissions: only one holder per key at a time.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	onReject func(key string)
}

// NewGuard returns a Guard; onReject, if given, is called with the key of every rejected Acquire.
func NewGuard(onReject ...func(key string)) *Guard {
	g := &Guard{inFlight: make(map[string]struct{})}
	if len(onReject) > 0 {
		g.onReject = onReject[0]
	}
	return g
}

// Acquire claims key. The returned release func must be called once the request settles.
func (g *Guard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	if _, busy := g.inFlight[key]; busy {
		g.mu.Unlock()
		if g.onReject != nil {
			g.onReject(key)
		}
		return nil, errors.Wrap(ErrInFlight, key)
	}
	g.inFlight[key] = struct{}{}
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, nil
}

// Do runs fn while holding key.
func (g *Guard) Do(key string, fn func() error) error {
	release, err := g.Acquire(key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Busy reports whether key is currently held.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[key]
	return busy
}
