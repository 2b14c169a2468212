package state

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Listener observes a transition. It runs synchronously inside Dispatch and
// must not dispatch on the same store.
type Listener func(prev, next State, a Action)

// Store holds one visitor's State and serializes transitions.
type Store struct {
	mu        sync.Mutex
	state     State
	resetPage bool

	listeners *xsync.MapOf[uint64, Listener]
	nextID    atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithPageReset controls whether a change to the tag filters also moves the
// list back to the first page. Defaults to true.
func WithPageReset(on bool) Option {
	return func(s *Store) {
		s.resetPage = on
	}
}

// WithInitial seeds the store with s.
func WithInitial(initial State) Option {
	return func(s *Store) {
		s.state = initial.clone()
	}
}

// NewStore creates a Store at page 0 with no filters.
func NewStore(opts ...Option) *Store {
	s := &Store{
		resetPage: true,
		listeners: xsync.NewMapOf[uint64, Listener](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := Reduce(prev, a)
	if s.resetPage && !TagsEqual(prev.Tags, next.Tags) {
		next = Reduce(next, SetPage{Page: 0})
	}
	s.state = next

	s.listeners.Range(func(_ uint64, fn Listener) bool {
		fn(prev.clone(), next.clone(), a)
		return true
	})
	return next.clone()
}

// Subscribe registers fn for every later transition. The returned function
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextID.Add(1)
	s.listeners.Store(id, fn)
	return func() {
		s.listeners.Delete(id)
	}
}
