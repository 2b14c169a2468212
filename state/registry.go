package state

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type entry struct {
	store    *Store
	lastSeen atomic.Int64
}

// Registry keeps one Store per visitor key and forgets idle visitors.
type Registry struct {
	stores   *xsync.MapOf[string, *entry]
	opts     []Option
	onCreate func(key string, s *Store)
	now      func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStoreOptions applies opts to every store the registry creates.
func WithStoreOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// OnCreate registers fn to run once for every newly created store, before it
// is handed out.
func OnCreate(fn func(key string, s *Store)) RegistryOption {
	return func(r *Registry) {
		r.onCreate = fn
	}
}

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		stores: xsync.NewMapOf[string, *entry](),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewStore creates a store with the registry's options without registering
// it. Used for visitors whose state should not be kept.
func (r *Registry) NewStore() *Store {
	return NewStore(r.opts...)
}

// Get returns the store for key, creating it when absent. created reports
// whether this call made it.
func (r *Registry) Get(key string) (s *Store, created bool) {
	e, loaded := r.stores.LoadOrCompute(key, func() *entry {
		return &entry{store: NewStore(r.opts...)}
	})
	e.lastSeen.Store(r.now().UnixNano())
	if !loaded && r.onCreate != nil {
		r.onCreate(key, e.store)
	}
	return e.store, !loaded
}

// Lookup returns the store for key without creating one.
func (r *Registry) Lookup(key string) (*Store, bool) {
	e, ok := r.stores.Load(key)
	if !ok {
		return nil, false
	}
	e.lastSeen.Store(r.now().UnixNano())
	return e.store, true
}

// Delete forgets the store for key.
func (r *Registry) Delete(key string) {
	r.stores.Delete(key)
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	return r.stores.Size()
}

// Sweep drops stores not used within maxIdle and returns how many went.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle).UnixNano()
	removed := 0
	r.stores.Range(func(key string, e *entry) bool {
		if e.lastSeen.Load() < cutoff {
			r.stores.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
