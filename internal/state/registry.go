package state

import (
	"sync"
	"time"
)

// Registry maps visitor ids to per-visitor values and evicts the ones that
// have been idle longer than the configured TTL.
type Registry[T any] struct {
	mu         sync.Mutex
	entries    map[string]*registryEntry[T]
	create     func(id string) T
	release    func(T)
	idleTTL    time.Duration
	now        func() time.Time
	cleanup    *time.Ticker
	cleanupOff chan struct{}
	stopOnce   sync.Once
}

type registryEntry[T any] struct {
	value      T
	lastAccess time.Time
}

// RegistryOptions configures a Registry.
type RegistryOptions[T any] struct {
	// Create builds the value for a new visitor id. Required.
	Create func(id string) T
	// Release, when set, is called for each evicted value.
	Release func(T)
	// IdleTTL is how long a visitor may stay idle; zero disables eviction.
	IdleTTL time.Duration
	// CleanupInterval runs Sweep periodically when positive.
	CleanupInterval time.Duration
}

// NewRegistry creates a registry.
func NewRegistry[T any](opts RegistryOptions[T]) *Registry[T] {
	r := &Registry[T]{
		entries: make(map[string]*registryEntry[T]),
		create:  opts.Create,
		release: opts.Release,
		idleTTL: opts.IdleTTL,
		now:     time.Now,
	}
	if opts.CleanupInterval > 0 && opts.IdleTTL > 0 {
		r.cleanup = time.NewTicker(opts.CleanupInterval)
		r.cleanupOff = make(chan struct{})
		go r.sweepLoop()
	}
	return r
}

// Get returns the value for id, creating it on first use.
func (r *Registry[T]) Get(id string) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &registryEntry[T]{value: r.create(id)}
		r.entries[id] = e
	}
	e.lastAccess = r.now()
	return e.value
}

// Len returns the number of live visitors.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts idle visitors and returns how many were removed.
func (r *Registry[T]) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var evicted []T
	for id, e := range r.entries {
		if e.lastAccess.Before(cutoff) {
			evicted = append(evicted, e.value)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	if r.release != nil {
		for _, v := range evicted {
			r.release(v)
		}
	}
	return len(evicted)
}

func (r *Registry[T]) sweepLoop() {
	for {
		select {
		case <-r.cleanup.C:
			r.Sweep()
		case <-r.cleanupOff:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (r *Registry[T]) Stop() {
	r.stopOnce.Do(func() {
		if r.cleanup != nil {
			r.cleanup.Stop()
			close(r.cleanupOff)
		}
	})
}
