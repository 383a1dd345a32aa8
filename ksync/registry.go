package ksync

import (
	"sync"

	"github.com/proos-dev/kernel/kerr"
)

// Registry bounds the number of live mutexes and semaphores to the pool
// sizes spec.md §6 configures (SyncMutexes, SyncSemaphores), the same way
// ipc/capability and ipc/shared bound their own tables.
type Registry struct {
	mu sync.Mutex

	mutexCap    int
	semCap      int
	waiterBound int

	mutexes    map[int]*Mutex
	semaphores map[int]*Semaphore
	nextMutex  int
	nextSem    int
}

// NewRegistry returns an empty Registry bounded at the given capacities,
// whose mutexes and semaphores each bound their own waiter list at
// waiterBound (spec.md §6's sync_waiters; 0 means unbounded).
func NewRegistry(mutexCap, semCap, waiterBound int) *Registry {
	return &Registry{
		mutexCap:    mutexCap,
		semCap:      semCap,
		waiterBound: waiterBound,
		mutexes:     make(map[int]*Mutex),
		semaphores:  make(map[int]*Semaphore),
		nextMutex:   1,
		nextSem:     1,
	}
}

// CreateMutex allocates a new mutex handle, or returns a Kind-Exhausted
// error if the pool is full.
func (r *Registry) CreateMutex() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.mutexes) >= r.mutexCap {
		return 0, kerr.Exhaustedf("mutex pool exhausted")
	}
	id := r.nextMutex
	r.nextMutex++
	r.mutexes[id] = NewMutex(r.waiterBound)
	return id, nil
}

// Mutex looks up a previously created mutex handle.
func (r *Registry) Mutex(id int) (*Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mutexes[id]
	if !ok {
		return nil, kerr.NotFoundf("mutex %d", id)
	}
	return m, nil
}

// DestroyMutex removes a mutex handle from the pool.
func (r *Registry) DestroyMutex(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mutexes[id]; !ok {
		return kerr.NotFoundf("mutex %d", id)
	}
	delete(r.mutexes, id)
	return nil
}

// CreateSemaphore allocates a new semaphore handle with the given initial
// count, or returns a Kind-Exhausted error if the pool is full.
func (r *Registry) CreateSemaphore(initial int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.semaphores) >= r.semCap {
		return 0, kerr.Exhaustedf("semaphore pool exhausted")
	}
	sem, err := NewSemaphore(initial, r.waiterBound)
	if err != nil {
		return 0, err
	}
	id := r.nextSem
	r.nextSem++
	r.semaphores[id] = sem
	return id, nil
}

// Semaphore looks up a previously created semaphore handle.
func (r *Registry) Semaphore(id int) (*Semaphore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.semaphores[id]
	if !ok {
		return nil, kerr.NotFoundf("semaphore %d", id)
	}
	return s, nil
}

// DestroySemaphore removes a semaphore handle from the pool.
func (r *Registry) DestroySemaphore(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.semaphores[id]; !ok {
		return kerr.NotFoundf("semaphore %d", id)
	}
	delete(r.semaphores, id)
	return nil
}
