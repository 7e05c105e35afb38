// Package lock provides keyed mutual exclusion used by the normalizr Gate.
package lock

import (
	"context"
	"errors"
	"sync"
)

// Unlock releases a held key.
type Unlock func(ctx context.Context) error

// Locker serializes holders of the same key. Distinct keys never block each other.
type Locker interface {
	// Lock blocks until key is held or ctx is done.
	Lock(ctx context.Context, key string) (Unlock, error)
}

// ErrNotHeld is returned by an Unlock whose key was no longer held by the caller.
var ErrNotHeld = errors.New("lock: key not held")

// Memory is an in-process Locker. Per-key state is reference counted and
// dropped once no holder or waiter remains.
type Memory struct {
	mu   sync.Mutex
	keys map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewMemory returns an empty in-process Locker.
func NewMemory() *Memory {
	return &Memory{keys: make(map[string]*entry)}
}

func (m *Memory) Lock(ctx context.Context, key string) (Unlock, error) {
	m.mu.Lock()
	e, ok := m.keys[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.keys[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func(context.Context) error {
		err := ErrNotHeld
		once.Do(func() {
			<-e.sem
			m.release(key, e)
			err = nil
		})
		return err
	}, nil
}

func (m *Memory) release(key string, e *entry) {
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.keys, key)
	}
	m.mu.Unlock()
}

// Len reports how many keys are currently held or awaited.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}
