package utils

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

const memoKey = "memo"

// Memo caches the first successful result of a computation.
//
// The zero value is not usable; create one with NewMemo. A Memo is safe for
// concurrent use: only one computation runs at a time, and callers arriving
// while it runs wait for its result or for their own context to end. Errors
// are returned to the caller and not cached, so the next Get tries again.
type Memo[T any] struct {
	mu    sync.Mutex
	fn    func(ctx context.Context) (T, error)
	value T
	done  bool
	group singleflight.Group
}

// abandonedError marks a failure that happened after the computing caller's
// context ended. Waiters with a live context compute again instead.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }

// NewMemo wraps fn so that it runs at most once successfully.
func NewMemo[T any](fn func(ctx context.Context) (T, error)) *Memo[T] {
	return &Memo[T]{fn: fn}
}

// Get returns the cached value, computing it first if needed. fn runs with
// the context of the caller that starts the computation.
func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if v, ok := m.cached(); ok {
			return v, nil
		}

		ch := m.group.DoChan(memoKey, func() (any, error) {
			v, err := m.fn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, &abandonedError{err: err}
				}
				return nil, err
			}
			m.mu.Lock()
			m.value, m.done = v, true
			m.mu.Unlock()
			return v, nil
		})

		select {
		case res := <-ch:
			if res.Err == nil {
				v, _ := res.Val.(T)
				return v, nil
			}
			var abandoned *abandonedError
			if errors.As(res.Err, &abandoned) {
				if ctx.Err() == nil {
					continue
				}
				return zero, abandoned.err
			}
			return zero, res.Err
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func (m *Memo[T]) cached() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.done
}

// Cached reports whether a value has been stored.
func (m *Memo[T]) Cached() bool {
	_, ok := m.cached()
	return ok
}

// Reset drops the cached value so the next Get recomputes it. A computation
// already in flight still stores its result when it finishes.
func (m *Memo[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	m.value = zero
	m.done = false
}
