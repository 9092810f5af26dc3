package ot

import (
	"sync"
	"sync/atomic"
)

// Lazy is a value which is computed on first access and cached from then on.
// Tables use it for sub-structures which are expensive to decode and not
// needed by every client. There is no way to invalidate a computed value.
//
// Lazy values must not be copied after first use.
type Lazy[T any] struct {
	once    sync.Once
	done    atomic.Bool
	compute func() (T, error)
	value   T
	err     error
}

// NewLazy creates a lazy value, which will be computed by calling compute.
func NewLazy[T any](compute func() (T, error)) *Lazy[T] {
	return &Lazy[T]{compute: compute}
}

// LazyValue creates a lazy value from a computation which cannot fail.
func LazyValue[T any](compute func() T) *Lazy[T] {
	return &Lazy[T]{compute: func() (T, error) {
		return compute(), nil
	}}
}

// Get returns the value, computing it if this is the first access.
// The error of the computation, if any, is returned on every call.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.compute()
		l.compute = nil
		l.done.Store(true)
	})
	return l.value, l.err
}

// Value returns the value, ignoring any error of the computation.
func (l *Lazy[T]) Value() T {
	v, _ := l.Get()
	return v
}

// Evaluated reports whether the value has already been computed.
func (l *Lazy[T]) Evaluated() bool {
	return l.done.Load()
}
