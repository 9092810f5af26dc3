package ot

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLazyComputesOnce(t *testing.T) {
	calls := 0
	l := NewLazy(func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	})
	assert.False(t, l.Evaluated())
	v, err := l.Get()
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, v)
	assert.True(t, l.Evaluated())
	l.Get()
	l.Value()
	assert.Equal(t, 1, calls)
}

func TestLazyKeepsError(t *testing.T) {
	broken := errors.New("broken")
	calls := 0
	l := NewLazy(func() (int, error) {
		calls++
		return 0, broken
	})
	_, err := l.Get()
	assert.ErrorIs(t, err, broken)
	_, err = l.Get()
	assert.ErrorIs(t, err, broken)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, l.Value())
}

func TestLazyConcurrentAccess(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	l := LazyValue(func() string {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return "value"
	})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "value", l.Value())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestOption(t *testing.T) {
	some := Some(uint16(7))
	assert.True(t, some.IsSome())
	v, ok := some.Unwrap()
	assert.True(t, ok)
	assert.Equal(t, uint16(7), v)
	none := None[uint16]()
	assert.True(t, none.IsNone())
	assert.Equal(t, uint16(3), none.Or(3))
}
