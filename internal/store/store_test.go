package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/degree-day-etl/internal/pipeline"
)

func TestResultStore_Empty(t *testing.T) {
	s := New(nil)
	r, ok := s.Latest()
	assert.False(t, ok)
	assert.Nil(t, r)
}

func TestResultStore_PutReplaces(t *testing.T) {
	var held []bool
	s := New(func(h bool) { held = append(held, h) })

	s.Put(&pipeline.Result{RunID: "first"})
	s.Put(&pipeline.Result{RunID: "second"})

	r, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "second", r.RunID)

	// Reads do not consume the result.
	again, ok := s.Latest()
	require.True(t, ok)
	assert.Same(t, r, again)

	s.Clear()
	_, ok = s.Latest()
	assert.False(t, ok)
	assert.Equal(t, []bool{true, true, false}, held)
}

func TestResultStore_ConcurrentAccess(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Put(&pipeline.Result{RunID: string(rune('a' + i%26))})
		}()
		go func() {
			defer wg.Done()
			if r, ok := s.Latest(); ok {
				assert.NotEmpty(t, r.RunID)
			}
		}()
	}
	wg.Wait()

	_, ok := s.Latest()
	assert.True(t, ok)
}

func TestResultStore_HeldStateFollowsSlot(t *testing.T) {
	var (
		mu   sync.Mutex
		last bool
	)
	s := New(func(h bool) {
		mu.Lock()
		last = h
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				s.Put(&pipeline.Result{RunID: "run"})
			} else {
				s.Clear()
			}
		}()
	}
	wg.Wait()

	_, held := s.Latest()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, held, last)
}
