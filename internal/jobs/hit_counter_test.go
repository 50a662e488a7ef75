package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingStore struct {
	mu    sync.Mutex
	hits  map[int64]int
	err   error
	block chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{hits: make(map[int64]int)}
}

func (s *recordingStore) IncrementHits(ctx context.Context, id int64) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.hits[id]++
	return nil
}

func (s *recordingStore) count(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[id]
}

func TestHitCounterIncrements(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	counter := NewHitCounter(store, 2, 16, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		counter.Start(ctx)
		close(done)
	}()

	for i := 0; i < 5; i++ {
		require.True(t, counter.Submit(7))
	}
	require.True(t, counter.Submit(8))

	assert.Eventually(t, func() bool {
		return store.count(7) == 5 && store.count(8) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hit counter did not stop after context cancel")
	}
}

func TestHitCounterDropsWhenFull(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	counter := NewHitCounter(newRecordingStore(), 1, 2, time.Second, zap.New(core))

	assert.True(t, counter.Submit(1))
	assert.True(t, counter.Submit(2))
	assert.False(t, counter.Submit(3), "third submission exceeds queue capacity")

	entries := logs.FilterMessage("hit queue full, dropping increment").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["mapping_id"])
}

func TestHitCounterSubmitNeverBlocks(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	store.block = make(chan struct{})
	counter := NewHitCounter(store, 1, 1, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go counter.Start(ctx)

	start := time.Now()
	for i := 0; i < 100; i++ {
		counter.Submit(int64(i))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	close(store.block)
}

func TestHitCounterLogsFailures(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	store.err = errors.New("connection refused")
	core, logs := observer.New(zap.WarnLevel)
	counter := NewHitCounter(store, 1, 4, time.Second, zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go counter.Start(ctx)

	require.True(t, counter.Submit(42))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("failed to increment hits").Len() == 1
	}, time.Second, 10*time.Millisecond)
}
