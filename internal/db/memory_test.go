package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redirector/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory() (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewMemoryWithClock(clock.Now), clock
}

func TestMemory_CreateAssignsIdentity(t *testing.T) {
	store, _ := newTestMemory()
	ctx := context.Background()
	in := models.MappingInput{Path: "/x", Title: "T", Body: "B", Icon: "/i.png", Redirect: "https://dest.example"}

	first, err := store.CreateMapping(ctx, in)
	require.NoError(t, err)
	second, err := store.CreateMapping(ctx, models.MappingInput{Path: "/y"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(0), first.Hits)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	mappings, err := store.ListMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, in, mappings[0].Input())
}

func TestMemory_IDsNeverReused(t *testing.T) {
	store, _ := newTestMemory()
	ctx := context.Background()

	m, err := store.CreateMapping(ctx, models.MappingInput{Path: "/a"})
	require.NoError(t, err)
	require.NoError(t, store.DeleteMapping(ctx, m.ID))

	next, err := store.CreateMapping(ctx, models.MappingInput{Path: "/a"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, m.ID)
}

func TestMemory_GetByPathExactMatch(t *testing.T) {
	store, _ := newTestMemory()
	ctx := context.Background()
	_, err := store.CreateMapping(ctx, models.MappingInput{Path: "/Docs", Redirect: "https://docs.example"})
	require.NoError(t, err)

	tests := []struct {
		path  string
		found bool
	}{
		{"/Docs", true},
		{"/docs", false},
		{"/Docs/", false},
		{"Docs", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, err := store.GetMappingByPath(ctx, tt.path)
			if tt.found {
				require.NoError(t, err)
				assert.Equal(t, "https://docs.example", m.Redirect)
				return
			}
			assert.ErrorIs(t, err, ErrMappingNotFound)
		})
	}
}

func TestMemory_DuplicatePathsResolveToLowestID(t *testing.T) {
	store, _ := newTestMemory()
	ctx := context.Background()

	first, err := store.CreateMapping(ctx, models.MappingInput{Path: "/dup", Redirect: "https://one.example"})
	require.NoError(t, err)
	second, err := store.CreateMapping(ctx, models.MappingInput{Path: "/dup", Redirect: "https://two.example"})
	require.NoError(t, err)

	got, err := store.GetMappingByPath(ctx, "/dup")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, store.DeleteMapping(ctx, first.ID))
	got, err = store.GetMappingByPath(ctx, "/dup")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestMemory_UpdateMovesPathIndex(t *testing.T) {
	store, clock := newTestMemory()
	ctx := context.Background()

	m, err := store.CreateMapping(ctx, models.MappingInput{Path: "/old", Redirect: "https://a.example"})
	require.NoError(t, err)
	require.NoError(t, store.IncrementHits(ctx, m.ID))

	clock.Advance(time.Minute)
	in := models.MappingInput{Path: "/new", Title: "T", Body: "B", Icon: "I", Redirect: "https://b.example"}
	updated, err := store.UpdateMapping(ctx, m.ID, in)
	require.NoError(t, err)

	assert.Equal(t, m.ID, updated.ID)
	assert.Equal(t, int64(1), updated.Hits)
	assert.Equal(t, m.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(m.UpdatedAt))
	assert.Equal(t, in, updated.Input())

	_, err = store.GetMappingByPath(ctx, "/old")
	assert.ErrorIs(t, err, ErrMappingNotFound)
	got, err := store.GetMappingByPath(ctx, "/new")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestMemory_UpdateMissing(t *testing.T) {
	store, _ := newTestMemory()
	_, err := store.UpdateMapping(context.Background(), 42, models.MappingInput{Path: "/x"})
	assert.ErrorIs(t, err, ErrMappingNotFound)
}

func TestMemory_UpdatedAtNeverBeforeCreatedAt(t *testing.T) {
	store, clock := newTestMemory()
	ctx := context.Background()

	m, err := store.CreateMapping(ctx, models.MappingInput{Path: "/x"})
	require.NoError(t, err)

	clock.Advance(-time.Hour)
	updated, err := store.UpdateMapping(ctx, m.ID, models.MappingInput{Path: "/x"})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	store, _ := newTestMemory()
	ctx := context.Background()

	assert.NoError(t, store.DeleteMapping(ctx, 999))
	assert.NoError(t, store.DeleteMapping(ctx, 999))
}

func TestMemory_IncrementHitsDoesNotTouchUpdatedAt(t *testing.T) {
	store, clock := newTestMemory()
	ctx := context.Background()

	m, err := store.CreateMapping(ctx, models.MappingInput{Path: "/x"})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	require.NoError(t, store.IncrementHits(ctx, m.ID))
	require.NoError(t, store.IncrementHits(ctx, 12345))

	got, err := store.GetMappingByPath(ctx, "/x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Hits)
	assert.Equal(t, m.UpdatedAt, got.UpdatedAt)
}

func TestMemory_ConcurrentIncrements(t *testing.T) {
	store, _ := newTestMemory()
	ctx := context.Background()

	m, err := store.CreateMapping(ctx, models.MappingInput{Path: "/hot"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.IncrementHits(ctx, m.ID)
		}()
	}
	wg.Wait()

	got, err := store.GetMappingByPath(ctx, "/hot")
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Hits)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	store, _ := newTestMemory()
	ctx := context.Background()

	m, err := store.CreateMapping(ctx, models.MappingInput{Path: "/x", Title: "original"})
	require.NoError(t, err)
	m.Title = "mutated"

	got, err := store.GetMappingByPath(ctx, "/x")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title)
}
