package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	client := &fakeClient{replies: []string{unrecognizedReply}}
	return NewStore(client, testCatalog(t), zerolog.Nop())
}

func TestGetOrCreateReturnsSameInstance(t *testing.T) {
	store := newTestStore(t)

	first := store.GetOrCreate("s1")
	second := store.GetOrCreate("s1")

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestGetOrCreateDistinctIDs(t *testing.T) {
	store := newTestStore(t)

	a := store.GetOrCreate("a")
	b := store.GetOrCreate("b")

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, store.Len())
}

func TestGetMissingSession(t *testing.T) {
	store := newTestStore(t)
	assert.Nil(t, store.Get("nope"))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	store.GetOrCreate("s1")
	store.Delete("s1")
	assert.Nil(t, store.Get("s1"))
	assert.Equal(t, 0, store.Len())
}

func TestTranscriptAccumulatesAcrossCalls(t *testing.T) {
	store := newTestStore(t)

	sess := store.GetOrCreate("s1")
	_, err := sess.HandleUserMessage(context.Background(), "first")
	require.NoError(t, err)

	// A later lookup by the same id reuses the same transcript.
	again := store.GetOrCreate("s1")
	_, err = again.HandleUserMessage(context.Background(), "second")
	require.NoError(t, err)

	assert.Len(t, sess.Transcript(), 5)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	store := newTestStore(t)

	const goroutines = 16
	sessions := make([]*Session, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = store.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, sessions[0], sessions[i])
	}
	assert.Equal(t, 1, store.Len())
}

func TestCleanupEvictsIdleSessions(t *testing.T) {
	store := newTestStore(t)

	idle := store.GetOrCreate("idle")
	idle.mu.Lock()
	idle.updatedAt = time.Now().Add(-2 * time.Hour)
	idle.mu.Unlock()

	store.GetOrCreate("fresh")

	store.Cleanup(time.Hour)

	assert.Nil(t, store.Get("idle"))
	assert.NotNil(t, store.Get("fresh"))
	assert.Equal(t, 1, store.Len())
}
