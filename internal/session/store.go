package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/saleh1312/BarCloudTask/internal/intent"
	"github.com/saleh1312/BarCloudTask/internal/llm"
)

// Store is the process-wide session registry. Sessions are created lazily on
// first use and live until evicted via Cleanup or Delete. The store lock only
// guards the map; each session carries its own lock, so turns on different
// session ids never contend.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	client  llm.Client
	catalog *intent.Catalog
	logger  zerolog.Logger
}

func NewStore(client llm.Client, catalog *intent.Catalog, logger zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		client:   client,
		catalog:  catalog,
		logger:   logger,
	}
}

func (st *Store) GetOrCreate(id string) *Session {
	st.mu.RLock()
	s := st.sessions[id]
	st.mu.RUnlock()
	if s != nil {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if s := st.sessions[id]; s != nil {
		return s
	}

	s = New(id, st.client, st.catalog, st.logger)
	st.sessions[id] = s
	st.logger.Debug().Str("session", id).Msg("session created")
	return s
}

func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cleanup drops sessions idle for longer than maxAge. Nothing schedules this
// today; it exists so a caller can bound the registry if it needs to.
func (st *Store) Cleanup(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	st.mu.Lock()
	defer st.mu.Unlock()

	for id, s := range st.sessions {
		if s.LastActive().Before(cutoff) {
			delete(st.sessions, id)
		}
	}
}
