package interviewer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"saylo/internal/models"
)

// MemoryStore keeps sessions in process with a TTL. It is used when no Redis
// address is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemoryStore creates a store and starts its background cleanup goroutine.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	ms := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go ms.cleanupLoop(time.Minute)
	return ms
}

// Sessions are stored serialized so callers never share a pointer with the
// store.
func (ms *MemoryStore) Save(_ context.Context, session *models.InterviewSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[session.ID] = &memoryEntry{payload: payload, expiresAt: ms.now().Add(ms.ttl)}
	return nil
}

func (ms *MemoryStore) Get(_ context.Context, id string) (*models.InterviewSession, error) {
	ms.mu.RLock()
	entry, ok := ms.entries[id]
	ms.mu.RUnlock()
	if !ok || ms.now().After(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	var session models.InterviewSession
	if err := json.Unmarshal(entry.payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (ms *MemoryStore) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, id)
	return nil
}

func (ms *MemoryStore) ListIdle(ctx context.Context, before time.Time) ([]*models.InterviewSession, error) {
	ms.mu.RLock()
	ids := make([]string, 0, len(ms.entries))
	for id := range ms.entries {
		ids = append(ids, id)
	}
	ms.mu.RUnlock()

	var idle []*models.InterviewSession
	for _, id := range ids {
		session, err := ms.Get(ctx, id)
		if err != nil {
			continue
		}
		if !session.Completed && session.UpdatedAt.Before(before) {
			idle = append(idle, session)
		}
	}
	return idle, nil
}

// Size returns the current number of stored sessions, expired ones included
// until the next cleanup.
func (ms *MemoryStore) Size() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.entries)
}

// Close stops the cleanup goroutine.
func (ms *MemoryStore) Close() {
	ms.once.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.cleanup()
		}
	}
}

func (ms *MemoryStore) cleanup() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	for id, entry := range ms.entries {
		if now.After(entry.expiresAt) {
			delete(ms.entries, id)
		}
	}
}
