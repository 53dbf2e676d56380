package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/haasonsaas/nexus/pkg/models"
)

// MemoryStore is an in-memory Store, used in tests and for the
// programmatic surface's ephemeral (no-persistence) mode.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (m *MemoryStore) Create(ctx context.Context, id, workdir string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	sess := &models.Session{
		ID:        id,
		Metadata:  models.SessionMetadata{Workdir: workdir, LastActiveAt: now},
		CreatedAt: now,
	}
	m.sessions[id] = sess
	return cloneSession(sess), nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(sess), nil
}

func (m *MemoryStore) AppendMessage(ctx context.Context, id string, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Messages = append(sess.Messages, msg)
	return nil
}

func (m *MemoryStore) AppendUsage(ctx context.Context, id string, usage models.Usage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Usages = append(sess.Usages, usage)
	return nil
}

func (m *MemoryStore) UpdateMetadata(ctx context.Context, id string, meta models.SessionMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Metadata = meta
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func cloneSession(sess *models.Session) *models.Session {
	if sess == nil {
		return nil
	}
	clone := *sess
	clone.Messages = append([]*models.Message(nil), sess.Messages...)
	clone.Usages = append([]models.Usage(nil), sess.Usages...)
	return &clone
}
