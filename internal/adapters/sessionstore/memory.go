package sessionstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/internal/domain/session"
)

type entry struct {
	snap    session.Snapshot
	expires time.Time
}

// Memory is a process local Store. Expired entries are dropped lazily.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	cfg     config
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory(opts ...Option) *Memory {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Memory{entries: make(map[string]entry), cfg: cfg}
}

func (m *Memory) Save(ctx context.Context, snap session.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.ID == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	m.entries[snap.ID] = entry{snap: clone(snap), expires: m.cfg.now().Add(m.cfg.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return session.Snapshot{}, err
	}
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if ok && m.cfg.now().Before(e.expires) {
		return clone(e.snap), nil
	}
	if ok {
		m.expire(id)
	}
	return session.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// expire drops id unless a Save refreshed it after the caller's read.
func (m *Memory) expire(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok && !m.cfg.now().Before(e.expires) {
		delete(m.entries, id)
	}
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Count returns live sessions and prunes expired ones.
func (m *Memory) Count(_ context.Context) (int, error) {
	now := m.cfg.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
		}
	}
	return len(m.entries), nil
}

func (m *Memory) Close() error { return nil }

func clone(s session.Snapshot) session.Snapshot {
	s.Responses = append([]scoring.Response(nil), s.Responses...)
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.ExperienceRating != nil {
		v := *s.ExperienceRating
		s.ExperienceRating = &v
	}
	return s
}
