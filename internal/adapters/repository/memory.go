package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/impactwon/checkin/internal/domain/model"
	"github.com/impactwon/checkin/internal/domain/scoring"
	"github.com/impactwon/checkin/pkg/metrics"
)

// MemoryStore keeps rows in process memory. Rows are returned as copies.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  map[string]model.Record
	order []string
	now   func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		rows: make(map[string]model.Record),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert adds a row.
func (s *MemoryStore) Insert(ctx context.Context, rec model.Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("insert", float64(time.Since(start).Microseconds())/1000)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		return ErrInvalidID
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	rec.Responses = append([]scoring.Response(nil), rec.Responses...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; ok {
		metrics.RecordErrorByComponent("repository", "duplicate")
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}
	s.rows[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return nil
}

// Get returns the row with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("get", float64(time.Since(start).Microseconds())/1000)
	}()

	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}

	s.mu.RLock()
	rec, ok := s.rows[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneRecord(rec), nil
}

// List returns a page of rows in insertion order.
func (s *MemoryStore) List(ctx context.Context, limit, offset int) ([]model.Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency("list", float64(time.Since(start).Microseconds())/1000)
	}()

	if err := CheckPage(limit, offset); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset >= len(s.order) {
		return []model.Record{}, nil
	}
	end := min(offset+limit, len(s.order))
	out := make([]model.Record, 0, end-offset)
	for _, id := range s.order[offset:end] {
		out = append(out, cloneRecord(s.rows[id]))
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func cloneRecord(r model.Record) model.Record {
	r.Responses = append([]scoring.Response(nil), r.Responses...)
	return r
}
