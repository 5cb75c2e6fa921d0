package repository

import (
	"time"

	"github.com/impactwon/checkin/internal/domain/model"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the time source used for rows inserted without CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCapacity preallocates room for n rows.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.order = make([]string, 0, n)
			s.rows = make(map[string]model.Record, n)
		}
	}
}
