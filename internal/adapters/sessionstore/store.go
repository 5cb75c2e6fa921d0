// Package sessionstore keeps in-progress assessment sessions between requests.
package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/impactwon/checkin/internal/domain/session"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 2 * time.Hour

// Sentinel errors.
var (
	ErrNotFound  = errors.New("session not found")
	ErrInvalidID = errors.New("session id must not be empty")
)

// Store persists session snapshots. Saving refreshes the expiry.
type Store interface {
	Save(ctx context.Context, snap session.Snapshot) error
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (session.Snapshot, error)
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}
